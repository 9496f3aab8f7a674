package root

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"monkquest/internal/engine"
	"monkquest/internal/ui"
)

func newExportCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export all data as JSON or YAML (stdout when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			eng, cleanup, err := openEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			f, err := snapshotFormat(cmd, format, args)
			if err != nil {
				return err
			}
			// Credit running timers up to now.
			eng.Tick(ctx)
			data, err := engine.EncodeSnapshot(eng.ExportSnapshot(), f)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(args[0], data, 0o600); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", ui.Good.Render(ui.IconScroll+" Exported to"), args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "json|yaml (default from file extension, else json)")

	return cmd
}

func newImportCmd() *cobra.Command {
	var format string
	var yes bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all data with an exported file",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("file is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import: %w", err)
			}
			f, err := snapshotFormat(cmd, format, args)
			if err != nil {
				return err
			}
			snap, err := engine.DecodeSnapshot(data, f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !yes {
				fmt.Fprintf(out, "%s This replaces ALL tasks, stats and guild data with %d tasks from %s. Type 'yes' to continue: ",
					ui.Warn.Render(ui.IconWarn), len(snap.Tasks), args[0])
				if !confirmLine(cmd.InOrStdin(), "yes") {
					fmt.Fprintln(out, ui.Muted.Render("Import cancelled."))
					return nil
				}
			}

			eng, cleanup, err := openEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := eng.ImportSnapshot(ctx, snap); err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %d tasks, level %d\n", ui.Good.Render(ui.IconScroll+" Imported"), len(snap.Tasks), eng.Snapshot().Stats.Level)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "json|yaml (default from file extension, else json)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func snapshotFormat(cmd *cobra.Command, flag string, args []string) (engine.Format, error) {
	if cmd.Flags().Changed("format") {
		return engine.ParseFormat(flag)
	}
	if len(args) > 0 {
		return engine.FormatFromPath(args[0]), nil
	}
	return engine.FormatJSON, nil
}
