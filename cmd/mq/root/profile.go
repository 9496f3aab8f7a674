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

func newProfileCmd() *cobra.Command {
	var name string
	var class string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Set your display name and class",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			eng, cleanup, err := openEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			cur := eng.Snapshot().Stats
			if !cmd.Flags().Changed("name") {
				name = cur.Name
			}
			st := eng.SetProfile(ctx, name, class)
			shown := st.Name
			if shown == "" {
				shown = engine.DefaultDisplayName
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s the %s\n", ui.Good.Render(ui.IconSparkle+" Profile"), shown, st.Class)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (empty to reset)")
	cmd.Flags().StringVar(&class, "class", "", "Class label")

	return cmd
}

func newAvatarCmd() *cobra.Command {
	var unset bool

	cmd := &cobra.Command{
		Use:   "avatar <image>",
		Short: "Set or clear your avatar image",
		Args: func(cmd *cobra.Command, args []string) error {
			if !unset && len(args) != 1 {
				return errors.New("image path is required (or pass --clear)")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			eng, cleanup, err := openEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if unset {
				eng.ClearAvatar(ctx)
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Avatar cleared."))
				return nil
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read avatar: %w", err)
			}
			if err := eng.SetAvatar(ctx, data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Good.Render(ui.IconSparkle+" Avatar set"), ui.Muted.Render(fmt.Sprintf("(%d bytes)", len(data))))
			return nil
		},
	}

	cmd.Flags().BoolVar(&unset, "clear", false, "Remove the avatar")

	return cmd
}
