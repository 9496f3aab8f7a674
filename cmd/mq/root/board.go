package root

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"monkquest/internal/tui"
	"monkquest/internal/ui"
)

func newBoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Open the interactive board",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			eng, cleanup, err := openEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			return tui.RunBoard(ctx, eng, cmd.OutOrStdout(), cfg.TickInterval, cfg.FlushInterval)
		},
	}

	return cmd
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run headless: track timers, fire reminders and watch Monk Mode",
		Long: `Run the engine without a UI until interrupted.

Reminders are delivered as desktop notifications (unless notifications are
disabled). Timer progress is saved every flush_interval and on exit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			eng, cleanup, err := openEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", ui.Good.Render(ui.IconBolt+" Running"), ui.Muted.Render("(Ctrl+C to stop)"))
			return eng.Run(ctx, cfg.TickInterval, cfg.FlushInterval)
		},
	}

	return cmd
}
