package root

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"monkquest/internal/ui"
)

func newStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start <id>",
		Short: "Start the quest's time tracker",
		Long:  "Start the quest's time tracker. Time keeps accruing while mq is closed and is credited on the next run.",
		Args:  idArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			eng, cleanup, err := openEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			t, err := eng.StartTimer(ctx, parseID(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s #%d %s %s\n", ui.Warn.Render(ui.IconClock+" Tracking"), t.ID, t.Title,
				ui.Muted.Render("("+ui.Clock(spent(t.TimeSpent))+" so far)"))
			return nil
		},
	}

	return cmd
}

func newStopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop <id>",
		Short: "Stop the quest's time tracker",
		Args:  idArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			eng, cleanup, err := openEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			t, err := eng.StopTimer(ctx, parseID(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s #%d %s %s\n", ui.Good.Render(ui.IconClock+" Stopped"), t.ID, t.Title,
				ui.Muted.Render("("+ui.Clock(spent(t.TimeSpent))+" total)"))
			return nil
		},
	}

	return cmd
}

func spent(secs float64) time.Duration {
	return time.Duration(secs * float64(time.Second))
}
