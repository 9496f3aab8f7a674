package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"monkquest/internal/ui"
)

func newRemindCmd() *cobra.Command {
	var unset bool

	cmd := &cobra.Command{
		Use:   "remind <id> [when]",
		Short: "Set or clear a quest reminder",
		Long: `Set a one-shot reminder on an active quest.

Reminders fire while "mq board" or "mq run" is open, or at the next start if
they came due while mq was closed.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 || len(args) > 2 {
				return errors.New("usage: remind <id> <when> | remind <id> --clear")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return errors.New("id must be an integer")
			}
			if !unset && len(args) != 2 {
				return errors.New("when is required (or pass --clear)")
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

			id := parseID(args[0])
			if unset {
				t, err := eng.ClearReminder(ctx, id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s #%d %s\n", ui.Muted.Render(ui.IconBell+" Reminder cleared"), t.ID, t.Title)
				return nil
			}

			at, err := parseWhen(args[1], eng.Now(), eng.Location())
			if err != nil {
				return err
			}
			t, err := eng.SetReminder(ctx, id, at)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s #%d %s %s\n", ui.Good.Render(ui.IconBell+" Reminder set"), t.ID, t.Title,
				ui.Muted.Render(at.In(eng.Location()).Format("Mon Jan 2 15:04")))
			return nil
		},
	}

	cmd.Flags().BoolVar(&unset, "clear", false, "Remove the reminder")

	return cmd
}
