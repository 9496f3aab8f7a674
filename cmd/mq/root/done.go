package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"monkquest/internal/ui"
)

func newDoneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "done <id>",
		Aliases: []string{"do"},
		Short:   "Complete a quest",
		Args:    idArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			eng, cleanup, err := openEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := eng.CompleteTask(ctx, parseID(args[0]))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			line := fmt.Sprintf("%s #%d %s", ui.Good.Render(ui.IconDone+" Completed"), res.TaskID, ui.Gold.Render(fmt.Sprintf("+%d EXP", res.ExpAwarded)))
			if !res.OnTime {
				line += " " + ui.BadgeLate + " " + ui.Muted.Render("(half reward)")
			}
			fmt.Fprintln(out, line)
			fmt.Fprintln(out, ui.LabelValue("Level", fmt.Sprintf("%d → %d", res.LevelBefore, res.LevelAfter)))
			fmt.Fprintln(out, ui.LabelValue("Streak", fmt.Sprintf("%s %d", ui.IconFlame, res.Streak)))
			if res.LevelUp {
				fmt.Fprintln(out, ui.BadgeLevelUp)
			}
			printNotices(out, eng)
			return nil
		},
	}

	return cmd
}

func newRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"abandon"},
		Short:   "Abandon a quest (kept in history, counts against your success rate)",
		Args:    idArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			eng, cleanup, err := openEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			t, err := eng.DeleteTask(ctx, parseID(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s #%d %s\n", ui.Warn.Render(ui.IconTrash+" Abandoned"), t.ID, t.Title)
			printNotices(cmd.OutOrStdout(), eng)
			return nil
		},
	}

	return cmd
}
