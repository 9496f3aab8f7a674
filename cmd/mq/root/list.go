package root

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"monkquest/internal/engine"
	"monkquest/internal/storage"
	"monkquest/internal/ui"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List active quests",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			eng, cleanup, err := openEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			// Credits running timers and fires overdue reminders before printing.
			eng.Tick(ctx)
			st := eng.Snapshot()
			out := cmd.OutOrStdout()

			active := engine.ActiveTasks(st.Tasks)
			fmt.Fprintln(out, ui.Heading(ui.IconQuest, "Quest Log"))
			if len(active) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(no active quests)"))
			}
			for _, t := range active {
				printTaskLine(out, t, eng.Now(), eng.Location())
			}
			printNotices(out, eng)
			return nil
		},
	}

	return cmd
}

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List completed and abandoned quests, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			eng, cleanup, err := openEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			hist := engine.HistoryTasks(eng.Snapshot().Tasks)
			if limit > 0 && len(hist) > limit {
				hist = hist[:limit]
			}
			fmt.Fprintln(out, ui.Heading(ui.IconScroll, "History"))
			if len(hist) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(nothing finished yet)"))
			}
			for _, t := range hist {
				status := engine.StatusOf(t)
				when := t.CompletedAt
				if status == engine.StatusAbandoned && t.DeletedAt != nil {
					when = t.DeletedAt
				}
				line := fmt.Sprintf("- #%d %s %s", t.ID, t.Title, ui.StatusText(string(status)))
				if status == engine.StatusCompleted && !t.CompletedOnTime {
					line += " " + ui.BadgeLate
				}
				if when != nil {
					line += " " + ui.Muted.Render(when.In(eng.Location()).Format("Jan 2 15:04"))
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Show at most n entries (0 for all)")

	return cmd
}

func printTaskLine(w io.Writer, t storage.Task, now time.Time, loc *time.Location) {
	line := fmt.Sprintf("- #%d %s [%s] %s", t.ID, t.Title, ui.PriorityText(t.Priority), ui.Muted.Render(fmt.Sprintf("%d EXP", t.Exp)))
	clock := ui.Clock(spent(t.TimeSpent))
	if t.IsRunning {
		line += " " + ui.Warn.Render(ui.IconClock+" "+clock)
	} else if t.TimeSpent > 0 {
		line += " " + ui.Muted.Render(clock)
	}
	if t.Deadline != nil {
		due := t.Deadline.In(loc).Format("Jan 2 15:04")
		if !now.Before(*t.Deadline) {
			line += " " + ui.BadgeLate + " " + ui.Muted.Render(due)
		} else {
			line += " " + ui.Muted.Render("due "+due)
		}
	}
	if t.RemindAt != nil && !t.ReminderFired {
		line += " " + ui.IconBell + ui.Muted.Render(t.RemindAt.In(loc).Format("Jan 2 15:04"))
	}
	fmt.Fprintln(w, line)
	if t.Description != "" {
		fmt.Fprintln(w, "  "+ui.Muted.Render(t.Description))
	}
}
