package root

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"monkquest/internal/engine"
	"monkquest/internal/ui"
)

func newMonkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monk",
		Short: "Monk Mode: a fixed-length discipline protocol",
		Long: `Monk Mode is a fixed-length discipline protocol.

While active, your success rate over quests finished since the start must
stay at or above the minimum or the protocol fails. Reaching the end
completes it; milestones are unlocked along the way.`,
	}

	cmd.AddCommand(newMonkStartCmd(), newMonkStatusCmd(), newMonkBreachCmd())
	return cmd
}

func milestoneList() string {
	var parts []string
	for _, m := range engine.Milestones {
		parts = append(parts, fmt.Sprintf("%d (%s)", m.Days, m.Label))
	}
	return strings.Join(parts, ", ")
}

func newMonkStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start <days>",
		Short: "Start a Monk Mode protocol",
		Long:  "Start a Monk Mode protocol. Durations: " + milestoneList() + ".",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("duration in days is required")
			}
			if _, err := strconv.Atoi(args[0]); err != nil {
				return errors.New("duration must be a number of days")
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

			days, _ := strconv.Atoi(args[0])
			m, err := eng.StartMonkMode(ctx, days)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", ui.Good.Render(ui.IconMonk+" Monk Mode started:"), m.Duration,
				ui.Muted.Render(fmt.Sprintf("(ends %s, min success rate %d%%)", m.EndDate.In(eng.Location()).Format("Mon Jan 2 2006"), m.MinSuccessRate)))
			return nil
		},
	}

	return cmd
}

func newMonkStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show Monk Mode progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			eng, cleanup, err := openEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			// Evaluates completion and milestones that came due while closed.
			eng.Tick(ctx)
			printMonkStatus(cmd.OutOrStdout(), eng.MonkStatus())
			printNotices(cmd.OutOrStdout(), eng)
			return nil
		},
	}

	return cmd
}

func newMonkBreachCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "breach",
		Short: "Give up the active Monk Mode protocol",
		Long: fmt.Sprintf(`Give up the active Monk Mode protocol.

Breaching takes two presses: the first arms it and the second, within %s,
commits. Unlocked milestones are kept.`, engine.BreachWindow),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			eng, cleanup, err := openEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			if _, err := eng.PressBreach(ctx); err != nil {
				return err
			}
			if !yes {
				fmt.Fprintf(out, "%s Press Enter within %s to confirm: ", ui.Warn.Render(ui.IconWarn+" Breach armed."), engine.BreachWindow)
				if !confirmLine(cmd.InOrStdin(), "") {
					fmt.Fprintln(out, ui.Muted.Render("Kept going."))
					return nil
				}
			}
			res, err := eng.PressBreach(ctx)
			if err != nil {
				return err
			}
			if res != engine.BreachCommitted {
				fmt.Fprintln(out, ui.Muted.Render("Too slow; the protocol continues."))
				return nil
			}
			printNotices(out, eng)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm immediately")

	return cmd
}

func printMonkStatus(w io.Writer, s engine.MonkStatus) {
	fmt.Fprintln(w, ui.H2.Render(ui.IconMonk+" Monk Mode"))
	if !s.Active {
		fmt.Fprintln(w, ui.Muted.Render("inactive"))
	} else {
		fmt.Fprintln(w, ui.LabelValue("Protocol", s.Duration))
		fmt.Fprintln(w, ui.LabelValue("Progress", fmt.Sprintf("day %d/%d %s (%d left)", s.ElapsedDays, s.TotalDays, ui.ProgressBar(s.ElapsedDays, s.TotalDays, 20), s.RemainingDays)))
		fmt.Fprintln(w, ui.LabelValue("Session", fmt.Sprintf("%s %s", ui.RateText(s.Session.Rate, s.MinSuccessRate),
			ui.Muted.Render(fmt.Sprintf("(min %d%%, %d on time / %d finished)", s.MinSuccessRate, s.Session.OnTime, s.Session.Total())))))
	}
	var labels []string
	for _, d := range s.Unlocked {
		if ms, ok := engine.MilestoneFor(d); ok {
			labels = append(labels, ms.Label)
		}
	}
	if len(labels) > 0 {
		fmt.Fprintln(w, ui.LabelValue("Milestones", ui.IconPeak+" "+strings.Join(labels, ", ")))
	}
}

// confirmLine reads one line and reports whether it matches want (any line
// when want is empty).
func confirmLine(r io.Reader, want string) bool {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	if want == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(line), want)
}
