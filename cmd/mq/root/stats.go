package root

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"monkquest/internal/engine"
	"monkquest/internal/ui"
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show success rate, daily breakdown and tracked time",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			eng, cleanup, err := openEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			c, err := currentConfig()
			if err != nil {
				return err
			}

			st := eng.Snapshot()
			out := cmd.OutOrStdout()
			overall := engine.OverallStats(st.Tasks)

			fmt.Fprintln(out, ui.Heading(ui.IconBolt, "Discipline"))
			fmt.Fprintln(out, ui.LabelValue("Success rate", ui.RateText(overall.Rate, c.MinSuccessRate)))
			fmt.Fprintln(out, ui.LabelValue("Completed", fmt.Sprintf("%d (%d on time, %d late)", overall.Completed, overall.OnTime, overall.Late())))
			fmt.Fprintln(out, ui.LabelValue("Abandoned", overall.Abandoned))
			fmt.Fprintln(out, ui.LabelValue("Tracked time", ui.Clock(engine.TotalTimeSpent(st.Tasks))))
			fmt.Fprintln(out, "")

			fmt.Fprintln(out, ui.H2.Render("Last 7 days"))
			for _, d := range engine.DailyBreakdown(st.Tasks, eng.Now(), eng.Location()) {
				bar := strings.Repeat("■", d.Total())
				rate := ui.Muted.Render("  -")
				if d.Total() > 0 {
					rate = ui.RateText(d.Rate, c.MinSuccessRate)
				}
				fmt.Fprintf(out, "%s %4s %s %s\n", d.Day.Format("Mon 01/02"), rate, ui.Good.Render(bar), ui.Muted.Render(fmt.Sprintf("%d/%d", d.OnTime, d.Total())))
			}
			return nil
		},
	}

	return cmd
}
