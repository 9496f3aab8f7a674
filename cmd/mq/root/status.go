package root

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"monkquest/internal/engine"
	"monkquest/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show character stats, Monk Mode and achievements",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			eng, cleanup, err := openEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			eng.Tick(ctx)
			st := eng.Snapshot()
			s := st.Stats
			out := cmd.OutOrStdout()

			name := s.Name
			if name == "" {
				name = engine.DefaultDisplayName
			}
			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "Character"))
			fmt.Fprintln(out, ui.LabelValue("Name", name))
			fmt.Fprintln(out, ui.LabelValue("Class", s.Class))
			fmt.Fprintln(out, ui.LabelValue("Level", s.Level))
			fmt.Fprintln(out, ui.LabelValue("EXP", fmt.Sprintf("%d/%d %s", s.CurrentExp, s.NextLevelExp, ui.ProgressBar(s.CurrentExp, s.NextLevelExp, 20))))
			fmt.Fprintln(out, ui.LabelValue("Streak", fmt.Sprintf("%s %d", ui.IconFlame, s.Streak)))
			if s.Avatar != "" {
				fmt.Fprintln(out, ui.LabelValue("Avatar", ui.Muted.Render(avatarKind(s.Avatar))))
			}
			fmt.Fprintln(out, "")

			printMonkStatus(out, eng.MonkStatus())
			fmt.Fprintln(out, "")

			checker := engine.NewAchievementChecker(s, st.Tasks)
			fmt.Fprintln(out, ui.H2.Render(fmt.Sprintf("%s Achievements (%d/%d)", ui.IconTrophy, checker.CountEarned(), checker.CountTotal())))
			for _, a := range checker.GetAchievements() {
				if a.Earned {
					fmt.Fprintf(out, "- %s %s %s\n", a.Icon, ui.Good.Render(a.Name), ui.Muted.Render(a.Description))
				} else {
					fmt.Fprintf(out, "- %s %s\n", ui.Muted.Render("🔒 "+a.Name), ui.Muted.Render(a.Description))
				}
			}
			printNotices(out, eng)
			return nil
		},
	}

	return cmd
}

// avatarKind reports the media type of a data URI avatar.
func avatarKind(uri string) string {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "set"
	}
	kind, _, _ := strings.Cut(rest, ";")
	return kind
}
