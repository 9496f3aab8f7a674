package root

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"monkquest/internal/engine"
	"monkquest/internal/storage"
	"monkquest/internal/ui"
)

func newGuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guild",
		Short: "Local guild and leaderboard",
	}

	cmd.AddCommand(
		newGuildCreateCmd(),
		newGuildAddCmd(),
		newGuildRemoveCmd(),
		newGuildLeaveCmd(),
		newGuildBoardCmd(),
	)
	return cmd
}

func newGuildCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Found a guild",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("guild name is required")
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

			g, err := eng.CreateGuild(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", ui.Good.Render(ui.IconGuild+" Guild founded:"), g.Name,
				ui.Muted.Render("invite code "+g.InviteCode))
			return nil
		},
	}

	return cmd
}

func newGuildAddCmd() *cobra.Command {
	var level int
	var class string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Track another member on the leaderboard",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("member name is required")
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

			m, err := eng.AddMember(ctx, args[0], level, class)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", ui.Good.Render(ui.IconPlus+" Member added:"), m.Name,
				ui.Muted.Render(fmt.Sprintf("(level %d %s, id %s)", m.Level, m.Class, m.ID)))
			return nil
		},
	}

	cmd.Flags().IntVarP(&level, "level", "l", 1, "Member level")
	cmd.Flags().StringVarP(&class, "class", "c", "", "Member class")

	return cmd
}

func newGuildRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <member-id>",
		Short: "Stop tracking a member",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("member id is required")
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

			if err := eng.RemoveMember(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Member removed."))
			return nil
		},
	}

	return cmd
}

func newGuildLeaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leave",
		Short: "Leave (and disband) the guild",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			eng, cleanup, err := openEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := eng.LeaveGuild(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("You left the guild."))
			return nil
		},
	}

	return cmd
}

func newGuildBoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show the guild leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			eng, cleanup, err := openEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			g := eng.Snapshot().Guild
			if g == nil {
				return engine.StateError{Op: "show leaderboard", Reason: "no guild (create one with `mq guild create`)"}
			}
			printLeaderboard(cmd.OutOrStdout(), g)
			return nil
		},
	}

	return cmd
}

func printLeaderboard(w io.Writer, g *storage.Guild) {
	fmt.Fprintln(w, ui.Heading(ui.IconGuild, g.Name))
	fmt.Fprintln(w, ui.Muted.Render("invite code "+g.InviteCode))
	for i, m := range engine.Leaderboard(g) {
		rank := fmt.Sprintf("%2d.", i+1)
		name := m.Name
		if m.IsUser {
			name = ui.Gold.Render(name + " (you)")
		}
		fmt.Fprintf(w, "%s %s %s %s\n", rank, name, ui.Key.Render(fmt.Sprintf("L%d", m.Level)), ui.Muted.Render(m.Class+" · "+m.ID))
	}
}
