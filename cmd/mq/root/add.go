package root

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"monkquest/internal/engine"
	"monkquest/internal/ui"
)

func newAddCmd() *cobra.Command {
	var desc string
	var priority string
	var deadline string
	var remind string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a quest",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("title is required")
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

			p, err := engine.ParsePriority(priority)
			if err != nil {
				return err
			}
			now, loc := eng.Now(), eng.Location()
			due, err := optionalWhen(deadline, now, loc)
			if err != nil {
				return err
			}
			at, err := optionalWhen(remind, now, loc)
			if err != nil {
				return err
			}

			t, err := eng.CreateTask(ctx, engine.TaskInput{
				Title:       strings.Join(args, " "),
				Description: desc,
				Priority:    p,
				Deadline:    due,
				RemindAt:    at,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s #%d %s %s\n",
				ui.Good.Render(ui.IconPlus+" Added"), t.ID, t.Title,
				ui.Muted.Render(fmt.Sprintf("(%s, %d EXP)", t.Priority, t.Exp)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&desc, "desc", "d", "", "Description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "medium", "Priority (low|medium|high)")
	cmd.Flags().StringVar(&deadline, "due", "", "Deadline (2006-01-02 15:04, 15:04 or +2h)")
	cmd.Flags().StringVar(&remind, "remind", "", "Reminder time (same formats as --due)")

	return cmd
}

func newEditCmd() *cobra.Command {
	var title string
	var desc string
	var priority string
	var deadline string
	var remind string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit an active quest",
		Long: `Edit an active quest. Only the flags you pass are changed.

Pass an empty --due or --remind to clear it. Changing the priority recomputes
the EXP reward; moving the reminder re-arms it.`,
		Args: idArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			eng, cleanup, err := openEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id := parseID(args[0])
			st := eng.Snapshot()
			var cur *engine.TaskInput
			for _, t := range st.Tasks {
				if t.ID == id {
					cur = &engine.TaskInput{
						Title:       t.Title,
						Description: t.Description,
						Priority:    engine.Priority(t.Priority),
						Deadline:    t.Deadline,
						RemindAt:    t.RemindAt,
					}
					break
				}
			}
			if cur == nil {
				return engine.NotFoundError{Kind: "task", ID: id}
			}

			in := *cur
			now, loc := eng.Now(), eng.Location()
			flags := cmd.Flags()
			if flags.Changed("title") {
				in.Title = title
			}
			if flags.Changed("desc") {
				in.Description = desc
			}
			if flags.Changed("priority") {
				if in.Priority, err = engine.ParsePriority(priority); err != nil {
					return err
				}
			}
			if flags.Changed("due") {
				if in.Deadline, err = optionalWhen(deadline, now, loc); err != nil {
					return err
				}
			}
			if flags.Changed("remind") {
				if in.RemindAt, err = optionalWhen(remind, now, loc); err != nil {
					return err
				}
			}

			t, err := eng.EditTask(ctx, id, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s #%d %s %s\n",
				ui.Good.Render(ui.IconScroll+" Updated"), t.ID, t.Title,
				ui.Muted.Render(fmt.Sprintf("(%s, %d EXP)", t.Priority, t.Exp)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&desc, "desc", "d", "", "New description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "New priority (low|medium|high)")
	cmd.Flags().StringVar(&deadline, "due", "", "New deadline")
	cmd.Flags().StringVar(&remind, "remind", "", "New reminder time")

	return cmd
}
