package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	taskDomain "github.com/davicafu/hexatasks/internal/task/domain"
	sharedUtils "github.com/davicafu/hexatasks/shared/utils"
)

// withSession monta la aplicación, carga la sesión y ejecuta fn.
func withSession(cmd *cobra.Command, env *runtimeEnv, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	a, err := buildApp(ctx, env.cfg, env.log)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.session.Load(ctx); err != nil {
		return err
	}
	return fn(ctx, a)
}

func listCmd(env *runtimeEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Long: `List tasks with optional search, status filter and sort order.

Examples:
  hexatasks list
  hexatasks list --q work --status pending
  hexatasks list --sort dueDate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			search, _ := cmd.Flags().GetString("q")
			statusFlag, _ := cmd.Flags().GetString("status")
			sortFlag, _ := cmd.Flags().GetString("sort")

			filter, err := taskDomain.ParseStatusFilter(statusFlag)
			if err != nil {
				return err
			}
			sortKey, err := taskDomain.ParseSortKey(sortFlag)
			if err != nil {
				return err
			}

			return withSession(cmd, env, func(ctx context.Context, a *app) error {
				q := taskDomain.ViewQuery{Search: search, Filter: filter, Sort: sortKey, Language: a.lang}
				out := cmd.OutOrStdout()
				visible := a.session.View(q)
				if state := a.session.EmptyState(q); state != taskDomain.EmptyNone {
					fmt.Fprintln(out, emptyMessage(state, search))
				} else {
					printTasks(out, visible, time.Now())
				}
				c := a.session.Counts(search)
				fmt.Fprintf(out, "\nall: %d  completed: %d  pending: %d\n", c.All, c.Completed, c.Pending)
				return nil
			})
		},
	}
	cmd.Flags().String("q", "", "search in title, description and category")
	cmd.Flags().String("status", "all", "status filter (all, completed, pending)")
	cmd.Flags().String("sort", "created", "sort order (created, title, dueDate, priority)")
	return cmd
}

func addCmd(env *runtimeEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a new task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, _ := cmd.Flags().GetString("desc")
			category, _ := cmd.Flags().GetString("category")
			in := taskDomain.TaskInput{Title: strings.Join(args, " "), Description: desc, Category: category}

			if p, _ := cmd.Flags().GetString("priority"); p != "" {
				priority, err := taskDomain.ParsePriority(p)
				if err != nil {
					return err
				}
				in.Priority = priority
			}
			if due, _ := cmd.Flags().GetString("due"); due != "" {
				d, err := taskDomain.ParseDate(due)
				if err != nil {
					return err
				}
				in.DueDate = &d
			}

			return withSession(cmd, env, func(ctx context.Context, a *app) error {
				task, err := a.session.Create(ctx, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created task %s: %s\n", task.ID, task.Title)
				return nil
			})
		},
	}
	cmd.Flags().StringP("desc", "d", "", "task description")
	cmd.Flags().StringP("priority", "p", "", "priority (low, medium, high)")
	cmd.Flags().String("due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringP("category", "c", "", "category (e.g. "+strings.Join(taskDomain.SuggestedCategories, ", ")+")")
	return cmd
}

func editCmd(env *runtimeEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit [task-id]",
		Short: "Edit fields of a task",
		Long: `Edit only the fields given as flags. The id may be shortened to any unique prefix.

Examples:
  hexatasks edit 6f1d --title "New title"
  hexatasks edit 6f1d --due 2024-02-01 --priority high
  hexatasks edit 6f1d --clear-due`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := patchFromFlags(cmd)
			if err != nil {
				return err
			}

			return withSession(cmd, env, func(ctx context.Context, a *app) error {
				id, err := resolveID(a.session.Tasks(), args[0])
				if err != nil {
					return err
				}
				task, err := a.session.Edit(ctx, id, patch)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s: %s\n", task.ID, task.Title)
				return nil
			})
		},
	}
	cmd.Flags().String("title", "", "new title")
	cmd.Flags().StringP("desc", "d", "", "new description")
	cmd.Flags().StringP("priority", "p", "", "new priority (low, medium, high)")
	cmd.Flags().String("due", "", "new due date (YYYY-MM-DD)")
	cmd.Flags().Bool("clear-due", false, "remove the due date")
	cmd.Flags().StringP("category", "c", "", "new category")
	return cmd
}

// patchFromFlags solo incluye los flags que el usuario ha indicado explícitamente.
func patchFromFlags(cmd *cobra.Command) (taskDomain.TaskPatch, error) {
	var patch taskDomain.TaskPatch
	flags := cmd.Flags()
	str := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}

	patch.Title = str("title")
	patch.Description = str("desc")
	patch.Category = str("category")
	if p := str("priority"); p != nil {
		priority, err := taskDomain.ParsePriority(*p)
		if err != nil {
			return patch, err
		}
		patch.Priority = &priority
	}
	if due := str("due"); due != nil {
		d, err := taskDomain.ParseDate(*due)
		if err != nil {
			return patch, err
		}
		patch.DueDate = &d
	}
	patch.ClearDueDate, _ = flags.GetBool("clear-due")
	return patch, nil
}

func toggleCmd(env *runtimeEnv, use, short string, completed bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [task-id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, env, func(ctx context.Context, a *app) error {
				id, err := resolveID(a.session.Tasks(), args[0])
				if err != nil {
					return err
				}
				task, err := a.session.Toggle(ctx, id, completed)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", checkbox(task.Completed), task.Title)
				return nil
			})
		},
	}
}

func rmCmd(env *runtimeEnv) *cobra.Command {
	return &cobra.Command{
		Use:     "rm [task-id]",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, env, func(ctx context.Context, a *app) error {
				id, err := resolveID(a.session.Tasks(), args[0])
				if err != nil {
					return err
				}
				if err := a.session.Delete(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", id)
				return nil
			})
		},
	}
}

func statsCmd(env *runtimeEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show completion statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, env, func(ctx context.Context, a *app) error {
				if err := a.session.RefreshStats(ctx); err != nil {
					return err
				}
				s := a.session.Stats()
				fmt.Fprintf(cmd.OutOrStdout(), "total: %d  completed: %d  pending: %d  (%d%% done)\n",
					s.Total, s.Completed, s.Pending, s.CompletionRate())
				return nil
			})
		},
	}
}

// --- Helpers ---

// resolveID acepta un uuid completo o un prefijo que identifique una única tarea.
func resolveID(tasks []*taskDomain.Task, arg string) (uuid.UUID, error) {
	if id, err := uuid.Parse(arg); err == nil {
		return id, nil
	}
	prefix := strings.ToLower(arg)
	var matches []uuid.UUID
	for _, t := range tasks {
		if strings.HasPrefix(t.ID.String(), prefix) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return uuid.Nil, fmt.Errorf("%w: no task id starts with %q", taskDomain.ErrTaskNotFound, arg)
	case 1:
		return matches[0], nil
	}
	return uuid.Nil, fmt.Errorf("id prefix %q is ambiguous (%d tasks)", arg, len(matches))
}

func printTasks(out io.Writer, tasks []*taskDomain.Task, now time.Time) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\t \tPRIORITY\tDUE\tCATEGORY\tTITLE")
	for _, t := range tasks {
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.String() + sharedUtils.Ternary(t.IsOverdue(now), " (overdue)", "")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID.String()[:8], checkbox(t.Completed), t.Priority, due,
			sharedUtils.Ternary(t.Category == "", "-", t.Category), t.Title)
	}
	w.Flush()
}

func checkbox(done bool) string {
	return sharedUtils.Ternary(done, "[x]", "[ ]")
}

func emptyMessage(state taskDomain.EmptyState, search string) string {
	switch state {
	case taskDomain.EmptyNoTasks:
		return "No tasks yet. Add one with: hexatasks add <title>"
	case taskDomain.EmptyCompleted:
		return "No completed tasks" + sharedUtils.Ternary(search != "", " match "+fmt.Sprintf("%q", search), "")
	case taskDomain.EmptyPending:
		return "No pending tasks" + sharedUtils.Ternary(search != "", " match "+fmt.Sprintf("%q", search), "")
	}
	return fmt.Sprintf("No tasks match %q", search)
}
