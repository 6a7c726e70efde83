package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"notes/internal/client"
	"notes/internal/model"
)

const defaultAPIURL = "http://localhost:5000/api/tasks"

type app struct {
	apiURL  string
	timeout time.Duration
	out     io.Writer
	session *client.Session
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:           "taskctl",
		Short:         "Manage your tasks from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.session = client.NewSession(client.New(a.apiURL))
		},
	}
	root.PersistentFlags().StringVar(&a.apiURL, "api", envOr("TASKS_API_URL", defaultAPIURL), "task collection URL")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 15*time.Second, "request timeout")

	root.AddCommand(
		a.listCmd(),
		a.addCmd(),
		a.editCmd(),
		a.doneCmd(),
		a.rmCmd(),
		a.reportCmd(),
	)
	return root
}

func (a *app) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.timeout)
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tasks, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			state, err := a.session.Refresh(ctx)
			if err != nil {
				return err
			}
			renderTasks(a.out, state)
			return nil
		},
	}
}

func (a *app) addCmd() *cobra.Command {
	var (
		draft model.Draft
		due   string
		imp   string
		st    string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dueDate, err := model.ParseDate(due)
			if err != nil {
				return err
			}
			importance, err := model.ParseImportance(imp)
			if err != nil {
				return err
			}
			status, err := model.ParseStatus(st)
			if err != nil {
				return err
			}
			draft.DueDate = dueDate
			draft.Importance = &importance
			draft.Status = &status

			ctx, cancel := a.context(cmd)
			defer cancel()
			return a.mutate(ctx, func() (client.State, error) {
				return a.session.Create(ctx, draft)
			})
		},
	}
	cmd.Flags().StringVar(&draft.Title, "title", "", "task title")
	cmd.Flags().StringVar(&draft.Description, "desc", "", "task description")
	cmd.Flags().StringVar(&imp, "importance", string(model.ImportanceNormal), "Normal or Important")
	cmd.Flags().StringVar(&st, "status", string(model.StatusPending), "Pending or Completed")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	return cmd
}

func (a *app) editCmd() *cobra.Command {
	var title, desc, imp, st, due string
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change fields of a task; omitted flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch model.Patch
			flags := cmd.Flags()
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("desc") {
				patch.Description = &desc
			}
			if flags.Changed("importance") {
				i, err := model.ParseImportance(imp)
				if err != nil {
					return err
				}
				patch.Importance = &i
			}
			if flags.Changed("status") {
				s, err := model.ParseStatus(st)
				if err != nil {
					return err
				}
				patch.Status = &s
			}
			if flags.Changed("due") {
				d, err := model.ParseDate(due)
				if err != nil {
					return err
				}
				patch.DueDate = &d
			}
			if patch.Empty() {
				return fmt.Errorf("nothing to change; pass at least one of --title --desc --importance --status --due")
			}

			ctx, cancel := a.context(cmd)
			defer cancel()
			return a.mutate(ctx, func() (client.State, error) {
				return a.session.Update(ctx, args[0], patch)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&desc, "desc", "", "new description")
	cmd.Flags().StringVar(&imp, "importance", "", "Normal or Important")
	cmd.Flags().StringVar(&st, "status", "", "Pending or Completed")
	cmd.Flags().StringVar(&due, "due", "", "new due date (YYYY-MM-DD)")
	return cmd
}

func (a *app) doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done ID",
		Short: "Mark a task as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			completed := model.StatusCompleted
			ctx, cancel := a.context(cmd)
			defer cancel()
			return a.mutate(ctx, func() (client.State, error) {
				return a.session.Update(ctx, args[0], model.Patch{Status: &completed})
			})
		},
	}
}

func (a *app) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a task permanently",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()
			return a.mutate(ctx, func() (client.State, error) {
				return a.session.Delete(ctx, args[0])
			})
		},
	}
}

func (a *app) reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Show task statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			state, err := a.session.Refresh(ctx)
			if err != nil {
				return err
			}
			renderStats(a.out, state.Stats)
			return nil
		},
	}
}

// mutate loads the current list first so a failed mutation can still show
// the last good state.
func (a *app) mutate(ctx context.Context, call func() (client.State, error)) error {
	if _, err := a.session.Refresh(ctx); err != nil {
		return err
	}
	state, err := call()
	renderTasks(a.out, state)
	return err
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
