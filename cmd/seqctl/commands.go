package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"taskboard/internal/sequencer"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print a token for TASKBOARD_TOKEN",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := a.client().Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var projectID int64
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print a project's tasks in sequence order",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := a.client().ListProjectTasks(cmd.Context(), projectID)
			if err != nil {
				return err
			}
			printRows(cmd.OutOrStdout(), rows, nil)
			return nil
		},
	}
	cmd.Flags().Int64Var(&projectID, "project", 0, "project id")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newMoveCmd(a *app) *cobra.Command {
	var (
		projectID int64
		taskID    int64
		to        int
		verbose   bool
	)
	cmd := &cobra.Command{
		Use:   "move",
		Short: "Drag a task to a new position and commit it",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.client()
			rows, err := c.ListProjectTasks(cmd.Context(), projectID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			settled := make(chan struct{}, 1)
			observer := func(t sequencer.Transition) {
				if verbose {
					fmt.Fprintf(out, "task %d: %s -> %s\n", t.TaskID, t.From, t.To)
				}
				if t.TaskID == taskID && t.To == sequencer.Idle && (t.From == sequencer.Committed || t.From == sequencer.RolledBack) {
					select {
					case settled <- struct{}{}:
					default:
					}
				}
			}

			rec := sequencer.New(projectID, rows, c,
				sequencer.WithObserver(observer),
				sequencer.WithConfirmation(a.cfg.Confirmation),
				sequencer.WithCooldown(a.cfg.Cooldown),
			)

			outcome := drag(cmd.Context(), rec, taskID, to)
			if outcome.Kind == sequencer.OutcomeCommitted || outcome.Kind == sequencer.OutcomeRolledBack {
				waitSettled(settled, a.cfg.Confirmation+a.cfg.Cooldown+time.Second)
			}
			return report(out, outcome)
		},
	}
	cmd.Flags().Int64Var(&projectID, "project", 0, "project id")
	cmd.Flags().Int64Var(&taskID, "task", 0, "task id to move")
	cmd.Flags().IntVar(&to, "to", 0, "zero-based target position")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every state transition")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("task")
	return cmd
}

func waitSettled(settled <-chan struct{}, limit time.Duration) {
	select {
	case <-settled:
	case <-time.After(limit):
	}
}

// report prints the outcome of a drag and turns failures into the command error.
func report(w io.Writer, outcome sequencer.Outcome) error {
	switch outcome.Kind {
	case sequencer.OutcomeCommitted:
		fmt.Fprintf(w, "moved task %d from %d to %d\n", outcome.Operation.TaskID, outcome.Operation.FromIndex, outcome.Operation.ToIndex)
		printRows(w, outcome.Rows, &outcome.Operation.TaskID)
		return nil
	case sequencer.OutcomeNoOp:
		fmt.Fprintf(w, "task %d already at %d, nothing to do\n", outcome.Operation.TaskID, outcome.Operation.ToIndex)
		return nil
	case sequencer.OutcomeRolledBack:
		printRows(w, outcome.Rows, nil)
		return fmt.Errorf("move rolled back: %w", outcome.Err)
	default:
		return fmt.Errorf("move %s: %w", outcome.Kind, outcome.Err)
	}
}

func printRows(w io.Writer, rows []sequencer.Row, highlight *int64) {
	for i, r := range rows {
		marker := " "
		if highlight != nil && r.ID == *highlight {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %3d  #%-6d %s\n", marker, i, r.ID, r.Title)
	}
}
