package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/k2tech/ailab/internal/debug"
	"github.com/k2tech/ailab/internal/hypothesis"
	"github.com/k2tech/ailab/internal/timeparsing"
	"github.com/k2tech/ailab/internal/types"
)

var (
	taskOwner    string
	taskDue      string
	taskType     string
	taskSeverity string
	taskStatus   string
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage hypothesis tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add <hyp-id> <label>",
	Short: "Add a task to a hypothesis",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &hypothesis.TaskRequest{
			Label:    args[1],
			Owner:    taskOwner,
			Type:     types.TaskType(strings.ToLower(taskType)),
			Severity: types.TaskSeverity(strings.ToLower(taskSeverity)),
		}
		if taskDue != "" {
			due, err := timeparsing.ParseRelativeTime(taskDue, time.Now())
			if err != nil {
				return fmt.Errorf("invalid --due: %w", err)
			}
			req.Due = &due
		}
		detail, err := hypSvc.AddTask(getContext(), args[0], req)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(detail)
		}
		debug.PrintNormal("Added task to %s\n", args[0])
		return nil
	},
}

var taskUpdateCmd = &cobra.Command{
	Use:   "update <hyp-id> <task-id>",
	Short: "Update a task's status, severity, owner, or due date",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &hypothesis.TaskUpdateRequest{}
		if cmd.Flags().Changed("status") {
			s := types.TaskStatus(strings.ToLower(taskStatus))
			req.Status = &s
		}
		if cmd.Flags().Changed("severity") {
			s := types.TaskSeverity(strings.ToLower(taskSeverity))
			req.Severity = &s
		}
		if cmd.Flags().Changed("owner") {
			req.Owner = &taskOwner
		}
		if taskDue != "" {
			due, err := timeparsing.ParseRelativeTime(taskDue, time.Now())
			if err != nil {
				return fmt.Errorf("invalid --due: %w", err)
			}
			req.Due = &due
		}
		detail, err := hypSvc.UpdateTask(getContext(), args[0], args[1], req)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(detail)
		}
		debug.PrintNormal("Updated task %s on %s\n", args[1], args[0])
		return nil
	},
}

func init() {
	taskAddCmd.Flags().StringVar(&taskOwner, "owner", "", "task owner")
	taskAddCmd.Flags().StringVar(&taskDue, "due", "", "due date: +2w, 2026-03-01, 'next friday'")
	taskAddCmd.Flags().StringVar(&taskType, "type", "", "task type: data, approval, governance")
	taskAddCmd.Flags().StringVar(&taskSeverity, "severity", "", "severity: low, medium, high, critical")
	taskUpdateCmd.Flags().StringVar(&taskStatus, "status", "", "status: due-soon, at-risk, blocked")
	taskUpdateCmd.Flags().StringVar(&taskSeverity, "severity", "", "severity: low, medium, high, critical")
	taskUpdateCmd.Flags().StringVar(&taskOwner, "owner", "", "task owner")
	taskUpdateCmd.Flags().StringVar(&taskDue, "due", "", "due date")
	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskUpdateCmd)
	rootCmd.AddCommand(taskCmd)
}
