package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/k2tech/ailab/internal/debug"
	"github.com/k2tech/ailab/internal/hypothesis"
	"github.com/k2tech/ailab/internal/timeparsing"
	"github.com/k2tech/ailab/internal/types"
)

var (
	checklistOwner string
	checklistDue   string
)

var checklistCmd = &cobra.Command{
	Use:   "checklist",
	Short: "Manage a hypothesis' gating checklist",
}

var checklistAddCmd = &cobra.Command{
	Use:   "add <hyp-id> <label>",
	Short: "Add a gating checklist item",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := hypothesis.ChecklistItemInput{
			Label: args[1],
			Owner: checklistOwner,
		}
		if checklistDue != "" {
			due, err := timeparsing.ParseRelativeTime(checklistDue, time.Now())
			if err != nil {
				return fmt.Errorf("invalid --due: %w", err)
			}
			input.DueAt = &due
		}
		detail, err := hypSvc.AddChecklistItem(getContext(), args[0], input)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(detail)
		}
		debug.PrintNormal("Added checklist item to %s (%d items)\n", args[0], len(detail.Checklist))
		return nil
	},
}

var checklistDoneCmd = &cobra.Command{
	Use:   "done <hyp-id> <item-id>",
	Short: "Mark a checklist item complete",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		status := types.ChecklistComplete
		detail, err := hypSvc.UpdateChecklistItem(getContext(), args[0], args[1], &hypothesis.ChecklistItemUpdateRequest{Status: &status})
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(detail)
		}
		debug.PrintNormal("Checked off %s on %s\n", args[1], args[0])
		return nil
	},
}

var checklistRemoveCmd = &cobra.Command{
	Use:   "rm <hyp-id> <item-id>",
	Short: "Remove a checklist item",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		detail, err := hypSvc.RemoveChecklistItem(getContext(), args[0], args[1])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(detail)
		}
		debug.PrintNormal("Removed %s from %s\n", args[1], args[0])
		return nil
	},
}

func init() {
	checklistAddCmd.Flags().StringVar(&checklistOwner, "owner", "", "item owner")
	checklistAddCmd.Flags().StringVar(&checklistDue, "due", "", "due date: +2w, 2026-03-01, 'next friday'")
	checklistCmd.AddCommand(checklistAddCmd)
	checklistCmd.AddCommand(checklistDoneCmd)
	checklistCmd.AddCommand(checklistRemoveCmd)
	rootCmd.AddCommand(checklistCmd)
}
