package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/k2tech/ailab/internal/debug"
	"github.com/k2tech/ailab/internal/hypothesis"
	"github.com/k2tech/ailab/internal/types"
	"github.com/k2tech/ailab/internal/ui"
)

var (
	updateTitle     string
	updateStatement string
	updateNotes     string
	updatePriority  string
	updateHealth    string
)

var updateCmd = &cobra.Command{
	Use:   "update <hyp-id>",
	Short: "Update hypothesis fields",
	Long:  `Apply a partial update. Only the flags you pass are changed.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &hypothesis.UpdateRequest{UpdatedBy: getActor()}
		if cmd.Flags().Changed("title") {
			req.Title = &updateTitle
		}
		if cmd.Flags().Changed("statement") {
			req.Statement = &updateStatement
		}
		if cmd.Flags().Changed("notes") {
			req.Notes = &updateNotes
		}
		if cmd.Flags().Changed("priority") {
			p := types.Priority(strings.ToUpper(updatePriority))
			req.Priority = &p
		}
		if cmd.Flags().Changed("health") {
			h := types.StageHealth(strings.ToLower(updateHealth))
			req.StageHealth = &h
		}

		detail, err := hypSvc.Update(getContext(), args[0], req)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(detail)
		}
		debug.PrintNormal("Updated %s\n", detail.Record.HypID)
		return nil
	},
}

var stageCmd = &cobra.Command{
	Use:   "stage <hyp-id> <stage>",
	Short: "Move a hypothesis to another stage",
	Long: `Move a hypothesis through the lifecycle. Forward moves are gated: the
gating checklist must be satisfied and required approvals granted.
Backward moves are always allowed.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := types.Stage(strings.ToUpper(args[1]))
		req := &hypothesis.UpdateRequest{UpdatedBy: getActor(), Stage: &target}

		detail, err := hypSvc.Update(getContext(), args[0], req)
		if err != nil {
			var blocked *hypothesis.InvalidTransitionError
			if errors.As(err, &blocked) {
				fmt.Println(ui.RenderFail(fmt.Sprintf("%s blocked: %v", args[0], err)))
			}
			return err
		}
		debug.LogEvent("STAGE_CHANGED", detail.Record.HypID, string(detail.Record.Stage))
		if jsonOutput {
			return printJSON(detail)
		}
		debug.PrintNormal("%s moved to %s\n", detail.Record.HypID, detail.Record.Stage)
		return nil
	},
}

var archiveCmd = &cobra.Command{
	Use:   "archive <hyp-id>",
	Short: "Archive a hypothesis (irreversible)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := hypSvc.Archive(getContext(), args[0], getActor()); err != nil {
			return err
		}
		debug.LogEvent("ARCHIVED", args[0], "")
		debug.PrintNormal("Archived %s\n", args[0])
		return nil
	},
}

func init() {
	updateCmd.Flags().StringVar(&updateTitle, "title", "", "new title")
	updateCmd.Flags().StringVar(&updateStatement, "statement", "", "new statement")
	updateCmd.Flags().StringVar(&updateNotes, "notes", "", "new notes")
	updateCmd.Flags().StringVar(&updatePriority, "priority", "", "new priority")
	updateCmd.Flags().StringVar(&updateHealth, "health", "", "stage health: on-track, warning, risk")
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(stageCmd)
	rootCmd.AddCommand(archiveCmd)
}
