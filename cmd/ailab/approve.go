package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/k2tech/ailab/internal/debug"
	"github.com/k2tech/ailab/internal/hypothesis"
	"github.com/k2tech/ailab/internal/types"
)

var (
	approverRole     string
	approvalRequired bool
	approvalNotes    string
)

var approveCmd = &cobra.Command{
	Use:   "approve",
	Short: "Manage hypothesis approvals",
}

var approveAddCmd = &cobra.Command{
	Use:   "add <hyp-id> <approver>",
	Short: "Register an approver",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor := parseActor(args[1])
		detail, err := hypSvc.AddApproval(getContext(), args[0], &hypothesis.ApprovalRequest{
			ApproverName:  actor.Name,
			ApproverEmail: actor.Email,
			ApproverRole:  approverRole,
			Required:      approvalRequired,
			Notes:         approvalNotes,
		})
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(detail)
		}
		debug.PrintNormal("Registered approver %s on %s\n", actor.Name, args[0])
		return nil
	},
}

var approveSetCmd = &cobra.Command{
	Use:   "set <hyp-id> <approval-id> <approved|rejected|pending>",
	Short: "Record an approval decision",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		status := types.ApprovalStatus(strings.ToLower(args[2]))
		req := &hypothesis.ApprovalUpdateRequest{Status: &status}
		if cmd.Flags().Changed("notes") {
			req.Notes = &approvalNotes
		}
		detail, err := hypSvc.UpdateApproval(getContext(), args[0], args[1], req)
		if err != nil {
			return err
		}
		debug.LogEvent("APPROVAL", args[0], string(status))
		if jsonOutput {
			return printJSON(detail)
		}
		debug.PrintNormal("Approval %s on %s is now %s\n", args[1], args[0], status)
		return nil
	},
}

func init() {
	approveAddCmd.Flags().StringVar(&approverRole, "role", "", "approver role")
	approveAddCmd.Flags().BoolVar(&approvalRequired, "required", false, "block forward stage moves until approved")
	approveAddCmd.Flags().StringVar(&approvalNotes, "notes", "", "notes")
	approveSetCmd.Flags().StringVar(&approvalNotes, "notes", "", "decision notes")
	approveCmd.AddCommand(approveAddCmd)
	approveCmd.AddCommand(approveSetCmd)
	rootCmd.AddCommand(approveCmd)
}
