package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/k2tech/ailab/internal/ui"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List active hypotheses",
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := hypSvc.List(getContext())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(items)
		}
		if len(items) == 0 {
			fmt.Println(ui.RenderMuted("no hypotheses yet - try 'ailab create'"))
			return nil
		}
		for _, item := range items {
			fmt.Printf("%s  %-16s %-40s %s\n",
				ui.RenderAccent(item.HypID),
				string(item.Stage),
				ui.TruncateSimple(item.Title, 40),
				ui.RenderMuted(item.Owner))
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <hyp-id>",
	Short: "Show one hypothesis in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		detail, err := hypSvc.Get(getContext(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(detail)
		}
		rec := detail.Record
		fmt.Printf("%s %s\n", ui.RenderCategory(rec.HypID), rec.Title)
		fmt.Println(ui.RenderSeparator())
		fmt.Printf("Stage:      %s\n", rec.Stage)
		if detail.NextGate != "" {
			fmt.Printf("Next gate:  %s\n", detail.NextGate)
		}
		fmt.Printf("Priority:   %s\n", rec.Priority)
		fmt.Printf("Scores:     impact %.1f / feasibility %.1f / confidence %.2f\n",
			rec.ImpactScore, rec.FeasibilityScore, rec.ConfidenceScore)
		if rec.Statement != "" {
			fmt.Printf("Statement:  %s\n", rec.Statement)
		}
		if rec.Description != "" {
			fmt.Println(ui.WrapText(rec.Description, 80))
		}
		for _, owner := range rec.Owners {
			fmt.Printf("Owner:      %s\n", owner.Name)
		}
		if len(detail.Checklist) > 0 {
			fmt.Println(ui.RenderCategory("gating checklist"))
			for _, item := range detail.Checklist {
				icon := ui.RenderWarnIcon()
				if item.Satisfied() {
					icon = ui.RenderPassIcon()
				}
				fmt.Printf("  %s %s (%s)\n", icon, item.Label, item.Status)
			}
		}
		if len(detail.Tasks) > 0 {
			fmt.Println(ui.RenderCategory("tasks"))
			for _, task := range detail.Tasks {
				fmt.Printf("  %s %s [%s/%s]\n", ui.TreeChild, task.Label, task.Status, task.Severity)
			}
		}
		if len(detail.Approvals) > 0 {
			fmt.Println(ui.RenderCategory("approvals"))
			for _, approval := range detail.Approvals {
				fmt.Printf("  %s %s: %s\n", ui.TreeChild, approval.ApproverName, approval.Status)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
}
