package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/k2tech/ailab/internal/types"
	"github.com/k2tech/ailab/internal/ui"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash"},
	Short:   "Show the portfolio dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		dash, err := hypSvc.BuildDashboard(getContext())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(dash)
		}

		h := dash.Highlights
		fmt.Println(ui.RenderCategory("portfolio"))
		fmt.Printf("  %s  |  %d experiments in flight  |  avg time to value %s  |  %d pending governance\n",
			ui.RenderAccent(h.PortfolioValue), h.ExperimentsInFlight, h.AvgTimeToValue, h.GovernancePending)
		fmt.Println(ui.RenderSeparator())

		for _, section := range dash.Stages {
			if len(section.Items) == 0 {
				fmt.Printf("%s %s\n", ui.RenderMuted(string(section.Key)), ui.RenderMuted("(empty)"))
				continue
			}
			fmt.Printf("%s %s\n", ui.RenderCategory(string(section.Key)), ui.RenderMuted(section.StageOwner))
			for _, item := range section.Items {
				fmt.Printf("  %s %s  %s  %s\n",
					ui.TreeChild,
					ui.RenderAccent(item.ID),
					ui.TruncateSimple(item.Title, 44),
					ui.RenderMuted(item.Owner))
			}
		}

		if dash.FocusHypothesis != nil {
			fmt.Println(ui.RenderSeparator())
			fmt.Printf("Focus: %s %s\n",
				ui.RenderAccent(dash.FocusHypothesis.Record.HypID),
				dash.FocusHypothesis.Record.Title)
		}

		if len(dash.Tasks) > 0 {
			fmt.Println(ui.RenderCategory("tasks"))
			for _, task := range dash.Tasks {
				icon := taskIcon(task.Status)
				fmt.Printf("  %s %s %s %s\n",
					icon, task.HypID, ui.TruncateSimple(task.Label, 40), ui.RenderMuted(string(task.Status)))
			}
		}

		if len(dash.Activity) > 0 {
			fmt.Println(ui.RenderCategory("recent activity"))
			for _, event := range dash.Activity {
				fmt.Printf("  %s %s  %s\n",
					ui.RenderMuted(event.OccurredAt.Format("2006-01-02 15:04")),
					event.HypID, event.Title)
			}
		}
		return nil
	},
}

func taskIcon(status types.TaskStatus) string {
	switch status {
	case types.TaskAtRisk:
		return ui.RenderFailIcon()
	case types.TaskBlocked:
		return ui.RenderWarnIcon()
	default:
		return ui.RenderPassIcon()
	}
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
