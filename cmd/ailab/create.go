package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/k2tech/ailab/internal/debug"
	"github.com/k2tech/ailab/internal/hypothesis"
	"github.com/k2tech/ailab/internal/types"
)

var (
	createStatement   string
	createDescription string
	createStage       string
	createPriority    string
	createOwners      []string
	createTags        []string
	createImpact      float64
	createFeasibility float64
	createConfidence  float64
	createChecklist   []string
)

var createCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a new hypothesis",
	Long: `Create a hypothesis in the portfolio. The next HYP-NNN id is allocated
automatically. Owners default to the current actor when none are given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owners := make([]types.Actor, 0, len(createOwners))
		for _, o := range createOwners {
			owners = append(owners, parseActor(o))
		}
		if len(owners) == 0 {
			owners = append(owners, types.Actor{Name: getActor()})
		}

		checklist := make([]hypothesis.ChecklistItemInput, 0, len(createChecklist))
		for _, label := range createChecklist {
			checklist = append(checklist, hypothesis.ChecklistItemInput{Label: label})
		}

		req := &hypothesis.CreateRequest{
			Title:            args[0],
			Statement:        createStatement,
			Description:      createDescription,
			InitialStage:     types.Stage(strings.ToUpper(createStage)),
			Priority:         types.Priority(strings.ToUpper(createPriority)),
			ImpactScore:      createImpact,
			FeasibilityScore: createFeasibility,
			ConfidenceScore:  createConfidence,
			Tags:             createTags,
			Owners:           owners,
			GatingChecklist:  checklist,
		}

		detail, err := hypSvc.Create(getContext(), req)
		if err != nil {
			return err
		}
		debug.LogEvent("CREATED", detail.Record.HypID, detail.Record.Title)

		if jsonOutput {
			return printJSON(detail)
		}
		debug.PrintNormal("Created %s: %s [%s]\n", detail.Record.HypID, detail.Record.Title, detail.Record.Stage)
		return nil
	},
}

// parseActor splits "Name <email>" into an Actor. Plain names pass through.
func parseActor(s string) types.Actor {
	s = strings.TrimSpace(s)
	if open := strings.IndexByte(s, '<'); open >= 0 && strings.HasSuffix(s, ">") {
		return types.Actor{
			Name:  strings.TrimSpace(s[:open]),
			Email: strings.TrimSuffix(s[open+1:], ">"),
		}
	}
	return types.Actor{Name: s}
}

func init() {
	createCmd.Flags().StringVarP(&createStatement, "statement", "s", "", "hypothesis statement (we believe that ...)")
	createCmd.Flags().StringVarP(&createDescription, "description", "d", "", "longer description")
	createCmd.Flags().StringVar(&createStage, "stage", "", "initial stage (default IDEATION)")
	createCmd.Flags().StringVarP(&createPriority, "priority", "p", "", "priority: LOW, MEDIUM, HIGH, CRITICAL")
	createCmd.Flags().StringArrayVar(&createOwners, "owner", nil, "owner, as 'Name' or 'Name <email>' (repeatable)")
	createCmd.Flags().StringArrayVar(&createTags, "tag", nil, "tag (repeatable)")
	createCmd.Flags().Float64Var(&createImpact, "impact", 0, "impact score 0-10")
	createCmd.Flags().Float64Var(&createFeasibility, "feasibility", 0, "feasibility score 0-10")
	createCmd.Flags().Float64Var(&createConfidence, "confidence", 0, "confidence score 0-1")
	createCmd.Flags().StringArrayVar(&createChecklist, "gate", nil, "gating checklist item label (repeatable)")
	rootCmd.AddCommand(createCmd)
}
