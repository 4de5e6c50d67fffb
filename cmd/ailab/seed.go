package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/k2tech/ailab/internal/debug"
	"github.com/k2tech/ailab/internal/hypothesis"
	"github.com/k2tech/ailab/internal/types"
)

// seedFile is the YAML shape accepted by `ailab seed`.
type seedFile struct {
	Hypotheses []seedHypothesis `yaml:"hypotheses"`
}

type seedHypothesis struct {
	Title       string  `yaml:"title"`
	Statement   string  `yaml:"statement"`
	Description string  `yaml:"description"`
	Stage       string  `yaml:"stage"`
	Priority    string  `yaml:"priority"`
	Impact      float64 `yaml:"impact"`
	Feasibility float64 `yaml:"feasibility"`
	Confidence  float64 `yaml:"confidence"`
	Owners      []struct {
		Name  string `yaml:"name"`
		Email string `yaml:"email"`
		Role  string `yaml:"role"`
	} `yaml:"owners"`
	Tags   []string `yaml:"tags"`
	Gating []struct {
		Label  string `yaml:"label"`
		Owner  string `yaml:"owner"`
		Status string `yaml:"status"`
	} `yaml:"gating"`
	OneTimeCost     *float64 `yaml:"oneTimeCost"`
	ProductionWeeks *int     `yaml:"productionWeeks"`
	Experiments     []struct {
		ID     string `yaml:"id"`
		Title  string `yaml:"title"`
		Status string `yaml:"status"`
	} `yaml:"experiments"`
}

var seedCmd = &cobra.Command{
	Use:   "seed <file.yaml>",
	Short: "Load sample hypotheses from a YAML file",
	Long: `Load hypotheses from a YAML seed file into the database. Each entry
becomes a full create operation, so ids, stage history, and activity
events are produced exactly as interactive creation would.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read seed file: %w", err)
		}
		var file seedFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("failed to parse seed file: %w", err)
		}
		if len(file.Hypotheses) == 0 {
			return fmt.Errorf("seed file contains no hypotheses")
		}

		for _, seed := range file.Hypotheses {
			req := &hypothesis.CreateRequest{
				Title:            seed.Title,
				Statement:        seed.Statement,
				Description:      seed.Description,
				InitialStage:     types.Stage(strings.ToUpper(seed.Stage)),
				Priority:         types.Priority(strings.ToUpper(seed.Priority)),
				ImpactScore:      seed.Impact,
				FeasibilityScore: seed.Feasibility,
				ConfidenceScore:  seed.Confidence,
				Tags:             seed.Tags,
			}
			for _, owner := range seed.Owners {
				req.Owners = append(req.Owners, types.Actor{Name: owner.Name, Email: owner.Email, Role: owner.Role})
			}
			for _, gate := range seed.Gating {
				req.GatingChecklist = append(req.GatingChecklist, hypothesis.ChecklistItemInput{
					Label:  gate.Label,
					Owner:  gate.Owner,
					Status: types.ChecklistStatus(gate.Status),
				})
			}
			if seed.OneTimeCost != nil {
				req.ROIEstimate = &types.ValueEstimate{Currency: "USD", OneTimeCost: seed.OneTimeCost}
			}
			if seed.ProductionWeeks != nil {
				req.TimeEstimate = &types.TimeEstimate{ProductionWeeks: seed.ProductionWeeks}
			}
			for _, exp := range seed.Experiments {
				req.LinkedExps = append(req.LinkedExps, types.LinkedExperiment{
					ID:     exp.ID,
					Title:  exp.Title,
					Status: exp.Status,
				})
			}

			detail, err := hypSvc.Create(getContext(), req)
			if err != nil {
				return fmt.Errorf("failed to seed %q: %w", seed.Title, err)
			}
			debug.PrintNormal("Seeded %s: %s\n", detail.Record.HypID, detail.Record.Title)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
