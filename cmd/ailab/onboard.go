package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/k2tech/ailab/internal/debug"
	"github.com/k2tech/ailab/internal/onboarding"
	"github.com/k2tech/ailab/internal/types"
	"github.com/k2tech/ailab/internal/ui"
)

var (
	onboardLang     string
	onboardMode     string
	onboardIndustry string
	onboardHorizon  int
	onboardConsent  bool
	onboardVoiceOK  bool
	ingestSource    string
	ingestFile      string
	reportNoPager   bool
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Run onboarding sessions",
	Long: `Onboarding sessions capture free-form text (typed or transcribed) from a
new user, extract their role, goals, and barriers, and turn those into a
phased roadmap and a readiness checklist.`,
}

var onboardStartCmd = &cobra.Command{
	Use:   "start <user-id>",
	Short: "Start a new onboarding session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := onbSvc.CreateSession(getContext(), &onboarding.CreateSessionRequest{
			UserID:            args[0],
			Language:          onboardLang,
			Mode:              onboardMode,
			Industry:          onboardIndustry,
			ConsentGiven:      onboardConsent,
			VoiceConsent:      onboardVoiceOK,
			TimeHorizonMonths: onboardHorizon,
		})
		if err != nil {
			return err
		}
		debug.LogEvent("SESSION_STARTED", session.ID, "user="+args[0])
		if jsonOutput {
			return printJSON(session)
		}
		debug.PrintNormal("Started session %s for %s (%s/%s, %d month horizon)\n",
			session.ID, session.UserID, session.Language, session.Mode, session.TimeHorizonMonths)
		return nil
	},
}

var onboardShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a session's summary, roadmap, and checklist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := onbSvc.GetSession(getContext(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(session)
		}
		printSession(session)
		return nil
	},
}

var onboardIngestCmd = &cobra.Command{
	Use:   "ingest <session-id> [text]",
	Short: "Ingest text into a session (or --file to read from disk)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var text string
		switch {
		case ingestFile != "":
			data, err := os.ReadFile(ingestFile)
			if err != nil {
				return fmt.Errorf("failed to read --file: %w", err)
			}
			text = string(data)
		case len(args) == 2:
			text = args[1]
		default:
			return fmt.Errorf("provide text as an argument or via --file")
		}
		session, err := onbSvc.IngestText(getContext(), args[0], ingestSource, text)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(session)
		}
		debug.PrintNormal("Ingested %d bytes into %s (readiness %d)\n", len(text), session.ID, session.ReadinessScore)
		printSummary(session.ExtractedSummary)
		return nil
	},
}

var onboardRoadmapCmd = &cobra.Command{
	Use:   "roadmap <session-id>",
	Short: "Regenerate the session roadmap from the current summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := onbSvc.GenerateRoadmap(getContext(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(session.Roadmap)
		}
		printRoadmap(session.Roadmap)
		return nil
	},
}

var onboardChecklistCmd = &cobra.Command{
	Use:   "checklist <session-id> [item-id] [status]",
	Short: "Regenerate the readiness checklist, or set an item's status",
	Args:  cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		var session *types.OnboardingSession
		var err error
		switch len(args) {
		case 1:
			session, err = onbSvc.GenerateChecklist(getContext(), args[0])
		case 3:
			session, err = onbSvc.UpdateChecklistStatus(getContext(), args[0], args[1], args[2])
		default:
			return fmt.Errorf("pass a session id alone, or session id, item id, and status")
		}
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(session)
		}
		printChecklist(session)
		return nil
	},
}

var onboardVoiceCmd = &cobra.Command{
	Use:   "voice <session-id> <command>",
	Short: "Apply a voice command, e.g. 'set horizon 9'",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, applied, err := onbSvc.ApplyVoiceCommand(getContext(), args[0], args[1])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(map[string]any{"session": session, "applied": applied})
		}
		if len(applied) == 0 {
			debug.PrintNormal("%s\n", ui.RenderWarn("Command not recognized; no changes applied"))
			return nil
		}
		for field, value := range applied {
			debug.PrintNormal("Set %s = %v\n", field, value)
		}
		return nil
	},
}

var onboardCompleteCmd = &cobra.Command{
	Use:   "complete <session-id>",
	Short: "Mark a session completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := onbSvc.Complete(getContext(), args[0])
		if err != nil {
			return err
		}
		debug.LogEvent("SESSION_COMPLETED", session.ID, fmt.Sprintf("readiness=%d", session.ReadinessScore))
		if jsonOutput {
			return printJSON(session)
		}
		debug.PrintNormal("Session %s completed with readiness score %d\n", session.ID, session.ReadinessScore)
		return nil
	},
}

var onboardReportCmd = &cobra.Command{
	Use:   "report <session-id>",
	Short: "Render the session's markdown report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := onbSvc.Report(getContext(), args[0])
		if err != nil {
			return err
		}
		return ui.ToPager(ui.RenderMarkdown(report), ui.PagerOptions{NoPager: reportNoPager})
	},
}

var onboardRemoveCmd = &cobra.Command{
	Use:   "rm <session-id>",
	Short: "Delete a session and its transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := onbSvc.Delete(getContext(), args[0]); err != nil {
			return err
		}
		debug.LogEvent("SESSION_DELETED", args[0], "")
		debug.PrintNormal("Deleted session %s\n", args[0])
		return nil
	},
}

func printSession(session *types.OnboardingSession) {
	fmt.Printf("%s  %s\n", ui.RenderAccent(session.ID), session.UserID)
	fmt.Printf("  Status:    %s\n", session.Status)
	fmt.Printf("  Mode:      %s/%s", session.Language, session.Mode)
	if session.Industry != "" {
		fmt.Printf("  (%s)", session.Industry)
	}
	fmt.Println()
	fmt.Printf("  Horizon:   %d months\n", session.TimeHorizonMonths)
	fmt.Printf("  Readiness: %d/100\n", session.ReadinessScore)
	printSummary(session.ExtractedSummary)
	printRoadmap(session.Roadmap)
	printChecklist(session)
}

func printSummary(summary types.Summary) {
	fmt.Println()
	fmt.Println(ui.RenderAccent("Extracted summary"))
	for _, key := range types.SummaryKeys {
		values := summary[key]
		if len(values) == 0 {
			fmt.Printf("  %-14s %s\n", key+":", ui.RenderMuted("(none)"))
			continue
		}
		fmt.Printf("  %-14s %s\n", key+":", strings.Join(values, "; "))
	}
}

func printRoadmap(roadmap types.Roadmap) {
	fmt.Println()
	fmt.Println(ui.RenderAccent("Roadmap"))
	for _, phase := range []string{"Discovery", "Pilot", "Scale"} {
		items := roadmap[phase]
		fmt.Printf("  %s\n", phase)
		for _, item := range items {
			fmt.Printf("    month %2d  %s\n", item.DueMonth, item.Title)
		}
	}
}

func printChecklist(session *types.OnboardingSession) {
	fmt.Println()
	fmt.Println(ui.RenderAccent("Readiness checklist"))
	for _, item := range session.Checklist {
		icon := ui.IconSkip
		if item.Status == "complete" {
			icon = ui.IconPass
		}
		fmt.Printf("  %s %s [%s] %s (due %s)\n", icon, item.ID, item.Category, item.Title, item.DueDate)
	}
}

func init() {
	onboardStartCmd.Flags().StringVar(&onboardLang, "lang", "", "session language (default en)")
	onboardStartCmd.Flags().StringVar(&onboardMode, "mode", "", "input mode: text or voice")
	onboardStartCmd.Flags().StringVar(&onboardIndustry, "industry", "", "industry context")
	onboardStartCmd.Flags().IntVar(&onboardHorizon, "horizon", 0, "planning horizon in months (default 6)")
	onboardStartCmd.Flags().BoolVar(&onboardConsent, "consent", false, "record data-processing consent")
	onboardStartCmd.Flags().BoolVar(&onboardVoiceOK, "voice-consent", false, "record voice-capture consent")
	onboardIngestCmd.Flags().StringVar(&ingestSource, "source", "text", "source: text or voice")
	onboardIngestCmd.Flags().StringVar(&ingestFile, "file", "", "read text from a file instead of the argument")
	onboardReportCmd.Flags().BoolVar(&reportNoPager, "no-pager", false, "print directly instead of piping to a pager")
	onboardCmd.AddCommand(onboardStartCmd)
	onboardCmd.AddCommand(onboardShowCmd)
	onboardCmd.AddCommand(onboardIngestCmd)
	onboardCmd.AddCommand(onboardRoadmapCmd)
	onboardCmd.AddCommand(onboardChecklistCmd)
	onboardCmd.AddCommand(onboardVoiceCmd)
	onboardCmd.AddCommand(onboardCompleteCmd)
	onboardCmd.AddCommand(onboardReportCmd)
	onboardCmd.AddCommand(onboardRemoveCmd)
	rootCmd.AddCommand(onboardCmd)
}
