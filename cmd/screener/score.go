package main

import (
	"fmt"
	"os"

	"github.com/fadilmartias/resume-screener/internal/analyzer"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

var scoreCmd = &cobra.Command{
	Use:   "score --fixture <file.json>",
	Short: "Run the weighted scorer over saved stage outputs",
	Long: `Run the deterministic scorer over a JSON fixture of the form
{"requirements": {...}, "skill_match": {...}, "candidate": {...}, "candidate_years": 3.5, "quality_score": 0.9}.
Stage outputs are decoded as leniently as live model replies.`,
	RunE: runScore,
}

var scoreFixture string

func init() {
	scoreCmd.Flags().StringVarP(&scoreFixture, "fixture", "f", "", "Path to the JSON fixture")
	_ = scoreCmd.MarkFlagRequired("fixture")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	data, err := os.ReadFile(scoreFixture)
	if err != nil {
		return fmt.Errorf("failed to read fixture: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("fixture %s is not valid JSON", scoreFixture)
	}
	fixture := gjson.ParseBytes(data)

	req := analyzer.DecodeRequirementProfile(fixture.Get("requirements"))
	skills := analyzer.DecodeSkillAnalysis(fixture.Get("skill_match"))
	candidate := analyzer.DecodeCandidateProfile(fixture.Get("candidate"))
	years := fixture.Get("candidate_years").Float()
	quality := analyzer.DefaultQualityMultiplier
	if q := fixture.Get("quality_score"); q.Exists() {
		quality = q.Float()
	}

	unadjusted := analyzer.Score(skills, req, candidate, years)
	final := analyzer.ApplyQuality(unadjusted, quality)
	w := analyzer.PresetFor(req.SeniorityLevel)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "seniority:        %s (must %.0f, nice %.0f, experience %.0f, cert %.0f, leadership %.0f)\n",
		req.SeniorityLevel, w.MustHave, w.NiceToHave, w.Experience, w.Certification, w.Leadership)
	fmt.Fprintf(out, "unadjusted score: %d\n", unadjusted)
	fmt.Fprintf(out, "quality:          %.2f\n", quality)
	fmt.Fprintf(out, "final score:      %d\n", final)
	return nil
}
