package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"

	"github.com/fadilmartias/resume-screener/internal/analyzer"
	"github.com/fadilmartias/resume-screener/internal/config"
	"github.com/fadilmartias/resume-screener/internal/service"
	"github.com/fadilmartias/resume-screener/internal/util"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze --jd <file> <resume.pdf>...",
	Short: "Screen one or more PDF resumes against a job description",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAnalyze,
}

var (
	analyzeJDFile      string
	analyzeConcurrency int
)

func init() {
	analyzeCmd.Flags().StringVar(&analyzeJDFile, "jd", "", "Path to the job description (.txt, .pdf or .docx)")
	analyzeCmd.Flags().IntVarP(&analyzeConcurrency, "concurrency", "c", 0, "Resumes analysed in parallel (defaults to SCREENING_CONCURRENCY)")
	_ = analyzeCmd.MarkFlagRequired("jd")

	rootCmd.AddCommand(analyzeCmd)
}

type analyzeResult struct {
	Filename string            `json:"filename"`
	Outcome  *analyzer.Outcome `json:"outcome,omitempty"`
	Stage    string            `json:"failed_stage,omitempty"`
	Error    string            `json:"error,omitempty"`
}

type analyzeReport struct {
	Requirements analyzer.RequirementProfile `json:"requirements"`
	Results      []analyzeResult             `json:"results"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	jdData, err := os.ReadFile(analyzeJDFile)
	if err != nil {
		return fmt.Errorf("failed to read job description: %w", err)
	}
	screeningConfig := config.LoadScreeningConfig()
	extractor := util.TextExtractor{OCRFallback: screeningConfig.OCRFallback}

	jdText, err := extractor.Text("", analyzeJDFile, jdData)
	if err != nil {
		return fmt.Errorf("failed to extract job description text: %w", err)
	}

	docs := make([]analyzer.Document, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read resume: %w", err)
		}
		docs = append(docs, analyzer.Document{Filename: filepath.Base(path), ContentType: util.MimePDF, Data: data})
	}

	llmConfig := config.LoadLLMConfig()
	completer, err := service.NewCompletionService(ctx, llmConfig)
	if err != nil {
		return err
	}
	pipelineConfig := analyzer.ConfigFromLLM(llmConfig)
	pipelineConfig.Extract = extractor.PDF
	pipeline := analyzer.NewPipeline(completer, pipelineConfig)

	req, err := pipeline.DeconstructJD(ctx, jdText)
	if err != nil {
		return err
	}

	concurrency := analyzeConcurrency
	if concurrency < 1 {
		concurrency = screeningConfig.Concurrency
	}

	report := analyzeReport{Requirements: req}
	for _, item := range pipeline.AnalyzeBatch(ctx, req, docs, concurrency) {
		res := analyzeResult{Filename: item.Document.Filename, Outcome: item.Outcome}
		if item.Err != nil {
			res.Error = item.Err.Error()
			if stageErr, ok := item.Err.(*analyzer.StageError); ok {
				res.Stage = stageErr.Stage
			}
		}
		report.Results = append(report.Results, res)
	}
	sort.SliceStable(report.Results, func(i, j int) bool {
		return finalScore(report.Results[i]) > finalScore(report.Results[j])
	})

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func finalScore(r analyzeResult) int {
	if r.Outcome == nil {
		return -1
	}
	return r.Outcome.Score.FinalScore
}
