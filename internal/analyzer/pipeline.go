package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fadilmartias/resume-screener/internal/config"
	"github.com/fadilmartias/resume-screener/internal/service"
	"github.com/fadilmartias/resume-screener/internal/util"
	"golang.org/x/sync/errgroup"
)

const (
	StageJDDeconstruct = "jd_deconstruct"
	StageExtract       = "extract"
	StageNormalize     = "normalize"
	StageSkillMatch    = "skill_match"
	StageHolisticParse = "holistic_parse"
	StageExperience    = "experience"
	StageQuality       = "quality"
)

const DefaultQualityMultiplier = 1.0

var ErrEmptyResume = errors.New("resume has no text after normalization")

// StageError names the pipeline stage that failed for one resume.
type StageError struct {
	Stage    string
	Filename string
	Err      error
}

func (e *StageError) Error() string {
	if e.Filename == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Filename, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

type Config struct {
	StructuringModel  string
	AnalysisModel     string
	Temperature       float64
	CallTimeout       time.Duration
	RequestsPerSecond float64

	// Extract turns resume bytes into text. Defaults to PDF extraction without OCR.
	Extract func(data []byte) (string, error)
	Now     func() time.Time
}

// ConfigFromLLM copies the model settings of an LLM config into a pipeline config.
func ConfigFromLLM(llm *config.LLMConfig) Config {
	return Config{
		StructuringModel:  llm.StructuringModel,
		AnalysisModel:     llm.AnalysisModel,
		Temperature:       llm.Temperature,
		CallTimeout:       llm.Timeout,
		RequestsPerSecond: llm.RequestsPerSecond,
	}
}

type Pipeline struct {
	gateway *Gateway
	cfg     Config
}

func NewPipeline(completer service.CompletionServiceInterface, cfg Config) *Pipeline {
	if cfg.Extract == nil {
		cfg.Extract = util.TextExtractor{}.PDF
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.AnalysisModel == "" {
		cfg.AnalysisModel = cfg.StructuringModel
	}
	return &Pipeline{
		gateway: NewGateway(completer, cfg.Temperature, cfg.CallTimeout, cfg.RequestsPerSecond),
		cfg:     cfg,
	}
}

// AnalyzeResume runs every per-resume stage. Extraction, normalization and skill matching
// are fatal. Holistic parse, experience and quality failures fall back to defaults.
func (p *Pipeline) AnalyzeResume(ctx context.Context, req RequirementProfile, data []byte, filename string) (*Outcome, error) {
	fail := func(stage string, err error) (*Outcome, error) {
		log.Printf("[%s] %s failed: %v", filename, stage, err)
		return nil, &StageError{Stage: stage, Filename: filename, Err: err}
	}

	log.Printf("[%s] starting analysis", filename)
	raw, err := p.cfg.Extract(data)
	if err != nil {
		return fail(StageExtract, err)
	}
	text := NormalizeResumeText(raw)
	if strings.TrimSpace(text) == "" {
		return fail(StageNormalize, ErrEmptyResume)
	}

	skills, err := p.MatchSkills(ctx, req, text)
	if err != nil {
		return fail(StageSkillMatch, err)
	}

	candidate, err := p.ParseHolistic(ctx, text)
	if err != nil {
		log.Printf("[%s] warning: holistic parse failed, scoring without bonuses: %v", filename, err)
		candidate = CandidateProfile{}
	}

	years, err := p.CalculateExperience(ctx, candidate.ExperienceAndProjects)
	if err != nil {
		log.Printf("[%s] warning: experience calculation failed, using 0 years: %v", filename, err)
		years = 0
	}

	quality, err := p.AssessQuality(ctx, text)
	if err != nil {
		log.Printf("[%s] warning: quality assessment failed, using multiplier %.1f: %v", filename, DefaultQualityMultiplier, err)
		quality = QualityAssessment{QualityScore: DefaultQualityMultiplier, RedFlags: []string{}}
	}

	if err := ctx.Err(); err != nil {
		return fail(StageQuality, err)
	}

	unadjusted := Score(skills, req, candidate, years)
	outcome := &Outcome{
		Filename: filename,
		RawText:  raw,
		Skills:   skills,
		Experience: ExperienceMatch{
			RequiredYears:            req.RequiredExperienceYears,
			CalculatedCandidateYears: years,
			IsSufficient:             years >= float64(req.RequiredExperienceYears),
		},
		Candidate: candidate,
		Quality:   quality,
		Score: ScoreResult{
			UnadjustedScore: unadjusted,
			FinalScore:      ApplyQuality(unadjusted, quality.QualityScore),
		},
	}
	log.Printf("[%s] analysis complete: unadjusted=%d final=%d", filename, outcome.Score.UnadjustedScore, outcome.Score.FinalScore)
	return outcome, nil
}

type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// BatchItem is the result for the document at the same index. Exactly one of Outcome and
// Err is set.
type BatchItem struct {
	Document Document
	Outcome  *Outcome
	Err      error
}

// AnalyzeBatch runs AnalyzeResume for every document with at most limit in flight.
// A failing resume never cancels its siblings.
func (p *Pipeline) AnalyzeBatch(ctx context.Context, req RequirementProfile, docs []Document, limit int) []BatchItem {
	items := make([]BatchItem, len(docs))
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, doc := range docs {
		g.Go(func() error {
			outcome, err := p.AnalyzeResume(ctx, req, doc.Data, doc.Filename)
			items[i] = BatchItem{Document: doc, Outcome: outcome, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return items
}
