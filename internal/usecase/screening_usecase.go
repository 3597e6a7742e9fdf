package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/fadilmartias/resume-screener/internal/analyzer"
	"github.com/fadilmartias/resume-screener/internal/model"
	"github.com/fadilmartias/resume-screener/internal/service"
	"github.com/fadilmartias/resume-screener/internal/util"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var (
	ErrNoResumes           = errors.New("at least one resume is required")
	ErrNoValidResumes      = errors.New("no resumes could be processed")
	ErrJobNotFound         = errors.New("job not found")
	ErrScreeningNotFound   = errors.New("screening not found")
	ErrMissingStructuredJD = errors.New("job has no structured job description")

	errDuplicateScreening = errors.New("candidate already screened for this job")
)

const (
	UnknownCandidateName = "Unknown Candidate"

	SkipStageDuplicate = "duplicate"
	SkipStagePersist   = "persist"
)

// Upload is one file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type SkippedResume struct {
	Filename string `json:"filename"`
	Stage    string `json:"stage"`
	Reason   string `json:"reason"`
}

// BatchResult is a partial result: Screenings holds what was persisted, Skipped names
// every resume that was dropped and why.
type BatchResult struct {
	Job        *model.Job
	Screenings []model.Screening
	Skipped    []SkippedResume
}

// ScreeningCreatedEvent is published once per persisted screening.
type ScreeningCreatedEvent struct {
	ScreeningID uuid.UUID `json:"screening_id"`
	JobID       uuid.UUID `json:"job_id"`
	CandidateID uuid.UUID `json:"candidate_id"`
	FinalScore  float64   `json:"final_score"`
	ScreenedAt  time.Time `json:"screened_at"`
}

type ScreeningDeps struct {
	Jobs        JobStore
	Candidates  CandidateStore
	Screenings  ScreeningStore
	Analyzer    Analyzer
	Embedder    service.EmbeddingServiceInterface // optional
	Files       service.FileStoreInterface        // optional
	Events      service.EventPublisherInterface   // optional
	Extractor   util.TextExtractor
	Concurrency int
}

type ScreeningUsecase struct {
	jobs        JobStore
	candidates  CandidateStore
	screenings  ScreeningStore
	analyzer    Analyzer
	embedder    service.EmbeddingServiceInterface
	files       service.FileStoreInterface
	events      service.EventPublisherInterface
	extractor   util.TextExtractor
	concurrency int
}

func NewScreeningUsecase(deps ScreeningDeps) *ScreeningUsecase {
	events := deps.Events
	if events == nil {
		events = service.NopPublisher{}
	}
	return &ScreeningUsecase{
		jobs:        deps.Jobs,
		candidates:  deps.Candidates,
		screenings:  deps.Screenings,
		analyzer:    deps.Analyzer,
		embedder:    deps.Embedder,
		files:       deps.Files,
		events:      events,
		extractor:   deps.Extractor,
		concurrency: deps.Concurrency,
	}
}

// ScreenResumes deconstructs the job description once, reuses or creates the job by title
// and screens every resume against it. A deconstruction failure aborts before any resume
// is touched.
func (uc *ScreeningUsecase) ScreenResumes(ctx context.Context, jobTitle string, jd Upload, resumes []Upload) (*BatchResult, error) {
	if len(resumes) == 0 {
		return nil, ErrNoResumes
	}

	jdText, err := uc.extractor.Text(jd.ContentType, jd.Filename, jd.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to read job description: %w", err)
	}

	req, err := uc.analyzer.DeconstructJD(ctx, jdText)
	if err != nil {
		return nil, fmt.Errorf("failed to deconstruct job description: %w", err)
	}

	job, err := uc.findOrCreateJob(ctx, resolveJobTitle(jobTitle, req.JobTitle), jdText, req)
	if err != nil {
		return nil, err
	}
	return uc.screen(ctx, job, req, resumes, false)
}

// AddCandidates screens more resumes against a stored job without re-deconstructing it.
// Candidates already screened for the job are skipped.
func (uc *ScreeningUsecase) AddCandidates(ctx context.Context, jobID uuid.UUID, resumes []Upload) (*BatchResult, error) {
	if len(resumes) == 0 {
		return nil, ErrNoResumes
	}
	job, err := uc.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to load job: %w", err)
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	req, ok := analyzer.DecodeStoredRequirements(job.StructuredJD)
	if !ok {
		return nil, ErrMissingStructuredJD
	}
	return uc.screen(ctx, job, req, resumes, true)
}

func (uc *ScreeningUsecase) screen(ctx context.Context, job *model.Job, req analyzer.RequirementProfile, resumes []Upload, dedupe bool) (*BatchResult, error) {
	docs := make([]analyzer.Document, len(resumes))
	for i, r := range resumes {
		docs[i] = analyzer.Document{Filename: r.Filename, ContentType: r.ContentType, Data: r.Data}
	}

	result := &BatchResult{Job: job, Screenings: []model.Screening{}, Skipped: []SkippedResume{}}
	for _, item := range uc.analyzer.AnalyzeBatch(ctx, req, docs, uc.concurrency) {
		if item.Err != nil {
			result.Skipped = append(result.Skipped, SkippedResume{
				Filename: item.Document.Filename,
				Stage:    failedStage(item.Err),
				Reason:   item.Err.Error(),
			})
			continue
		}

		screening, err := uc.persist(ctx, job, item, dedupe)
		if err != nil {
			stage := SkipStagePersist
			if errors.Is(err, errDuplicateScreening) {
				stage = SkipStageDuplicate
			} else {
				log.Printf("[%s] failed to persist screening: %v", item.Document.Filename, err)
			}
			result.Skipped = append(result.Skipped, SkippedResume{
				Filename: item.Document.Filename,
				Stage:    stage,
				Reason:   err.Error(),
			})
			continue
		}
		result.Screenings = append(result.Screenings, *screening)
	}

	log.Printf("job %s: %d screened, %d skipped", job.ID, len(result.Screenings), len(result.Skipped))
	if len(result.Screenings) == 0 {
		return result, ErrNoValidResumes
	}
	return result, nil
}

func (uc *ScreeningUsecase) findOrCreateJob(ctx context.Context, title, rawText string, req analyzer.RequirementProfile) (*model.Job, error) {
	job, err := uc.jobs.FindByTitle(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("failed to look up job: %w", err)
	}
	if job != nil {
		return job, nil
	}

	job = &model.Job{
		Title:        title,
		RawText:      rawText,
		StructuredJD: datatypes.JSON(analyzer.RawJSON(req)),
	}
	if err := uc.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	if uc.embedder != nil {
		embedding, err := uc.embedder.GenerateEmbedding(ctx, rawText)
		if err != nil {
			log.Printf("warning: failed to embed job %s: %v", job.ID, err)
		} else if err := uc.jobs.UpdateEmbedding(ctx, job.ID, embedding); err != nil {
			log.Printf("warning: failed to store embedding for job %s: %v", job.ID, err)
		}
	}
	return job, nil
}

func (uc *ScreeningUsecase) persist(ctx context.Context, job *model.Job, item analyzer.BatchItem, dedupe bool) (*model.Screening, error) {
	outcome := item.Outcome
	candidate, err := uc.findOrCreateCandidate(ctx, item.Document, outcome)
	if err != nil {
		return nil, err
	}

	if dedupe {
		exists, err := uc.screenings.ExistsForPair(ctx, job.ID, candidate.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing screening: %w", err)
		}
		if exists {
			return nil, errDuplicateScreening
		}
	}

	screening := &model.Screening{
		FinalScore:         float64(outcome.Score.FinalScore),
		UnadjustedScore:    outcome.Score.UnadjustedScore,
		QualityMultiplier:  round2(clampUnit(outcome.Quality.QualityScore)),
		SkillMatchAnalysis: datatypes.JSON(analyzer.RawJSON(analysisDocument(outcome))),
		JobID:              job.ID,
		CandidateID:        candidate.ID,
	}
	if err := uc.screenings.Create(ctx, screening); err != nil {
		return nil, fmt.Errorf("failed to create screening: %w", err)
	}
	screening.Job = job
	screening.Candidate = candidate

	err = uc.events.Publish(ctx, service.EventScreeningCreated, ScreeningCreatedEvent{
		ScreeningID: screening.ID,
		JobID:       job.ID,
		CandidateID: candidate.ID,
		FinalScore:  screening.FinalScore,
		ScreenedAt:  screening.ScreenedAt,
	})
	if err != nil {
		log.Printf("warning: failed to publish %s for %s: %v", service.EventScreeningCreated, screening.ID, err)
	}
	return screening, nil
}

// findOrCreateCandidate keys candidates on their contact string. Resumes without one get
// a unique placeholder so they never collapse into the same row.
func (uc *ScreeningUsecase) findOrCreateCandidate(ctx context.Context, doc analyzer.Document, outcome *analyzer.Outcome) (*model.Candidate, error) {
	contact := strings.TrimSpace(outcome.Candidate.Contact)
	if contact == "" || strings.EqualFold(contact, "not found") {
		contact = placeholderContact()
	} else {
		existing, err := uc.candidates.FindByContact(ctx, contact)
		if err != nil {
			return nil, fmt.Errorf("failed to look up candidate: %w", err)
		}
		if existing != nil {
			return existing, nil
		}
	}

	name := strings.TrimSpace(outcome.Candidate.FullName)
	if name == "" || strings.EqualFold(name, "not found") {
		name = UnknownCandidateName
	}

	candidate := &model.Candidate{
		FullName:         name,
		Contact:          contact,
		RawText:          outcome.RawText,
		StructuredResume: datatypes.JSON(analyzer.RawJSON(outcome.Candidate)),
		TotalExperience:  round2(outcome.Experience.CalculatedCandidateYears),
		ResumeKey:        uc.archive(ctx, doc),
	}
	if err := uc.candidates.Create(ctx, candidate); err != nil {
		return nil, fmt.Errorf("failed to create candidate: %w", err)
	}
	return candidate, nil
}

// archive stores the original upload. Failures only cost the archive copy.
func (uc *ScreeningUsecase) archive(ctx context.Context, doc analyzer.Document) string {
	if uc.files == nil {
		return ""
	}
	name := filepath.Base(filepath.Clean("/" + doc.Filename))
	if name == "/" || name == "." {
		name = "resume.pdf"
	}
	key, err := uc.files.Save(ctx, fmt.Sprintf("resumes/%s/%s", uuid.NewString(), name), doc.Data, util.MimePDF)
	if err != nil {
		log.Printf("[%s] warning: failed to archive resume: %v", doc.Filename, err)
		return ""
	}
	return key
}

// analysisDocument is what gets stored as a screening's skill_match_analysis.
func analysisDocument(o *analyzer.Outcome) map[string]any {
	return map[string]any{
		"must_have_matches":         nonNilMatches(o.Skills.MustHaveMatches),
		"nice_to_have_matches":      nonNilMatches(o.Skills.NiceToHaveMatches),
		"executive_summary":         o.Skills.ExecutiveSummary,
		"experience_match_analysis": o.Experience,
		"quality_assessment":        o.Quality,
		"unadjusted_score":          o.Score.UnadjustedScore,
	}
}

func resolveJobTitle(formTitle, parsedTitle string) string {
	if t := strings.TrimSpace(formTitle); t != "" {
		return t
	}
	if t := strings.TrimSpace(parsedTitle); t != "" {
		return t
	}
	return "Untitled Job - " + strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

func placeholderContact() string {
	return fmt.Sprintf("unknown_%s@example.com", uuid.NewString())
}

func failedStage(err error) string {
	var stageErr *analyzer.StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage
	}
	return "unknown"
}

func nonNilMatches(m []analyzer.SkillMatch) []analyzer.SkillMatch {
	if m == nil {
		return []analyzer.SkillMatch{}
	}
	return m
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return analyzer.DefaultQualityMultiplier
	}
	return math.Max(0, math.Min(1, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
