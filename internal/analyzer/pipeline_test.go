package analyzer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fadilmartias/resume-screener/internal/service"
	"github.com/fadilmartias/resume-screener/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedCompleter answers by prompt section marker so one fake can serve every stage.
type scriptedCompleter struct {
	mu      sync.Mutex
	replies map[string]string
	errs    map[string]error
	calls   map[string]int
	models  map[string]string
}

func newScriptedCompleter() *scriptedCompleter {
	return &scriptedCompleter{
		replies: map[string]string{
			"### JOB DESCRIPTION TEXT ###":          `{"job_title": "Python Developer", "seniority_level": "Mid-level", "required_experience_years": 0, "must_have_skills": ["Python"], "nice_to_have_skills": []}`,
			"### REQUIRED SKILLS ###":               `Sure! Here's the JSON: {"skill_match_analysis": {"must_have_matches": [{"skill": "Python", "proficiency_level": 3, "evidence_from_resume": "5 years of Python"}], "nice_to_have_matches": []}, "executive_summary": "Solid Python engineer."} Hope that helps!`,
			"### RESUME FOR PROFILE EXTRACTION ###": `{"full_name": "Jane Doe", "contact_info": "jane@example.com", "experience_and_projects": [{"title": "Dev", "duration": "2019 - Present"}], "certifications_and_awards": [], "leadership_and_extracurriculars": []}`,
			"### EXPERIENCE LIST ###":               `{"total_experience_years": 5.5}`,
			"### RESUME FOR QUALITY REVIEW ###":     `{"quality_score": 0.9, "red_flags": []}`,
		},
		errs:   map[string]error{},
		calls:  map[string]int{},
		models: map[string]string{},
	}
}

func (s *scriptedCompleter) Complete(ctx context.Context, req service.CompletionRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for marker, reply := range s.replies {
		if !strings.Contains(req.Prompt, marker) {
			continue
		}
		s.calls[marker]++
		s.models[marker] = req.Model
		if err := s.errs[marker]; err != nil {
			return "", err
		}
		return reply, nil
	}
	return "", errors.New("unexpected prompt")
}

func (s *scriptedCompleter) count(marker string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[marker]
}

func plainExtract(data []byte) (string, error) {
	if strings.HasPrefix(string(data), "BROKEN") {
		return "", util.ErrNoTextExtracted
	}
	return string(data), nil
}

func newTestPipeline(c service.CompletionServiceInterface) *Pipeline {
	return NewPipeline(c, Config{
		StructuringModel: "small-model",
		AnalysisModel:    "large-model",
		Temperature:      0.3,
		CallTimeout:      time.Second,
		Extract:          plainExtract,
		Now:              func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) },
	})
}

var pythonReq = RequirementProfile{
	JobTitle:       "Python Developer",
	SeniorityLevel: SeniorityMid,
	MustHaveSkills: []string{"Python"},
}

func TestDeconstructJD(t *testing.T) {
	c := newScriptedCompleter()
	p := newTestPipeline(c)

	req, err := p.DeconstructJD(context.Background(), "We need a Python developer.")
	require.NoError(t, err)
	assert.Equal(t, "Python Developer", req.JobTitle)
	assert.Equal(t, SeniorityMid, req.SeniorityLevel)
	assert.Equal(t, []string{"Python"}, req.MustHaveSkills)
	assert.Equal(t, "small-model", c.models["### JOB DESCRIPTION TEXT ###"])

	_, err = p.DeconstructJD(context.Background(), "   ")
	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageJDDeconstruct, stageErr.Stage)
}

func TestAnalyzeResume_Success(t *testing.T) {
	c := newScriptedCompleter()
	p := newTestPipeline(c)

	out, err := p.AnalyzeResume(context.Background(), pythonReq, []byte("# header\nJane Doe\nPython"), "jane.pdf")
	require.NoError(t, err)

	assert.Equal(t, "jane.pdf", out.Filename)
	assert.Equal(t, "Solid Python engineer.", out.Skills.ExecutiveSummary)
	assert.Equal(t, "jane@example.com", out.Candidate.Contact)
	assert.InDelta(t, 5.5, out.Experience.CalculatedCandidateYears, 1e-9)
	assert.True(t, out.Experience.IsSufficient)
	assert.Equal(t, 100, out.Score.UnadjustedScore)
	assert.Equal(t, 90, out.Score.FinalScore)
	assert.Equal(t, "large-model", c.models["### REQUIRED SKILLS ###"])
}

func TestAnalyzeResume_SkillMatchFailureIsFatal(t *testing.T) {
	c := newScriptedCompleter()
	c.errs["### REQUIRED SKILLS ###"] = errors.New("503 from upstream")
	p := newTestPipeline(c)

	out, err := p.AnalyzeResume(context.Background(), pythonReq, []byte("Python"), "a.pdf")
	assert.Nil(t, out)
	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageSkillMatch, stageErr.Stage)
	assert.Equal(t, "a.pdf", stageErr.Filename)
	var gwErr *GatewayError
	assert.ErrorAs(t, err, &gwErr)
	assert.Zero(t, c.count("### RESUME FOR QUALITY REVIEW ###"))
}

func TestAnalyzeResume_NonCriticalFallbacks(t *testing.T) {
	c := newScriptedCompleter()
	c.replies["### RESUME FOR PROFILE EXTRACTION ###"] = "no json here"
	c.replies["### RESUME FOR QUALITY REVIEW ###"] = `{"quality_score": "n/a"}`
	p := newTestPipeline(c)

	out, err := p.AnalyzeResume(context.Background(), pythonReq, []byte("Python"), "b.pdf")
	require.NoError(t, err)
	assert.Equal(t, CandidateProfile{}, out.Candidate)
	assert.Zero(t, out.Experience.CalculatedCandidateYears)
	assert.Zero(t, c.count("### EXPERIENCE LIST ###"))
	assert.Equal(t, DefaultQualityMultiplier, out.Quality.QualityScore)
	assert.Equal(t, out.Score.UnadjustedScore, out.Score.FinalScore)
}

func TestAnalyzeResume_ExperienceFailureUsesZeroYears(t *testing.T) {
	c := newScriptedCompleter()
	c.errs["### EXPERIENCE LIST ###"] = errors.New("timeout")
	p := newTestPipeline(c)
	req := pythonReq
	req.RequiredExperienceYears = 2

	out, err := p.AnalyzeResume(context.Background(), req, []byte("Python"), "c.pdf")
	require.NoError(t, err)
	assert.Zero(t, out.Experience.CalculatedCandidateYears)
	assert.False(t, out.Experience.IsSufficient)
	// 12 / (12 + 8)
	assert.Equal(t, 60, out.Score.UnadjustedScore)
}

func TestCalculateExperience_Bounds(t *testing.T) {
	records := []ExperienceRecord{{Title: "Dev", Duration: "2019 - Present"}}
	tests := []struct {
		reply string
		want  float64
	}{
		{`{"total_experience_years": 2024}`, MaxExperienceYears},
		{`{"total_experience_years": -3}`, 0},
		{`{"total_experience_years": "7.5"}`, 7.5},
	}
	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			c := newScriptedCompleter()
			c.replies["### EXPERIENCE LIST ###"] = tt.reply
			p := newTestPipeline(c)

			years, err := p.CalculateExperience(context.Background(), records)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, years, 1e-9)
		})
	}
}

func TestAnalyzeResume_EmptyAfterNormalize(t *testing.T) {
	p := newTestPipeline(newScriptedCompleter())
	_, err := p.AnalyzeResume(context.Background(), pythonReq, []byte("# a\n## b"), "d.pdf")
	assert.ErrorIs(t, err, ErrEmptyResume)
}

func TestAnalyzeBatch_OneExtractionFailure(t *testing.T) {
	c := newScriptedCompleter()
	p := newTestPipeline(c)
	docs := []Document{
		{Filename: "one.pdf", Data: []byte("Python one")},
		{Filename: "two.pdf", Data: []byte("BROKEN")},
		{Filename: "three.pdf", Data: []byte("Python three")},
	}

	items := p.AnalyzeBatch(context.Background(), pythonReq, docs, 2)
	require.Len(t, items, 3)

	var ok int
	for _, item := range items {
		if item.Err == nil {
			ok++
			assert.NotNil(t, item.Outcome)
		}
	}
	assert.Equal(t, 2, ok)

	failed := items[1]
	assert.Equal(t, "two.pdf", failed.Document.Filename)
	assert.Nil(t, failed.Outcome)
	var stageErr *StageError
	require.ErrorAs(t, failed.Err, &stageErr)
	assert.Equal(t, StageExtract, stageErr.Stage)
	assert.Equal(t, "two.pdf", stageErr.Filename)
	assert.ErrorIs(t, failed.Err, util.ErrNoTextExtracted)

	assert.Equal(t, "one.pdf", items[0].Outcome.Filename)
	assert.Equal(t, "three.pdf", items[2].Outcome.Filename)
}

type gatedCompleter struct {
	*scriptedCompleter
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (g *gatedCompleter) Complete(ctx context.Context, req service.CompletionRequest) (string, error) {
	n := g.inFlight.Add(1)
	defer g.inFlight.Add(-1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	return g.scriptedCompleter.Complete(ctx, req)
}

func TestAnalyzeBatch_RespectsLimit(t *testing.T) {
	c := &gatedCompleter{scriptedCompleter: newScriptedCompleter()}
	p := newTestPipeline(c)
	docs := make([]Document, 6)
	for i := range docs {
		docs[i] = Document{Filename: "r.pdf", Data: []byte("Python")}
	}

	items := p.AnalyzeBatch(context.Background(), pythonReq, docs, 2)
	for _, item := range items {
		assert.NoError(t, item.Err)
	}
	assert.LessOrEqual(t, c.peak.Load(), int32(2))
}

func TestAnalyzeBatch_CancelledContext(t *testing.T) {
	p := newTestPipeline(newScriptedCompleter())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := p.AnalyzeBatch(ctx, pythonReq, []Document{{Filename: "x.pdf", Data: []byte("Python")}}, 0)
	require.Len(t, items, 1)
	assert.ErrorIs(t, items[0].Err, context.Canceled)
}
