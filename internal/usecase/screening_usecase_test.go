package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fadilmartias/resume-screener/internal/analyzer"
	"github.com/fadilmartias/resume-screener/internal/util"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type fixture struct {
	jobs       *memJobs
	candidates *memCandidates
	screenings *memScreenings
	analyzer   *fakeAnalyzer
	events     *recordingPublisher
	files      *memFiles
	embedder   *fixedEmbedder
	uc         *ScreeningUsecase
}

func outcome(name, contact string, final int) *analyzer.Outcome {
	return &analyzer.Outcome{
		RawText: "resume of " + name,
		Skills: analyzer.SkillAnalysis{
			MustHaveMatches:  []analyzer.SkillMatch{{Skill: "Go", ProficiencyLevel: 3}},
			ExecutiveSummary: name + " is a strong fit.",
		},
		Candidate: analyzer.CandidateProfile{FullName: name, Contact: contact},
		Experience: analyzer.ExperienceMatch{
			RequiredYears:            2,
			CalculatedCandidateYears: 3.456,
			IsSufficient:             true,
		},
		Quality: analyzer.QualityAssessment{QualityScore: 0.9, RedFlags: []string{"short tenure"}},
		Score:   analyzer.ScoreResult{UnadjustedScore: final + 5, FinalScore: final},
	}
}

func newFixture() *fixture {
	f := &fixture{
		jobs:       newMemJobs(),
		candidates: &memCandidates{},
		screenings: &memScreenings{},
		analyzer: &fakeAnalyzer{
			req: analyzer.RequirementProfile{
				JobTitle:                "Go Engineer",
				SeniorityLevel:          analyzer.SeniorityMid,
				RequiredExperienceYears: 2,
				MustHaveSkills:          []string{"Go"},
			},
			outcomes: map[string]*analyzer.Outcome{
				"alice.pdf": outcome("Alice", "alice@example.com", 80),
				"bob.pdf":   outcome("Bob", "bob@example.com", 65),
			},
		},
		events:   &recordingPublisher{},
		files:    &memFiles{},
		embedder: &fixedEmbedder{},
	}
	f.uc = NewScreeningUsecase(ScreeningDeps{
		Jobs:        f.jobs,
		Candidates:  f.candidates,
		Screenings:  f.screenings,
		Analyzer:    f.analyzer,
		Embedder:    f.embedder,
		Files:       f.files,
		Events:      f.events,
		Concurrency: 2,
	})
	return f
}

var textJD = Upload{Filename: "jd.txt", ContentType: util.MimeText, Data: []byte("We need a Go engineer with 2 years.")}

func resumes(names ...string) []Upload {
	out := make([]Upload, len(names))
	for i, n := range names {
		out[i] = Upload{Filename: n, ContentType: util.MimePDF, Data: []byte("%PDF-1.4 " + n)}
	}
	return out
}

func TestScreenResumes_PartialBatch(t *testing.T) {
	f := newFixture()

	res, err := f.uc.ScreenResumes(context.Background(), "", textJD, resumes("alice.pdf", "broken.pdf", "bob.pdf"))
	require.NoError(t, err)

	assert.Equal(t, 1, f.analyzer.deconstructs)
	assert.Equal(t, "Go Engineer", res.Job.Title)
	require.Len(t, res.Screenings, 2)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, SkippedResume{Filename: "broken.pdf", Stage: analyzer.StageExtract, Reason: res.Skipped[0].Reason}, res.Skipped[0])
	assert.Contains(t, res.Skipped[0].Reason, "no text extracted")

	alice := res.Screenings[0]
	assert.Equal(t, float64(80), alice.FinalScore)
	assert.Equal(t, 85, alice.UnadjustedScore)
	assert.Equal(t, 0.9, alice.QualityMultiplier)
	assert.Equal(t, res.Job.ID, alice.JobID)
	require.NotNil(t, alice.Candidate)
	assert.Equal(t, "Alice", alice.Candidate.FullName)
	assert.Equal(t, 3.46, alice.Candidate.TotalExperience)
	assert.True(t, strings.HasPrefix(alice.Candidate.ResumeKey, "resumes/"))
	assert.True(t, strings.HasSuffix(alice.Candidate.ResumeKey, "/alice.pdf"))

	analysis := gjson.ParseBytes(alice.SkillMatchAnalysis)
	assert.Equal(t, "Alice is a strong fit.", analysis.Get("executive_summary").String())
	assert.Equal(t, "short tenure", analysis.Get("quality_assessment.red_flags.0").String())
	assert.True(t, analysis.Get("experience_match_analysis.is_sufficient").Bool())
	assert.Equal(t, int64(3), analysis.Get("must_have_matches.0.proficiency_level").Int())

	assert.Len(t, f.events.events, 2)
	assert.Len(t, f.files.keys, 2)
	assert.Equal(t, 1, f.embedder.calls)
	assert.Contains(t, f.jobs.embeddings, res.Job.ID)

	stored, ok := analyzer.DecodeStoredRequirements(res.Job.StructuredJD)
	require.True(t, ok)
	assert.Equal(t, []string{"Go"}, stored.MustHaveSkills)
}

func TestScreenResumes_ReusesJobByTitle(t *testing.T) {
	f := newFixture()
	first, err := f.uc.ScreenResumes(context.Background(), "Backend", textJD, resumes("alice.pdf"))
	require.NoError(t, err)

	second, err := f.uc.ScreenResumes(context.Background(), "Backend", textJD, resumes("bob.pdf"))
	require.NoError(t, err)

	assert.Equal(t, first.Job.ID, second.Job.ID)
	assert.Len(t, f.jobs.jobs, 1)
	assert.Equal(t, 1, f.embedder.calls)
}

func TestScreenResumes_ReusesCandidateByContact(t *testing.T) {
	f := newFixture()
	f.analyzer.outcomes["alice-v2.pdf"] = outcome("Alice B.", "alice@example.com", 90)

	res, err := f.uc.ScreenResumes(context.Background(), "", textJD, resumes("alice.pdf", "alice-v2.pdf"))
	require.NoError(t, err)
	require.Len(t, res.Screenings, 2)
	assert.Len(t, f.candidates.candidates, 1)
	assert.Equal(t, res.Screenings[0].CandidateID, res.Screenings[1].CandidateID)
}

func TestScreenResumes_PlaceholderContacts(t *testing.T) {
	f := newFixture()
	f.analyzer.outcomes["anon1.pdf"] = outcome("", "", 40)
	f.analyzer.outcomes["anon2.pdf"] = outcome("Not Found", "Not Found", 30)

	res, err := f.uc.ScreenResumes(context.Background(), "", textJD, resumes("anon1.pdf", "anon2.pdf"))
	require.NoError(t, err)
	require.Len(t, res.Screenings, 2)

	c1, c2 := res.Screenings[0].Candidate, res.Screenings[1].Candidate
	assert.NotEqual(t, c1.ID, c2.ID)
	assert.NotEqual(t, c1.Contact, c2.Contact)
	for _, c := range []string{c1.Contact, c2.Contact} {
		assert.True(t, strings.HasPrefix(c, "unknown_"))
		assert.True(t, strings.HasSuffix(c, "@example.com"))
	}
	assert.Equal(t, UnknownCandidateName, c1.FullName)
	assert.Equal(t, UnknownCandidateName, c2.FullName)
}

func TestScreenResumes_UntitledJob(t *testing.T) {
	f := newFixture()
	f.analyzer.req.JobTitle = ""

	res, err := f.uc.ScreenResumes(context.Background(), "  ", textJD, resumes("alice.pdf"))
	require.NoError(t, err)
	assert.Regexp(t, `^Untitled Job - [0-9a-f]{6}$`, res.Job.Title)
}

func TestScreenResumes_AllFail(t *testing.T) {
	f := newFixture()
	res, err := f.uc.ScreenResumes(context.Background(), "", textJD, resumes("x.pdf", "y.pdf"))
	assert.ErrorIs(t, err, ErrNoValidResumes)
	require.NotNil(t, res)
	assert.Len(t, res.Skipped, 2)
	assert.Empty(t, f.screenings.screenings)
}

func TestScreenResumes_DeconstructFailureAborts(t *testing.T) {
	f := newFixture()
	f.analyzer.deconstructErr = errors.New("llm down")

	_, err := f.uc.ScreenResumes(context.Background(), "", textJD, resumes("alice.pdf"))
	assert.Error(t, err)
	assert.Empty(t, f.jobs.jobs)
	assert.Empty(t, f.candidates.candidates)
}

func TestScreenResumes_BadInput(t *testing.T) {
	f := newFixture()

	_, err := f.uc.ScreenResumes(context.Background(), "", textJD, nil)
	assert.ErrorIs(t, err, ErrNoResumes)

	_, err = f.uc.ScreenResumes(context.Background(), "", Upload{Filename: "jd.png", ContentType: "image/png", Data: []byte{1}}, resumes("alice.pdf"))
	assert.ErrorIs(t, err, util.ErrUnsupportedFileType)
	assert.Zero(t, f.analyzer.deconstructs)
}

func TestScreenResumes_PersistFailureIsSkipped(t *testing.T) {
	f := newFixture()
	f.screenings.createErr = errors.New("db gone")

	res, err := f.uc.ScreenResumes(context.Background(), "", textJD, resumes("alice.pdf"))
	assert.ErrorIs(t, err, ErrNoValidResumes)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, SkipStagePersist, res.Skipped[0].Stage)
}

func TestScreenResumes_PublishFailureDoesNotDropScreening(t *testing.T) {
	f := newFixture()
	f.events.err = errors.New("broker unreachable")

	res, err := f.uc.ScreenResumes(context.Background(), "", textJD, resumes("alice.pdf"))
	require.NoError(t, err)
	assert.Len(t, res.Screenings, 1)
}

func TestAddCandidates(t *testing.T) {
	f := newFixture()
	first, err := f.uc.ScreenResumes(context.Background(), "", textJD, resumes("alice.pdf"))
	require.NoError(t, err)
	f.analyzer.req = analyzer.RequirementProfile{}

	res, err := f.uc.AddCandidates(context.Background(), first.Job.ID, resumes("alice.pdf", "bob.pdf"))
	require.NoError(t, err)

	assert.Equal(t, 1, f.analyzer.deconstructs)
	assert.Equal(t, []string{"Go"}, f.analyzer.lastReq.MustHaveSkills)
	require.Len(t, res.Screenings, 1)
	assert.Equal(t, "Bob", res.Screenings[0].Candidate.FullName)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, SkippedResume{Filename: "alice.pdf", Stage: SkipStageDuplicate, Reason: errDuplicateScreening.Error()}, res.Skipped[0])
}

func TestAddCandidates_Errors(t *testing.T) {
	f := newFixture()
	_, err := f.uc.AddCandidates(context.Background(), uuid.New(), resumes("alice.pdf"))
	assert.ErrorIs(t, err, ErrJobNotFound)

	job := newJobWithoutJD(f)
	_, err = f.uc.AddCandidates(context.Background(), job, resumes("alice.pdf"))
	assert.ErrorIs(t, err, ErrMissingStructuredJD)

	_, err = f.uc.AddCandidates(context.Background(), job, nil)
	assert.ErrorIs(t, err, ErrNoResumes)
}

func TestResolveJobTitle(t *testing.T) {
	assert.Equal(t, "Form Title", resolveJobTitle(" Form Title ", "Parsed"))
	assert.Equal(t, "Parsed", resolveJobTitle("", "Parsed"))
	assert.True(t, strings.HasPrefix(resolveJobTitle("", ""), "Untitled Job - "))
}
