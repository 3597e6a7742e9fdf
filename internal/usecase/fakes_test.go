package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/fadilmartias/resume-screener/internal/analyzer"
	"github.com/fadilmartias/resume-screener/internal/model"
	"github.com/fadilmartias/resume-screener/internal/repository"
	"github.com/google/uuid"
)

type memJobs struct {
	mu         sync.Mutex
	jobs       []*model.Job
	embeddings map[uuid.UUID][]float32
}

func newMemJobs() *memJobs { return &memJobs{embeddings: map[uuid.UUID][]float32{}} }

func (m *memJobs) FindByTitle(_ context.Context, title string) (*model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.jobs {
		if j.Title == title {
			return j, nil
		}
	}
	return nil, nil
}

func (m *memJobs) FindByID(_ context.Context, id uuid.UUID) (*model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return nil, nil
}

func (m *memJobs) Create(_ context.Context, job *model.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job.ID = uuid.New()
	m.jobs = append(m.jobs, job)
	return nil
}

func (m *memJobs) List(_ context.Context, offset, limit int) ([]repository.JobSummaryRow, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var rows []repository.JobSummaryRow
	for i := offset; i < len(m.jobs) && len(rows) < limit; i++ {
		rows = append(rows, repository.JobSummaryRow{ID: m.jobs[i].ID, Title: m.jobs[i].Title})
	}
	return rows, int64(len(m.jobs)), nil
}

func (m *memJobs) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, j := range m.jobs {
		if j.ID == id {
			m.jobs = append(m.jobs[:i], m.jobs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memJobs) UpdateEmbedding(_ context.Context, id uuid.UUID, embedding []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embeddings[id] = embedding
	return nil
}

func (m *memJobs) SearchSimilar(_ context.Context, id uuid.UUID, topK int) ([]repository.SimilarJobRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var rows []repository.SimilarJobRow
	for _, j := range m.jobs {
		if j.ID != id && len(rows) < topK {
			rows = append(rows, repository.SimilarJobRow{ID: j.ID, Title: j.Title, Distance: 0.5})
		}
	}
	return rows, nil
}

type memCandidates struct {
	mu         sync.Mutex
	candidates []*model.Candidate
}

func (m *memCandidates) FindByContact(_ context.Context, contact string) (*model.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.candidates {
		if c.Contact == contact {
			return c, nil
		}
	}
	return nil, nil
}

func (m *memCandidates) Create(_ context.Context, c *model.Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = uuid.New()
	m.candidates = append(m.candidates, c)
	return nil
}

type memScreenings struct {
	mu         sync.Mutex
	screenings []model.Screening
	createErr  error
}

func (m *memScreenings) Create(_ context.Context, s *model.Screening) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	s.ID = uuid.New()
	m.screenings = append(m.screenings, *s)
	return nil
}

func (m *memScreenings) ExistsForPair(_ context.Context, jobID, candidateID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.screenings {
		if s.JobID == jobID && s.CandidateID == candidateID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memScreenings) byJob(jobID uuid.UUID) []model.Screening {
	var out []model.Screening
	for _, s := range m.screenings {
		if s.JobID == jobID {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FinalScore > out[j].FinalScore })
	return out
}

func (m *memScreenings) ListByJob(_ context.Context, jobID uuid.UUID, offset, limit int) ([]model.Screening, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.byJob(jobID)
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], int64(len(all)), nil
}

func (m *memScreenings) ListAllByJob(_ context.Context, jobID uuid.UUID) ([]model.Screening, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byJob(jobID), nil
}

func (m *memScreenings) FindByID(_ context.Context, id uuid.UUID) (*model.Screening, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.screenings {
		if m.screenings[i].ID == id {
			return &m.screenings[i], nil
		}
	}
	return nil, nil
}

func (m *memScreenings) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.screenings {
		if s.ID == id {
			m.screenings = append(m.screenings[:i], m.screenings[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// fakeAnalyzer returns canned outcomes keyed by filename. Unknown files fail extraction.
type fakeAnalyzer struct {
	req            analyzer.RequirementProfile
	deconstructErr error
	outcomes       map[string]*analyzer.Outcome
	deconstructs   int
	lastReq        analyzer.RequirementProfile
}

func (f *fakeAnalyzer) DeconstructJD(_ context.Context, _ string) (analyzer.RequirementProfile, error) {
	f.deconstructs++
	return f.req, f.deconstructErr
}

func (f *fakeAnalyzer) AnalyzeBatch(_ context.Context, req analyzer.RequirementProfile, docs []analyzer.Document, _ int) []analyzer.BatchItem {
	f.lastReq = req
	items := make([]analyzer.BatchItem, len(docs))
	for i, d := range docs {
		items[i].Document = d
		if o, ok := f.outcomes[d.Filename]; ok {
			items[i].Outcome = o
		} else {
			items[i].Err = &analyzer.StageError{Stage: analyzer.StageExtract, Filename: d.Filename, Err: errors.New("no text extracted")}
		}
	}
	return items
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []any
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, payload)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type memFiles struct {
	mu   sync.Mutex
	keys []string
}

func (m *memFiles) Save(_ context.Context, key string, _ []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append(m.keys, key)
	return key, nil
}

type fixedEmbedder struct{ calls int }

func (e *fixedEmbedder) GenerateEmbedding(_ context.Context, _ string) ([]float32, error) {
	e.calls++
	return []float32{0.1, 0.2, 0.3}, nil
}
