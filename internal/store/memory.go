package store

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"strings"
	"sync"

	"github.com/spigell/hh-screener/internal/model"
)

// Memory keeps everything in process. Stored and returned values are copies.
type Memory struct {
	mu         sync.RWMutex
	candidates map[string]*model.Candidate
	jobs       map[string]*model.JobDescription
	pipelines  map[model.PipelineKey]*model.PipelineState
}

func NewMemory() *Memory {
	return &Memory{
		candidates: make(map[string]*model.Candidate),
		jobs:       make(map[string]*model.JobDescription),
		pipelines:  make(map[model.PipelineKey]*model.PipelineState),
	}
}

func (m *Memory) PutCandidate(_ context.Context, c *model.Candidate) error {
	if c == nil || strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("candidate id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.candidates[c.ID] = c.Clone()
	return nil
}

func (m *Memory) GetCandidate(_ context.Context, id string) (*model.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.candidates[id]
	if !ok {
		return nil, fmt.Errorf("candidate %s: %w", id, ErrNotFound)
	}
	return c.Clone(), nil
}

func (m *Memory) ScanCandidates(ctx context.Context) iter.Seq2[*model.Candidate, error] {
	return func(yield func(*model.Candidate, error) bool) {
		for _, c := range m.candidateSnapshot() {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if !yield(c, nil) {
				return
			}
		}
	}
}

func (m *Memory) candidateSnapshot() []*model.Candidate {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Candidate, 0, len(m.candidates))
	for _, c := range m.candidates {
		out = append(out, c.Clone())
	}
	slices.SortFunc(out, func(a, b *model.Candidate) int { return strings.Compare(a.ID, b.ID) })
	return out
}

func (m *Memory) PutJob(_ context.Context, j *model.JobDescription) error {
	if j == nil || strings.TrimSpace(j.ID) == "" {
		return fmt.Errorf("job id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[j.ID] = j.Clone()
	return nil
}

func (m *Memory) GetJob(_ context.Context, id string) (*model.JobDescription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return j.Clone(), nil
}

func (m *Memory) ListJobs(_ context.Context) ([]*model.JobDescription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.JobDescription, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, j.Clone())
	}
	slices.SortFunc(out, func(a, b *model.JobDescription) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

func (m *Memory) PutPipeline(_ context.Context, p *model.PipelineState) error {
	if p == nil || p.CandidateID == "" || p.JobID == "" {
		return fmt.Errorf("pipeline key is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pipelines[p.Key()] = p.Clone()
	return nil
}

func (m *Memory) GetPipeline(_ context.Context, key model.PipelineKey) (*model.PipelineState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.pipelines[key]
	if !ok {
		return nil, fmt.Errorf("pipeline %s: %w", key, ErrNotFound)
	}
	return p.Clone(), nil
}

func (m *Memory) ScanPipelines(ctx context.Context) iter.Seq2[*model.PipelineState, error] {
	return func(yield func(*model.PipelineState, error) bool) {
		for _, p := range m.pipelineSnapshot() {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if !yield(p, nil) {
				return
			}
		}
	}
}

func (m *Memory) pipelineSnapshot() []*model.PipelineState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.PipelineState, 0, len(m.pipelines))
	for _, p := range m.pipelines {
		out = append(out, p.Clone())
	}
	slices.SortFunc(out, func(a, b *model.PipelineState) int {
		return strings.Compare(a.Key().String(), b.Key().String())
	})
	return out
}

func (m *Memory) Close() error { return nil }
