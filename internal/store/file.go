package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spigell/hh-screener/internal/model"
)

// File is a Memory store mirrored to a JSON document after every write.
type File struct {
	*Memory

	path    string
	flushMu sync.Mutex
}

type snapshot struct {
	Candidates []*model.Candidate      `json:"candidates"`
	Jobs       []*model.JobDescription `json:"jobs"`
	Pipelines  []*model.PipelineState  `json:"pipelines"`
}

// OpenFile loads path if it exists. A missing file is an empty store.
func OpenFile(path string) (*File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store path is required")
	}

	f := &File{Memory: NewMemory(), path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return f, nil
		}
		return nil, fmt.Errorf("reading store file %q: %w", path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return f, nil
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding store file %q: %w", path, err)
	}

	for _, c := range snap.Candidates {
		if c != nil && c.ID != "" {
			f.candidates[c.ID] = c
		}
	}
	for _, j := range snap.Jobs {
		if j != nil && j.ID != "" {
			f.jobs[j.ID] = j
		}
	}
	for _, p := range snap.Pipelines {
		if p != nil && p.CandidateID != "" && p.JobID != "" {
			f.pipelines[p.Key()] = p
		}
	}

	return f, nil
}

func (f *File) PutCandidate(ctx context.Context, c *model.Candidate) error {
	if err := f.Memory.PutCandidate(ctx, c); err != nil {
		return err
	}
	return f.flush()
}

func (f *File) PutJob(ctx context.Context, j *model.JobDescription) error {
	if err := f.Memory.PutJob(ctx, j); err != nil {
		return err
	}
	return f.flush()
}

func (f *File) PutPipeline(ctx context.Context, p *model.PipelineState) error {
	if err := f.Memory.PutPipeline(ctx, p); err != nil {
		return err
	}
	return f.flush()
}

func (f *File) Close() error {
	return f.flush()
}

// flush writes the whole store to a temp file and renames it over path.
func (f *File) flush() error {
	f.flushMu.Lock()
	defer f.flushMu.Unlock()

	jobs, _ := f.Memory.ListJobs(context.Background())
	snap := snapshot{
		Candidates: f.candidateSnapshot(),
		Jobs:       jobs,
		Pipelines:  f.pipelineSnapshot(),
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding store: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating store dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".store-*.json")
	if err != nil {
		return fmt.Errorf("creating temp store file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("writing store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing store: %w", err)
	}

	return os.Rename(tmp.Name(), f.path)
}
