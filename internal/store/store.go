// Package store persists candidates, job descriptions and pipeline states.
//
// Every backend is keyed by primary key only: candidates by id, jobs by id and
// pipeline states by (candidate id, job id). Records are overwritten, never
// deleted. Backends are safe for concurrent use, but two calls are never atomic
// together.
package store

import (
	"context"
	"errors"
	"iter"

	"github.com/spigell/hh-screener/internal/model"
)

var ErrNotFound = errors.New("not found")

type Store interface {
	PutCandidate(ctx context.Context, c *model.Candidate) error
	GetCandidate(ctx context.Context, id string) (*model.Candidate, error)
	// ScanCandidates yields every stored candidate. The sequence is finite and
	// can be ranged over more than once.
	ScanCandidates(ctx context.Context) iter.Seq2[*model.Candidate, error]

	PutJob(ctx context.Context, j *model.JobDescription) error
	GetJob(ctx context.Context, id string) (*model.JobDescription, error)
	ListJobs(ctx context.Context) ([]*model.JobDescription, error)

	PutPipeline(ctx context.Context, p *model.PipelineState) error
	GetPipeline(ctx context.Context, key model.PipelineKey) (*model.PipelineState, error)
	ScanPipelines(ctx context.Context) iter.Seq2[*model.PipelineState, error]

	Close() error
}
