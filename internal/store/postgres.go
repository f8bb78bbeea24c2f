package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/spigell/hh-screener/internal/model"
)

// Postgres stores every record as a JSONB payload next to its key columns.
type Postgres struct {
	connection *sql.DB
	logger     *zap.Logger
}

func NewPostgres(ctx context.Context, dsn string, logger *zap.Logger) (*Postgres, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	p := &Postgres{connection: db, logger: logger}
	if err := p.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return p, nil
}

type migration struct {
	Name  string
	Query string
}

var migrations = []migration{
	{
		Name: "create_candidates",
		Query: `CREATE TABLE IF NOT EXISTS candidates (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			phone TEXT,
			resume_hash TEXT,
			payload JSONB NOT NULL,
			stored_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	},
	{
		Name: "create_jobs",
		Query: `CREATE TABLE IF NOT EXISTS jobs (
			id TEXT PRIMARY KEY,
			payload JSONB NOT NULL
		)`,
	},
	{
		Name: "create_pipelines",
		Query: `CREATE TABLE IF NOT EXISTS pipelines (
			candidate_id TEXT NOT NULL,
			job_id TEXT NOT NULL,
			status TEXT NOT NULL,
			retries INTEGER NOT NULL DEFAULT 0,
			errors TEXT[] NOT NULL DEFAULT '{}',
			payload JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (candidate_id, job_id)
		)`,
	},
}

func (p *Postgres) migrate(ctx context.Context) error {
	for _, m := range migrations {
		if _, err := p.connection.ExecContext(ctx, m.Query); err != nil {
			return fmt.Errorf("migration %s: %w", m.Name, err)
		}
		p.logger.Debug("migration applied", zap.String("name", m.Name))
	}
	return nil
}

func (p *Postgres) Close() error {
	return p.connection.Close()
}

func (p *Postgres) PutCandidate(ctx context.Context, c *model.Candidate) error {
	if c == nil || c.ID == "" {
		return fmt.Errorf("candidate id is required")
	}

	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding candidate: %w", err)
	}

	_, err = p.connection.ExecContext(ctx, `INSERT INTO candidates (id, email, phone, resume_hash, payload)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
			SET email = EXCLUDED.email,
				phone = EXCLUDED.phone,
				resume_hash = EXCLUDED.resume_hash,
				payload = EXCLUDED.payload`,
		c.ID, c.Email, c.Phone, c.ResumeHash, payload)
	return err
}

func (p *Postgres) GetCandidate(ctx context.Context, id string) (*model.Candidate, error) {
	var payload []byte
	err := p.connection.QueryRowContext(ctx, `SELECT payload FROM candidates WHERE id = $1`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("candidate %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	var c model.Candidate
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, fmt.Errorf("decoding candidate %s: %w", id, err)
	}
	return &c, nil
}

func (p *Postgres) ScanCandidates(ctx context.Context) iter.Seq2[*model.Candidate, error] {
	return scanPayloads[model.Candidate](ctx, p.connection, `SELECT payload FROM candidates ORDER BY id`)
}

func (p *Postgres) PutJob(ctx context.Context, j *model.JobDescription) error {
	if j == nil || j.ID == "" {
		return fmt.Errorf("job id is required")
	}

	payload, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("encoding job: %w", err)
	}

	_, err = p.connection.ExecContext(ctx, `INSERT INTO jobs (id, payload) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload`, j.ID, payload)
	return err
}

func (p *Postgres) GetJob(ctx context.Context, id string) (*model.JobDescription, error) {
	var payload []byte
	err := p.connection.QueryRowContext(ctx, `SELECT payload FROM jobs WHERE id = $1`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	var j model.JobDescription
	if err := json.Unmarshal(payload, &j); err != nil {
		return nil, fmt.Errorf("decoding job %s: %w", id, err)
	}
	return &j, nil
}

func (p *Postgres) ListJobs(ctx context.Context) ([]*model.JobDescription, error) {
	var jobs []*model.JobDescription
	for j, err := range scanPayloads[model.JobDescription](ctx, p.connection, `SELECT payload FROM jobs ORDER BY id`) {
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

func (p *Postgres) PutPipeline(ctx context.Context, s *model.PipelineState) error {
	if s == nil || s.CandidateID == "" || s.JobID == "" {
		return fmt.Errorf("pipeline key is required")
	}

	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding pipeline state: %w", err)
	}

	errs := s.Errors
	if errs == nil {
		errs = []string{}
	}

	_, err = p.connection.ExecContext(ctx, `INSERT INTO pipelines (candidate_id, job_id, status, retries, errors, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (candidate_id, job_id) DO UPDATE
			SET status = EXCLUDED.status,
				retries = EXCLUDED.retries,
				errors = EXCLUDED.errors,
				payload = EXCLUDED.payload,
				updated_at = EXCLUDED.updated_at`,
		s.CandidateID, s.JobID, string(s.Status), s.Retries, pq.Array(errs), payload, s.CreatedAt, s.UpdatedAt)
	return err
}

func (p *Postgres) GetPipeline(ctx context.Context, key model.PipelineKey) (*model.PipelineState, error) {
	var payload []byte
	err := p.connection.QueryRowContext(ctx,
		`SELECT payload FROM pipelines WHERE candidate_id = $1 AND job_id = $2`,
		key.CandidateID, key.JobID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("pipeline %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	var s model.PipelineState
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("decoding pipeline %s: %w", key, err)
	}
	return &s, nil
}

func (p *Postgres) ScanPipelines(ctx context.Context) iter.Seq2[*model.PipelineState, error] {
	return scanPayloads[model.PipelineState](ctx, p.connection, `SELECT payload FROM pipelines ORDER BY candidate_id, job_id`)
}

// scanPayloads streams JSONB payload rows. Each range runs the query again.
func scanPayloads[T any](ctx context.Context, db *sql.DB, query string) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		rows, err := db.QueryContext(ctx, query)
		if err != nil {
			yield(nil, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			var payload []byte
			if err := rows.Scan(&payload); err != nil {
				yield(nil, err)
				return
			}
			var item T
			if err := json.Unmarshal(payload, &item); err != nil {
				yield(nil, fmt.Errorf("decoding row: %w", err))
				return
			}
			if !yield(&item, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(nil, err)
		}
	}
}
