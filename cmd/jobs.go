package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spigell/hh-screener/internal/model"
	"github.com/spigell/hh-screener/internal/report"
	"github.com/spigell/hh-screener/internal/store"
	"github.com/spigell/hh-screener/internal/validation"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage job descriptions",
}

var jobsAddCmd = &cobra.Command{
	Use:   "add <job-file.json>",
	Short: "Add or replace a job description",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		addJob(cmd, args[0])
	},
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List job descriptions",
	Run: func(cmd *cobra.Command, _ []string) {
		listJobs(cmd)
	},
}

var jobsShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show one job description",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		showJob(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(jobsCmd)
	jobsCmd.AddCommand(jobsAddCmd, jobsListCmd, jobsShowCmd)

	addOutputFlag(jobsAddCmd)
	addOutputFlag(jobsListCmd)
	addOutputFlag(jobsShowCmd)
}

// loadJob reads and validates a job description document. A missing id is generated.
func loadJob(path string) (*model.JobDescription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := validation.ValidateJSON(validation.SchemaJob, data); err != nil {
		return nil, err
	}

	var job model.JobDescription
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	if strings.TrimSpace(job.ID) == "" {
		job.ID = uuid.NewString()
	}

	return &job, nil
}

func addJob(cmd *cobra.Command, path string) {
	ctx := context.Background()

	e := setup(ctx)
	defer e.Close()

	job, err := loadJob(path)
	if err != nil {
		e.logger.Fatal("loading the job description", zap.Error(err), zap.String("path", path))
	}

	if err := e.store.PutJob(ctx, job); err != nil {
		e.logger.Fatal("saving the job description", zap.Error(err))
	}

	e.logger.Info("job description saved", zap.String("job_id", job.ID), zap.String("title", job.Title))

	jobs := []*model.JobDescription{job}
	if err := render(cmd, job, func(w io.Writer) { report.Jobs(w, jobs) }); err != nil {
		e.logger.Fatal("printing the job", zap.Error(err))
	}
}

func listJobs(cmd *cobra.Command) {
	ctx := context.Background()

	e := setup(ctx)
	defer e.Close()

	jobs, err := e.store.ListJobs(ctx)
	if err != nil {
		e.logger.Fatal("listing job descriptions", zap.Error(err))
	}

	if err := render(cmd, jobs, func(w io.Writer) { report.Jobs(w, jobs) }); err != nil {
		e.logger.Fatal("printing jobs", zap.Error(err))
	}
}

func showJob(cmd *cobra.Command, id string) {
	ctx := context.Background()

	e := setup(ctx)
	defer e.Close()

	job, err := e.store.GetJob(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		e.logger.Fatal("job description not found", zap.String("job_id", id))
	}
	if err != nil {
		e.logger.Fatal("getting the job description", zap.Error(err))
	}

	jobs := []*model.JobDescription{job}
	if err := render(cmd, job, func(w io.Writer) { report.Jobs(w, jobs) }); err != nil {
		e.logger.Fatal("printing the job", zap.Error(err))
	}
}
