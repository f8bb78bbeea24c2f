package cmd

import (
	"context"
	"errors"
	"io"

	"github.com/spigell/hh-screener/internal/feedback"
	"github.com/spigell/hh-screener/internal/pipeline"
	"github.com/spigell/hh-screener/internal/report"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var statusCmd = &cobra.Command{
	Use:   "status <candidate-id>",
	Short: "Show the pipeline state of a candidate for a job",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		status(cmd, args[0])
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize pipelines and interview feedback of a job",
	Run: func(cmd *cobra.Command, _ []string) {
		jobReport(cmd)
	},
}

var stagesCmd = &cobra.Command{
	Use:   "stages",
	Short: "List the configured pipeline stages",
	Run: func(cmd *cobra.Command, _ []string) {
		stages(cmd)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd, reportCmd, stagesCmd)

	statusCmd.Flags().String("job", "", "job description id")
	statusCmd.MarkFlagRequired("job")
	addOutputFlag(statusCmd)

	reportCmd.Flags().String("job", "", "job description id")
	reportCmd.MarkFlagRequired("job")
	addOutputFlag(reportCmd)

	addOutputFlag(stagesCmd)
}

func status(cmd *cobra.Command, candidateID string) {
	ctx := context.Background()

	e := setup(ctx)
	defer e.Close()

	jobID, _ := cmd.Flags().GetString("job")

	state, err := e.orchestrator.Status(ctx, candidateID, jobID)
	if errors.Is(err, pipeline.ErrPipelineNotFound) {
		e.logger.Fatal("no pipeline for the candidate", zap.String("candidate_id", candidateID), zap.String("job_id", jobID))
	}
	if err != nil {
		e.logger.Fatal("getting the pipeline state", zap.Error(err))
	}

	if err := render(cmd, state, func(w io.Writer) { report.State(w, state) }); err != nil {
		e.logger.Fatal("printing the state", zap.Error(err))
	}
}

func jobReport(cmd *cobra.Command) {
	ctx := context.Background()

	e := setup(ctx)
	defer e.Close()

	jobID, _ := cmd.Flags().GetString("job")

	states, err := e.orchestrator.Pipelines(ctx, jobID)
	if err != nil {
		e.logger.Fatal("listing pipelines", zap.Error(err))
	}

	results, err := e.orchestrator.FeedbackResults(ctx, jobID)
	if err != nil {
		e.logger.Fatal("collecting feedback", zap.Error(err))
	}

	summary := feedback.Summarize(jobID, results)

	var renderErr error
	payload := map[string]any{"pipelines": states, "feedback": summary}
	err = render(cmd, payload, func(w io.Writer) {
		renderErr = report.Job(w, jobID, states, summary)
	})
	if err = errors.Join(err, renderErr); err != nil {
		e.logger.Fatal("printing the report", zap.Error(err))
	}
}

func stages(cmd *cobra.Command) {
	e := setup(context.Background())
	defer e.Close()

	statuses := e.orchestrator.Describe()
	if err := render(cmd, statuses, func(w io.Writer) { report.Stages(w, statuses) }); err != nil {
		e.logger.Fatal("printing stages", zap.Error(err))
	}
}
