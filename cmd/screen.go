package cmd

import (
	"context"
	"io"

	"github.com/spigell/hh-screener/internal/model"
	"github.com/spigell/hh-screener/internal/parsing"
	"github.com/spigell/hh-screener/internal/pipeline"
	"github.com/spigell/hh-screener/internal/report"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var screenCmd = &cobra.Command{
	Use:   "screen <resume-file>",
	Short: "Run a resume through the screening pipeline for a job",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		screen(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().String("job", "", "job description id")
	screenCmd.Flags().StringP("mode", "m", "", "screening mode: chat or voice (default from screening.mode)")
	screenCmd.MarkFlagRequired("job")
	addOutputFlag(screenCmd)
}

func screen(cmd *cobra.Command, path string) {
	ctx := context.Background()

	e := setup(ctx)
	defer e.Close()

	text, err := parsing.ReadDocument(path)
	if err != nil {
		e.logger.Fatal("reading the resume", zap.Error(err), zap.String("path", path))
	}

	jobID, _ := cmd.Flags().GetString("job")
	mode, _ := cmd.Flags().GetString("mode")
	if mode == "" {
		mode = e.config.Screening.Mode
	}

	res := e.orchestrator.Run(ctx, pipeline.Request{
		RawText: text,
		JobID:   jobID,
		Mode:    model.ParseScreeningMode(mode),
	})

	e.logger.Info("screening finished",
		zap.String("status", string(res.Status)),
		zap.String("candidate_id", res.CandidateID),
		zap.String("job_id", jobID),
	)

	if err := render(cmd, res, func(w io.Writer) { report.Run(w, res) }); err != nil {
		e.logger.Fatal("printing the result", zap.Error(err))
	}
}
