package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spigell/hh-screener/internal/feedback"
	"github.com/spigell/hh-screener/internal/model"
	"github.com/spigell/hh-screener/internal/report"
	"github.com/spigell/hh-screener/internal/validation"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// scoreFields are the sub-scores an interviewer may leave out. Missing ones
// fall back to the evaluator defaults unless asked for interactively.
var scoreFields = []struct {
	keys     []string
	label    string
	fallback float64
}{
	{[]string{"technical_score"}, "Technical score", feedback.DefaultTechnical},
	{[]string{"communication_score"}, "Communication score", feedback.DefaultCommunication},
	{[]string{"culture_fit_score", "culture_fit"}, "Culture fit score", feedback.DefaultCultureFit},
}

var feedbackCmd = &cobra.Command{
	Use:   "feedback <candidate-id>",
	Short: "Record interview feedback for a scheduled candidate",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		submitFeedback(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(feedbackCmd)

	feedbackCmd.Flags().String("job", "", "job description id")
	feedbackCmd.MarkFlagRequired("job")
	feedbackCmd.Flags().StringP("file", "f", "", "a JSON file with the feedback")
	feedbackCmd.Flags().Float64("technical", 0, "technical score (0-10)")
	feedbackCmd.Flags().Float64("communication", 0, "communication score (0-10)")
	feedbackCmd.Flags().Float64("culture-fit", 0, "culture fit score (0-10)")
	feedbackCmd.Flags().String("interviewer", "", "interviewer name")
	feedbackCmd.Flags().String("notes", "", "free form notes")
	feedbackCmd.Flags().BoolP("interactive", "i", false, "ask for scores that were not given")
	addOutputFlag(feedbackCmd)
}

func submitFeedback(cmd *cobra.Command, candidateID string) {
	ctx := context.Background()

	e := setup(ctx)
	defer e.Close()

	bag, err := feedbackBag(cmd)
	if err != nil {
		e.logger.Fatal("reading feedback", zap.Error(err))
	}

	if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
		if err := promptScores(bag); err != nil {
			e.logger.Fatal("exiting", zap.Error(err))
		}
	}

	if err := validation.Validate(validation.SchemaFeedback, map[string]any(bag)); err != nil {
		e.logger.Fatal("validating feedback", zap.Error(err))
	}

	jobID, _ := cmd.Flags().GetString("job")
	res := e.orchestrator.Feedback(ctx, candidateID, jobID, bag)

	e.logger.Info("feedback processed",
		zap.String("status", string(res.Status)),
		zap.String("candidate_id", candidateID),
		zap.String("job_id", jobID),
	)

	if err := render(cmd, res, func(w io.Writer) { report.FeedbackResult(w, res) }); err != nil {
		e.logger.Fatal("printing the result", zap.Error(err))
	}
	if res.Status == model.RunError {
		e.Close()
		os.Exit(1)
	}
}

// feedbackBag merges the feedback file (if any) with flags. Flags win.
func feedbackBag(cmd *cobra.Command) (feedback.Bag, error) {
	bag := feedback.Bag{}

	if path, _ := cmd.Flags().GetString("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &bag); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	flags := map[string]string{
		"technical":     "technical_score",
		"communication": "communication_score",
		"culture-fit":   "culture_fit_score",
	}
	for flag, key := range flags {
		if cmd.Flags().Changed(flag) {
			v, _ := cmd.Flags().GetFloat64(flag)
			bag[key] = v
		}
	}
	for _, key := range []string{"interviewer", "notes"} {
		if cmd.Flags().Changed(key) {
			v, _ := cmd.Flags().GetString(key)
			bag[key] = v
		}
	}

	return bag, nil
}

func promptScores(bag feedback.Bag) error {
	for _, f := range scoreFields {
		if slices.ContainsFunc(f.keys, func(k string) bool { _, ok := bag[k]; return ok }) {
			continue
		}

		prompt := promptui.Prompt{
			Label:    fmt.Sprintf("%s (empty for %.1f)", f.label, f.fallback),
			Validate: validateScore,
		}

		answer, err := prompt.Run()
		if err != nil {
			return err
		}

		answer = strings.TrimSpace(answer)
		if answer == "" {
			continue
		}

		// validateScore already accepted it.
		v, _ := strconv.ParseFloat(answer, 64)
		bag[f.keys[0]] = v
	}
	return nil
}

func validateScore(input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}
	v, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return errors.New("not a number")
	}
	if v < 0 || v > 10 {
		return errors.New("must be between 0 and 10")
	}
	return nil
}
