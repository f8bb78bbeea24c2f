// Package report renders pipeline outcomes as terminal tables.
package report

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spigell/hh-screener/internal/feedback"
	"github.com/spigell/hh-screener/internal/model"
	"github.com/spigell/hh-screener/internal/pipeline"
)

var (
	title = color.New(color.FgYellow, color.Bold)
	good  = color.New(color.FgGreen).SprintFunc()
	bad   = color.New(color.FgRed).SprintFunc()
	warn  = color.New(color.FgYellow).SprintFunc()
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	return table
}

// Job renders every pipeline of a job with status and tier counts and the
// feedback summary.
func Job(w io.Writer, jobID string, states []*model.PipelineState, summary feedback.Summary) error {
	title.Fprintf(w, "\nPipelines for job %s\n", jobID)
	table := newTable(w, "Candidate", "Status", "Score", "Tier", "Retries", "Updated")

	statusCounts := map[model.PipelineStatus]int{}
	tierCounts := map[string]int{}
	for _, st := range states {
		statusCounts[st.Status]++

		score, tier := "-", "-"
		if raw, ok := st.Data[pipeline.DataMatch]; ok {
			var m model.MatchScore
			if err := model.Decode(raw, &m); err != nil {
				return fmt.Errorf("decode match score of %s: %w", st.Key(), err)
			}
			score = strconv.FormatFloat(m.RelevanceScore, 'f', 2, 64)
			tier = m.Tier.String()
			tierCounts[tier]++
		}

		table.Append([]string{
			st.CandidateID,
			colorStatus(st.Status),
			score,
			tier,
			strconv.Itoa(st.Retries),
			st.UpdatedAt.Format(time.RFC3339),
		})
	}
	table.Render()

	title.Fprintln(w, "\nStatus distribution")
	table = newTable(w, "Status", "Count")
	for _, status := range sortedKeys(statusCounts) {
		table.Append([]string{string(status), strconv.Itoa(statusCounts[status])})
	}
	table.Render()

	title.Fprintln(w, "\nTier distribution")
	table = newTable(w, "Tier", "Label", "Count")
	for _, tier := range []model.Tier{model.TierTop, model.TierReview, model.TierReject} {
		table.Append([]string{tier.String(), tier.Label(), strconv.Itoa(tierCounts[tier.String()])})
	}
	table.Render()

	Feedback(w, summary)
	return nil
}

// Feedback renders the feedback summary of a job.
func Feedback(w io.Writer, s feedback.Summary) {
	title.Fprintf(w, "\nFeedback (%d interviews, average %.2f)\n", s.Count, s.AverageScore)
	table := newTable(w, "Recommendation", "Count")
	for _, rec := range []model.Recommendation{model.RecommendHire, model.RecommendHold, model.RecommendDrop} {
		table.Append([]string{string(rec), strconv.Itoa(s.Breakdown[rec])})
	}
	table.Render()

	for _, h := range s.Highlights {
		fmt.Fprintf(w, "  - %s\n", h)
	}
}

// Run renders the outcome of one pipeline run.
func Run(w io.Writer, res *model.RunResult) {
	table := newTable(w, "Field", "Value")
	table.Append([]string{"Status", colorRun(res.Status)})
	appendIf(table, "Reason", res.Reason)
	appendIf(table, "Message", res.Message)
	appendIf(table, "Candidate", res.CandidateID)
	appendIf(table, "Job", res.JobID)
	if len(res.Duplicates) > 0 {
		table.Append([]string{"Duplicates", strings.Join(res.Duplicates, ", ")})
	}
	if res.Match != nil {
		table.Append([]string{"Score", strconv.FormatFloat(res.Match.RelevanceScore, 'f', 2, 64)})
		table.Append([]string{"Tier", fmt.Sprintf("%s (%s)", res.Match.Tier, res.Match.Tier.Label())})
		table.Append([]string{"Reasoning", res.Match.Reasoning})
		if len(res.Match.RedFlags) > 0 {
			table.Append([]string{"Red flags", strings.Join(res.Match.RedFlags, "; ")})
		}
	}
	if s := res.Scheduling; s != nil {
		value := s.Action
		if s.Scheduled {
			value = fmt.Sprintf("%s at %s", s.Action, s.InterviewTime.Format(time.RFC3339))
		}
		table.Append([]string{"Scheduling", value})
	}
	if len(res.SkillGaps) > 0 {
		table.Append([]string{"Skill gaps", strings.Join(res.SkillGaps, ", ")})
	}
	table.Render()
}

// State renders one persisted pipeline state. Data bag entries are listed by key.
func State(w io.Writer, st *model.PipelineState) {
	table := newTable(w, "Field", "Value")
	table.Append([]string{"Candidate", st.CandidateID})
	table.Append([]string{"Job", st.JobID})
	table.Append([]string{"Status", colorStatus(st.Status)})
	table.Append([]string{"Retries", strconv.Itoa(st.Retries)})
	table.Append([]string{"Created", st.CreatedAt.Format(time.RFC3339)})
	table.Append([]string{"Updated", st.UpdatedAt.Format(time.RFC3339)})
	if len(st.Data) > 0 {
		table.Append([]string{"Data", strings.Join(sortedKeys(st.Data), ", ")})
	}
	for i, e := range st.Errors {
		table.Append([]string{fmt.Sprintf("Error %d", i+1), e})
	}
	table.Render()
}

// FeedbackResult renders the outcome of one feedback submission.
func FeedbackResult(w io.Writer, res *model.FeedbackResult) {
	table := newTable(w, "Field", "Value")
	table.Append([]string{"Status", colorRun(res.Status)})
	appendIf(table, "Message", res.Message)
	appendIf(table, "Candidate", res.CandidateID)
	if res.Status == model.RunProcessed {
		table.Append([]string{"Final score", strconv.FormatFloat(res.FinalScore, 'f', 2, 64)})
		table.Append([]string{"Recommendation", string(res.Recommendation)})
		table.Append([]string{"Next action", res.NextAction})
		table.Append([]string{"Summary", res.FeedbackSummary})
	}
	table.Render()
}

// Stages renders stage descriptions.
func Stages(w io.Writer, statuses []pipeline.Status) {
	table := newTable(w, "Stage", "Enabled", "Details")
	for _, s := range statuses {
		enabled := good("yes")
		if !s.Enabled {
			enabled = bad("no")
			if s.Reason != "" {
				enabled += " (" + s.Reason + ")"
			}
		}

		details := make([]string, 0, len(s.Details))
		for _, k := range sortedKeys(s.Details) {
			details = append(details, k+"="+s.Details[k])
		}
		table.Append([]string{s.Name, enabled, strings.Join(details, " ")})
	}
	table.Render()
}

// Jobs renders a job listing.
func Jobs(w io.Writer, jobs []*model.JobDescription) {
	table := newTable(w, "ID", "Title", "Company", "Required skills", "Years")
	for _, j := range jobs {
		table.Append([]string{j.ID, j.Title, j.Company, strings.Join(j.RequiredSkills, ", "), strconv.Itoa(j.ExperienceRequired)})
	}
	table.Render()
}

func appendIf(table *tablewriter.Table, field, value string) {
	if value != "" {
		table.Append([]string{field, value})
	}
}

func colorStatus(s model.PipelineStatus) string {
	switch s {
	case model.StatusRejected:
		return bad(string(s))
	case model.StatusScheduled, model.StatusCompleted:
		return good(string(s))
	default:
		return warn(string(s))
	}
}

func colorRun(s model.RunStatus) string {
	switch s {
	case model.RunProcessed:
		return good(string(s))
	case model.RunRejected:
		return warn(string(s))
	default:
		return bad(string(s))
	}
}

func sortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
