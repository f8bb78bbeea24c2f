// Package parsing turns raw resume text into a candidate record.
package parsing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"maps"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/spigell/hh-screener/internal/model"
	"go.uber.org/zap"
)

const (
	// FallbackEmail is used when the text carries no address. Every such
	// submission shares one candidate id.
	FallbackEmail   = "unknown@example.com"
	unknownValue    = "Unknown"
	maxNameLineRune = 60
)

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`)
	// "5 years of Python", "3+ yrs experience with SQL"
	yearsBeforeSkill = regexp.MustCompile(`(?i)(\d{1,2})\+?\s*(?:years?|yrs?)(?:\s+of)?(?:\s+experience)?(?:\s+(?:with|in|using))?\s+([A-Za-z][A-Za-z0-9+#./-]*(?:\s[A-Za-z][A-Za-z0-9+#./-]*)?)`)
	// "Python: 3 years", "SQL - 2 yrs"
	skillBeforeYears = regexp.MustCompile(`(?i)([A-Za-z][A-Za-z0-9+#./ -]{0,30}?)\s*[:\-(]\s*(\d{1,2})\+?\s*(?:years?|yrs?)`)

	errEmptyResume = model.Permanent(errors.New("resume text is empty"))
)

// knownSkills maps lowercased keywords to their display form.
var knownSkills = map[string]string{
	"python":           "Python",
	"golang":           "Go",
	"java":             "Java",
	"javascript":       "JavaScript",
	"typescript":       "TypeScript",
	"c++":              "C++",
	"c#":               "C#",
	"rust":             "Rust",
	"sql":              "SQL",
	"postgresql":       "PostgreSQL",
	"mysql":            "MySQL",
	"mongodb":          "MongoDB",
	"redis":            "Redis",
	"aws":              "AWS",
	"azure":            "Azure",
	"gcp":              "GCP",
	"docker":           "Docker",
	"kubernetes":       "Kubernetes",
	"terraform":        "Terraform",
	"linux":            "Linux",
	"react":            "React",
	"node.js":          "Node.js",
	"graphql":          "GraphQL",
	"spark":            "Spark",
	"pandas":           "Pandas",
	"tensorflow":       "TensorFlow",
	"pytorch":          "PyTorch",
	"machine learning": "Machine Learning",
	"deep learning":    "Deep Learning",
	"data science":     "Data Science",
	"nlp":              "NLP",
	"devops":           "DevOps",
	"microservices":    "Microservices",
	"git":              "Git",
}

// Input is a raw submission. Job may be nil when the job id did not resolve.
type Input struct {
	RawText string
	Job     *model.JobDescription
}

// Heuristic extracts candidate fields with labelled lines, regular
// expressions and a keyword dictionary.
type Heuristic struct {
	logger *zap.Logger
}

func NewHeuristic(logger *zap.Logger) *Heuristic {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Heuristic{logger: logger}
}

func (h *Heuristic) Name() string {
	return "parsing"
}

// Process builds a candidate from in.RawText. The candidate id depends only on
// the extracted email.
func (h *Heuristic) Process(ctx context.Context, in Input) (*model.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.RawText) == "" {
		return nil, errEmptyResume
	}

	text := in.RawText
	fields := labelledFields(text)

	email := firstNonEmpty(emailPattern.FindString(fields["email"]), emailPattern.FindString(text), FallbackEmail)
	phone := firstNonEmpty(phonePattern.FindString(fields["phone"]), phonePattern.FindString(text))

	c := &model.Candidate{
		ID:             model.CandidateID(email),
		Name:           firstNonEmpty(fields["name"], guessName(text), unknownValue),
		Email:          email,
		Phone:          phone,
		Location:       firstNonEmpty(fields["location"], unknownValue),
		Skills:         extractSkills(text, fields["skills"], in.Job),
		Education:      firstNonEmpty(fields["education"], guessEducation(text)),
		Certifications: extractCertifications(text, fields["certifications"]),
		Languages:      splitList(fields["languages"]),
		NoticePeriod:   firstNonEmpty(fields["notice period"], fields["availability"]),
		ResumeText:     text,
		ResumeHash:     Fingerprint(text),
		JDSimilarity:   Similarity(text, in.Job),
	}
	c.Experience = extractExperience(text, c.Skills)

	h.logger.Info("parsed candidate",
		zap.String("candidate_id", c.ID),
		zap.String("name", c.Name),
		zap.Int("skills", len(c.Skills)),
		zap.Float64("jd_similarity", c.JDSimilarity),
	)

	return c, nil
}

// Fingerprint returns the hex SHA-256 of the raw text.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Similarity is the share of distinct job description words that also occur
// in the resume, 0-100 rounded to two decimals.
func Similarity(text string, job *model.JobDescription) float64 {
	if job == nil {
		return 0
	}
	jdWords := wordSet(job.Description)
	if len(jdWords) == 0 {
		return 0
	}
	resumeWords := wordSet(text)

	overlap := 0
	for w := range jdWords {
		if _, ok := resumeWords[w]; ok {
			overlap++
		}
	}
	return round2(float64(overlap) / float64(len(jdWords)) * 100)
}

func wordSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		out[w] = struct{}{}
	}
	return out
}

// labelledFields collects "Key: value" lines. The first occurrence wins.
func labelledFields(text string) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if key == "" || value == "" || len(key) > 20 {
			continue
		}
		if _, exists := out[key]; !exists {
			out[key] = value
		}
	}
	return out
}

func guessName(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.Contains(line, ":") || emailPattern.MatchString(line) || phonePattern.MatchString(line) {
			continue
		}
		if len([]rune(line)) > maxNameLineRune || strings.ContainsAny(line, "0123456789") {
			return ""
		}
		if words := strings.Fields(line); len(words) >= 1 && len(words) <= 4 {
			return line
		}
		return ""
	}
	return ""
}

var educationMarkers = []string{"bachelor", "master", "phd", "b.sc", "m.sc", "b.s.", "m.s.", "degree", "university"}

func guessEducation(text string) string {
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		for _, marker := range educationMarkers {
			if strings.Contains(lower, marker) {
				return strings.TrimSpace(line)
			}
		}
	}
	return ""
}

func extractSkills(text, listed string, job *model.JobDescription) []string {
	lower := " " + strings.ToLower(text) + " "
	seen := make(map[string]struct{})
	var skills []string
	add := func(skill string) {
		skill = strings.TrimSpace(skill)
		key := strings.ToLower(skill)
		if key == "" {
			return
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		skills = append(skills, skill)
	}

	for _, s := range splitList(listed) {
		if display, ok := knownSkills[strings.ToLower(s)]; ok {
			s = display
		}
		add(s)
	}

	keywords := slices.Sorted(maps.Keys(knownSkills))
	for _, kw := range keywords {
		if containsWord(lower, kw) {
			add(knownSkills[kw])
		}
	}

	if job != nil {
		for _, s := range slices.Concat(job.RequiredSkills, job.PreferredSkills) {
			if containsWord(lower, strings.ToLower(s)) {
				add(s)
			}
		}
	}

	return skills
}

// containsWord reports whether kw occurs in padded lowercase text without
// being glued to other letters or digits.
func containsWord(text, kw string) bool {
	kw = strings.TrimSpace(kw)
	if kw == "" {
		return false
	}
	for i := 0; ; {
		idx := strings.Index(text[i:], kw)
		if idx < 0 {
			return false
		}
		start := i + idx
		end := start + len(kw)
		if !isWordByte(text[start-1]) && (end >= len(text) || !isWordByte(text[end])) {
			return true
		}
		i = start + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

func extractExperience(text string, skills []string) map[string]int {
	canonical := make(map[string]string, len(skills))
	for _, s := range skills {
		lower := strings.ToLower(s)
		canonical[lower] = s
		if first, _, ok := strings.Cut(lower, " "); ok {
			if _, taken := canonical[first]; !taken {
				canonical[first] = s
			}
		}
	}
	for kw, display := range knownSkills {
		if _, ok := canonical[kw]; !ok {
			canonical[kw] = display
		}
	}

	lookup := func(token string) (string, bool) {
		words := strings.Fields(strings.ToLower(token))
		for i := range words {
			words[i] = strings.Trim(words[i], ".,;-(")
		}
		if s, ok := canonical[strings.Join(words, " ")]; ok {
			return s, true
		}
		if n := len(words); n >= 2 {
			if s, ok := canonical[words[n-2]+" "+words[n-1]]; ok {
				return s, true
			}
		}
		for i := len(words) - 1; i >= 0; i-- {
			if s, ok := canonical[words[i]]; ok {
				return s, true
			}
		}
		return "", false
	}

	out := make(map[string]int)
	record := func(token, years string) {
		skill, ok := lookup(token)
		if !ok {
			return
		}
		n, err := strconv.Atoi(years)
		if err != nil || n < 0 {
			return
		}
		if n > out[skill] {
			out[skill] = n
		}
	}

	for _, m := range yearsBeforeSkill.FindAllStringSubmatch(text, -1) {
		record(m[2], m[1])
	}
	for _, m := range skillBeforeYears.FindAllStringSubmatch(text, -1) {
		record(m[1], m[2])
	}
	return out
}

func extractCertifications(text, listed string) []string {
	certs := splitList(listed)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*• "))
		if line == "" || strings.Contains(line, ":") {
			continue
		}
		if strings.Contains(strings.ToLower(line), "certified") && !slices.Contains(certs, line) {
			certs = append(certs, line)
		}
	}
	return certs
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' || r == '|' }) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
