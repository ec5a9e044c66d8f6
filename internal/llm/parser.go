package llm

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sevigo/code-critic/internal/core"
)

const (
	defaultQualityScore = 5.0
	fallbackSummaryLen  = 500
)

// Interpret turns raw model output into a StructuredReview. It never
// fails: if the expected JSON payload cannot be located or parsed, it
// degrades to heuristic extraction so the caller still gets a usable
// result. Parsing degradation is absorbed here and is not an error.
func Interpret(raw string) *core.StructuredReview {
	candidate := extractFencedBlock(raw)

	var payload reviewPayload
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		return salvageReview(raw)
	}

	return &core.StructuredReview{
		QualityScore:  clampScore(coerceScore(payload.QualityScore)),
		ReviewText:    defaultString(payload.Summary, "Review completed"),
		Suggestions:   ensureSlice(payload.Suggestions),
		PotentialBugs: ensureSlice(payload.PotentialBugs),
		Strengths:     ensureSlice(payload.Strengths),
		Reasoning:     defaultString(payload.Reasoning, "No reasoning provided"),
	}
}

// reviewPayload mirrors the JSON layout the prompt requests. QualityScore
// is left untyped because models occasionally emit it as a quoted string.
type reviewPayload struct {
	QualityScore  any      `json:"quality_score"`
	Summary       string   `json:"summary"`
	PotentialBugs []string `json:"potential_bugs"`
	Suggestions   []string `json:"suggestions"`
	Strengths     []string `json:"strengths"`
	Reasoning     string   `json:"reasoning"`
}

// extractFencedBlock locates the machine-readable region of the response:
// a ```json fence first, then any plain ``` fence, else the whole text.
func extractFencedBlock(raw string) string {
	if start := strings.Index(raw, "```json"); start >= 0 {
		inner := raw[start+len("```json"):]
		if end := strings.Index(inner, "```"); end >= 0 {
			return strings.TrimSpace(inner[:end])
		}
		return strings.TrimSpace(inner)
	}
	if start := strings.Index(raw, "```"); start >= 0 {
		inner := raw[start+len("```"):]
		if end := strings.Index(inner, "```"); end >= 0 {
			return strings.TrimSpace(inner[:end])
		}
		return strings.TrimSpace(inner)
	}
	return strings.TrimSpace(raw)
}

// salvageReview is the degraded path for output that honors no structure
// at all. It scans for a score mention, keeps a bounded prefix of the text
// as the summary, and preserves the full text as reasoning.
func salvageReview(raw string) *core.StructuredReview {
	score := defaultQualityScore
	for _, line := range strings.Split(strings.ToLower(raw), "\n") {
		if !strings.Contains(line, "score") && !strings.Contains(line, "rating") {
			continue
		}
		if v, ok := firstScoreToken(line); ok {
			score = v
			break
		}
	}

	// The summary bound is in characters, and the cut must not split a
	// multibyte rune: the store rejects invalid UTF-8.
	summary := raw
	if utf8.RuneCountInString(summary) > fallbackSummaryLen {
		summary = string([]rune(summary)[:fallbackSummaryLen])
	}

	return &core.StructuredReview{
		QualityScore:  score,
		ReviewText:    summary,
		Suggestions:   []string{"See review text for suggestions"},
		PotentialBugs: []string{"See review text for potential issues"},
		Strengths:     []string{},
		Reasoning:     raw,
	}
}

// firstScoreToken returns the first whitespace-separated token on the line
// that parses as a number in [1,10].
func firstScoreToken(line string) (float64, bool) {
	for _, word := range strings.Fields(line) {
		v, err := strconv.ParseFloat(strings.Trim(word, ".,;:"), 64)
		if err != nil {
			continue
		}
		if v >= 1 && v <= 10 {
			return v, true
		}
	}
	return 0, false
}

// coerceScore accepts the number, string, or missing representations of
// quality_score and maps them all to a float.
func coerceScore(v any) float64 {
	switch s := v.(type) {
	case float64:
		return s
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return parsed
		}
	}
	return defaultQualityScore
}

func clampScore(v float64) float64 {
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return v
}

func defaultString(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func ensureSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
