package llm

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpret_FencedJSON(t *testing.T) {
	raw := "Here is my review:\n```json\n" + `{
		"quality_score": 7.5,
		"summary": "Solid implementation with minor issues.",
		"potential_bugs": ["Possible nil dereference in loop"],
		"suggestions": ["Extract the parsing logic", "Add input validation"],
		"strengths": ["Clear naming"],
		"reasoning": "Scored down for missing validation."
	}` + "\n```\nHope that helps!"

	got := Interpret(raw)

	assert.InDelta(t, 7.5, got.QualityScore, 0.001)
	assert.Equal(t, "Solid implementation with minor issues.", got.ReviewText)
	assert.Equal(t, []string{"Extract the parsing logic", "Add input validation"}, got.Suggestions)
	assert.Equal(t, []string{"Possible nil dereference in loop"}, got.PotentialBugs)
	assert.Equal(t, []string{"Clear naming"}, got.Strengths)
	assert.Equal(t, "Scored down for missing validation.", got.Reasoning)
}

func TestInterpret_PlainFence(t *testing.T) {
	raw := "```\n{\"quality_score\": 9, \"summary\": \"Great.\"}\n```"

	got := Interpret(raw)

	assert.InDelta(t, 9.0, got.QualityScore, 0.001)
	assert.Equal(t, "Great.", got.ReviewText)
	assert.Empty(t, got.Suggestions)
	assert.NotNil(t, got.Suggestions)
}

func TestInterpret_BareJSON(t *testing.T) {
	got := Interpret(`{"quality_score": 6, "summary": "Fine."}`)

	assert.InDelta(t, 6.0, got.QualityScore, 0.001)
	assert.Equal(t, "Fine.", got.ReviewText)
}

func TestInterpret_ScoreVariants(t *testing.T) {
	tests := []struct {
		name string
		json string
		want float64
	}{
		{"quoted string score", `{"quality_score": "8.5", "summary": "ok"}`, 8.5},
		{"missing score defaults", `{"summary": "ok"}`, 5.0},
		{"unparsable string defaults", `{"quality_score": "high", "summary": "ok"}`, 5.0},
		{"clamped above ten", `{"quality_score": 42, "summary": "ok"}`, 10.0},
		{"clamped below one", `{"quality_score": -3, "summary": "ok"}`, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Interpret(tt.json)
			assert.InDelta(t, tt.want, got.QualityScore, 0.001)
		})
	}
}

func TestInterpret_EmptySummaryFallsBack(t *testing.T) {
	got := Interpret(`{"quality_score": 7, "summary": "   "}`)
	assert.Equal(t, "Review completed", got.ReviewText)
}

func TestInterpret_MissingReasoningGetsPlaceholder(t *testing.T) {
	got := Interpret(`{"quality_score": 7, "summary": "ok"}`)
	assert.Equal(t, "No reasoning provided", got.Reasoning)
}

func TestInterpret_SalvageFromProse(t *testing.T) {
	raw := "The code looks reasonable overall.\nI would give it a rating: 8 out of 10.\nConsider refactoring the main loop."

	got := Interpret(raw)

	assert.InDelta(t, 8.0, got.QualityScore, 0.001)
	assert.Equal(t, raw, got.Reasoning)
	assert.Equal(t, []string{"See review text for suggestions"}, got.Suggestions)
	assert.Equal(t, []string{"See review text for potential issues"}, got.PotentialBugs)
	assert.Empty(t, got.Strengths)
}

func TestInterpret_SalvageNoScore(t *testing.T) {
	got := Interpret("Completely unstructured text with no numbers.")
	assert.InDelta(t, 5.0, got.QualityScore, 0.001)
}

func TestInterpret_SalvageTruncatesSummary(t *testing.T) {
	raw := strings.Repeat("x", 800)

	got := Interpret(raw)

	require.Len(t, got.ReviewText, 500)
	assert.Equal(t, raw, got.Reasoning)
}

func TestInterpret_SalvageTruncationKeepsRunesIntact(t *testing.T) {
	// A multibyte rune sitting on the length boundary must survive the
	// cut whole; a split rune would be invalid UTF-8 downstream.
	raw := strings.Repeat("x", 499) + "é" + strings.Repeat("…", 10)

	got := Interpret(raw)

	assert.True(t, utf8.ValidString(got.ReviewText))
	assert.Equal(t, 500, utf8.RuneCountInString(got.ReviewText))
	assert.True(t, strings.HasSuffix(got.ReviewText, "é"))
}

func TestInterpret_SalvageIgnoresOutOfRangeNumbers(t *testing.T) {
	// 100 is not a plausible score, the parser must keep scanning.
	raw := "score was computed over 100 samples\nfinal score: 6.5"

	got := Interpret(raw)

	assert.InDelta(t, 6.5, got.QualityScore, 0.001)
}

func TestExtractFencedBlock(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"json fence preferred", "intro ```json\n{\"a\":1}\n``` outro", `{"a":1}`},
		{"unterminated json fence", "```json\n{\"a\":1}", `{"a":1}`},
		{"plain fence", "```\n{\"b\":2}\n```", `{"b":2}`},
		{"no fence", "  {\"c\":3}  ", `{"c":3}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractFencedBlock(tt.raw))
		})
	}
}
