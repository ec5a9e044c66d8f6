package review

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/sevigo/code-critic/internal/core"
)

// Score adjustments applied by the offline heuristics. Floors depend on
// whether any bug was found; a small upward jitter rewards clean longer
// snippets without ever leaving the [1,10] range.
const (
	baselineScore        = 8.0
	typoPenalty          = 2.0
	terminatorPenalty    = 1.5
	noCommentsPenalty    = 0.5
	braceMismatchPenalty = 2.0
	bugScoreFloor        = 3.0
	shortSnippetFloor    = 5.0
	cleanScoreCeiling    = 9.0
	shortSnippetLen      = 50
	maxSuggestions       = 3
)

// braceLanguages are the languages the statement-terminator scan and the
// brace balance check apply to.
var braceLanguages = map[string]bool{
	"java":       true,
	"javascript": true,
	"typescript": true,
	"c":          true,
	"c++":        true,
	"cpp":        true,
}

// statementKeywords marks a line as one that should end in a terminator.
// This is a deliberately narrow allowlist, not a parser: it exists to
// catch the obvious cases cheaply, and it reports only the first hit.
var statementKeywords = []string{
	"System.out", "console.", "printf", "cout", "return",
	"int ", "String ", "var ", "let ", "const ",
}

// Analyzer is a self-contained, non-networked substitute for the model
// gateway and interpreter, producing a structured review from static
// heuristics over the code text. It is a contract-compatible stand-in for
// the live model, not a quality approximation of it.
type Analyzer struct {
	jitter func() float64
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{jitter: rand.Float64}
}

// Analyze runs all heuristic checks over the snippet and aggregates them
// into a StructuredReview. Deterministic except for a bounded score jitter
// on clean snippets.
func (a *Analyzer) Analyze(code, language string) *core.StructuredReview {
	lang := strings.ToLower(strings.TrimSpace(language))
	lower := strings.ToLower(code)
	lines := strings.Split(code, "\n")

	var bugs []string
	var suggestions []string
	score := baselineScore

	// Known common typo: a mistyped println identifier.
	if strings.Contains(code, "printIn") || strings.Contains(lower, "printin") {
		bugs = append(bugs, `Syntax error: "printIn" should be "println" (lowercase L, not capital I)`)
		score -= typoPenalty
	}

	if braceLanguages[lang] {
		if bug, ok := findMissingTerminator(lines); ok {
			bugs = append(bugs, bug)
			score -= terminatorPenalty
		}
	}

	if strings.Contains(lower, "system.out.print") &&
		!strings.Contains(lower, "println") && !strings.Contains(lower, "printf") {
		suggestions = append(suggestions, "Consider using println() instead of print() for better output formatting")
	}

	if !strings.Contains(lower, "try") && !strings.Contains(lower, "catch") &&
		(lang == "java" || lang == "python" || lang == "javascript") {
		suggestions = append(suggestions, "Consider adding error handling (try-catch blocks)")
	}

	if !strings.Contains(code, "//") && !strings.Contains(code, "#") && !strings.Contains(code, "/*") {
		suggestions = append(suggestions, "Add comments to explain the code logic")
		score -= noCommentsPenalty
	}

	if strings.Contains(code, " i ") || strings.Contains(code, " j ") || strings.Contains(code, " k ") {
		suggestions = append(suggestions, "Consider using more descriptive variable names instead of single letters")
	}

	// Language-specific idiom checks.
	if lang == "python" && strings.Contains(code, "def ") &&
		!strings.Contains(code, `"""`) && !strings.Contains(code, "'''") {
		suggestions = append(suggestions, "Add docstrings to your functions")
	}
	if lang == "java" && strings.Contains(code, "public class") && !strings.Contains(code, "/**") {
		suggestions = append(suggestions, "Add JavaDoc comments to your classes and methods")
	}

	// Brace balance is a stronger signal than the line-level scan.
	if braceLanguages[lang] {
		opens := strings.Count(code, "{")
		closes := strings.Count(code, "}")
		if opens != closes {
			bugs = append(bugs, fmt.Sprintf("Mismatched braces: %d opening vs %d closing", opens, closes))
			score -= braceMismatchPenalty
		}
	}

	var summary string
	switch {
	case len(bugs) > 0:
		score = math.Max(bugScoreFloor, score)
		summary = fmt.Sprintf("The %s code has %d syntax error(s) that need to be fixed.", lang, len(bugs))
	case len(strings.TrimSpace(code)) < shortSnippetLen:
		score = math.Max(shortSnippetFloor, score)
		summary = fmt.Sprintf("The %s code is very simple but functional.", lang)
	default:
		score = math.Min(cleanScoreCeiling, score+a.jitter())
		summary = fmt.Sprintf("The %s code appears well-structured and functional.", lang)
	}
	score = clamp(math.Round(score*10)/10, 1, 10)

	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}

	var strengths []string
	if strings.Contains(lower, "class") {
		strengths = append(strengths, "Uses object-oriented structure")
	}
	if len(lines) > 5 {
		strengths = append(strengths, "Well-organized multi-line code")
	}
	if len(bugs) == 0 {
		strengths = append(strengths, "No syntax errors detected")
	}

	return &core.StructuredReview{
		QualityScore:  score,
		ReviewText:    summary,
		Suggestions:   nonNil(suggestions),
		PotentialBugs: nonNil(bugs),
		Strengths:     nonNil(strengths),
		Reasoning: fmt.Sprintf(
			"Score based on code structure (%d issue(s) found), error detection, and best practices. Produced by offline heuristic analysis.",
			len(bugs)),
	}
}

// findMissingTerminator scans for the first non-blank, non-comment,
// non-brace-only line that looks like a statement but does not end in a
// terminator, brace, or colon. Only the first occurrence is reported.
func findMissingTerminator(lines []string) (string, bool) {
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "/*") {
			continue
		}
		if trimmed == "{" || trimmed == "}" || trimmed == "};" {
			continue
		}
		if strings.HasSuffix(trimmed, ";") || strings.HasSuffix(trimmed, "{") ||
			strings.HasSuffix(trimmed, "}") || strings.HasSuffix(trimmed, ":") {
			continue
		}
		if !containsAny(trimmed, statementKeywords) {
			continue
		}
		if strings.Contains(trimmed, "class ") || strings.Contains(trimmed, "function") ||
			strings.Contains(trimmed, "if ") || strings.Contains(trimmed, "for ") ||
			strings.Contains(trimmed, "while ") {
			continue
		}
		return fmt.Sprintf("Missing semicolon at line %d: %q", i+1, trimmed), true
	}
	return "", false
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
