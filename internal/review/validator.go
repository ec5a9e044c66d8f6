// Package review implements the review generation pipeline: input
// validation, the live model path (prompt, gateway, interpretation), the
// offline heuristic analyzer, and assembly of the canonical review record.
package review

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sevigo/code-critic/internal/core"
)

// SupportedLanguages is the fixed set of language tags the pipeline
// accepts, matched case-insensitively.
var SupportedLanguages = []string{
	"python", "javascript", "java", "c++", "cpp", "c",
	"go", "rust", "typescript", "ruby", "php",
}

// Validator rejects malformed requests before any remote call is
// attempted, so a model invocation is never spent on input that cannot be
// processed.
type Validator struct {
	maxCodeLength int
}

func NewValidator(maxCodeLength int) *Validator {
	return &Validator{maxCodeLength: maxCodeLength}
}

// Validate checks the snippet and language tag. It has no side effects
// and returns a *core.InvalidInputError describing the first violation.
func (v *Validator) Validate(code, language string) error {
	if strings.TrimSpace(code) == "" {
		return &core.InvalidInputError{
			Reason:  core.ReasonEmpty,
			Message: "code snippet cannot be empty",
		}
	}

	// The limit is in characters, not bytes, so non-ASCII content does
	// not shrink the budget.
	if utf8.RuneCountInString(code) > v.maxCodeLength {
		return &core.InvalidInputError{
			Reason:  core.ReasonTooLong,
			Message: fmt.Sprintf("code snippet too long (max %d characters)", v.maxCodeLength),
		}
	}

	if !isSupportedLanguage(language) {
		return &core.InvalidInputError{
			Reason:  core.ReasonUnsupportedLanguage,
			Message: fmt.Sprintf("unsupported language %q, supported: %s", language, strings.Join(SupportedLanguages, ", ")),
		}
	}

	return nil
}

func isSupportedLanguage(language string) bool {
	lower := strings.ToLower(strings.TrimSpace(language))
	for _, l := range SupportedLanguages {
		if l == lower {
			return true
		}
	}
	return false
}
