package review

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/code-critic/internal/core"
)

func TestValidator_Validate(t *testing.T) {
	v := NewValidator(100)

	tests := []struct {
		name       string
		code       string
		language   string
		wantReason string
	}{
		{"valid python", "print('hi')", "python", ""},
		{"valid mixed case tag", "fmt.Println()", "Go", ""},
		{"valid with surrounding spaces", "x = 1", "  python  ", ""},
		{"empty code", "", "python", core.ReasonEmpty},
		{"whitespace only code", "   \n\t  ", "python", core.ReasonEmpty},
		{"too long", strings.Repeat("a", 101), "python", core.ReasonTooLong},
		{"unsupported language", "SELECT 1", "sql", core.ReasonUnsupportedLanguage},
		{"empty language", "x = 1", "", core.ReasonUnsupportedLanguage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.code, tt.language)
			if tt.wantReason == "" {
				assert.NoError(t, err)
				return
			}
			var invalid *core.InvalidInputError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.wantReason, invalid.Reason)
			assert.NotEmpty(t, invalid.Message)
		})
	}
}

func TestValidator_LengthCountsCharactersNotBytes(t *testing.T) {
	v := NewValidator(10)

	// Two bytes per rune in UTF-8; ten characters must still fit.
	require.NoError(t, v.Validate(strings.Repeat("é", 10), "python"))

	err := v.Validate(strings.Repeat("é", 11), "python")
	var invalid *core.InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, core.ReasonTooLong, invalid.Reason)
}

func TestValidator_LengthCountsUntrimmed(t *testing.T) {
	v := NewValidator(10)

	// Padding counts toward the limit even though the content is short.
	err := v.Validate("x = 1      \n", "python")

	var invalid *core.InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, core.ReasonTooLong, invalid.Reason)
}

func TestSupportedLanguagesCoverAliases(t *testing.T) {
	v := NewValidator(1000)
	for _, lang := range []string{"c++", "cpp", "C++", "CPP"} {
		assert.NoError(t, v.Validate("int x = 0;", lang), lang)
	}
}
