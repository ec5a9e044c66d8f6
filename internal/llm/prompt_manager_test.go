package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptManager_RenderCodeReview(t *testing.T) {
	pm, err := NewPromptManager()
	require.NoError(t, err)

	data := CodeReviewData{
		Language: "python",
		Code:     "def add(a, b):\n    return a + b",
	}

	rendered, err := pm.Render(CodeReviewPrompt, DefaultProvider, data)
	require.NoError(t, err)

	assert.Contains(t, rendered, "python")
	assert.Contains(t, rendered, "def add(a, b):")
	assert.Contains(t, rendered, "quality_score")
	assert.Contains(t, rendered, "suggestions")

	// Rendering is deterministic for identical data.
	again, err := pm.Render(CodeReviewPrompt, DefaultProvider, data)
	require.NoError(t, err)
	assert.Equal(t, rendered, again)
}

func TestPromptManager_FallsBackToDefaultProvider(t *testing.T) {
	pm, err := NewPromptManager()
	require.NoError(t, err)

	tmpl, err := pm.Get(CodeReviewPrompt, ModelProvider("some-other-provider"))
	require.NoError(t, err)
	assert.NotNil(t, tmpl)
}

func TestPromptManager_UnknownKey(t *testing.T) {
	pm, err := NewPromptManager()
	require.NoError(t, err)

	_, err = pm.Get(PromptKey("nonexistent"), DefaultProvider)
	assert.Error(t, err)
}
