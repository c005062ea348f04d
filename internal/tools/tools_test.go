package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunResolvedTools(t *testing.T) {
	r := DefaultRunner()

	answer, err := r.Run(context.Background(), "model-a", []string{"weather", "inventory"}, "forecast?", nil)

	require.NoError(t, err)
	assert.Equal(t, "[TOOLS MODEL model-a] Would call tools [weather, inventory] to answer: 'forecast?'", answer)
}

func TestRunUnresolvableTool(t *testing.T) {
	r := NewRunner([]string{"weather"})

	_, err := r.Run(context.Background(), "model-a", []string{"weather", "timetravel"}, "when?", nil)

	assert.ErrorIs(t, err, ErrUnresolvable)
	assert.ErrorContains(t, err, "timetravel")
}

func TestRunNoTools(t *testing.T) {
	r := NewRunner(nil)

	answer, err := r.Run(context.Background(), "model-a", nil, "hi", nil)

	require.NoError(t, err)
	assert.Contains(t, answer, "Would call tools")
}
