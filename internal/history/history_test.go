package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hyperchat/internal/models"
)

func str(s string) *string { return &s }

func TestNormalizeMixedShapes(t *testing.T) {
	raw := []RawTurn{
		{From: str("user"), Text: str("hi")},
		{From: str("bot"), Text: str("")},
		{Role: str("assistant"), Content: str("ok")},
	}

	turns := Normalize(raw)

	assert.Equal(t, []models.ChatTurn{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "ok"},
	}, turns)
}

func TestNormalizeRoleContentWins(t *testing.T) {
	// A record carrying both shapes resolves via role/content.
	raw := []RawTurn{
		{Role: str("assistant"), Content: str("canonical"), From: str("user"), Text: str("legacy")},
	}

	turns := Normalize(raw)

	require.Len(t, turns, 1)
	assert.Equal(t, models.ChatTurn{Role: "assistant", Content: "canonical"}, turns[0])
}

func TestNormalizeContentWithoutRoleDefaultsToUser(t *testing.T) {
	turns := Normalize([]RawTurn{{Content: str("just content")}})

	require.Len(t, turns, 1)
	assert.Equal(t, models.RoleUser, turns[0].Role)
}

func TestNormalizeFromMapping(t *testing.T) {
	raw := []RawTurn{
		{From: str("user"), Text: str("question")},
		{From: str("bot"), Text: str("answer")},
		{From: str("model"), Text: str("another answer")},
	}

	turns := Normalize(raw)

	require.Len(t, turns, 3)
	assert.Equal(t, models.RoleUser, turns[0].Role)
	assert.Equal(t, models.RoleAssistant, turns[1].Role)
	assert.Equal(t, models.RoleAssistant, turns[2].Role)
}

func TestNormalizeTrimsAndDropsBlanks(t *testing.T) {
	raw := []RawTurn{
		{From: str("user"), Text: str("  padded  ")},
		{Role: str("assistant"), Content: str("   \n\t")},
		{From: str("bot")},
	}

	turns := Normalize(raw)

	require.Len(t, turns, 1)
	assert.Equal(t, "padded", turns[0].Content)
}

func TestNormalizePreservesOrder(t *testing.T) {
	raw := []RawTurn{
		{From: str("user"), Text: str("one")},
		{From: str("bot"), Text: str("two")},
		{Role: str("user"), Content: str("three")},
	}

	turns := Normalize(raw)

	require.Len(t, turns, 3)
	assert.Equal(t, "one", turns[0].Content)
	assert.Equal(t, "two", turns[1].Content)
	assert.Equal(t, "three", turns[2].Content)
}

func TestNormalizeEmpty(t *testing.T) {
	assert.Empty(t, Normalize(nil))
	assert.Empty(t, Normalize([]RawTurn{}))
}

func TestDecode(t *testing.T) {
	data := []byte(`[{"from":"user","text":"hi"},{"role":"assistant","content":"ok"}]`)

	raw, err := Decode(data)

	require.NoError(t, err)
	require.Len(t, raw, 2)
	assert.Nil(t, raw[0].Role)
	require.NotNil(t, raw[0].From)
	assert.Equal(t, "user", *raw[0].From)
	require.NotNil(t, raw[1].Role)
	assert.Equal(t, "assistant", *raw[1].Role)
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	_, err := Decode([]byte(`{"not":"a list"}`))
	assert.Error(t, err)
}
