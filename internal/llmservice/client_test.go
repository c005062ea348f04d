package llmservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChatRejectsBlankMessage(t *testing.T) {
	c := &Client{}

	_, err := c.Chat(context.Background(), ChatRequest{
		Model:   "model-a",
		Message: "   \n",
	})

	assert.ErrorContains(t, err, "cannot be empty")
}
