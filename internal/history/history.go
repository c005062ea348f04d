// Package history reconciles heterogeneous chat-history records into
// canonical {role, content} turns. Two shapes are accepted, mixed
// freely within one call: {role, content} as sent by API clients and
// {from, text} as sent by the React frontend.
package history

import (
	"encoding/json"
	"strings"

	"hyperchat/internal/models"
)

// RawTurn is one undecoded history record. Pointer fields distinguish
// an absent key from an empty value, which drives shape selection.
type RawTurn struct {
	Role    *string `json:"role,omitempty"`
	Content *string `json:"content,omitempty"`
	From    *string `json:"from,omitempty"`
	Text    *string `json:"text,omitempty"`
}

// Normalize resolves each record to a canonical turn, preserving input
// order. Explicit role/content keys win over from/text; a record with
// content but no role defaults to the user role; a from value other
// than "user" maps to assistant. Records whose trimmed text is empty
// are dropped entirely.
func Normalize(raw []RawTurn) []models.ChatTurn {
	if len(raw) == 0 {
		return nil
	}

	turns := make([]models.ChatTurn, 0, len(raw))
	for _, r := range raw {
		role, text := resolve(r)

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		turns = append(turns, models.ChatTurn{Role: role, Content: text})
	}
	return turns
}

func resolve(r RawTurn) (role, text string) {
	if r.Role != nil || r.Content != nil {
		role = models.RoleUser
		if r.Role != nil {
			role = *r.Role
		}
		if r.Content != nil {
			text = *r.Content
		}
		return role, text
	}

	from := models.RoleUser
	if r.From != nil {
		from = *r.From
	}
	if from == models.RoleUser {
		role = models.RoleUser
	} else {
		role = models.RoleAssistant
	}
	if r.Text != nil {
		text = *r.Text
	}
	return role, text
}

// Decode reads a JSON array of history records in either accepted
// shape, leaving normalization to the caller.
func Decode(data []byte) ([]RawTurn, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var raw []RawTurn
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
