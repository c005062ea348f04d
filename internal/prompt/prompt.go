// Package prompt assembles the final user-turn text sent to the model.
package prompt

import "strings"

// DefaultMaxFileExcerpt bounds how much uploaded-file text is folded
// into the prompt.
const DefaultMaxFileExcerpt = 4000

// Assemble merges the user's message with the optional retrieved
// context and optional file excerpt into one labeled user turn. With
// neither present the message passes through unmodified. The file
// excerpt is cut hard at maxExcerpt characters; no attempt is made to
// preserve word boundaries.
func Assemble(message, retrievedContext, fileText string, maxExcerpt int) string {
	if maxExcerpt <= 0 {
		maxExcerpt = DefaultMaxFileExcerpt
	}
	fileText = truncate(fileText, maxExcerpt)

	if retrievedContext == "" && fileText == "" {
		return message
	}

	var b strings.Builder
	b.WriteString("Question: ")
	b.WriteString(message)
	if retrievedContext != "" {
		b.WriteString("\n\nContext Text:\n")
		b.WriteString(retrievedContext)
	}
	if fileText != "" {
		b.WriteString("\n\nAttached File Content:\n")
		b.WriteString(fileText)
	}
	return b.String()
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
