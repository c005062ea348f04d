// Package extract converts uploaded binary payloads into plain text.
// Extraction never fails a request: every strategy degrades to the
// permissive fallback, and the worst case is an empty string.
package extract

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/nguyenthenguyen/docx"
	"github.com/rs/zerolog/log"

	"hyperchat/internal/models"
)

const docxMime = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

var textExtensions = map[string]bool{
	".txt": true, ".md": true, ".markdown": true, ".csv": true,
	".log": true, ".json": true, ".yaml": true, ".yml": true,
	".xml": true, ".html": true, ".htm": true,
}

// strategy pairs a file-type predicate with an extraction function.
// Strategies are tried in order; a failed extraction falls through to
// the next match, and the terminal catch-all always succeeds.
type strategy struct {
	match   func(f models.UploadedFile) bool
	extract func(f models.UploadedFile) (string, error)
}

var strategies = []strategy{
	{match: isDocx, extract: extractDocx},
	{match: isPlainText, extract: extractPlainText},
	{match: func(models.UploadedFile) bool { return true }, extract: extractPlainText},
}

// Text extracts whatever text the payload yields. Filename and mime
// type are optional signals; either or both may be empty.
func Text(f models.UploadedFile) string {
	for _, s := range strategies {
		if !s.match(f) {
			continue
		}
		text, err := s.extract(f)
		if err != nil {
			log.Warn().Err(err).Str("filename", f.Filename).
				Msg("extraction strategy failed, falling through")
			continue
		}
		return text
	}
	return ""
}

func isDocx(f models.UploadedFile) bool {
	return f.MimeType == docxMime ||
		strings.EqualFold(filepath.Ext(f.Filename), ".docx")
}

func isPlainText(f models.UploadedFile) bool {
	return strings.HasPrefix(f.MimeType, "text/") ||
		textExtensions[strings.ToLower(filepath.Ext(f.Filename))]
}

// extractDocx parses the word-processing document structure and joins
// the non-blank paragraph texts with newlines.
func extractDocx(f models.UploadedFile) (string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(f.Data), int64(len(f.Data)))
	if err != nil {
		return "", err
	}
	defer r.Close()

	var out []string
	for _, para := range splitParagraphs(r.Editable().GetContent()) {
		if text := strings.TrimSpace(ParagraphText(para)); text != "" {
			out = append(out, text)
		}
	}
	return strings.Join(out, "\n"), nil
}

// extractPlainText decodes the payload as UTF-8, dropping undecodable
// byte sequences instead of failing.
func extractPlainText(f models.UploadedFile) (string, error) {
	return strings.ToValidUTF8(string(f.Data), ""), nil
}

func splitParagraphs(content string) []string {
	return strings.Split(content, "</w:p>")
}

// ParagraphText pulls the text runs out of one paragraph's XML chunk,
// as produced by splitting a document body on closing paragraph tags.
func ParagraphText(xmlContent string) string {
	var text strings.Builder
	parts := strings.Split(xmlContent, "<w:t")
	for i, part := range parts {
		if i == 0 {
			continue
		}
		// Skip the rest of the opening tag, attributes included.
		closeIdx := strings.Index(part, ">")
		if closeIdx < 0 {
			continue
		}
		part = part[closeIdx+1:]
		if endIdx := strings.Index(part, "</w:t>"); endIdx >= 0 {
			text.WriteString(part[:endIdx])
		}
	}
	return text.String()
}
