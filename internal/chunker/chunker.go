// Package chunker splits ingested documents into overlapping text windows
// for independent embedding and retrieval.
package chunker

import (
	"strings"

	"hyperchat/internal/models"
)

const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 100
)

// Chunker produces fixed-target overlapping chunks. Consecutive chunks
// from one document share exactly Overlap characters; the window end is
// pulled back to a nearby word or sentence boundary when one exists.
type Chunker struct {
	Size    int
	Overlap int
}

func New(size, overlap int) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 2
	}
	return &Chunker{Size: size, Overlap: overlap}
}

// Split breaks a document into ordered chunks carrying the document's
// source name plus their own offset and sequence position. A document
// shorter than the target size yields exactly one chunk; an empty
// document yields none.
func (c *Chunker) Split(doc models.Document) []models.Chunk {
	content := doc.Text
	if strings.TrimSpace(content) == "" {
		return nil
	}

	var chunks []models.Chunk
	seq := 0
	start := 0
	for start < len(content) {
		end := start + c.Size
		if end >= len(content) {
			end = len(content)
		} else {
			end = breakAt(content, start, end, c.Overlap)
		}

		window := content[start:end]
		if strings.TrimSpace(window) != "" {
			chunks = append(chunks, models.Chunk{
				Content:    window,
				SourceName: doc.SourceName,
				Offset:     start,
				Seq:        seq,
			})
			seq++
		}

		if end >= len(content) {
			break
		}
		start = end - c.Overlap
	}
	return chunks
}

// breakAt looks for a space, newline, or sentence end within the last
// tenth of the window so chunks prefer natural boundaries over hard
// cuts. The cut stays above start+overlap, so the next window start
// (end - overlap) always advances past this one.
func breakAt(content string, start, end, overlap int) int {
	lookBack := (end - start) / 10
	floor := start + overlap
	for i := end - 1; i >= end-lookBack && i > floor; i-- {
		switch content[i] {
		case ' ', '\n', '.':
			return i + 1
		}
	}
	return end
}

// SplitAll chunks a batch of documents in order.
func (c *Chunker) SplitAll(docs []models.Document) []models.Chunk {
	var chunks []models.Chunk
	for _, doc := range docs {
		chunks = append(chunks, c.Split(doc)...)
	}
	return chunks
}
