package models

// Document is one ingested source file, held only until it is chunked.
type Document struct {
	Text       string
	SourcePath string
	SourceName string
}

// Chunk is a bounded text window of a document.
type Chunk struct {
	Content    string
	SourceName string
	Offset     int
	Seq        int
}

// SearchResult is one retrieved chunk with its similarity score.
type SearchResult struct {
	Chunk Chunk
	Score float32
}

// ChatTurn is a canonicalized conversation message. Role is always
// RoleUser or RoleAssistant; blank turns never survive normalization.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// UploadedFile is the binary attachment of one request.
type UploadedFile struct {
	Data     []byte
	Filename string
	MimeType string
}
