// Package pipeline routes one chat request through the backend
// variant its configuration selects: retrieval-augmented, general, or
// tool-augmented. The model backend is invoked exactly once per
// request.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"hyperchat/internal/config"
	"hyperchat/internal/extract"
	"hyperchat/internal/history"
	"hyperchat/internal/llmservice"
	"hyperchat/internal/models"
	"hyperchat/internal/prompt"
	"hyperchat/internal/retrieval"
	"hyperchat/internal/tools"
)

// ModelClient is the generative-model boundary.
type ModelClient interface {
	Chat(ctx context.Context, req llmservice.ChatRequest) (string, error)
}

// Retriever runs similarity search against a configured vector store.
type Retriever interface {
	Retrieve(ctx context.Context, location, query string, k int) ([]models.SearchResult, error)
}

// ToolRunner is the tool-calling collaborator.
type ToolRunner interface {
	Run(ctx context.Context, model string, toolNames []string, message string, rawHistory []history.RawTurn) (string, error)
}

// Request holds the parsed fields of one chat request.
type Request struct {
	BackendID string
	Message   string
	History   []history.RawTurn
	File      *models.UploadedFile
}

// Dispatcher executes requests against the static backend map. It
// holds no per-request state; one instance serves concurrent requests.
type Dispatcher struct {
	backends  map[string]config.BackendConfig
	rag       config.RAGConfig
	model     ModelClient
	retriever Retriever
	tools     ToolRunner
}

func NewDispatcher(cfg *config.Config, model ModelClient, retriever Retriever, toolRunner ToolRunner) *Dispatcher {
	return &Dispatcher{
		backends:  cfg.Backends,
		rag:       cfg.RAG,
		model:     model,
		retriever: retriever,
		tools:     toolRunner,
	}
}

// Chat runs one request end to end and returns the reply text.
func (d *Dispatcher) Chat(ctx context.Context, req Request) (string, error) {
	backend, ok := d.backends[req.BackendID]
	if !ok {
		return "", fmt.Errorf("%w: unknown backend id %q", ErrConfig, req.BackendID)
	}

	// History normalization and file extraction are independent;
	// extraction runs alongside while history is normalized.
	fileCh := make(chan string, 1)
	go func() {
		if req.File == nil {
			fileCh <- ""
			return
		}
		fileCh <- extract.Text(*req.File)
	}()

	turns := history.Normalize(req.History)
	fileText := <-fileCh

	if strings.TrimSpace(req.Message) == "" && fileText == "" {
		return "", fmt.Errorf("%w: message is empty", ErrValidation)
	}

	switch backend.Type {
	case config.TypeRAG:
		return d.ragChat(ctx, backend, req.Message, fileText, turns)
	case config.TypeGeneral, config.TypeFineTuned:
		return d.generalChat(ctx, backend, req.Message, fileText, turns)
	case config.TypeTools:
		return d.toolsChat(ctx, backend, req.Message, fileText, req.History)
	default:
		return "", fmt.Errorf("%w: unsupported backend type %q", ErrConfig, backend.Type)
	}
}

func (d *Dispatcher) ragChat(ctx context.Context, backend config.BackendConfig, message, fileText string, turns []models.ChatTurn) (string, error) {
	results, err := d.retriever.Retrieve(ctx, backend.VectorStore, message, backend.TopK)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: retrieval timed out", ErrRetrieval)
		}
		if errors.Is(err, retrieval.ErrStoreLoad) {
			return "", fmt.Errorf("%w: %v", ErrStorage, err)
		}
		return "", fmt.Errorf("%w: %v", ErrRetrieval, err)
	}
	log.Debug().Int("chunks", len(results)).Str("store", backend.VectorStore).
		Msg("Retrieved context")

	retrievedContext := retrieval.BuildContext(results)
	userTurn := prompt.Assemble(message, retrievedContext, fileText, d.rag.MaxFileExcerpt)
	return d.generate(ctx, backend, userTurn, turns)
}

func (d *Dispatcher) generalChat(ctx context.Context, backend config.BackendConfig, message, fileText string, turns []models.ChatTurn) (string, error) {
	userTurn := prompt.Assemble(message, "", fileText, d.rag.MaxFileExcerpt)
	return d.generate(ctx, backend, userTurn, turns)
}

func (d *Dispatcher) toolsChat(ctx context.Context, backend config.BackendConfig, message, fileText string, rawHistory []history.RawTurn) (string, error) {
	userTurn := prompt.Assemble(message, "", fileText, d.rag.MaxFileExcerpt)
	answer, err := d.tools.Run(ctx, backend.Model, backend.Tools, userTurn, rawHistory)
	if err != nil {
		if errors.Is(err, tools.ErrUnresolvable) {
			return "", fmt.Errorf("%w: %v", ErrConfig, err)
		}
		return "", fmt.Errorf("%w: %v", ErrTool, err)
	}
	return answer, nil
}

func (d *Dispatcher) generate(ctx context.Context, backend config.BackendConfig, userTurn string, turns []models.ChatTurn) (string, error) {
	modelCtx, cancel := context.WithTimeout(ctx, time.Duration(d.rag.ModelTimeoutSecs)*time.Second)
	defer cancel()

	reply, err := d.model.Chat(modelCtx, llmservice.ChatRequest{
		Model:       backend.Model,
		System:      backend.SystemPrompt,
		Message:     userTurn,
		History:     turns,
		MaxTokens:   backend.MaxTokens,
		Temperature: backend.Temperature,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: generation timed out", ErrGeneration)
		}
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return reply, nil
}
