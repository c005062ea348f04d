package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Backend pipeline variants. Unknown values are rejected at load time.
const (
	TypeRAG       = "rag"
	TypeGeneral   = "general"
	TypeFineTuned = "fine_tuned"
	TypeTools     = "tools"
)

// LLMConfig configures one OpenAI-compatible or Ollama endpoint.
type LLMConfig struct {
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	Key      string `yaml:"key"`
	Model    string `yaml:"model"`
}

// RAGConfig holds pipeline-wide defaults. Backends may override TopK,
// and the indexer may override chunking per run.
type RAGConfig struct {
	ChunkSize         int `yaml:"chunk_size"`
	ChunkOverlap      int `yaml:"chunk_overlap"`
	TopK              int `yaml:"top_k"`
	MaxFileExcerpt    int `yaml:"max_file_excerpt"`
	EmbedTimeoutSecs  int `yaml:"embed_timeout_secs"`
	SearchTimeoutSecs int `yaml:"search_timeout_secs"`
	ModelTimeoutSecs  int `yaml:"model_timeout_secs"`
}

// StorageConfig selects the vector store driver.
type StorageConfig struct {
	Driver      string `yaml:"driver"` // "chromem" or "postgres"
	PostgresDSN string `yaml:"postgres_dsn"`
	PostgresKey string `yaml:"postgres_key"`
	Debug       bool   `yaml:"debug"`
}

// BackendConfig declares one selectable model/pipeline variant.
// Loaded once at startup and read-only afterwards.
type BackendConfig struct {
	Type         string   `yaml:"type"`
	Model        string   `yaml:"model"`
	SystemPrompt string   `yaml:"system_prompt"`
	VectorStore  string   `yaml:"vector_store,omitempty"`
	Tools        []string `yaml:"tools,omitempty"`
	TopK         int      `yaml:"top_k,omitempty"`
	MaxTokens    int      `yaml:"max_tokens,omitempty"`
	Temperature  float64  `yaml:"temperature,omitempty"`
}

type Config struct {
	LLM      LLMConfig                `yaml:"llm"`
	EmbedLLM LLMConfig                `yaml:"embed_llm"`
	RAG      RAGConfig                `yaml:"rag"`
	Storage  StorageConfig            `yaml:"storage"`
	Backends map[string]BackendConfig `yaml:"backends"`
}

const (
	defaultChunkSize      = 800
	defaultChunkOverlap   = 100
	defaultTopK           = 4
	defaultMaxFileExcerpt = 4000
	defaultTimeoutSecs    = 60
	defaultMaxTokens      = 2048
	defaultTemperature    = 0.2
)

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	// Keys are referenced as ${VAR} in the file rather than stored in it.
	data = []byte(os.ExpandEnv(string(data)))
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = defaultChunkSize
	}
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = defaultChunkOverlap
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = defaultTopK
	}
	if cfg.RAG.MaxFileExcerpt == 0 {
		cfg.RAG.MaxFileExcerpt = defaultMaxFileExcerpt
	}
	if cfg.RAG.EmbedTimeoutSecs == 0 {
		cfg.RAG.EmbedTimeoutSecs = defaultTimeoutSecs
	}
	if cfg.RAG.SearchTimeoutSecs == 0 {
		cfg.RAG.SearchTimeoutSecs = defaultTimeoutSecs
	}
	if cfg.RAG.ModelTimeoutSecs == 0 {
		cfg.RAG.ModelTimeoutSecs = defaultTimeoutSecs
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "chromem"
	}
	for id, b := range cfg.Backends {
		if b.TopK == 0 {
			b.TopK = cfg.RAG.TopK
		}
		if b.MaxTokens == 0 {
			b.MaxTokens = defaultMaxTokens
		}
		if b.Temperature == 0 {
			b.Temperature = defaultTemperature
		}
		cfg.Backends[id] = b
	}
}

func validate(cfg *Config) error {
	for id, b := range cfg.Backends {
		switch b.Type {
		case TypeRAG:
			if b.VectorStore == "" {
				return fmt.Errorf("backend %q: rag type requires vector_store", id)
			}
		case TypeTools:
			if len(b.Tools) == 0 {
				return fmt.Errorf("backend %q: tools type requires a tool list", id)
			}
		case TypeGeneral, TypeFineTuned:
		default:
			return fmt.Errorf("backend %q: unsupported type %q", id, b.Type)
		}
		if b.Model == "" {
			return fmt.Errorf("backend %q: model is required", id)
		}
	}
	return nil
}
