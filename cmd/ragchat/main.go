package main

import (
	"context"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"hyperchat/internal/config"
	"hyperchat/internal/embedding"
	"hyperchat/internal/history"
	"hyperchat/internal/llmservice"
	"hyperchat/internal/models"
	"hyperchat/internal/pipeline"
	"hyperchat/internal/retrieval"
	"hyperchat/internal/tools"
	"hyperchat/internal/vectorstore"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	backendID := flag.String("backend", "", "Backend id to chat with")
	message := flag.String("message", "", "User message")
	historyPath := flag.String("history", "", "Path to a JSON file with conversation history")
	filePath := flag.String("file", "", "Path to a file to attach")
	flag.Parse()

	if *backendID == "" || *message == "" {
		log.Fatal().Msg("Please provide a backend using the -backend flag and a message using the -message flag")
	}

	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	dispatcher, err := buildDispatcher(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error building pipeline")
	}

	req := pipeline.Request{
		BackendID: *backendID,
		Message:   *message,
	}

	if *historyPath != "" {
		data, err := os.ReadFile(*historyPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Error reading history file")
		}
		var raw []history.RawTurn
		if raw, err = history.Decode(data); err != nil {
			log.Fatal().Err(err).Msg("Error decoding history file")
		}
		req.History = raw
	}

	if *filePath != "" {
		data, err := os.ReadFile(*filePath)
		if err != nil {
			log.Fatal().Err(err).Msg("Error reading attachment")
		}
		req.File = &models.UploadedFile{
			Data:     data,
			Filename: filepath.Base(*filePath),
			MimeType: mime.TypeByExtension(filepath.Ext(*filePath)),
		}
	}

	reply, err := dispatcher.Chat(context.Background(), req)
	if err != nil {
		log.Fatal().Err(err).Msg("Error running chat")
	}

	log.Info().Msg("Assistant: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", reply)
}

func buildDispatcher(cfg *config.Config) (*pipeline.Dispatcher, error) {
	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		return nil, err
	}

	opener := func(location string) (vectorstore.Store, error) {
		if cfg.Storage.Driver == "postgres" {
			return vectorstore.NewPostgresStore(&cfg.Storage)
		}
		return vectorstore.OpenChromem(location, vectorstore.DefaultCollection)
	}

	engine := retrieval.NewEngine(embedder, opener,
		time.Duration(cfg.RAG.EmbedTimeoutSecs)*time.Second,
		time.Duration(cfg.RAG.SearchTimeoutSecs)*time.Second,
	)

	client, err := llmservice.NewClient(&cfg.LLM)
	if err != nil {
		return nil, err
	}

	return pipeline.NewDispatcher(cfg, client, engine, tools.DefaultRunner()), nil
}
