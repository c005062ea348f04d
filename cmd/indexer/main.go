package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"hyperchat/internal/chunker"
	"hyperchat/internal/config"
	"hyperchat/internal/embedding"
	"hyperchat/internal/helper"
	"hyperchat/internal/loader"
	"hyperchat/internal/models"
	"hyperchat/internal/vectorstore"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	docsDir := flag.String("docs", "", "Knowledge base directory to ingest")
	storePath := flag.String("store", "", "Vector store directory to build")
	dryRun := flag.Bool("dry-run", false, "Load and chunk only, do not embed or store")
	flag.Parse()

	if *docsDir == "" {
		log.Fatal().Msg("Please provide a knowledge base directory using the -docs flag")
	}

	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	ctx := context.Background()

	docs, err := loader.LoadDir(*docsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading documents")
	}
	if len(docs) == 0 {
		log.Fatal().Msg("No loadable documents in knowledge base")
	}

	chunks := chunker.New(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap).SplitAll(docs)
	log.Info().Int("documents", len(docs)).Int("chunks", len(chunks)).Msg("Chunked knowledge base")

	if *dryRun {
		helper.PrettyPrint(chunks)
		return
	}

	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	switch cfg.Storage.Driver {
	case "postgres":
		buildPostgres(ctx, cfg, embedder, chunks)
	default:
		if *storePath == "" {
			log.Fatal().Msg("Please provide a vector store directory using the -store flag")
		}
		buildChromem(ctx, embedder, chunks, *storePath)
	}
}

// buildChromem writes the index into a fresh directory and swaps it
// into place afterwards, so a serving process never loads a partially
// written index from the configured location.
func buildChromem(ctx context.Context, embedder embedding.Embedder, chunks []models.Chunk, storePath string) {
	buildDir := storePath + ".build-" + uuid.NewString()[:8]
	if err := helper.CreateFolder(buildDir); err != nil {
		log.Fatal().Err(err).Msg("Error creating build folder")
	}

	store, err := vectorstore.NewChromemStore(buildDir, vectorstore.DefaultCollection)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating vector store")
	}
	if err := vectorstore.BuildIndex(ctx, embedder, chunks, store); err != nil {
		log.Fatal().Err(err).Msg("Error building index")
	}

	oldDir := storePath + ".old"
	if _, err := os.Stat(storePath); err == nil {
		if err := os.Rename(storePath, oldDir); err != nil {
			log.Fatal().Err(err).Msg("Error moving previous index aside")
		}
	}
	if err := os.Rename(buildDir, storePath); err != nil {
		log.Fatal().Err(err).Msg("Error swapping new index into place")
	}
	if err := os.RemoveAll(oldDir); err != nil {
		log.Warn().Err(err).Msg("Error removing previous index")
	}

	log.Info().Str("store", storePath).Msg("Saved vector index")
}

// buildPostgres writes the index into a staging table and promotes it
// in one transaction afterwards, so a serving process never reads an
// empty or partially filled chunks table during a rebuild.
func buildPostgres(ctx context.Context, cfg *config.Config, embedder embedding.Embedder, chunks []models.Chunk) {
	store, err := vectorstore.NewPostgresStore(&cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}
	defer store.Close()

	staging := store.Staging()
	if err := staging.Reset(ctx); err != nil {
		log.Fatal().Err(err).Msg("Error clearing staging table")
	}
	if err := staging.Init(ctx); err != nil {
		log.Fatal().Err(err).Msg("Error creating staging table")
	}
	if err := vectorstore.BuildIndex(ctx, embedder, chunks, staging); err != nil {
		log.Fatal().Err(err).Msg("Error building index")
	}
	if err := store.Swap(ctx); err != nil {
		log.Fatal().Err(err).Msg("Error promoting staging table")
	}

	log.Info().Msg("Saved vector index to Postgres")
}
