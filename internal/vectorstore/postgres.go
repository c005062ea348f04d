package vectorstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"hyperchat/internal/config"
	"hyperchat/internal/models"
)

// chunkRow is the persisted form of one indexed chunk in Postgres.
type chunkRow struct {
	bun.BaseModel `bun:"table:chunks,alias:c"`
	ID            string    `bun:"id,pk"`
	Content       string    `bun:"content,notnull"`
	SourceName    string    `bun:"source_name,notnull"`
	Seq           int       `bun:"seq,notnull"`
	Offset        int       `bun:"doc_offset,notnull"`
	Embedding     []float32 `bun:"embedding,notnull,type:vector(1536)"`
	Score         float32   `bun:"score,scanonly"`
}

const (
	servingTable = "chunks"
	stagingTable = "chunks_staging"
	retiredTable = "chunks_old"
)

// PostgresStore serves the index from a pgvector-enabled Postgres
// database, for deployments that already run one (e.g. Supabase).
type PostgresStore struct {
	db    *bun.DB
	table string
}

func NewPostgresStore(cfg *config.StorageConfig) (*PostgresStore, error) {
	dsn := cfg.PostgresDSN + "?sslmode=disable"
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithPassword(cfg.PostgresKey),
	))
	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return &PostgresStore{db: db, table: servingTable}, nil
}

// Staging returns a store over the staging table, so a rebuild never
// touches the serving table until Swap promotes it.
func (s *PostgresStore) Staging() *PostgresStore {
	return &PostgresStore{db: s.db, table: stagingTable}
}

func (s *PostgresStore) createTable() *bun.CreateTableQuery {
	return s.db.NewCreateTable().Model((*chunkRow)(nil)).ModelTableExpr(s.table).IfNotExists()
}

// Init creates the store's table if it does not exist.
func (s *PostgresStore) Init(ctx context.Context) error {
	_, err := s.createTable().Exec(ctx)
	return err
}

// Reset drops the store's table so a rebuild starts clean.
func (s *PostgresStore) Reset(ctx context.Context) error {
	_, err := s.db.NewDropTable().Model((*chunkRow)(nil)).ModelTableExpr(s.table).IfExists().Exec(ctx)
	return err
}

// swapStatements promote the staging table to the serving table. They
// run inside one transaction so readers see either the old index or
// the new one, never an empty or half-filled table.
var swapStatements = []string{
	"DROP TABLE IF EXISTS " + retiredTable,
	"ALTER TABLE IF EXISTS " + servingTable + " RENAME TO " + retiredTable,
	"ALTER TABLE " + stagingTable + " RENAME TO " + servingTable,
	"DROP TABLE IF EXISTS " + retiredTable,
}

// Swap atomically replaces the serving table with the staging table.
func (s *PostgresStore) Swap(ctx context.Context) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, stmt := range swapStatements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to promote staging table: %w", err)
			}
		}
		return nil
	})
}

func (s *PostgresStore) Add(ctx context.Context, entries []Entry) error {
	rows := make([]chunkRow, len(entries))
	for i, e := range entries {
		rows[i] = chunkRow{
			ID:         e.ID,
			Content:    e.Chunk.Content,
			SourceName: e.Chunk.SourceName,
			Seq:        e.Chunk.Seq,
			Offset:     e.Chunk.Offset,
			Embedding:  e.Embedding,
		}
	}
	if _, err := s.db.NewInsert().Model(&rows).ModelTableExpr(s.table).Exec(ctx); err != nil {
		return fmt.Errorf("failed to store chunks: %w", err)
	}
	return nil
}

func (s *PostgresStore) Search(ctx context.Context, queryEmbedding []float32, k int) ([]models.SearchResult, error) {
	var rows []chunkRow
	err := s.db.NewSelect().
		Model(&rows).
		ModelTableExpr(s.table+" AS c").
		Column("id", "content", "source_name", "seq", "doc_offset").
		ColumnExpr("1 - (embedding <=> ?) AS score", queryEmbedding).
		OrderExpr("embedding <=> ?, id", queryEmbedding).
		Limit(k).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}

	out := make([]models.SearchResult, len(rows))
	for i, r := range rows {
		out[i] = models.SearchResult{
			Chunk: models.Chunk{
				Content:    r.Content,
				SourceName: r.SourceName,
				Seq:        r.Seq,
				Offset:     r.Offset,
			},
			Score: r.Score,
		}
	}
	return out, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	return s.db.NewSelect().Model((*chunkRow)(nil)).ModelTableExpr(s.table + " AS c").Count(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
