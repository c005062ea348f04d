package vectorstore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hyperchat/internal/config"
)

func newTestPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()
	// The connection is lazy; query rendering never touches the network.
	store, err := NewPostgresStore(&config.StorageConfig{
		PostgresDSN: "postgres://localhost:5432/test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPostgresStagingTargetsSeparateTable(t *testing.T) {
	store := newTestPostgresStore(t)
	staging := store.Staging()

	assert.Equal(t, servingTable, store.table)
	assert.Equal(t, stagingTable, staging.table)

	assert.Contains(t, store.createTable().String(), servingTable)
	ddl := staging.createTable().String()
	assert.Contains(t, ddl, stagingTable)
	assert.NotContains(t, strings.ReplaceAll(ddl, stagingTable, ""), servingTable)
}

func TestPostgresSwapPromotesStagingInOrder(t *testing.T) {
	promote := -1
	retire := -1
	for i, stmt := range swapStatements {
		if strings.Contains(stmt, "ALTER TABLE "+stagingTable+" RENAME TO "+servingTable) {
			promote = i
		}
		if strings.Contains(stmt, "ALTER TABLE IF EXISTS "+servingTable+" RENAME TO "+retiredTable) {
			retire = i
		}
	}
	require.GreaterOrEqual(t, retire, 0, "the serving table must be moved aside")
	require.Greater(t, promote, retire, "promotion must follow retirement or the rename collides")
	assert.Contains(t, swapStatements[len(swapStatements)-1], "DROP TABLE IF EXISTS "+retiredTable)
}
