package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"anvil-esign/internal/config"
	"anvil-esign/internal/domain/entity"
	"anvil-esign/internal/infrastructure/database"
)

func openTestDatabase(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "logs.db"),
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestAPILogRepository_SaveAndFind(t *testing.T) {
	repo := NewAPILogRepository(openTestDatabase(t), zap.NewNop())
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for i, op := range []string{"currentUser", "createEtchPacket", "createEtchPacket"} {
		require.NoError(t, repo.Save(ctx, &entity.APILog{
			Endpoint:     "https://graphql.useanvil.com",
			Method:       "POST",
			Operation:    op,
			RequestBody:  `{"query":"..."}`,
			ResponseBody: `{"data":{}}`,
			StatusCode:   200,
			Duration:     int64(10 * (i + 1)),
			Attempts:     1,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}))
	}

	all, err := repo.FindAll(ctx, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, int64(30), all[0].Duration)
	assert.Equal(t, "currentUser", all[2].Operation)

	packets, err := repo.FindByOperation(ctx, "createEtchPacket", 1)
	require.NoError(t, err)
	require.Len(t, packets, 1)
	assert.Equal(t, "createEtchPacket", packets[0].Operation)
	assert.Equal(t, 200, packets[0].StatusCode)
}

func TestAPILogRepository_Disabled(t *testing.T) {
	repo := NewAPILogRepository(nil, zap.NewNop())
	ctx := context.Background()

	assert.NoError(t, repo.Save(ctx, &entity.APILog{Endpoint: "x"}))
	logs, err := repo.FindAll(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, defaultLogLimit, normalizeLimit(0))
	assert.Equal(t, defaultLogLimit, normalizeLimit(1000))
	assert.Equal(t, 5, normalizeLimit(5))
}
