package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakhatrip/sakhatrip-go/internal/adapters/persistence"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/shared"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/transport"
	"github.com/sakhatrip/sakhatrip-go/test/helpers"
)

func newDataset(version string, createdAt time.Time) *transport.Dataset {
	return &transport.Dataset{
		Version:     version,
		Source:      transport.SourceMock,
		ContentHash: "hash-" + version,
		CreatedAt:   createdAt,
	}
}

func TestDatasetRepository_SetActiveIsExclusive(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormDatasetRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, newDataset("v1", base)))
	require.NoError(t, repo.Save(ctx, newDataset("v2", base.Add(time.Hour))))

	require.NoError(t, repo.SetActive(ctx, "v1"))
	require.NoError(t, repo.SetActive(ctx, "v2"))

	active, err := repo.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v2", active.Version)

	var count int64
	require.NoError(t, db.Model(&persistence.DatasetModel{}).Where("active = ?", true).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// Re-activating the previous version restores it
	require.NoError(t, repo.SetActive(ctx, "v1"))
	active, err = repo.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v1", active.Version)
}

func TestDatasetRepository_SetActiveMissingVersionFails(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormDatasetRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newDataset("v1", time.Now())))
	require.NoError(t, repo.SetActive(ctx, "v1"))

	err := repo.SetActive(ctx, "missing")
	require.Error(t, err)

	// The failed activation must not disturb the current active row
	active, err := repo.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v1", active.Version)
}

func TestDatasetRepository_DeleteRefusesActive(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormDatasetRepository(db)
	ctx := context.Background()

	ds := newDataset("v1", time.Now())
	require.NoError(t, repo.Save(ctx, ds))
	require.NoError(t, repo.SetActive(ctx, "v1"))

	err := repo.Delete(ctx, ds.ID)
	require.Error(t, err)
	var activeErr *shared.ActiveDeleteError
	assert.ErrorAs(t, err, &activeErr)

	_, err = repo.GetByID(ctx, ds.ID)
	assert.NoError(t, err)
}

func TestDatasetRepository_DeleteOldSparesActiveAndKeepWindow(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormDatasetRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, version := range []string{"v1", "v2", "v3", "v4"} {
		require.NoError(t, repo.Save(ctx, newDataset(version, base.Add(time.Duration(i)*time.Hour))))
	}
	require.NoError(t, repo.SetActive(ctx, "v1"))

	deleted, err := repo.DeleteOld(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted) // v2 and v3 go, v4 kept, v1 active

	_, err = repo.GetByID(ctx, 1)
	assert.NoError(t, err)

	latest, err := repo.GetLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v4", latest.Version)
}

func TestDatasetRepository_ExistsByODataHash(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormDatasetRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newDataset("v1", time.Now())))

	exists, err := repo.ExistsByODataHash(ctx, "hash-v1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByODataHash(ctx, "hash-unknown")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDatasetRepository_UpdateStatistics(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormDatasetRepository(db)
	ctx := context.Background()

	ds := newDataset("v1", time.Now())
	require.NoError(t, repo.Save(ctx, ds))

	stats := transport.DatasetStatistics{TotalStops: 12, TotalVirtualStops: 3, TotalVirtualRoutes: 6}
	require.NoError(t, repo.UpdateStatistics(ctx, ds.ID, stats))

	reloaded, err := repo.GetByID(ctx, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, stats, reloaded.Statistics)
}
