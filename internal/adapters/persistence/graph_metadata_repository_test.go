package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakhatrip/sakhatrip-go/internal/adapters/persistence"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/graph"
	"github.com/sakhatrip/sakhatrip-go/test/helpers"
)

func newGraphMetadata(version, datasetVersion string, createdAt time.Time) *graph.Metadata {
	return &graph.Metadata{
		Version:        version,
		DatasetVersion: datasetVersion,
		TotalNodes:     10,
		TotalEdges:     24,
		StoreKey:       "graph:" + version,
		CreatedAt:      createdAt,
	}
}

func TestGraphMetadataRepository_SetActiveIsExclusive(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormGraphMetadataRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, newGraphMetadata("graph-v1", "ds-1", base)))
	require.NoError(t, repo.Save(ctx, newGraphMetadata("graph-v2", "ds-2", base.Add(time.Hour))))

	require.NoError(t, repo.SetActive(ctx, "graph-v1"))
	require.NoError(t, repo.SetActive(ctx, "graph-v2"))

	active, err := repo.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "graph-v2", active.Version)

	var count int64
	require.NoError(t, db.Model(&persistence.GraphMetadataModel{}).Where("active = ?", true).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGraphMetadataRepository_ExistsForDatasetVersion(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormGraphMetadataRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newGraphMetadata("graph-v1", "ds-1", time.Now())))

	exists, err := repo.ExistsForDatasetVersion(ctx, "ds-1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsForDatasetVersion(ctx, "ds-2")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGraphMetadataRepository_DeleteOldReturnsSweptVersions(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormGraphMetadataRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, version := range []string{"graph-v1", "graph-v2", "graph-v3", "graph-v4"} {
		require.NoError(t, repo.Save(ctx, newGraphMetadata(version, "ds", base.Add(time.Duration(i)*time.Hour))))
	}
	require.NoError(t, repo.SetActive(ctx, "graph-v4"))

	removed, err := repo.DeleteOld(ctx, 1)
	require.NoError(t, err)
	// graph-v4 is active, graph-v3 is the newest inactive kept
	assert.ElementsMatch(t, []string{"graph-v1", "graph-v2"}, removed)

	versions, err := repo.ListVersions(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"graph-v3", "graph-v4"}, versions)

	active, err := repo.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "graph-v4", active.Version)
}
