package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/sakhatrip/sakhatrip-go/internal/domain/graph"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/shared"
)

// GormGraphMetadataRepository implements graph.MetadataRepository using GORM
type GormGraphMetadataRepository struct {
	db *gorm.DB
}

// NewGormGraphMetadataRepository creates a new GORM graph metadata repository
func NewGormGraphMetadataRepository(db *gorm.DB) *GormGraphMetadataRepository {
	return &GormGraphMetadataRepository{db: db}
}

// Save inserts or updates a metadata row
func (r *GormGraphMetadataRepository) Save(ctx context.Context, md *graph.Metadata) error {
	model := graphMetadataToModel(md)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save graph metadata %s: %w", md.Version, err)
	}
	md.ID = model.ID
	return nil
}

// GetActive retrieves the single active metadata row
func (r *GormGraphMetadataRepository) GetActive(ctx context.Context) (*graph.Metadata, error) {
	var model GraphMetadataModel
	result := r.db.WithContext(ctx).Where("active = ?", true).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("graph metadata", "active")
		}
		return nil, fmt.Errorf("failed to find active graph metadata: %w", result.Error)
	}
	return modelToGraphMetadata(&model), nil
}

// GetByVersion retrieves a metadata row by version
func (r *GormGraphMetadataRepository) GetByVersion(ctx context.Context, version string) (*graph.Metadata, error) {
	var model GraphMetadataModel
	result := r.db.WithContext(ctx).Where("version = ?", version).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("graph metadata", version)
		}
		return nil, fmt.Errorf("failed to find graph metadata %s: %w", version, result.Error)
	}
	return modelToGraphMetadata(&model), nil
}

// ExistsForDatasetVersion is the graph-builder idempotence probe
func (r *GormGraphMetadataRepository) ExistsForDatasetVersion(ctx context.Context, datasetVersion string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&GraphMetadataModel{}).
		Where("dataset_version = ?", datasetVersion).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("failed to probe graph metadata for dataset %s: %w", datasetVersion, result.Error)
	}
	return count > 0, nil
}

// SetActive clears the active flag on all rows then sets it on the row
// with the given version, inside one transaction
func (r *GormGraphMetadataRepository) SetActive(ctx context.Context, version string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model GraphMetadataModel
		if err := tx.Where("version = ?", version).First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.NewNotFoundError("graph metadata", version)
			}
			return fmt.Errorf("failed to find graph metadata %s: %w", version, err)
		}
		if err := tx.Model(&GraphMetadataModel{}).Where("active = ?", true).Update("active", false).Error; err != nil {
			return fmt.Errorf("failed to clear active graph metadata: %w", err)
		}
		if err := tx.Model(&GraphMetadataModel{}).Where("version = ?", version).Update("active", true).Error; err != nil {
			return fmt.Errorf("failed to activate graph metadata %s: %w", version, err)
		}
		return nil
	})
}

// ListVersions enumerates every known graph version, newest first
func (r *GormGraphMetadataRepository) ListVersions(ctx context.Context) ([]string, error) {
	var versions []string
	err := r.db.WithContext(ctx).Model(&GraphMetadataModel{}).
		Order("created_at DESC, id DESC").
		Pluck("version", &versions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list graph versions: %w", err)
	}
	return versions, nil
}

// DeleteOld keeps the newest keepCount inactive rows plus the active one;
// returns the removed versions so their KV keyspaces can be swept
func (r *GormGraphMetadataRepository) DeleteOld(ctx context.Context, keepCount int) ([]string, error) {
	var victims []GraphMetadataModel
	err := r.db.WithContext(ctx).
		Where("active = ?", false).
		Order("created_at DESC, id DESC").
		Offset(keepCount).
		Find(&victims).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list old graph metadata: %w", err)
	}
	if len(victims) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(victims))
	versions := make([]string, 0, len(victims))
	for _, v := range victims {
		ids = append(ids, v.ID)
		versions = append(versions, v.Version)
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&GraphMetadataModel{}).Error; err != nil {
		return nil, fmt.Errorf("failed to delete old graph metadata: %w", err)
	}
	return versions, nil
}

func graphMetadataToModel(md *graph.Metadata) *GraphMetadataModel {
	return &GraphMetadataModel{
		ID:              md.ID,
		Version:         md.Version,
		DatasetVersion:  md.DatasetVersion,
		TotalNodes:      md.TotalNodes,
		TotalEdges:      md.TotalEdges,
		BuildDurationMs: md.BuildDurationMs,
		StoreKey:        md.StoreKey,
		BackupPath:      md.BackupPath,
		CreatedAt:       md.CreatedAt,
		Active:          md.Active,
	}
}

func modelToGraphMetadata(m *GraphMetadataModel) *graph.Metadata {
	return &graph.Metadata{
		ID:              m.ID,
		Version:         m.Version,
		DatasetVersion:  m.DatasetVersion,
		TotalNodes:      m.TotalNodes,
		TotalEdges:      m.TotalEdges,
		BuildDurationMs: m.BuildDurationMs,
		StoreKey:        m.StoreKey,
		BackupPath:      m.BackupPath,
		CreatedAt:       m.CreatedAt,
		Active:          m.Active,
	}
}
