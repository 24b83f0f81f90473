package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/sakhatrip/sakhatrip-go/internal/domain/shared"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/transport"
)

// GormDatasetRepository implements transport.DatasetRepository using GORM
type GormDatasetRepository struct {
	db *gorm.DB
}

// NewGormDatasetRepository creates a new GORM dataset repository
func NewGormDatasetRepository(db *gorm.DB) *GormDatasetRepository {
	return &GormDatasetRepository{db: db}
}

// Save inserts or updates a dataset row
func (r *GormDatasetRepository) Save(ctx context.Context, dataset *transport.Dataset) error {
	model := datasetToModel(dataset)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save dataset %s: %w", dataset.Version, err)
	}
	dataset.ID = model.ID
	return nil
}

// GetLatest returns the newest dataset by creation time
func (r *GormDatasetRepository) GetLatest(ctx context.Context) (*transport.Dataset, error) {
	var model DatasetModel
	result := r.db.WithContext(ctx).Order("created_at DESC, id DESC").First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("dataset", "latest")
		}
		return nil, fmt.Errorf("failed to load latest dataset: %w", result.Error)
	}
	return modelToDataset(&model), nil
}

// GetByID retrieves a dataset by its numeric id
func (r *GormDatasetRepository) GetByID(ctx context.Context, id int64) (*transport.Dataset, error) {
	var model DatasetModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("dataset", fmt.Sprintf("%d", id))
		}
		return nil, fmt.Errorf("failed to find dataset %d: %w", id, result.Error)
	}
	return modelToDataset(&model), nil
}

// GetActive retrieves the single active dataset
func (r *GormDatasetRepository) GetActive(ctx context.Context) (*transport.Dataset, error) {
	var model DatasetModel
	result := r.db.WithContext(ctx).Where("active = ?", true).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("dataset", "active")
		}
		return nil, fmt.Errorf("failed to find active dataset: %w", result.Error)
	}
	return modelToDataset(&model), nil
}

// ExistsByODataHash is the ingestion dedup probe
func (r *GormDatasetRepository) ExistsByODataHash(ctx context.Context, hash string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&DatasetModel{}).Where("content_hash = ?", hash).Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("failed to probe dataset hash: %w", result.Error)
	}
	return count > 0, nil
}

// UpdateStatistics replaces the entity totals of one dataset row
func (r *GormDatasetRepository) UpdateStatistics(ctx context.Context, id int64, stats transport.DatasetStatistics) error {
	result := r.db.WithContext(ctx).Model(&DatasetModel{}).Where("id = ?", id).Updates(map[string]interface{}{
		"total_stops":          stats.TotalStops,
		"total_routes":         stats.TotalRoutes,
		"total_flights":        stats.TotalFlights,
		"total_virtual_stops":  stats.TotalVirtualStops,
		"total_virtual_routes": stats.TotalVirtualRoutes,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update dataset %d statistics: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("dataset", fmt.Sprintf("%d", id))
	}
	return nil
}

// SetActive clears the active flag on all rows then sets it on the row
// with the given version, inside one transaction
func (r *GormDatasetRepository) SetActive(ctx context.Context, version string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model DatasetModel
		if err := tx.Where("version = ?", version).First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.NewNotFoundError("dataset", version)
			}
			return fmt.Errorf("failed to find dataset %s: %w", version, err)
		}
		if err := tx.Model(&DatasetModel{}).Where("active = ?", true).Update("active", false).Error; err != nil {
			return fmt.Errorf("failed to clear active datasets: %w", err)
		}
		if err := tx.Model(&DatasetModel{}).Where("version = ?", version).Update("active", true).Error; err != nil {
			return fmt.Errorf("failed to activate dataset %s: %w", version, err)
		}
		return nil
	})
}

// Delete removes one dataset row, refusing the active one
func (r *GormDatasetRepository) Delete(ctx context.Context, id int64) error {
	var model DatasetModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.NewNotFoundError("dataset", fmt.Sprintf("%d", id))
		}
		return fmt.Errorf("failed to find dataset %d: %w", id, err)
	}
	if model.Active {
		return shared.NewActiveDeleteError("dataset", model.Version)
	}
	if err := r.db.WithContext(ctx).Delete(&DatasetModel{}, model.ID).Error; err != nil {
		return fmt.Errorf("failed to delete dataset %d: %w", id, err)
	}
	return nil
}

// DeleteOld keeps the newest keepCount inactive rows plus the active one
func (r *GormDatasetRepository) DeleteOld(ctx context.Context, keepCount int) (int64, error) {
	var victims []DatasetModel
	err := r.db.WithContext(ctx).
		Where("active = ?", false).
		Order("created_at DESC, id DESC").
		Offset(keepCount).
		Find(&victims).Error
	if err != nil {
		return 0, fmt.Errorf("failed to list old datasets: %w", err)
	}
	if len(victims) == 0 {
		return 0, nil
	}

	ids := make([]int64, 0, len(victims))
	for _, v := range victims {
		ids = append(ids, v.ID)
	}
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&DatasetModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete old datasets: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func datasetToModel(d *transport.Dataset) *DatasetModel {
	return &DatasetModel{
		ID:                 d.ID,
		Version:            d.Version,
		Source:             string(d.Source),
		QualityScore:       d.QualityScore,
		TotalStops:         d.Statistics.TotalStops,
		TotalRoutes:        d.Statistics.TotalRoutes,
		TotalFlights:       d.Statistics.TotalFlights,
		TotalVirtualStops:  d.Statistics.TotalVirtualStops,
		TotalVirtualRoutes: d.Statistics.TotalVirtualRoutes,
		ContentHash:        d.ContentHash,
		CreatedAt:          d.CreatedAt,
		Active:             d.Active,
	}
}

func modelToDataset(m *DatasetModel) *transport.Dataset {
	return &transport.Dataset{
		ID:           m.ID,
		Version:      m.Version,
		Source:       transport.DatasetSource(m.Source),
		QualityScore: m.QualityScore,
		Statistics: transport.DatasetStatistics{
			TotalStops:         m.TotalStops,
			TotalRoutes:        m.TotalRoutes,
			TotalFlights:       m.TotalFlights,
			TotalVirtualStops:  m.TotalVirtualStops,
			TotalVirtualRoutes: m.TotalVirtualRoutes,
		},
		ContentHash: m.ContentHash,
		CreatedAt:   m.CreatedAt,
		Active:      m.Active,
	}
}
