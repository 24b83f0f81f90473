package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sakhatrip/sakhatrip-go/internal/domain/reference"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/shared"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/transport"
)

// GormVirtualStopRepository implements transport.VirtualStopRepository
// using GORM
type GormVirtualStopRepository struct {
	db *gorm.DB
}

// NewGormVirtualStopRepository creates a new GORM virtual stop repository
func NewGormVirtualStopRepository(db *gorm.DB) *GormVirtualStopRepository {
	return &GormVirtualStopRepository{db: db}
}

// SaveBatch upserts all virtual stops in one transaction
func (r *GormVirtualStopRepository) SaveBatch(ctx context.Context, stops []*transport.VirtualStop) error {
	if len(stops) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, stop := range stops {
			model := virtualStopToModel(stop)
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).Create(model).Error; err != nil {
				return fmt.Errorf("failed to upsert virtual stop %s: %w", stop.ID, err)
			}
		}
		return nil
	})
}

// FindByID retrieves a virtual stop by id
func (r *GormVirtualStopRepository) FindByID(ctx context.Context, id string) (*transport.VirtualStop, error) {
	var model VirtualStopModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("virtual stop", id)
		}
		return nil, fmt.Errorf("failed to find virtual stop %s: %w", id, result.Error)
	}
	return modelToVirtualStop(&model), nil
}

// FindAll retrieves every virtual stop
func (r *GormVirtualStopRepository) FindAll(ctx context.Context) ([]*transport.VirtualStop, error) {
	var models []VirtualStopModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list virtual stops: %w", err)
	}
	return modelsToVirtualStops(models), nil
}

// FindByCityID matches on the normalized cityId
func (r *GormVirtualStopRepository) FindByCityID(ctx context.Context, cityID string) ([]*transport.VirtualStop, error) {
	normalized := reference.NormalizeCityName(cityID)
	var models []VirtualStopModel
	if err := r.db.WithContext(ctx).Where("city_id = ?", normalized).Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find virtual stops for city %s: %w", normalized, err)
	}
	return modelsToVirtualStops(models), nil
}

// SearchByCityName mirrors the real-stop search contract over virtual stops
func (r *GormVirtualStopRepository) SearchByCityName(ctx context.Context, name string) ([]*transport.VirtualStop, error) {
	normalized := reference.NormalizeCityName(name)
	if normalized == "" {
		return nil, nil
	}
	lowered := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "ё", "е")

	var models []VirtualStopModel
	err := r.db.WithContext(ctx).
		Where("city_id = ? OR city_id LIKE ? OR name LIKE ? OR REPLACE(LOWER(name), 'ё', 'е') LIKE ?",
			normalized, normalized+"%", "%"+name+"%", "%"+lowered+"%").
		Clauses(clause.OrderBy{
			Expression: gorm.Expr("CASE WHEN city_id = ? THEN 0 ELSE 1 END, city_id, id", normalized),
		}).
		Limit(cityNameSearchLimit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search virtual stops by city name %q: %w", name, err)
	}
	return modelsToVirtualStops(models), nil
}

// CountAll returns the number of virtual stops
func (r *GormVirtualStopRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&VirtualStopModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count virtual stops: %w", err)
	}
	return count, nil
}

// DeleteAll removes every virtual stop, returning the number removed.
// Used when the virtual set is regenerated wholesale.
func (r *GormVirtualStopRepository) DeleteAll(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Where("1 = 1").Delete(&VirtualStopModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete virtual stops: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func virtualStopToModel(v *transport.VirtualStop) *VirtualStopModel {
	gridPosition := ""
	if v.GridPosition != nil {
		gridPosition = marshalJSON(v.GridPosition)
	}
	return &VirtualStopModel{
		ID:           v.ID,
		Name:         v.Name,
		Latitude:     v.Latitude,
		Longitude:    v.Longitude,
		GridType:     string(v.GridType),
		CityID:       reference.NormalizeCityName(v.CityID),
		GridPosition: gridPosition,
		NearbyStops:  marshalJSON(v.NearbyStops),
		CreatedAt:    v.CreatedAt,
	}
}

func modelToVirtualStop(m *VirtualStopModel) *transport.VirtualStop {
	var gridPosition *transport.GridPosition
	if m.GridPosition != "" {
		var pos transport.GridPosition
		if err := json.Unmarshal([]byte(m.GridPosition), &pos); err == nil {
			gridPosition = &pos
		}
	}
	var nearby []transport.NearbyStop
	if m.NearbyStops != "" {
		_ = json.Unmarshal([]byte(m.NearbyStops), &nearby)
	}
	return &transport.VirtualStop{
		ID:           m.ID,
		Name:         m.Name,
		Latitude:     m.Latitude,
		Longitude:    m.Longitude,
		GridType:     transport.GridType(m.GridType),
		CityID:       m.CityID,
		GridPosition: gridPosition,
		NearbyStops:  nearby,
		CreatedAt:    m.CreatedAt,
	}
}

func modelsToVirtualStops(models []VirtualStopModel) []*transport.VirtualStop {
	out := make([]*transport.VirtualStop, 0, len(models))
	for i := range models {
		out = append(out, modelToVirtualStop(&models[i]))
	}
	return out
}
