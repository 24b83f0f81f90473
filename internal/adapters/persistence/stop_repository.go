package persistence

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sakhatrip/sakhatrip-go/internal/domain/reference"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/shared"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/transport"
	"github.com/sakhatrip/sakhatrip-go/pkg/geo"
)

// cityNameSearchLimit caps database-side city search results
const cityNameSearchLimit = 100

// GormStopRepository implements transport.StopRepository using GORM
type GormStopRepository struct {
	db *gorm.DB
}

// NewGormStopRepository creates a new GORM stop repository
func NewGormStopRepository(db *gorm.DB) *GormStopRepository {
	return &GormStopRepository{db: db}
}

// SaveBatch upserts all stops in one transaction, all-or-nothing
func (r *GormStopRepository) SaveBatch(ctx context.Context, stops []*transport.Stop) error {
	if len(stops) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, stop := range stops {
			model := stopToModel(stop)
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).Create(model).Error; err != nil {
				return fmt.Errorf("failed to upsert stop %s: %w", stop.ID, err)
			}
		}
		return nil
	})
}

// FindByID retrieves a stop by id
func (r *GormStopRepository) FindByID(ctx context.Context, id string) (*transport.Stop, error) {
	var model StopModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("stop", id)
		}
		return nil, fmt.Errorf("failed to find stop %s: %w", id, result.Error)
	}
	return modelToStop(&model), nil
}

// FindAll retrieves every real stop
func (r *GormStopRepository) FindAll(ctx context.Context) ([]*transport.Stop, error) {
	var models []StopModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list stops: %w", err)
	}
	return modelsToStops(models), nil
}

// FindByCityID matches on the normalized cityId
func (r *GormStopRepository) FindByCityID(ctx context.Context, cityID string) ([]*transport.Stop, error) {
	normalized := reference.NormalizeCityName(cityID)
	var models []StopModel
	if err := r.db.WithContext(ctx).Where("city_id = ?", normalized).Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find stops for city %s: %w", normalized, err)
	}
	return modelsToStops(models), nil
}

// FindNearby returns stops within radiusKm of the point, ordered by
// distance ascending. A bounding box prefilters in SQL; the exact
// great-circle check runs in Go with the same R=6371 sphere.
func (r *GormStopRepository) FindNearby(ctx context.Context, lat, lon, radiusKm float64) ([]*transport.Stop, error) {
	minLat, maxLat, minLon, maxLon := geo.BoundingBox(lat, lon, radiusKm)

	var models []StopModel
	err := r.db.WithContext(ctx).
		Where("latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?", minLat, maxLat, minLon, maxLon).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query nearby stops: %w", err)
	}

	type stopWithDistance struct {
		stop     *transport.Stop
		distance float64
	}
	var inside []stopWithDistance
	for i := range models {
		d := geo.LawOfCosinesKm(lat, lon, models[i].Latitude, models[i].Longitude)
		if d <= radiusKm {
			inside = append(inside, stopWithDistance{stop: modelToStop(&models[i]), distance: d})
		}
	}
	sort.Slice(inside, func(i, j int) bool { return inside[i].distance < inside[j].distance })

	out := make([]*transport.Stop, 0, len(inside))
	for _, s := range inside {
		out = append(out, s.stop)
	}
	return out, nil
}

// SearchByCityName is the database-side city search. Matches exact
// normalized cityId, cityId prefix/substring, and folded name substring;
// exact cityId matches order first. Capped at 100 rows.
func (r *GormStopRepository) SearchByCityName(ctx context.Context, name string) ([]*transport.Stop, error) {
	normalized := reference.NormalizeCityName(name)
	if normalized == "" {
		return nil, nil
	}
	lowered := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "ё", "е")

	var models []StopModel
	err := r.db.WithContext(ctx).
		Where("city_id = ? OR city_id LIKE ? OR name LIKE ? OR REPLACE(LOWER(name), 'ё', 'е') LIKE ?",
			normalized, normalized+"%", "%"+name+"%", "%"+lowered+"%").
		Clauses(clause.OrderBy{
			Expression: gorm.Expr("CASE WHEN city_id = ? THEN 0 ELSE 1 END, city_id, id", normalized),
		}).
		Limit(cityNameSearchLimit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search stops by city name %q: %w", name, err)
	}
	return modelsToStops(models), nil
}

// CountAll returns the number of real stops
func (r *GormStopRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&StopModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count stops: %w", err)
	}
	return count, nil
}

// DeleteByID removes a single stop row
func (r *GormStopRepository) DeleteByID(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&StopModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete stop %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("stop", id)
	}
	return nil
}

func stopToModel(s *transport.Stop) *StopModel {
	return &StopModel{
		ID:               s.ID,
		Name:             s.Name,
		Latitude:         s.Latitude,
		Longitude:        s.Longitude,
		CityID:           reference.NormalizeCityName(s.CityID),
		IsAirport:        s.IsAirport,
		IsRailwayStation: s.IsRailwayStation,
		Metadata:         marshalJSON(s.Metadata),
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

func modelToStop(m *StopModel) *transport.Stop {
	return &transport.Stop{
		ID:               m.ID,
		Name:             m.Name,
		Latitude:         m.Latitude,
		Longitude:        m.Longitude,
		CityID:           m.CityID,
		IsAirport:        m.IsAirport,
		IsRailwayStation: m.IsRailwayStation,
		Metadata:         unmarshalStringMap(m.Metadata),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func modelsToStops(models []StopModel) []*transport.Stop {
	out := make([]*transport.Stop, 0, len(models))
	for i := range models {
		out = append(out, modelToStop(&models[i]))
	}
	return out
}
