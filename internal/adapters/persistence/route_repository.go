package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sakhatrip/sakhatrip-go/internal/domain/shared"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/transport"
)

// GormRouteRepository implements transport.RouteRepository using GORM
type GormRouteRepository struct {
	db *gorm.DB
}

// NewGormRouteRepository creates a new GORM route repository
func NewGormRouteRepository(db *gorm.DB) *GormRouteRepository {
	return &GormRouteRepository{db: db}
}

// SaveBatch upserts all routes in one transaction
func (r *GormRouteRepository) SaveBatch(ctx context.Context, routes []*transport.Route) error {
	if len(routes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, route := range routes {
			model := routeToModel(route)
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).Create(model).Error; err != nil {
				return fmt.Errorf("failed to upsert route %s: %w", route.ID, err)
			}
		}
		return nil
	})
}

// FindByID retrieves a route by id
func (r *GormRouteRepository) FindByID(ctx context.Context, id string) (*transport.Route, error) {
	var model RouteModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("route", id)
		}
		return nil, fmt.Errorf("failed to find route %s: %w", id, result.Error)
	}
	return modelToRoute(&model), nil
}

// FindAll retrieves every real route
func (r *GormRouteRepository) FindAll(ctx context.Context) ([]*transport.Route, error) {
	var models []RouteModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}
	out := make([]*transport.Route, 0, len(models))
	for i := range models {
		out = append(out, modelToRoute(&models[i]))
	}
	return out, nil
}

// ExistsDirect reports whether a real route already connects the two
// stops in the given direction
func (r *GormRouteRepository) ExistsDirect(ctx context.Context, fromStopID, toStopID string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&RouteModel{}).
		Where("from_stop_id = ? AND to_stop_id = ?", fromStopID, toStopID).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("failed to probe direct route %s->%s: %w", fromStopID, toStopID, result.Error)
	}
	return count > 0, nil
}

// CountAll returns the number of real routes
func (r *GormRouteRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&RouteModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count routes: %w", err)
	}
	return count, nil
}

func routeToModel(route *transport.Route) *RouteModel {
	return &RouteModel{
		ID:              route.ID,
		TransportType:   string(route.TransportType),
		FromStopID:      route.FromStopID,
		ToStopID:        route.ToStopID,
		Stops:           marshalJSON(route.Stops),
		DurationMinutes: route.DurationMinutes,
		DistanceKm:      route.DistanceKm,
		Operator:        route.Operator,
		RouteNumber:     route.RouteNumber,
		Metadata:        marshalJSON(route.Metadata),
		CreatedAt:       route.CreatedAt,
		UpdatedAt:       route.UpdatedAt,
	}
}

func modelToRoute(m *RouteModel) *transport.Route {
	var stops []transport.RouteStop
	if m.Stops != "" {
		_ = json.Unmarshal([]byte(m.Stops), &stops)
	}
	return &transport.Route{
		ID:              m.ID,
		TransportType:   transport.TransportType(m.TransportType),
		FromStopID:      m.FromStopID,
		ToStopID:        m.ToStopID,
		Stops:           stops,
		DurationMinutes: m.DurationMinutes,
		DistanceKm:      m.DistanceKm,
		Operator:        m.Operator,
		RouteNumber:     m.RouteNumber,
		Metadata:        unmarshalStringMap(m.Metadata),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
