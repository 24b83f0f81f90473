package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sakhatrip/sakhatrip-go/internal/domain/transport"
)

// GormVirtualRouteRepository implements transport.VirtualRouteRepository
// using GORM
type GormVirtualRouteRepository struct {
	db *gorm.DB
}

// NewGormVirtualRouteRepository creates a new GORM virtual route repository
func NewGormVirtualRouteRepository(db *gorm.DB) *GormVirtualRouteRepository {
	return &GormVirtualRouteRepository{db: db}
}

// SaveBatch upserts all virtual routes in one transaction
func (r *GormVirtualRouteRepository) SaveBatch(ctx context.Context, routes []*transport.VirtualRoute) error {
	if len(routes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, route := range routes {
			model := virtualRouteToModel(route)
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).Create(model).Error; err != nil {
				return fmt.Errorf("failed to upsert virtual route %s: %w", route.ID, err)
			}
		}
		return nil
	})
}

// FindAll retrieves every virtual route
func (r *GormVirtualRouteRepository) FindAll(ctx context.Context) ([]*transport.VirtualRoute, error) {
	var models []VirtualRouteModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list virtual routes: %w", err)
	}
	out := make([]*transport.VirtualRoute, 0, len(models))
	for i := range models {
		out = append(out, modelToVirtualRoute(&models[i]))
	}
	return out, nil
}

// ExistsBetween reports whether a virtual route already connects the two
// stops in the given direction
func (r *GormVirtualRouteRepository) ExistsBetween(ctx context.Context, fromStopID, toStopID string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&VirtualRouteModel{}).
		Where("from_stop_id = ? AND to_stop_id = ?", fromStopID, toStopID).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("failed to probe virtual route %s->%s: %w", fromStopID, toStopID, result.Error)
	}
	return count > 0, nil
}

// CountAll returns the number of virtual routes
func (r *GormVirtualRouteRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&VirtualRouteModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count virtual routes: %w", err)
	}
	return count, nil
}

// DeleteAll removes every virtual route, returning the number removed
func (r *GormVirtualRouteRepository) DeleteAll(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Where("1 = 1").Delete(&VirtualRouteModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete virtual routes: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func virtualRouteToModel(v *transport.VirtualRoute) *VirtualRouteModel {
	return &VirtualRouteModel{
		ID:              v.ID,
		RouteType:       string(v.RouteType),
		FromStopID:      v.FromStopID,
		ToStopID:        v.ToStopID,
		DistanceKm:      v.DistanceKm,
		DurationMinutes: v.DurationMinutes,
		TransportMode:   string(v.TransportMode),
		Metadata:        marshalJSON(v.Metadata),
		CreatedAt:       v.CreatedAt,
	}
}

func modelToVirtualRoute(m *VirtualRouteModel) *transport.VirtualRoute {
	return &transport.VirtualRoute{
		ID:              m.ID,
		RouteType:       transport.RouteType(m.RouteType),
		FromStopID:      m.FromStopID,
		ToStopID:        m.ToStopID,
		DistanceKm:      m.DistanceKm,
		DurationMinutes: m.DurationMinutes,
		TransportMode:   transport.TransportMode(m.TransportMode),
		Metadata:        unmarshalStringMap(m.Metadata),
		CreatedAt:       m.CreatedAt,
	}
}
