package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sakhatrip/sakhatrip-go/internal/domain/transport"
)

// GormFlightRepository implements transport.FlightRepository using GORM
type GormFlightRepository struct {
	db *gorm.DB
}

// NewGormFlightRepository creates a new GORM flight repository
func NewGormFlightRepository(db *gorm.DB) *GormFlightRepository {
	return &GormFlightRepository{db: db}
}

// SaveBatch upserts all flights in one transaction
func (r *GormFlightRepository) SaveBatch(ctx context.Context, flights []*transport.Flight) error {
	if len(flights) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, flight := range flights {
			model := flightToModel(flight)
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).Create(model).Error; err != nil {
				return fmt.Errorf("failed to upsert flight %s: %w", flight.ID, err)
			}
		}
		return nil
	})
}

// FindAll retrieves every flight
func (r *GormFlightRepository) FindAll(ctx context.Context) ([]*transport.Flight, error) {
	var models []FlightModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list flights: %w", err)
	}
	out := make([]*transport.Flight, 0, len(models))
	for i := range models {
		out = append(out, modelToFlight(&models[i]))
	}
	return out, nil
}

// FindBetweenStops returns flights operating on the date's weekday,
// ordered by departure time then id so segment hydration picks
// deterministically. Day-of-week filtering runs in Go because the days
// are stored as a JSON text column.
func (r *GormFlightRepository) FindBetweenStops(ctx context.Context, fromStopID, toStopID string, date time.Time) ([]*transport.Flight, error) {
	var models []FlightModel
	err := r.db.WithContext(ctx).
		Where("from_stop_id = ? AND to_stop_id = ?", fromStopID, toStopID).
		Order("departure_time, id").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find flights %s->%s: %w", fromStopID, toStopID, err)
	}

	var out []*transport.Flight
	for i := range models {
		flight := modelToFlight(&models[i])
		if flight.OperatesOn(date) {
			out = append(out, flight)
		}
	}
	return out, nil
}

// CountAll returns the number of flights
func (r *GormFlightRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&FlightModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count flights: %w", err)
	}
	return count, nil
}

// DeleteVirtual removes all synthesized flights, returning the number
// removed
func (r *GormFlightRepository) DeleteVirtual(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Where("is_virtual = ?", true).Delete(&FlightModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete virtual flights: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func flightToModel(f *transport.Flight) *FlightModel {
	return &FlightModel{
		ID:            f.ID,
		FromStopID:    f.FromStopID,
		ToStopID:      f.ToStopID,
		DepartureTime: f.DepartureTime,
		ArrivalTime:   f.ArrivalTime,
		DaysOfWeek:    marshalJSON(f.DaysOfWeek),
		RouteID:       f.RouteID,
		PriceRub:      f.PriceRub,
		IsVirtual:     f.IsVirtual,
		TransportType: string(f.TransportType),
		Metadata:      marshalJSON(f.Metadata),
	}
}

func modelToFlight(m *FlightModel) *transport.Flight {
	var days []int
	if m.DaysOfWeek != "" {
		_ = json.Unmarshal([]byte(m.DaysOfWeek), &days)
	}
	return &transport.Flight{
		ID:            m.ID,
		FromStopID:    m.FromStopID,
		ToStopID:      m.ToStopID,
		DepartureTime: m.DepartureTime,
		ArrivalTime:   m.ArrivalTime,
		DaysOfWeek:    days,
		RouteID:       m.RouteID,
		PriceRub:      m.PriceRub,
		IsVirtual:     m.IsVirtual,
		TransportType: transport.TransportType(m.TransportType),
		Metadata:      unmarshalStringMap(m.Metadata),
	}
}
