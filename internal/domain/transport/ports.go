package transport

import (
	"context"
	"time"
)

// DatasetRepository defines persistence operations for dataset snapshots
type DatasetRepository interface {
	Save(ctx context.Context, dataset *Dataset) error

	// GetLatest returns the newest dataset by creation time
	GetLatest(ctx context.Context) (*Dataset, error)

	GetByID(ctx context.Context, id int64) (*Dataset, error)
	GetActive(ctx context.Context) (*Dataset, error)

	// ExistsByODataHash is the ingestion dedup probe
	ExistsByODataHash(ctx context.Context, hash string) (bool, error)

	UpdateStatistics(ctx context.Context, id int64, stats DatasetStatistics) error

	// SetActive clears the active flag on all rows then sets it on the
	// row with the given version, inside one transaction
	SetActive(ctx context.Context, version string) error

	// Delete refuses to remove the active dataset
	Delete(ctx context.Context, id int64) error

	// DeleteOld keeps the newest keepCount rows plus the active one,
	// returns the number of rows removed
	DeleteOld(ctx context.Context, keepCount int) (int64, error)
}

// StopRepository defines persistence operations for real stops
type StopRepository interface {
	// SaveBatch upserts all stops in one transaction, all-or-nothing
	SaveBatch(ctx context.Context, stops []*Stop) error

	FindByID(ctx context.Context, id string) (*Stop, error)
	FindAll(ctx context.Context) ([]*Stop, error)

	// FindByCityID matches on the normalized cityId
	FindByCityID(ctx context.Context, cityID string) ([]*Stop, error)

	// FindNearby returns stops within radiusKm of the point, ordered by
	// distance ascending
	FindNearby(ctx context.Context, lat, lon, radiusKm float64) ([]*Stop, error)

	// SearchByCityName is the database-side city search: exact
	// normalized cityId matches first, then prefix/substring and folded
	// name matches, capped at 100 rows
	SearchByCityName(ctx context.Context, name string) ([]*Stop, error)

	CountAll(ctx context.Context) (int64, error)
	DeleteByID(ctx context.Context, id string) error
}

// VirtualStopRepository defines persistence operations for virtual stops
type VirtualStopRepository interface {
	SaveBatch(ctx context.Context, stops []*VirtualStop) error
	FindByID(ctx context.Context, id string) (*VirtualStop, error)
	FindAll(ctx context.Context) ([]*VirtualStop, error)
	FindByCityID(ctx context.Context, cityID string) ([]*VirtualStop, error)
	SearchByCityName(ctx context.Context, name string) ([]*VirtualStop, error)
	CountAll(ctx context.Context) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// RouteRepository defines persistence operations for real routes
type RouteRepository interface {
	SaveBatch(ctx context.Context, routes []*Route) error
	FindByID(ctx context.Context, id string) (*Route, error)
	FindAll(ctx context.Context) ([]*Route, error)

	// ExistsDirect reports whether a real route already connects the two
	// stops in the given direction
	ExistsDirect(ctx context.Context, fromStopID, toStopID string) (bool, error)

	CountAll(ctx context.Context) (int64, error)
}

// VirtualRouteRepository defines persistence operations for virtual routes
type VirtualRouteRepository interface {
	SaveBatch(ctx context.Context, routes []*VirtualRoute) error
	FindAll(ctx context.Context) ([]*VirtualRoute, error)
	ExistsBetween(ctx context.Context, fromStopID, toStopID string) (bool, error)
	CountAll(ctx context.Context) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// FlightRepository defines persistence operations for flights
type FlightRepository interface {
	SaveBatch(ctx context.Context, flights []*Flight) error
	FindAll(ctx context.Context) ([]*Flight, error)

	// FindBetweenStops returns flights operating on the date's weekday,
	// ordered by departure time then id for deterministic selection
	FindBetweenStops(ctx context.Context, fromStopID, toStopID string, date time.Time) ([]*Flight, error)

	CountAll(ctx context.Context) (int64, error)
	DeleteVirtual(ctx context.Context) (int64, error)
}
