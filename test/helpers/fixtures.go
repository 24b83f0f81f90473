package helpers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sakhatrip/sakhatrip-go/internal/adapters/persistence"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/reference"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/transport"
)

// Repos bundles every GORM repository over one test database
type Repos struct {
	Datasets      *persistence.GormDatasetRepository
	Stops         *persistence.GormStopRepository
	VirtualStops  *persistence.GormVirtualStopRepository
	Routes        *persistence.GormRouteRepository
	VirtualRoutes *persistence.GormVirtualRouteRepository
	Flights       *persistence.GormFlightRepository
	GraphMetadata *persistence.GormGraphMetadataRepository
	WorkerLogs    *persistence.GormWorkerLogRepository
}

// NewRepos wires all repositories over the given database
func NewRepos(db *gorm.DB) *Repos {
	return &Repos{
		Datasets:      persistence.NewGormDatasetRepository(db),
		Stops:         persistence.NewGormStopRepository(db),
		VirtualStops:  persistence.NewGormVirtualStopRepository(db),
		Routes:        persistence.NewGormRouteRepository(db),
		VirtualRoutes: persistence.NewGormVirtualRouteRepository(db),
		Flights:       persistence.NewGormFlightRepository(db),
		GraphMetadata: persistence.NewGormGraphMetadataRepository(db),
		WorkerLogs:    persistence.NewGormWorkerLogRepository(db),
	}
}

// TestDirectory builds a small city reference: the hub, two more Yakutia
// towns and two federal cities.
func TestDirectory() *reference.Directory {
	return reference.NewDirectory([]reference.UnifiedCity{
		{Name: "Якутск", IsFederalCity: false, Latitude: 62.03, Longitude: 129.73},
		{Name: "Мирный", IsFederalCity: false, Latitude: 62.54, Longitude: 113.96},
		{Name: "Нерюнгри", IsFederalCity: false, Latitude: 56.66, Longitude: 124.72},
		{Name: "Москва", IsFederalCity: true, Latitude: 55.75, Longitude: 37.62},
		{Name: "Новосибирск", IsFederalCity: true, Latitude: 55.03, Longitude: 82.92},
	})
}

// SeedDataset persists a mock dataset and marks it active
func SeedDataset(t *testing.T, repos *Repos, version string) *transport.Dataset {
	t.Helper()
	ctx := context.Background()
	dataset := &transport.Dataset{
		Version:     version,
		Source:      transport.SourceMock,
		ContentHash: "hash-" + version,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, repos.Datasets.Save(ctx, dataset))
	require.NoError(t, repos.Datasets.SetActive(ctx, version))
	saved, err := repos.Datasets.GetActive(ctx)
	require.NoError(t, err)
	return saved
}

// AirportStop builds a real airport stop for the city
func AirportStop(id, city string, lat, lon float64) *transport.Stop {
	return &transport.Stop{
		ID:        id,
		Name:      "Аэропорт " + city,
		Latitude:  lat,
		Longitude: lon,
		CityID:    city,
		IsAirport: true,
		Metadata:  map[string]string{"type": "airport"},
	}
}

// GroundStop builds a real ground stop for the city
func GroundStop(id, city string, lat, lon float64) *transport.Stop {
	return &transport.Stop{
		ID:        id,
		Name:      "Автовокзал " + city,
		Latitude:  lat,
		Longitude: lon,
		CityID:    city,
	}
}

// DailyFlight builds a flight operating every day of the week
func DailyFlight(id, from, to, dep, arr string, price float64, routeID string) *transport.Flight {
	return &transport.Flight{
		ID:            id,
		FromStopID:    from,
		ToStopID:      to,
		DepartureTime: dep,
		ArrivalTime:   arr,
		DaysOfWeek:    []int{1, 2, 3, 4, 5, 6, 7},
		RouteID:       routeID,
		PriceRub:      price,
		TransportType: transport.TransportPlane,
	}
}

// DirectRoute builds a real two-stop route
func DirectRoute(id string, tt transport.TransportType, from, to string, durationMin int, distanceKm float64) *transport.Route {
	return &transport.Route{
		ID:            id,
		TransportType: tt,
		FromStopID:    from,
		ToStopID:      to,
		Stops: []transport.RouteStop{
			{StopID: from, Sequence: 1},
			{StopID: to, Sequence: 2},
		},
		DurationMinutes: durationMin,
		DistanceKm:      distanceKm,
	}
}
