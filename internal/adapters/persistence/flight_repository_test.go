package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakhatrip/sakhatrip-go/internal/adapters/persistence"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/transport"
	"github.com/sakhatrip/sakhatrip-go/test/helpers"
)

func TestFlightRepository_FindBetweenStopsFiltersWeekday(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormFlightRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.SaveBatch(ctx, []*transport.Flight{
		{
			ID: "flight-daily", FromStopID: "stop-1", ToStopID: "stop-2",
			DepartureTime: "14:00", ArrivalTime: "20:00",
			DaysOfWeek: []int{1, 2, 3, 4, 5, 6, 7}, PriceRub: 15000,
		},
		{
			ID: "flight-monday", FromStopID: "stop-1", ToStopID: "stop-2",
			DepartureTime: "08:00", ArrivalTime: "14:00",
			DaysOfWeek: []int{1}, PriceRub: 12000,
		},
		{
			ID: "flight-other-leg", FromStopID: "stop-2", ToStopID: "stop-1",
			DepartureTime: "09:00", ArrivalTime: "15:00",
			DaysOfWeek: []int{1, 2, 3, 4, 5, 6, 7}, PriceRub: 15000,
		},
	}))

	// 2025-02-01 is a Saturday, so only the daily flight matches
	saturday := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	flights, err := repo.FindBetweenStops(ctx, "stop-1", "stop-2", saturday)
	require.NoError(t, err)
	require.Len(t, flights, 1)
	assert.Equal(t, "flight-daily", flights[0].ID)

	// 2025-02-03 is a Monday: both flights, ordered by departure time
	monday := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	flights, err = repo.FindBetweenStops(ctx, "stop-1", "stop-2", monday)
	require.NoError(t, err)
	require.Len(t, flights, 2)
	assert.Equal(t, "flight-monday", flights[0].ID)
	assert.Equal(t, "flight-daily", flights[1].ID)
}

func TestFlightRepository_DeleteVirtual(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormFlightRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.SaveBatch(ctx, []*transport.Flight{
		{ID: "flight-real", FromStopID: "a", ToStopID: "b", DepartureTime: "08:00", ArrivalTime: "09:00", DaysOfWeek: []int{1}},
		{ID: "flight-virt", FromStopID: "a", ToStopID: "b", DepartureTime: "10:00", ArrivalTime: "11:00", DaysOfWeek: []int{1}, IsVirtual: true},
	}))

	deleted, err := repo.DeleteVirtual(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	count, err := repo.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
