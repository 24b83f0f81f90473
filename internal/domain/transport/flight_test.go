package transport_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakhatrip/sakhatrip-go/internal/domain/transport"
)

func TestParseClock(t *testing.T) {
	minutes, err := transport.ParseClock("08:30")
	require.NoError(t, err)
	assert.Equal(t, 510, minutes)

	_, err = transport.ParseClock("25:00")
	assert.Error(t, err)

	_, err = transport.ParseClock("abc")
	assert.Error(t, err)
}

func TestFormatClock_WrapsPastMidnight(t *testing.T) {
	assert.Equal(t, "08:00", transport.FormatClock(480))
	assert.Equal(t, "00:00", transport.FormatClock(1440))
	assert.Equal(t, "02:30", transport.FormatClock(1440+150))
}

func TestFlightDurationMinutes(t *testing.T) {
	f := &transport.Flight{DepartureTime: "08:00", ArrivalTime: "14:00"}

	d, err := f.DurationMinutes()

	require.NoError(t, err)
	assert.Equal(t, 360, d)
}

func TestFlightDurationMinutes_SpansMidnight(t *testing.T) {
	f := &transport.Flight{DepartureTime: "22:00", ArrivalTime: "02:00"}

	d, err := f.DurationMinutes()

	require.NoError(t, err)
	assert.Equal(t, 240, d)
}

func TestISOWeekday(t *testing.T) {
	// 2025-02-01 is a Saturday
	assert.Equal(t, 6, transport.ISOWeekday(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)))
	// 2025-02-02 is a Sunday, ISO numbering maps it to 7
	assert.Equal(t, 7, transport.ISOWeekday(time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC)))
	// Monday maps to 1
	assert.Equal(t, 1, transport.ISOWeekday(time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)))
}

func TestFlightOperatesOn(t *testing.T) {
	f := &transport.Flight{DaysOfWeek: []int{6, 7}}

	saturday := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	monday := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)

	assert.True(t, f.OperatesOn(saturday))
	assert.False(t, f.OperatesOn(monday))
}
