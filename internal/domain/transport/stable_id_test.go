package transport_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakhatrip/sakhatrip-go/internal/domain/transport"
)

func TestGenerateStableID_SimpleCityName(t *testing.T) {
	id, err := transport.GenerateStableID("Новосибирск")

	require.NoError(t, err)
	assert.Equal(t, "новосибирск", id)
}

func TestGenerateStableID_MultiWordAndMarker(t *testing.T) {
	id, err := transport.GenerateStableID("г. Нижний Новгород")

	require.NoError(t, err)
	assert.Equal(t, "нижний-новгород", id)
}

func TestGenerateStableID_JoinsParts(t *testing.T) {
	id, err := transport.GenerateStableID("Якутск", "Москва")

	require.NoError(t, err)
	assert.Equal(t, "якутск-москва", id)
}

func TestGenerateStableID_NeverEmptyForNonEmptyInput(t *testing.T) {
	// Punctuation-only input normalizes to nothing; the hash fallback
	// must still produce a usable id
	id, err := transport.GenerateStableID("!!!")

	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Regexp(t, `^id-[0-9a-f]{8}$`, id)
}

func TestGenerateStableID_DeterministicFallback(t *testing.T) {
	first, err := transport.GenerateStableID("???")
	require.NoError(t, err)

	second, err := transport.GenerateStableID("???")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerateStableID_FailsOnlyOnEmptyInput(t *testing.T) {
	_, err := transport.GenerateStableID("")
	assert.Error(t, err)

	_, err = transport.GenerateStableID("   ", "")
	assert.Error(t, err)
}

func TestVirtualStopID(t *testing.T) {
	id, err := transport.VirtualStopID("Новосибирск")

	require.NoError(t, err)
	assert.Equal(t, "virtual-stop-новосибирск", id)
}

func TestAirRouteID(t *testing.T) {
	id, err := transport.AirRouteID("Якутск", "Москва", 1)

	require.NoError(t, err)
	assert.Equal(t, "air-route-якутск-москва-1", id)
}

func TestFlightID(t *testing.T) {
	assert.Equal(t, "flight-air-route-якутск-москва-1-3-0800",
		transport.FlightID("air-route-якутск-москва-1", 3, "08:00"))
}
