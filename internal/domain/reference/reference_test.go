package reference_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakhatrip/sakhatrip-go/internal/domain/reference"
)

func TestEmbedded_ContainsHubAndFederalCities(t *testing.T) {
	dir := reference.Embedded()

	hub, ok := dir.CityByNormalizedName("Якутск")
	require.True(t, ok)
	assert.False(t, hub.IsFederalCity)
	assert.InDelta(t, 62.03, hub.Latitude, 0.1)

	moscow, ok := dir.CityByNormalizedName("г. Москва")
	require.True(t, ok)
	assert.True(t, moscow.IsFederalCity)
}

func TestEmbedded_FederalAndYakutiaSplitIsDisjointAndComplete(t *testing.T) {
	dir := reference.Embedded()

	federal := dir.FederalCities()
	yakutia := dir.YakutiaCities()

	assert.NotEmpty(t, federal)
	assert.NotEmpty(t, yakutia)
	assert.Len(t, dir.All(), len(federal)+len(yakutia))

	for _, c := range federal {
		assert.True(t, c.IsFederalCity)
	}
	for _, c := range yakutia {
		assert.False(t, c.IsFederalCity)
	}
}

func TestIsCityInReference_NormalizesBeforeLookup(t *testing.T) {
	assert.True(t, reference.IsCityInReference("ОЛЁКМИНСК"))
	assert.True(t, reference.IsCityInReference("г. Якутск"))
	assert.False(t, reference.IsCityInReference("Атлантида"))
}

func TestCityByAirportName(t *testing.T) {
	city, ok := reference.CityByAirportName("Шереметьево")
	require.True(t, ok)
	assert.Equal(t, "Москва", city)

	city, ok = reference.CityByAirportName("Туймаада")
	require.True(t, ok)
	assert.Equal(t, "Якутск", city)

	_, ok = reference.CityByAirportName("Хитроу")
	assert.False(t, ok)
}

func TestMainCityBySuburb(t *testing.T) {
	city, ok := reference.MainCityBySuburb("Жатай")
	require.True(t, ok)
	assert.Equal(t, "Якутск", city)

	_, ok = reference.MainCityBySuburb("Якутск")
	assert.False(t, ok)
}

func TestNewDirectory_CustomCitySet(t *testing.T) {
	dir := reference.NewDirectory([]reference.UnifiedCity{
		{Name: "Якутск", IsFederalCity: false, Latitude: 62.0355, Longitude: 129.6755},
		{Name: "Тестоград", IsFederalCity: true, Latitude: 50, Longitude: 40},
	})

	assert.True(t, dir.Contains("тестоград"))
	assert.Len(t, dir.FederalCities(), 1)
	assert.Len(t, dir.YakutiaCities(), 1)
}

func TestHubCityID(t *testing.T) {
	assert.Equal(t, "якутск", reference.HubCityID())
}
