package geo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakhatrip/sakhatrip-go/pkg/geo"
)

func TestHaversineKm_YakutskToMoscow(t *testing.T) {
	// Якутск and Москва city centers
	distance := geo.HaversineKm(62.0355, 129.6755, 55.7558, 37.6173)

	// Known distance is roughly 4900 km
	assert.InDelta(t, 4900, distance, 100)
}

func TestHaversineKm_SamePoint(t *testing.T) {
	distance := geo.HaversineKm(62.0355, 129.6755, 62.0355, 129.6755)

	assert.Equal(t, 0.0, distance)
}

func TestLawOfCosinesKm_MatchesHaversineForIntercityDistances(t *testing.T) {
	// Якутск to Мирный
	h := geo.HaversineKm(62.0355, 129.6755, 62.5364, 113.9611)
	loc := geo.LawOfCosinesKm(62.0355, 129.6755, 62.5364, 113.9611)

	assert.InDelta(t, h, loc, 0.5)
}

func TestLawOfCosinesKm_SamePointIsZeroNotNaN(t *testing.T) {
	distance := geo.LawOfCosinesKm(55.7558, 37.6173, 55.7558, 37.6173)

	assert.False(t, distance != distance, "distance must not be NaN")
	assert.InDelta(t, 0, distance, 0.001)
}

func TestBoundingBox_ContainsRadius(t *testing.T) {
	minLat, maxLat, minLon, maxLon := geo.BoundingBox(62.0355, 129.6755, 50)

	assert.Less(t, minLat, 62.0355)
	assert.Greater(t, maxLat, 62.0355)
	assert.Less(t, minLon, 129.6755)
	assert.Greater(t, maxLon, 129.6755)

	// A point 40 km due north must fall inside the box
	northLat := 62.0355 + 40.0/111.0
	assert.GreaterOrEqual(t, maxLat, northLat)
}
