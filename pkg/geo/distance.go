package geo

import "math"

// EarthRadiusKm is the mean Earth radius used for all great-circle math.
const EarthRadiusKm = 6371.0

// HaversineKm computes the great-circle distance between two coordinates
// using the haversine formula. Preferred for short distances where the
// law of cosines loses precision.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// LawOfCosinesKm computes the great-circle distance using the spherical
// law of cosines. Used by the nearby-stop query so Go-side distances match
// the SQL-side formula exactly.
func LawOfCosinesKm(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	dLambda := toRadians(lon2 - lon1)

	// Clamp to [-1,1] so float drift near identical points cannot produce NaN
	cosAngle := math.Sin(phi1)*math.Sin(phi2) + math.Cos(phi1)*math.Cos(phi2)*math.Cos(dLambda)
	if cosAngle > 1 {
		cosAngle = 1
	} else if cosAngle < -1 {
		cosAngle = -1
	}

	return EarthRadiusKm * math.Acos(cosAngle)
}

// BoundingBox returns the min/max latitude and longitude of a square that
// fully contains the circle of radiusKm around (lat, lon). Used as a cheap
// SQL prefilter before exact distance checks.
func BoundingBox(lat, lon, radiusKm float64) (minLat, maxLat, minLon, maxLon float64) {
	latDelta := radiusKm / 111.0 // ~111 km per degree of latitude

	minLat = lat - latDelta
	maxLat = lat + latDelta

	// Longitude degrees shrink with latitude; guard the poles
	cosLat := math.Cos(toRadians(lat))
	if cosLat < 0.01 {
		cosLat = 0.01
	}
	lonDelta := radiusKm / (111.0 * cosLat)

	minLon = lon - lonDelta
	maxLon = lon + lonDelta
	return minLat, maxLat, minLon, maxLon
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
