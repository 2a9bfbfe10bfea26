// Package geo provides great-circle distance calculations for geocoded
// property records.
package geo

import "math"

// EarthRadiusMiles is the mean Earth radius used by HaversineMiles.
const EarthRadiusMiles = 3958.8

// HaversineMiles returns the great-circle distance in miles between two
// points given in decimal degrees. The result is symmetric, exactly zero for
// identical points, and always finite and non-negative for finite input.
func HaversineMiles(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}

	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	dPhi := toRadians(lat2 - lat1)
	dLambda := toRadians(lon2 - lon1)

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda

	// Rounding can push a a hair outside [0, 1] near antipodes.
	a = math.Min(1, math.Max(0, a))

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMiles * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
