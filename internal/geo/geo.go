// Package geo computes great-circle distances between profile coordinates.
package geo

import "math"

const earthRadiusKm = 6371.0

// Distance returns the haversine distance in kilometers between two
// (latitude, longitude) pairs, rounded to 2 decimal places.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	dPhi := toRadians(lat2 - lat1)
	dLambda := toRadians(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return round2(earthRadiusKm * c)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
