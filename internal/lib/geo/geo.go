package geo

import "math"

// DistanceKm calculates great-circle distance in kilometers between two
// coordinate pairs using the Haversine formula. No range validation is done;
// any finite input yields a finite result.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dlat := deg2rad(lat2 - lat1)
	dlon := deg2rad(lon2 - lon1)

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(deg2rad(lat1))*math.Cos(deg2rad(lat2))*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// PointToPoint calculates great-circle distance between two points in kilometers
func PointToPoint(p1, p2 Point) float64 {
	// If points are the same, distance is 0
	if p1 == p2 {
		return 0
	}
	return DistanceKm(p1.Latitude, p1.Longitude, p2.Latitude, p2.Longitude)
}

func deg2rad(deg float64) float64 {
	return deg * math.Pi / 180
}
