package directions

import "github.com/metropolisapp/metropolis/internal/models"

// decodePolyline decodes a Google encoded polyline string into lat/lng
// points. Truncated input yields the points decoded so far.
func decodePolyline(encoded string) []models.GeoPoint {
	var points []models.GeoPoint
	index, lat, lng := 0, 0, 0

	for index < len(encoded) {
		dlat, next, ok := decodeValue(encoded, index)
		if !ok {
			break
		}
		lat += dlat
		index = next

		dlng, next, ok := decodeValue(encoded, index)
		if !ok {
			break
		}
		lng += dlng
		index = next

		points = append(points, models.GeoPoint{
			Lat: float64(lat) / 1e5,
			Lng: float64(lng) / 1e5,
		})
	}
	return points
}

// decodeValue reads one zigzag-encoded varint from the polyline.
func decodeValue(encoded string, index int) (value, next int, ok bool) {
	var result, shift uint
	for {
		if index >= len(encoded) {
			return 0, index, false
		}
		b := uint(encoded[index]) - 63
		index++
		result |= (b & 0x1F) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}
	if result&1 != 0 {
		return ^int(result >> 1), index, true
	}
	return int(result >> 1), index, true
}
