package models

// GeoPoint is a latitude/longitude pair. A nil *GeoPoint attached to an
// itinerary item means its location could not be resolved, which is a
// valid, expected state for map consumers.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// TravelMode selects how a route between stops is computed.
type TravelMode string

const (
	TravelModeWalking   TravelMode = "walking"
	TravelModeDriving   TravelMode = "driving"
	TravelModeBicycling TravelMode = "bicycling"
	TravelModeTransit   TravelMode = "transit"
)
