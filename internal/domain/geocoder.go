package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat              float64
	Lng              float64
	FormattedAddress string
	PlaceName        string
	Confidence       float64 // 0.0–1.0 provider confidence score
}

// Found reports whether the provider returned coordinates.
func (r GeocodingResult) Found() bool {
	return r.Lat != 0 || r.Lng != 0
}

// Geocoder places cities that are missing from the reference table on the map.
// Records themselves are never geocoded; they keep the fallback centroid.
type Geocoder interface {
	// ForwardGeocode converts a city name and country to coordinates.
	ForwardGeocode(ctx context.Context, city, country string) (GeocodingResult, error)
}
