package model

import "strings"

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// City is the canonical geography record for one normalized place name.
type City struct {
	NormalizedName string  `json:"normalizedName"`
	DisplayName    string  `json:"displayName" validate:"required"`
	Lat            float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng            float64 `json:"lng" validate:"gte=-180,lte=180"`
	CountryCode    string  `json:"countryCode,omitempty" validate:"omitempty,len=2"`
}

// Coordinates returns the city's coordinate pair.
func (c City) Coordinates() Coordinates {
	return Coordinates{Lat: c.Lat, Lng: c.Lng}
}

// Key returns the lookup key for the city: the explicit normalized name
// when present, otherwise the display name.
func (c City) Key() string {
	if k := CityKey(c.NormalizedName); k != "" {
		return k
	}
	return CityKey(c.DisplayName)
}

// CityKey lower-cases and trims name. Internal spacing is preserved, so
// "New York" and "new york" share a key while "NewYork" does not.
func CityKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
