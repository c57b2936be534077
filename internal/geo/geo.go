// Package geo resolves locations for the distance scorer. Exact
// coordinates come from the platform's geocoder; when only a free-text
// district label is known, a configured zone table supplies an ordinal
// index used as a distance proxy.
package geo

import "math"

const earthRadiusKm = 6371

// Location is a point reference. Lat/Lng are nil when geocoding did not
// resolve the free-text location.
type Location struct {
	Text string
	Lat  *float64
	Lng  *float64
}

// HasCoordinates reports whether the location resolved to usable
// coordinates. NaN coordinates count as unresolved.
func (l Location) HasCoordinates() bool {
	if l.Lat == nil || l.Lng == nil {
		return false
	}
	return !math.IsNaN(*l.Lat) && !math.IsNaN(*l.Lng)
}

// DistanceKm computes the great-circle distance between two coordinate
// pairs using the haversine formula.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// ZoneResolver maps coarse district labels to ordinal zone indexes.
type ZoneResolver struct {
	zones map[string]int
}

func NewZoneResolver(zones map[string]int) *ZoneResolver {
	if zones == nil {
		zones = map[string]int{}
	}
	return &ZoneResolver{zones: zones}
}

// ZoneIndex returns the ordinal index for a zone label. The second
// return value is false for unknown or empty labels.
func (r *ZoneResolver) ZoneIndex(text string) (int, bool) {
	if text == "" {
		return 0, false
	}
	idx, ok := r.zones[text]
	return idx, ok
}
