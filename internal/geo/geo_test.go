package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestHasCoordinates(t *testing.T) {
	tests := []struct {
		name     string
		loc      Location
		expected bool
	}{
		{"both coordinates set", Location{Lat: floatPtr(31.2), Lng: floatPtr(121.5)}, true},
		{"latitude missing", Location{Lng: floatPtr(121.5)}, false},
		{"longitude missing", Location{Lat: floatPtr(31.2)}, false},
		{"text only", Location{Text: "downtown"}, false},
		{"NaN latitude is unresolved", Location{Lat: floatPtr(math.NaN()), Lng: floatPtr(121.5)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.loc.HasCoordinates())
		})
	}
}

func TestDistanceKm(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		expected               float64
		delta                  float64
	}{
		{"same point", 31.2304, 121.4737, 31.2304, 121.4737, 0, 0.001},
		{"shanghai to beijing", 31.2304, 121.4737, 39.9042, 116.4074, 1067, 10},
		{"one degree of latitude", 0, 0, 1, 0, 111.19, 0.5},
		{"across the antimeridian", 0, 179.5, 0, -179.5, 111.19, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceKm(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			assert.InDelta(t, tt.expected, got, tt.delta)
		})
	}
}

func TestDistanceKm_Symmetric(t *testing.T) {
	a := DistanceKm(31.2304, 121.4737, 39.9042, 116.4074)
	b := DistanceKm(39.9042, 116.4074, 31.2304, 121.4737)
	assert.InDelta(t, a, b, 0.0001)
}

func TestZoneResolver(t *testing.T) {
	resolver := NewZoneResolver(map[string]int{"downtown": 0, "riverside": 1})

	idx, ok := resolver.ZoneIndex("downtown")
	assert.True(t, ok)
	assert.Equal(t, 0, idx)

	_, ok = resolver.ZoneIndex("atlantis")
	assert.False(t, ok)

	_, ok = resolver.ZoneIndex("")
	assert.False(t, ok)
}

func TestZoneResolver_NilTable(t *testing.T) {
	resolver := NewZoneResolver(nil)
	_, ok := resolver.ZoneIndex("downtown")
	assert.False(t, ok)
}
