// Package matching computes trust-weighted multi-factor match scores
// between demands and services and ranks candidate pools.
package matching

import (
	"math"
	"strings"
	"time"

	"mutualaid-matching/internal/geo"
	"mutualaid-matching/internal/models"
)

// neutralScore is returned when a dimension has no data to judge:
// absence of data must neither eliminate a candidate nor guarantee a
// match.
const neutralScore = 50

// DistanceScore converts two location references into a proximity
// score, 0-100. Coordinates get haversine distance with a hard cutoff
// at maxDistanceKm; zone labels fall back to an ordinal-index proxy.
func DistanceScore(a, b geo.Location, zones *geo.ZoneResolver, maxDistanceKm float64, maxZoneDistance int) float64 {
	if a.HasCoordinates() && b.HasCoordinates() {
		distance := geo.DistanceKm(*a.Lat, *a.Lng, *b.Lat, *b.Lng)
		if distance > maxDistanceKm {
			// Hard cutoff keeps results locally relevant.
			return 0
		}
		return 100 * (1 - distance/maxDistanceKm)
	}

	zoneA, okA := zones.ZoneIndex(a.Text)
	zoneB, okB := zones.ZoneIndex(b.Text)
	if !okA || !okB {
		return neutralScore
	}

	zoneDistance := float64(zoneA - zoneB)
	if zoneDistance < 0 {
		zoneDistance = -zoneDistance
	}
	return math.Max(0, 1-zoneDistance/float64(maxZoneDistance)) * 100
}

// SpecializationScore grades the overlap of two specializations:
// identical id 100, same category and subcategory 80, same category
// 60, otherwise 0. Either side missing scores 0.
func SpecializationScore(demandSpec, serviceSpec *models.Specialization) float64 {
	if demandSpec == nil || serviceSpec == nil {
		return 0
	}
	if demandSpec.ID == serviceSpec.ID {
		return 100
	}
	if demandSpec.Category == serviceSpec.Category {
		if demandSpec.Subcategory == serviceSpec.Subcategory {
			return 80
		}
		return 60
	}
	return 0
}

// TagOverlapScore computes the fraction of the requester's tags that
// have a case-insensitive substring match against the counterpart's
// tags. Tags are free text, so bidirectional containment counts
// near-synonyms as matches.
func TagOverlapScore(requesterTags, counterpartTags []string) float64 {
	if len(requesterTags) == 0 || len(counterpartTags) == 0 {
		return 0
	}

	matched := 0
	for _, tag := range requesterTags {
		lowered := strings.ToLower(tag)
		for _, other := range counterpartTags {
			otherLowered := strings.ToLower(other)
			if strings.Contains(otherLowered, lowered) || strings.Contains(lowered, otherLowered) {
				matched++
				break
			}
		}
	}

	return float64(matched) / float64(len(requesterTags)) * 100
}

// TimeWindowScore grades how well a demand deadline fits a service
// availability window. Missing data on either side is neutral; outside
// the window, the score decays with proximity in days.
func TimeWindowScore(deadline, availableFrom, availableTo *time.Time) float64 {
	if deadline == nil || availableFrom == nil || availableTo == nil {
		return neutralScore
	}

	if !deadline.Before(*availableFrom) && !deadline.After(*availableTo) {
		return 100
	}

	daysDiff := math.Abs(deadline.Sub(*availableFrom).Hours()) / 24
	switch {
	case daysDiff <= 7:
		return 80
	case daysDiff <= 14:
		return 60
	default:
		return 20
	}
}

// UrgencyScore maps the 1-5 urgency level onto 0-100. Out-of-range
// values fall back to the platform default.
func UrgencyScore(urgency int) float64 {
	if urgency < 1 || urgency > 5 {
		urgency = models.DefaultUrgency
	}
	return float64(urgency) / 5 * 100
}
