package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mutualaid-matching/internal/common/config"
	"mutualaid-matching/internal/models"
)

func canonicalWeights() config.MatchWeights {
	return config.MatchWeights{
		Specialization: 0.35,
		Location:       0.25,
		Trust:          0.20,
		Time:           0.10,
		Urgency:        0.05,
		History:        0.05,
	}
}

func pairWeights() config.PairWeights {
	return config.PairWeights{
		Trust:    0.4,
		Distance: 0.3,
		Tag:      0.2,
		Urgency:  0.1,
	}
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name            string
		details         models.MatchDetails
		expectedScore   int
		expectedReasons []string
	}{
		{
			name: "strong all-around match",
			details: models.MatchDetails{
				Specialization: 100,
				Location:       92,
				Trust:          85,
				Time:           100,
				Urgency:        100,
				History:        80,
			},
			expectedScore: 94, // 35 + 23 + 17 + 10 + 5 + 4
			expectedReasons: []string{
				ReasonSpecialization, ReasonNearby, ReasonTrust,
				ReasonTimeWindow, ReasonUrgent, ReasonCooperation,
			},
		},
		{
			name: "mediocre match falls back to baseline reason",
			details: models.MatchDetails{
				Specialization: 60,
				Location:       50,
				Trust:          40,
				Time:           50,
				Urgency:        60,
				History:        30,
			},
			expectedScore:   51, // 21 + 12.5 + 8 + 5 + 3 + 1.5
			expectedReasons: []string{ReasonBaseline},
		},
		{
			name:            "all zeroes",
			details:         models.MatchDetails{},
			expectedScore:   0,
			expectedReasons: []string{ReasonBaseline},
		},
		{
			name: "all max clamps at one hundred",
			details: models.MatchDetails{
				Specialization: 100, Location: 100, Trust: 100,
				Time: 100, Urgency: 100, History: 100,
			},
			expectedScore: 100,
			expectedReasons: []string{
				ReasonSpecialization, ReasonNearby, ReasonTrust,
				ReasonTimeWindow, ReasonUrgent, ReasonCooperation,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, reasons := Aggregate(tt.details, canonicalWeights())
			assert.Equal(t, tt.expectedScore, score)
			assert.Equal(t, tt.expectedReasons, reasons)
		})
	}
}

func TestAggregate_ReasonsNeverEmpty(t *testing.T) {
	_, reasons := Aggregate(models.MatchDetails{}, canonicalWeights())
	assert.NotEmpty(t, reasons)
}

func TestAggregate_ThresholdIsExclusive(t *testing.T) {
	// Exactly 80 on a dimension does not yet earn its reason.
	details := models.MatchDetails{
		Specialization: 80, Location: 80, Trust: 80,
		Time: 80, Urgency: 80, History: 60,
	}
	_, reasons := Aggregate(details, canonicalWeights())
	assert.Equal(t, []string{ReasonBaseline}, reasons)
}

func TestAggregate_Deterministic(t *testing.T) {
	details := models.MatchDetails{
		Specialization: 73, Location: 42, Trust: 61,
		Time: 88, Urgency: 20, History: 30,
	}
	scoreA, reasonsA := Aggregate(details, canonicalWeights())
	scoreB, reasonsB := Aggregate(details, canonicalWeights())
	assert.Equal(t, scoreA, scoreB)
	assert.Equal(t, reasonsA, reasonsB)
}

func TestAggregatePair(t *testing.T) {
	tests := []struct {
		name            string
		details         models.PairDetails
		expectedScore   int
		expectedReasons []string
	}{
		{
			name: "trusted nearby skill match",
			details: models.PairDetails{
				Trust:    90,
				Distance: 90,
				Tag:      100,
				Urgency:  60,
			},
			expectedScore:   89, // 36 + 27 + 20 + 6
			expectedReasons: []string{ReasonTrust, ReasonNearby, ReasonSkillsStrong},
		},
		{
			name: "moderate trust and skills use the softer reasons",
			details: models.PairDetails{
				Trust:    70,
				Distance: 50,
				Tag:      75,
				Urgency:  60,
			},
			expectedScore:   64, // 28 + 15 + 15 + 6 = 64
			expectedReasons: []string{ReasonGoodTrust, ReasonSkills},
		},
		{
			name:            "nothing stands out",
			details:         models.PairDetails{Trust: 30, Distance: 50, Tag: 0, Urgency: 60},
			expectedScore:   33, // 12 + 15 + 0 + 6 = 33
			expectedReasons: []string{ReasonBaseline},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, reasons := AggregatePair(tt.details, pairWeights())
			assert.Equal(t, tt.expectedScore, score)
			assert.Equal(t, tt.expectedReasons, reasons)
		})
	}
}
