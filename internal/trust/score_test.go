package trust

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mutualaid-matching/internal/models"
)

func floatPtr(v float64) *float64 {
	return &v
}

// ==========================
// Sub-score Tests
// ==========================

func TestResponsibility(t *testing.T) {
	tests := []struct {
		name     string
		metrics  models.TrustMetrics
		expected float64
	}{
		{
			name:     "no transactions scores zero completion, not neutral",
			metrics:  models.TrustMetrics{},
			expected: 45, // 0*0.4 + 1*0.3 + 0.5*0.3 = 0.45
		},
		{
			name: "established member",
			metrics: models.TrustMetrics{
				TransactionCount: 20,
				CompletedCount:   18,
				DisputeCount:     1,
				AvgResponseTime:  floatPtr(6),
			},
			expected: 90.75, // 0.9*0.4 + 0.95*0.3 + 0.875*0.3
		},
		{
			name: "dispute penalty caps at half",
			metrics: models.TrustMetrics{
				TransactionCount: 10,
				CompletedCount:   10,
				DisputeCount:     9,
				AvgResponseTime:  floatPtr(0),
			},
			expected: 85, // 1*0.4 + 0.5*0.3 + 1*0.3
		},
		{
			name: "response time beyond baseline floors at zero",
			metrics: models.TrustMetrics{
				TransactionCount: 10,
				CompletedCount:   10,
				AvgResponseTime:  floatPtr(96),
			},
			expected: 70, // 1*0.4 + 1*0.3 + 0*0.3
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Responsibility(tt.metrics), 0.001)
		})
	}
}

func TestResponsibility_MonotonicInCompletions(t *testing.T) {
	base := models.TrustMetrics{TransactionCount: 10, CompletedCount: 0}
	previous := Responsibility(base)
	for completed := 1; completed <= 10; completed++ {
		base.CompletedCount = completed
		current := Responsibility(base)
		assert.GreaterOrEqual(t, current, previous, "completed=%d", completed)
		previous = current
	}
}

func TestConsistency(t *testing.T) {
	tests := []struct {
		name     string
		metrics  models.TrustMetrics
		expected float64
	}{
		{
			name:     "new user gets neutral defaults",
			metrics:  models.TrustMetrics{},
			expected: 40, // 0.5*0.5 + 0.5*0.3 + 0*0.2
		},
		{
			name: "balanced frequent helper",
			metrics: models.TrustMetrics{
				TransactionCount: 20,
				OnTimeRate:       floatPtr(0.9),
				HelpCount:        15,
				ReceiveCount:     12,
			},
			expected: 91.6667, // 0.9*0.5 + (1-3/27)*0.3 + 1*0.2
		},
		{
			name: "one-sided history zeroes the balance term",
			metrics: models.TrustMetrics{
				OnTimeRate: floatPtr(1),
				HelpCount:  10,
			},
			expected: 50, // 1*0.5 + 0*0.3 + 0*0.2
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Consistency(tt.metrics), 0.001)
		})
	}
}

func TestSafetyNet(t *testing.T) {
	tests := []struct {
		name     string
		metrics  models.TrustMetrics
		expected float64
	}{
		{
			name:     "empty metrics score zero",
			metrics:  models.TrustMetrics{},
			expected: 0,
		},
		{
			name: "specialist with documented cases",
			metrics: models.TrustMetrics{
				TransactionCount:          20,
				HelpCount:                 15,
				SpecializationCount:       2,
				AvgSpecializationScarcity: 7,
				CaseStudyCount:            4,
			},
			expected: 78.6667, // 0.7*0.4 + 0.8*0.3 + 1*0.2 + (2/3)*0.1
		},
		{
			name: "every term saturates",
			metrics: models.TrustMetrics{
				TransactionCount:          100,
				HelpCount:                 100,
				SpecializationCount:       10,
				AvgSpecializationScarcity: 10,
				CaseStudyCount:            50,
			},
			expected: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, SafetyNet(tt.metrics), 0.001)
		})
	}
}

// ==========================
// Composite Tests
// ==========================

func TestCompute_NewMemberScoresNearZero(t *testing.T) {
	// A user with decent behavioral ratios but zero recorded
	// transactions lands near zero overall.
	metrics := models.TrustMetrics{
		HelpCount:                 12,
		ReceiveCount:              5,
		AvgResponseTime:           floatPtr(12),
		OnTimeRate:                floatPtr(0.85),
		AvgSpecializationScarcity: 5,
	}

	score := Compute(metrics)

	assert.InDelta(t, 52.5, score.Responsibility, 0.001)
	assert.InDelta(t, 60.147, score.Consistency, 0.001)
	// Scarcity credit 40*(5/10) = 20 plus experience credit
	// 20*min((12+0)/20, 1) = 12; case and diversity terms are zero.
	assert.InDelta(t, 32, score.SafetyNet, 0.001)
	// 52.5 * 0.60147^2 * 32 / 10000.
	assert.InDelta(t, 0.0608, score.OverallScore, 0.001)
	assert.Equal(t, TierInitial, score.Tier)
}

func TestCompute_EstablishedMember(t *testing.T) {
	metrics := models.TrustMetrics{
		TransactionCount:          20,
		CompletedCount:            18,
		DisputeCount:              1,
		AvgResponseTime:           floatPtr(6),
		OnTimeRate:                floatPtr(0.9),
		HelpCount:                 15,
		ReceiveCount:              12,
		SpecializationCount:       2,
		AvgSpecializationScarcity: 7,
		CaseStudyCount:            4,
	}

	score := Compute(metrics)

	assert.InDelta(t, 90.75, score.Responsibility, 0.001)
	assert.InDelta(t, 91.6667, score.Consistency, 0.001)
	assert.InDelta(t, 78.6667, score.SafetyNet, 0.001)
	assert.InDelta(t, 0.5999, score.OverallScore, 0.001)
	assert.InDelta(t, 0.9, score.CompletionRate, 0.001)
	assert.InDelta(t, 0.05, score.DisputeRate, 0.001)
}

func TestCompute_ZeroConsistencyCapsOverallAtZero(t *testing.T) {
	// Responsibility and safety net are both strong here; the
	// multiplicative formula still zeroes the total.
	metrics := models.TrustMetrics{
		TransactionCount:          0,
		OnTimeRate:                floatPtr(0),
		HelpCount:                 10,
		ReceiveCount:              0,
		AvgSpecializationScarcity: 10,
		CaseStudyCount:            10,
		SpecializationCount:       5,
	}

	score := Compute(metrics)

	assert.Zero(t, score.Consistency)
	assert.Zero(t, score.OverallScore)
	assert.Positive(t, score.Responsibility)
	assert.Positive(t, score.SafetyNet)
}

func TestCompute_RangeInvariant(t *testing.T) {
	cases := map[string]models.TrustMetrics{
		"all zero": {},
		"all max": {
			TransactionCount:          1000,
			CompletedCount:            1000,
			AvgResponseTime:           floatPtr(0),
			OnTimeRate:                floatPtr(1),
			HelpCount:                 1000,
			ReceiveCount:              1000,
			SpecializationCount:       10,
			AvgSpecializationScarcity: 10,
			CaseStudyCount:            100,
		},
		"disputes exceed transactions": {
			TransactionCount: 5,
			CompletedCount:   5,
			DisputeCount:     50,
		},
	}

	for name, metrics := range cases {
		t.Run(name, func(t *testing.T) {
			score := Compute(metrics)
			for label, v := range map[string]float64{
				"responsibility": score.Responsibility,
				"consistency":    score.Consistency,
				"safetyNet":      score.SafetyNet,
				"overall":        score.OverallScore,
			} {
				assert.GreaterOrEqual(t, v, 0.0, label)
				assert.LessOrEqual(t, v, 100.0, label)
			}
		})
	}
}

func TestCompute_Deterministic(t *testing.T) {
	metrics := models.TrustMetrics{
		TransactionCount: 7,
		CompletedCount:   6,
		HelpCount:        3,
		ReceiveCount:     4,
		OnTimeRate:       floatPtr(0.75),
	}

	first := Compute(metrics)
	second := Compute(metrics)

	assert.Equal(t, first.Responsibility, second.Responsibility)
	assert.Equal(t, first.Consistency, second.Consistency)
	assert.Equal(t, first.SafetyNet, second.SafetyNet)
	assert.Equal(t, first.OverallScore, second.OverallScore)
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		score float64
		tier  string
	}{
		{95, TierExceptional},
		{80, TierExceptional},
		{79.99, TierExcellent},
		{60, TierExcellent},
		{40, TierGood},
		{20, TierBasic},
		{19.99, TierInitial},
		{0, TierInitial},
	}

	for _, tt := range tests {
		tier, description := TierFor(tt.score)
		assert.Equal(t, tt.tier, tier, "score %v", tt.score)
		assert.NotEmpty(t, description)
	}
}
