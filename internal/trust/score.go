// Package trust computes the Navalian trust score: responsibility
// times consistency squared times safety net. The formula is
// multiplicative so a weakness in any dimension caps the total, and
// erratic behavior is punished quadratically.
package trust

import (
	"math"
	"time"

	"mutualaid-matching/internal/models"
)

// Trust tiers, inclusive on the lower bound. Tiers are for display and
// benefits only; the matching math uses the raw score.
const (
	TierExceptional = "exceptional"
	TierExcellent   = "excellent"
	TierGood        = "good"
	TierBasic       = "basic"
	TierInitial     = "initial"
)

const (
	// responseTimeBaselineHours is the response time that scores zero.
	responseTimeBaselineHours = 48

	// Documented neutral defaults for missing optional metrics.
	defaultResponseScore = 0.5
	defaultOnTimeScore   = 0.5
	defaultBalanceScore  = 0.5
)

// Responsibility scores completion rate, dispute rate and response
// speed, 0-100. Users with no transactions score a zero completion
// rate, not a neutral one.
func Responsibility(m models.TrustMetrics) float64 {
	completionRate := 0.0
	disputeRate := 0.0
	if m.TransactionCount > 0 {
		completionRate = float64(m.CompletedCount) / float64(m.TransactionCount)
		disputeRate = float64(m.DisputeCount) / float64(m.TransactionCount)
	}

	// Dispute penalty caps at 50%.
	disputePenalty := 1 - math.Min(disputeRate, 0.5)

	responseScore := ResponseScore(m)

	return (completionRate*0.4 + disputePenalty*0.3 + responseScore*0.3) * 100
}

// ResponseScore normalizes average response time against the 48 hour
// baseline, defaulting to 0.5 when unknown.
func ResponseScore(m models.TrustMetrics) float64 {
	if m.AvgResponseTime == nil {
		return defaultResponseScore
	}
	return math.Max(0, 1-*m.AvgResponseTime/responseTimeBaselineHours)
}

// Consistency scores on-time rate, help/receive balance and transaction
// frequency, 0-100.
func Consistency(m models.TrustMetrics) float64 {
	onTimeScore := defaultOnTimeScore
	if m.OnTimeRate != nil {
		onTimeScore = *m.OnTimeRate
	}

	// A user with no interactions is perfectly balanced by definition
	// of having no data.
	balanceScore := defaultBalanceScore
	totalInteractions := m.HelpCount + m.ReceiveCount
	if totalInteractions > 0 {
		balanceScore = 1 - math.Abs(float64(m.HelpCount-m.ReceiveCount))/float64(totalInteractions)
	}

	// Ten transactions reach full frequency credit.
	frequencyScore := math.Min(float64(m.TransactionCount)/10, 1)

	return (onTimeScore*0.5 + balanceScore*0.3 + frequencyScore*0.2) * 100
}

// SafetyNet scores specialization scarcity, documented cases,
// experience depth and specialization diversity, 0-100.
func SafetyNet(m models.TrustMetrics) float64 {
	scarcityScore := math.Min(m.AvgSpecializationScarcity/10, 1)
	caseScore := math.Min(float64(m.CaseStudyCount)/5, 1)
	experienceScore := math.Min(float64(m.HelpCount+m.TransactionCount)/20, 1)
	diversityScore := math.Min(float64(m.SpecializationCount)/3, 1)

	return (scarcityScore*0.4 + caseScore*0.3 + experienceScore*0.2 + diversityScore*0.1) * 100
}

// Composite combines the three sub-scores multiplicatively:
// responsibility x (consistency/100)^2 x safetyNet / 10000.
func Composite(responsibility, consistency, safetyNet float64) float64 {
	normalizedConsistency := consistency / 100
	return responsibility * normalizedConsistency * normalizedConsistency * safetyNet / 10000
}

// TierFor classifies an overall score into a trust tier.
func TierFor(score float64) (tier, description string) {
	switch {
	case score >= 80:
		return TierExceptional, "highly reliable partner"
	case score >= 60:
		return TierExcellent, "trusted community member"
	case score >= 40:
		return TierGood, "reliable community participant"
	case score >= 20:
		return TierBasic, "member building trust"
	default:
		return TierInitial, "new community member"
	}
}

// Compute derives a full trust snapshot from a metrics snapshot. It is
// deterministic: identical metrics always produce identical scores.
func Compute(m models.TrustMetrics) models.TrustScore {
	responsibility := Responsibility(m)
	consistency := Consistency(m)
	safetyNet := SafetyNet(m)
	overall := Composite(responsibility, consistency, safetyNet)

	completionRate := 0.0
	disputeRate := 0.0
	if m.TransactionCount > 0 {
		completionRate = float64(m.CompletedCount) / float64(m.TransactionCount)
		disputeRate = float64(m.DisputeCount) / float64(m.TransactionCount)
	}

	tier, description := TierFor(overall)

	return models.TrustScore{
		Responsibility:  responsibility,
		Consistency:     consistency,
		SafetyNet:       safetyNet,
		OverallScore:    overall,
		CompletionRate:  completionRate,
		DisputeRate:     disputeRate,
		ResponseScore:   ResponseScore(m),
		Tier:            tier,
		TierDescription: description,
		Metrics:         m,
		ComputedAt:      time.Now().UTC(),
	}
}
