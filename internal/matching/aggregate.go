package matching

import (
	"math"

	"mutualaid-matching/internal/common/config"
	"mutualaid-matching/internal/models"
)

// Reason strings surfaced to callers. Independent threshold rules per
// dimension; callers never receive an empty explanation.
const (
	ReasonSpecialization = "specialization highly matched"
	ReasonNearby         = "nearby"
	ReasonTrust          = "excellent trust rating"
	ReasonTimeWindow     = "time window fits"
	ReasonUrgent         = "urgent need"
	ReasonCooperation    = "prior cooperation"
	ReasonSkillsStrong   = "skills highly matched"
	ReasonSkills         = "skills matched"
	ReasonGoodTrust      = "good trust rating"
	ReasonBaseline       = "baseline match"
)

// Aggregate combines the per-dimension sub-scores via the configured
// weights into a single 0-100 score with threshold-based reasons.
// Deterministic: identical inputs produce identical output.
func Aggregate(details models.MatchDetails, w config.MatchWeights) (int, []string) {
	total := details.Specialization*w.Specialization +
		details.Location*w.Location +
		details.Trust*w.Trust +
		details.Time*w.Time +
		details.Urgency*w.Urgency +
		details.History*w.History

	score := clampScore(total)

	var reasons []string
	if details.Specialization > 80 {
		reasons = append(reasons, ReasonSpecialization)
	}
	if details.Location > 80 {
		reasons = append(reasons, ReasonNearby)
	}
	if details.Trust > 80 {
		reasons = append(reasons, ReasonTrust)
	}
	if details.Time > 80 {
		reasons = append(reasons, ReasonTimeWindow)
	}
	if details.Urgency > 80 {
		reasons = append(reasons, ReasonUrgent)
	}
	if details.History > 60 {
		reasons = append(reasons, ReasonCooperation)
	}
	if len(reasons) == 0 {
		reasons = []string{ReasonBaseline}
	}

	return score, reasons
}

// AggregatePair combines the simpler user-to-user profile, used when
// no specialization or time dimensions are available.
func AggregatePair(details models.PairDetails, w config.PairWeights) (int, []string) {
	total := details.Trust*w.Trust +
		details.Distance*w.Distance +
		details.Tag*w.Tag +
		details.Urgency*w.Urgency

	score := clampScore(total)

	var reasons []string
	switch {
	case details.Trust > 80:
		reasons = append(reasons, ReasonTrust)
	case details.Trust > 60:
		reasons = append(reasons, ReasonGoodTrust)
	}
	if details.Distance > 80 {
		reasons = append(reasons, ReasonNearby)
	}
	switch {
	case details.Tag > 80:
		reasons = append(reasons, ReasonSkillsStrong)
	case details.Tag > 60:
		reasons = append(reasons, ReasonSkills)
	}
	if details.Urgency > 80 {
		reasons = append(reasons, ReasonUrgent)
	}
	if len(reasons) == 0 {
		reasons = []string{ReasonBaseline}
	}

	return score, reasons
}

func clampScore(total float64) int {
	score := int(math.Round(total))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
