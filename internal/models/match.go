package models

import "time"

type MatchStatus string

const (
	MatchStatusProposed  MatchStatus = "proposed"
	MatchStatusAccepted  MatchStatus = "accepted"
	MatchStatusCompleted MatchStatus = "completed"
	MatchStatusCancelled MatchStatus = "cancelled"
)

// MatchDetails holds the per-dimension sub-scores that went into a
// match score, each 0-100.
type MatchDetails struct {
	Specialization float64 `json:"specialization"`
	Location       float64 `json:"location"`
	Trust          float64 `json:"trust"`
	Time           float64 `json:"time"`
	Urgency        float64 `json:"urgency"`
	History        float64 `json:"history"`
}

// MatchResult is the outcome of scoring one demand-service pair. It is
// immutable once produced; a changed input requires recomputation.
type MatchResult struct {
	ID        string       `json:"id,omitempty"`
	DemandID  string       `json:"demandId"`
	ServiceID string       `json:"serviceId"`
	Score     int          `json:"score"` // 0-100
	Reasons   []string     `json:"reasons"`
	Details   MatchDetails `json:"details"`
	CreatedAt time.Time    `json:"createdAt"`
}

// Recommendation pairs a ranked candidate with its match result.
type Recommendation struct {
	CandidateID string      `json:"candidateId"`
	OwnerID     string      `json:"ownerId"`
	Match       MatchResult `json:"match"`
}

// PairDetails holds the sub-scores of the simpler user-to-user profile.
type PairDetails struct {
	Trust    float64 `json:"trust"`
	Distance float64 `json:"distance"`
	Tag      float64 `json:"tag"`
	Urgency  float64 `json:"urgency"`
}

// PairResult is the outcome of scoring two users directly.
type PairResult struct {
	UserAID string      `json:"userAId"`
	UserBID string      `json:"userBId"`
	Score   int         `json:"score"`
	Reasons []string    `json:"reasons"`
	Details PairDetails `json:"details"`
}
