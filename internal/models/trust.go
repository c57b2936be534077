package models

import "time"

// TrustMetrics is the raw behavior snapshot a trust score is computed
// from. Optional fields are nil when the platform has no data yet; the
// engine substitutes documented defaults instead of failing.
type TrustMetrics struct {
	TransactionCount int      `json:"transactionCount"`
	CompletedCount   int      `json:"completedCount"`
	DisputeCount     int      `json:"disputeCount"`
	AvgResponseTime  *float64 `json:"avgResponseTime,omitempty"` // hours
	OnTimeRate       *float64 `json:"onTimeRate,omitempty"`      // 0-1
	HelpCount        int      `json:"helpCount"`
	ReceiveCount     int      `json:"receiveCount"`

	SpecializationCount       int     `json:"specializationCount"`
	AvgSpecializationScarcity float64 `json:"avgSpecializationScarcity"` // 0-10
	CaseStudyCount            int     `json:"caseStudyCount"`
}

// TrustScore is the one-per-user derived snapshot. It is created and
// mutated only by the trust engine.
type TrustScore struct {
	UserID string `json:"userId"`

	Responsibility float64 `json:"responsibility"` // 0-100
	Consistency    float64 `json:"consistency"`    // 0-100
	SafetyNet      float64 `json:"safetyNet"`      // 0-100
	OverallScore   float64 `json:"overallScore"`   // 0-100

	CompletionRate float64 `json:"completionRate"`
	DisputeRate    float64 `json:"disputeRate"`
	ResponseScore  float64 `json:"responseScore"`

	Tier            string `json:"tier"`
	TierDescription string `json:"tierDescription"`

	Metrics    TrustMetrics `json:"metrics"`
	ComputedAt time.Time    `json:"computedAt"`
}
