package models

import "time"

type DemandStatus string

const (
	DemandStatusActive    DemandStatus = "active"
	DemandStatusPending   DemandStatus = "pending"
	DemandStatusCompleted DemandStatus = "completed"
	DemandStatusCancelled DemandStatus = "cancelled"
)

// DefaultUrgency applies when a demand was created without an explicit
// urgency level.
const DefaultUrgency = 3

// Demand is a request for help posted by a user. Only active demands
// participate in recommendation.
type Demand struct {
	ID               string       `json:"id"`
	UserID           string       `json:"userId"`
	Title            string       `json:"title"`
	Urgency          int          `json:"urgency"` // 1-5
	SpecializationID *string      `json:"specializationId,omitempty"`
	Deadline         *time.Time   `json:"deadline,omitempty"`
	Tags             []string     `json:"tags,omitempty"`
	LocationText     string       `json:"locationText,omitempty"`
	LocationLat      *float64     `json:"locationLat,omitempty"`
	LocationLng      *float64     `json:"locationLng,omitempty"`
	Status           DemandStatus `json:"status"`
	CreatedAt        time.Time    `json:"createdAt"`
}
