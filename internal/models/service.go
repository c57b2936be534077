package models

import "time"

type ServiceStatus string

const (
	ServiceStatusActive    ServiceStatus = "active"
	ServiceStatusPaused    ServiceStatus = "paused"
	ServiceStatusCompleted ServiceStatus = "completed"
)

// Service is an offer of help posted by a user. Only active services
// participate in recommendation.
type Service struct {
	ID               string        `json:"id"`
	UserID           string        `json:"userId"`
	Title            string        `json:"title"`
	SpecializationID *string       `json:"specializationId,omitempty"`
	AvailableFrom    *time.Time    `json:"availableFrom,omitempty"`
	AvailableTo      *time.Time    `json:"availableTo,omitempty"`
	Tags             []string      `json:"tags,omitempty"`
	LocationText     string        `json:"locationText,omitempty"`
	LocationLat      *float64      `json:"locationLat,omitempty"`
	LocationLng      *float64      `json:"locationLng,omitempty"`
	Status           ServiceStatus `json:"status"`
	CreatedAt        time.Time     `json:"createdAt"`
}
