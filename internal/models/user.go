package models

import "time"

// User is the engine's read-only view of a platform member. Profile
// editing and auth live in the surrounding CRUD layer.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	LocationText string    `json:"locationText,omitempty"`
	LocationLat  *float64  `json:"locationLat,omitempty"`
	LocationLng  *float64  `json:"locationLng,omitempty"`
	Skills       []string  `json:"skills,omitempty"`
	HelpCount    int       `json:"helpCount"`
	ReceiveCount int       `json:"receiveCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Specialization is a skill a user offers, with a scarcity rating
// (0-10) describing how rare it is on the platform.
type Specialization struct {
	ID            string  `json:"id"`
	Category      string  `json:"category"`
	Subcategory   string  `json:"subcategory"`
	ScarcityScore float64 `json:"scarcityScore"`
}

// HighTrustUser pairs a user with their overall trust score for the
// high-trust listing.
type HighTrustUser struct {
	User       User    `json:"user"`
	TrustScore float64 `json:"trustScore"`
}
