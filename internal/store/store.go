// Package store is the engine's view of the platform record store. The
// CRUD layer owns entity lifecycles; the engine only reads them, except
// for trust snapshots and match audit records which it writes.
package store

import (
	"context"
	"errors"

	"mutualaid-matching/internal/models"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// RecordStore is the external collaborator contract consumed by the
// trust engine and the matching engine.
type RecordStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetDemand(ctx context.Context, id string) (*models.Demand, error)
	GetService(ctx context.Context, id string) (*models.Service, error)
	GetSpecialization(ctx context.Context, id string) (*models.Specialization, error)

	ListActiveDemands(ctx context.Context) ([]models.Demand, error)
	ListActiveServices(ctx context.Context) ([]models.Service, error)

	// GetUserMetrics aggregates the stored counters a trust score is
	// computed from, including specialization count and average scarcity.
	GetUserMetrics(ctx context.Context, userID string) (*models.TrustMetrics, error)

	GetTrustScore(ctx context.Context, userID string) (*models.TrustScore, error)
	// UpsertTrustScore atomically creates or replaces a user's snapshot.
	UpsertTrustScore(ctx context.Context, score *models.TrustScore) error
	ListHighTrustUsers(ctx context.Context, threshold float64, limit int) ([]models.HighTrustUser, error)

	CountCompletedMatchesBetween(ctx context.Context, userA, userB string) (int, error)
	CountConversationsBetween(ctx context.Context, userA, userB string) (int, error)
	CreateMatchRecord(ctx context.Context, result *models.MatchResult) error
}
