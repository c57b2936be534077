package trust

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"mutualaid-matching/internal/common/config"
	commonerrors "mutualaid-matching/internal/common/errors"
	"mutualaid-matching/internal/common/logger"
	"mutualaid-matching/internal/common/metrics"
	"mutualaid-matching/internal/models"
	"mutualaid-matching/internal/store"
)

const cacheKeyPrefix = "trust:score:"

// Engine computes and caches per-user trust snapshots. Reads follow a
// cache-aside pattern: Redis first, then the stored snapshot, then a
// fresh computation persisted via an atomic upsert.
type Engine struct {
	store           store.RecordStore
	cache           *redis.Client
	cacheTTL        time.Duration
	defaultScarcity float64
	highThreshold   float64
	logger          logger.Logger
}

func NewEngine(recordStore store.RecordStore, cache *redis.Client, cfg config.TrustConfig, log logger.Logger) *Engine {
	return &Engine{
		store:           recordStore,
		cache:           cache,
		cacheTTL:        config.GetDuration(cfg.CacheTTL),
		defaultScarcity: cfg.DefaultScarcity,
		highThreshold:   cfg.HighTrustThreshold,
		logger:          log.WithFields(map[string]interface{}{"component": "trust-engine"}),
	}
}

// GetTrustScore returns the user's trust snapshot, computing it lazily
// when no snapshot exists yet.
func (e *Engine) GetTrustScore(ctx context.Context, userID string) (*models.TrustScore, error) {
	if cached := e.cacheGet(ctx, userID); cached != nil {
		metrics.TrustCacheHits.WithLabelValues("hit").Inc()
		return cached, nil
	}
	metrics.TrustCacheHits.WithLabelValues("miss").Inc()

	snapshot, err := e.store.GetTrustScore(ctx, userID)
	if err == nil {
		e.cacheSet(ctx, snapshot)
		return snapshot, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, commonerrors.NewStoreQueryFailedError("trustScore", err)
	}

	return e.ComputeTrustScore(ctx, userID, nil)
}

// ComputeTrustScore recomputes a user's trust snapshot from stored
// counters, or from the supplied metrics override, persists it and
// refreshes the cache. Recomputing with identical metrics yields an
// identical score.
func (e *Engine) ComputeTrustScore(ctx context.Context, userID string, override *models.TrustMetrics) (*models.TrustScore, error) {
	var m models.TrustMetrics
	if override != nil {
		if _, err := e.store.GetUser(ctx, userID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, commonerrors.NewEntityNotFoundError("user", userID)
			}
			return nil, commonerrors.NewStoreQueryFailedError("user", err)
		}
		m = *override
	} else {
		stored, err := e.store.GetUserMetrics(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, commonerrors.NewEntityNotFoundError("user", userID)
			}
			return nil, commonerrors.NewStoreQueryFailedError("userMetrics", err)
		}
		m = *stored
	}

	// Users without specializations still get safety-net credit at the
	// neutral scarcity default.
	if m.SpecializationCount == 0 && m.AvgSpecializationScarcity == 0 {
		m.AvgSpecializationScarcity = e.defaultScarcity
		e.logger.Debug("no specializations recorded, using default scarcity", map[string]interface{}{
			"userId":          userID,
			"defaultScarcity": e.defaultScarcity,
		})
	}

	snapshot := Compute(m)
	snapshot.UserID = userID

	if err := e.store.UpsertTrustScore(ctx, &snapshot); err != nil {
		return nil, commonerrors.NewStoreQueryFailedError("trustScore", err)
	}
	e.cacheSet(ctx, &snapshot)
	metrics.TrustScoresComputed.Inc()

	e.logger.Info("trust score computed", map[string]interface{}{
		"userId":       userID,
		"overallScore": snapshot.OverallScore,
		"tier":         snapshot.Tier,
	})

	return &snapshot, nil
}

// HighTrustUsers lists users with overall trust at or above the
// configured threshold, sorted descending.
func (e *Engine) HighTrustUsers(ctx context.Context, limit int) ([]models.HighTrustUser, error) {
	users, err := e.store.ListHighTrustUsers(ctx, e.highThreshold, limit)
	if err != nil {
		return nil, commonerrors.NewStoreQueryFailedError("highTrustUsers", err)
	}
	return users, nil
}

// cacheGet returns nil on any cache miss or failure; a down cache only
// degrades to a store read.
func (e *Engine) cacheGet(ctx context.Context, userID string) *models.TrustScore {
	if e.cache == nil {
		return nil
	}
	val, err := e.cache.Get(ctx, cacheKeyPrefix+userID).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			e.logger.Warn("trust cache read failed", map[string]interface{}{
				"userId": userID,
				"error":  err.Error(),
			})
		}
		return nil
	}
	var snapshot models.TrustScore
	if err := json.Unmarshal([]byte(val), &snapshot); err != nil {
		return nil
	}
	return &snapshot
}

func (e *Engine) cacheSet(ctx context.Context, snapshot *models.TrustScore) {
	if e.cache == nil {
		return
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	if err := e.cache.Set(ctx, cacheKeyPrefix+snapshot.UserID, data, e.cacheTTL).Err(); err != nil {
		e.logger.Warn("trust cache write failed", map[string]interface{}{
			"userId": snapshot.UserID,
			"error":  err.Error(),
		})
	}
}
