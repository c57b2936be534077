package trust

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mutualaid-matching/internal/common/config"
	"mutualaid-matching/internal/common/logger"
	"mutualaid-matching/internal/models"
)

// Cache failure modes exercised against a scripted Redis client. A
// broken cache must degrade reads to the store, never fail them.

func setupEngineWithMockCache(t *testing.T) (*Engine, *stubStore, redismock.ClientMock) {
	t.Helper()

	cache, mock := redismock.NewClientMock()
	recordStore := newStubStore()
	cfg := config.TrustConfig{
		CacheTTL:           300000,
		HighTrustThreshold: 70,
		DefaultScarcity:    5,
	}

	return NewEngine(recordStore, cache, cfg, logger.NewNoOpLogger()), recordStore, mock
}

func TestGetTrustScore_CacheReadErrorFallsThrough(t *testing.T) {
	engine, recordStore, mock := setupEngineWithMockCache(t)

	recordStore.snapshots["user-1"] = &models.TrustScore{
		UserID:       "user-1",
		OverallScore: 61,
	}

	mock.ExpectGet("trust:score:user-1").SetErr(errors.New("connection refused"))
	mock.Regexp().ExpectSet("trust:score:user-1", `.*`, engine.cacheTTL).
		SetErr(errors.New("connection refused"))

	snapshot, err := engine.GetTrustScore(context.Background(), "user-1")
	require.NoError(t, err)
	assert.InDelta(t, 61, snapshot.OverallScore, 0.001)
}

func TestGetTrustScore_CorruptCacheEntryIsIgnored(t *testing.T) {
	engine, recordStore, mock := setupEngineWithMockCache(t)

	recordStore.snapshots["user-1"] = &models.TrustScore{
		UserID:       "user-1",
		OverallScore: 61,
	}

	mock.ExpectGet("trust:score:user-1").SetVal("{not json")
	mock.Regexp().ExpectSet("trust:score:user-1", `.*`, engine.cacheTTL).SetVal("OK")

	snapshot, err := engine.GetTrustScore(context.Background(), "user-1")
	require.NoError(t, err)
	assert.InDelta(t, 61, snapshot.OverallScore, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}
