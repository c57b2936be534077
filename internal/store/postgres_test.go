package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mutualaid-matching/internal/models"
)

func setupStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(db), mock
}

func TestGetUser(t *testing.T) {
	s, mock := setupStore(t)

	createdAt := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "name", "location_text", "location_lat", "location_lng",
		"skills", "help_count", "receive_count", "created_at",
	}).AddRow("u1", "Ada", "downtown", 31.23, 121.47, pq.Array([]string{"plumbing"}), 4, 2, createdAt)

	mock.ExpectQuery("SELECT id, name, COALESCE").
		WithArgs("u1").
		WillReturnRows(rows)

	u, err := s.GetUser(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "downtown", u.LocationText)
	require.NotNil(t, u.LocationLat)
	assert.InDelta(t, 31.23, *u.LocationLat, 0.001)
	assert.Equal(t, []string{"plumbing"}, u.Skills)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUser_NotFound(t *testing.T) {
	s, mock := setupStore(t)

	mock.ExpectQuery("SELECT id, name, COALESCE").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetUser(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetDemand_DefaultsUrgency(t *testing.T) {
	s, mock := setupStore(t)

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "title", "urgency", "specialization_id", "deadline",
		"tags", "location_text", "location_lat", "location_lng", "status", "created_at",
	}).AddRow("d1", "u1", "fix sink", 0, nil, nil, pq.Array([]string{}), "downtown", nil, nil, "active", time.Now())

	mock.ExpectQuery("SELECT id, user_id, title, urgency").
		WithArgs("d1").
		WillReturnRows(rows)

	d, err := s.GetDemand(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultUrgency, d.Urgency)
}

func TestListActiveServices(t *testing.T) {
	s, mock := setupStore(t)

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "title", "specialization_id", "available_from", "available_to",
		"tags", "location_text", "location_lat", "location_lng", "status", "created_at",
	}).
		AddRow("s1", "u1", "plumbing help", nil, nil, nil, pq.Array([]string{"plumbing"}), "downtown", nil, nil, "active", time.Now()).
		AddRow("s2", "u2", "gardening", nil, nil, nil, pq.Array([]string{}), "riverside", nil, nil, "active", time.Now())

	mock.ExpectQuery("FROM services WHERE status").
		WithArgs(models.ServiceStatusActive).
		WillReturnRows(rows)

	services, err := s.ListActiveServices(context.Background())
	require.NoError(t, err)
	require.Len(t, services, 2)
	assert.Equal(t, "s1", services[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserMetrics(t *testing.T) {
	s, mock := setupStore(t)

	metricRows := sqlmock.NewRows([]string{
		"transaction_count", "completed_count", "dispute_count",
		"avg_response_time", "on_time_rate", "help_count", "receive_count", "case_study_count",
	}).AddRow(10, 9, 1, 6.5, 0.9, 4, 2, 3)

	specRows := sqlmock.NewRows([]string{"count", "avg"}).AddRow(2, 7.5)

	mock.ExpectQuery("SELECT transaction_count").
		WithArgs("u1").
		WillReturnRows(metricRows)
	mock.ExpectQuery("FROM user_specializations").
		WithArgs("u1").
		WillReturnRows(specRows)

	m, err := s.GetUserMetrics(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, 10, m.TransactionCount)
	require.NotNil(t, m.AvgResponseTime)
	assert.InDelta(t, 6.5, *m.AvgResponseTime, 0.001)
	assert.Equal(t, 2, m.SpecializationCount)
	assert.InDelta(t, 7.5, m.AvgSpecializationScarcity, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertTrustScore(t *testing.T) {
	s, mock := setupStore(t)

	avgResponse := 6.5
	onTime := 0.9
	score := &models.TrustScore{
		UserID:          "u1",
		Responsibility:  90.75,
		Consistency:     91.67,
		SafetyNet:       78.67,
		OverallScore:    0.6,
		CompletionRate:  0.9,
		DisputeRate:     0.05,
		ResponseScore:   0.875,
		Tier:            "initial",
		TierDescription: "new community member",
		Metrics: models.TrustMetrics{
			TransactionCount:          10,
			CompletedCount:            9,
			DisputeCount:              1,
			AvgResponseTime:           &avgResponse,
			OnTimeRate:                &onTime,
			HelpCount:                 4,
			ReceiveCount:              2,
			SpecializationCount:       2,
			AvgSpecializationScarcity: 7.5,
			CaseStudyCount:            3,
		},
		ComputedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO trust_scores").
		WithArgs(score.UserID, score.Responsibility, score.Consistency, score.SafetyNet,
			score.OverallScore, score.CompletionRate, score.DisputeRate, score.ResponseScore,
			score.Tier, score.TierDescription,
			score.Metrics.TransactionCount, score.Metrics.CompletedCount, score.Metrics.DisputeCount,
			score.Metrics.AvgResponseTime, score.Metrics.OnTimeRate,
			score.Metrics.HelpCount, score.Metrics.ReceiveCount,
			score.Metrics.SpecializationCount, score.Metrics.AvgSpecializationScarcity,
			score.Metrics.CaseStudyCount, score.ComputedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.UpsertTrustScore(context.Background(), score)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTrustScore_KeepsMetricsAndTier(t *testing.T) {
	s, mock := setupStore(t)

	computedAt := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"user_id", "responsibility", "consistency", "safety_net", "overall_score",
		"completion_rate", "dispute_rate", "response_score", "tier", "tier_description",
		"transaction_count", "completed_count", "dispute_count",
		"avg_response_time", "on_time_rate", "help_count", "receive_count",
		"specialization_count", "avg_specialization_scarcity", "case_study_count",
		"computed_at",
	}).AddRow("u1", 90.75, 91.67, 78.67, 0.6,
		0.9, 0.05, 0.875, "initial", "new community member",
		10, 9, 1, 6.5, 0.9, 4, 2, 2, 7.5, 3, computedAt)

	mock.ExpectQuery("FROM trust_scores WHERE user_id").
		WithArgs("u1").
		WillReturnRows(rows)

	ts, err := s.GetTrustScore(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, "initial", ts.Tier)
	assert.Equal(t, "new community member", ts.TierDescription)
	assert.Equal(t, 10, ts.Metrics.TransactionCount)
	assert.Equal(t, 9, ts.Metrics.CompletedCount)
	assert.Equal(t, 1, ts.Metrics.DisputeCount)
	require.NotNil(t, ts.Metrics.AvgResponseTime)
	assert.InDelta(t, 6.5, *ts.Metrics.AvgResponseTime, 0.001)
	require.NotNil(t, ts.Metrics.OnTimeRate)
	assert.InDelta(t, 0.9, *ts.Metrics.OnTimeRate, 0.001)
	assert.Equal(t, 2, ts.Metrics.SpecializationCount)
	assert.InDelta(t, 7.5, ts.Metrics.AvgSpecializationScarcity, 0.001)
	assert.Equal(t, 3, ts.Metrics.CaseStudyCount)
	assert.Equal(t, computedAt, ts.ComputedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListHighTrustUsers(t *testing.T) {
	s, mock := setupStore(t)

	rows := sqlmock.NewRows([]string{
		"id", "name", "location_text", "location_lat", "location_lng",
		"skills", "help_count", "receive_count", "created_at", "overall_score",
	}).
		AddRow("u1", "Ada", "downtown", nil, nil, pq.Array([]string{}), 10, 5, time.Now(), 91.0).
		AddRow("u2", "Grace", "riverside", nil, nil, pq.Array([]string{}), 8, 8, time.Now(), 75.0)

	mock.ExpectQuery("JOIN trust_scores").
		WithArgs(70.0, 10).
		WillReturnRows(rows)

	users, err := s.ListHighTrustUsers(context.Background(), 70, 10)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "u1", users[0].User.ID)
	assert.InDelta(t, 91, users[0].TrustScore, 0.001)
}

func TestCountCompletedMatchesBetween(t *testing.T) {
	s, mock := setupStore(t)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(models.MatchStatusCompleted, "u1", "u2").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := s.CountCompletedMatchesBetween(context.Background(), "u1", "u2")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCountConversationsBetween(t *testing.T) {
	s, mock := setupStore(t)

	mock.ExpectQuery("FROM conversation_participants").
		WithArgs("u1", "u2").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	count, err := s.CountConversationsBetween(context.Background(), "u1", "u2")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCreateMatchRecord(t *testing.T) {
	s, mock := setupStore(t)

	result := &models.MatchResult{
		ID:        "m1",
		DemandID:  "d1",
		ServiceID: "s1",
		Score:     53,
		Reasons:   []string{"nearby"},
		Details:   models.MatchDetails{Location: 100, Trust: 92},
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO match_results").
		WithArgs(result.ID, result.DemandID, result.ServiceID, result.Score, pq.Array(result.Reasons),
			result.Details.Specialization, result.Details.Location, result.Details.Trust,
			result.Details.Time, result.Details.Urgency, result.Details.History, result.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.CreateMatchRecord(context.Background(), result)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
