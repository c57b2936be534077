package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"mutualaid-matching/internal/models"
)

// PostgresStore implements RecordStore over the platform database.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, name, COALESCE(location_text, ''), location_lat, location_lng,
		       skills, help_count, receive_count, created_at
		FROM users WHERE id = $1`

	var u models.User
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Name, &u.LocationText, &u.LocationLat, &u.LocationLng,
		pq.Array(&u.Skills), &u.HelpCount, &u.ReceiveCount, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) GetDemand(ctx context.Context, id string) (*models.Demand, error) {
	query := `
		SELECT id, user_id, title, urgency, specialization_id, deadline,
		       tags, COALESCE(location_text, ''), location_lat, location_lng, status, created_at
		FROM demands WHERE id = $1`

	var d models.Demand
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&d.ID, &d.UserID, &d.Title, &d.Urgency, &d.SpecializationID, &d.Deadline,
		pq.Array(&d.Tags), &d.LocationText, &d.LocationLat, &d.LocationLng, &d.Status, &d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query demand: %w", err)
	}
	if d.Urgency == 0 {
		d.Urgency = models.DefaultUrgency
	}
	return &d, nil
}

func (s *PostgresStore) GetService(ctx context.Context, id string) (*models.Service, error) {
	query := `
		SELECT id, user_id, title, specialization_id, available_from, available_to,
		       tags, COALESCE(location_text, ''), location_lat, location_lng, status, created_at
		FROM services WHERE id = $1`

	var sv models.Service
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&sv.ID, &sv.UserID, &sv.Title, &sv.SpecializationID, &sv.AvailableFrom, &sv.AvailableTo,
		pq.Array(&sv.Tags), &sv.LocationText, &sv.LocationLat, &sv.LocationLng, &sv.Status, &sv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query service: %w", err)
	}
	return &sv, nil
}

func (s *PostgresStore) GetSpecialization(ctx context.Context, id string) (*models.Specialization, error) {
	query := `SELECT id, category, subcategory, scarcity_score FROM specializations WHERE id = $1`

	var sp models.Specialization
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&sp.ID, &sp.Category, &sp.Subcategory, &sp.ScarcityScore,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query specialization: %w", err)
	}
	return &sp, nil
}

func (s *PostgresStore) ListActiveDemands(ctx context.Context) ([]models.Demand, error) {
	query := `
		SELECT id, user_id, title, urgency, specialization_id, deadline,
		       tags, COALESCE(location_text, ''), location_lat, location_lng, status, created_at
		FROM demands WHERE status = $1`

	rows, err := s.db.QueryContext(ctx, query, models.DemandStatusActive)
	if err != nil {
		return nil, fmt.Errorf("query active demands: %w", err)
	}
	defer rows.Close()

	var demands []models.Demand
	for rows.Next() {
		var d models.Demand
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.Title, &d.Urgency, &d.SpecializationID, &d.Deadline,
			pq.Array(&d.Tags), &d.LocationText, &d.LocationLat, &d.LocationLng, &d.Status, &d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan demand: %w", err)
		}
		if d.Urgency == 0 {
			d.Urgency = models.DefaultUrgency
		}
		demands = append(demands, d)
	}
	return demands, rows.Err()
}

func (s *PostgresStore) ListActiveServices(ctx context.Context) ([]models.Service, error) {
	query := `
		SELECT id, user_id, title, specialization_id, available_from, available_to,
		       tags, COALESCE(location_text, ''), location_lat, location_lng, status, created_at
		FROM services WHERE status = $1`

	rows, err := s.db.QueryContext(ctx, query, models.ServiceStatusActive)
	if err != nil {
		return nil, fmt.Errorf("query active services: %w", err)
	}
	defer rows.Close()

	var services []models.Service
	for rows.Next() {
		var sv models.Service
		if err := rows.Scan(
			&sv.ID, &sv.UserID, &sv.Title, &sv.SpecializationID, &sv.AvailableFrom, &sv.AvailableTo,
			pq.Array(&sv.Tags), &sv.LocationText, &sv.LocationLat, &sv.LocationLng, &sv.Status, &sv.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, sv)
	}
	return services, rows.Err()
}

func (s *PostgresStore) GetUserMetrics(ctx context.Context, userID string) (*models.TrustMetrics, error) {
	query := `
		SELECT transaction_count, completed_count, dispute_count,
		       avg_response_time, on_time_rate, help_count, receive_count, case_study_count
		FROM users WHERE id = $1`

	var m models.TrustMetrics
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&m.TransactionCount, &m.CompletedCount, &m.DisputeCount,
		&m.AvgResponseTime, &m.OnTimeRate, &m.HelpCount, &m.ReceiveCount, &m.CaseStudyCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query user metrics: %w", err)
	}

	specQuery := `
		SELECT COUNT(*), COALESCE(AVG(s.scarcity_score), 0)
		FROM user_specializations us
		JOIN specializations s ON s.id = us.specialization_id
		WHERE us.user_id = $1`

	err = s.db.QueryRowContext(ctx, specQuery, userID).Scan(
		&m.SpecializationCount, &m.AvgSpecializationScarcity,
	)
	if err != nil {
		return nil, fmt.Errorf("query user specializations: %w", err)
	}

	return &m, nil
}

func (s *PostgresStore) GetTrustScore(ctx context.Context, userID string) (*models.TrustScore, error) {
	query := `
		SELECT user_id, responsibility, consistency, safety_net, overall_score,
		       completion_rate, dispute_rate, response_score, tier, tier_description,
		       transaction_count, completed_count, dispute_count,
		       avg_response_time, on_time_rate, help_count, receive_count,
		       specialization_count, avg_specialization_scarcity, case_study_count,
		       computed_at
		FROM trust_scores WHERE user_id = $1`

	var ts models.TrustScore
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&ts.UserID, &ts.Responsibility, &ts.Consistency, &ts.SafetyNet, &ts.OverallScore,
		&ts.CompletionRate, &ts.DisputeRate, &ts.ResponseScore, &ts.Tier, &ts.TierDescription,
		&ts.Metrics.TransactionCount, &ts.Metrics.CompletedCount, &ts.Metrics.DisputeCount,
		&ts.Metrics.AvgResponseTime, &ts.Metrics.OnTimeRate, &ts.Metrics.HelpCount, &ts.Metrics.ReceiveCount,
		&ts.Metrics.SpecializationCount, &ts.Metrics.AvgSpecializationScarcity, &ts.Metrics.CaseStudyCount,
		&ts.ComputedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query trust score: %w", err)
	}
	return &ts, nil
}

func (s *PostgresStore) UpsertTrustScore(ctx context.Context, score *models.TrustScore) error {
	// Single-statement upsert; concurrent recomputes are deterministic
	// for identical metrics, so last-writer-wins is safe.
	query := `
		INSERT INTO trust_scores
			(user_id, responsibility, consistency, safety_net, overall_score,
			 completion_rate, dispute_rate, response_score, tier, tier_description,
			 transaction_count, completed_count, dispute_count,
			 avg_response_time, on_time_rate, help_count, receive_count,
			 specialization_count, avg_specialization_scarcity, case_study_count,
			 computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		        $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (user_id) DO UPDATE SET
			responsibility = EXCLUDED.responsibility,
			consistency = EXCLUDED.consistency,
			safety_net = EXCLUDED.safety_net,
			overall_score = EXCLUDED.overall_score,
			completion_rate = EXCLUDED.completion_rate,
			dispute_rate = EXCLUDED.dispute_rate,
			response_score = EXCLUDED.response_score,
			tier = EXCLUDED.tier,
			tier_description = EXCLUDED.tier_description,
			transaction_count = EXCLUDED.transaction_count,
			completed_count = EXCLUDED.completed_count,
			dispute_count = EXCLUDED.dispute_count,
			avg_response_time = EXCLUDED.avg_response_time,
			on_time_rate = EXCLUDED.on_time_rate,
			help_count = EXCLUDED.help_count,
			receive_count = EXCLUDED.receive_count,
			specialization_count = EXCLUDED.specialization_count,
			avg_specialization_scarcity = EXCLUDED.avg_specialization_scarcity,
			case_study_count = EXCLUDED.case_study_count,
			computed_at = EXCLUDED.computed_at`

	_, err := s.db.ExecContext(ctx, query,
		score.UserID, score.Responsibility, score.Consistency, score.SafetyNet, score.OverallScore,
		score.CompletionRate, score.DisputeRate, score.ResponseScore, score.Tier, score.TierDescription,
		score.Metrics.TransactionCount, score.Metrics.CompletedCount, score.Metrics.DisputeCount,
		score.Metrics.AvgResponseTime, score.Metrics.OnTimeRate, score.Metrics.HelpCount, score.Metrics.ReceiveCount,
		score.Metrics.SpecializationCount, score.Metrics.AvgSpecializationScarcity, score.Metrics.CaseStudyCount,
		score.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert trust score: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListHighTrustUsers(ctx context.Context, threshold float64, limit int) ([]models.HighTrustUser, error) {
	query := `
		SELECT u.id, u.name, COALESCE(u.location_text, ''), u.location_lat, u.location_lng,
		       u.skills, u.help_count, u.receive_count, u.created_at, ts.overall_score
		FROM users u
		JOIN trust_scores ts ON ts.user_id = u.id
		WHERE ts.overall_score >= $1
		ORDER BY ts.overall_score DESC
		LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("query high trust users: %w", err)
	}
	defer rows.Close()

	var users []models.HighTrustUser
	for rows.Next() {
		var hu models.HighTrustUser
		if err := rows.Scan(
			&hu.User.ID, &hu.User.Name, &hu.User.LocationText, &hu.User.LocationLat, &hu.User.LocationLng,
			pq.Array(&hu.User.Skills), &hu.User.HelpCount, &hu.User.ReceiveCount, &hu.User.CreatedAt,
			&hu.TrustScore,
		); err != nil {
			return nil, fmt.Errorf("scan high trust user: %w", err)
		}
		users = append(users, hu)
	}
	return users, rows.Err()
}

func (s *PostgresStore) CountCompletedMatchesBetween(ctx context.Context, userA, userB string) (int, error) {
	query := `
		SELECT COUNT(*) FROM matches
		WHERE status = $1
		  AND ((user_a_id = $2 AND user_b_id = $3) OR (user_a_id = $3 AND user_b_id = $2))`

	var count int
	err := s.db.QueryRowContext(ctx, query, models.MatchStatusCompleted, userA, userB).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count completed matches: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) CountConversationsBetween(ctx context.Context, userA, userB string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM conversation_participants pa
		JOIN conversation_participants pb ON pa.conversation_id = pb.conversation_id
		WHERE pa.user_id = $1 AND pb.user_id = $2`

	var count int
	err := s.db.QueryRowContext(ctx, query, userA, userB).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count conversations: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) CreateMatchRecord(ctx context.Context, result *models.MatchResult) error {
	query := `
		INSERT INTO match_results
			(id, demand_id, service_id, score, reasons, details_specialization,
			 details_location, details_trust, details_time, details_urgency,
			 details_history, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	createdAt := result.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, query,
		result.ID, result.DemandID, result.ServiceID, result.Score, pq.Array(result.Reasons),
		result.Details.Specialization, result.Details.Location, result.Details.Trust,
		result.Details.Time, result.Details.Urgency, result.Details.History, createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert match result: %w", err)
	}
	return nil
}
