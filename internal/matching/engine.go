package matching

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"mutualaid-matching/internal/common/config"
	commonerrors "mutualaid-matching/internal/common/errors"
	"mutualaid-matching/internal/common/logger"
	"mutualaid-matching/internal/common/metrics"
	"mutualaid-matching/internal/geo"
	"mutualaid-matching/internal/models"
	"mutualaid-matching/internal/store"
	"mutualaid-matching/internal/trust"
)

// Engine scores demand-service pairs and ranks candidate pools. All
// scoring is deterministic; the only external I/O is record store
// reads and the trust engine's lazy snapshot lookup.
type Engine struct {
	store   store.RecordStore
	trust   *trust.Engine
	history *HistoryScorer
	zones   *geo.ZoneResolver
	cfg     config.MatchingConfig
	logger  logger.Logger
}

func NewEngine(recordStore store.RecordStore, trustEngine *trust.Engine, zones *geo.ZoneResolver, cfg config.MatchingConfig, log logger.Logger) *Engine {
	return &Engine{
		store:   recordStore,
		trust:   trustEngine,
		history: NewHistoryScorer(recordStore),
		zones:   zones,
		cfg:     cfg,
		logger:  log.WithFields(map[string]interface{}{"component": "matching-engine"}),
	}
}

// ScoreMatch computes the match score for one explicit demand-service
// pairing.
func (e *Engine) ScoreMatch(ctx context.Context, demandID, serviceID string) (*models.MatchResult, error) {
	demand, err := e.store.GetDemand(ctx, demandID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, commonerrors.NewEntityNotFoundError("demand", demandID)
		}
		return nil, commonerrors.NewStoreQueryFailedError("demand", err)
	}

	service, err := e.store.GetService(ctx, serviceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, commonerrors.NewEntityNotFoundError("service", serviceID)
		}
		return nil, commonerrors.NewStoreQueryFailedError("service", err)
	}

	start := time.Now()
	result, err := e.scorePair(ctx, demand, service)
	if err != nil {
		return nil, err
	}

	metrics.MatchScoresComputed.WithLabelValues("score_match").Inc()
	metrics.MatchScoreDuration.WithLabelValues("score_match").Observe(time.Since(start).Seconds())
	return result, nil
}

// RecommendForDemand ranks all active services against the demand and
// returns the top results.
func (e *Engine) RecommendForDemand(ctx context.Context, demandID string, limit int) ([]models.Recommendation, error) {
	demand, err := e.store.GetDemand(ctx, demandID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, commonerrors.NewEntityNotFoundError("demand", demandID)
		}
		return nil, commonerrors.NewStoreQueryFailedError("demand", err)
	}
	if _, err := e.store.GetUser(ctx, demand.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, commonerrors.NewEntityNotFoundError("user", demand.UserID)
		}
		return nil, commonerrors.NewStoreQueryFailedError("user", err)
	}

	pool, err := e.store.ListActiveServices(ctx)
	if err != nil {
		return nil, commonerrors.NewStoreQueryFailedError("service", err)
	}

	// No self-matching: drop the anchor owner's own services.
	candidates := make([]models.Service, 0, len(pool))
	for _, sv := range pool {
		if sv.UserID != demand.UserID {
			candidates = append(candidates, sv)
		}
	}

	recommendations := e.scoreCandidates(ctx, len(candidates), func(ctx context.Context, i int) (*models.Recommendation, error) {
		sv := candidates[i]
		result, err := e.scorePair(ctx, demand, &sv)
		if err != nil {
			return nil, err
		}
		return &models.Recommendation{
			CandidateID: sv.ID,
			OwnerID:     sv.UserID,
			Match:       *result,
		}, nil
	}, func(i int) time.Time { return candidates[i].CreatedAt })

	return truncate(recommendations, e.limitOrDefault(limit)), nil
}

// RecommendForService ranks all active demands against the service and
// returns the top results.
func (e *Engine) RecommendForService(ctx context.Context, serviceID string, limit int) ([]models.Recommendation, error) {
	service, err := e.store.GetService(ctx, serviceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, commonerrors.NewEntityNotFoundError("service", serviceID)
		}
		return nil, commonerrors.NewStoreQueryFailedError("service", err)
	}
	if _, err := e.store.GetUser(ctx, service.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, commonerrors.NewEntityNotFoundError("user", service.UserID)
		}
		return nil, commonerrors.NewStoreQueryFailedError("user", err)
	}

	pool, err := e.store.ListActiveDemands(ctx)
	if err != nil {
		return nil, commonerrors.NewStoreQueryFailedError("demand", err)
	}

	candidates := make([]models.Demand, 0, len(pool))
	for _, d := range pool {
		if d.UserID != service.UserID {
			candidates = append(candidates, d)
		}
	}

	recommendations := e.scoreCandidates(ctx, len(candidates), func(ctx context.Context, i int) (*models.Recommendation, error) {
		d := candidates[i]
		result, err := e.scorePair(ctx, &d, service)
		if err != nil {
			return nil, err
		}
		return &models.Recommendation{
			CandidateID: d.ID,
			OwnerID:     d.UserID,
			Match:       *result,
		}, nil
	}, func(i int) time.Time { return candidates[i].CreatedAt })

	return truncate(recommendations, e.limitOrDefault(limit)), nil
}

// ScoreUserPair scores two users directly with the simpler pair
// profile, for contexts with no specialization or time dimensions.
func (e *Engine) ScoreUserPair(ctx context.Context, userAID, userBID string, urgency int) (*models.PairResult, error) {
	if userAID == userBID {
		return nil, commonerrors.NewInvalidInputError("cannot score a user against themselves")
	}

	userA, err := e.getUser(ctx, userAID)
	if err != nil {
		return nil, err
	}
	userB, err := e.getUser(ctx, userBID)
	if err != nil {
		return nil, err
	}

	trustScore, err := e.trustDimension(ctx, userBID)
	if err != nil {
		return nil, err
	}

	details := models.PairDetails{
		Trust: trustScore,
		Distance: DistanceScore(
			userLocation(userA), userLocation(userB),
			e.zones, e.cfg.MaxDistanceKm, e.cfg.MaxZoneDistance,
		),
		Tag:     TagOverlapScore(userA.Skills, userB.Skills),
		Urgency: UrgencyScore(urgency),
	}

	score, reasons := AggregatePair(details, e.cfg.PairWeights)
	metrics.MatchScoresComputed.WithLabelValues("score_pair").Inc()

	return &models.PairResult{
		UserAID: userAID,
		UserBID: userBID,
		Score:   score,
		Reasons: reasons,
		Details: details,
	}, nil
}

// scorePair computes all sub-scores for a demand-service pair and
// aggregates them.
func (e *Engine) scorePair(ctx context.Context, demand *models.Demand, service *models.Service) (*models.MatchResult, error) {
	demandUser, err := e.getUser(ctx, demand.UserID)
	if err != nil {
		return nil, err
	}
	serviceUser, err := e.getUser(ctx, service.UserID)
	if err != nil {
		return nil, err
	}

	specScore, err := e.specializationDimension(ctx, demand.SpecializationID, service.SpecializationID)
	if err != nil {
		return nil, err
	}

	trustScore, err := e.trustDimension(ctx, service.UserID)
	if err != nil {
		return nil, err
	}

	historyScore, err := e.history.Score(ctx, demand.UserID, service.UserID)
	if err != nil {
		return nil, commonerrors.NewStoreQueryFailedError("history", err)
	}

	details := models.MatchDetails{
		Specialization: specScore,
		Location: DistanceScore(
			itemLocation(demand.LocationText, demand.LocationLat, demand.LocationLng, demandUser),
			itemLocation(service.LocationText, service.LocationLat, service.LocationLng, serviceUser),
			e.zones, e.cfg.MaxDistanceKm, e.cfg.MaxZoneDistance,
		),
		Trust:   trustScore,
		Time:    TimeWindowScore(demand.Deadline, service.AvailableFrom, service.AvailableTo),
		Urgency: UrgencyScore(demand.Urgency),
		History: historyScore,
	}

	score, reasons := Aggregate(details, e.cfg.Weights)

	return &models.MatchResult{
		DemandID:  demand.ID,
		ServiceID: service.ID,
		Score:     score,
		Reasons:   reasons,
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// specializationDimension resolves specialization records and grades
// their overlap. Identical ids short-circuit without a lookup; a
// dangling reference scores 0 rather than failing the pair.
func (e *Engine) specializationDimension(ctx context.Context, demandSpecID, serviceSpecID *string) (float64, error) {
	if demandSpecID == nil || serviceSpecID == nil {
		return 0, nil
	}
	if *demandSpecID == *serviceSpecID {
		return 100, nil
	}

	demandSpec, err := e.store.GetSpecialization(ctx, *demandSpecID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, nil
		}
		return 0, commonerrors.NewStoreQueryFailedError("specialization", err)
	}
	serviceSpec, err := e.store.GetSpecialization(ctx, *serviceSpecID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, nil
		}
		return 0, commonerrors.NewStoreQueryFailedError("specialization", err)
	}

	return SpecializationScore(demandSpec, serviceSpec), nil
}

// trustDimension resolves the counterpart owner's trust score,
// computing it lazily, and gates it against the configured minimum.
func (e *Engine) trustDimension(ctx context.Context, userID string) (float64, error) {
	snapshot, err := e.trust.GetTrustScore(ctx, userID)
	if err != nil {
		return 0, err
	}
	if snapshot.OverallScore < e.cfg.MinTrustScore {
		return 0, nil
	}
	if snapshot.OverallScore > 100 {
		return 100, nil
	}
	return snapshot.OverallScore, nil
}

// scoreCandidates runs the per-candidate scorer across a bounded
// worker pool, drops failures and zero scores, and sorts the rest
// descending with a created-at tie-break favoring fresher items.
func (e *Engine) scoreCandidates(
	ctx context.Context,
	count int,
	score func(ctx context.Context, i int) (*models.Recommendation, error),
	createdAt func(i int) time.Time,
) []models.Recommendation {
	start := time.Now()
	results := make([]*models.Recommendation, count)

	concurrency := e.cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i := 0; i < count; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			rec, err := score(ctx, i)
			if err != nil {
				// A candidate that fails to resolve is skipped, never
				// fatal for the whole batch.
				metrics.CandidatesSkipped.WithLabelValues("resolution_failed").Inc()
				e.logger.Warn("skipping candidate", map[string]interface{}{
					"index": i,
					"error": err.Error(),
				})
				return
			}
			results[i] = rec
		}(i)
	}
	wg.Wait()

	type scored struct {
		rec       models.Recommendation
		createdAt time.Time
	}
	ranked := make([]scored, 0, count)
	computed := 0
	for i, rec := range results {
		if rec == nil {
			continue
		}
		computed++
		if rec.Match.Score == 0 {
			// Zero scores are noise (usually the distance cutoff), not
			// low-quality signal.
			metrics.CandidatesSkipped.WithLabelValues("zero_score").Inc()
			continue
		}
		ranked = append(ranked, scored{rec: *rec, createdAt: createdAt(i)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].rec.Match.Score != ranked[j].rec.Match.Score {
			return ranked[i].rec.Match.Score > ranked[j].rec.Match.Score
		}
		return ranked[i].createdAt.After(ranked[j].createdAt)
	})

	out := make([]models.Recommendation, len(ranked))
	for i, s := range ranked {
		out[i] = s.rec
	}

	metrics.MatchScoresComputed.WithLabelValues("rank").Add(float64(computed))
	metrics.MatchScoreDuration.WithLabelValues("rank").Observe(time.Since(start).Seconds())
	e.logger.Info("ranking completed", map[string]interface{}{
		"poolSize":    count,
		"resultCount": len(out),
		"durationMs":  time.Since(start).Milliseconds(),
	})

	return out
}

func (e *Engine) getUser(ctx context.Context, id string) (*models.User, error) {
	user, err := e.store.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, commonerrors.NewEntityNotFoundError("user", id)
		}
		return nil, commonerrors.NewStoreQueryFailedError("user", err)
	}
	return user, nil
}

func (e *Engine) limitOrDefault(limit int) int {
	if limit <= 0 {
		return e.cfg.DefaultLimit
	}
	return limit
}

func truncate(recs []models.Recommendation, limit int) []models.Recommendation {
	if len(recs) > limit {
		return recs[:limit]
	}
	return recs
}

// itemLocation builds the location reference for a demand or service,
// falling back to the owner's profile location when the item carries
// none.
func itemLocation(text string, lat, lng *float64, owner *models.User) geo.Location {
	loc := geo.Location{Text: text, Lat: lat, Lng: lng}
	if !loc.HasCoordinates() && owner != nil {
		loc.Lat = owner.LocationLat
		loc.Lng = owner.LocationLng
	}
	if loc.Text == "" && owner != nil {
		loc.Text = owner.LocationText
	}
	return loc
}

func userLocation(u *models.User) geo.Location {
	return geo.Location{Text: u.LocationText, Lat: u.LocationLat, Lng: u.LocationLng}
}
