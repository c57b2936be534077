package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	commonerrors "mutualaid-matching/internal/common/errors"
	"mutualaid-matching/internal/common/logger"
	"mutualaid-matching/internal/matching"
	"mutualaid-matching/internal/models"
	"mutualaid-matching/internal/store"
	"mutualaid-matching/internal/trust"
)

const maxRequestBody = 1 << 20 // 1 MiB

// Handlers exposes the matching and trust operations over HTTP.
type Handlers struct {
	matching *matching.Engine
	trust    *trust.Engine
	store    store.RecordStore
	logger   logger.Logger
}

func NewHandlers(matchEngine *matching.Engine, trustEngine *trust.Engine, recordStore store.RecordStore, log logger.Logger) *Handlers {
	return &Handlers{
		matching: matchEngine,
		trust:    trustEngine,
		store:    recordStore,
		logger:   log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

type scoreMatchRequest struct {
	DemandID  string `json:"demandId"`
	ServiceID string `json:"serviceId"`
	Persist   bool   `json:"persist"`
}

type scorePairRequest struct {
	UserAID string `json:"userAId"`
	UserBID string `json:"userBId"`
	Urgency int    `json:"urgency"`
}

type computeTrustRequest struct {
	Metrics *models.TrustMetrics `json:"metrics"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HandleScoreMatch scores one demand-service pair. With persist set,
// the result is also written to the match audit table.
func (h *Handlers) HandleScoreMatch(w http.ResponseWriter, r *http.Request) {
	var req scoreMatchRequest
	if !h.decodeAndValidate(w, r, scoreMatchSchema, &req) {
		return
	}

	result, err := h.matching.ScoreMatch(r.Context(), req.DemandID, req.ServiceID)
	if err != nil {
		h.writeErr(w, err)
		return
	}

	if req.Persist {
		result.ID = uuid.New().String()
		if err := h.store.CreateMatchRecord(r.Context(), result); err != nil {
			// Scoring succeeded; an audit write failure downgrades the
			// response rather than discarding the score.
			h.logger.Warn("match audit write failed", map[string]interface{}{
				"demandId":  req.DemandID,
				"serviceId": req.ServiceID,
				"error":     err.Error(),
			})
			result.ID = ""
		}
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleScorePair scores two users with the pair profile.
func (h *Handlers) HandleScorePair(w http.ResponseWriter, r *http.Request) {
	var req scorePairRequest
	if !h.decodeAndValidate(w, r, scorePairSchema, &req) {
		return
	}
	if req.Urgency == 0 {
		req.Urgency = models.DefaultUrgency
	}

	result, err := h.matching.ScoreUserPair(r.Context(), req.UserAID, req.UserBID, req.Urgency)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleDemandRecommendations ranks active services for a demand.
func (h *Handlers) HandleDemandRecommendations(w http.ResponseWriter, r *http.Request) {
	h.handleRecommendations(w, r, r.PathValue("id"), h.matching.RecommendForDemand)
}

// HandleServiceRecommendations ranks active demands for a service.
func (h *Handlers) HandleServiceRecommendations(w http.ResponseWriter, r *http.Request) {
	h.handleRecommendations(w, r, r.PathValue("id"), h.matching.RecommendForService)
}

func (h *Handlers) handleRecommendations(
	w http.ResponseWriter,
	r *http.Request,
	anchorID string,
	recommend func(ctx context.Context, id string, limit int) ([]models.Recommendation, error),
) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		h.writeErr(w, err)
		return
	}

	recommendations, err := recommend(r.Context(), anchorID, limit)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"recommendations": recommendations,
		"count":           len(recommendations),
	})
}

// HandleComputeTrust recomputes a user's trust score, optionally from
// caller-supplied metrics instead of stored history.
func (h *Handlers) HandleComputeTrust(w http.ResponseWriter, r *http.Request) {
	var req computeTrustRequest
	if !h.decodeAndValidate(w, r, computeTrustSchema, &req) {
		return
	}

	snapshot, err := h.trust.ComputeTrustScore(r.Context(), r.PathValue("userId"), req.Metrics)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// HandleGetTrust returns a user's trust score, computing it lazily
// when no snapshot exists yet.
func (h *Handlers) HandleGetTrust(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.trust.GetTrustScore(r.Context(), r.PathValue("userId"))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// HandleHighTrustUsers lists users above the configured trust
// threshold, highest first.
func (h *Handlers) HandleHighTrustUsers(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		h.writeErr(w, err)
		return
	}

	users, err := h.trust.HighTrustUsers(r.Context(), limit)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"users": users,
		"count": len(users),
	})
}

func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeAndValidate reads the JSON body, validates it against the
// schema, then decodes it into dst. Returns false after writing the
// error response.
func (h *Handlers) decodeAndValidate(w http.ResponseWriter, r *http.Request, schema map[string]interface{}, dst interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)

	var document interface{}
	if err := json.NewDecoder(body).Decode(&document); err != nil {
		h.writeErr(w, commonerrors.NewInvalidInputError("request body is not valid JSON"))
		return false
	}
	if err := validateAgainst(schema, document); err != nil {
		h.writeErr(w, commonerrors.NewInvalidInputError(err.Error()))
		return false
	}

	raw, err := json.Marshal(document)
	if err != nil {
		h.writeErr(w, commonerrors.NewInvalidInputError("request body could not be processed"))
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		h.writeErr(w, commonerrors.NewInvalidInputError("request body could not be processed"))
		return false
	}
	return true
}

func (h *Handlers) writeErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"
	message := "internal error"

	var stdErr *commonerrors.StandardError
	if stderrors.As(err, &stdErr) {
		code = string(stdErr.Code)
		message = stdErr.Message
		if stdErr.Details != "" {
			message = message + ": " + stdErr.Details
		}
		switch {
		case commonerrors.IsNotFound(err):
			status = http.StatusNotFound
		case commonerrors.IsInvalidInput(err):
			status = http.StatusBadRequest
		case stdErr.Retryable:
			status = http.StatusServiceUnavailable
		}
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", map[string]interface{}{"error": err.Error()})
	}
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, commonerrors.NewInvalidInputError("limit must be a positive integer")
	}
	return limit, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
