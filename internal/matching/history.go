package matching

import (
	"context"

	"mutualaid-matching/internal/store"
)

// History scores, 0-100. New pairings score a non-zero baseline so
// first-time interactions are not starved.
const (
	historySelfScore         = 0
	historyCooperationScore  = 80
	historyConversationScore = 60
	historyBaselineScore     = 30
)

// HistoryScorer grades the relationship strength between two users
// from past matches and conversations.
type HistoryScorer struct {
	store store.RecordStore
}

func NewHistoryScorer(recordStore store.RecordStore) *HistoryScorer {
	return &HistoryScorer{store: recordStore}
}

// Score returns 0 for a self-pair, 80 when the pair has a completed
// match in either direction, 60 when they share a conversation, and 30
// otherwise.
func (h *HistoryScorer) Score(ctx context.Context, userA, userB string) (float64, error) {
	if userA == userB {
		return historySelfScore, nil
	}

	completed, err := h.store.CountCompletedMatchesBetween(ctx, userA, userB)
	if err != nil {
		return 0, err
	}
	if completed > 0 {
		return historyCooperationScore, nil
	}

	conversations, err := h.store.CountConversationsBetween(ctx, userA, userB)
	if err != nil {
		return 0, err
	}
	if conversations > 0 {
		return historyConversationScore, nil
	}

	return historyBaselineScore, nil
}
