package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mba-league/mbabot/internal/domain/proposal"
)

type ProposalRepository struct {
	mu      sync.RWMutex
	byGuild map[string]map[string]proposal.Proposal
}

func NewProposalRepository() *ProposalRepository {
	return &ProposalRepository{byGuild: make(map[string]map[string]proposal.Proposal)}
}

func (r *ProposalRepository) Create(_ context.Context, item proposal.Proposal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := r.byGuild[item.GuildID]
	if rows == nil {
		rows = make(map[string]proposal.Proposal)
		r.byGuild[item.GuildID] = rows
	}
	rows[item.ID] = item

	return nil
}

func (r *ProposalRepository) GetByID(_ context.Context, guildID, proposalID string) (proposal.Proposal, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.byGuild[guildID][proposalID]
	return item, ok, nil
}

func (r *ProposalRepository) Delete(_ context.Context, guildID, proposalID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := r.byGuild[guildID]
	if _, ok := rows[proposalID]; !ok {
		return false, nil
	}
	delete(rows, proposalID)

	return true, nil
}

func (r *ProposalRepository) FindActiveOffer(_ context.Context, guildID, playerID, teamID string, now time.Time) (proposal.Proposal, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.byGuild[guildID] {
		if item.Kind != proposal.KindOffer || item.Offer == nil {
			continue
		}
		if item.Offer.PlayerID == playerID && item.Offer.TeamID == teamID && item.ActiveAt(now) {
			return item, true, nil
		}
	}

	return proposal.Proposal{}, false, nil
}

func (r *ProposalRepository) ListByGuild(_ context.Context, guildID string) ([]proposal.Proposal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.byGuild[guildID]
	out := make([]proposal.Proposal, 0, len(rows))
	for _, item := range rows {
		out = append(out, item)
	}

	return out, nil
}

func (r *ProposalRepository) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for _, rows := range r.byGuild {
		for id, item := range rows {
			if !item.ActiveAt(now) {
				delete(rows, id)
				removed++
			}
		}
	}

	return removed, nil
}
