package memory

import (
	"context"
	"sync"

	"github.com/mba-league/mbabot/internal/domain/roster"
)

type RosterRepository struct {
	mu             sync.RWMutex
	membersByGuild map[string]map[string]roster.Membership
}

func NewRosterRepository() *RosterRepository {
	return &RosterRepository{membersByGuild: make(map[string]map[string]roster.Membership)}
}

func (r *RosterRepository) GetByPlayer(_ context.Context, guildID, playerID string) (roster.Membership, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.membersByGuild[guildID][playerID]
	return item, ok, nil
}

func (r *RosterRepository) ListByTeam(_ context.Context, guildID, teamID string) ([]roster.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]roster.Membership, 0, 8)
	for _, item := range r.membersByGuild[guildID] {
		if item.TeamID == teamID {
			out = append(out, item)
		}
	}

	return out, nil
}

func (r *RosterRepository) Assign(_ context.Context, item roster.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	members := r.membersByGuild[item.GuildID]
	if members == nil {
		members = make(map[string]roster.Membership)
		r.membersByGuild[item.GuildID] = members
	}
	members[item.PlayerID] = item

	return nil
}

func (r *RosterRepository) SetPosition(_ context.Context, guildID, playerID string, position roster.Position) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.membersByGuild[guildID][playerID]
	if !ok {
		return nil
	}
	item.Position = position
	r.membersByGuild[guildID][playerID] = item

	return nil
}

func (r *RosterRepository) Clear(_ context.Context, guildID, playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.membersByGuild[guildID], playerID)
	return nil
}

func (r *RosterRepository) Swap(_ context.Context, guildID, playerA, teamForA, playerB, teamForB string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	members := r.membersByGuild[guildID]
	a, okA := members[playerA]
	b, okB := members[playerB]
	if !okA || !okB {
		return nil
	}

	a.TeamID = teamForA
	a.Position = roster.PositionPlayer
	b.TeamID = teamForB
	b.Position = roster.PositionPlayer
	members[playerA] = a
	members[playerB] = b

	return nil
}

type DemandRepository struct {
	mu     sync.RWMutex
	counts map[string]int
}

func NewDemandRepository() *DemandRepository {
	return &DemandRepository{counts: make(map[string]int)}
}

func demandKey(guildID, playerID, seasonID string) string {
	return guildID + "|" + playerID + "|" + seasonID
}

func (r *DemandRepository) CountDemands(_ context.Context, guildID, playerID, seasonID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.counts[demandKey(guildID, playerID, seasonID)], nil
}

func (r *DemandRepository) RecordDemand(_ context.Context, guildID, playerID, seasonID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counts[demandKey(guildID, playerID, seasonID)]++
	return nil
}

func (r *DemandRepository) ResetDemands(_ context.Context, guildID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prefix := guildID + "|"
	for key := range r.counts {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			delete(r.counts, key)
		}
	}

	return nil
}
