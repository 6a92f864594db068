package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/mba-league/mbabot/internal/domain/team"
)

type TeamRepository struct {
	mu           sync.RWMutex
	teamsByGuild map[string][]team.Team
}

func NewTeamRepository() *TeamRepository {
	return &TeamRepository{teamsByGuild: make(map[string][]team.Team)}
}

func (r *TeamRepository) ListByGuild(_ context.Context, guildID string) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	teams := r.teamsByGuild[guildID]
	out := make([]team.Team, 0, len(teams))
	out = append(out, teams...)

	return out, nil
}

func (r *TeamRepository) GetByName(_ context.Context, guildID, name string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.teamsByGuild[guildID] {
		if strings.EqualFold(item.Name, name) {
			return item, true, nil
		}
	}

	return team.Team{}, false, nil
}

func (r *TeamRepository) GetByRole(_ context.Context, guildID, roleID string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.teamsByGuild[guildID] {
		if item.RoleID == roleID {
			return item, true, nil
		}
	}

	return team.Team{}, false, nil
}

func (r *TeamRepository) Upsert(_ context.Context, item team.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := r.teamsByGuild[item.GuildID]
	for idx := range rows {
		if rows[idx].ID == item.ID {
			rows[idx] = item
			return nil
		}
	}
	r.teamsByGuild[item.GuildID] = append(rows, item)

	return nil
}

func (r *TeamRepository) Delete(_ context.Context, guildID, teamID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := r.teamsByGuild[guildID]
	for idx := range rows {
		if rows[idx].ID == teamID {
			r.teamsByGuild[guildID] = append(rows[:idx], rows[idx+1:]...)
			return nil
		}
	}

	return nil
}
