package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/mba-league/mbabot/internal/domain/season"
)

type SeasonRepository struct {
	mu             sync.RWMutex
	seasonsByGuild map[string][]season.Season
}

func NewSeasonRepository() *SeasonRepository {
	return &SeasonRepository{seasonsByGuild: make(map[string][]season.Season)}
}

func (r *SeasonRepository) GetActive(_ context.Context, guildID string) (season.Season, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.seasonsByGuild[guildID] {
		if item.Active {
			return item, true, nil
		}
	}

	return season.Season{}, false, nil
}

func (r *SeasonRepository) GetByName(_ context.Context, guildID, name string) (season.Season, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.seasonsByGuild[guildID] {
		if strings.EqualFold(item.Name, name) {
			return item, true, nil
		}
	}

	return season.Season{}, false, nil
}

func (r *SeasonRepository) Create(_ context.Context, item season.Season) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seasonsByGuild[item.GuildID] = append(r.seasonsByGuild[item.GuildID], item)
	return nil
}

func (r *SeasonRepository) SetActive(_ context.Context, guildID, seasonID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := r.seasonsByGuild[guildID]
	for idx := range rows {
		rows[idx].Active = rows[idx].ID == seasonID
	}

	return nil
}

type GameRepository struct {
	mu           sync.RWMutex
	gamesByGuild map[string][]season.Game
}

func NewGameRepository() *GameRepository {
	return &GameRepository{gamesByGuild: make(map[string][]season.Game)}
}

func (r *GameRepository) Create(_ context.Context, item season.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.gamesByGuild[item.GuildID] = append(r.gamesByGuild[item.GuildID], item)
	return nil
}

func (r *GameRepository) GetByID(_ context.Context, guildID, gameID string) (season.Game, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.gamesByGuild[guildID] {
		if item.ID == gameID {
			return item, true, nil
		}
	}

	return season.Game{}, false, nil
}

func (r *GameRepository) ListRecent(_ context.Context, guildID, seasonID string, limit int) ([]season.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]season.Game, 0, limit)
	for _, item := range r.gamesByGuild[guildID] {
		if item.SeasonID == seasonID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PlayedAt.After(out[j].PlayedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

type StatsRepository struct {
	mu      sync.RWMutex
	lines   map[string]season.PlayerGameStats
	seasons map[string]season.PlayerSeasonStats
}

func NewStatsRepository() *StatsRepository {
	return &StatsRepository{
		lines:   make(map[string]season.PlayerGameStats),
		seasons: make(map[string]season.PlayerSeasonStats),
	}
}

func gameLineKey(guildID, gameID, playerID string) string {
	return guildID + "|" + gameID + "|" + playerID
}

func seasonTotalsKey(guildID, seasonID, playerID string) string {
	return guildID + "|" + seasonID + "|" + playerID
}

func (r *StatsRepository) GetGameLine(_ context.Context, guildID, gameID, playerID string) (season.PlayerGameStats, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.lines[gameLineKey(guildID, gameID, playerID)]
	return item, ok, nil
}

func (r *StatsRepository) UpsertGameLine(_ context.Context, item season.PlayerGameStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lines[gameLineKey(item.GuildID, item.GameID, item.PlayerID)] = item
	return nil
}

func (r *StatsRepository) GetSeasonTotals(_ context.Context, guildID, seasonID, playerID string) (season.PlayerSeasonStats, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.seasons[seasonTotalsKey(guildID, seasonID, playerID)]
	return item, ok, nil
}

func (r *StatsRepository) UpsertSeasonTotals(_ context.Context, item season.PlayerSeasonStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seasons[seasonTotalsKey(item.GuildID, item.SeasonID, item.PlayerID)] = item
	return nil
}

func (r *StatsRepository) TopBySeasonPoints(_ context.Context, guildID, seasonID string, limit int) ([]season.PlayerSeasonStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]season.PlayerSeasonStats, 0, limit)
	for _, item := range r.seasons {
		if item.GuildID == guildID && item.SeasonID == seasonID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Totals.Points > out[j].Totals.Points
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}
