package memory

import (
	"context"
	"sync"

	"github.com/mba-league/mbabot/internal/domain/guild"
)

type GuildRepository struct {
	mu       sync.RWMutex
	settings map[string]guild.Settings
}

func NewGuildRepository() *GuildRepository {
	return &GuildRepository{settings: make(map[string]guild.Settings)}
}

func (r *GuildRepository) GetSettings(_ context.Context, guildID string) (guild.Settings, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.settings[guildID]
	return item, ok, nil
}

func (r *GuildRepository) UpsertSettings(_ context.Context, item guild.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.settings[item.GuildID] = item
	return nil
}

func (r *GuildRepository) ListWithMinecraft(_ context.Context) ([]guild.Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]guild.Settings, 0, len(r.settings))
	for _, item := range r.settings {
		if item.MinecraftAddress != "" {
			out = append(out, item)
		}
	}

	return out, nil
}

type SavedRolesRepository struct {
	mu    sync.RWMutex
	roles map[string]guild.SavedRoles
}

func NewSavedRolesRepository() *SavedRolesRepository {
	return &SavedRolesRepository{roles: make(map[string]guild.SavedRoles)}
}

func savedRolesKey(guildID, userID string) string {
	return guildID + "|" + userID
}

func (r *SavedRolesRepository) Get(_ context.Context, guildID, userID string) (guild.SavedRoles, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.roles[savedRolesKey(guildID, userID)]
	return item, ok, nil
}

func (r *SavedRolesRepository) Upsert(_ context.Context, item guild.SavedRoles) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.roles[savedRolesKey(item.GuildID, item.UserID)] = item
	return nil
}

func (r *SavedRolesRepository) Delete(_ context.Context, guildID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.roles, savedRolesKey(guildID, userID))
	return nil
}
