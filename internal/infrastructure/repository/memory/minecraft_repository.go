package memory

import (
	"context"
	"sync"

	"github.com/mba-league/mbabot/internal/domain/minecraft"
)

type MinecraftRepository struct {
	mu    sync.RWMutex
	links map[string]minecraft.Link
}

func NewMinecraftRepository() *MinecraftRepository {
	return &MinecraftRepository{links: make(map[string]minecraft.Link)}
}

func linkKey(guildID, userID string) string {
	return guildID + "|" + userID
}

func (r *MinecraftRepository) GetByUser(_ context.Context, guildID, userID string) (minecraft.Link, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.links[linkKey(guildID, userID)]
	return item, ok, nil
}

func (r *MinecraftRepository) Upsert(_ context.Context, item minecraft.Link) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.links[linkKey(item.GuildID, item.UserID)] = item
	return nil
}

func (r *MinecraftRepository) Delete(_ context.Context, guildID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.links, linkKey(guildID, userID))
	return nil
}
