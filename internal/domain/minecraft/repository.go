package minecraft

import "context"

// Repository describes Minecraft link persistence needs from use cases.
type Repository interface {
	GetByUser(ctx context.Context, guildID, userID string) (Link, bool, error)
	Upsert(ctx context.Context, item Link) error
	Delete(ctx context.Context, guildID, userID string) error
}
