package guild

import "context"

// Repository describes guild settings persistence needs from use cases.
type Repository interface {
	GetSettings(ctx context.Context, guildID string) (Settings, bool, error)
	UpsertSettings(ctx context.Context, item Settings) error

	// ListWithMinecraft returns settings of every guild that has a
	// Minecraft server address configured.
	ListWithMinecraft(ctx context.Context) ([]Settings, error)
}

// SavedRolesRepository persists role sets of departed members.
type SavedRolesRepository interface {
	Get(ctx context.Context, guildID, userID string) (SavedRoles, bool, error)
	Upsert(ctx context.Context, item SavedRoles) error
	Delete(ctx context.Context, guildID, userID string) error
}
