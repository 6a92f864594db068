package team

import "context"

// Repository describes team persistence needs from use cases.
type Repository interface {
	ListByGuild(ctx context.Context, guildID string) ([]Team, error)
	GetByName(ctx context.Context, guildID, name string) (Team, bool, error)
	GetByRole(ctx context.Context, guildID, roleID string) (Team, bool, error)
	Upsert(ctx context.Context, item Team) error
	Delete(ctx context.Context, guildID, teamID string) error
}
