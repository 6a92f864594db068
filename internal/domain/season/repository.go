package season

import "context"

// Repository describes season persistence needs from use cases.
type Repository interface {
	GetActive(ctx context.Context, guildID string) (Season, bool, error)
	GetByName(ctx context.Context, guildID, name string) (Season, bool, error)
	Create(ctx context.Context, item Season) error

	// SetActive marks one season active and deactivates the rest of the
	// guild's seasons.
	SetActive(ctx context.Context, guildID, seasonID string) error
}

// GameRepository stores finished games.
type GameRepository interface {
	Create(ctx context.Context, item Game) error
	GetByID(ctx context.Context, guildID, gameID string) (Game, bool, error)
	ListRecent(ctx context.Context, guildID, seasonID string, limit int) ([]Game, error)
}

// StatsRepository stores per-game lines and season running totals.
type StatsRepository interface {
	GetGameLine(ctx context.Context, guildID, gameID, playerID string) (PlayerGameStats, bool, error)
	UpsertGameLine(ctx context.Context, item PlayerGameStats) error

	GetSeasonTotals(ctx context.Context, guildID, seasonID, playerID string) (PlayerSeasonStats, bool, error)
	UpsertSeasonTotals(ctx context.Context, item PlayerSeasonStats) error
	TopBySeasonPoints(ctx context.Context, guildID, seasonID string, limit int) ([]PlayerSeasonStats, error)
}
