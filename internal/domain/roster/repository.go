package roster

import "context"

// Repository describes roster persistence needs from use cases.
type Repository interface {
	GetByPlayer(ctx context.Context, guildID, playerID string) (Membership, bool, error)
	ListByTeam(ctx context.Context, guildID, teamID string) ([]Membership, error)
	Assign(ctx context.Context, item Membership) error
	SetPosition(ctx context.Context, guildID, playerID string, position Position) error
	Clear(ctx context.Context, guildID, playerID string) error

	// Swap moves two players between teams in one transaction.
	Swap(ctx context.Context, guildID, playerA, teamForA, playerB, teamForB string) error
}

// DemandRepository counts demanded releases per player per season.
type DemandRepository interface {
	CountDemands(ctx context.Context, guildID, playerID, seasonID string) (int, error)
	RecordDemand(ctx context.Context, guildID, playerID, seasonID string) error
	ResetDemands(ctx context.Context, guildID string) error
}
