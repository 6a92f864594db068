package proposal

import (
	"context"
	"time"
)

// Repository describes pending proposal persistence. Deleting a row is
// the terminal state for every proposal.
type Repository interface {
	Create(ctx context.Context, item Proposal) error
	GetByID(ctx context.Context, guildID, proposalID string) (Proposal, bool, error)
	Delete(ctx context.Context, guildID, proposalID string) (bool, error)

	// FindActiveOffer returns a live offer for the player/team pair,
	// ignoring rows whose expiry has passed even if not yet swept.
	FindActiveOffer(ctx context.Context, guildID, playerID, teamID string, now time.Time) (Proposal, bool, error)

	ListByGuild(ctx context.Context, guildID string) ([]Proposal, error)
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
