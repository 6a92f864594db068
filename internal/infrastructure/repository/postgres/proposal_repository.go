package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mba-league/mbabot/internal/domain/proposal"
	qb "github.com/mba-league/mbabot/internal/platform/querybuilder"
)

type ProposalRepository struct {
	db *sqlx.DB
}

func NewProposalRepository(db *sqlx.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

func (r *ProposalRepository) Create(ctx context.Context, item proposal.Proposal) error {
	query, args, err := qb.InsertModel("proposals", proposalToInsertModel(item), "")
	if err != nil {
		return fmt.Errorf("build create proposal query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create proposal: %w", err)
	}
	return nil
}

func (r *ProposalRepository) GetByID(ctx context.Context, guildID, proposalID string) (proposal.Proposal, bool, error) {
	query, args, err := qb.Select("*").From("proposals").
		Where(
			qb.Eq("guild_id", guildID),
			qb.Eq("public_id", proposalID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return proposal.Proposal{}, false, fmt.Errorf("build get proposal query: %w", err)
	}

	var row proposalTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return proposal.Proposal{}, false, nil
		}
		return proposal.Proposal{}, false, fmt.Errorf("get proposal: %w", err)
	}

	return proposalFromRow(row), true, nil
}

// Delete reports whether a row was removed, so resolution races surface
// as not found instead of double applying.
func (r *ProposalRepository) Delete(ctx context.Context, guildID, proposalID string) (bool, error) {
	query, args, err := qb.DeleteFrom("proposals").
		Where(
			qb.Eq("guild_id", guildID),
			qb.Eq("public_id", proposalID),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build delete proposal query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete proposal: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete proposal rows affected: %w", err)
	}

	return affected > 0, nil
}

func (r *ProposalRepository) FindActiveOffer(ctx context.Context, guildID, playerID, teamID string, now time.Time) (proposal.Proposal, bool, error) {
	query, args, err := qb.Select("*").From("proposals").
		Where(
			qb.Eq("guild_id", guildID),
			qb.Eq("kind", string(proposal.KindOffer)),
			qb.Eq("offer_player_id", playerID),
			qb.Eq("offer_team_id", teamID),
			qb.Gt("expires_at", now),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return proposal.Proposal{}, false, fmt.Errorf("build find active offer query: %w", err)
	}

	var row proposalTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return proposal.Proposal{}, false, nil
		}
		return proposal.Proposal{}, false, fmt.Errorf("find active offer: %w", err)
	}

	return proposalFromRow(row), true, nil
}

func (r *ProposalRepository) ListByGuild(ctx context.Context, guildID string) ([]proposal.Proposal, error) {
	query, args, err := qb.Select("*").From("proposals").
		Where(qb.Eq("guild_id", guildID)).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list proposals query: %w", err)
	}

	var rows []proposalTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}

	out := make([]proposal.Proposal, 0, len(rows))
	for _, row := range rows {
		out = append(out, proposalFromRow(row))
	}
	return out, nil
}

func (r *ProposalRepository) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	query, args, err := qb.DeleteFrom("proposals").
		Where(qb.Lte("expires_at", now)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build delete expired proposals query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete expired proposals: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired proposals rows affected: %w", err)
	}

	return int(affected), nil
}
