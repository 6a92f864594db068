package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mba-league/mbabot/internal/domain/roster"
	qb "github.com/mba-league/mbabot/internal/platform/querybuilder"
)

type RosterRepository struct {
	db *sqlx.DB
}

func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

func (r *RosterRepository) GetByPlayer(ctx context.Context, guildID, playerID string) (roster.Membership, bool, error) {
	query, args, err := qb.Select("*").From("roster_memberships").
		Where(
			qb.Eq("guild_id", guildID),
			qb.Eq("player_id", playerID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return roster.Membership{}, false, fmt.Errorf("build get membership query: %w", err)
	}

	var row membershipTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return roster.Membership{}, false, nil
		}
		return roster.Membership{}, false, fmt.Errorf("get membership: %w", err)
	}

	return membershipFromRow(row), true, nil
}

func (r *RosterRepository) ListByTeam(ctx context.Context, guildID, teamID string) ([]roster.Membership, error) {
	query, args, err := qb.Select("*").From("roster_memberships").
		Where(
			qb.Eq("guild_id", guildID),
			qb.Eq("team_public_id", teamID),
		).
		OrderBy("joined_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list team memberships query: %w", err)
	}

	var rows []membershipTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list team memberships: %w", err)
	}

	out := make([]roster.Membership, 0, len(rows))
	for _, row := range rows {
		out = append(out, membershipFromRow(row))
	}
	return out, nil
}

func (r *RosterRepository) Assign(ctx context.Context, item roster.Membership) error {
	insertModel := membershipInsertModel{
		GuildID:  item.GuildID,
		PlayerID: item.PlayerID,
		TeamID:   item.TeamID,
		Position: string(item.Position),
		JoinedAt: item.JoinedAt,
	}
	query, args, err := qb.InsertModel("roster_memberships", insertModel, `ON CONFLICT (guild_id, player_id)
DO UPDATE SET
    team_public_id = EXCLUDED.team_public_id,
    position = EXCLUDED.position,
    joined_at = EXCLUDED.joined_at`)
	if err != nil {
		return fmt.Errorf("build assign membership query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("assign membership: %w", err)
	}
	return nil
}

func (r *RosterRepository) SetPosition(ctx context.Context, guildID, playerID string, position roster.Position) error {
	query, args, err := qb.Update("roster_memberships").
		Set("position", string(position)).
		Where(
			qb.Eq("guild_id", guildID),
			qb.Eq("player_id", playerID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set position query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set position: %w", err)
	}
	return nil
}

func (r *RosterRepository) Clear(ctx context.Context, guildID, playerID string) error {
	query, args, err := qb.DeleteFrom("roster_memberships").
		Where(
			qb.Eq("guild_id", guildID),
			qb.Eq("player_id", playerID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build clear membership query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear membership: %w", err)
	}
	return nil
}

// Swap reassigns both players in one transaction. Traded players arrive
// at their new team at the bottom of the ladder.
func (r *RosterRepository) Swap(ctx context.Context, guildID, playerA, teamForA, playerB, teamForB string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for roster swap: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	moves := []struct {
		playerID string
		teamID   string
	}{
		{playerID: playerA, teamID: teamForA},
		{playerID: playerB, teamID: teamForB},
	}
	for _, move := range moves {
		query, args, err := qb.Update("roster_memberships").
			Set("team_public_id", move.teamID).
			Set("position", string(roster.PositionPlayer)).
			Where(
				qb.Eq("guild_id", guildID),
				qb.Eq("player_id", move.playerID),
			).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build swap membership query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("swap membership player=%s: %w", move.playerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit roster swap tx: %w", err)
	}
	return nil
}

func membershipFromRow(row membershipTableModel) roster.Membership {
	return roster.Membership{
		PlayerID: row.PlayerID,
		GuildID:  row.GuildID,
		TeamID:   row.TeamID,
		Position: roster.Position(row.Position),
		JoinedAt: row.JoinedAt,
	}
}

type DemandRepository struct {
	db *sqlx.DB
}

func NewDemandRepository(db *sqlx.DB) *DemandRepository {
	return &DemandRepository{db: db}
}

func (r *DemandRepository) CountDemands(ctx context.Context, guildID, playerID, seasonID string) (int, error) {
	query, args, err := qb.Select("COUNT(*)").From("demand_records").
		Where(
			qb.Eq("guild_id", guildID),
			qb.Eq("player_id", playerID),
			qb.Eq("season_id", seasonID),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count demands query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count demands: %w", err)
	}
	return count, nil
}

func (r *DemandRepository) RecordDemand(ctx context.Context, guildID, playerID, seasonID string) error {
	insertModel := demandInsertModel{
		GuildID:   guildID,
		PlayerID:  playerID,
		SeasonID:  seasonID,
		CreatedAt: time.Now().UTC(),
	}
	query, args, err := qb.InsertModel("demand_records", insertModel, "")
	if err != nil {
		return fmt.Errorf("build record demand query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("record demand: %w", err)
	}
	return nil
}

func (r *DemandRepository) ResetDemands(ctx context.Context, guildID string) error {
	query, args, err := qb.DeleteFrom("demand_records").
		Where(qb.Eq("guild_id", guildID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build reset demands query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("reset demands: %w", err)
	}
	return nil
}
