package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mba-league/mbabot/internal/domain/season"
	qb "github.com/mba-league/mbabot/internal/platform/querybuilder"
)

type SeasonRepository struct {
	db *sqlx.DB
}

func NewSeasonRepository(db *sqlx.DB) *SeasonRepository {
	return &SeasonRepository{db: db}
}

func (r *SeasonRepository) GetActive(ctx context.Context, guildID string) (season.Season, bool, error) {
	query, args, err := qb.Select("*").From("seasons").
		Where(
			qb.Eq("guild_id", guildID),
			qb.Eq("active", true),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return season.Season{}, false, fmt.Errorf("build get active season query: %w", err)
	}

	var row seasonTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return season.Season{}, false, nil
		}
		return season.Season{}, false, fmt.Errorf("get active season: %w", err)
	}

	return seasonFromRow(row), true, nil
}

func (r *SeasonRepository) GetByName(ctx context.Context, guildID, name string) (season.Season, bool, error) {
	query, args, err := qb.Select("*").From("seasons").
		Where(
			qb.Eq("guild_id", guildID),
			qb.Expr("lower(name) = lower(?)", name),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return season.Season{}, false, fmt.Errorf("build get season by name query: %w", err)
	}

	var row seasonTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return season.Season{}, false, nil
		}
		return season.Season{}, false, fmt.Errorf("get season by name: %w", err)
	}

	return seasonFromRow(row), true, nil
}

func (r *SeasonRepository) Create(ctx context.Context, item season.Season) error {
	insertModel := seasonInsertModel{
		PublicID: item.ID,
		GuildID:  item.GuildID,
		Name:     item.Name,
		Active:   item.Active,
	}
	query, args, err := qb.InsertModel("seasons", insertModel, "")
	if err != nil {
		return fmt.Errorf("build create season query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create season: %w", err)
	}
	return nil
}

func (r *SeasonRepository) SetActive(ctx context.Context, guildID, seasonID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for season switch: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	deactivate, deactivateArgs, err := qb.Update("seasons").
		Set("active", false).
		Where(
			qb.Eq("guild_id", guildID),
			qb.Eq("active", true),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build deactivate seasons query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deactivate, deactivateArgs...); err != nil {
		return fmt.Errorf("deactivate seasons: %w", err)
	}

	activate, activateArgs, err := qb.Update("seasons").
		Set("active", true).
		Where(
			qb.Eq("guild_id", guildID),
			qb.Eq("public_id", seasonID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build activate season query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, activate, activateArgs...); err != nil {
		return fmt.Errorf("activate season: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit season switch tx: %w", err)
	}
	return nil
}

func seasonFromRow(row seasonTableModel) season.Season {
	return season.Season{
		ID:      row.PublicID,
		GuildID: row.GuildID,
		Name:    row.Name,
		Active:  row.Active,
	}
}

type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) Create(ctx context.Context, item season.Game) error {
	insertModel := gameInsertModel{
		PublicID:     item.ID,
		GuildID:      item.GuildID,
		SeasonID:     item.SeasonID,
		HomeTeamID:   item.HomeTeamID,
		AwayTeamID:   item.AwayTeamID,
		HomeScore:    item.HomeScore,
		AwayScore:    item.AwayScore,
		WinnerTeamID: sql.NullString{String: item.WinnerTeamID, Valid: item.WinnerTeamID != ""},
		PlayedAt:     item.PlayedAt,
	}
	query, args, err := qb.InsertModel("games", insertModel, "")
	if err != nil {
		return fmt.Errorf("build create game query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	return nil
}

func (r *GameRepository) GetByID(ctx context.Context, guildID, gameID string) (season.Game, bool, error) {
	query, args, err := qb.Select("*").From("games").
		Where(
			qb.Eq("guild_id", guildID),
			qb.Eq("public_id", gameID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return season.Game{}, false, fmt.Errorf("build get game query: %w", err)
	}

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return season.Game{}, false, nil
		}
		return season.Game{}, false, fmt.Errorf("get game: %w", err)
	}

	return gameFromRow(row), true, nil
}

func (r *GameRepository) ListRecent(ctx context.Context, guildID, seasonID string, limit int) ([]season.Game, error) {
	query, args, err := qb.Select("*").From("games").
		Where(
			qb.Eq("guild_id", guildID),
			qb.Eq("season_public_id", seasonID),
		).
		OrderBy("played_at DESC", "id DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list recent games query: %w", err)
	}

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list recent games: %w", err)
	}

	out := make([]season.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, gameFromRow(row))
	}
	return out, nil
}

type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) GetGameLine(ctx context.Context, guildID, gameID, playerID string) (season.PlayerGameStats, bool, error) {
	query, args, err := qb.Select("*").From("player_game_stats").
		Where(
			qb.Eq("guild_id", guildID),
			qb.Eq("game_public_id", gameID),
			qb.Eq("player_id", playerID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return season.PlayerGameStats{}, false, fmt.Errorf("build get game line query: %w", err)
	}

	var row gameLineTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return season.PlayerGameStats{}, false, nil
		}
		return season.PlayerGameStats{}, false, fmt.Errorf("get game line: %w", err)
	}

	return season.PlayerGameStats{
		GuildID:  row.GuildID,
		SeasonID: row.SeasonID,
		GameID:   row.GameID,
		PlayerID: row.PlayerID,
		Line: season.StatLine{
			Points:   row.Points,
			Rebounds: row.Rebounds,
			Assists:  row.Assists,
			Steals:   row.Steals,
			Blocks:   row.Blocks,
		},
	}, true, nil
}

func (r *StatsRepository) UpsertGameLine(ctx context.Context, item season.PlayerGameStats) error {
	insertModel := gameLineInsertModel{
		GuildID:  item.GuildID,
		SeasonID: item.SeasonID,
		GameID:   item.GameID,
		PlayerID: item.PlayerID,
		Points:   item.Line.Points,
		Rebounds: item.Line.Rebounds,
		Assists:  item.Line.Assists,
		Steals:   item.Line.Steals,
		Blocks:   item.Line.Blocks,
	}
	query, args, err := qb.InsertModel("player_game_stats", insertModel, `ON CONFLICT (guild_id, game_public_id, player_id)
DO UPDATE SET
    points = EXCLUDED.points,
    rebounds = EXCLUDED.rebounds,
    assists = EXCLUDED.assists,
    steals = EXCLUDED.steals,
    blocks = EXCLUDED.blocks`)
	if err != nil {
		return fmt.Errorf("build upsert game line query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert game line: %w", err)
	}
	return nil
}

func (r *StatsRepository) GetSeasonTotals(ctx context.Context, guildID, seasonID, playerID string) (season.PlayerSeasonStats, bool, error) {
	query, args, err := qb.Select("*").From("player_season_stats").
		Where(
			qb.Eq("guild_id", guildID),
			qb.Eq("season_public_id", seasonID),
			qb.Eq("player_id", playerID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return season.PlayerSeasonStats{}, false, fmt.Errorf("build get season totals query: %w", err)
	}

	var row seasonTotalsTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return season.PlayerSeasonStats{}, false, nil
		}
		return season.PlayerSeasonStats{}, false, fmt.Errorf("get season totals: %w", err)
	}

	return seasonTotalsFromRow(row), true, nil
}

func (r *StatsRepository) UpsertSeasonTotals(ctx context.Context, item season.PlayerSeasonStats) error {
	insertModel := seasonTotalsInsertModel{
		GuildID:     item.GuildID,
		SeasonID:    item.SeasonID,
		PlayerID:    item.PlayerID,
		GamesPlayed: item.GamesPlayed,
		Points:      item.Totals.Points,
		Rebounds:    item.Totals.Rebounds,
		Assists:     item.Totals.Assists,
		Steals:      item.Totals.Steals,
		Blocks:      item.Totals.Blocks,
	}
	query, args, err := qb.InsertModel("player_season_stats", insertModel, `ON CONFLICT (guild_id, season_public_id, player_id)
DO UPDATE SET
    games_played = EXCLUDED.games_played,
    points = EXCLUDED.points,
    rebounds = EXCLUDED.rebounds,
    assists = EXCLUDED.assists,
    steals = EXCLUDED.steals,
    blocks = EXCLUDED.blocks`)
	if err != nil {
		return fmt.Errorf("build upsert season totals query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert season totals: %w", err)
	}
	return nil
}

func (r *StatsRepository) TopBySeasonPoints(ctx context.Context, guildID, seasonID string, limit int) ([]season.PlayerSeasonStats, error) {
	query, args, err := qb.Select("*").From("player_season_stats").
		Where(
			qb.Eq("guild_id", guildID),
			qb.Eq("season_public_id", seasonID),
		).
		OrderBy("points DESC", "games_played", "player_id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build leaderboard query: %w", err)
	}

	var rows []seasonTotalsTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list leaderboard: %w", err)
	}

	out := make([]season.PlayerSeasonStats, 0, len(rows))
	for _, row := range rows {
		out = append(out, seasonTotalsFromRow(row))
	}
	return out, nil
}
