package postgres

import (
	"database/sql"
	"time"

	"github.com/mba-league/mbabot/internal/domain/season"
)

type seasonTableModel struct {
	ID       int64  `db:"id"`
	PublicID string `db:"public_id"`
	GuildID  string `db:"guild_id"`
	Name     string `db:"name"`
	Active   bool   `db:"active"`
}

type seasonInsertModel struct {
	PublicID string `db:"public_id"`
	GuildID  string `db:"guild_id"`
	Name     string `db:"name"`
	Active   bool   `db:"active"`
}

type gameTableModel struct {
	ID           int64          `db:"id"`
	PublicID     string         `db:"public_id"`
	GuildID      string         `db:"guild_id"`
	SeasonID     string         `db:"season_public_id"`
	HomeTeamID   string         `db:"home_team_id"`
	AwayTeamID   string         `db:"away_team_id"`
	HomeScore    int            `db:"home_score"`
	AwayScore    int            `db:"away_score"`
	WinnerTeamID sql.NullString `db:"winner_team_id"`
	PlayedAt     time.Time      `db:"played_at"`
}

type gameInsertModel struct {
	PublicID     string         `db:"public_id"`
	GuildID      string         `db:"guild_id"`
	SeasonID     string         `db:"season_public_id"`
	HomeTeamID   string         `db:"home_team_id"`
	AwayTeamID   string         `db:"away_team_id"`
	HomeScore    int            `db:"home_score"`
	AwayScore    int            `db:"away_score"`
	WinnerTeamID sql.NullString `db:"winner_team_id"`
	PlayedAt     time.Time      `db:"played_at"`
}

type gameLineTableModel struct {
	ID       int64  `db:"id"`
	GuildID  string `db:"guild_id"`
	SeasonID string `db:"season_public_id"`
	GameID   string `db:"game_public_id"`
	PlayerID string `db:"player_id"`
	Points   int    `db:"points"`
	Rebounds int    `db:"rebounds"`
	Assists  int    `db:"assists"`
	Steals   int    `db:"steals"`
	Blocks   int    `db:"blocks"`
}

type gameLineInsertModel struct {
	GuildID  string `db:"guild_id"`
	SeasonID string `db:"season_public_id"`
	GameID   string `db:"game_public_id"`
	PlayerID string `db:"player_id"`
	Points   int    `db:"points"`
	Rebounds int    `db:"rebounds"`
	Assists  int    `db:"assists"`
	Steals   int    `db:"steals"`
	Blocks   int    `db:"blocks"`
}

type seasonTotalsTableModel struct {
	ID          int64  `db:"id"`
	GuildID     string `db:"guild_id"`
	SeasonID    string `db:"season_public_id"`
	PlayerID    string `db:"player_id"`
	GamesPlayed int    `db:"games_played"`
	Points      int    `db:"points"`
	Rebounds    int    `db:"rebounds"`
	Assists     int    `db:"assists"`
	Steals      int    `db:"steals"`
	Blocks      int    `db:"blocks"`
}

type seasonTotalsInsertModel struct {
	GuildID     string `db:"guild_id"`
	SeasonID    string `db:"season_public_id"`
	PlayerID    string `db:"player_id"`
	GamesPlayed int    `db:"games_played"`
	Points      int    `db:"points"`
	Rebounds    int    `db:"rebounds"`
	Assists     int    `db:"assists"`
	Steals      int    `db:"steals"`
	Blocks      int    `db:"blocks"`
}

func gameFromRow(row gameTableModel) season.Game {
	return season.Game{
		ID:           row.PublicID,
		GuildID:      row.GuildID,
		SeasonID:     row.SeasonID,
		HomeTeamID:   row.HomeTeamID,
		AwayTeamID:   row.AwayTeamID,
		HomeScore:    row.HomeScore,
		AwayScore:    row.AwayScore,
		WinnerTeamID: row.WinnerTeamID.String,
		PlayedAt:     row.PlayedAt,
	}
}

func seasonTotalsFromRow(row seasonTotalsTableModel) season.PlayerSeasonStats {
	return season.PlayerSeasonStats{
		GuildID:     row.GuildID,
		SeasonID:    row.SeasonID,
		PlayerID:    row.PlayerID,
		GamesPlayed: row.GamesPlayed,
		Totals: season.StatLine{
			Points:   row.Points,
			Rebounds: row.Rebounds,
			Assists:  row.Assists,
			Steals:   row.Steals,
			Blocks:   row.Blocks,
		},
	}
}
