package postgres

import "time"

type membershipTableModel struct {
	ID       int64     `db:"id"`
	GuildID  string    `db:"guild_id"`
	PlayerID string    `db:"player_id"`
	TeamID   string    `db:"team_public_id"`
	Position string    `db:"position"`
	JoinedAt time.Time `db:"joined_at"`
}

type membershipInsertModel struct {
	GuildID  string    `db:"guild_id"`
	PlayerID string    `db:"player_id"`
	TeamID   string    `db:"team_public_id"`
	Position string    `db:"position"`
	JoinedAt time.Time `db:"joined_at"`
}

type demandInsertModel struct {
	GuildID   string    `db:"guild_id"`
	PlayerID  string    `db:"player_id"`
	SeasonID  string    `db:"season_id"`
	CreatedAt time.Time `db:"created_at"`
}
