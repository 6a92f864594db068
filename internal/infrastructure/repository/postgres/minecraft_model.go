package postgres

import "time"

type minecraftLinkTableModel struct {
	ID        int64     `db:"id"`
	GuildID   string    `db:"guild_id"`
	UserID    string    `db:"user_id"`
	Username  string    `db:"username"`
	UUID      string    `db:"uuid"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type minecraftLinkInsertModel struct {
	GuildID  string `db:"guild_id"`
	UserID   string `db:"user_id"`
	Username string `db:"username"`
	UUID     string `db:"uuid"`
}
