package postgres

import (
	"database/sql"
	"time"
)

type teamTableModel struct {
	ID         int64        `db:"id"`
	PublicID   string       `db:"public_id"`
	GuildID    string       `db:"guild_id"`
	Name       string       `db:"name"`
	RoleID     string       `db:"role_id"`
	Conference string       `db:"conference"`
	LogoEmoji  string       `db:"logo_emoji"`
	CreatedAt  time.Time    `db:"created_at"`
	UpdatedAt  time.Time    `db:"updated_at"`
	DeletedAt  sql.NullTime `db:"deleted_at"`
}

type teamInsertModel struct {
	PublicID   string `db:"public_id"`
	GuildID    string `db:"guild_id"`
	Name       string `db:"name"`
	RoleID     string `db:"role_id"`
	Conference string `db:"conference"`
	LogoEmoji  string `db:"logo_emoji"`
}
