package postgres

import (
	"time"

	"github.com/lib/pq"
)

type guildSettingsTableModel struct {
	ID                    int64          `db:"id"`
	GuildID               string         `db:"guild_id"`
	TransactionsChannelID string         `db:"transactions_channel_id"`
	ScheduleChannelID     string         `db:"schedule_channel_id"`
	RosterCap             int            `db:"roster_cap"`
	FreeAgentRoleID       string         `db:"free_agent_role_id"`
	CoachRoleIDs          pq.StringArray `db:"coach_role_ids"`
	AdminRoleID           string         `db:"admin_role_id"`
	RefereeRoleID         string         `db:"referee_role_id"`
	IneligibleRoleIDs     pq.StringArray `db:"ineligible_role_ids"`
	AutoroleIDs           pq.StringArray `db:"autorole_ids"`
	MinecraftAddress      string         `db:"minecraft_address"`
	MinecraftChannelID    string         `db:"minecraft_channel_id"`
	MinecraftMessageID    string         `db:"minecraft_message_id"`
	CreatedAt             time.Time      `db:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at"`
}

type guildSettingsInsertModel struct {
	GuildID               string         `db:"guild_id"`
	TransactionsChannelID string         `db:"transactions_channel_id"`
	ScheduleChannelID     string         `db:"schedule_channel_id"`
	RosterCap             int            `db:"roster_cap"`
	FreeAgentRoleID       string         `db:"free_agent_role_id"`
	CoachRoleIDs          pq.StringArray `db:"coach_role_ids"`
	AdminRoleID           string         `db:"admin_role_id"`
	RefereeRoleID         string         `db:"referee_role_id"`
	IneligibleRoleIDs     pq.StringArray `db:"ineligible_role_ids"`
	AutoroleIDs           pq.StringArray `db:"autorole_ids"`
	MinecraftAddress      string         `db:"minecraft_address"`
	MinecraftChannelID    string         `db:"minecraft_channel_id"`
	MinecraftMessageID    string         `db:"minecraft_message_id"`
}

type savedRolesTableModel struct {
	ID        int64          `db:"id"`
	GuildID   string         `db:"guild_id"`
	UserID    string         `db:"user_id"`
	RoleIDs   pq.StringArray `db:"role_ids"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

type savedRolesInsertModel struct {
	GuildID string         `db:"guild_id"`
	UserID  string         `db:"user_id"`
	RoleIDs pq.StringArray `db:"role_ids"`
}
