package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/mba-league/mbabot/internal/domain/guild"
	qb "github.com/mba-league/mbabot/internal/platform/querybuilder"
)

type GuildRepository struct {
	db *sqlx.DB
}

func NewGuildRepository(db *sqlx.DB) *GuildRepository {
	return &GuildRepository{db: db}
}

func (r *GuildRepository) GetSettings(ctx context.Context, guildID string) (guild.Settings, bool, error) {
	query, args, err := qb.Select("*").From("guild_settings").
		Where(qb.Eq("guild_id", guildID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return guild.Settings{}, false, fmt.Errorf("build get guild settings query: %w", err)
	}

	var row guildSettingsTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return guild.Settings{}, false, nil
		}
		return guild.Settings{}, false, fmt.Errorf("get guild settings: %w", err)
	}

	return settingsFromRow(row), true, nil
}

func (r *GuildRepository) UpsertSettings(ctx context.Context, item guild.Settings) error {
	insertModel := guildSettingsInsertModel{
		GuildID:               item.GuildID,
		TransactionsChannelID: item.TransactionsChannelID,
		ScheduleChannelID:     item.ScheduleChannelID,
		RosterCap:             item.RosterCap,
		FreeAgentRoleID:       item.FreeAgentRoleID,
		CoachRoleIDs:          pq.StringArray(item.CoachRoleIDs),
		AdminRoleID:           item.AdminRoleID,
		RefereeRoleID:         item.RefereeRoleID,
		IneligibleRoleIDs:     pq.StringArray(item.IneligibleRoleIDs),
		AutoroleIDs:           pq.StringArray(item.AutoroleIDs),
		MinecraftAddress:      item.MinecraftAddress,
		MinecraftChannelID:    item.MinecraftChannelID,
		MinecraftMessageID:    item.MinecraftMessageID,
	}
	query, args, err := qb.InsertModel("guild_settings", insertModel, `ON CONFLICT (guild_id)
DO UPDATE SET
    transactions_channel_id = EXCLUDED.transactions_channel_id,
    schedule_channel_id = EXCLUDED.schedule_channel_id,
    roster_cap = EXCLUDED.roster_cap,
    free_agent_role_id = EXCLUDED.free_agent_role_id,
    coach_role_ids = EXCLUDED.coach_role_ids,
    admin_role_id = EXCLUDED.admin_role_id,
    referee_role_id = EXCLUDED.referee_role_id,
    ineligible_role_ids = EXCLUDED.ineligible_role_ids,
    autorole_ids = EXCLUDED.autorole_ids,
    minecraft_address = EXCLUDED.minecraft_address,
    minecraft_channel_id = EXCLUDED.minecraft_channel_id,
    minecraft_message_id = EXCLUDED.minecraft_message_id,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert guild settings query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert guild settings: %w", err)
	}
	return nil
}

func (r *GuildRepository) ListWithMinecraft(ctx context.Context) ([]guild.Settings, error) {
	query, args, err := qb.Select("*").From("guild_settings").
		Where(qb.Expr("minecraft_address <> ''")).
		OrderBy("guild_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list minecraft guilds query: %w", err)
	}

	var rows []guildSettingsTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list minecraft guilds: %w", err)
	}

	out := make([]guild.Settings, 0, len(rows))
	for _, row := range rows {
		out = append(out, settingsFromRow(row))
	}
	return out, nil
}

func settingsFromRow(row guildSettingsTableModel) guild.Settings {
	return guild.Settings{
		GuildID:               row.GuildID,
		TransactionsChannelID: row.TransactionsChannelID,
		ScheduleChannelID:     row.ScheduleChannelID,
		RosterCap:             row.RosterCap,
		FreeAgentRoleID:       row.FreeAgentRoleID,
		CoachRoleIDs:          []string(row.CoachRoleIDs),
		AdminRoleID:           row.AdminRoleID,
		RefereeRoleID:         row.RefereeRoleID,
		IneligibleRoleIDs:     []string(row.IneligibleRoleIDs),
		AutoroleIDs:           []string(row.AutoroleIDs),
		MinecraftAddress:      row.MinecraftAddress,
		MinecraftChannelID:    row.MinecraftChannelID,
		MinecraftMessageID:    row.MinecraftMessageID,
	}
}

type SavedRolesRepository struct {
	db *sqlx.DB
}

func NewSavedRolesRepository(db *sqlx.DB) *SavedRolesRepository {
	return &SavedRolesRepository{db: db}
}

func (r *SavedRolesRepository) Get(ctx context.Context, guildID, userID string) (guild.SavedRoles, bool, error) {
	query, args, err := qb.Select("*").From("saved_roles").
		Where(
			qb.Eq("guild_id", guildID),
			qb.Eq("user_id", userID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return guild.SavedRoles{}, false, fmt.Errorf("build get saved roles query: %w", err)
	}

	var row savedRolesTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return guild.SavedRoles{}, false, nil
		}
		return guild.SavedRoles{}, false, fmt.Errorf("get saved roles: %w", err)
	}

	return guild.SavedRoles{
		GuildID: row.GuildID,
		UserID:  row.UserID,
		RoleIDs: []string(row.RoleIDs),
	}, true, nil
}

func (r *SavedRolesRepository) Upsert(ctx context.Context, item guild.SavedRoles) error {
	insertModel := savedRolesInsertModel{
		GuildID: item.GuildID,
		UserID:  item.UserID,
		RoleIDs: pq.StringArray(item.RoleIDs),
	}
	query, args, err := qb.InsertModel("saved_roles", insertModel, `ON CONFLICT (guild_id, user_id)
DO UPDATE SET
    role_ids = EXCLUDED.role_ids,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert saved roles query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert saved roles: %w", err)
	}
	return nil
}

func (r *SavedRolesRepository) Delete(ctx context.Context, guildID, userID string) error {
	query, args, err := qb.DeleteFrom("saved_roles").
		Where(
			qb.Eq("guild_id", guildID),
			qb.Eq("user_id", userID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete saved roles query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete saved roles: %w", err)
	}
	return nil
}
