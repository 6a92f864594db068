package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mba-league/mbabot/internal/domain/minecraft"
	qb "github.com/mba-league/mbabot/internal/platform/querybuilder"
)

type MinecraftRepository struct {
	db *sqlx.DB
}

func NewMinecraftRepository(db *sqlx.DB) *MinecraftRepository {
	return &MinecraftRepository{db: db}
}

func (r *MinecraftRepository) GetByUser(ctx context.Context, guildID, userID string) (minecraft.Link, bool, error) {
	query, args, err := qb.Select("*").From("minecraft_links").
		Where(
			qb.Eq("guild_id", guildID),
			qb.Eq("user_id", userID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return minecraft.Link{}, false, fmt.Errorf("build get minecraft link query: %w", err)
	}

	var row minecraftLinkTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return minecraft.Link{}, false, nil
		}
		return minecraft.Link{}, false, fmt.Errorf("get minecraft link: %w", err)
	}

	return minecraft.Link{
		GuildID:  row.GuildID,
		UserID:   row.UserID,
		Username: row.Username,
		UUID:     row.UUID,
	}, true, nil
}

func (r *MinecraftRepository) Upsert(ctx context.Context, item minecraft.Link) error {
	insertModel := minecraftLinkInsertModel{
		GuildID:  item.GuildID,
		UserID:   item.UserID,
		Username: item.Username,
		UUID:     item.UUID,
	}
	query, args, err := qb.InsertModel("minecraft_links", insertModel, `ON CONFLICT (guild_id, user_id)
DO UPDATE SET
    username = EXCLUDED.username,
    uuid = EXCLUDED.uuid,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert minecraft link query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert minecraft link: %w", err)
	}
	return nil
}

func (r *MinecraftRepository) Delete(ctx context.Context, guildID, userID string) error {
	query, args, err := qb.DeleteFrom("minecraft_links").
		Where(
			qb.Eq("guild_id", guildID),
			qb.Eq("user_id", userID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete minecraft link query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete minecraft link: %w", err)
	}
	return nil
}
