package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/mba-league/mbabot/internal/domain/guild"
	"github.com/mba-league/mbabot/internal/platform/cache"
	"github.com/mba-league/mbabot/internal/platform/logging"
)

// GuildService owns guild settings and member role persistence. Reads
// go through the cache so every command does not hit the store for the
// same settings row.
type GuildService struct {
	guildRepo      guild.Repository
	savedRolesRepo guild.SavedRolesRepository
	settingsCache  *cache.Store
	logger         *logging.Logger
}

func NewGuildService(
	guildRepo guild.Repository,
	savedRolesRepo guild.SavedRolesRepository,
	settingsCache *cache.Store,
	logger *logging.Logger,
) *GuildService {
	if logger == nil {
		logger = logging.Default()
	}

	return &GuildService{
		guildRepo:      guildRepo,
		savedRolesRepo: savedRolesRepo,
		settingsCache:  settingsCache,
		logger:         logger,
	}
}

func settingsCacheKey(guildID string) string {
	return "guild-settings:" + guildID
}

// Settings returns the guild's settings, zero-valued defaults when the
// guild has never been configured.
func (s *GuildService) Settings(ctx context.Context, guildID string) (guild.Settings, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GuildService.Settings")
	defer span.End()

	guildID = strings.TrimSpace(guildID)
	if guildID == "" {
		return guild.Settings{}, fmt.Errorf("%w: guild id is required", ErrInvalidInput)
	}

	load := func(ctx context.Context) (any, error) {
		settings, exists, err := s.guildRepo.GetSettings(ctx, guildID)
		if err != nil {
			return nil, fmt.Errorf("get guild settings: %w", err)
		}
		if !exists {
			settings = guild.Settings{GuildID: guildID}
		}
		return settings, nil
	}

	if s.settingsCache == nil {
		value, err := load(ctx)
		if err != nil {
			return guild.Settings{}, err
		}
		return value.(guild.Settings), nil
	}

	value, err := s.settingsCache.GetOrLoad(ctx, settingsCacheKey(guildID), load)
	if err != nil {
		return guild.Settings{}, err
	}

	return value.(guild.Settings), nil
}

func (s *GuildService) UpdateSettings(ctx context.Context, item guild.Settings) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.GuildService.UpdateSettings")
	defer span.End()

	item.GuildID = strings.TrimSpace(item.GuildID)
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.guildRepo.UpsertSettings(ctx, item); err != nil {
		return fmt.Errorf("upsert guild settings: %w", err)
	}
	if s.settingsCache != nil {
		s.settingsCache.Delete(ctx, settingsCacheKey(item.GuildID))
	}

	s.logger.InfoContext(ctx, "guild settings updated", "guild_id", item.GuildID)
	return nil
}

// SaveMemberRoles snapshots a departing member's roles so they can be
// restored on rejoin.
func (s *GuildService) SaveMemberRoles(ctx context.Context, guildID, userID string, roleIDs []string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.GuildService.SaveMemberRoles")
	defer span.End()

	guildID = strings.TrimSpace(guildID)
	userID = strings.TrimSpace(userID)
	if guildID == "" || userID == "" {
		return fmt.Errorf("%w: guild_id and user_id are required", ErrInvalidInput)
	}
	if len(roleIDs) == 0 {
		return nil
	}

	item := guild.SavedRoles{
		GuildID: guildID,
		UserID:  userID,
		RoleIDs: append([]string(nil), roleIDs...),
	}
	if err := s.savedRolesRepo.Upsert(ctx, item); err != nil {
		return fmt.Errorf("save member roles: %w", err)
	}

	return nil
}

// RestoreMemberRoles returns the roles to grant a rejoining member: the
// saved snapshot plus the guild's autoroles. The snapshot is consumed.
func (s *GuildService) RestoreMemberRoles(ctx context.Context, guildID, userID string) ([]string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GuildService.RestoreMemberRoles")
	defer span.End()

	guildID = strings.TrimSpace(guildID)
	userID = strings.TrimSpace(userID)
	if guildID == "" || userID == "" {
		return nil, fmt.Errorf("%w: guild_id and user_id are required", ErrInvalidInput)
	}

	settings, err := s.Settings(ctx, guildID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	out := make([]string, 0, len(settings.AutoroleIDs))
	for _, roleID := range settings.AutoroleIDs {
		if _, ok := seen[roleID]; ok {
			continue
		}
		seen[roleID] = struct{}{}
		out = append(out, roleID)
	}

	saved, exists, err := s.savedRolesRepo.Get(ctx, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("get saved roles: %w", err)
	}
	if exists {
		for _, roleID := range saved.RoleIDs {
			if _, ok := seen[roleID]; ok {
				continue
			}
			seen[roleID] = struct{}{}
			out = append(out, roleID)
		}
		if err := s.savedRolesRepo.Delete(ctx, guildID, userID); err != nil {
			return nil, fmt.Errorf("delete saved roles: %w", err)
		}
	}

	return out, nil
}
