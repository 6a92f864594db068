package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/panjf2000/ants/v2"

	"github.com/mba-league/mbabot/internal/domain/guild"
	"github.com/mba-league/mbabot/internal/domain/minecraft"
	"github.com/mba-league/mbabot/internal/platform/logging"
)

const refreshWorkers = 4

// MinecraftService links players to Minecraft profiles and keeps the
// per-guild server status message fresh.
type MinecraftService struct {
	linkRepo  minecraft.Repository
	guildRepo guild.Repository
	guildSvc  *GuildService
	profiles  ProfileResolver
	pinger    ServerPinger
	publisher StatusPublisher
	logger    *logging.Logger
}

func NewMinecraftService(
	linkRepo minecraft.Repository,
	guildRepo guild.Repository,
	guildSvc *GuildService,
	profiles ProfileResolver,
	pinger ServerPinger,
	publisher StatusPublisher,
	logger *logging.Logger,
) *MinecraftService {
	if logger == nil {
		logger = logging.Default()
	}

	return &MinecraftService{
		linkRepo:  linkRepo,
		guildRepo: guildRepo,
		guildSvc:  guildSvc,
		profiles:  profiles,
		pinger:    pinger,
		publisher: publisher,
		logger:    logger,
	}
}

// LinkAccount resolves the username against the Mojang directory and
// stores the link.
func (s *MinecraftService) LinkAccount(ctx context.Context, guildID, userID, username string) (minecraft.Link, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MinecraftService.LinkAccount")
	defer span.End()

	guildID = strings.TrimSpace(guildID)
	userID = strings.TrimSpace(userID)
	username = strings.TrimSpace(username)
	if guildID == "" || userID == "" || username == "" {
		return minecraft.Link{}, fmt.Errorf("%w: guild_id, user_id and username are required", ErrInvalidInput)
	}

	profile, err := s.profiles.ResolveUsername(ctx, username)
	if err != nil {
		return minecraft.Link{}, fmt.Errorf("%w: resolve minecraft profile: %v", ErrDependencyUnavailable, err)
	}
	if profile.UUID == "" {
		return minecraft.Link{}, fmt.Errorf("%w: minecraft player %s", ErrNotFound, username)
	}

	item := minecraft.Link{
		GuildID:  guildID,
		UserID:   userID,
		Username: profile.Username,
		UUID:     profile.UUID,
	}
	if err := item.Validate(); err != nil {
		return minecraft.Link{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.linkRepo.Upsert(ctx, item); err != nil {
		return minecraft.Link{}, fmt.Errorf("upsert minecraft link: %w", err)
	}

	s.logger.InfoContext(ctx, "minecraft account linked", "guild_id", guildID, "user_id", userID, "username", profile.Username)
	return item, nil
}

func (s *MinecraftService) Unlink(ctx context.Context, guildID, userID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MinecraftService.Unlink")
	defer span.End()

	guildID = strings.TrimSpace(guildID)
	userID = strings.TrimSpace(userID)
	if guildID == "" || userID == "" {
		return fmt.Errorf("%w: guild_id and user_id are required", ErrInvalidInput)
	}

	if err := s.linkRepo.Delete(ctx, guildID, userID); err != nil {
		return fmt.Errorf("delete minecraft link: %w", err)
	}

	return nil
}

// SetServer binds a guild to a server address and the message the
// poller keeps updated.
func (s *MinecraftService) SetServer(ctx context.Context, guildID, address, channelID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MinecraftService.SetServer")
	defer span.End()

	guildID = strings.TrimSpace(guildID)
	address = strings.TrimSpace(address)
	if guildID == "" || address == "" {
		return fmt.Errorf("%w: guild_id and address are required", ErrInvalidInput)
	}

	settings, err := s.guildSvc.Settings(ctx, guildID)
	if err != nil {
		return err
	}
	settings.MinecraftAddress = address
	if channelID = strings.TrimSpace(channelID); channelID != "" {
		settings.MinecraftChannelID = channelID
		settings.MinecraftMessageID = ""
	}

	return s.guildSvc.UpdateSettings(ctx, settings)
}

// Status pings the guild's configured server once.
func (s *MinecraftService) Status(ctx context.Context, guildID string) (minecraft.ServerStatus, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MinecraftService.Status")
	defer span.End()

	settings, err := s.guildSvc.Settings(ctx, strings.TrimSpace(guildID))
	if err != nil {
		return minecraft.ServerStatus{}, err
	}
	if settings.MinecraftAddress == "" {
		return minecraft.ServerStatus{}, fmt.Errorf("%w: no minecraft server configured", ErrNotFound)
	}

	status, err := s.pinger.Ping(ctx, settings.MinecraftAddress)
	if err != nil {
		// Unreachable servers still render, as offline.
		return minecraft.ServerStatus{Address: settings.MinecraftAddress}, nil
	}

	return status, nil
}

// RefreshAll pings every configured guild on a bounded worker pool and
// publishes each result to the guild's status message.
func (s *MinecraftService) RefreshAll(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MinecraftService.RefreshAll")
	defer span.End()

	guilds, err := s.guildRepo.ListWithMinecraft(ctx)
	if err != nil {
		return fmt.Errorf("list minecraft guilds: %w", err)
	}
	if len(guilds) == 0 {
		return nil
	}

	pool, err := ants.NewPool(refreshWorkers)
	if err != nil {
		return fmt.Errorf("create refresh pool: %w", err)
	}
	defer pool.Release()

	done := make(chan struct{}, len(guilds))
	for _, settings := range guilds {
		settings := settings
		submitErr := pool.Submit(func() {
			defer func() { done <- struct{}{} }()
			s.refreshGuild(ctx, settings)
		})
		if submitErr != nil {
			done <- struct{}{}
			s.logger.WarnContext(ctx, "refresh submit failed", "guild_id", settings.GuildID, "error", submitErr)
		}
	}
	for range guilds {
		<-done
	}

	return nil
}

func (s *MinecraftService) refreshGuild(ctx context.Context, settings guild.Settings) {
	status, err := s.pinger.Ping(ctx, settings.MinecraftAddress)
	if err != nil {
		status = minecraft.ServerStatus{Address: settings.MinecraftAddress}
	}

	if err := s.publisher.PublishStatus(ctx, settings, status); err != nil {
		s.logger.WarnContext(ctx, "publish server status failed", "guild_id", settings.GuildID, "error", err)
	}
}
