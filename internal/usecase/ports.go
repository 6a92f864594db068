package usecase

import (
	"context"

	"github.com/mba-league/mbabot/internal/domain/guild"
	"github.com/mba-league/mbabot/internal/domain/minecraft"
	"github.com/mba-league/mbabot/internal/domain/proposal"
)

// RoleDirectory exposes the guild's role state. The Discord gateway
// implements it; tests use an in-memory fake.
type RoleDirectory interface {
	MemberHasRole(ctx context.Context, guildID, userID, roleID string) (bool, error)
	MemberHasAnyRole(ctx context.Context, guildID, userID string, roleIDs []string) (bool, error)
	RoleHolders(ctx context.Context, guildID, roleID string) ([]string, error)
	GrantRole(ctx context.Context, guildID, userID, roleID string) error
	RevokeRole(ctx context.Context, guildID, userID, roleID string) error
}

// Notification is a delivery-agnostic league message. Proposal
// notifications carry the proposal id so the surface can attach
// accept/decline controls.
type Notification struct {
	Title      string
	Body       string
	GuildID    string
	ProposalID string
	Kind       proposal.Kind
}

// Notifier delivers league messages to users and channels.
type Notifier interface {
	DirectMessage(ctx context.Context, userID string, msg Notification) error
	Announce(ctx context.Context, guildID, channelID string, msg Notification) error
}

// SettingsReader hands out guild settings, usually through a cache.
type SettingsReader interface {
	Settings(ctx context.Context, guildID string) (guild.Settings, error)
}

// ProfileResolver resolves a Minecraft username to a profile.
type ProfileResolver interface {
	ResolveUsername(ctx context.Context, username string) (MinecraftProfile, error)
}

type MinecraftProfile struct {
	Username string
	UUID     string
}

// ServerPinger pings a Minecraft server for its live status.
type ServerPinger interface {
	Ping(ctx context.Context, address string) (minecraft.ServerStatus, error)
}

// StatusPublisher renders a server status into the guild's status
// message.
type StatusPublisher interface {
	PublishStatus(ctx context.Context, settings guild.Settings, status minecraft.ServerStatus) error
}
