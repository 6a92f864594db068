package discord

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"

	"github.com/mba-league/mbabot/internal/domain/guild"
	"github.com/mba-league/mbabot/internal/domain/minecraft"
	"github.com/mba-league/mbabot/internal/platform/logging"
	"github.com/mba-league/mbabot/internal/usecase"
)

// memberPageSize is the REST page size for role holder scans when the
// member is not in session state.
const memberPageSize = 1000

// Gateway wraps the discordgo session and implements the usecase ports
// that need the chat platform: RoleDirectory, Notifier and
// StatusPublisher.
type Gateway struct {
	session *discordgo.Session
	logger  *logging.Logger
	ready   atomic.Bool

	// onStatusMessage persists the id of a freshly created status
	// message so the poller edits it on the next cycle.
	onStatusMessage func(ctx context.Context, guildID, messageID string) error
}

func NewGateway(token string, logger *logging.Logger) (*Gateway, error) {
	if logger == nil {
		logger = logging.Default()
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMembers |
		discordgo.IntentGuildMessages
	session.StateEnabled = true

	return &Gateway{
		session: session,
		logger:  logger,
	}, nil
}

func (g *Gateway) Session() *discordgo.Session {
	return g.session
}

func (g *Gateway) Open() error {
	if err := g.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	return nil
}

func (g *Gateway) Close() error {
	g.ready.Store(false)
	return g.session.Close()
}

// Ready reports whether the gateway has received the ready event. The
// HTTP bridge refuses to serve until this flips.
func (g *Gateway) Ready() bool {
	return g.ready.Load()
}

func (g *Gateway) setReady(v bool) {
	g.ready.Store(v)
}

// OnStatusMessageCreated registers the callback invoked when
// PublishStatus has to create a new status message.
func (g *Gateway) OnStatusMessageCreated(fn func(ctx context.Context, guildID, messageID string) error) {
	g.onStatusMessage = fn
}

func (g *Gateway) member(ctx context.Context, guildID, userID string) (*discordgo.Member, error) {
	if member, err := g.session.State.Member(guildID, userID); err == nil && member != nil {
		return member, nil
	}

	member, err := g.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch guild member: %w", err)
	}
	return member, nil
}

func (g *Gateway) MemberHasRole(ctx context.Context, guildID, userID, roleID string) (bool, error) {
	member, err := g.member(ctx, guildID, userID)
	if err != nil {
		return false, err
	}

	for _, held := range member.Roles {
		if held == roleID {
			return true, nil
		}
	}
	return false, nil
}

func (g *Gateway) MemberHasAnyRole(ctx context.Context, guildID, userID string, roleIDs []string) (bool, error) {
	if len(roleIDs) == 0 {
		return false, nil
	}

	member, err := g.member(ctx, guildID, userID)
	if err != nil {
		return false, err
	}

	wanted := make(map[string]struct{}, len(roleIDs))
	for _, roleID := range roleIDs {
		wanted[roleID] = struct{}{}
	}
	for _, held := range member.Roles {
		if _, ok := wanted[held]; ok {
			return true, nil
		}
	}
	return false, nil
}

// RoleHolders pages through the guild member list. Large guilds make
// this expensive, which is why roster counting unions it with the
// store instead of relying on it alone.
func (g *Gateway) RoleHolders(ctx context.Context, guildID, roleID string) ([]string, error) {
	holders := make([]string, 0, 16)
	after := ""
	for {
		members, err := g.session.GuildMembers(guildID, after, memberPageSize, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("list guild members: %w", err)
		}
		if len(members) == 0 {
			return holders, nil
		}

		for _, member := range members {
			for _, held := range member.Roles {
				if held == roleID {
					holders = append(holders, member.User.ID)
					break
				}
			}
		}

		if len(members) < memberPageSize {
			return holders, nil
		}
		after = members[len(members)-1].User.ID
	}
}

func (g *Gateway) GrantRole(ctx context.Context, guildID, userID, roleID string) error {
	if err := g.session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("grant role: %w", err)
	}
	return nil
}

func (g *Gateway) RevokeRole(ctx context.Context, guildID, userID, roleID string) error {
	if err := g.session.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("revoke role: %w", err)
	}
	return nil
}

// DirectMessage opens (or reuses) the user's DM channel and delivers
// the notification. Proposal notifications carry accept/decline
// buttons wired back through the interaction router.
func (g *Gateway) DirectMessage(ctx context.Context, userID string, msg usecase.Notification) error {
	channel, err := g.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("open dm channel: %w", err)
	}

	send := &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{notificationEmbed(msg)},
	}
	if msg.ProposalID != "" {
		send.Components = proposalButtons(msg)
	}

	if _, err := g.session.ChannelMessageSendComplex(channel.ID, send, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send dm: %w", err)
	}
	return nil
}

func (g *Gateway) Announce(ctx context.Context, guildID, channelID string, msg usecase.Notification) error {
	if _, err := g.session.ChannelMessageSendEmbed(channelID, notificationEmbed(msg), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("announce to channel: %w", err)
	}
	return nil
}

// PublishStatus edits the guild's status message in place, creating it
// when the guild has none yet (or the old one was deleted).
func (g *Gateway) PublishStatus(ctx context.Context, settings guild.Settings, status minecraft.ServerStatus) error {
	if settings.MinecraftChannelID == "" {
		return fmt.Errorf("no minecraft channel configured for guild %s", settings.GuildID)
	}

	embed := serverStatusEmbed(status)

	if settings.MinecraftMessageID != "" {
		_, err := g.session.ChannelMessageEditEmbed(
			settings.MinecraftChannelID, settings.MinecraftMessageID, embed,
			discordgo.WithContext(ctx),
		)
		if err == nil {
			return nil
		}
		g.logger.WarnContext(ctx, "status message edit failed, recreating",
			"guild_id", settings.GuildID, "message_id", settings.MinecraftMessageID, "error", err)
	}

	created, err := g.session.ChannelMessageSendEmbed(settings.MinecraftChannelID, embed, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("send status message: %w", err)
	}

	if g.onStatusMessage != nil {
		if err := g.onStatusMessage(ctx, settings.GuildID, created.ID); err != nil {
			g.logger.WarnContext(ctx, "persist status message id failed",
				"guild_id", settings.GuildID, "message_id", created.ID, "error", err)
		}
	}
	return nil
}
