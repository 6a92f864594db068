package discord

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/mba-league/mbabot/internal/domain/proposal"
	"github.com/mba-league/mbabot/internal/platform/logging"
	"github.com/mba-league/mbabot/internal/usecase"
)

// interactionTimeout bounds the work behind one slash command or
// button press.
const interactionTimeout = 15 * time.Second

type commandHandler func(ctx context.Context, i *discordgo.InteractionCreate)

// Bot routes Discord interactions into the usecase layer.
type Bot struct {
	gateway   *Gateway
	roster    *usecase.RosterService
	proposals *usecase.ProposalService
	teams     *usecase.TeamService
	stats     *usecase.StatsService
	guilds    *usecase.GuildService
	minecraft *usecase.MinecraftService
	logger    *logging.Logger
	handlers  map[string]commandHandler
}

func NewBot(
	gateway *Gateway,
	roster *usecase.RosterService,
	proposals *usecase.ProposalService,
	teams *usecase.TeamService,
	stats *usecase.StatsService,
	guilds *usecase.GuildService,
	minecraft *usecase.MinecraftService,
	logger *logging.Logger,
) *Bot {
	if logger == nil {
		logger = logging.Default()
	}

	b := &Bot{
		gateway:   gateway,
		roster:    roster,
		proposals: proposals,
		teams:     teams,
		stats:     stats,
		guilds:    guilds,
		minecraft: minecraft,
		logger:    logger,
	}
	b.handlers = map[string]commandHandler{
		"sign":             b.handleSign,
		"release":          b.handleRelease,
		"demand":           b.handleDemand,
		"offer":            b.handleOffer,
		"trade":            b.handleTrade,
		"promote":          b.handlePromote,
		"demote":           b.handleDemote,
		"myteam":           b.handleMyTeam,
		"roster":           b.handleRoster,
		"gametime":         b.handleGametime,
		"pending":          b.handlePending,
		"setseason":        b.handleSetSeason,
		"addgame":          b.handleAddGame,
		"addstats":         b.handleAddStats,
		"playerstats":      b.handlePlayerStats,
		"leaderboard":      b.handleLeaderboard,
		"gamehistory":      b.handleGameHistory,
		"team":             b.handleTeam,
		"setlogo":          b.handleSetLogo,
		"setalllogos":      b.handleSetAllLogos,
		"setup":            b.handleSetup,
		"setrole":          b.handleSetRole,
		"setchannel":       b.handleSetChannel,
		"autorole":         b.handleAutorole,
		"addineligible":    b.handleAddIneligible,
		"removeineligible": b.handleRemoveIneligible,
		"setrostercap":     b.handleSetRosterCap,
		"viewconfig":       b.handleViewConfig,
		"resetdemands":     b.handleResetDemands,
		"mcstatus":         b.handleMCStatus,
		"mcupdate":         b.handleMCUpdate,
		"mcserver":         b.handleMCServer,
		"mclink":           b.handleMCLink,
		"mcunlink":         b.handleMCUnlink,
	}
	return b
}

// Run opens the gateway and blocks until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	session := b.gateway.Session()
	session.AddHandler(b.onReady)
	session.AddHandler(b.onInteraction)
	session.AddHandler(b.onGuildMemberAdd)
	session.AddHandler(b.onGuildMemberRemove)

	if err := b.gateway.Open(); err != nil {
		return err
	}

	<-ctx.Done()
	return b.gateway.Close()
}

func (b *Bot) onReady(_ *discordgo.Session, event *discordgo.Ready) {
	if err := registerCommands(b.gateway.Session()); err != nil {
		b.logger.Error("slash command registration failed", "error", err)
	}

	b.gateway.setReady(true)
	b.logger.Info("discord gateway ready",
		"user", event.User.Username, "guilds", len(event.Guilds))
}

func (b *Bot) onInteraction(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		handler, ok := b.handlers[name]
		if !ok {
			b.logger.WarnContext(ctx, "unknown command", "command", name)
			b.replyError(i, usecase.ErrNotFound)
			return
		}
		handler(ctx, i)
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		if isProposalComponent(customID) {
			b.handleProposalComponent(ctx, i, customID)
		}
	}
}

// onGuildMemberRemove snapshots the member's roles so a rejoin can
// restore them.
func (b *Bot) onGuildMemberRemove(_ *discordgo.Session, event *discordgo.GuildMemberRemove) {
	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	member, err := b.gateway.Session().State.Member(event.GuildID, event.User.ID)
	if err != nil || member == nil || len(member.Roles) == 0 {
		return
	}

	if err := b.guilds.SaveMemberRoles(ctx, event.GuildID, event.User.ID, member.Roles); err != nil {
		b.logger.WarnContext(ctx, "save member roles failed",
			"guild_id", event.GuildID, "user_id", event.User.ID, "error", err)
	}
}

// onGuildMemberAdd restores a rejoining member's saved roles and
// applies the guild's autoroles.
func (b *Bot) onGuildMemberAdd(_ *discordgo.Session, event *discordgo.GuildMemberAdd) {
	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	roleIDs, err := b.guilds.RestoreMemberRoles(ctx, event.GuildID, event.User.ID)
	if err != nil {
		b.logger.WarnContext(ctx, "restore member roles failed",
			"guild_id", event.GuildID, "user_id", event.User.ID, "error", err)
		return
	}

	for _, roleID := range roleIDs {
		if err := b.gateway.GrantRole(ctx, event.GuildID, event.User.ID, roleID); err != nil {
			b.logger.WarnContext(ctx, "restore role grant failed",
				"guild_id", event.GuildID, "user_id", event.User.ID, "role_id", roleID, "error", err)
		}
	}
}

func (b *Bot) handleProposalComponent(ctx context.Context, i *discordgo.InteractionCreate, customID string) {
	action, err := parseProposalCustomID(customID)
	if err != nil {
		b.logger.WarnContext(ctx, "bad proposal component", "custom_id", customID, "error", err)
		b.replyError(i, usecase.ErrInvalidInput)
		return
	}

	actorID := interactionUser(i).ID
	if err := b.proposals.Resolve(ctx, action.GuildID, action.ProposalID, action.Decision, actorID); err != nil {
		b.replyError(i, err)
		return
	}

	switch action.Decision {
	case proposal.DecisionAccept:
		b.reply(i, "Accepted.")
	case proposal.DecisionDecline:
		b.reply(i, "Declined.")
	default:
		b.reply(i, "Withdrawn.")
	}
}

func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// reply sends an ephemeral text response.
func (b *Bot) reply(i *discordgo.InteractionCreate, content string) {
	err := b.gateway.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.logger.Warn("interaction reply failed", "error", err)
	}
}

// replyEmbed sends a public embed response.
func (b *Bot) replyEmbed(i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	err := b.gateway.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
	if err != nil {
		b.logger.Warn("interaction embed reply failed", "error", err)
	}
}

// replyError converts a failure into an ephemeral explanatory message.
// Business failures surface their own text, anything else stays
// opaque.
func (b *Bot) replyError(i *discordgo.InteractionCreate, err error) {
	if isBusinessError(err) {
		b.reply(i, err.Error())
		return
	}

	b.logger.Error("command failed unexpectedly", "error", err)
	b.reply(i, "Something went wrong. Try again later.")
}

var businessErrors = []error{
	usecase.ErrInvalidInput,
	usecase.ErrNotFound,
	usecase.ErrUnauthorized,
	usecase.ErrDependencyUnavailable,
	usecase.ErrAlreadyRostered,
	usecase.ErrIneligible,
	usecase.ErrRosterFull,
	usecase.ErrNotRostered,
	usecase.ErrDemandLimitReached,
	usecase.ErrInvalidTrade,
	usecase.ErrSameTeam,
	usecase.ErrDuplicateProposal,
	usecase.ErrDeliveryFailed,
}

func isBusinessError(err error) bool {
	for _, sentinel := range businessErrors {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

type commandOptions map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionsByName(opts []*discordgo.ApplicationCommandInteractionDataOption) commandOptions {
	out := make(commandOptions, len(opts))
	for _, opt := range opts {
		out[opt.Name] = opt
	}
	return out
}

func (o commandOptions) str(name string) string {
	if opt, ok := o[name]; ok {
		return opt.StringValue()
	}
	return ""
}

func (o commandOptions) integer(name string) int {
	if opt, ok := o[name]; ok {
		return int(opt.IntValue())
	}
	return 0
}

func (o commandOptions) userID(name string) string {
	if opt, ok := o[name]; ok {
		if user, okCast := opt.Value.(string); okCast {
			return user
		}
	}
	return ""
}

func (o commandOptions) roleID(name string) string {
	if opt, ok := o[name]; ok {
		if role, okCast := opt.Value.(string); okCast {
			return role
		}
	}
	return ""
}

func (o commandOptions) channelID(name string) string {
	if opt, ok := o[name]; ok {
		if channel, okCast := opt.Value.(string); okCast {
			return channel
		}
	}
	return ""
}
