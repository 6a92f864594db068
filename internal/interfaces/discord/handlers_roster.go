package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/mba-league/mbabot/internal/usecase"
)

func (b *Bot) handleSign(ctx context.Context, i *discordgo.InteractionCreate) {
	opts := optionsByName(i.ApplicationCommandData().Options)

	actorID := interactionUser(i).ID
	membership, err := b.roster.Sign(ctx, usecase.SignInput{
		GuildID:  i.GuildID,
		ActorID:  actorID,
		PlayerID: opts.userID("player"),
		TeamName: opts.str("team"),
	})
	if err != nil {
		b.replyError(i, err)
		return
	}

	// The player gets a way to report the signing; the sign itself
	// stands even if the report DM cannot be delivered.
	if _, err := b.proposals.OpenForceSignReport(ctx, usecase.ForceSignReportInput{
		GuildID:  i.GuildID,
		ActorID:  actorID,
		PlayerID: membership.PlayerID,
		TeamID:   membership.TeamID,
	}); err != nil {
		b.logger.WarnContext(ctx, "force sign report failed", "guild_id", i.GuildID, "player_id", membership.PlayerID, "error", err)
	}

	b.reply(i, fmt.Sprintf("Signed <@%s>.", membership.PlayerID))
}

func (b *Bot) handleRelease(ctx context.Context, i *discordgo.InteractionCreate) {
	opts := optionsByName(i.ApplicationCommandData().Options)
	playerID := opts.userID("player")

	err := b.roster.Release(ctx, usecase.ReleaseInput{
		GuildID:  i.GuildID,
		ActorID:  interactionUser(i).ID,
		PlayerID: playerID,
	})
	if err != nil {
		b.replyError(i, err)
		return
	}

	b.reply(i, fmt.Sprintf("Released <@%s> to free agency.", playerID))
}

func (b *Bot) handleDemand(ctx context.Context, i *discordgo.InteractionCreate) {
	err := b.roster.Demand(ctx, usecase.DemandInput{
		GuildID:  i.GuildID,
		PlayerID: interactionUser(i).ID,
	})
	if err != nil {
		b.replyError(i, err)
		return
	}

	b.reply(i, "Your release demand went through. You are a free agent.")
}

func (b *Bot) handlePromote(ctx context.Context, i *discordgo.InteractionCreate) {
	opts := optionsByName(i.ApplicationCommandData().Options)
	playerID := opts.userID("player")

	position, err := b.roster.Promote(ctx, usecase.PromoteInput{
		GuildID:  i.GuildID,
		ActorID:  interactionUser(i).ID,
		PlayerID: playerID,
	})
	if err != nil {
		b.replyError(i, err)
		return
	}

	b.reply(i, fmt.Sprintf("<@%s> is now %s.", playerID, position))
}

func (b *Bot) handleDemote(ctx context.Context, i *discordgo.InteractionCreate) {
	opts := optionsByName(i.ApplicationCommandData().Options)
	playerID := opts.userID("player")

	position, err := b.roster.Demote(ctx, usecase.PromoteInput{
		GuildID:  i.GuildID,
		ActorID:  interactionUser(i).ID,
		PlayerID: playerID,
	})
	if err != nil {
		b.replyError(i, err)
		return
	}

	b.reply(i, fmt.Sprintf("<@%s> is now %s.", playerID, position))
}

func (b *Bot) handleResetDemands(ctx context.Context, i *discordgo.InteractionCreate) {
	if err := b.roster.ResetDemands(ctx, i.GuildID, interactionUser(i).ID); err != nil {
		b.replyError(i, err)
		return
	}

	b.reply(i, "Demand counters reset for this guild.")
}

func (b *Bot) handleMyTeam(ctx context.Context, i *discordgo.InteractionCreate) {
	item, err := b.roster.PlayerTeam(ctx, i.GuildID, interactionUser(i).ID)
	if err != nil {
		b.replyError(i, err)
		return
	}

	item, members, err := b.roster.TeamRoster(ctx, i.GuildID, item.Name)
	if err != nil {
		b.replyError(i, err)
		return
	}

	b.replyEmbed(i, rosterEmbed(item, members))
}

func (b *Bot) handleRoster(ctx context.Context, i *discordgo.InteractionCreate) {
	opts := optionsByName(i.ApplicationCommandData().Options)

	item, members, err := b.roster.TeamRoster(ctx, i.GuildID, opts.str("team"))
	if err != nil {
		b.replyError(i, err)
		return
	}

	b.replyEmbed(i, rosterEmbed(item, members))
}
