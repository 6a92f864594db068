package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/mba-league/mbabot/internal/usecase"
)

// gametimeLayout is the wall-clock format coaches type into
// /gametime, interpreted as UTC.
const gametimeLayout = "2006-01-02 15:04"

func (b *Bot) handleOffer(ctx context.Context, i *discordgo.InteractionCreate) {
	opts := optionsByName(i.ApplicationCommandData().Options)

	created, err := b.proposals.ProposeOffer(ctx, usecase.OfferInput{
		GuildID:    i.GuildID,
		ProposerID: interactionUser(i).ID,
		PlayerID:   opts.userID("player"),
		TeamName:   opts.str("team"),
	})
	if err != nil {
		b.replyError(i, err)
		return
	}

	b.reply(i, fmt.Sprintf("Offer sent. It expires <t:%d:R>.", created.ExpiresAt.Unix()))
}

func (b *Bot) handleTrade(ctx context.Context, i *discordgo.InteractionCreate) {
	opts := optionsByName(i.ApplicationCommandData().Options)

	created, err := b.proposals.ProposeTrade(ctx, usecase.TradeInput{
		GuildID:    i.GuildID,
		ProposerID: interactionUser(i).ID,
		FromTeam:   opts.str("from_team"),
		ToTeam:     opts.str("to_team"),
		GivesID:    opts.userID("gives"),
		GetsID:     opts.userID("gets"),
	})
	if err != nil {
		b.replyError(i, err)
		return
	}

	b.reply(i, fmt.Sprintf("Trade proposed to the other team's staff. It expires <t:%d:R>.", created.ExpiresAt.Unix()))
}

func (b *Bot) handleGametime(ctx context.Context, i *discordgo.InteractionCreate) {
	opts := optionsByName(i.ApplicationCommandData().Options)

	raw := strings.TrimSpace(opts.str("time"))
	startsAt, err := time.Parse(gametimeLayout, raw)
	if err != nil {
		b.reply(i, fmt.Sprintf("Could not read %q. Use the form 2026-01-30 19:00 (UTC).", raw))
		return
	}

	created, err := b.proposals.ProposeGametime(ctx, usecase.GametimeInput{
		GuildID:    i.GuildID,
		ProposerID: interactionUser(i).ID,
		HomeTeam:   opts.str("home_team"),
		AwayTeam:   opts.str("away_team"),
		StartsAt:   startsAt.UTC(),
	})
	if err != nil {
		b.replyError(i, err)
		return
	}

	b.reply(i, fmt.Sprintf("Game time proposed for <t:%d:F>.", created.Gametime.StartsAt.Unix()))
}

// handlePending lists this guild's open proposals, each with a
// withdraw button for its proposer.
func (b *Bot) handlePending(ctx context.Context, i *discordgo.InteractionCreate) {
	items, err := b.proposals.ListPending(ctx, i.GuildID)
	if err != nil {
		b.replyError(i, err)
		return
	}
	if len(items) == 0 {
		b.reply(i, "No pending proposals.")
		return
	}

	var body strings.Builder
	components := make([]discordgo.MessageComponent, 0, len(items))
	for _, item := range items {
		fmt.Fprintf(&body, "`%s` by <@%s> — %s\n", item.ID, item.ProposerID, pendingSummary(item))
		// Discord caps action rows per message at five.
		if len(components) < 5 {
			components = append(components, withdrawButton(i.GuildID, item.ID)...)
		}
	}

	err = b.gateway.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    body.String(),
			Components: components,
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.logger.WarnContext(ctx, "pending reply failed", "error", err)
	}
}
