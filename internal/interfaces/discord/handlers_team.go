package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/mba-league/mbabot/internal/usecase"
)

func (b *Bot) handleTeam(ctx context.Context, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		b.replyError(i, usecase.ErrInvalidInput)
		return
	}

	sub := data.Options[0]
	opts := optionsByName(sub.Options)

	switch sub.Name {
	case "add":
		if !b.requireAdmin(ctx, i) {
			return
		}
		item, err := b.teams.AddTeam(ctx, usecase.AddTeamInput{
			GuildID:    i.GuildID,
			Name:       opts.str("name"),
			RoleID:     opts.roleID("role"),
			Conference: opts.str("conference"),
		})
		if err != nil {
			b.replyError(i, err)
			return
		}
		b.reply(i, fmt.Sprintf("Team **%s** registered in the %s conference.", item.Name, conferenceLabel(item.Conference)))
	case "remove":
		if !b.requireAdmin(ctx, i) {
			return
		}
		name := opts.str("name")
		if err := b.teams.RemoveTeam(ctx, i.GuildID, name); err != nil {
			b.replyError(i, err)
			return
		}
		b.reply(i, fmt.Sprintf("Team **%s** removed.", name))
	case "list":
		byConference, err := b.teams.ListByConference(ctx, i.GuildID)
		if err != nil {
			b.replyError(i, err)
			return
		}
		b.replyEmbed(i, teamsEmbed(byConference))
	default:
		b.replyError(i, usecase.ErrInvalidInput)
	}
}

func (b *Bot) handleSetLogo(ctx context.Context, i *discordgo.InteractionCreate) {
	if !b.requireAdmin(ctx, i) {
		return
	}
	opts := optionsByName(i.ApplicationCommandData().Options)

	teamName := opts.str("team")
	if err := b.teams.SetLogo(ctx, i.GuildID, teamName, opts.str("emoji")); err != nil {
		b.replyError(i, err)
		return
	}

	b.reply(i, fmt.Sprintf("Logo set for **%s**.", teamName))
}

// handleSetAllLogos takes "Team=emoji,Team=emoji" and applies every
// pair that names a known team.
func (b *Bot) handleSetAllLogos(ctx context.Context, i *discordgo.InteractionCreate) {
	if !b.requireAdmin(ctx, i) {
		return
	}
	opts := optionsByName(i.ApplicationCommandData().Options)

	emojiByName := make(map[string]string)
	for _, pair := range strings.Split(opts.str("mapping"), ",") {
		name, emoji, found := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		emoji = strings.TrimSpace(emoji)
		if !found || name == "" || emoji == "" {
			continue
		}
		emojiByName[name] = emoji
	}
	if len(emojiByName) == 0 {
		b.reply(i, "No Team=emoji pairs found in the mapping.")
		return
	}

	applied, err := b.teams.SetAllLogos(ctx, i.GuildID, emojiByName)
	if err != nil {
		b.replyError(i, err)
		return
	}

	b.reply(i, fmt.Sprintf("Applied %d of %d logos.", applied, len(emojiByName)))
}
