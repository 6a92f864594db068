package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/mba-league/mbabot/internal/domain/season"
	"github.com/mba-league/mbabot/internal/usecase"
)

func (b *Bot) handleSetSeason(ctx context.Context, i *discordgo.InteractionCreate) {
	opts := optionsByName(i.ApplicationCommandData().Options)

	item, err := b.stats.SetSeason(ctx, i.GuildID, opts.str("name"))
	if err != nil {
		b.replyError(i, err)
		return
	}

	b.reply(i, fmt.Sprintf("Season **%s** is now active.", item.Name))
}

func (b *Bot) handleAddGame(ctx context.Context, i *discordgo.InteractionCreate) {
	opts := optionsByName(i.ApplicationCommandData().Options)

	game, err := b.stats.AddGame(ctx, usecase.AddGameInput{
		GuildID:   i.GuildID,
		ActorID:   interactionUser(i).ID,
		HomeTeam:  opts.str("home_team"),
		AwayTeam:  opts.str("away_team"),
		HomeScore: opts.integer("home_score"),
		AwayScore: opts.integer("away_score"),
	})
	if err != nil {
		b.replyError(i, err)
		return
	}

	b.reply(i, fmt.Sprintf("Game `%s` recorded, %d — %d.", game.ID, game.HomeScore, game.AwayScore))
}

func (b *Bot) handleAddStats(ctx context.Context, i *discordgo.InteractionCreate) {
	opts := optionsByName(i.ApplicationCommandData().Options)
	playerID := opts.userID("player")

	err := b.stats.AddStats(ctx, usecase.AddStatsInput{
		GuildID:  i.GuildID,
		ActorID:  interactionUser(i).ID,
		GameID:   opts.str("game_id"),
		PlayerID: playerID,
		Line: season.StatLine{
			Points:   opts.integer("points"),
			Rebounds: opts.integer("rebounds"),
			Assists:  opts.integer("assists"),
			Steals:   opts.integer("steals"),
			Blocks:   opts.integer("blocks"),
		},
	})
	if err != nil {
		b.replyError(i, err)
		return
	}

	b.reply(i, fmt.Sprintf("Stat line recorded for <@%s>.", playerID))
}

func (b *Bot) handlePlayerStats(ctx context.Context, i *discordgo.InteractionCreate) {
	opts := optionsByName(i.ApplicationCommandData().Options)
	playerID := opts.userID("player")
	if playerID == "" {
		playerID = interactionUser(i).ID
	}

	averages, err := b.stats.PlayerStats(ctx, i.GuildID, playerID)
	if err != nil {
		b.replyError(i, err)
		return
	}

	b.replyEmbed(i, playerStatsEmbed(playerID, averages))
}

func (b *Bot) handleLeaderboard(ctx context.Context, i *discordgo.InteractionCreate) {
	rows, err := b.stats.Leaderboard(ctx, i.GuildID)
	if err != nil {
		b.replyError(i, err)
		return
	}

	b.replyEmbed(i, leaderboardEmbed(rows))
}

func (b *Bot) handleGameHistory(ctx context.Context, i *discordgo.InteractionCreate) {
	games, err := b.stats.GameHistory(ctx, i.GuildID)
	if err != nil {
		b.replyError(i, err)
		return
	}

	names := make(map[string]string)
	byConference, err := b.teams.ListByConference(ctx, i.GuildID)
	if err == nil {
		for _, teams := range byConference {
			for _, item := range teams {
				names[item.ID] = item.Name
			}
		}
	}

	b.replyEmbed(i, gameHistoryEmbed(games, names))
}
