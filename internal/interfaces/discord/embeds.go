package discord

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/mba-league/mbabot/internal/domain/guild"
	"github.com/mba-league/mbabot/internal/domain/minecraft"
	"github.com/mba-league/mbabot/internal/domain/proposal"
	"github.com/mba-league/mbabot/internal/domain/roster"
	"github.com/mba-league/mbabot/internal/domain/season"
	"github.com/mba-league/mbabot/internal/domain/team"
	"github.com/mba-league/mbabot/internal/usecase"
)

const (
	colorLeague  = 0xD97706
	colorSuccess = 0x22C55E
	colorDanger  = 0xEF4444
	colorNeutral = 0x64748B
)

func notificationEmbed(msg usecase.Notification) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       msg.Title,
		Description: msg.Body,
		Color:       colorLeague,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
}

func conferenceLabel(c team.Conference) string {
	switch c {
	case team.ConferenceDesert:
		return "Desert"
	case team.ConferencePlains:
		return "Plains"
	default:
		return string(c)
	}
}

func teamLabel(item team.Team) string {
	if item.LogoEmoji != "" {
		return item.LogoEmoji + " " + item.Name
	}
	return item.Name
}

func rosterEmbed(item team.Team, members []roster.Membership) *discordgo.MessageEmbed {
	sorted := make([]roster.Membership, len(members))
	copy(sorted, members)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position.Rank() > sorted[j].Position.Rank()
	})

	var staff, players strings.Builder
	for _, member := range sorted {
		if member.Position == roster.PositionPlayer {
			fmt.Fprintf(&players, "<@%s>\n", member.PlayerID)
			continue
		}
		fmt.Fprintf(&staff, "**%s** <@%s>\n", member.Position, member.PlayerID)
	}
	if staff.Len() == 0 {
		staff.WriteString("None")
	}
	if players.Len() == 0 {
		players.WriteString("None")
	}

	return &discordgo.MessageEmbed{
		Title: teamLabel(item),
		Color: colorLeague,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Staff", Value: staff.String(), Inline: true},
			{Name: "Players", Value: players.String(), Inline: true},
			{Name: "Size", Value: fmt.Sprintf("%d", len(members)), Inline: true},
		},
	}
}

func teamsEmbed(byConference map[team.Conference][]team.Team) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "MBA Teams",
		Color: colorLeague,
	}

	for _, conference := range []team.Conference{team.ConferenceDesert, team.ConferencePlains} {
		teams := byConference[conference]
		var body strings.Builder
		for _, item := range teams {
			body.WriteString(teamLabel(item))
			body.WriteString("\n")
		}
		if body.Len() == 0 {
			body.WriteString("No teams")
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   conferenceLabel(conference) + " Conference",
			Value:  body.String(),
			Inline: true,
		})
	}

	return embed
}

func leaderboardEmbed(rows []season.PlayerSeasonStats) *discordgo.MessageEmbed {
	var body strings.Builder
	for rank, row := range rows {
		fmt.Fprintf(&body, "**%d.** <@%s> — %d pts over %d games\n",
			rank+1, row.PlayerID, row.Totals.Points, row.GamesPlayed)
	}
	if body.Len() == 0 {
		body.WriteString("No stats recorded yet.")
	}

	return &discordgo.MessageEmbed{
		Title:       "Season Leaderboard",
		Description: body.String(),
		Color:       colorLeague,
	}
}

func playerStatsEmbed(playerID string, averages usecase.PlayerAverages) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Season Averages",
		Description: fmt.Sprintf("<@%s> over %d games", playerID, averages.GamesPlayed),
		Color:       colorLeague,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "PPG", Value: fmt.Sprintf("%.1f", averages.Points), Inline: true},
			{Name: "RPG", Value: fmt.Sprintf("%.1f", averages.Rebounds), Inline: true},
			{Name: "APG", Value: fmt.Sprintf("%.1f", averages.Assists), Inline: true},
			{Name: "SPG", Value: fmt.Sprintf("%.1f", averages.Steals), Inline: true},
			{Name: "BPG", Value: fmt.Sprintf("%.1f", averages.Blocks), Inline: true},
		},
	}
}

func gameHistoryEmbed(games []season.Game, teamNames map[string]string) *discordgo.MessageEmbed {
	name := func(teamID string) string {
		if n, ok := teamNames[teamID]; ok {
			return n
		}
		return teamID
	}

	var body strings.Builder
	for _, game := range games {
		fmt.Fprintf(&body, "%s %d — %d %s (<t:%d:d>)\n",
			name(game.HomeTeamID), game.HomeScore, game.AwayScore, name(game.AwayTeamID),
			game.PlayedAt.Unix())
	}
	if body.Len() == 0 {
		body.WriteString("No games recorded yet.")
	}

	return &discordgo.MessageEmbed{
		Title:       "Recent Games",
		Description: body.String(),
		Color:       colorLeague,
	}
}

func serverStatusEmbed(status minecraft.ServerStatus) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:     "Minecraft Server",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if !status.Online {
		embed.Color = colorDanger
		embed.Description = fmt.Sprintf("`%s` is **offline**.", status.Address)
		return embed
	}

	embed.Color = colorSuccess
	embed.Description = fmt.Sprintf("`%s` is **online**.", status.Address)
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Players", Value: fmt.Sprintf("%d / %d", status.PlayersOnline, status.PlayersMax), Inline: true},
		{Name: "Version", Value: status.Version, Inline: true},
		{Name: "Ping", Value: fmt.Sprintf("%d ms", status.LatencyMillis), Inline: true},
	}
	if status.MOTD != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "MOTD", Value: status.MOTD})
	}
	return embed
}

func configEmbed(settings guild.Settings) *discordgo.MessageEmbed {
	role := func(id string) string {
		if id == "" {
			return "not set"
		}
		return "<@&" + id + ">"
	}
	channel := func(id string) string {
		if id == "" {
			return "not set"
		}
		return "<#" + id + ">"
	}
	roleList := func(ids []string) string {
		if len(ids) == 0 {
			return "none"
		}
		out := make([]string, 0, len(ids))
		for _, id := range ids {
			out = append(out, "<@&"+id+">")
		}
		return strings.Join(out, " ")
	}

	capValue := "default (10)"
	if settings.RosterCap > 0 {
		capValue = fmt.Sprintf("%d", settings.RosterCap)
	}
	mcServer := settings.MinecraftAddress
	if mcServer == "" {
		mcServer = "not set"
	}

	return &discordgo.MessageEmbed{
		Title: "League Configuration",
		Color: colorNeutral,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Admin role", Value: role(settings.AdminRoleID), Inline: true},
			{Name: "Referee role", Value: role(settings.RefereeRoleID), Inline: true},
			{Name: "Free agent role", Value: role(settings.FreeAgentRoleID), Inline: true},
			{Name: "Transactions channel", Value: channel(settings.TransactionsChannelID), Inline: true},
			{Name: "Schedule channel", Value: channel(settings.ScheduleChannelID), Inline: true},
			{Name: "Roster cap", Value: capValue, Inline: true},
			{Name: "Coach roles", Value: roleList(settings.CoachRoleIDs)},
			{Name: "Ineligible roles", Value: roleList(settings.IneligibleRoleIDs)},
			{Name: "Autoroles", Value: roleList(settings.AutoroleIDs)},
			{Name: "Minecraft server", Value: mcServer, Inline: true},
			{Name: "Minecraft channel", Value: channel(settings.MinecraftChannelID), Inline: true},
		},
	}
}

func pendingSummary(item proposal.Proposal) string {
	switch item.Kind {
	case proposal.KindOffer:
		return fmt.Sprintf("Offer: <@%s>, expires <t:%d:R>", item.Offer.PlayerID, item.ExpiresAt.Unix())
	case proposal.KindTrade:
		return fmt.Sprintf("Trade: <@%s> for <@%s>, expires <t:%d:R>",
			item.Trade.GivesID, item.Trade.GetsID, item.ExpiresAt.Unix())
	case proposal.KindGametime:
		return fmt.Sprintf("Game: <t:%d:F>, expires <t:%d:R>",
			item.Gametime.StartsAt.Unix(), item.ExpiresAt.Unix())
	case proposal.KindForceSign:
		return fmt.Sprintf("Force sign report: <@%s>, expires <t:%d:R>",
			item.ForceSign.PlayerID, item.ExpiresAt.Unix())
	default:
		return string(item.Kind)
	}
}
