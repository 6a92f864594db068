package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

func conferenceChoices() []*discordgo.ApplicationCommandOptionChoice {
	return []*discordgo.ApplicationCommandOptionChoice{
		{Name: "Desert", Value: "desert"},
		{Name: "Plains", Value: "plains"},
	}
}

func commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "sign",
			Description: "Sign a free agent to a team",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "player", Description: "Player to sign", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "team", Description: "Team name", Required: true},
			},
		},
		{
			Name:        "release",
			Description: "Release a player to free agency",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "player", Description: "Player to release", Required: true},
			},
		},
		{
			Name:        "demand",
			Description: "Demand your own release (3 per season)",
		},
		{
			Name:        "offer",
			Description: "Offer a contract to a free agent",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "player", Description: "Player to offer", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "team", Description: "Offering team", Required: true},
			},
		},
		{
			Name:        "trade",
			Description: "Propose a player trade between two teams",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "from_team", Description: "Your team", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "to_team", Description: "Counterparty team", Required: true},
				{Type: discordgo.ApplicationCommandOptionUser, Name: "gives", Description: "Player you send", Required: true},
				{Type: discordgo.ApplicationCommandOptionUser, Name: "gets", Description: "Player you receive", Required: true},
			},
		},
		{
			Name:        "promote",
			Description: "Promote a player up the staff ladder",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "player", Description: "Player to promote", Required: true},
			},
		},
		{
			Name:        "demote",
			Description: "Demote a staff member one step",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "player", Description: "Staff member to demote", Required: true},
			},
		},
		{
			Name:        "myteam",
			Description: "Show the roster of your team",
		},
		{
			Name:        "roster",
			Description: "Show a team's roster",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "team", Description: "Team name", Required: true},
			},
		},
		{
			Name:        "gametime",
			Description: "Propose a game time to another team",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "home_team", Description: "Home team", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "away_team", Description: "Away team", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "time", Description: "Start time, UTC (2026-01-30 19:00)", Required: true},
			},
		},
		{
			Name:        "pending",
			Description: "List this guild's pending proposals",
		},
		{
			Name:        "setseason",
			Description: "Activate a season, creating it if needed",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "name", Description: "Season name", Required: true},
			},
		},
		{
			Name:        "addgame",
			Description: "Record a finished game (referee only)",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "home_team", Description: "Home team", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "away_team", Description: "Away team", Required: true},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "home_score", Description: "Home score", Required: true},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "away_score", Description: "Away score", Required: true},
			},
		},
		{
			Name:        "addstats",
			Description: "Record a player's line for a game (referee only)",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "game_id", Description: "Game id", Required: true},
				{Type: discordgo.ApplicationCommandOptionUser, Name: "player", Description: "Player", Required: true},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "points", Description: "Points", Required: true},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "rebounds", Description: "Rebounds", Required: true},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "assists", Description: "Assists", Required: true},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "steals", Description: "Steals", Required: true},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "blocks", Description: "Blocks", Required: true},
			},
		},
		{
			Name:        "playerstats",
			Description: "Show a player's season averages",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "player", Description: "Player (defaults to you)"},
			},
		},
		{
			Name:        "leaderboard",
			Description: "Top 10 scorers this season",
		},
		{
			Name:        "gamehistory",
			Description: "Last 10 games this season",
		},
		{
			Name:        "team",
			Description: "Manage the team registry",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Register a team and bind its role",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "name", Description: "Team name", Required: true},
						{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Team role", Required: true},
						{Type: discordgo.ApplicationCommandOptionString, Name: "conference", Description: "Conference", Required: true, Choices: conferenceChoices()},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Remove a team from the registry",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "name", Description: "Team name", Required: true},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "List teams by conference",
				},
			},
		},
		{
			Name:        "setlogo",
			Description: "Set a team's logo emoji",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "team", Description: "Team name", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "emoji", Description: "Logo emoji", Required: true},
			},
		},
		{
			Name:        "setalllogos",
			Description: "Set logos in bulk (Team=emoji,Team=emoji)",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "mapping", Description: "Comma-separated Team=emoji pairs", Required: true},
			},
		},
		{
			Name:        "setup",
			Description: "Initialize league configuration for this guild",
		},
		{
			Name:        "setrole",
			Description: "Bind a league role",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type: discordgo.ApplicationCommandOptionString, Name: "kind", Description: "Which role to bind", Required: true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Admin", Value: "admin"},
						{Name: "Referee", Value: "referee"},
						{Name: "Free agent", Value: "freeagent"},
						{Name: "Coach", Value: "coach"},
					},
				},
				{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Role", Required: true},
			},
		},
		{
			Name:        "setchannel",
			Description: "Bind a league channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type: discordgo.ApplicationCommandOptionString, Name: "kind", Description: "Which channel to bind", Required: true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Transactions", Value: "transactions"},
						{Name: "Schedule", Value: "schedule"},
						{Name: "Minecraft status", Value: "minecraft"},
					},
				},
				{Type: discordgo.ApplicationCommandOptionChannel, Name: "channel", Description: "Channel", Required: true},
			},
		},
		{
			Name:        "autorole",
			Description: "Toggle a role granted to every new member",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Role to toggle", Required: true},
			},
		},
		{
			Name:        "addineligible",
			Description: "Mark a role as sign-ineligible",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Role", Required: true},
			},
		},
		{
			Name:        "removeineligible",
			Description: "Clear a role's sign-ineligible mark",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Role", Required: true},
			},
		},
		{
			Name:        "setrostercap",
			Description: "Set the per-team roster cap",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "cap", Description: "Players per team", Required: true},
			},
		},
		{
			Name:        "viewconfig",
			Description: "Show the league configuration",
		},
		{
			Name:        "resetdemands",
			Description: "Reset all demand counters (admin only)",
		},
		{
			Name:        "mcstatus",
			Description: "Ping the guild's Minecraft server",
		},
		{
			Name:        "mcupdate",
			Description: "Refresh the Minecraft status message now",
		},
		{
			Name:        "mcserver",
			Description: "Set the guild's Minecraft server",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "address", Description: "host[:port]", Required: true},
				{Type: discordgo.ApplicationCommandOptionChannel, Name: "channel", Description: "Status message channel"},
			},
		},
		{
			Name:        "mclink",
			Description: "Link your Minecraft account",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "username", Description: "Minecraft username", Required: true},
			},
		},
		{
			Name:        "mcunlink",
			Description: "Unlink your Minecraft account",
		},
	}
}

func registerCommands(session *discordgo.Session) error {
	if session.State.User == nil {
		return fmt.Errorf("session has no user, gateway not ready")
	}

	_, err := session.ApplicationCommandBulkOverwrite(session.State.User.ID, "", commandDefinitions())
	if err != nil {
		return fmt.Errorf("register slash commands: %w", err)
	}
	return nil
}
