package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// requireAdmin gates configuration commands: the caller needs either
// Manage Server or the configured admin role. Replies for the caller
// when the check fails.
func (b *Bot) requireAdmin(ctx context.Context, i *discordgo.InteractionCreate) bool {
	if i.Member == nil {
		b.reply(i, "This command only works inside a guild.")
		return false
	}
	if i.Member.Permissions&discordgo.PermissionManageGuild != 0 {
		return true
	}

	settings, err := b.guilds.Settings(ctx, i.GuildID)
	if err == nil && settings.AdminRoleID != "" {
		for _, roleID := range i.Member.Roles {
			if roleID == settings.AdminRoleID {
				return true
			}
		}
	}

	b.reply(i, "You need the league admin role for that.")
	return false
}

// handleSetup persists a settings row for the guild so every later
// config command edits an existing record.
func (b *Bot) handleSetup(ctx context.Context, i *discordgo.InteractionCreate) {
	if !b.requireAdmin(ctx, i) {
		return
	}

	settings, err := b.guilds.Settings(ctx, i.GuildID)
	if err != nil {
		b.replyError(i, err)
		return
	}
	if err := b.guilds.UpdateSettings(ctx, settings); err != nil {
		b.replyError(i, err)
		return
	}

	b.reply(i, "League configuration initialized. Use /setrole, /setchannel and /setrostercap to fill it in, then /viewconfig to review.")
}

func (b *Bot) handleSetRole(ctx context.Context, i *discordgo.InteractionCreate) {
	if !b.requireAdmin(ctx, i) {
		return
	}
	opts := optionsByName(i.ApplicationCommandData().Options)
	kind := opts.str("kind")
	roleID := opts.roleID("role")

	settings, err := b.guilds.Settings(ctx, i.GuildID)
	if err != nil {
		b.replyError(i, err)
		return
	}

	switch kind {
	case "admin":
		settings.AdminRoleID = roleID
	case "referee":
		settings.RefereeRoleID = roleID
	case "freeagent":
		settings.FreeAgentRoleID = roleID
	case "coach":
		settings.CoachRoleIDs = toggleRole(settings.CoachRoleIDs, roleID)
	default:
		b.reply(i, fmt.Sprintf("Unknown role kind %q.", kind))
		return
	}

	if err := b.guilds.UpdateSettings(ctx, settings); err != nil {
		b.replyError(i, err)
		return
	}

	b.reply(i, fmt.Sprintf("%s role updated.", kind))
}

func (b *Bot) handleSetChannel(ctx context.Context, i *discordgo.InteractionCreate) {
	if !b.requireAdmin(ctx, i) {
		return
	}
	opts := optionsByName(i.ApplicationCommandData().Options)
	kind := opts.str("kind")
	channelID := opts.channelID("channel")

	settings, err := b.guilds.Settings(ctx, i.GuildID)
	if err != nil {
		b.replyError(i, err)
		return
	}

	switch kind {
	case "transactions":
		settings.TransactionsChannelID = channelID
	case "schedule":
		settings.ScheduleChannelID = channelID
	case "minecraft":
		settings.MinecraftChannelID = channelID
		settings.MinecraftMessageID = ""
	default:
		b.reply(i, fmt.Sprintf("Unknown channel kind %q.", kind))
		return
	}

	if err := b.guilds.UpdateSettings(ctx, settings); err != nil {
		b.replyError(i, err)
		return
	}

	b.reply(i, fmt.Sprintf("%s channel updated.", kind))
}

func (b *Bot) handleAutorole(ctx context.Context, i *discordgo.InteractionCreate) {
	if !b.requireAdmin(ctx, i) {
		return
	}
	opts := optionsByName(i.ApplicationCommandData().Options)
	roleID := opts.roleID("role")

	settings, err := b.guilds.Settings(ctx, i.GuildID)
	if err != nil {
		b.replyError(i, err)
		return
	}

	before := len(settings.AutoroleIDs)
	settings.AutoroleIDs = toggleRole(settings.AutoroleIDs, roleID)
	if err := b.guilds.UpdateSettings(ctx, settings); err != nil {
		b.replyError(i, err)
		return
	}

	if len(settings.AutoroleIDs) > before {
		b.reply(i, "Autorole added.")
	} else {
		b.reply(i, "Autorole removed.")
	}
}

func (b *Bot) handleAddIneligible(ctx context.Context, i *discordgo.InteractionCreate) {
	b.setIneligible(ctx, i, true)
}

func (b *Bot) handleRemoveIneligible(ctx context.Context, i *discordgo.InteractionCreate) {
	b.setIneligible(ctx, i, false)
}

func (b *Bot) setIneligible(ctx context.Context, i *discordgo.InteractionCreate, add bool) {
	if !b.requireAdmin(ctx, i) {
		return
	}
	opts := optionsByName(i.ApplicationCommandData().Options)
	roleID := opts.roleID("role")

	settings, err := b.guilds.Settings(ctx, i.GuildID)
	if err != nil {
		b.replyError(i, err)
		return
	}

	has := containsRole(settings.IneligibleRoleIDs, roleID)
	if add == has {
		b.reply(i, "No change.")
		return
	}
	settings.IneligibleRoleIDs = toggleRole(settings.IneligibleRoleIDs, roleID)

	if err := b.guilds.UpdateSettings(ctx, settings); err != nil {
		b.replyError(i, err)
		return
	}

	if add {
		b.reply(i, "Role marked sign-ineligible.")
	} else {
		b.reply(i, "Role cleared.")
	}
}

func (b *Bot) handleSetRosterCap(ctx context.Context, i *discordgo.InteractionCreate) {
	if !b.requireAdmin(ctx, i) {
		return
	}
	opts := optionsByName(i.ApplicationCommandData().Options)
	rosterCap := opts.integer("cap")
	if rosterCap < 1 {
		b.reply(i, "The roster cap must be at least 1.")
		return
	}

	settings, err := b.guilds.Settings(ctx, i.GuildID)
	if err != nil {
		b.replyError(i, err)
		return
	}
	settings.RosterCap = rosterCap

	if err := b.guilds.UpdateSettings(ctx, settings); err != nil {
		b.replyError(i, err)
		return
	}

	b.reply(i, fmt.Sprintf("Roster cap set to %d.", rosterCap))
}

func (b *Bot) handleViewConfig(ctx context.Context, i *discordgo.InteractionCreate) {
	if !b.requireAdmin(ctx, i) {
		return
	}

	settings, err := b.guilds.Settings(ctx, i.GuildID)
	if err != nil {
		b.replyError(i, err)
		return
	}

	b.replyEmbed(i, configEmbed(settings))
}

func containsRole(ids []string, roleID string) bool {
	for _, id := range ids {
		if id == roleID {
			return true
		}
	}
	return false
}

// toggleRole adds the role when absent and removes it when present.
func toggleRole(ids []string, roleID string) []string {
	if roleID == "" {
		return ids
	}
	if !containsRole(ids, roleID) {
		return append(ids, roleID)
	}

	out := make([]string, 0, len(ids)-1)
	for _, id := range ids {
		if id != roleID {
			out = append(out, id)
		}
	}
	return out
}
