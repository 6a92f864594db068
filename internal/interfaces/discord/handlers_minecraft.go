package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleMCStatus(ctx context.Context, i *discordgo.InteractionCreate) {
	status, err := b.minecraft.Status(ctx, i.GuildID)
	if err != nil {
		b.replyError(i, err)
		return
	}

	b.replyEmbed(i, serverStatusEmbed(status))
}

// handleMCUpdate republishes the status message immediately instead of
// waiting for the next poll.
func (b *Bot) handleMCUpdate(ctx context.Context, i *discordgo.InteractionCreate) {
	if !b.requireAdmin(ctx, i) {
		return
	}

	settings, err := b.guilds.Settings(ctx, i.GuildID)
	if err != nil {
		b.replyError(i, err)
		return
	}
	if settings.MinecraftAddress == "" || settings.MinecraftChannelID == "" {
		b.reply(i, "Configure the server with /mcserver first.")
		return
	}

	status, err := b.minecraft.Status(ctx, i.GuildID)
	if err != nil {
		b.replyError(i, err)
		return
	}
	if err := b.gateway.PublishStatus(ctx, settings, status); err != nil {
		b.replyError(i, err)
		return
	}

	b.reply(i, "Status message refreshed.")
}

func (b *Bot) handleMCServer(ctx context.Context, i *discordgo.InteractionCreate) {
	if !b.requireAdmin(ctx, i) {
		return
	}
	opts := optionsByName(i.ApplicationCommandData().Options)
	address := opts.str("address")

	if err := b.minecraft.SetServer(ctx, i.GuildID, address, opts.channelID("channel")); err != nil {
		b.replyError(i, err)
		return
	}

	b.reply(i, fmt.Sprintf("Minecraft server set to `%s`.", address))
}

func (b *Bot) handleMCLink(ctx context.Context, i *discordgo.InteractionCreate) {
	opts := optionsByName(i.ApplicationCommandData().Options)

	link, err := b.minecraft.LinkAccount(ctx, i.GuildID, interactionUser(i).ID, opts.str("username"))
	if err != nil {
		b.replyError(i, err)
		return
	}

	b.reply(i, fmt.Sprintf("Linked to **%s** (`%s`).", link.Username, link.UUID))
}

func (b *Bot) handleMCUnlink(ctx context.Context, i *discordgo.InteractionCreate) {
	if err := b.minecraft.Unlink(ctx, i.GuildID, interactionUser(i).ID); err != nil {
		b.replyError(i, err)
		return
	}

	b.reply(i, "Minecraft account unlinked.")
}
