package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"

	"github.com/mba-league/mbabot/internal/domain/proposal"
	"github.com/mba-league/mbabot/internal/usecase"
)

func TestProposalCustomIDRoundTrip(t *testing.T) {
	customID := proposalCustomID(proposal.DecisionAccept, "guild-1", "prop-42")
	require.Equal(t, "proposal:accept:guild-1:prop-42", customID)
	require.True(t, isProposalComponent(customID))

	action, err := parseProposalCustomID(customID)
	require.NoError(t, err)
	require.Equal(t, proposal.DecisionAccept, action.Decision)
	require.Equal(t, "guild-1", action.GuildID)
	require.Equal(t, "prop-42", action.ProposalID)
}

func TestParseProposalCustomID_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "wrong prefix", in: "report:accept:guild-1:prop-42"},
		{name: "bad decision", in: "proposal:maybe:guild-1:prop-42"},
		{name: "missing guild", in: "proposal:accept::prop-42"},
		{name: "missing proposal", in: "proposal:accept:guild-1:"},
		{name: "too few parts", in: "proposal:accept:prop-42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseProposalCustomID(tt.in)
			require.Error(t, err)
		})
	}
}

func TestProposalButtons_ForceSignLabels(t *testing.T) {
	rows := proposalButtons(usecase.Notification{
		GuildID:    "guild-1",
		ProposalID: "prop-42",
		Kind:       proposal.KindForceSign,
	})
	require.Len(t, rows, 1)

	row, ok := rows[0].(discordgo.ActionsRow)
	require.True(t, ok)
	require.Len(t, row.Components, 2)

	confirm, ok := row.Components[0].(*discordgo.Button)
	require.True(t, ok)
	require.Equal(t, "I was force signed", confirm.Label)
	require.Equal(t, discordgo.DangerButton, confirm.Style)
	require.Equal(t, "proposal:accept:guild-1:prop-42", confirm.CustomID)

	dismiss, ok := row.Components[1].(*discordgo.Button)
	require.True(t, ok)
	require.Equal(t, "Dismiss", dismiss.Label)
}

func TestIsProposalComponent(t *testing.T) {
	require.True(t, isProposalComponent("proposal:decline:g:p"))
	require.False(t, isProposalComponent("whitelist_modal"))
}
