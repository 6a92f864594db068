package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/mba-league/mbabot/internal/domain/proposal"
	"github.com/mba-league/mbabot/internal/usecase"
)

const proposalComponentPrefix = "proposal"

// proposalCustomID encodes the resolve action a button carries. DMs
// have no guild context, so the guild id rides in the custom id.
func proposalCustomID(decision proposal.Decision, guildID, proposalID string) string {
	return strings.Join([]string{proposalComponentPrefix, string(decision), guildID, proposalID}, ":")
}

type proposalAction struct {
	Decision   proposal.Decision
	GuildID    string
	ProposalID string
}

func parseProposalCustomID(customID string) (proposalAction, error) {
	parts := strings.Split(customID, ":")
	if len(parts) != 4 || parts[0] != proposalComponentPrefix {
		return proposalAction{}, fmt.Errorf("not a proposal component id: %q", customID)
	}

	decision, err := proposal.ParseDecision(parts[1])
	if err != nil {
		return proposalAction{}, err
	}
	if parts[2] == "" || parts[3] == "" {
		return proposalAction{}, fmt.Errorf("proposal component id missing guild or proposal: %q", customID)
	}

	return proposalAction{
		Decision:   decision,
		GuildID:    parts[2],
		ProposalID: parts[3],
	}, nil
}

func isProposalComponent(customID string) bool {
	return strings.HasPrefix(customID, proposalComponentPrefix+":")
}

// proposalButtons builds the accept/decline row attached to a proposal
// DM. Force sign reports invert the framing: accepting means the
// player confirms the signing was forced.
func proposalButtons(msg usecase.Notification) []discordgo.MessageComponent {
	acceptLabel, acceptStyle := "Accept", discordgo.SuccessButton
	declineLabel := "Decline"
	if msg.Kind == proposal.KindForceSign {
		acceptLabel, acceptStyle = "I was force signed", discordgo.DangerButton
		declineLabel = "Dismiss"
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			&discordgo.Button{
				CustomID: proposalCustomID(proposal.DecisionAccept, msg.GuildID, msg.ProposalID),
				Label:    acceptLabel,
				Style:    acceptStyle,
			},
			&discordgo.Button{
				CustomID: proposalCustomID(proposal.DecisionDecline, msg.GuildID, msg.ProposalID),
				Label:    declineLabel,
				Style:    discordgo.DangerButton,
			},
		}},
	}
}

// withdrawButton is attached per proposal in the pending list so the
// proposer can pull their own proposal back.
func withdrawButton(guildID, proposalID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			&discordgo.Button{
				CustomID: proposalCustomID(proposal.DecisionWithdraw, guildID, proposalID),
				Label:    "Withdraw",
				Style:    discordgo.SecondaryButton,
			},
		}},
	}
}
