package proposal

import (
	"fmt"
	"time"
)

// Kind tags the proposal variant.
type Kind string

const (
	KindOffer     Kind = "offer"
	KindTrade     Kind = "trade"
	KindGametime  Kind = "gametime"
	KindForceSign Kind = "force_sign"
)

// Decision resolves a pending proposal. A resolved proposal is deleted,
// whatever the decision.
type Decision string

const (
	DecisionAccept   Decision = "accept"
	DecisionDecline  Decision = "decline"
	DecisionWithdraw Decision = "withdraw"
)

func ParseDecision(v string) (Decision, error) {
	switch Decision(v) {
	case DecisionAccept, DecisionDecline, DecisionWithdraw:
		return Decision(v), nil
	default:
		return "", fmt.Errorf("unknown decision %q", v)
	}
}

// OfferPayload invites a free agent to join a team.
type OfferPayload struct {
	PlayerID string
	TeamID   string
}

func (p OfferPayload) Validate() error {
	if p.PlayerID == "" {
		return fmt.Errorf("offer player id is required")
	}
	if p.TeamID == "" {
		return fmt.Errorf("offer team id is required")
	}

	return nil
}

// TradePayload swaps one player from each of two teams.
type TradePayload struct {
	FromTeamID string
	ToTeamID   string
	GivesID    string
	GetsID     string
}

func (p TradePayload) Validate() error {
	if p.FromTeamID == "" || p.ToTeamID == "" {
		return fmt.Errorf("trade team ids are required")
	}
	if p.GivesID == "" || p.GetsID == "" {
		return fmt.Errorf("trade player ids are required")
	}
	if p.FromTeamID == p.ToTeamID {
		return fmt.Errorf("trade teams must differ")
	}
	if p.GivesID == p.GetsID {
		return fmt.Errorf("trade players must differ")
	}

	return nil
}

// GametimePayload proposes a scheduled game between two teams.
type GametimePayload struct {
	HomeTeamID string
	AwayTeamID string
	StartsAt   time.Time
}

func (p GametimePayload) Validate() error {
	if p.HomeTeamID == "" || p.AwayTeamID == "" {
		return fmt.Errorf("gametime team ids are required")
	}
	if p.HomeTeamID == p.AwayTeamID {
		return fmt.Errorf("gametime teams must differ")
	}
	if p.StartsAt.IsZero() {
		return fmt.Errorf("gametime start is required")
	}

	return nil
}

// ForceSignPayload lets a directly signed player report the signing as
// non-consensual. Confirming it reverts the membership.
type ForceSignPayload struct {
	PlayerID string
	TeamID   string
}

func (p ForceSignPayload) Validate() error {
	if p.PlayerID == "" {
		return fmt.Errorf("force sign player id is required")
	}
	if p.TeamID == "" {
		return fmt.Errorf("force sign team id is required")
	}

	return nil
}

// Proposal is a pending transaction awaiting resolution. Exactly one
// payload matching Kind must be set.
type Proposal struct {
	ID         string
	GuildID    string
	Kind       Kind
	ProposerID string
	CreatedAt  time.Time
	ExpiresAt  time.Time

	Offer     *OfferPayload
	Trade     *TradePayload
	Gametime  *GametimePayload
	ForceSign *ForceSignPayload
}

func (p Proposal) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("proposal id is required")
	}
	if p.GuildID == "" {
		return fmt.Errorf("proposal guild id is required")
	}
	if p.ProposerID == "" {
		return fmt.Errorf("proposal proposer id is required")
	}

	set := 0
	if p.Offer != nil {
		set++
	}
	if p.Trade != nil {
		set++
	}
	if p.Gametime != nil {
		set++
	}
	if p.ForceSign != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("proposal must carry exactly one payload, has %d", set)
	}

	switch p.Kind {
	case KindOffer:
		if p.Offer == nil {
			return fmt.Errorf("offer proposal is missing its payload")
		}
		return p.Offer.Validate()
	case KindTrade:
		if p.Trade == nil {
			return fmt.Errorf("trade proposal is missing its payload")
		}
		return p.Trade.Validate()
	case KindGametime:
		if p.Gametime == nil {
			return fmt.Errorf("gametime proposal is missing its payload")
		}
		return p.Gametime.Validate()
	case KindForceSign:
		if p.ForceSign == nil {
			return fmt.Errorf("force sign proposal is missing its payload")
		}
		return p.ForceSign.Validate()
	default:
		return fmt.Errorf("unknown proposal kind %q", p.Kind)
	}
}

// ActiveAt reports whether the proposal is still live at the given
// instant. Expired rows are treated as gone even before a sweep removes
// them.
func (p Proposal) ActiveAt(now time.Time) bool {
	return p.ExpiresAt.After(now)
}
