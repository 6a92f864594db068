package roster

import (
	"fmt"
	"time"
)

// Position is a staff rank on a team. Front Office outranks General
// Manager, who outranks Head Coach, who outranks Assistant Coach.
type Position string

const (
	PositionFrontOffice    Position = "FO"
	PositionGeneralManager Position = "GM"
	PositionHeadCoach      Position = "HC"
	PositionAssistantCoach Position = "AC"
	PositionPlayer         Position = "player"
)

// Rank returns the position's place in the hierarchy, highest first.
// PositionPlayer ranks below every staff position.
func (p Position) Rank() int {
	switch p {
	case PositionFrontOffice:
		return 4
	case PositionGeneralManager:
		return 3
	case PositionHeadCoach:
		return 2
	case PositionAssistantCoach:
		return 1
	default:
		return 0
	}
}

func (p Position) IsStaff() bool {
	return p.Rank() > 0
}

// StaffLimit is the number of seats a team has for a staff position.
// Front Office is the team owner seat and is not assigned through
// promotion, so it has no limit here.
func StaffLimit(p Position) int {
	switch p {
	case PositionGeneralManager, PositionHeadCoach:
		return 1
	case PositionAssistantCoach:
		return 2
	default:
		return 0
	}
}

// Membership records that a player belongs to a team.
type Membership struct {
	PlayerID string
	GuildID  string
	TeamID   string
	Position Position
	JoinedAt time.Time
}

func (m Membership) Validate() error {
	if m.PlayerID == "" {
		return fmt.Errorf("membership player id is required")
	}
	if m.GuildID == "" {
		return fmt.Errorf("membership guild id is required")
	}
	if m.TeamID == "" {
		return fmt.Errorf("membership team id is required")
	}

	return nil
}
