package guild

import "fmt"

const DefaultRosterCap = 10

// Settings is a guild's league configuration.
type Settings struct {
	GuildID               string
	TransactionsChannelID string
	ScheduleChannelID     string
	RosterCap             int
	FreeAgentRoleID       string
	CoachRoleIDs          []string
	AdminRoleID           string
	RefereeRoleID         string
	IneligibleRoleIDs     []string
	AutoroleIDs           []string

	MinecraftAddress   string
	MinecraftChannelID string
	MinecraftMessageID string
}

func (s Settings) Validate() error {
	if s.GuildID == "" {
		return fmt.Errorf("settings guild id is required")
	}
	if s.RosterCap < 0 {
		return fmt.Errorf("roster cap cannot be negative")
	}

	return nil
}

// Cap returns the configured roster cap, falling back to the league
// default when unset.
func (s Settings) Cap() int {
	if s.RosterCap > 0 {
		return s.RosterCap
	}
	return DefaultRosterCap
}

// SavedRoles preserves a member's role set across leaving and rejoining
// the guild.
type SavedRoles struct {
	GuildID string
	UserID  string
	RoleIDs []string
}
