package team

import "fmt"

// Conference splits the league into its two divisions.
type Conference string

const (
	ConferenceDesert Conference = "desert"
	ConferencePlains Conference = "plains"
)

func ParseConference(v string) (Conference, error) {
	switch Conference(v) {
	case ConferenceDesert, ConferencePlains:
		return Conference(v), nil
	default:
		return "", fmt.Errorf("unknown conference %q", v)
	}
}

// Team is a league franchise bound to a Discord role.
type Team struct {
	ID         string
	GuildID    string
	Name       string
	RoleID     string
	Conference Conference
	LogoEmoji  string
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.GuildID == "" {
		return fmt.Errorf("team guild id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}
	if t.RoleID == "" {
		return fmt.Errorf("team role id is required")
	}
	if _, err := ParseConference(string(t.Conference)); err != nil {
		return err
	}

	return nil
}
