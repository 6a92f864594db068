package minecraft

import "fmt"

// Link ties a Discord user to a Minecraft profile.
type Link struct {
	GuildID  string
	UserID   string
	Username string
	UUID     string
}

func (l Link) Validate() error {
	if l.GuildID == "" {
		return fmt.Errorf("link guild id is required")
	}
	if l.UserID == "" {
		return fmt.Errorf("link user id is required")
	}
	if l.Username == "" {
		return fmt.Errorf("link username is required")
	}

	return nil
}

// ServerStatus is one ping result for a guild's configured server.
type ServerStatus struct {
	Address       string
	Online        bool
	PlayersOnline int
	PlayersMax    int
	Version       string
	MOTD          string
	LatencyMillis int64
}
