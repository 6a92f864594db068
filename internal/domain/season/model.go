package season

import (
	"fmt"
	"time"
)

// Season groups games and aggregates. A guild has at most one active
// season at a time.
type Season struct {
	ID      string
	GuildID string
	Name    string
	Active  bool
}

func (s Season) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("season id is required")
	}
	if s.GuildID == "" {
		return fmt.Errorf("season guild id is required")
	}
	if s.Name == "" {
		return fmt.Errorf("season name is required")
	}

	return nil
}

// Game is a finished match between two teams.
type Game struct {
	ID           string
	GuildID      string
	SeasonID     string
	HomeTeamID   string
	AwayTeamID   string
	HomeScore    int
	AwayScore    int
	WinnerTeamID string
	PlayedAt     time.Time
}

func (g Game) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("game id is required")
	}
	if g.SeasonID == "" {
		return fmt.Errorf("game season id is required")
	}
	if g.HomeTeamID == "" || g.AwayTeamID == "" {
		return fmt.Errorf("game team ids are required")
	}
	if g.HomeTeamID == g.AwayTeamID {
		return fmt.Errorf("game teams must differ")
	}
	if g.HomeScore < 0 || g.AwayScore < 0 {
		return fmt.Errorf("game scores cannot be negative")
	}

	return nil
}

// Winner derives the winning team id from the scores. Draws have no
// winner.
func (g Game) Winner() string {
	switch {
	case g.HomeScore > g.AwayScore:
		return g.HomeTeamID
	case g.AwayScore > g.HomeScore:
		return g.AwayTeamID
	default:
		return ""
	}
}

// StatLine is one player's box score, used both per game and as a
// season running total.
type StatLine struct {
	Points   int
	Rebounds int
	Assists  int
	Steals   int
	Blocks   int
}

func (l StatLine) Validate() error {
	if l.Points < 0 || l.Rebounds < 0 || l.Assists < 0 || l.Steals < 0 || l.Blocks < 0 {
		return fmt.Errorf("stat values cannot be negative")
	}

	return nil
}

func (l StatLine) Add(other StatLine) StatLine {
	return StatLine{
		Points:   l.Points + other.Points,
		Rebounds: l.Rebounds + other.Rebounds,
		Assists:  l.Assists + other.Assists,
		Steals:   l.Steals + other.Steals,
		Blocks:   l.Blocks + other.Blocks,
	}
}

func (l StatLine) Sub(other StatLine) StatLine {
	return StatLine{
		Points:   l.Points - other.Points,
		Rebounds: l.Rebounds - other.Rebounds,
		Assists:  l.Assists - other.Assists,
		Steals:   l.Steals - other.Steals,
		Blocks:   l.Blocks - other.Blocks,
	}
}

// PlayerGameStats is a player's line for one game.
type PlayerGameStats struct {
	GuildID  string
	SeasonID string
	GameID   string
	PlayerID string
	Line     StatLine
}

// PlayerSeasonStats is a player's season running total.
type PlayerSeasonStats struct {
	GuildID     string
	SeasonID    string
	PlayerID    string
	GamesPlayed int
	Totals      StatLine
}

// Averages divides the totals by games played, zero when no games.
func (s PlayerSeasonStats) Averages() (points, rebounds, assists, steals, blocks float64) {
	if s.GamesPlayed <= 0 {
		return 0, 0, 0, 0, 0
	}
	n := float64(s.GamesPlayed)
	return float64(s.Totals.Points) / n,
		float64(s.Totals.Rebounds) / n,
		float64(s.Totals.Assists) / n,
		float64(s.Totals.Steals) / n,
		float64(s.Totals.Blocks) / n
}
