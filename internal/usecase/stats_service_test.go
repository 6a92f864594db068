package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mba-league/mbabot/internal/domain/season"
	"github.com/mba-league/mbabot/internal/infrastructure/repository/memory"
	"github.com/mba-league/mbabot/internal/platform/logging"
)

type fakeTeamResolver struct {
	ids map[string]string
}

func (f fakeTeamResolver) ResolveTeam(_ context.Context, _, name string) (string, string, error) {
	id, ok := f.ids[name]
	if !ok {
		return "", "", fmt.Errorf("%w: team %s", ErrNotFound, name)
	}
	return id, name, nil
}

type fakeReferee struct {
	refs map[string]bool
}

func (f fakeReferee) IsReferee(_ context.Context, _, userID string) (bool, error) {
	return f.refs[userID], nil
}

type statsFixture struct {
	service    *StatsService
	seasonRepo *memory.SeasonRepository
	gameRepo   *memory.GameRepository
	statsRepo  *memory.StatsRepository
}

func newStatsFixture(t *testing.T) *statsFixture {
	t.Helper()

	f := &statsFixture{
		seasonRepo: memory.NewSeasonRepository(),
		gameRepo:   memory.NewGameRepository(),
		statsRepo:  memory.NewStatsRepository(),
	}
	f.service = NewStatsService(
		f.seasonRepo,
		f.gameRepo,
		f.statsRepo,
		fakeTeamResolver{ids: map[string]string{
			"Scorpions": "team-scorpions",
			"Bison":     "team-bison",
		}},
		fakeReferee{refs: map[string]bool{"ref-1": true}},
		&seqIDGenerator{prefix: "stats"},
		logging.NewNop(),
	)
	f.service.now = func() time.Time {
		return time.Date(2026, 8, 1, 20, 0, 0, 0, time.UTC)
	}

	return f
}

func (f *statsFixture) addGame(t *testing.T) season.Game {
	t.Helper()

	game, err := f.service.AddGame(t.Context(), AddGameInput{
		GuildID:   testGuildID,
		ActorID:   "ref-1",
		HomeTeam:  "Scorpions",
		AwayTeam:  "Bison",
		HomeScore: 62,
		AwayScore: 58,
	})
	if err != nil {
		t.Fatalf("add game failed: %v", err)
	}
	return game
}

func TestStatsService_SetSeason_CreatesAndSwitches(t *testing.T) {
	f := newStatsFixture(t)

	first, err := f.service.SetSeason(t.Context(), testGuildID, "Season 1")
	if err != nil {
		t.Fatalf("set season failed: %v", err)
	}
	if !first.Active {
		t.Fatal("expected first season active")
	}

	second, err := f.service.SetSeason(t.Context(), testGuildID, "Season 2")
	if err != nil {
		t.Fatalf("set second season failed: %v", err)
	}

	active, exists, _ := f.seasonRepo.GetActive(t.Context(), testGuildID)
	if !exists || active.ID != second.ID {
		t.Fatalf("expected season 2 active, got %+v", active)
	}

	// Switching back reuses the existing record.
	again, err := f.service.SetSeason(t.Context(), testGuildID, "Season 1")
	if err != nil {
		t.Fatalf("set season back failed: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("expected existing season reused, got %s vs %s", again.ID, first.ID)
	}
}

func TestStatsService_AddGame_RefereeOnly(t *testing.T) {
	f := newStatsFixture(t)
	if _, err := f.service.SetSeason(t.Context(), testGuildID, "Season 1"); err != nil {
		t.Fatalf("set season failed: %v", err)
	}

	_, err := f.service.AddGame(t.Context(), AddGameInput{
		GuildID:   testGuildID,
		ActorID:   "random-user",
		HomeTeam:  "Scorpions",
		AwayTeam:  "Bison",
		HomeScore: 50,
		AwayScore: 40,
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestStatsService_AddGame_RequiresActiveSeason(t *testing.T) {
	f := newStatsFixture(t)

	_, err := f.service.AddGame(t.Context(), AddGameInput{
		GuildID:   testGuildID,
		ActorID:   "ref-1",
		HomeTeam:  "Scorpions",
		AwayTeam:  "Bison",
		HomeScore: 50,
		AwayScore: 40,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound without active season, got %v", err)
	}
}

func TestStatsService_AddGame_DerivesWinner(t *testing.T) {
	f := newStatsFixture(t)
	if _, err := f.service.SetSeason(t.Context(), testGuildID, "Season 1"); err != nil {
		t.Fatalf("set season failed: %v", err)
	}

	game := f.addGame(t)
	if game.WinnerTeamID != "team-scorpions" {
		t.Fatalf("expected home winner, got %s", game.WinnerTeamID)
	}
}

func TestStatsService_AddStats_CorrectionDoesNotDoubleCount(t *testing.T) {
	f := newStatsFixture(t)
	if _, err := f.service.SetSeason(t.Context(), testGuildID, "Season 1"); err != nil {
		t.Fatalf("set season failed: %v", err)
	}
	game := f.addGame(t)

	if err := f.service.AddStats(t.Context(), AddStatsInput{
		GuildID:  testGuildID,
		ActorID:  "ref-1",
		GameID:   game.ID,
		PlayerID: "player-1",
		Line:     season.StatLine{Points: 20, Rebounds: 5, Assists: 3},
	}); err != nil {
		t.Fatalf("add stats failed: %v", err)
	}

	// Resubmitting a corrected line replaces, not adds.
	if err := f.service.AddStats(t.Context(), AddStatsInput{
		GuildID:  testGuildID,
		ActorID:  "ref-1",
		GameID:   game.ID,
		PlayerID: "player-1",
		Line:     season.StatLine{Points: 22, Rebounds: 5, Assists: 4},
	}); err != nil {
		t.Fatalf("correct stats failed: %v", err)
	}

	stats, err := f.service.PlayerStats(t.Context(), testGuildID, "player-1")
	if err != nil {
		t.Fatalf("player stats failed: %v", err)
	}
	if stats.GamesPlayed != 1 {
		t.Fatalf("expected 1 game played, got %d", stats.GamesPlayed)
	}
	if stats.Totals.Points != 22 || stats.Totals.Assists != 4 {
		t.Fatalf("expected corrected totals, got %+v", stats.Totals)
	}
	if stats.Points != 22 {
		t.Fatalf("expected 22.0 ppg, got %f", stats.Points)
	}
}

func TestStatsService_AddStats_UnknownGame(t *testing.T) {
	f := newStatsFixture(t)
	if _, err := f.service.SetSeason(t.Context(), testGuildID, "Season 1"); err != nil {
		t.Fatalf("set season failed: %v", err)
	}

	err := f.service.AddStats(t.Context(), AddStatsInput{
		GuildID:  testGuildID,
		ActorID:  "ref-1",
		GameID:   "game-missing",
		PlayerID: "player-1",
		Line:     season.StatLine{Points: 10},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStatsService_Leaderboard_OrdersByPoints(t *testing.T) {
	f := newStatsFixture(t)
	if _, err := f.service.SetSeason(t.Context(), testGuildID, "Season 1"); err != nil {
		t.Fatalf("set season failed: %v", err)
	}
	game := f.addGame(t)

	for playerID, points := range map[string]int{
		"player-1": 12,
		"player-2": 30,
		"player-3": 21,
	} {
		if err := f.service.AddStats(t.Context(), AddStatsInput{
			GuildID:  testGuildID,
			ActorID:  "ref-1",
			GameID:   game.ID,
			PlayerID: playerID,
			Line:     season.StatLine{Points: points},
		}); err != nil {
			t.Fatalf("add stats failed: %v", err)
		}
	}

	board, err := f.service.Leaderboard(t.Context(), testGuildID)
	if err != nil {
		t.Fatalf("leaderboard failed: %v", err)
	}
	if len(board) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(board))
	}
	if board[0].PlayerID != "player-2" || board[1].PlayerID != "player-3" || board[2].PlayerID != "player-1" {
		t.Fatalf("unexpected order: %s, %s, %s", board[0].PlayerID, board[1].PlayerID, board[2].PlayerID)
	}
}

func TestStatsService_GameHistory_MostRecentFirst(t *testing.T) {
	f := newStatsFixture(t)
	if _, err := f.service.SetSeason(t.Context(), testGuildID, "Season 1"); err != nil {
		t.Fatalf("set season failed: %v", err)
	}

	base := time.Date(2026, 8, 1, 20, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		played := base.Add(time.Duration(i) * time.Hour)
		f.service.now = func() time.Time { return played }
		f.addGame(t)
	}

	games, err := f.service.GameHistory(t.Context(), testGuildID)
	if err != nil {
		t.Fatalf("game history failed: %v", err)
	}
	if len(games) != 3 {
		t.Fatalf("expected 3 games, got %d", len(games))
	}
	if !games[0].PlayedAt.After(games[1].PlayedAt) || !games[1].PlayedAt.After(games[2].PlayedAt) {
		t.Fatalf("expected newest first, got %v, %v, %v", games[0].PlayedAt, games[1].PlayedAt, games[2].PlayedAt)
	}
}
