package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mba-league/mbabot/internal/domain/season"
	idgen "github.com/mba-league/mbabot/internal/platform/id"
	"github.com/mba-league/mbabot/internal/platform/logging"
)

const (
	leaderboardSize = 10
	historySize     = 10
)

type AddGameInput struct {
	GuildID   string
	ActorID   string
	HomeTeam  string
	AwayTeam  string
	HomeScore int
	AwayScore int
}

type AddStatsInput struct {
	GuildID  string
	ActorID  string
	GameID   string
	PlayerID string
	Line     season.StatLine
}

// PlayerAverages is a player's per-game season summary.
type PlayerAverages struct {
	PlayerID    string
	SeasonID    string
	GamesPlayed int
	Totals      season.StatLine
	Points      float64
	Rebounds    float64
	Assists     float64
	Steals      float64
	Blocks      float64
}

// StatsService owns seasons, games and player statistics.
type StatsService struct {
	seasonRepo season.Repository
	gameRepo   season.GameRepository
	statsRepo  season.StatsRepository
	teams      TeamResolver
	referee    RefereeChecker
	idGen      idgen.Generator
	logger     *logging.Logger
	now        func() time.Time
}

// TeamResolver resolves a team name to its id. The roster service's
// team repository satisfies the need; keeping the interface here keeps
// the stats service testable without the registry.
type TeamResolver interface {
	ResolveTeam(ctx context.Context, guildID, name string) (teamID string, teamName string, err error)
}

// RefereeChecker gates game recording to referees and admins.
type RefereeChecker interface {
	IsReferee(ctx context.Context, guildID, userID string) (bool, error)
}

func NewStatsService(
	seasonRepo season.Repository,
	gameRepo season.GameRepository,
	statsRepo season.StatsRepository,
	teams TeamResolver,
	referee RefereeChecker,
	idGen idgen.Generator,
	logger *logging.Logger,
) *StatsService {
	if logger == nil {
		logger = logging.Default()
	}

	return &StatsService{
		seasonRepo: seasonRepo,
		gameRepo:   gameRepo,
		statsRepo:  statsRepo,
		teams:      teams,
		referee:    referee,
		idGen:      idGen,
		logger:     logger,
		now:        time.Now,
	}
}

// SetSeason activates the named season, creating it first when needed.
func (s *StatsService) SetSeason(ctx context.Context, guildID, name string) (season.Season, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.SetSeason")
	defer span.End()

	guildID = strings.TrimSpace(guildID)
	name = strings.TrimSpace(name)
	if guildID == "" || name == "" {
		return season.Season{}, fmt.Errorf("%w: guild_id and season name are required", ErrInvalidInput)
	}

	item, exists, err := s.seasonRepo.GetByName(ctx, guildID, name)
	if err != nil {
		return season.Season{}, fmt.Errorf("get season by name: %w", err)
	}
	if !exists {
		id, err := s.idGen.NewID()
		if err != nil {
			return season.Season{}, fmt.Errorf("generate season id: %w", err)
		}
		item = season.Season{ID: id, GuildID: guildID, Name: name}
		if err := item.Validate(); err != nil {
			return season.Season{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if err := s.seasonRepo.Create(ctx, item); err != nil {
			return season.Season{}, fmt.Errorf("create season: %w", err)
		}
	}

	if err := s.seasonRepo.SetActive(ctx, guildID, item.ID); err != nil {
		return season.Season{}, fmt.Errorf("activate season: %w", err)
	}
	item.Active = true

	s.logger.InfoContext(ctx, "season activated", "guild_id", guildID, "season_id", item.ID, "name", item.Name)
	return item, nil
}

// AddGame records a finished game into the active season. Referee only.
func (s *StatsService) AddGame(ctx context.Context, input AddGameInput) (season.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.AddGame")
	defer span.End()

	input.GuildID = strings.TrimSpace(input.GuildID)
	if input.GuildID == "" {
		return season.Game{}, fmt.Errorf("%w: guild id is required", ErrInvalidInput)
	}
	if input.HomeScore < 0 || input.AwayScore < 0 {
		return season.Game{}, fmt.Errorf("%w: scores cannot be negative", ErrInvalidInput)
	}

	if err := s.requireReferee(ctx, input.GuildID, input.ActorID); err != nil {
		return season.Game{}, err
	}

	active, exists, err := s.seasonRepo.GetActive(ctx, input.GuildID)
	if err != nil {
		return season.Game{}, fmt.Errorf("get active season: %w", err)
	}
	if !exists {
		return season.Game{}, fmt.Errorf("%w: no active season", ErrNotFound)
	}

	homeID, _, err := s.teams.ResolveTeam(ctx, input.GuildID, input.HomeTeam)
	if err != nil {
		return season.Game{}, err
	}
	awayID, _, err := s.teams.ResolveTeam(ctx, input.GuildID, input.AwayTeam)
	if err != nil {
		return season.Game{}, err
	}

	id, err := s.idGen.NewID()
	if err != nil {
		return season.Game{}, fmt.Errorf("generate game id: %w", err)
	}

	item := season.Game{
		ID:         id,
		GuildID:    input.GuildID,
		SeasonID:   active.ID,
		HomeTeamID: homeID,
		AwayTeamID: awayID,
		HomeScore:  input.HomeScore,
		AwayScore:  input.AwayScore,
		PlayedAt:   s.now().UTC(),
	}
	item.WinnerTeamID = item.Winner()
	if err := item.Validate(); err != nil {
		return season.Game{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.gameRepo.Create(ctx, item); err != nil {
		return season.Game{}, fmt.Errorf("create game: %w", err)
	}

	s.logger.InfoContext(ctx, "game recorded",
		"guild_id", input.GuildID,
		"game_id", item.ID,
		"season_id", active.ID,
	)
	return item, nil
}

// AddStats upserts a player's line for one game and moves the season
// totals by the delta, so re-submitting a corrected line never double
// counts.
func (s *StatsService) AddStats(ctx context.Context, input AddStatsInput) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.AddStats")
	defer span.End()

	input.GuildID = strings.TrimSpace(input.GuildID)
	input.GameID = strings.TrimSpace(input.GameID)
	input.PlayerID = strings.TrimSpace(input.PlayerID)
	if input.GuildID == "" || input.GameID == "" || input.PlayerID == "" {
		return fmt.Errorf("%w: guild_id, game_id and player_id are required", ErrInvalidInput)
	}
	if err := input.Line.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.requireReferee(ctx, input.GuildID, input.ActorID); err != nil {
		return err
	}

	game, exists, err := s.gameRepo.GetByID(ctx, input.GuildID, input.GameID)
	if err != nil {
		return fmt.Errorf("get game: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: game %s", ErrNotFound, input.GameID)
	}

	previous, hadLine, err := s.statsRepo.GetGameLine(ctx, input.GuildID, input.GameID, input.PlayerID)
	if err != nil {
		return fmt.Errorf("get game line: %w", err)
	}

	if err := s.statsRepo.UpsertGameLine(ctx, season.PlayerGameStats{
		GuildID:  input.GuildID,
		SeasonID: game.SeasonID,
		GameID:   input.GameID,
		PlayerID: input.PlayerID,
		Line:     input.Line,
	}); err != nil {
		return fmt.Errorf("upsert game line: %w", err)
	}

	totals, _, err := s.statsRepo.GetSeasonTotals(ctx, input.GuildID, game.SeasonID, input.PlayerID)
	if err != nil {
		return fmt.Errorf("get season totals: %w", err)
	}
	totals.GuildID = input.GuildID
	totals.SeasonID = game.SeasonID
	totals.PlayerID = input.PlayerID

	if hadLine {
		totals.Totals = totals.Totals.Sub(previous.Line).Add(input.Line)
	} else {
		totals.Totals = totals.Totals.Add(input.Line)
		totals.GamesPlayed++
	}

	if err := s.statsRepo.UpsertSeasonTotals(ctx, totals); err != nil {
		return fmt.Errorf("upsert season totals: %w", err)
	}

	s.logger.InfoContext(ctx, "stat line recorded",
		"guild_id", input.GuildID,
		"game_id", input.GameID,
		"player_id", input.PlayerID,
		"corrected", hadLine,
	)
	return nil
}

// PlayerStats returns a player's season averages.
func (s *StatsService) PlayerStats(ctx context.Context, guildID, playerID string) (PlayerAverages, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.PlayerStats")
	defer span.End()

	guildID = strings.TrimSpace(guildID)
	playerID = strings.TrimSpace(playerID)
	if guildID == "" || playerID == "" {
		return PlayerAverages{}, fmt.Errorf("%w: guild_id and player_id are required", ErrInvalidInput)
	}

	active, exists, err := s.seasonRepo.GetActive(ctx, guildID)
	if err != nil {
		return PlayerAverages{}, fmt.Errorf("get active season: %w", err)
	}
	if !exists {
		return PlayerAverages{}, fmt.Errorf("%w: no active season", ErrNotFound)
	}

	totals, exists, err := s.statsRepo.GetSeasonTotals(ctx, guildID, active.ID, playerID)
	if err != nil {
		return PlayerAverages{}, fmt.Errorf("get season totals: %w", err)
	}
	if !exists {
		return PlayerAverages{}, fmt.Errorf("%w: no stats for <@%s>", ErrNotFound, playerID)
	}

	points, rebounds, assists, steals, blocks := totals.Averages()
	return PlayerAverages{
		PlayerID:    playerID,
		SeasonID:    active.ID,
		GamesPlayed: totals.GamesPlayed,
		Totals:      totals.Totals,
		Points:      points,
		Rebounds:    rebounds,
		Assists:     assists,
		Steals:      steals,
		Blocks:      blocks,
	}, nil
}

// Leaderboard returns the active season's top scorers by total points.
func (s *StatsService) Leaderboard(ctx context.Context, guildID string) ([]season.PlayerSeasonStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.Leaderboard")
	defer span.End()

	guildID = strings.TrimSpace(guildID)
	if guildID == "" {
		return nil, fmt.Errorf("%w: guild id is required", ErrInvalidInput)
	}

	active, exists, err := s.seasonRepo.GetActive(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("get active season: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: no active season", ErrNotFound)
	}

	items, err := s.statsRepo.TopBySeasonPoints(ctx, guildID, active.ID, leaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("top by season points: %w", err)
	}

	return items, nil
}

// GameHistory returns the active season's most recent games.
func (s *StatsService) GameHistory(ctx context.Context, guildID string) ([]season.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.GameHistory")
	defer span.End()

	guildID = strings.TrimSpace(guildID)
	if guildID == "" {
		return nil, fmt.Errorf("%w: guild id is required", ErrInvalidInput)
	}

	active, exists, err := s.seasonRepo.GetActive(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("get active season: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: no active season", ErrNotFound)
	}

	items, err := s.gameRepo.ListRecent(ctx, guildID, active.ID, historySize)
	if err != nil {
		return nil, fmt.Errorf("list recent games: %w", err)
	}

	return items, nil
}

func (s *StatsService) requireReferee(ctx context.Context, guildID, actorID string) error {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return fmt.Errorf("%w: actor is required", ErrUnauthorized)
	}

	ok, err := s.referee.IsReferee(ctx, guildID, actorID)
	if err != nil {
		return fmt.Errorf("%w: check referee: %v", ErrDependencyUnavailable, err)
	}
	if !ok {
		return fmt.Errorf("%w: referee only", ErrUnauthorized)
	}

	return nil
}
