package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/mba-league/mbabot/internal/domain/team"
	idgen "github.com/mba-league/mbabot/internal/platform/id"
	"github.com/mba-league/mbabot/internal/platform/logging"
)

type AddTeamInput struct {
	GuildID    string
	Name       string
	RoleID     string
	Conference string
}

// TeamService manages the team registry.
type TeamService struct {
	teamRepo team.Repository
	idGen    idgen.Generator
	logger   *logging.Logger
}

func NewTeamService(teamRepo team.Repository, idGen idgen.Generator, logger *logging.Logger) *TeamService {
	if logger == nil {
		logger = logging.Default()
	}

	return &TeamService{
		teamRepo: teamRepo,
		idGen:    idGen,
		logger:   logger,
	}
}

func (s *TeamService) AddTeam(ctx context.Context, input AddTeamInput) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.AddTeam")
	defer span.End()

	input.GuildID = strings.TrimSpace(input.GuildID)
	input.Name = strings.TrimSpace(input.Name)
	input.RoleID = strings.TrimSpace(input.RoleID)
	conference, err := team.ParseConference(strings.ToLower(strings.TrimSpace(input.Conference)))
	if err != nil {
		return team.Team{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if _, exists, err := s.teamRepo.GetByName(ctx, input.GuildID, input.Name); err != nil {
		return team.Team{}, fmt.Errorf("get team by name: %w", err)
	} else if exists {
		return team.Team{}, fmt.Errorf("%w: team %s already exists", ErrInvalidInput, input.Name)
	}
	if _, exists, err := s.teamRepo.GetByRole(ctx, input.GuildID, input.RoleID); err != nil {
		return team.Team{}, fmt.Errorf("get team by role: %w", err)
	} else if exists {
		return team.Team{}, fmt.Errorf("%w: role already bound to a team", ErrInvalidInput)
	}

	id, err := s.idGen.NewID()
	if err != nil {
		return team.Team{}, fmt.Errorf("generate team id: %w", err)
	}

	item := team.Team{
		ID:         id,
		GuildID:    input.GuildID,
		Name:       input.Name,
		RoleID:     input.RoleID,
		Conference: conference,
	}
	if err := item.Validate(); err != nil {
		return team.Team{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.teamRepo.Upsert(ctx, item); err != nil {
		return team.Team{}, fmt.Errorf("upsert team: %w", err)
	}

	s.logger.InfoContext(ctx, "team added", "guild_id", input.GuildID, "team_id", item.ID, "name", item.Name)
	return item, nil
}

func (s *TeamService) RemoveTeam(ctx context.Context, guildID, name string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.RemoveTeam")
	defer span.End()

	guildID = strings.TrimSpace(guildID)
	name = strings.TrimSpace(name)
	if guildID == "" || name == "" {
		return fmt.Errorf("%w: guild_id and team are required", ErrInvalidInput)
	}

	item, exists, err := s.teamRepo.GetByName(ctx, guildID, name)
	if err != nil {
		return fmt.Errorf("get team by name: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: team %s", ErrNotFound, name)
	}

	if err := s.teamRepo.Delete(ctx, guildID, item.ID); err != nil {
		return fmt.Errorf("delete team: %w", err)
	}

	s.logger.InfoContext(ctx, "team removed", "guild_id", guildID, "team_id", item.ID)
	return nil
}

// ListByConference groups the guild's teams by conference for display.
func (s *TeamService) ListByConference(ctx context.Context, guildID string) (map[team.Conference][]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.ListByConference")
	defer span.End()

	guildID = strings.TrimSpace(guildID)
	if guildID == "" {
		return nil, fmt.Errorf("%w: guild id is required", ErrInvalidInput)
	}

	teams, err := s.teamRepo.ListByGuild(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	out := make(map[team.Conference][]team.Team, 2)
	for _, t := range teams {
		out[t.Conference] = append(out[t.Conference], t)
	}

	return out, nil
}

// SetLogo stores a logo emoji on one team.
func (s *TeamService) SetLogo(ctx context.Context, guildID, name, emoji string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.SetLogo")
	defer span.End()

	guildID = strings.TrimSpace(guildID)
	name = strings.TrimSpace(name)
	emoji = strings.TrimSpace(emoji)
	if guildID == "" || name == "" || emoji == "" {
		return fmt.Errorf("%w: guild_id, team and emoji are required", ErrInvalidInput)
	}

	item, exists, err := s.teamRepo.GetByName(ctx, guildID, name)
	if err != nil {
		return fmt.Errorf("get team by name: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: team %s", ErrNotFound, name)
	}

	item.LogoEmoji = emoji
	if err := s.teamRepo.Upsert(ctx, item); err != nil {
		return fmt.Errorf("upsert team: %w", err)
	}

	return nil
}

// SetAllLogos matches guild emoji names to team names and assigns the
// hits. Returns the number of teams updated.
func (s *TeamService) SetAllLogos(ctx context.Context, guildID string, emojiByName map[string]string) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.SetAllLogos")
	defer span.End()

	guildID = strings.TrimSpace(guildID)
	if guildID == "" {
		return 0, fmt.Errorf("%w: guild id is required", ErrInvalidInput)
	}

	teams, err := s.teamRepo.ListByGuild(ctx, guildID)
	if err != nil {
		return 0, fmt.Errorf("list teams: %w", err)
	}

	normalized := make(map[string]string, len(emojiByName))
	for name, emoji := range emojiByName {
		normalized[normalizeLogoKey(name)] = emoji
	}

	updated := 0
	for _, t := range teams {
		emoji, ok := normalized[normalizeLogoKey(t.Name)]
		if !ok || emoji == t.LogoEmoji {
			continue
		}
		t.LogoEmoji = emoji
		if err := s.teamRepo.Upsert(ctx, t); err != nil {
			return updated, fmt.Errorf("upsert team %s: %w", t.Name, err)
		}
		updated++
	}

	s.logger.InfoContext(ctx, "team logos matched", "guild_id", guildID, "updated", updated)
	return updated, nil
}

// ResolveTeam satisfies the stats service's TeamResolver.
func (s *TeamService) ResolveTeam(ctx context.Context, guildID, name string) (string, string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.ResolveTeam")
	defer span.End()

	name = strings.TrimSpace(name)
	item, exists, err := s.teamRepo.GetByName(ctx, strings.TrimSpace(guildID), name)
	if err != nil {
		return "", "", fmt.Errorf("get team by name: %w", err)
	}
	if !exists {
		return "", "", fmt.Errorf("%w: team %s", ErrNotFound, name)
	}

	return item.ID, item.Name, nil
}

func normalizeLogoKey(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' || r == '_' {
			return -1
		}
		return r
	}, v)
}
