package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mba-league/mbabot/internal/domain/proposal"
	"github.com/mba-league/mbabot/internal/domain/roster"
	"github.com/mba-league/mbabot/internal/domain/season"
	"github.com/mba-league/mbabot/internal/domain/team"
	"github.com/mba-league/mbabot/internal/platform/logging"
)

const maxDemandsPerSeason = 3

// offseasonKey scopes demand counters when no season is active.
const offseasonKey = "offseason"

type SignInput struct {
	GuildID  string
	ActorID  string
	PlayerID string
	TeamName string
}

type ReleaseInput struct {
	GuildID  string
	ActorID  string
	PlayerID string
}

type DemandInput struct {
	GuildID  string
	PlayerID string
}

type PromoteInput struct {
	GuildID  string
	ActorID  string
	PlayerID string
}

// RosterService is the single authority over roster mutation. Every
// path that puts a player on or off a team goes through it, including
// offer acceptance and trade execution.
type RosterService struct {
	rosterRepo roster.Repository
	demandRepo roster.DemandRepository
	teamRepo   team.Repository
	seasonRepo season.Repository
	settings   SettingsReader
	roles      RoleDirectory
	notifier   Notifier
	logger     *logging.Logger
	now        func() time.Time
}

func NewRosterService(
	rosterRepo roster.Repository,
	demandRepo roster.DemandRepository,
	teamRepo team.Repository,
	seasonRepo season.Repository,
	settings SettingsReader,
	roles RoleDirectory,
	notifier Notifier,
	logger *logging.Logger,
) *RosterService {
	if logger == nil {
		logger = logging.Default()
	}

	return &RosterService{
		rosterRepo: rosterRepo,
		demandRepo: demandRepo,
		teamRepo:   teamRepo,
		seasonRepo: seasonRepo,
		settings:   settings,
		roles:      roles,
		notifier:   notifier,
		logger:     logger,
		now:        time.Now,
	}
}

// Sign puts a free agent on a team. The actor must be staff on that
// team or a league admin.
func (s *RosterService) Sign(ctx context.Context, input SignInput) (roster.Membership, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.Sign")
	defer span.End()

	input.GuildID = strings.TrimSpace(input.GuildID)
	input.ActorID = strings.TrimSpace(input.ActorID)
	input.PlayerID = strings.TrimSpace(input.PlayerID)
	input.TeamName = strings.TrimSpace(input.TeamName)
	if input.GuildID == "" || input.PlayerID == "" || input.TeamName == "" {
		return roster.Membership{}, fmt.Errorf("%w: guild_id, player_id and team are required", ErrInvalidInput)
	}

	item, exists, err := s.teamRepo.GetByName(ctx, input.GuildID, input.TeamName)
	if err != nil {
		return roster.Membership{}, fmt.Errorf("get team by name: %w", err)
	}
	if !exists {
		return roster.Membership{}, fmt.Errorf("%w: team %s", ErrNotFound, input.TeamName)
	}

	if err := s.authorizeTeamAction(ctx, input.GuildID, input.ActorID, item.ID); err != nil {
		return roster.Membership{}, err
	}

	return s.signToTeam(ctx, input.GuildID, input.PlayerID, item)
}

// CheckSignable runs the sign preconditions without mutating anything.
// The proposal service uses it before creating an offer.
func (s *RosterService) CheckSignable(ctx context.Context, guildID, playerID, teamID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.CheckSignable")
	defer span.End()

	item, exists, err := s.teamRepo.GetByRole(ctx, guildID, teamID)
	if err != nil {
		return fmt.Errorf("get team: %w", err)
	}
	if !exists {
		if item, exists, err = s.getTeamByID(ctx, guildID, teamID); err != nil {
			return err
		} else if !exists {
			return fmt.Errorf("%w: team %s", ErrNotFound, teamID)
		}
	}

	return s.checkSignable(ctx, guildID, playerID, item)
}

// SignToTeamID is the offer-acceptance entry point: same validation and
// effects as Sign, authorized by the accepted proposal instead of an
// actor.
func (s *RosterService) SignToTeamID(ctx context.Context, guildID, playerID, teamID string) (roster.Membership, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.SignToTeamID")
	defer span.End()

	item, exists, err := s.getTeamByID(ctx, guildID, teamID)
	if err != nil {
		return roster.Membership{}, err
	}
	if !exists {
		return roster.Membership{}, fmt.Errorf("%w: team %s", ErrNotFound, teamID)
	}

	return s.signToTeam(ctx, guildID, playerID, item)
}

func (s *RosterService) signToTeam(ctx context.Context, guildID, playerID string, item team.Team) (roster.Membership, error) {
	if err := s.checkSignable(ctx, guildID, playerID, item); err != nil {
		return roster.Membership{}, err
	}

	membership := roster.Membership{
		PlayerID: playerID,
		GuildID:  guildID,
		TeamID:   item.ID,
		Position: roster.PositionPlayer,
		JoinedAt: s.now().UTC(),
	}
	if err := membership.Validate(); err != nil {
		return roster.Membership{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.rosterRepo.Assign(ctx, membership); err != nil {
		return roster.Membership{}, fmt.Errorf("assign membership: %w", err)
	}
	if err := s.roles.GrantRole(ctx, guildID, playerID, item.RoleID); err != nil {
		if clearErr := s.rosterRepo.Clear(ctx, guildID, playerID); clearErr != nil {
			s.logger.ErrorContext(ctx, "rollback membership failed", "guild_id", guildID, "player_id", playerID, "error", clearErr)
		}
		return roster.Membership{}, fmt.Errorf("%w: grant team role: %v", ErrDependencyUnavailable, err)
	}

	settings, err := s.settings.Settings(ctx, guildID)
	if err != nil {
		return roster.Membership{}, err
	}
	if settings.FreeAgentRoleID != "" {
		if err := s.roles.RevokeRole(ctx, guildID, playerID, settings.FreeAgentRoleID); err != nil {
			s.logger.WarnContext(ctx, "revoke free agent role failed", "guild_id", guildID, "player_id", playerID, "error", err)
		}
	}

	s.announce(ctx, guildID, settings.TransactionsChannelID, Notification{
		Title: "Player Signed",
		Body:  fmt.Sprintf("<@%s> has been signed by %s.", playerID, item.Name),
	})
	if err := s.notifier.DirectMessage(ctx, playerID, Notification{
		Title: "Welcome to " + item.Name,
		Body:  fmt.Sprintf("You have been signed by %s.", item.Name),
	}); err != nil {
		s.logger.WarnContext(ctx, "sign dm failed", "guild_id", guildID, "player_id", playerID, "error", err)
	}

	s.logger.InfoContext(ctx, "player signed",
		"guild_id", guildID,
		"player_id", playerID,
		"team_id", item.ID,
	)

	return membership, nil
}

func (s *RosterService) checkSignable(ctx context.Context, guildID, playerID string, item team.Team) error {
	settings, err := s.settings.Settings(ctx, guildID)
	if err != nil {
		return err
	}

	if len(settings.IneligibleRoleIDs) > 0 {
		ineligible, err := s.roles.MemberHasAnyRole(ctx, guildID, playerID, settings.IneligibleRoleIDs)
		if err != nil {
			return fmt.Errorf("%w: check ineligible roles: %v", ErrDependencyUnavailable, err)
		}
		if ineligible {
			return fmt.Errorf("%w: player <@%s>", ErrIneligible, playerID)
		}
	}

	if err := s.checkFreeAgent(ctx, guildID, playerID); err != nil {
		return err
	}

	count, err := s.rosterSize(ctx, guildID, item)
	if err != nil {
		return err
	}
	if count >= settings.Cap() {
		return fmt.Errorf("%w: %s has %d of %d players", ErrRosterFull, item.Name, count, settings.Cap())
	}

	return nil
}

// checkFreeAgent rejects players already on a team, whether the store
// or the role state says so.
func (s *RosterService) checkFreeAgent(ctx context.Context, guildID, playerID string) error {
	_, exists, err := s.rosterRepo.GetByPlayer(ctx, guildID, playerID)
	if err != nil {
		return fmt.Errorf("get membership: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: <@%s>", ErrAlreadyRostered, playerID)
	}

	teams, err := s.teamRepo.ListByGuild(ctx, guildID)
	if err != nil {
		return fmt.Errorf("list teams: %w", err)
	}
	for _, t := range teams {
		held, err := s.roles.MemberHasRole(ctx, guildID, playerID, t.RoleID)
		if err != nil {
			return fmt.Errorf("%w: check team role: %v", ErrDependencyUnavailable, err)
		}
		if held {
			return fmt.Errorf("%w: <@%s> holds the %s role", ErrAlreadyRostered, playerID, t.Name)
		}
	}

	return nil
}

// rosterSize is the union of stored memberships and team role holders,
// so a drifted role assignment still counts against the cap.
func (s *RosterService) rosterSize(ctx context.Context, guildID string, item team.Team) (int, error) {
	members, err := s.rosterRepo.ListByTeam(ctx, guildID, item.ID)
	if err != nil {
		return 0, fmt.Errorf("list team memberships: %w", err)
	}

	ids := make(map[string]struct{}, len(members))
	for _, m := range members {
		ids[m.PlayerID] = struct{}{}
	}

	holders, err := s.roles.RoleHolders(ctx, guildID, item.RoleID)
	if err != nil {
		return 0, fmt.Errorf("%w: list role holders: %v", ErrDependencyUnavailable, err)
	}
	for _, id := range holders {
		ids[id] = struct{}{}
	}

	return len(ids), nil
}

// Release removes a player from their team and returns them to free
// agency. Actors other than the player must be staff on the team or an
// admin.
func (s *RosterService) Release(ctx context.Context, input ReleaseInput) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.Release")
	defer span.End()

	input.GuildID = strings.TrimSpace(input.GuildID)
	input.PlayerID = strings.TrimSpace(input.PlayerID)
	if input.GuildID == "" || input.PlayerID == "" {
		return fmt.Errorf("%w: guild_id and player_id are required", ErrInvalidInput)
	}

	item, err := s.playerTeam(ctx, input.GuildID, input.PlayerID)
	if err != nil {
		return err
	}

	if input.ActorID != "" && input.ActorID != input.PlayerID {
		if err := s.authorizeTeamAction(ctx, input.GuildID, input.ActorID, item.ID); err != nil {
			return err
		}
	}

	return s.release(ctx, input.GuildID, input.PlayerID, item, "Player Released",
		fmt.Sprintf("<@%s> has been released by %s.", input.PlayerID, item.Name))
}

// Demand is a release initiated by the player, limited to three per
// season.
func (s *RosterService) Demand(ctx context.Context, input DemandInput) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.Demand")
	defer span.End()

	input.GuildID = strings.TrimSpace(input.GuildID)
	input.PlayerID = strings.TrimSpace(input.PlayerID)
	if input.GuildID == "" || input.PlayerID == "" {
		return fmt.Errorf("%w: guild_id and player_id are required", ErrInvalidInput)
	}

	item, err := s.playerTeam(ctx, input.GuildID, input.PlayerID)
	if err != nil {
		return err
	}

	seasonID := s.demandSeasonKey(ctx, input.GuildID)
	count, err := s.demandRepo.CountDemands(ctx, input.GuildID, input.PlayerID, seasonID)
	if err != nil {
		return fmt.Errorf("count demands: %w", err)
	}
	if count >= maxDemandsPerSeason {
		return fmt.Errorf("%w: %d of %d used", ErrDemandLimitReached, count, maxDemandsPerSeason)
	}

	if err := s.demandRepo.RecordDemand(ctx, input.GuildID, input.PlayerID, seasonID); err != nil {
		return fmt.Errorf("record demand: %w", err)
	}

	return s.release(ctx, input.GuildID, input.PlayerID, item, "Release Demanded",
		fmt.Sprintf("<@%s> has demanded a release from %s. (%d/%d this season)",
			input.PlayerID, item.Name, count+1, maxDemandsPerSeason))
}

// ResetDemands clears every demand counter in the guild. Admin only.
func (s *RosterService) ResetDemands(ctx context.Context, guildID, actorID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.ResetDemands")
	defer span.End()

	guildID = strings.TrimSpace(guildID)
	if guildID == "" {
		return fmt.Errorf("%w: guild id is required", ErrInvalidInput)
	}

	if err := s.authorizeAdmin(ctx, guildID, actorID); err != nil {
		return err
	}
	if err := s.demandRepo.ResetDemands(ctx, guildID); err != nil {
		return fmt.Errorf("reset demands: %w", err)
	}

	s.logger.InfoContext(ctx, "demand counters reset", "guild_id", guildID, "actor_id", actorID)
	return nil
}

// RevertForceSign undoes a signing the player reported as
// non-consensual. The player must still be on the reported team, or
// the report is stale.
func (s *RosterService) RevertForceSign(ctx context.Context, guildID, playerID, teamID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.RevertForceSign")
	defer span.End()

	item, err := s.playerTeam(ctx, guildID, playerID)
	if err != nil {
		return err
	}
	if item.ID != teamID {
		return fmt.Errorf("%w: <@%s> is no longer on the reported team", ErrNotRostered, playerID)
	}

	return s.release(ctx, guildID, playerID, item, "Force Sign Reported",
		fmt.Sprintf("<@%s> reported being force signed by %s and has been released.", playerID, item.Name))
}

func (s *RosterService) release(ctx context.Context, guildID, playerID string, item team.Team, title, body string) error {
	if err := s.rosterRepo.Clear(ctx, guildID, playerID); err != nil {
		return fmt.Errorf("clear membership: %w", err)
	}
	if err := s.roles.RevokeRole(ctx, guildID, playerID, item.RoleID); err != nil {
		s.logger.WarnContext(ctx, "revoke team role failed", "guild_id", guildID, "player_id", playerID, "error", err)
	}

	settings, err := s.settings.Settings(ctx, guildID)
	if err != nil {
		return err
	}
	if settings.FreeAgentRoleID != "" {
		if err := s.roles.GrantRole(ctx, guildID, playerID, settings.FreeAgentRoleID); err != nil {
			s.logger.WarnContext(ctx, "grant free agent role failed", "guild_id", guildID, "player_id", playerID, "error", err)
		}
	}

	s.announce(ctx, guildID, settings.TransactionsChannelID, Notification{Title: title, Body: body})
	s.logger.InfoContext(ctx, "player released", "guild_id", guildID, "player_id", playerID, "team_id", item.ID)
	return nil
}

// ValidateTrade checks trade preconditions without mutating anything.
func (s *RosterService) ValidateTrade(ctx context.Context, guildID string, p proposal.TradePayload) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.ValidateTrade")
	defer span.End()

	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTrade, err)
	}

	gives, exists, err := s.rosterRepo.GetByPlayer(ctx, guildID, p.GivesID)
	if err != nil {
		return fmt.Errorf("get membership: %w", err)
	}
	if !exists || gives.TeamID != p.FromTeamID {
		return fmt.Errorf("%w: <@%s> is not on the offering team", ErrInvalidTrade, p.GivesID)
	}

	gets, exists, err := s.rosterRepo.GetByPlayer(ctx, guildID, p.GetsID)
	if err != nil {
		return fmt.Errorf("get membership: %w", err)
	}
	if !exists || gets.TeamID != p.ToTeamID {
		return fmt.Errorf("%w: <@%s> is not on the receiving team", ErrInvalidTrade, p.GetsID)
	}

	if gives.TeamID == gets.TeamID {
		return fmt.Errorf("%w: <@%s> and <@%s>", ErrSameTeam, p.GivesID, p.GetsID)
	}

	return nil
}

// ExecuteTrade swaps the two players between their teams: store first,
// then roles, then the announcement.
func (s *RosterService) ExecuteTrade(ctx context.Context, guildID string, p proposal.TradePayload) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.ExecuteTrade")
	defer span.End()

	if err := s.ValidateTrade(ctx, guildID, p); err != nil {
		return err
	}

	fromTeam, exists, err := s.getTeamByID(ctx, guildID, p.FromTeamID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: team %s", ErrNotFound, p.FromTeamID)
	}
	toTeam, exists, err := s.getTeamByID(ctx, guildID, p.ToTeamID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: team %s", ErrNotFound, p.ToTeamID)
	}

	if err := s.rosterRepo.Swap(ctx, guildID, p.GivesID, p.ToTeamID, p.GetsID, p.FromTeamID); err != nil {
		return fmt.Errorf("swap memberships: %w", err)
	}

	s.swapRoles(ctx, guildID, p.GivesID, fromTeam.RoleID, toTeam.RoleID)
	s.swapRoles(ctx, guildID, p.GetsID, toTeam.RoleID, fromTeam.RoleID)

	settings, err := s.settings.Settings(ctx, guildID)
	if err != nil {
		return err
	}
	s.announce(ctx, guildID, settings.TransactionsChannelID, Notification{
		Title: "Trade Completed",
		Body: fmt.Sprintf("%s trade <@%s> to %s for <@%s>.",
			fromTeam.Name, p.GivesID, toTeam.Name, p.GetsID),
	})

	s.logger.InfoContext(ctx, "trade executed",
		"guild_id", guildID,
		"from_team_id", p.FromTeamID,
		"to_team_id", p.ToTeamID,
	)
	return nil
}

// Promote raises a player one step in the staff hierarchy, subject to
// the per-team seat limits.
func (s *RosterService) Promote(ctx context.Context, input PromoteInput) (roster.Position, error) {
	return s.changePosition(ctx, input, +1)
}

// Demote lowers a player one step in the staff hierarchy.
func (s *RosterService) Demote(ctx context.Context, input PromoteInput) (roster.Position, error) {
	return s.changePosition(ctx, input, -1)
}

func (s *RosterService) changePosition(ctx context.Context, input PromoteInput, direction int) (roster.Position, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.changePosition")
	defer span.End()

	input.GuildID = strings.TrimSpace(input.GuildID)
	input.ActorID = strings.TrimSpace(input.ActorID)
	input.PlayerID = strings.TrimSpace(input.PlayerID)
	if input.GuildID == "" || input.PlayerID == "" {
		return "", fmt.Errorf("%w: guild_id and player_id are required", ErrInvalidInput)
	}

	target, exists, err := s.rosterRepo.GetByPlayer(ctx, input.GuildID, input.PlayerID)
	if err != nil {
		return "", fmt.Errorf("get membership: %w", err)
	}
	if !exists {
		return "", fmt.Errorf("%w: <@%s>", ErrNotRostered, input.PlayerID)
	}

	next, err := nextPosition(target.Position, direction)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.authorizeRankChange(ctx, input, target, next); err != nil {
		return "", err
	}

	if limit := roster.StaffLimit(next); limit > 0 {
		members, err := s.rosterRepo.ListByTeam(ctx, input.GuildID, target.TeamID)
		if err != nil {
			return "", fmt.Errorf("list team memberships: %w", err)
		}
		held := 0
		for _, m := range members {
			if m.Position == next && m.PlayerID != input.PlayerID {
				held++
			}
		}
		if held >= limit {
			return "", fmt.Errorf("%w: team already has %d %s", ErrInvalidInput, held, next)
		}
	}

	if err := s.rosterRepo.SetPosition(ctx, input.GuildID, input.PlayerID, next); err != nil {
		return "", fmt.Errorf("set position: %w", err)
	}

	s.logger.InfoContext(ctx, "position changed",
		"guild_id", input.GuildID,
		"player_id", input.PlayerID,
		"position", string(next),
	)
	return next, nil
}

// authorizeRankChange requires the actor to be an admin or a teammate
// outranking both the target's current and new position.
func (s *RosterService) authorizeRankChange(ctx context.Context, input PromoteInput, target roster.Membership, next roster.Position) error {
	if input.ActorID == "" {
		return fmt.Errorf("%w: actor is required", ErrUnauthorized)
	}

	admin, err := s.isAdmin(ctx, input.GuildID, input.ActorID)
	if err != nil {
		return err
	}
	if admin {
		return nil
	}

	actor, exists, err := s.rosterRepo.GetByPlayer(ctx, input.GuildID, input.ActorID)
	if err != nil {
		return fmt.Errorf("get actor membership: %w", err)
	}
	if !exists || actor.TeamID != target.TeamID {
		return fmt.Errorf("%w: actor is not on the player's team", ErrUnauthorized)
	}
	if actor.Position.Rank() <= target.Position.Rank() || actor.Position.Rank() <= next.Rank() {
		return fmt.Errorf("%w: actor does not outrank the position", ErrUnauthorized)
	}

	return nil
}

func nextPosition(current roster.Position, direction int) (roster.Position, error) {
	ladder := []roster.Position{
		roster.PositionPlayer,
		roster.PositionAssistantCoach,
		roster.PositionHeadCoach,
		roster.PositionGeneralManager,
	}

	idx := -1
	for i, p := range ladder {
		if p == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", fmt.Errorf("position %s cannot be changed", current)
	}

	idx += direction
	if idx < 0 || idx >= len(ladder) {
		return "", fmt.Errorf("no position %s from %s", directionWord(direction), current)
	}

	return ladder[idx], nil
}

func directionWord(direction int) string {
	if direction > 0 {
		return "above"
	}
	return "below"
}

// TeamRoster returns the team and its memberships for display.
func (s *RosterService) TeamRoster(ctx context.Context, guildID, teamName string) (team.Team, []roster.Membership, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.TeamRoster")
	defer span.End()

	guildID = strings.TrimSpace(guildID)
	teamName = strings.TrimSpace(teamName)
	if guildID == "" || teamName == "" {
		return team.Team{}, nil, fmt.Errorf("%w: guild_id and team are required", ErrInvalidInput)
	}

	item, exists, err := s.teamRepo.GetByName(ctx, guildID, teamName)
	if err != nil {
		return team.Team{}, nil, fmt.Errorf("get team by name: %w", err)
	}
	if !exists {
		return team.Team{}, nil, fmt.Errorf("%w: team %s", ErrNotFound, teamName)
	}

	members, err := s.rosterRepo.ListByTeam(ctx, guildID, item.ID)
	if err != nil {
		return team.Team{}, nil, fmt.Errorf("list team memberships: %w", err)
	}

	return item, members, nil
}

// TeamStaff returns the staff member ids of a team, highest rank first.
func (s *RosterService) TeamStaff(ctx context.Context, guildID, teamID string) ([]roster.Membership, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.TeamStaff")
	defer span.End()

	members, err := s.rosterRepo.ListByTeam(ctx, guildID, teamID)
	if err != nil {
		return nil, fmt.Errorf("list team memberships: %w", err)
	}

	out := make([]roster.Membership, 0, 4)
	for _, m := range members {
		if m.Position.IsStaff() {
			out = append(out, m)
		}
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Position.Rank() > out[i].Position.Rank() {
				out[i], out[j] = out[j], out[i]
			}
		}
	}

	return out, nil
}

// swapRoles moves a traded player's team role. Role drift here is
// recoverable, so failures only warn.
func (s *RosterService) swapRoles(ctx context.Context, guildID, playerID, revokeRoleID, grantRoleID string) {
	if err := s.roles.RevokeRole(ctx, guildID, playerID, revokeRoleID); err != nil {
		s.logger.WarnContext(ctx, "revoke team role failed", "guild_id", guildID, "player_id", playerID, "error", err)
	}
	if err := s.roles.GrantRole(ctx, guildID, playerID, grantRoleID); err != nil {
		s.logger.WarnContext(ctx, "grant team role failed", "guild_id", guildID, "player_id", playerID, "error", err)
	}
}

// PlayerTeam returns the team the player currently belongs to, by
// store membership or by held team role.
func (s *RosterService) PlayerTeam(ctx context.Context, guildID, playerID string) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.PlayerTeam")
	defer span.End()

	return s.playerTeam(ctx, guildID, strings.TrimSpace(playerID))
}

func (s *RosterService) playerTeam(ctx context.Context, guildID, playerID string) (team.Team, error) {
	membership, exists, err := s.rosterRepo.GetByPlayer(ctx, guildID, playerID)
	if err != nil {
		return team.Team{}, fmt.Errorf("get membership: %w", err)
	}
	if exists {
		item, found, err := s.getTeamByID(ctx, guildID, membership.TeamID)
		if err != nil {
			return team.Team{}, err
		}
		if found {
			return item, nil
		}
	}

	// Fall back to role state so a drifted role assignment can still be
	// released.
	teams, err := s.teamRepo.ListByGuild(ctx, guildID)
	if err != nil {
		return team.Team{}, fmt.Errorf("list teams: %w", err)
	}
	for _, t := range teams {
		held, err := s.roles.MemberHasRole(ctx, guildID, playerID, t.RoleID)
		if err != nil {
			return team.Team{}, fmt.Errorf("%w: check team role: %v", ErrDependencyUnavailable, err)
		}
		if held {
			return t, nil
		}
	}

	return team.Team{}, fmt.Errorf("%w: <@%s>", ErrNotRostered, playerID)
}

func (s *RosterService) getTeamByID(ctx context.Context, guildID, teamID string) (team.Team, bool, error) {
	teams, err := s.teamRepo.ListByGuild(ctx, guildID)
	if err != nil {
		return team.Team{}, false, fmt.Errorf("list teams: %w", err)
	}
	for _, t := range teams {
		if t.ID == teamID {
			return t, true, nil
		}
	}

	return team.Team{}, false, nil
}

func (s *RosterService) authorizeTeamAction(ctx context.Context, guildID, actorID, teamID string) error {
	if actorID == "" {
		return fmt.Errorf("%w: actor is required", ErrUnauthorized)
	}

	admin, err := s.isAdmin(ctx, guildID, actorID)
	if err != nil {
		return err
	}
	if admin {
		return nil
	}

	actor, exists, err := s.rosterRepo.GetByPlayer(ctx, guildID, actorID)
	if err != nil {
		return fmt.Errorf("get actor membership: %w", err)
	}
	if exists && actor.TeamID == teamID && actor.Position.IsStaff() {
		return nil
	}

	settings, err := s.settings.Settings(ctx, guildID)
	if err != nil {
		return err
	}
	if len(settings.CoachRoleIDs) > 0 {
		coach, err := s.roles.MemberHasAnyRole(ctx, guildID, actorID, settings.CoachRoleIDs)
		if err != nil {
			return fmt.Errorf("%w: check coach roles: %v", ErrDependencyUnavailable, err)
		}
		if coach {
			item, found, err := s.getTeamByID(ctx, guildID, teamID)
			if err != nil {
				return err
			}
			if found {
				held, err := s.roles.MemberHasRole(ctx, guildID, actorID, item.RoleID)
				if err != nil {
					return fmt.Errorf("%w: check team role: %v", ErrDependencyUnavailable, err)
				}
				if held {
					return nil
				}
			}
		}
	}

	return fmt.Errorf("%w: actor <@%s> cannot act for team %s", ErrUnauthorized, actorID, teamID)
}

func (s *RosterService) authorizeAdmin(ctx context.Context, guildID, actorID string) error {
	if actorID == "" {
		return fmt.Errorf("%w: actor is required", ErrUnauthorized)
	}
	admin, err := s.isAdmin(ctx, guildID, actorID)
	if err != nil {
		return err
	}
	if !admin {
		return fmt.Errorf("%w: admin only", ErrUnauthorized)
	}
	return nil
}

func (s *RosterService) isAdmin(ctx context.Context, guildID, actorID string) (bool, error) {
	settings, err := s.settings.Settings(ctx, guildID)
	if err != nil {
		return false, err
	}
	if settings.AdminRoleID == "" {
		return false, nil
	}

	held, err := s.roles.MemberHasRole(ctx, guildID, actorID, settings.AdminRoleID)
	if err != nil {
		return false, fmt.Errorf("%w: check admin role: %v", ErrDependencyUnavailable, err)
	}
	return held, nil
}

func (s *RosterService) demandSeasonKey(ctx context.Context, guildID string) string {
	active, exists, err := s.seasonRepo.GetActive(ctx, guildID)
	if err != nil || !exists {
		return offseasonKey
	}
	return active.ID
}

func (s *RosterService) announce(ctx context.Context, guildID, channelID string, msg Notification) {
	if channelID == "" {
		return
	}
	if err := s.notifier.Announce(ctx, guildID, channelID, msg); err != nil {
		s.logger.WarnContext(ctx, "announce failed", "guild_id", guildID, "channel_id", channelID, "error", err)
	}
}
