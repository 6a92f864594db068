package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/mba-league/mbabot/internal/domain/proposal"
	"github.com/mba-league/mbabot/internal/domain/team"
	idgen "github.com/mba-league/mbabot/internal/platform/id"
	"github.com/mba-league/mbabot/internal/platform/logging"
)

// offerTTL bounds every pending proposal; resolution past it fails with
// not found even before the sweeper removes the row.
const offerTTL = 24 * time.Hour

type OfferInput struct {
	GuildID    string
	ProposerID string
	PlayerID   string
	TeamName   string
}

type TradeInput struct {
	GuildID    string
	ProposerID string
	FromTeam   string
	ToTeam     string
	GivesID    string
	GetsID     string
}

type ForceSignReportInput struct {
	GuildID  string
	ActorID  string
	PlayerID string
	TeamID   string
}

type GametimeInput struct {
	GuildID    string
	ProposerID string
	HomeTeam   string
	AwayTeam   string
	StartsAt   time.Time
}

// ProposalService manages the pending transaction lifecycle: create,
// deliver, resolve, sweep. Terminal state is deletion of the record.
type ProposalService struct {
	proposalRepo proposal.Repository
	teamRepo     team.Repository
	rosterSvc    *RosterService
	settings     SettingsReader
	notifier     Notifier
	idGen        idgen.Generator
	logger       *logging.Logger
	now          func() time.Time
}

func NewProposalService(
	proposalRepo proposal.Repository,
	teamRepo team.Repository,
	rosterSvc *RosterService,
	settings SettingsReader,
	notifier Notifier,
	idGen idgen.Generator,
	logger *logging.Logger,
) *ProposalService {
	if logger == nil {
		logger = logging.Default()
	}

	return &ProposalService{
		proposalRepo: proposalRepo,
		teamRepo:     teamRepo,
		rosterSvc:    rosterSvc,
		settings:     settings,
		notifier:     notifier,
		idGen:        idGen,
		logger:       logger,
		now:          time.Now,
	}
}

// ProposeOffer creates a pending contract offer and delivers it to the
// player. A failed delivery removes the record again.
func (s *ProposalService) ProposeOffer(ctx context.Context, input OfferInput) (proposal.Proposal, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProposalService.ProposeOffer")
	defer span.End()

	input.GuildID = strings.TrimSpace(input.GuildID)
	input.ProposerID = strings.TrimSpace(input.ProposerID)
	input.PlayerID = strings.TrimSpace(input.PlayerID)
	input.TeamName = strings.TrimSpace(input.TeamName)
	if input.GuildID == "" || input.ProposerID == "" || input.PlayerID == "" || input.TeamName == "" {
		return proposal.Proposal{}, fmt.Errorf("%w: guild_id, proposer, player and team are required", ErrInvalidInput)
	}

	item, exists, err := s.teamRepo.GetByName(ctx, input.GuildID, input.TeamName)
	if err != nil {
		return proposal.Proposal{}, fmt.Errorf("get team by name: %w", err)
	}
	if !exists {
		return proposal.Proposal{}, fmt.Errorf("%w: team %s", ErrNotFound, input.TeamName)
	}

	// The offer is made in the team's name, so the proposer must be able
	// to act for it.
	if err := s.rosterSvc.authorizeTeamAction(ctx, input.GuildID, input.ProposerID, item.ID); err != nil {
		return proposal.Proposal{}, err
	}

	if err := s.rosterSvc.CheckSignable(ctx, input.GuildID, input.PlayerID, item.ID); err != nil {
		return proposal.Proposal{}, err
	}

	now := s.now().UTC()
	if _, found, err := s.proposalRepo.FindActiveOffer(ctx, input.GuildID, input.PlayerID, item.ID, now); err != nil {
		return proposal.Proposal{}, fmt.Errorf("find active offer: %w", err)
	} else if found {
		return proposal.Proposal{}, fmt.Errorf("%w: offer to <@%s> from %s is still pending", ErrDuplicateProposal, input.PlayerID, item.Name)
	}

	created, err := s.create(ctx, proposal.Proposal{
		GuildID:    input.GuildID,
		Kind:       proposal.KindOffer,
		ProposerID: input.ProposerID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(offerTTL),
		Offer:      &proposal.OfferPayload{PlayerID: input.PlayerID, TeamID: item.ID},
	})
	if err != nil {
		return proposal.Proposal{}, err
	}

	if err := s.notifier.DirectMessage(ctx, input.PlayerID, Notification{
		Title:      "Contract Offer",
		Body:       fmt.Sprintf("%s has offered you a contract. It expires in 24 hours.", item.Name),
		GuildID:    input.GuildID,
		ProposalID: created.ID,
		Kind:       proposal.KindOffer,
	}); err != nil {
		s.deleteQuietly(ctx, created)
		return proposal.Proposal{}, fmt.Errorf("%w: offer dm to <@%s>: %v", ErrDeliveryFailed, input.PlayerID, err)
	}

	s.logger.InfoContext(ctx, "offer proposed",
		"guild_id", input.GuildID,
		"proposal_id", created.ID,
		"player_id", input.PlayerID,
		"team_id", item.ID,
	)
	return created, nil
}

// ProposeTrade creates a pending trade and fans the delivery out to the
// counterparty team's staff. The record survives as long as at least
// one staff member received it.
func (s *ProposalService) ProposeTrade(ctx context.Context, input TradeInput) (proposal.Proposal, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProposalService.ProposeTrade")
	defer span.End()

	input.GuildID = strings.TrimSpace(input.GuildID)
	input.ProposerID = strings.TrimSpace(input.ProposerID)
	if input.GuildID == "" || input.ProposerID == "" {
		return proposal.Proposal{}, fmt.Errorf("%w: guild_id and proposer are required", ErrInvalidInput)
	}

	fromTeam, exists, err := s.teamRepo.GetByName(ctx, input.GuildID, strings.TrimSpace(input.FromTeam))
	if err != nil {
		return proposal.Proposal{}, fmt.Errorf("get team by name: %w", err)
	}
	if !exists {
		return proposal.Proposal{}, fmt.Errorf("%w: team %s", ErrNotFound, input.FromTeam)
	}
	toTeam, exists, err := s.teamRepo.GetByName(ctx, input.GuildID, strings.TrimSpace(input.ToTeam))
	if err != nil {
		return proposal.Proposal{}, fmt.Errorf("get team by name: %w", err)
	}
	if !exists {
		return proposal.Proposal{}, fmt.Errorf("%w: team %s", ErrNotFound, input.ToTeam)
	}

	// The giving team consents through its proposer; the receiving team
	// consents at resolution.
	if err := s.rosterSvc.authorizeTeamAction(ctx, input.GuildID, input.ProposerID, fromTeam.ID); err != nil {
		return proposal.Proposal{}, err
	}

	payload := proposal.TradePayload{
		FromTeamID: fromTeam.ID,
		ToTeamID:   toTeam.ID,
		GivesID:    strings.TrimSpace(input.GivesID),
		GetsID:     strings.TrimSpace(input.GetsID),
	}
	if err := s.rosterSvc.ValidateTrade(ctx, input.GuildID, payload); err != nil {
		return proposal.Proposal{}, err
	}

	now := s.now().UTC()
	created, err := s.create(ctx, proposal.Proposal{
		GuildID:    input.GuildID,
		Kind:       proposal.KindTrade,
		ProposerID: input.ProposerID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(offerTTL),
		Trade:      &payload,
	})
	if err != nil {
		return proposal.Proposal{}, err
	}

	msg := Notification{
		Title: "Trade Proposal",
		Body: fmt.Sprintf("%s propose sending <@%s> to %s for <@%s>.",
			fromTeam.Name, payload.GivesID, toTeam.Name, payload.GetsID),
		GuildID:    input.GuildID,
		ProposalID: created.ID,
		Kind:       proposal.KindTrade,
	}
	if delivered := s.fanOutToStaff(ctx, input.GuildID, toTeam.ID, msg); delivered == 0 {
		s.deleteQuietly(ctx, created)
		return proposal.Proposal{}, fmt.Errorf("%w: no %s staff reachable", ErrDeliveryFailed, toTeam.Name)
	}

	s.logger.InfoContext(ctx, "trade proposed",
		"guild_id", input.GuildID,
		"proposal_id", created.ID,
		"from_team_id", fromTeam.ID,
		"to_team_id", toTeam.ID,
	)
	return created, nil
}

// ProposeGametime creates a pending game schedule between two teams and
// delivers it to the away team's staff.
func (s *ProposalService) ProposeGametime(ctx context.Context, input GametimeInput) (proposal.Proposal, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProposalService.ProposeGametime")
	defer span.End()

	input.GuildID = strings.TrimSpace(input.GuildID)
	input.ProposerID = strings.TrimSpace(input.ProposerID)
	if input.GuildID == "" || input.ProposerID == "" {
		return proposal.Proposal{}, fmt.Errorf("%w: guild_id and proposer are required", ErrInvalidInput)
	}

	homeTeam, exists, err := s.teamRepo.GetByName(ctx, input.GuildID, strings.TrimSpace(input.HomeTeam))
	if err != nil {
		return proposal.Proposal{}, fmt.Errorf("get team by name: %w", err)
	}
	if !exists {
		return proposal.Proposal{}, fmt.Errorf("%w: team %s", ErrNotFound, input.HomeTeam)
	}
	awayTeam, exists, err := s.teamRepo.GetByName(ctx, input.GuildID, strings.TrimSpace(input.AwayTeam))
	if err != nil {
		return proposal.Proposal{}, fmt.Errorf("get team by name: %w", err)
	}
	if !exists {
		return proposal.Proposal{}, fmt.Errorf("%w: team %s", ErrNotFound, input.AwayTeam)
	}

	if err := s.rosterSvc.authorizeTeamAction(ctx, input.GuildID, input.ProposerID, homeTeam.ID); err != nil {
		return proposal.Proposal{}, err
	}

	now := s.now().UTC()
	payload := proposal.GametimePayload{
		HomeTeamID: homeTeam.ID,
		AwayTeamID: awayTeam.ID,
		StartsAt:   input.StartsAt.UTC(),
	}
	created, err := s.create(ctx, proposal.Proposal{
		GuildID:    input.GuildID,
		Kind:       proposal.KindGametime,
		ProposerID: input.ProposerID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(offerTTL),
		Gametime:   &payload,
	})
	if err != nil {
		return proposal.Proposal{}, err
	}

	msg := Notification{
		Title: "Game Time Proposal",
		Body: fmt.Sprintf("%s propose playing %s on <t:%d:F>.",
			homeTeam.Name, awayTeam.Name, payload.StartsAt.Unix()),
		GuildID:    input.GuildID,
		ProposalID: created.ID,
		Kind:       proposal.KindGametime,
	}
	if delivered := s.fanOutToStaff(ctx, input.GuildID, awayTeam.ID, msg); delivered == 0 {
		s.deleteQuietly(ctx, created)
		return proposal.Proposal{}, fmt.Errorf("%w: no %s staff reachable", ErrDeliveryFailed, awayTeam.Name)
	}

	s.logger.InfoContext(ctx, "gametime proposed",
		"guild_id", input.GuildID,
		"proposal_id", created.ID,
		"home_team_id", homeTeam.ID,
		"away_team_id", awayTeam.ID,
	)
	return created, nil
}

// OpenForceSignReport follows a direct signing with a DM the player can
// use to report it as non-consensual. Confirming the report releases
// the player again; dismissing it just removes the record. Only the
// sign paths open one, so there is no staff check here.
func (s *ProposalService) OpenForceSignReport(ctx context.Context, input ForceSignReportInput) (proposal.Proposal, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProposalService.OpenForceSignReport")
	defer span.End()

	input.GuildID = strings.TrimSpace(input.GuildID)
	input.ActorID = strings.TrimSpace(input.ActorID)
	input.PlayerID = strings.TrimSpace(input.PlayerID)
	input.TeamID = strings.TrimSpace(input.TeamID)
	if input.GuildID == "" || input.ActorID == "" || input.PlayerID == "" || input.TeamID == "" {
		return proposal.Proposal{}, fmt.Errorf("%w: guild_id, actor, player and team are required", ErrInvalidInput)
	}

	item, exists, err := s.teamByID(ctx, input.GuildID, input.TeamID)
	if err != nil {
		return proposal.Proposal{}, fmt.Errorf("get team: %w", err)
	}
	if !exists {
		return proposal.Proposal{}, fmt.Errorf("%w: team %s", ErrNotFound, input.TeamID)
	}

	now := s.now().UTC()
	created, err := s.create(ctx, proposal.Proposal{
		GuildID:    input.GuildID,
		Kind:       proposal.KindForceSign,
		ProposerID: input.ActorID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(offerTTL),
		ForceSign:  &proposal.ForceSignPayload{PlayerID: input.PlayerID, TeamID: input.TeamID},
	})
	if err != nil {
		return proposal.Proposal{}, err
	}

	if err := s.notifier.DirectMessage(ctx, input.PlayerID, Notification{
		Title:      "Signed to " + item.Name,
		Body:       fmt.Sprintf("If you did not agree to join %s, report the signing below and it will be undone.", item.Name),
		GuildID:    input.GuildID,
		ProposalID: created.ID,
		Kind:       proposal.KindForceSign,
	}); err != nil {
		s.deleteQuietly(ctx, created)
		return proposal.Proposal{}, fmt.Errorf("%w: force sign report dm to <@%s>: %v", ErrDeliveryFailed, input.PlayerID, err)
	}

	s.logger.InfoContext(ctx, "force sign report opened",
		"guild_id", input.GuildID,
		"proposal_id", created.ID,
		"player_id", input.PlayerID,
		"team_id", input.TeamID,
	)
	return created, nil
}

// Resolve is the single entry point for accept, decline and withdraw.
// Whatever the decision, a resolved proposal is deleted; resolving it
// twice yields not found.
func (s *ProposalService) Resolve(ctx context.Context, guildID, proposalID string, decision proposal.Decision, actingPartyID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProposalService.Resolve")
	defer span.End()

	guildID = strings.TrimSpace(guildID)
	proposalID = strings.TrimSpace(proposalID)
	actingPartyID = strings.TrimSpace(actingPartyID)
	if guildID == "" || proposalID == "" || actingPartyID == "" {
		return fmt.Errorf("%w: guild_id, proposal_id and acting party are required", ErrInvalidInput)
	}
	if _, err := proposal.ParseDecision(string(decision)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	item, exists, err := s.proposalRepo.GetByID(ctx, guildID, proposalID)
	if err != nil {
		return fmt.Errorf("get proposal: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: proposal %s", ErrNotFound, proposalID)
	}

	now := s.now().UTC()
	if item.Kind == proposal.KindOffer && !item.ActiveAt(now) {
		// Lazily expired: the row may still exist between sweeps but the
		// offer is gone.
		s.deleteQuietly(ctx, item)
		return fmt.Errorf("%w: proposal %s", ErrNotFound, proposalID)
	}

	if decision == proposal.DecisionWithdraw {
		if actingPartyID != item.ProposerID {
			return fmt.Errorf("%w: only the proposer may withdraw", ErrUnauthorized)
		}
		return s.deleteResolved(ctx, item, decision)
	}

	if err := s.authorizeRecipient(ctx, item, actingPartyID); err != nil {
		return err
	}

	if decision == proposal.DecisionDecline {
		return s.deleteResolved(ctx, item, decision)
	}

	switch item.Kind {
	case proposal.KindOffer:
		return s.acceptOffer(ctx, item)
	case proposal.KindTrade:
		if err := s.rosterSvc.ExecuteTrade(ctx, item.GuildID, *item.Trade); err != nil {
			return err
		}
		return s.deleteResolved(ctx, item, decision)
	case proposal.KindGametime:
		return s.acceptGametime(ctx, item)
	case proposal.KindForceSign:
		return s.acceptForceSign(ctx, item)
	default:
		return fmt.Errorf("%w: proposal kind %s", ErrInvalidInput, item.Kind)
	}
}

// acceptOffer re-validates at resolve time. A roster that filled up in
// the meantime consumes the offer and reports it full.
func (s *ProposalService) acceptOffer(ctx context.Context, item proposal.Proposal) error {
	_, err := s.rosterSvc.SignToTeamID(ctx, item.GuildID, item.Offer.PlayerID, item.Offer.TeamID)
	if err != nil {
		if errors.Is(err, ErrRosterFull) {
			s.deleteQuietly(ctx, item)
			return fmt.Errorf("%w: the roster is now full", ErrRosterFull)
		}
		return err
	}

	return s.deleteResolved(ctx, item, proposal.DecisionAccept)
}

// acceptForceSign undoes the reported signing. A player who has since
// moved on makes the report stale; the record is consumed either way.
func (s *ProposalService) acceptForceSign(ctx context.Context, item proposal.Proposal) error {
	if err := s.rosterSvc.RevertForceSign(ctx, item.GuildID, item.ForceSign.PlayerID, item.ForceSign.TeamID); err != nil {
		if errors.Is(err, ErrNotRostered) {
			s.deleteQuietly(ctx, item)
		}
		return err
	}

	return s.deleteResolved(ctx, item, proposal.DecisionAccept)
}

func (s *ProposalService) acceptGametime(ctx context.Context, item proposal.Proposal) error {
	settings, err := s.settings.Settings(ctx, item.GuildID)
	if err != nil {
		return err
	}

	homeTeam, _, _ := s.teamByID(ctx, item.GuildID, item.Gametime.HomeTeamID)
	awayTeam, _, _ := s.teamByID(ctx, item.GuildID, item.Gametime.AwayTeamID)
	if settings.ScheduleChannelID != "" {
		if err := s.notifier.Announce(ctx, item.GuildID, settings.ScheduleChannelID, Notification{
			Title: "Game Scheduled",
			Body: fmt.Sprintf("%s vs %s on <t:%d:F>.",
				homeTeam.Name, awayTeam.Name, item.Gametime.StartsAt.Unix()),
		}); err != nil {
			s.logger.WarnContext(ctx, "schedule announce failed", "guild_id", item.GuildID, "error", err)
		}
	}

	return s.deleteResolved(ctx, item, proposal.DecisionAccept)
}

// SweepExpired deletes proposals whose expiry has passed. Runs from the
// background ticker.
func (s *ProposalService) SweepExpired(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProposalService.SweepExpired")
	defer span.End()

	removed, err := s.proposalRepo.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired proposals: %w", err)
	}
	if removed > 0 {
		s.logger.InfoContext(ctx, "expired proposals swept", "removed", removed)
	}

	return removed, nil
}

// ListPending returns the guild's live proposals, filtering offers past
// their expiry even when unswept.
func (s *ProposalService) ListPending(ctx context.Context, guildID string) ([]proposal.Proposal, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProposalService.ListPending")
	defer span.End()

	guildID = strings.TrimSpace(guildID)
	if guildID == "" {
		return nil, fmt.Errorf("%w: guild id is required", ErrInvalidInput)
	}

	items, err := s.proposalRepo.ListByGuild(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}

	now := s.now().UTC()
	out := make([]proposal.Proposal, 0, len(items))
	for _, item := range items {
		if item.Kind == proposal.KindOffer && !item.ActiveAt(now) {
			continue
		}
		out = append(out, item)
	}

	return out, nil
}

func (s *ProposalService) create(ctx context.Context, item proposal.Proposal) (proposal.Proposal, error) {
	id, err := s.idGen.NewID()
	if err != nil {
		return proposal.Proposal{}, fmt.Errorf("generate proposal id: %w", err)
	}
	item.ID = id

	if err := item.Validate(); err != nil {
		return proposal.Proposal{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.proposalRepo.Create(ctx, item); err != nil {
		return proposal.Proposal{}, fmt.Errorf("create proposal: %w", err)
	}

	return item, nil
}

func (s *ProposalService) authorizeRecipient(ctx context.Context, item proposal.Proposal, actingPartyID string) error {
	switch item.Kind {
	case proposal.KindOffer:
		if actingPartyID != item.Offer.PlayerID {
			return fmt.Errorf("%w: only the offered player may respond", ErrUnauthorized)
		}
		return nil
	case proposal.KindTrade:
		return s.requireStaff(ctx, item.GuildID, item.Trade.ToTeamID, actingPartyID)
	case proposal.KindGametime:
		return s.requireStaff(ctx, item.GuildID, item.Gametime.AwayTeamID, actingPartyID)
	case proposal.KindForceSign:
		if actingPartyID != item.ForceSign.PlayerID {
			return fmt.Errorf("%w: only the signed player may report", ErrUnauthorized)
		}
		return nil
	default:
		return fmt.Errorf("%w: proposal kind %s", ErrInvalidInput, item.Kind)
	}
}

func (s *ProposalService) requireStaff(ctx context.Context, guildID, teamID, userID string) error {
	staff, err := s.rosterSvc.TeamStaff(ctx, guildID, teamID)
	if err != nil {
		return err
	}
	for _, m := range staff {
		if m.PlayerID == userID {
			return nil
		}
	}

	return fmt.Errorf("%w: <@%s> is not staff of the receiving team", ErrUnauthorized, userID)
}

// fanOutToStaff DMs every staff member of the team concurrently and
// returns how many deliveries succeeded.
func (s *ProposalService) fanOutToStaff(ctx context.Context, guildID, teamID string, msg Notification) int {
	staff, err := s.rosterSvc.TeamStaff(ctx, guildID, teamID)
	if err != nil {
		s.logger.WarnContext(ctx, "list team staff failed", "guild_id", guildID, "team_id", teamID, "error", err)
		return 0
	}
	if len(staff) == 0 {
		return 0
	}

	var delivered atomic.Int32
	var wg conc.WaitGroup
	for _, m := range staff {
		userID := m.PlayerID
		wg.Go(func() {
			if err := s.notifier.DirectMessage(ctx, userID, msg); err != nil {
				s.logger.WarnContext(ctx, "proposal dm failed", "guild_id", guildID, "user_id", userID, "error", err)
				return
			}
			delivered.Add(1)
		})
	}
	wg.Wait()

	return int(delivered.Load())
}

func (s *ProposalService) deleteResolved(ctx context.Context, item proposal.Proposal, decision proposal.Decision) error {
	removed, err := s.proposalRepo.Delete(ctx, item.GuildID, item.ID)
	if err != nil {
		return fmt.Errorf("delete proposal: %w", err)
	}
	if !removed {
		return fmt.Errorf("%w: proposal %s", ErrNotFound, item.ID)
	}

	s.logger.InfoContext(ctx, "proposal resolved",
		"guild_id", item.GuildID,
		"proposal_id", item.ID,
		"kind", string(item.Kind),
		"decision", string(decision),
	)
	return nil
}

func (s *ProposalService) deleteQuietly(ctx context.Context, item proposal.Proposal) {
	if _, err := s.proposalRepo.Delete(ctx, item.GuildID, item.ID); err != nil {
		s.logger.ErrorContext(ctx, "delete proposal failed", "guild_id", item.GuildID, "proposal_id", item.ID, "error", err)
	}
}

func (s *ProposalService) teamByID(ctx context.Context, guildID, teamID string) (team.Team, bool, error) {
	teams, err := s.teamRepo.ListByGuild(ctx, guildID)
	if err != nil {
		return team.Team{}, false, err
	}
	for _, t := range teams {
		if t.ID == teamID {
			return t, true, nil
		}
	}
	return team.Team{}, false, nil
}

