package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/mba-league/mbabot/internal/domain/proposal"
	"github.com/mba-league/mbabot/internal/domain/roster"
	"github.com/mba-league/mbabot/internal/domain/season"
	"github.com/mba-league/mbabot/internal/domain/team"
	"github.com/mba-league/mbabot/internal/platform/logging"
	"github.com/mba-league/mbabot/internal/usecase"
)

type Handler struct {
	rosterService   *usecase.RosterService
	proposalService *usecase.ProposalService
	teamService     *usecase.TeamService
	statsService    *usecase.StatsService
	logger          *logging.Logger
	validator       *validator.Validate
}

func NewHandler(
	rosterService *usecase.RosterService,
	proposalService *usecase.ProposalService,
	teamService *usecase.TeamService,
	statsService *usecase.StatsService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		rosterService:   rosterService,
		proposalService: proposalService,
		teamService:     teamService,
		statsService:    statsService,
		logger:          logger,
		validator:       validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, map[string]string{"status": "ok"})
}

func (h *Handler) Sign(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Sign")
	defer span.End()

	var req signRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeFailure(ctx, w, err)
		return
	}

	membership, err := h.rosterService.Sign(ctx, usecase.SignInput{
		GuildID:  req.GuildID,
		ActorID:  req.ActorID,
		PlayerID: req.PlayerID,
		TeamName: req.Team,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "sign failed", "guild_id", req.GuildID, "player_id", req.PlayerID, "error", err)
		writeFailure(ctx, w, err)
		return
	}

	// The sign stands even when the report DM cannot be delivered.
	if _, err := h.proposalService.OpenForceSignReport(ctx, usecase.ForceSignReportInput{
		GuildID:  req.GuildID,
		ActorID:  req.ActorID,
		PlayerID: membership.PlayerID,
		TeamID:   membership.TeamID,
	}); err != nil {
		h.logger.WarnContext(ctx, "force sign report failed", "guild_id", req.GuildID, "player_id", membership.PlayerID, "error", err)
	}

	writeSuccess(ctx, w, membershipToDTO(membership))
}

func (h *Handler) Release(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Release")
	defer span.End()

	var req releaseRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeFailure(ctx, w, err)
		return
	}

	err := h.rosterService.Release(ctx, usecase.ReleaseInput{
		GuildID:  req.GuildID,
		ActorID:  req.ActorID,
		PlayerID: req.PlayerID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "release failed", "guild_id", req.GuildID, "player_id", req.PlayerID, "error", err)
		writeFailure(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, nil)
}

func (h *Handler) Demand(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Demand")
	defer span.End()

	var req demandRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeFailure(ctx, w, err)
		return
	}

	err := h.rosterService.Demand(ctx, usecase.DemandInput{
		GuildID:  req.GuildID,
		PlayerID: req.PlayerID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "demand failed", "guild_id", req.GuildID, "player_id", req.PlayerID, "error", err)
		writeFailure(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, nil)
}

func (h *Handler) Offer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Offer")
	defer span.End()

	var req offerRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeFailure(ctx, w, err)
		return
	}

	item, err := h.proposalService.ProposeOffer(ctx, usecase.OfferInput{
		GuildID:    req.GuildID,
		ProposerID: req.ProposerID,
		PlayerID:   req.PlayerID,
		TeamName:   req.Team,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "offer failed", "guild_id", req.GuildID, "player_id", req.PlayerID, "error", err)
		writeFailure(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, proposalToDTO(item))
}

func (h *Handler) Trade(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Trade")
	defer span.End()

	var req tradeRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeFailure(ctx, w, err)
		return
	}

	item, err := h.proposalService.ProposeTrade(ctx, usecase.TradeInput{
		GuildID:    req.GuildID,
		ProposerID: req.ProposerID,
		FromTeam:   req.FromTeam,
		ToTeam:     req.ToTeam,
		GivesID:    req.GivesID,
		GetsID:     req.GetsID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "trade proposal failed", "guild_id", req.GuildID, "error", err)
		writeFailure(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, proposalToDTO(item))
}

func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Resolve")
	defer span.End()

	var req resolveRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeFailure(ctx, w, err)
		return
	}

	decision, err := proposal.ParseDecision(req.Decision)
	if err != nil {
		writeFailure(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	if err := h.proposalService.Resolve(ctx, req.GuildID, req.ProposalID, decision, req.ActorID); err != nil {
		h.logger.WarnContext(ctx, "resolve failed", "guild_id", req.GuildID, "proposal_id", req.ProposalID, "error", err)
		writeFailure(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, nil)
}

func (h *Handler) Promote(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Promote")
	defer span.End()

	h.changeRank(ctx, w, r, h.rosterService.Promote)
}

func (h *Handler) Demote(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Demote")
	defer span.End()

	h.changeRank(ctx, w, r, h.rosterService.Demote)
}

func (h *Handler) changeRank(
	ctx context.Context,
	w http.ResponseWriter,
	r *http.Request,
	change func(context.Context, usecase.PromoteInput) (roster.Position, error),
) {
	var req promoteRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeFailure(ctx, w, err)
		return
	}

	position, err := change(ctx, usecase.PromoteInput{
		GuildID:  req.GuildID,
		ActorID:  req.ActorID,
		PlayerID: req.PlayerID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "rank change failed", "guild_id", req.GuildID, "player_id", req.PlayerID, "error", err)
		writeFailure(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, map[string]string{"position": string(position)})
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	guildID := strings.TrimSpace(r.URL.Query().Get("guild_id"))
	byConference, err := h.teamService.ListByConference(ctx, guildID)
	if err != nil {
		h.logger.WarnContext(ctx, "list teams failed", "guild_id", guildID, "error", err)
		writeFailure(ctx, w, err)
		return
	}

	out := make(map[string][]teamDTO, len(byConference))
	for conference, teams := range byConference {
		items := make([]teamDTO, 0, len(teams))
		for _, item := range teams {
			items = append(items, teamToDTO(item))
		}
		out[string(conference)] = items
	}

	writeSuccess(ctx, w, out)
}

func (h *Handler) TeamRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TeamRoster")
	defer span.End()

	guildID := strings.TrimSpace(r.URL.Query().Get("guild_id"))
	teamName := strings.TrimSpace(r.URL.Query().Get("team"))

	item, members, err := h.rosterService.TeamRoster(ctx, guildID, teamName)
	if err != nil {
		h.logger.WarnContext(ctx, "team roster failed", "guild_id", guildID, "team", teamName, "error", err)
		writeFailure(ctx, w, err)
		return
	}

	memberItems := make([]membershipDTO, 0, len(members))
	for _, member := range members {
		memberItems = append(memberItems, membershipToDTO(member))
	}

	writeSuccess(ctx, w, rosterDTO{
		Team:    teamToDTO(item),
		Members: memberItems,
	})
}

func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Leaderboard")
	defer span.End()

	guildID := strings.TrimSpace(r.URL.Query().Get("guild_id"))
	rows, err := h.statsService.Leaderboard(ctx, guildID)
	if err != nil {
		h.logger.WarnContext(ctx, "leaderboard failed", "guild_id", guildID, "error", err)
		writeFailure(ctx, w, err)
		return
	}

	items := make([]leaderboardRowDTO, 0, len(rows))
	for rank, row := range rows {
		items = append(items, leaderboardRowToDTO(rank+1, row))
	}

	writeSuccess(ctx, w, items)
}

func (h *Handler) PlayerStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PlayerStats")
	defer span.End()

	guildID := strings.TrimSpace(r.URL.Query().Get("guild_id"))
	playerID := strings.TrimSpace(r.URL.Query().Get("player_id"))

	averages, err := h.statsService.PlayerStats(ctx, guildID, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "player stats failed", "guild_id", guildID, "player_id", playerID, "error", err)
		writeFailure(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, playerAveragesToDTO(averages))
}

func (h *Handler) decodeRequest(ctx context.Context, r *http.Request, target any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	if err := h.validator.StructCtx(ctx, target); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type signRequest struct {
	GuildID  string `json:"guild_id" validate:"required"`
	ActorID  string `json:"actor_id" validate:"required"`
	PlayerID string `json:"player_id" validate:"required"`
	Team     string `json:"team" validate:"required"`
}

type releaseRequest struct {
	GuildID  string `json:"guild_id" validate:"required"`
	ActorID  string `json:"actor_id" validate:"required"`
	PlayerID string `json:"player_id" validate:"required"`
}

type demandRequest struct {
	GuildID  string `json:"guild_id" validate:"required"`
	PlayerID string `json:"player_id" validate:"required"`
}

type offerRequest struct {
	GuildID    string `json:"guild_id" validate:"required"`
	ProposerID string `json:"proposer_id" validate:"required"`
	PlayerID   string `json:"player_id" validate:"required"`
	Team       string `json:"team" validate:"required"`
}

type tradeRequest struct {
	GuildID    string `json:"guild_id" validate:"required"`
	ProposerID string `json:"proposer_id" validate:"required"`
	FromTeam   string `json:"from_team" validate:"required"`
	ToTeam     string `json:"to_team" validate:"required"`
	GivesID    string `json:"gives_id" validate:"required"`
	GetsID     string `json:"gets_id" validate:"required"`
}

type resolveRequest struct {
	GuildID    string `json:"guild_id" validate:"required"`
	ProposalID string `json:"proposal_id" validate:"required"`
	Decision   string `json:"decision" validate:"required"`
	ActorID    string `json:"actor_id" validate:"required"`
}

type promoteRequest struct {
	GuildID  string `json:"guild_id" validate:"required"`
	ActorID  string `json:"actor_id" validate:"required"`
	PlayerID string `json:"player_id" validate:"required"`
}

type teamDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	RoleID     string `json:"roleId"`
	Conference string `json:"conference"`
	LogoEmoji  string `json:"logoEmoji,omitempty"`
}

type membershipDTO struct {
	PlayerID string `json:"playerId"`
	TeamID   string `json:"teamId"`
	Position string `json:"position"`
	JoinedAt string `json:"joinedAt"`
}

type rosterDTO struct {
	Team    teamDTO         `json:"team"`
	Members []membershipDTO `json:"members"`
}

type proposalDTO struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	ExpiresAt string `json:"expiresAt"`
}

type leaderboardRowDTO struct {
	Rank        int    `json:"rank"`
	PlayerID    string `json:"playerId"`
	GamesPlayed int    `json:"gamesPlayed"`
	Points      int    `json:"points"`
	Rebounds    int    `json:"rebounds"`
	Assists     int    `json:"assists"`
	Steals      int    `json:"steals"`
	Blocks      int    `json:"blocks"`
}

type playerAveragesDTO struct {
	PlayerID    string  `json:"playerId"`
	SeasonID    string  `json:"seasonId"`
	GamesPlayed int     `json:"gamesPlayed"`
	Points      float64 `json:"pointsPerGame"`
	Rebounds    float64 `json:"reboundsPerGame"`
	Assists     float64 `json:"assistsPerGame"`
	Steals      float64 `json:"stealsPerGame"`
	Blocks      float64 `json:"blocksPerGame"`
}

func teamToDTO(v team.Team) teamDTO {
	return teamDTO{
		ID:         v.ID,
		Name:       v.Name,
		RoleID:     v.RoleID,
		Conference: string(v.Conference),
		LogoEmoji:  v.LogoEmoji,
	}
}

func membershipToDTO(v roster.Membership) membershipDTO {
	return membershipDTO{
		PlayerID: v.PlayerID,
		TeamID:   v.TeamID,
		Position: string(v.Position),
		JoinedAt: v.JoinedAt.UTC().Format(time.RFC3339),
	}
}

func proposalToDTO(v proposal.Proposal) proposalDTO {
	return proposalDTO{
		ID:        v.ID,
		Kind:      string(v.Kind),
		ExpiresAt: v.ExpiresAt.UTC().Format(time.RFC3339),
	}
}

func leaderboardRowToDTO(rank int, v season.PlayerSeasonStats) leaderboardRowDTO {
	return leaderboardRowDTO{
		Rank:        rank,
		PlayerID:    v.PlayerID,
		GamesPlayed: v.GamesPlayed,
		Points:      v.Totals.Points,
		Rebounds:    v.Totals.Rebounds,
		Assists:     v.Totals.Assists,
		Steals:      v.Totals.Steals,
		Blocks:      v.Totals.Blocks,
	}
}

func playerAveragesToDTO(v usecase.PlayerAverages) playerAveragesDTO {
	return playerAveragesDTO{
		PlayerID:    v.PlayerID,
		SeasonID:    v.SeasonID,
		GamesPlayed: v.GamesPlayed,
		Points:      v.Points,
		Rebounds:    v.Rebounds,
		Assists:     v.Assists,
		Steals:      v.Steals,
		Blocks:      v.Blocks,
	}
}
