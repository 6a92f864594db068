package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/stretchr/testify/require"

	"github.com/mba-league/mbabot/internal/domain/guild"
	"github.com/mba-league/mbabot/internal/domain/team"
	"github.com/mba-league/mbabot/internal/infrastructure/repository/memory"
	"github.com/mba-league/mbabot/internal/platform/logging"
	"github.com/mba-league/mbabot/internal/usecase"
)

const (
	bridgeGuildID   = "guild-1"
	bridgeAPIKey    = "bridge-secret"
	bridgeAdminRole = "role-admin"
	bridgeFARole    = "role-fa"
)

type roleStore struct {
	mu   sync.Mutex
	held map[string]map[string]bool
}

func newRoleStore() *roleStore {
	return &roleStore{held: make(map[string]map[string]bool)}
}

func (s *roleStore) grant(userID, roleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.held[userID] == nil {
		s.held[userID] = make(map[string]bool)
	}
	s.held[userID][roleID] = true
}

func (s *roleStore) MemberHasRole(_ context.Context, _, userID, roleID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.held[userID][roleID], nil
}

func (s *roleStore) MemberHasAnyRole(_ context.Context, _, userID string, roleIDs []string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, roleID := range roleIDs {
		if s.held[userID][roleID] {
			return true, nil
		}
	}
	return false, nil
}

func (s *roleStore) RoleHolders(_ context.Context, _, roleID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, 4)
	for userID, roles := range s.held {
		if roles[roleID] {
			out = append(out, userID)
		}
	}
	return out, nil
}

func (s *roleStore) GrantRole(_ context.Context, _, userID, roleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.held[userID] == nil {
		s.held[userID] = make(map[string]bool)
	}
	s.held[userID][roleID] = true
	return nil
}

func (s *roleStore) RevokeRole(_ context.Context, _, userID, roleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.held[userID], roleID)
	return nil
}

type silentNotifier struct{}

func (silentNotifier) DirectMessage(context.Context, string, usecase.Notification) error {
	return nil
}

func (silentNotifier) Announce(context.Context, string, string, usecase.Notification) error {
	return nil
}

type fixedSettings struct {
	settings guild.Settings
}

func (f *fixedSettings) Settings(_ context.Context, guildID string) (guild.Settings, error) {
	out := f.settings
	out.GuildID = guildID
	return out, nil
}

type noReferee struct{}

func (noReferee) IsReferee(context.Context, string, string) (bool, error) {
	return false, nil
}

type seqIDGenerator struct {
	mu   sync.Mutex
	next int
}

func (g *seqIDGenerator) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.next++
	return fmt.Sprintf("id-%03d", g.next), nil
}

type bridgeFixture struct {
	router http.Handler
	roles  *roleStore
	ready  bool
}

func newBridgeFixture(t *testing.T, apiKey string) *bridgeFixture {
	t.Helper()

	f := &bridgeFixture{
		roles: newRoleStore(),
		ready: true,
	}

	teamRepo := memory.NewTeamRepository()
	rosterRepo := memory.NewRosterRepository()
	demandRepo := memory.NewDemandRepository()
	seasonRepo := memory.NewSeasonRepository()
	gameRepo := memory.NewGameRepository()
	statsRepo := memory.NewStatsRepository()
	proposalRepo := memory.NewProposalRepository()

	settings := &fixedSettings{settings: guild.Settings{
		TransactionsChannelID: "chan-tx",
		FreeAgentRoleID:       bridgeFARole,
		AdminRoleID:           bridgeAdminRole,
	}}
	notifier := silentNotifier{}
	logger := logging.NewNop()
	idGen := &seqIDGenerator{}

	rosterService := usecase.NewRosterService(
		rosterRepo, demandRepo, teamRepo, seasonRepo, settings, f.roles, notifier, logger,
	)
	proposalService := usecase.NewProposalService(
		proposalRepo, teamRepo, rosterService, settings, notifier, idGen, logger,
	)
	teamService := usecase.NewTeamService(teamRepo, idGen, logger)
	statsService := usecase.NewStatsService(
		seasonRepo, gameRepo, statsRepo, teamService, noReferee{}, idGen, logger,
	)

	teams := []team.Team{
		{ID: "team-scorpions", GuildID: bridgeGuildID, Name: "Scorpions", RoleID: "role-scorpions", Conference: team.ConferenceDesert},
		{ID: "team-bison", GuildID: bridgeGuildID, Name: "Bison", RoleID: "role-bison", Conference: team.ConferencePlains},
	}
	for _, item := range teams {
		require.NoError(t, teamRepo.Upsert(t.Context(), item))
	}
	f.roles.grant("admin-1", bridgeAdminRole)
	f.roles.grant("player-1", bridgeFARole)

	handler := NewHandler(rosterService, proposalService, teamService, statsService, logger)
	f.router = NewRouter(handler, apiKey, func() bool { return f.ready }, logger, nil)

	return f
}

type envelopeResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func (f *bridgeFixture) do(t *testing.T, method, target, key, body string) (int, envelopeResult) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, req)

	var env envelopeResult
	if recorder.Body.Len() > 0 {
		require.NoError(t, sonic.Unmarshal(recorder.Body.Bytes(), &env))
	}
	return recorder.Code, env
}

func TestRouter_HealthzOpen(t *testing.T) {
	f := newBridgeFixture(t, bridgeAPIKey)

	status, env := f.do(t, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success)
}

func TestRouter_APIKey(t *testing.T) {
	f := newBridgeFixture(t, bridgeAPIKey)

	status, env := f.do(t, http.MethodGet, "/api/teams?guild_id="+bridgeGuildID, "", "")
	require.Equal(t, http.StatusUnauthorized, status)
	require.False(t, env.Success)

	status, _ = f.do(t, http.MethodGet, "/api/teams?guild_id="+bridgeGuildID, "wrong-key", "")
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestRouter_APIKeyUnconfigured(t *testing.T) {
	f := newBridgeFixture(t, "")

	status, env := f.do(t, http.MethodGet, "/api/teams?guild_id="+bridgeGuildID, "anything", "")
	require.Equal(t, http.StatusServiceUnavailable, status)
	require.False(t, env.Success)
}

func TestRouter_NotReady(t *testing.T) {
	f := newBridgeFixture(t, bridgeAPIKey)
	f.ready = false

	status, env := f.do(t, http.MethodGet, "/api/teams?guild_id="+bridgeGuildID, bridgeAPIKey, "")
	require.Equal(t, http.StatusServiceUnavailable, status)
	require.Contains(t, env.Message, "not ready")
}

func TestHandler_Sign(t *testing.T) {
	f := newBridgeFixture(t, bridgeAPIKey)

	body := `{"guild_id":"guild-1","actor_id":"admin-1","player_id":"player-1","team":"Scorpions"}`
	status, env := f.do(t, http.MethodPost, "/api/sign", bridgeAPIKey, body)
	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "player", data["position"])
	require.Equal(t, "team-scorpions", data["teamId"])

	status, env = f.do(t, http.MethodGet, "/api/roster?guild_id=guild-1&team=Scorpions", bridgeAPIKey, "")
	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success)

	roster, ok := env.Data.(map[string]any)
	require.True(t, ok)
	members, ok := roster["members"].([]any)
	require.True(t, ok)
	require.Len(t, members, 1)
}

func TestHandler_Sign_UnknownTeam(t *testing.T) {
	f := newBridgeFixture(t, bridgeAPIKey)

	body := `{"guild_id":"guild-1","actor_id":"admin-1","player_id":"player-1","team":"Krakens"}`
	status, env := f.do(t, http.MethodPost, "/api/sign", bridgeAPIKey, body)
	require.Equal(t, http.StatusOK, status)
	require.False(t, env.Success)
	require.NotEmpty(t, env.Message)
}

func TestHandler_Sign_RejectsUnknownFields(t *testing.T) {
	f := newBridgeFixture(t, bridgeAPIKey)

	body := `{"guild_id":"guild-1","actor_id":"admin-1","player_id":"player-1","team":"Scorpions","bogus":true}`
	status, env := f.do(t, http.MethodPost, "/api/sign", bridgeAPIKey, body)
	require.Equal(t, http.StatusOK, status)
	require.False(t, env.Success)
	require.Contains(t, env.Message, "invalid")
}

func TestHandler_Sign_MissingFields(t *testing.T) {
	f := newBridgeFixture(t, bridgeAPIKey)

	status, env := f.do(t, http.MethodPost, "/api/sign", bridgeAPIKey, `{"guild_id":"guild-1"}`)
	require.Equal(t, http.StatusOK, status)
	require.False(t, env.Success)
	require.Contains(t, env.Message, "validation failed")
}

func TestHandler_ListTeams(t *testing.T) {
	f := newBridgeFixture(t, bridgeAPIKey)

	status, env := f.do(t, http.MethodGet, "/api/teams?guild_id="+bridgeGuildID, bridgeAPIKey, "")
	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	require.Contains(t, data, "desert")
	require.Contains(t, data, "plains")
}

func TestHandler_Leaderboard_NoActiveSeason(t *testing.T) {
	f := newBridgeFixture(t, bridgeAPIKey)

	status, env := f.do(t, http.MethodGet, "/api/leaderboard?guild_id="+bridgeGuildID, bridgeAPIKey, "")
	require.Equal(t, http.StatusOK, status)
	require.False(t, env.Success)
	require.Contains(t, env.Message, "no active season")
}

func TestHandler_Resolve_BadDecision(t *testing.T) {
	f := newBridgeFixture(t, bridgeAPIKey)

	body := `{"guild_id":"guild-1","proposal_id":"prop-1","decision":"maybe","actor_id":"admin-1"}`
	status, env := f.do(t, http.MethodPost, "/api/resolve", bridgeAPIKey, body)
	require.Equal(t, http.StatusOK, status)
	require.False(t, env.Success)
}
