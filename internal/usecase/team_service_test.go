package usecase

import (
	"errors"
	"testing"

	"github.com/mba-league/mbabot/internal/domain/team"
	"github.com/mba-league/mbabot/internal/infrastructure/repository/memory"
	"github.com/mba-league/mbabot/internal/platform/logging"
)

func newTeamService(t *testing.T) (*TeamService, *memory.TeamRepository) {
	t.Helper()

	teamRepo := memory.NewTeamRepository()
	service := NewTeamService(teamRepo, &seqIDGenerator{prefix: "team"}, logging.NewNop())

	return service, teamRepo
}

func TestTeamService_AddTeam_RejectsDuplicates(t *testing.T) {
	service, _ := newTeamService(t)

	created, err := service.AddTeam(t.Context(), AddTeamInput{
		GuildID:    testGuildID,
		Name:       "Scorpions",
		RoleID:     "role-scorpions",
		Conference: "desert",
	})
	if err != nil {
		t.Fatalf("add team failed: %v", err)
	}
	if created.Conference != team.ConferenceDesert {
		t.Fatalf("expected desert conference, got %s", created.Conference)
	}

	_, err = service.AddTeam(t.Context(), AddTeamInput{
		GuildID:    testGuildID,
		Name:       "scorpions",
		RoleID:     "role-other",
		Conference: "desert",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for duplicate name, got %v", err)
	}

	_, err = service.AddTeam(t.Context(), AddTeamInput{
		GuildID:    testGuildID,
		Name:       "Bison",
		RoleID:     "role-scorpions",
		Conference: "plains",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for duplicate role, got %v", err)
	}
}

func TestTeamService_AddTeam_UnknownConference(t *testing.T) {
	service, _ := newTeamService(t)

	_, err := service.AddTeam(t.Context(), AddTeamInput{
		GuildID:    testGuildID,
		Name:       "Scorpions",
		RoleID:     "role-scorpions",
		Conference: "ocean",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestTeamService_ListByConference(t *testing.T) {
	service, _ := newTeamService(t)

	for _, input := range []AddTeamInput{
		{GuildID: testGuildID, Name: "Scorpions", RoleID: "role-1", Conference: "desert"},
		{GuildID: testGuildID, Name: "Vipers", RoleID: "role-2", Conference: "desert"},
		{GuildID: testGuildID, Name: "Bison", RoleID: "role-3", Conference: "plains"},
	} {
		if _, err := service.AddTeam(t.Context(), input); err != nil {
			t.Fatalf("add team failed: %v", err)
		}
	}

	grouped, err := service.ListByConference(t.Context(), testGuildID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(grouped[team.ConferenceDesert]) != 2 || len(grouped[team.ConferencePlains]) != 1 {
		t.Fatalf("unexpected grouping: %d desert, %d plains",
			len(grouped[team.ConferenceDesert]), len(grouped[team.ConferencePlains]))
	}
}

func TestTeamService_SetAllLogos_MatchesNormalizedNames(t *testing.T) {
	service, teamRepo := newTeamService(t)

	for _, input := range []AddTeamInput{
		{GuildID: testGuildID, Name: "Sand Scorpions", RoleID: "role-1", Conference: "desert"},
		{GuildID: testGuildID, Name: "Bison", RoleID: "role-2", Conference: "plains"},
	} {
		if _, err := service.AddTeam(t.Context(), input); err != nil {
			t.Fatalf("add team failed: %v", err)
		}
	}

	updated, err := service.SetAllLogos(t.Context(), testGuildID, map[string]string{
		"sand_scorpions": "<:sand_scorpions:1>",
		"unrelated":      "<:unrelated:2>",
	})
	if err != nil {
		t.Fatalf("set all logos failed: %v", err)
	}
	if updated != 1 {
		t.Fatalf("expected 1 team updated, got %d", updated)
	}

	item, _, _ := teamRepo.GetByName(t.Context(), testGuildID, "Sand Scorpions")
	if item.LogoEmoji != "<:sand_scorpions:1>" {
		t.Fatalf("expected logo set, got %q", item.LogoEmoji)
	}
}

func TestTeamService_RemoveTeam_NotFound(t *testing.T) {
	service, _ := newTeamService(t)

	err := service.RemoveTeam(t.Context(), testGuildID, "Ghosts")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
