package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/mba-league/mbabot/internal/domain/guild"
	"github.com/mba-league/mbabot/internal/infrastructure/repository/memory"
	"github.com/mba-league/mbabot/internal/platform/cache"
	"github.com/mba-league/mbabot/internal/platform/logging"
)

func newGuildService(t *testing.T) (*GuildService, *memory.GuildRepository, *memory.SavedRolesRepository) {
	t.Helper()

	guildRepo := memory.NewGuildRepository()
	savedRepo := memory.NewSavedRolesRepository()
	service := NewGuildService(guildRepo, savedRepo, cache.NewStore(time.Minute), logging.NewNop())

	return service, guildRepo, savedRepo
}

func TestGuildService_Settings_DefaultsWhenUnconfigured(t *testing.T) {
	service, _, _ := newGuildService(t)

	settings, err := service.Settings(t.Context(), testGuildID)
	if err != nil {
		t.Fatalf("settings failed: %v", err)
	}
	if settings.GuildID != testGuildID {
		t.Fatalf("expected guild id carried, got %q", settings.GuildID)
	}
	if settings.Cap() != guild.DefaultRosterCap {
		t.Fatalf("expected default cap %d, got %d", guild.DefaultRosterCap, settings.Cap())
	}
}

func TestGuildService_UpdateSettings_InvalidatesCache(t *testing.T) {
	service, _, _ := newGuildService(t)

	// Prime the cache with the unconfigured default.
	if _, err := service.Settings(t.Context(), testGuildID); err != nil {
		t.Fatalf("settings failed: %v", err)
	}

	if err := service.UpdateSettings(t.Context(), guild.Settings{
		GuildID:   testGuildID,
		RosterCap: 12,
	}); err != nil {
		t.Fatalf("update settings failed: %v", err)
	}

	settings, err := service.Settings(t.Context(), testGuildID)
	if err != nil {
		t.Fatalf("settings failed: %v", err)
	}
	if settings.Cap() != 12 {
		t.Fatalf("expected cap 12 after update, got %d", settings.Cap())
	}
}

func TestGuildService_UpdateSettings_Invalid(t *testing.T) {
	service, _, _ := newGuildService(t)

	err := service.UpdateSettings(t.Context(), guild.Settings{GuildID: ""})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestGuildService_RestoreMemberRoles_ConsumesSnapshot(t *testing.T) {
	service, _, savedRepo := newGuildService(t)

	if err := service.UpdateSettings(t.Context(), guild.Settings{
		GuildID:     testGuildID,
		AutoroleIDs: []string{"role-member", "role-rules"},
	}); err != nil {
		t.Fatalf("update settings failed: %v", err)
	}
	if err := service.SaveMemberRoles(t.Context(), testGuildID, "user-1", []string{"role-scorpions", "role-member"}); err != nil {
		t.Fatalf("save roles failed: %v", err)
	}

	restored, err := service.RestoreMemberRoles(t.Context(), testGuildID, "user-1")
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	want := map[string]bool{"role-member": true, "role-rules": true, "role-scorpions": true}
	if len(restored) != len(want) {
		t.Fatalf("expected %d roles, got %v", len(want), restored)
	}
	for _, roleID := range restored {
		if !want[roleID] {
			t.Fatalf("unexpected role %s", roleID)
		}
	}

	if _, exists, _ := savedRepo.Get(t.Context(), testGuildID, "user-1"); exists {
		t.Fatal("expected snapshot consumed")
	}

	// Second restore only yields the autoroles.
	restored, err = service.RestoreMemberRoles(t.Context(), testGuildID, "user-1")
	if err != nil {
		t.Fatalf("second restore failed: %v", err)
	}
	if len(restored) != 2 {
		t.Fatalf("expected only autoroles, got %v", restored)
	}
}

func TestGuildService_SaveMemberRoles_EmptyIsNoop(t *testing.T) {
	service, _, savedRepo := newGuildService(t)

	if err := service.SaveMemberRoles(t.Context(), testGuildID, "user-1", nil); err != nil {
		t.Fatalf("save roles failed: %v", err)
	}
	if _, exists, _ := savedRepo.Get(t.Context(), testGuildID, "user-1"); exists {
		t.Fatal("expected no snapshot for empty role set")
	}
}
