package usecase

import (
	"context"
	"fmt"
)

// RefereeGate answers referee checks from guild settings and role
// state. Admins pass the gate too.
type RefereeGate struct {
	settings SettingsReader
	roles    RoleDirectory
}

func NewRefereeGate(settings SettingsReader, roles RoleDirectory) *RefereeGate {
	return &RefereeGate{settings: settings, roles: roles}
}

func (g *RefereeGate) IsReferee(ctx context.Context, guildID, userID string) (bool, error) {
	settings, err := g.settings.Settings(ctx, guildID)
	if err != nil {
		return false, err
	}

	checks := make([]string, 0, 2)
	if settings.RefereeRoleID != "" {
		checks = append(checks, settings.RefereeRoleID)
	}
	if settings.AdminRoleID != "" {
		checks = append(checks, settings.AdminRoleID)
	}
	if len(checks) == 0 {
		return false, fmt.Errorf("no referee or admin role configured")
	}

	return g.roles.MemberHasAnyRole(ctx, guildID, userID, checks)
}
