package usecase

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mba-league/mbabot/internal/domain/proposal"
	"github.com/mba-league/mbabot/internal/infrastructure/repository/memory"
	"github.com/mba-league/mbabot/internal/platform/logging"
)

type proposalFixture struct {
	*rosterFixture
	service      *ProposalService
	proposalRepo *memory.ProposalRepository
	clock        time.Time
}

func newProposalFixture(t *testing.T, cap int) *proposalFixture {
	t.Helper()

	f := &proposalFixture{
		rosterFixture: newRosterFixture(t, cap),
		proposalRepo:  memory.NewProposalRepository(),
		clock:         time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	f.service = NewProposalService(
		f.proposalRepo,
		f.teamRepo,
		f.rosterFixture.service,
		f.settings,
		f.notifier,
		&seqIDGenerator{prefix: "proposal"},
		logging.NewNop(),
	)
	f.service.now = func() time.Time { return f.clock }

	return f
}

// grantAdmin marks a user as league admin so they can act for any team.
func (f *proposalFixture) grantAdmin(userID string) {
	f.roles.grant(userID, adminRoleID)
}

// signStaff puts a user on a team and promotes them to assistant coach.
func (f *proposalFixture) signStaff(t *testing.T, userID, teamName string) {
	t.Helper()

	if _, err := f.rosterFixture.service.Sign(t.Context(), SignInput{
		GuildID:  testGuildID,
		ActorID:  "admin-1",
		PlayerID: userID,
		TeamName: teamName,
	}); err != nil {
		t.Fatalf("sign %s failed: %v", userID, err)
	}
	if _, err := f.rosterFixture.service.Promote(t.Context(), PromoteInput{
		GuildID:  testGuildID,
		ActorID:  "admin-1",
		PlayerID: userID,
	}); err != nil {
		t.Fatalf("promote %s failed: %v", userID, err)
	}
}

func TestProposalService_Offer_AcceptSigns(t *testing.T) {
	f := newProposalFixture(t, 0)
	f.grantAdmin("coach-1")

	created, err := f.service.ProposeOffer(t.Context(), OfferInput{
		GuildID:    testGuildID,
		ProposerID: "coach-1",
		PlayerID:   "player-1",
		TeamName:   "Scorpions",
	})
	if err != nil {
		t.Fatalf("propose offer failed: %v", err)
	}
	if !created.ExpiresAt.Equal(created.CreatedAt.Add(24 * time.Hour)) {
		t.Fatalf("expected 24h expiry, got %v", created.ExpiresAt.Sub(created.CreatedAt))
	}
	if f.notifier.dmCount() != 1 {
		t.Fatalf("expected 1 dm, got %d", f.notifier.dmCount())
	}

	if err := f.service.Resolve(t.Context(), testGuildID, created.ID, proposal.DecisionAccept, "player-1"); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	membership, exists, _ := f.rosterRepo.GetByPlayer(t.Context(), testGuildID, "player-1")
	if !exists || membership.TeamID != "team-scorpions" {
		t.Fatalf("expected player signed to scorpions, got %+v exists=%v", membership, exists)
	}

	// A resolved proposal is gone; resolving again is not found.
	err = f.service.Resolve(t.Context(), testGuildID, created.ID, proposal.DecisionAccept, "player-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second resolve, got %v", err)
	}
}

func TestProposalService_Offer_OnlyPlayerMayRespond(t *testing.T) {
	f := newProposalFixture(t, 0)
	f.grantAdmin("coach-1")

	created, err := f.service.ProposeOffer(t.Context(), OfferInput{
		GuildID:    testGuildID,
		ProposerID: "coach-1",
		PlayerID:   "player-1",
		TeamName:   "Scorpions",
	})
	if err != nil {
		t.Fatalf("propose offer failed: %v", err)
	}

	err = f.service.Resolve(t.Context(), testGuildID, created.ID, proposal.DecisionAccept, "someone-else")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestProposalService_Offer_DeclineDeletes(t *testing.T) {
	f := newProposalFixture(t, 0)
	f.grantAdmin("coach-1")

	created, err := f.service.ProposeOffer(t.Context(), OfferInput{
		GuildID:    testGuildID,
		ProposerID: "coach-1",
		PlayerID:   "player-1",
		TeamName:   "Scorpions",
	})
	if err != nil {
		t.Fatalf("propose offer failed: %v", err)
	}

	if err := f.service.Resolve(t.Context(), testGuildID, created.ID, proposal.DecisionDecline, "player-1"); err != nil {
		t.Fatalf("decline failed: %v", err)
	}
	if _, exists, _ := f.proposalRepo.GetByID(t.Context(), testGuildID, created.ID); exists {
		t.Fatal("expected declined proposal deleted")
	}
	if _, exists, _ := f.rosterRepo.GetByPlayer(t.Context(), testGuildID, "player-1"); exists {
		t.Fatal("expected player unsigned after decline")
	}
}

func TestProposalService_Offer_WithdrawProposerOnly(t *testing.T) {
	f := newProposalFixture(t, 0)
	f.grantAdmin("coach-1")

	created, err := f.service.ProposeOffer(t.Context(), OfferInput{
		GuildID:    testGuildID,
		ProposerID: "coach-1",
		PlayerID:   "player-1",
		TeamName:   "Scorpions",
	})
	if err != nil {
		t.Fatalf("propose offer failed: %v", err)
	}

	err = f.service.Resolve(t.Context(), testGuildID, created.ID, proposal.DecisionWithdraw, "player-1")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := f.service.Resolve(t.Context(), testGuildID, created.ID, proposal.DecisionWithdraw, "coach-1"); err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if _, exists, _ := f.proposalRepo.GetByID(t.Context(), testGuildID, created.ID); exists {
		t.Fatal("expected withdrawn proposal deleted")
	}
}

func TestProposalService_Offer_LazyExpiry(t *testing.T) {
	f := newProposalFixture(t, 0)
	f.grantAdmin("coach-1")

	created, err := f.service.ProposeOffer(t.Context(), OfferInput{
		GuildID:    testGuildID,
		ProposerID: "coach-1",
		PlayerID:   "player-1",
		TeamName:   "Scorpions",
	})
	if err != nil {
		t.Fatalf("propose offer failed: %v", err)
	}

	f.clock = f.clock.Add(25 * time.Hour)

	err = f.service.Resolve(t.Context(), testGuildID, created.ID, proposal.DecisionAccept, "player-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound past expiry, got %v", err)
	}
	if _, exists, _ := f.proposalRepo.GetByID(t.Context(), testGuildID, created.ID); exists {
		t.Fatal("expected expired proposal removed on resolve")
	}
	if _, exists, _ := f.rosterRepo.GetByPlayer(t.Context(), testGuildID, "player-1"); exists {
		t.Fatal("expected no signing from an expired offer")
	}
}

func TestProposalService_Offer_Duplicate(t *testing.T) {
	f := newProposalFixture(t, 0)
	f.grantAdmin("coach-1")

	input := OfferInput{
		GuildID:    testGuildID,
		ProposerID: "coach-1",
		PlayerID:   "player-1",
		TeamName:   "Scorpions",
	}
	if _, err := f.service.ProposeOffer(t.Context(), input); err != nil {
		t.Fatalf("propose offer failed: %v", err)
	}

	_, err := f.service.ProposeOffer(t.Context(), input)
	if !errors.Is(err, ErrDuplicateProposal) {
		t.Fatalf("expected ErrDuplicateProposal, got %v", err)
	}

	// Past the first offer's expiry the pair is proposable again.
	f.clock = f.clock.Add(25 * time.Hour)
	if _, err := f.service.ProposeOffer(t.Context(), input); err != nil {
		t.Fatalf("propose after expiry failed: %v", err)
	}
}

func TestProposalService_Offer_DeliveryFailure(t *testing.T) {
	f := newProposalFixture(t, 0)
	f.grantAdmin("coach-1")
	f.notifier.dmErrFor["player-1"] = fmt.Errorf("dms closed")

	_, err := f.service.ProposeOffer(t.Context(), OfferInput{
		GuildID:    testGuildID,
		ProposerID: "coach-1",
		PlayerID:   "player-1",
		TeamName:   "Scorpions",
	})
	if !errors.Is(err, ErrDeliveryFailed) {
		t.Fatalf("expected ErrDeliveryFailed, got %v", err)
	}

	items, _ := f.proposalRepo.ListByGuild(t.Context(), testGuildID)
	if len(items) != 0 {
		t.Fatalf("expected undeliverable offer removed, found %d", len(items))
	}
}

func TestProposalService_Offer_AcceptIntoFullRoster(t *testing.T) {
	f := newProposalFixture(t, 2)
	f.signStaff(t, "coach-1", "Scorpions")

	created, err := f.service.ProposeOffer(t.Context(), OfferInput{
		GuildID:    testGuildID,
		ProposerID: "coach-1",
		PlayerID:   "player-1",
		TeamName:   "Scorpions",
	})
	if err != nil {
		t.Fatalf("propose offer failed: %v", err)
	}

	// The roster fills while the offer is pending.
	if _, err := f.rosterFixture.service.Sign(t.Context(), SignInput{
		GuildID:  testGuildID,
		ActorID:  "admin-1",
		PlayerID: "player-2",
		TeamName: "Scorpions",
	}); err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	err = f.service.Resolve(t.Context(), testGuildID, created.ID, proposal.DecisionAccept, "player-1")
	if !errors.Is(err, ErrRosterFull) {
		t.Fatalf("expected ErrRosterFull, got %v", err)
	}
	if _, exists, _ := f.proposalRepo.GetByID(t.Context(), testGuildID, created.ID); exists {
		t.Fatal("expected consumed offer deleted")
	}
}

func TestProposalService_Offer_ProposerMustActForTeam(t *testing.T) {
	f := newProposalFixture(t, 0)

	input := OfferInput{
		GuildID:    testGuildID,
		ProposerID: "rando-1",
		PlayerID:   "player-1",
		TeamName:   "Scorpions",
	}
	_, err := f.service.ProposeOffer(t.Context(), input)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for non-staff proposer, got %v", err)
	}

	// Staff of another team cannot offer in this team's name either.
	f.signStaff(t, "coach-bison", "Bison")
	input.ProposerID = "coach-bison"
	_, err = f.service.ProposeOffer(t.Context(), input)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for rival staff proposer, got %v", err)
	}

	items, _ := f.proposalRepo.ListByGuild(t.Context(), testGuildID)
	if len(items) != 0 {
		t.Fatalf("expected no proposal created, found %d", len(items))
	}

	f.signStaff(t, "coach-1", "Scorpions")
	input.ProposerID = "coach-1"
	if _, err := f.service.ProposeOffer(t.Context(), input); err != nil {
		t.Fatalf("propose by team staff failed: %v", err)
	}
}

func TestProposalService_Trade_ProposerMustActForGivingTeam(t *testing.T) {
	f := newProposalFixture(t, 0)
	f.signStaff(t, "coach-to", "Bison")

	for playerID, teamName := range map[string]string{
		"player-1": "Scorpions",
		"player-2": "Bison",
	} {
		if _, err := f.rosterFixture.service.Sign(t.Context(), SignInput{
			GuildID:  testGuildID,
			ActorID:  "admin-1",
			PlayerID: playerID,
			TeamName: teamName,
		}); err != nil {
			t.Fatalf("sign failed: %v", err)
		}
	}

	// The receiving team's staff cannot open a trade on the giving
	// team's behalf.
	_, err := f.service.ProposeTrade(t.Context(), TradeInput{
		GuildID:    testGuildID,
		ProposerID: "coach-to",
		FromTeam:   "Scorpions",
		ToTeam:     "Bison",
		GivesID:    "player-1",
		GetsID:     "player-2",
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for receiving staff proposer, got %v", err)
	}

	items, _ := f.proposalRepo.ListByGuild(t.Context(), testGuildID)
	if len(items) != 0 {
		t.Fatalf("expected no proposal created, found %d", len(items))
	}
}

func TestProposalService_Gametime_ProposerMustActForHomeTeam(t *testing.T) {
	f := newProposalFixture(t, 0)
	f.signStaff(t, "coach-away", "Bison")

	_, err := f.service.ProposeGametime(t.Context(), GametimeInput{
		GuildID:    testGuildID,
		ProposerID: "coach-away",
		HomeTeam:   "Scorpions",
		AwayTeam:   "Bison",
		StartsAt:   f.clock.Add(48 * time.Hour),
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for away staff proposer, got %v", err)
	}
}

func TestProposalService_Trade_AcceptExecutes(t *testing.T) {
	f := newProposalFixture(t, 0)
	f.signStaff(t, "coach-from", "Scorpions")
	f.signStaff(t, "coach-to", "Bison")

	for playerID, teamName := range map[string]string{
		"player-1": "Scorpions",
		"player-2": "Bison",
	} {
		if _, err := f.rosterFixture.service.Sign(t.Context(), SignInput{
			GuildID:  testGuildID,
			ActorID:  "admin-1",
			PlayerID: playerID,
			TeamName: teamName,
		}); err != nil {
			t.Fatalf("sign failed: %v", err)
		}
	}

	created, err := f.service.ProposeTrade(t.Context(), TradeInput{
		GuildID:    testGuildID,
		ProposerID: "coach-from",
		FromTeam:   "Scorpions",
		ToTeam:     "Bison",
		GivesID:    "player-1",
		GetsID:     "player-2",
	})
	if err != nil {
		t.Fatalf("propose trade failed: %v", err)
	}
	if f.notifier.dmCount() == 0 {
		t.Fatal("expected trade delivered to receiving staff")
	}

	// The proposer cannot accept their own trade.
	err = f.service.Resolve(t.Context(), testGuildID, created.ID, proposal.DecisionAccept, "coach-from")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for proposer accept, got %v", err)
	}

	if err := f.service.Resolve(t.Context(), testGuildID, created.ID, proposal.DecisionAccept, "coach-to"); err != nil {
		t.Fatalf("accept trade failed: %v", err)
	}

	m1, _, _ := f.rosterRepo.GetByPlayer(t.Context(), testGuildID, "player-1")
	if m1.TeamID != "team-bison" {
		t.Fatalf("expected player-1 on bison, got %s", m1.TeamID)
	}
	if _, exists, _ := f.proposalRepo.GetByID(t.Context(), testGuildID, created.ID); exists {
		t.Fatal("expected accepted trade deleted")
	}
}

func TestProposalService_Trade_NoReachableStaff(t *testing.T) {
	f := newProposalFixture(t, 0)
	f.signStaff(t, "coach-from", "Scorpions")

	for playerID, teamName := range map[string]string{
		"player-1": "Scorpions",
		"player-2": "Bison",
	} {
		if _, err := f.rosterFixture.service.Sign(t.Context(), SignInput{
			GuildID:  testGuildID,
			ActorID:  "admin-1",
			PlayerID: playerID,
			TeamName: teamName,
		}); err != nil {
			t.Fatalf("sign failed: %v", err)
		}
	}

	// Bison has no staff, so nobody can receive the proposal.
	_, err := f.service.ProposeTrade(t.Context(), TradeInput{
		GuildID:    testGuildID,
		ProposerID: "coach-from",
		FromTeam:   "Scorpions",
		ToTeam:     "Bison",
		GivesID:    "player-1",
		GetsID:     "player-2",
	})
	if !errors.Is(err, ErrDeliveryFailed) {
		t.Fatalf("expected ErrDeliveryFailed, got %v", err)
	}

	items, _ := f.proposalRepo.ListByGuild(t.Context(), testGuildID)
	if len(items) != 0 {
		t.Fatalf("expected undeliverable trade removed, found %d", len(items))
	}
}

func TestProposalService_Gametime_AcceptAnnounces(t *testing.T) {
	f := newProposalFixture(t, 0)
	f.signStaff(t, "coach-home", "Scorpions")
	f.signStaff(t, "coach-away", "Bison")

	startsAt := f.clock.Add(48 * time.Hour)
	created, err := f.service.ProposeGametime(t.Context(), GametimeInput{
		GuildID:    testGuildID,
		ProposerID: "coach-home",
		HomeTeam:   "Scorpions",
		AwayTeam:   "Bison",
		StartsAt:   startsAt,
	})
	if err != nil {
		t.Fatalf("propose gametime failed: %v", err)
	}

	if err := f.service.Resolve(t.Context(), testGuildID, created.ID, proposal.DecisionAccept, "coach-away"); err != nil {
		t.Fatalf("accept gametime failed: %v", err)
	}

	last, ok := f.notifier.lastAnnouncement()
	if !ok || last.ChannelID != "chan-schedule" {
		t.Fatalf("expected schedule announcement, got %+v ok=%v", last, ok)
	}
	if _, exists, _ := f.proposalRepo.GetByID(t.Context(), testGuildID, created.ID); exists {
		t.Fatal("expected accepted gametime deleted")
	}
}

func (f *proposalFixture) openForceSignReport(t *testing.T) proposal.Proposal {
	t.Helper()

	if _, err := f.rosterFixture.service.Sign(t.Context(), SignInput{
		GuildID:  testGuildID,
		ActorID:  "admin-1",
		PlayerID: "player-1",
		TeamName: "Scorpions",
	}); err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	created, err := f.service.OpenForceSignReport(t.Context(), ForceSignReportInput{
		GuildID:  testGuildID,
		ActorID:  "admin-1",
		PlayerID: "player-1",
		TeamID:   "team-scorpions",
	})
	if err != nil {
		t.Fatalf("open force sign report failed: %v", err)
	}

	return created
}

func TestProposalService_ForceSignReport_ConfirmReleases(t *testing.T) {
	f := newProposalFixture(t, 0)
	created := f.openForceSignReport(t)

	// Only the signed player may confirm the report.
	err := f.service.Resolve(t.Context(), testGuildID, created.ID, proposal.DecisionAccept, "someone-else")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	if err := f.service.Resolve(t.Context(), testGuildID, created.ID, proposal.DecisionAccept, "player-1"); err != nil {
		t.Fatalf("confirm report failed: %v", err)
	}

	if _, exists, _ := f.rosterRepo.GetByPlayer(t.Context(), testGuildID, "player-1"); exists {
		t.Fatal("expected reported signing reverted")
	}
	if _, exists, _ := f.proposalRepo.GetByID(t.Context(), testGuildID, created.ID); exists {
		t.Fatal("expected resolved report deleted")
	}

	last, ok := f.notifier.lastAnnouncement()
	if !ok || last.ChannelID != "chan-tx" || last.Msg.Title != "Force Sign Reported" {
		t.Fatalf("expected force sign warning in transactions channel, got %+v ok=%v", last, ok)
	}
}

func TestProposalService_ForceSignReport_DismissKeepsMembership(t *testing.T) {
	f := newProposalFixture(t, 0)
	created := f.openForceSignReport(t)

	if err := f.service.Resolve(t.Context(), testGuildID, created.ID, proposal.DecisionDecline, "player-1"); err != nil {
		t.Fatalf("dismiss report failed: %v", err)
	}

	membership, exists, _ := f.rosterRepo.GetByPlayer(t.Context(), testGuildID, "player-1")
	if !exists || membership.TeamID != "team-scorpions" {
		t.Fatalf("expected membership untouched, got %+v exists=%v", membership, exists)
	}
	if _, exists, _ := f.proposalRepo.GetByID(t.Context(), testGuildID, created.ID); exists {
		t.Fatal("expected dismissed report deleted")
	}
}

func TestProposalService_ForceSignReport_StaleAfterRelease(t *testing.T) {
	f := newProposalFixture(t, 0)
	created := f.openForceSignReport(t)

	// The player is released before acting on the report.
	if err := f.rosterFixture.service.Release(t.Context(), ReleaseInput{
		GuildID:  testGuildID,
		ActorID:  "admin-1",
		PlayerID: "player-1",
	}); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	err := f.service.Resolve(t.Context(), testGuildID, created.ID, proposal.DecisionAccept, "player-1")
	if !errors.Is(err, ErrNotRostered) {
		t.Fatalf("expected ErrNotRostered for stale report, got %v", err)
	}
	if _, exists, _ := f.proposalRepo.GetByID(t.Context(), testGuildID, created.ID); exists {
		t.Fatal("expected stale report consumed")
	}
}

func TestProposalService_SweepExpired(t *testing.T) {
	f := newProposalFixture(t, 0)
	f.grantAdmin("coach-1")

	if _, err := f.service.ProposeOffer(t.Context(), OfferInput{
		GuildID:    testGuildID,
		ProposerID: "coach-1",
		PlayerID:   "player-1",
		TeamName:   "Scorpions",
	}); err != nil {
		t.Fatalf("propose offer failed: %v", err)
	}

	f.clock = f.clock.Add(25 * time.Hour)

	removed, err := f.service.SweepExpired(t.Context())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 swept, got %d", removed)
	}
}

func TestProposalService_ListPending_FiltersExpiredOffers(t *testing.T) {
	f := newProposalFixture(t, 0)
	f.grantAdmin("coach-1")

	if _, err := f.service.ProposeOffer(t.Context(), OfferInput{
		GuildID:    testGuildID,
		ProposerID: "coach-1",
		PlayerID:   "player-1",
		TeamName:   "Scorpions",
	}); err != nil {
		t.Fatalf("propose offer failed: %v", err)
	}

	items, err := f.service.ListPending(t.Context(), testGuildID)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 pending, got %d", len(items))
	}

	f.clock = f.clock.Add(25 * time.Hour)

	items, err = f.service.ListPending(t.Context(), testGuildID)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected expired offer filtered, got %d", len(items))
	}
}
