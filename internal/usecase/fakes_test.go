package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/mba-league/mbabot/internal/domain/guild"
)

type staticIDGenerator struct {
	id string
}

func (g staticIDGenerator) NewID() (string, error) {
	return g.id, nil
}

type seqIDGenerator struct {
	prefix string
	next   int
}

func (g *seqIDGenerator) NewID() (string, error) {
	g.next++
	return fmt.Sprintf("%s-%03d", g.prefix, g.next), nil
}

type fixedSettings struct {
	settings guild.Settings
}

func (f *fixedSettings) Settings(_ context.Context, guildID string) (guild.Settings, error) {
	out := f.settings
	out.GuildID = guildID
	return out, nil
}

// fakeRoles is an in-memory role state, keyed user id then role id.
type fakeRoles struct {
	mu   sync.Mutex
	held map[string]map[string]bool
}

func newFakeRoles() *fakeRoles {
	return &fakeRoles{held: make(map[string]map[string]bool)}
}

func (f *fakeRoles) grant(userID, roleID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.held[userID] == nil {
		f.held[userID] = make(map[string]bool)
	}
	f.held[userID][roleID] = true
}

func (f *fakeRoles) MemberHasRole(_ context.Context, _, userID, roleID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.held[userID][roleID], nil
}

func (f *fakeRoles) MemberHasAnyRole(_ context.Context, _, userID string, roleIDs []string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, roleID := range roleIDs {
		if f.held[userID][roleID] {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRoles) RoleHolders(_ context.Context, _, roleID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, 0, 4)
	for userID, roles := range f.held {
		if roles[roleID] {
			out = append(out, userID)
		}
	}
	return out, nil
}

func (f *fakeRoles) GrantRole(_ context.Context, _, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.held[userID] == nil {
		f.held[userID] = make(map[string]bool)
	}
	f.held[userID][roleID] = true
	return nil
}

func (f *fakeRoles) RevokeRole(_ context.Context, _, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.held[userID], roleID)
	return nil
}

type sentDM struct {
	UserID string
	Msg    Notification
}

type sentAnnouncement struct {
	ChannelID string
	Msg       Notification
}

// recordingNotifier captures deliveries; dmErrFor simulates users whose
// DMs are closed.
type recordingNotifier struct {
	mu            sync.Mutex
	dms           []sentDM
	announcements []sentAnnouncement
	dmErrFor      map[string]error
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{dmErrFor: make(map[string]error)}
}

func (n *recordingNotifier) DirectMessage(_ context.Context, userID string, msg Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := n.dmErrFor[userID]; err != nil {
		return err
	}
	n.dms = append(n.dms, sentDM{UserID: userID, Msg: msg})
	return nil
}

func (n *recordingNotifier) Announce(_ context.Context, _, channelID string, msg Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.announcements = append(n.announcements, sentAnnouncement{ChannelID: channelID, Msg: msg})
	return nil
}

func (n *recordingNotifier) dmCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	return len(n.dms)
}

func (n *recordingNotifier) lastAnnouncement() (sentAnnouncement, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.announcements) == 0 {
		return sentAnnouncement{}, false
	}
	return n.announcements[len(n.announcements)-1], true
}
