package enrollment

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"scrimbot/errs"
	"scrimbot/log"
)

// Registry is the single source of truth for "is this user mid-wizard".
// All access happens under the mutex with no I/O held inside it, so the
// single-session-per-user invariant cannot race.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	channels ChannelProvider
}

func NewRegistry(channels ChannelProvider) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		channels: channels,
	}
}

// Start registers the session, rejecting when the user already has one.
func (r *Registry) Start(s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[s.UserID]; ok {
		return errs.ErrSessionActive
	}
	r.sessions[s.UserID] = s

	return nil
}

func (r *Registry) Get(userID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.sessions[userID]
}

// End removes the session and deletes its temporary channel. It is
// idempotent: ending an absent session is a no-op, and a channel that was
// already removed externally is tolerated.
func (r *Registry) End(ctx context.Context, userID string) {
	r.mu.Lock()
	s, ok := r.sessions[userID]
	if ok {
		delete(r.sessions, userID)
	}
	r.mu.Unlock()

	if !ok {
		return
	}

	r.teardown(ctx, s)
}

// EndIf ends the session only if the registered session is still the one
// identified by id. Timeout callbacks use it so a timer that fires after
// the session was already torn down, or after the user started a fresh
// session, does nothing. The check and the removal happen under one lock,
// so a stale callback can never unregister a session it did not verify.
func (r *Registry) EndIf(ctx context.Context, userID string, id uuid.UUID) bool {
	r.mu.Lock()
	s, ok := r.sessions[userID]
	if !ok || s.ID != id {
		r.mu.Unlock()
		return false
	}
	delete(r.sessions, userID)
	r.mu.Unlock()

	r.teardown(ctx, s)
	return true
}

func (r *Registry) teardown(ctx context.Context, s *Session) {
	if s.timer != nil {
		s.timer.Stop()
	}

	if s.ChannelID != "" {
		if err := r.channels.DeleteChannel(ctx, s.ChannelID); err != nil {
			log.Logger.Warn("failed deleting enrollment channel",
				zap.String("channelID", s.ChannelID), zap.Error(err))
		}
	}

	log.Logger.Info("enrollment session ended", zap.String("userID", s.UserID))
}

// Has reports whether the user is mid-wizard.
func (r *Registry) Has(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.sessions[userID]
	return ok
}

// Active returns the number of in-flight sessions.
func (r *Registry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sessions)
}
