package transfer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"scrimbot/entity"
	"scrimbot/log"
)

// TeamStore is the slice of the persistent store the subsystem needs.
type TeamStore interface {
	PutTeam(ctx context.Context, t *entity.Team) error
	DeleteTeam(ctx context.Context, userID string) error
}

type Notifier interface {
	PublicLog(message string)
}

// SessionChecker reports whether a user has an enrollment in flight.
type SessionChecker interface {
	Has(userID string) bool
}

// Outcome is the departure decision for an affected team.
type Outcome int

const (
	// OutcomeNone: the departing member is on no team.
	OutcomeNone Outcome = iota
	// OutcomeKeptActiveSession: the team's enrollment is mid-flight; the
	// departure was recorded and deletion deferred.
	OutcomeKeptActiveSession
	// OutcomeKeptValidTransfer: the departing member had handed off
	// leadership and the transfer stands; the team survives.
	OutcomeKeptValidTransfer
	// OutcomeDeletedInvalidTransfer: a member left before the transfer was
	// finalized, invalidating it; the team was deleted.
	OutcomeDeletedInvalidTransfer
	// OutcomeDeleted: ordinary member departure; the team was deleted.
	OutcomeDeleted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeKeptActiveSession:
		return "kept, active session"
	case OutcomeKeptValidTransfer:
		return "kept, valid transfer"
	case OutcomeDeletedInvalidTransfer:
		return "deleted, invalid transfer"
	case OutcomeDeleted:
		return "deleted"
	}

	return "unknown"
}

// Service performs leadership transfers and adjudicates member
// departures.
type Service struct {
	teams    TeamStore
	tracker  *Tracker
	sessions SessionChecker
	notify   Notifier
}

func NewService(teams TeamStore, tracker *Tracker, sessions SessionChecker, notify Notifier) *Service {
	return &Service{
		teams:    teams,
		tracker:  tracker,
		sessions: sessions,
		notify:   notify,
	}
}

// Transfer moves the team document from the old leader's key to the new
// one and records the handoff. The caller has already verified the new
// leader is a roster member and still in the guild.
func (s *Service) Transfer(ctx context.Context, oldLeaderID, newLeaderID string, team entity.Team) error {
	team.UserID = newLeaderID

	if err := s.teams.DeleteTeam(ctx, oldLeaderID); err != nil {
		return err
	}
	if err := s.teams.PutTeam(ctx, &team); err != nil {
		return err
	}

	s.tracker.RecordTransfer(oldLeaderID, newLeaderID)

	s.notify.PublicLog(fmt.Sprintf(
		"👑 Team **%s** leadership transferred from <@%s> to <@%s>.",
		team.TeamName, oldLeaderID, newLeaderID))

	log.Logger.Info("leadership transferred",
		zap.String("team", team.TeamName),
		zap.String("oldLeader", oldLeaderID),
		zap.String("newLeader", newLeaderID))

	return nil
}

// HandleDeparture decides what happens to the departing member's team, if
// any. The ordering here is the tie-breaker against the race between a
// roster going stale and a transfer being finalized: departures recorded
// during an active session invalidate any transfer finalized after them.
func (s *Service) HandleDeparture(ctx context.Context, memberID string, team *entity.Team) (Outcome, error) {
	if team == nil {
		return OutcomeNone, nil
	}

	sessionActive := s.sessions.Has(team.UserID)
	if sessionActive {
		s.tracker.RecordDeparture(team.UserID, memberID)
	}

	if s.tracker.HasTransferred(memberID) {
		if s.tracker.TransferValid(memberID) {
			newLeaderID, _ := s.tracker.NewLeader(memberID)
			log.Logger.Info("departure ignored, leadership already transferred",
				zap.String("team", team.TeamName),
				zap.String("newLeader", newLeaderID))
			return OutcomeKeptValidTransfer, nil
		}

		if err := s.teams.DeleteTeam(ctx, team.UserID); err != nil {
			return OutcomeNone, err
		}
		s.notify.PublicLog(fmt.Sprintf(
			"🗑️ Team **%s** (Tag: %s) was deleted because member(s) left before leadership transfer. Team Leader: <@%s>",
			team.TeamName, team.TeamTag, team.UserID))
		return OutcomeDeletedInvalidTransfer, nil
	}

	if sessionActive {
		return OutcomeKeptActiveSession, nil
	}

	if err := s.teams.DeleteTeam(ctx, team.UserID); err != nil {
		return OutcomeNone, err
	}
	s.notify.PublicLog(fmt.Sprintf(
		"🗑️ Team **%s** (Tag: %s) was automatically deleted because <@%s> left the server. Team Leader: <@%s>",
		team.TeamName, team.TeamTag, memberID, team.UserID))

	return OutcomeDeleted, nil
}
