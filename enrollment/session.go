package enrollment

import (
	"time"

	"github.com/google/uuid"

	"scrimbot/entity"
)

// Step is the wizard's position. Transitions only ever move forward;
// anything else is rejected with errs.ErrWrongStep.
type Step int

const (
	StepTeamInfo Step = iota
	StepRoster
	StepConfirm
)

func (s Step) String() string {
	switch s {
	case StepTeamInfo:
		return "team_info"
	case StepRoster:
		return "roster"
	case StepConfirm:
		return "confirmation"
	}

	return "unknown"
}

// Session is the in-memory state of one user's enrollment wizard. It is
// never persisted; losing the process loses the draft.
type Session struct {
	ID        uuid.UUID
	UserID    string
	ChannelID string
	StartTime time.Time
	Step      Step
	IsUpdate  bool
	Draft     entity.Team

	timer *time.Timer
}

// Deadline is the instant the session times out.
func (s *Session) Deadline(timeout time.Duration) time.Time {
	return s.StartTime.Add(timeout)
}
