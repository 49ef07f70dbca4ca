package enrollment

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"scrimbot/entity"
	"scrimbot/errs"
	"scrimbot/log"
)

const (
	// SessionTimeout bounds the whole wizard, regardless of step.
	SessionTimeout = 10 * time.Minute

	// Teardown grace delays keep the final message visible before the
	// temporary channel disappears.
	finishGrace = 5 * time.Second
	cancelGrace = 3 * time.Second

	maxRosterSize = 50
)

var (
	rosterLine = regexp.MustCompile(`^(\d{17,19})\s*-\s*(.+)$`)
	snowflake  = regexp.MustCompile(`^\d{17,19}$`)
)

// TeamStore is the slice of the persistent store the wizard needs.
type TeamStore interface {
	Team(ctx context.Context, userID string) (*entity.Team, error)
	PutTeam(ctx context.Context, t *entity.Team) error
	DeleteTeam(ctx context.Context, userID string) error
	Teams(ctx context.Context) ([]entity.Team, error)
}

// ChannelProvider creates and tears down the per-session private channel.
type ChannelProvider interface {
	CreatePrivateChannel(ctx context.Context, ownerID, name string) (string, error)
	DeleteChannel(ctx context.Context, channelID string) error
}

// MembershipOracle answers whether a user is currently in the guild.
type MembershipOracle interface {
	IsMember(ctx context.Context, userID string) (bool, error)
}

// Notifier posts to the public audit log. It is fire-and-forget; failures
// never reach the wizard.
type Notifier interface {
	PublicLog(message string)
}

// Transferrer reassigns a team to a new leader.
type Transferrer interface {
	Transfer(ctx context.Context, oldLeaderID, newLeaderID string, team entity.Team) error
}

// Wizard drives enrollment sessions through their steps. All validation
// failures leave the session untouched so the user can retry the step.
type Wizard struct {
	registry  *Registry
	teams     TeamStore
	channels  ChannelProvider
	members   MembershipOracle
	notify    Notifier
	transfers Transferrer

	timeout time.Duration

	// onExpire, when set, runs after a session times out.
	onExpire func(userID string)
}

func NewWizard(registry *Registry, teams TeamStore, channels ChannelProvider, members MembershipOracle, notify Notifier, transfers Transferrer) *Wizard {
	return &Wizard{
		registry:  registry,
		teams:     teams,
		channels:  channels,
		members:   members,
		notify:    notify,
		transfers: transfers,
		timeout:   SessionTimeout,
	}
}

// SetTimeout overrides the session timeout. Tests use it.
func (w *Wizard) SetTimeout(d time.Duration) { w.timeout = d }

// Timeout reports the session timeout in effect.
func (w *Wizard) Timeout() time.Duration { return w.timeout }

// OnExpire registers a hook invoked when a session times out.
func (w *Wizard) OnExpire(fn func(userID string)) { w.onExpire = fn }

// Begin opens a session for the user and creates its private channel.
// In update mode the existing team seeds the draft, but only after every
// roster member's guild membership is confirmed: if anyone left, the team
// is deleted outright and the update refused, with the departed names in
// the second return value.
func (w *Wizard) Begin(ctx context.Context, userID, username string, isUpdate bool) (*Session, []string, error) {
	if w.registry.Get(userID) != nil {
		return nil, nil, errs.ErrSessionActive
	}

	draft := entity.Team{}
	if isUpdate {
		team, err := w.teams.Team(ctx, userID)
		if err != nil {
			if err == errs.ErrNotFound {
				return nil, nil, errs.ErrNoTeam
			}
			return nil, nil, err
		}

		missing := []string{}
		for _, p := range team.Players {
			ok, err := w.members.IsMember(ctx, p.ID)
			if err != nil {
				return nil, nil, err
			}
			if !ok {
				missing = append(missing, p.Name)
			}
		}

		if len(missing) > 0 {
			if err := w.teams.DeleteTeam(ctx, userID); err != nil {
				return nil, nil, err
			}
			w.notify.PublicLog(fmt.Sprintf(
				"🗑️ Team **%s** (Tag: %s) was automatically deleted because team member(s) left the server: %s. Team Leader: <@%s>",
				team.TeamName, team.TeamTag, strings.Join(missing, ", "), userID))
			return nil, missing, errs.ErrRosterMemberLeft
		}

		draft = *team
	}

	name := "enrollment-" + username
	if isUpdate {
		name = "update-" + username
	}
	channelID, err := w.channels.CreatePrivateChannel(ctx, userID, name)
	if err != nil {
		log.Logger.Error("failed creating enrollment channel", zap.Error(err), zap.String("userID", userID))
		return nil, nil, errs.ErrChannel
	}

	s := &Session{
		ID:        uuid.New(),
		UserID:    userID,
		ChannelID: channelID,
		StartTime: time.Now(),
		Step:      StepTeamInfo,
		IsUpdate:  isUpdate,
		Draft:     draft,
	}

	if err := w.registry.Start(s); err != nil {
		// Lost the race against a concurrent Begin for the same user.
		if derr := w.channels.DeleteChannel(ctx, channelID); derr != nil {
			log.Logger.Warn("failed deleting orphaned channel", zap.Error(derr))
		}
		return nil, nil, err
	}

	id := s.ID
	s.timer = time.AfterFunc(time.Until(s.Deadline(w.timeout)), func() {
		w.expire(userID, id)
	})

	w.notify.PublicLog(fmt.Sprintf("📝 <@%s> started team enrollment.", userID))

	return s, nil, nil
}

// SubmitTeamInfo validates and stores the name/tag step.
func (w *Wizard) SubmitTeamInfo(ctx context.Context, userID, teamName, teamTag string) (*Session, error) {
	s := w.registry.Get(userID)
	if s == nil {
		return nil, errs.ErrNoSession
	}
	if s.Step != StepTeamInfo {
		return nil, errs.ErrWrongStep
	}

	teamName = strings.TrimSpace(teamName)
	teamTag = strings.TrimSpace(teamTag)

	if len(teamName) < 2 {
		return nil, errs.ErrTeamNameTooShort
	}
	if len(teamTag) < 2 {
		return nil, errs.ErrTeamTagTooShort
	}

	if !s.IsUpdate {
		teams, err := w.teams.Teams(ctx)
		if err != nil {
			return nil, err
		}
		for _, t := range teams {
			if t.UserID != userID && strings.EqualFold(t.TeamName, teamName) {
				return nil, errs.ErrTeamNameTaken
			}
		}
	}

	s.Draft.TeamName = teamName
	s.Draft.TeamTag = teamTag
	s.Step = StepRoster

	w.notify.PublicLog(fmt.Sprintf(
		"📝 <@%s> submitted team info for enrollment. Team Name: %s, Tag: %s",
		userID, teamName, teamTag))

	return s, nil
}

// SubmitRoster validates the newline-delimited roster batch. The batch is
// all-or-nothing: any malformed line rejects the whole submission, and the
// offending lines are returned for the error message. On success the draft
// roster is replaced entirely.
func (w *Wizard) SubmitRoster(ctx context.Context, userID, text string) (*Session, []string, error) {
	s := w.registry.Get(userID)
	if s == nil {
		return nil, nil, errs.ErrNoSession
	}
	if s.Step != StepRoster {
		return nil, nil, errs.ErrWrongStep
	}

	players, invalid, err := ParseRoster(text)
	if err != nil {
		return nil, invalid, err
	}

	s.Draft.Players = players
	s.Step = StepConfirm

	w.notify.PublicLog(fmt.Sprintf("📝 <@%s> submitted a roster of %d player(s).", userID, len(players)))

	return s, nil, nil
}

// ParseRoster parses "<17-19 digit ID> - <name>" lines. Blank lines are
// skipped; names are 1..32 characters after trimming.
func ParseRoster(text string) ([]entity.Player, []string, error) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}

	if len(lines) < 1 {
		return nil, nil, errs.ErrRosterEmpty
	}
	if len(lines) > maxRosterSize {
		return nil, nil, errs.ErrRosterTooLarge
	}

	players := make([]entity.Player, 0, len(lines))
	var invalid []string
	for _, line := range lines {
		m := rosterLine.FindStringSubmatch(line)
		if m == nil {
			invalid = append(invalid, line)
			continue
		}

		name := strings.TrimSpace(m[2])
		if len(name) < 1 || len(name) > 32 {
			invalid = append(invalid, line)
			continue
		}

		players = append(players, entity.Player{ID: m[1], Name: name})
	}

	if len(invalid) > 0 {
		return nil, invalid, errs.ErrRosterLine
	}

	return players, nil, nil
}

// Finish commits the draft. EnrollmentTime is stamped only on fresh
// enrollment; updates preserve the original. A persistence failure leaves
// the session alive so the user can retry without re-entering anything.
func (w *Wizard) Finish(ctx context.Context, userID string) (*entity.Team, error) {
	s := w.registry.Get(userID)
	if s == nil {
		return nil, errs.ErrNoSession
	}
	if s.Step != StepConfirm {
		return nil, errs.ErrWrongStep
	}

	now := time.Now()
	team := s.Draft
	team.UserID = userID
	team.LastUpdated = now
	if !s.IsUpdate {
		team.EnrollmentTime = now
	}

	if err := w.teams.PutTeam(ctx, &team); err != nil {
		return nil, err
	}

	w.notify.PublicLog(fmt.Sprintf("✅ <@%s> enrolled team **%s** (Tag: %s).", userID, team.TeamName, team.TeamTag))

	w.endLater(userID, s.ID, finishGrace)

	return &team, nil
}

// Cancel destroys the session without persisting, from any step.
func (w *Wizard) Cancel(ctx context.Context, userID string) error {
	s := w.registry.Get(userID)
	if s == nil {
		return errs.ErrNoSession
	}

	w.notify.PublicLog(fmt.Sprintf("❌ <@%s> cancelled their team enrollment.", userID))

	w.endLater(userID, s.ID, cancelGrace)

	return nil
}

// TransferLeadership hands the team to another roster member. Only valid
// mid-update; the new leader must be on the draft roster and still in the
// guild. On success the session ends after the usual grace delay.
func (w *Wizard) TransferLeadership(ctx context.Context, userID, newLeaderID string) error {
	s := w.registry.Get(userID)
	if s == nil {
		return errs.ErrNoSession
	}
	if !s.IsUpdate {
		return errs.ErrUpdateOnly
	}

	newLeaderID = strings.TrimSpace(newLeaderID)
	if !snowflake.MatchString(newLeaderID) {
		return errs.ErrInvalidUserID
	}

	if !s.Draft.HasPlayer(newLeaderID) {
		return errs.ErrNotRosterMember
	}

	ok, err := w.members.IsMember(ctx, newLeaderID)
	if err != nil {
		return err
	}
	if !ok {
		return errs.ErrNotGuildMember
	}

	if err := w.transfers.Transfer(ctx, userID, newLeaderID, s.Draft); err != nil {
		return err
	}

	w.endLater(userID, s.ID, finishGrace)

	return nil
}

func (w *Wizard) endLater(userID string, id uuid.UUID, after time.Duration) {
	time.AfterFunc(after, func() {
		w.registry.EndIf(context.Background(), userID, id)
	})
}

func (w *Wizard) expire(userID string, id uuid.UUID) {
	if w.registry.EndIf(context.Background(), userID, id) {
		w.notify.PublicLog(fmt.Sprintf("⏰ <@%s> enrollment timed out. Channel deleted after 10 minutes.", userID))
		if w.onExpire != nil {
			w.onExpire(userID)
		}
	}
}
