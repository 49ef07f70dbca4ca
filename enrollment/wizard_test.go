package enrollment

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"scrimbot/entity"
	"scrimbot/errs"
)

type fakeTeams struct {
	mu      sync.Mutex
	teams   map[string]entity.Team
	failPut bool
}

func newFakeTeams() *fakeTeams {
	return &fakeTeams{teams: make(map[string]entity.Team)}
}

func (f *fakeTeams) Team(ctx context.Context, userID string) (*entity.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.teams[userID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &t, nil
}

func (f *fakeTeams) PutTeam(ctx context.Context, t *entity.Team) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failPut {
		return errs.ErrDatabase
	}
	f.teams[t.UserID] = *t
	return nil
}

func (f *fakeTeams) DeleteTeam(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.teams, userID)
	return nil
}

func (f *fakeTeams) Teams(ctx context.Context) ([]entity.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]entity.Team, 0, len(f.teams))
	for _, t := range f.teams {
		out = append(out, t)
	}
	return out, nil
}

type fakeChannels struct {
	mu      sync.Mutex
	next    int
	created []string
	deleted []string
	fail    bool
}

func (f *fakeChannels) CreatePrivateChannel(ctx context.Context, ownerID, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		return "", fmt.Errorf("channel create refused")
	}
	f.next++
	id := fmt.Sprintf("chan-%d", f.next)
	f.created = append(f.created, id)
	return id, nil
}

func (f *fakeChannels) DeleteChannel(ctx context.Context, channelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleted = append(f.deleted, channelID)
	return nil
}

func (f *fakeChannels) deletedChannels() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.deleted...)
}

type fakeMembers struct {
	gone map[string]bool
}

func (f *fakeMembers) IsMember(ctx context.Context, userID string) (bool, error) {
	return !f.gone[userID], nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeNotifier) PublicLog(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.messages = append(f.messages, message)
}

func (f *fakeNotifier) contains(substr string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, m := range f.messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

type fakeTransferrer struct {
	oldLeaderID string
	newLeaderID string
	team        entity.Team
	err         error
}

func (f *fakeTransferrer) Transfer(ctx context.Context, oldLeaderID, newLeaderID string, team entity.Team) error {
	if f.err != nil {
		return f.err
	}
	f.oldLeaderID = oldLeaderID
	f.newLeaderID = newLeaderID
	f.team = team
	return nil
}

const (
	leaderID  = "111111111111111111"
	memberID  = "222222222222222222"
	member2ID = "333333333333333333"
)

var _ = Describe("Wizard", func() {
	var (
		teams    *fakeTeams
		channels *fakeChannels
		members  *fakeMembers
		notify   *fakeNotifier
		handoff  *fakeTransferrer
		wizard   *Wizard
		ctx      context.Context
	)

	BeforeEach(func() {
		teams = newFakeTeams()
		channels = &fakeChannels{}
		members = &fakeMembers{gone: map[string]bool{}}
		notify = &fakeNotifier{}
		handoff = &fakeTransferrer{}
		wizard = NewWizard(NewRegistry(channels), teams, channels, members, notify, handoff)
		ctx = context.Background()
	})

	seedTeam := func() {
		teams.teams[leaderID] = entity.Team{
			UserID:   leaderID,
			TeamName: "Night Owls",
			TeamTag:  "OWL",
			Players: []entity.Player{
				{ID: leaderID, Name: "Alpha"},
				{ID: memberID, Name: "Beta"},
			},
			EnrollmentTime: time.Now().Add(-time.Hour),
		}
	}

	Describe("Begin", func() {
		Specify("happy path", func() {
			s, _, err := wizard.Begin(ctx, leaderID, "alpha", false)
			Expect(err).To(BeNil())
			Expect(s.Step).To(Equal(StepTeamInfo))
			Expect(s.ChannelID).To(Equal("chan-1"))
			Expect(wizard.registry.Get(leaderID)).To(Equal(s))
			Expect(s.Deadline(wizard.Timeout())).To(Equal(s.StartTime.Add(SessionTimeout)))
		})

		Specify("sad path - session already active", func() {
			_, _, err := wizard.Begin(ctx, leaderID, "alpha", false)
			Expect(err).To(BeNil())

			_, _, err = wizard.Begin(ctx, leaderID, "alpha", false)
			Expect(err).To(Equal(errs.ErrSessionActive))
		})

		Specify("sad path - channel creation fails", func() {
			channels.fail = true
			_, _, err := wizard.Begin(ctx, leaderID, "alpha", false)
			Expect(err).To(Equal(errs.ErrChannel))
			Expect(wizard.registry.Get(leaderID)).To(BeNil())
		})

		Specify("sad path - update without a team", func() {
			_, _, err := wizard.Begin(ctx, leaderID, "alpha", true)
			Expect(err).To(Equal(errs.ErrNoTeam))
		})

		Specify("update seeds the draft from the stored team", func() {
			seedTeam()
			s, _, err := wizard.Begin(ctx, leaderID, "alpha", true)
			Expect(err).To(BeNil())
			Expect(s.IsUpdate).To(BeTrue())
			Expect(s.Draft.TeamName).To(Equal("Night Owls"))
			Expect(s.Draft.Players).To(HaveLen(2))
		})

		Specify("update with a departed member deletes the team", func() {
			seedTeam()
			members.gone[memberID] = true

			_, missing, err := wizard.Begin(ctx, leaderID, "alpha", true)
			Expect(err).To(Equal(errs.ErrRosterMemberLeft))
			Expect(missing).To(ConsistOf("Beta"))
			Expect(teams.teams).NotTo(HaveKey(leaderID))
			Expect(notify.contains("automatically deleted")).To(BeTrue())
		})

		Specify("session times out and tears down the channel", func() {
			wizard.SetTimeout(50 * time.Millisecond)

			s, _, err := wizard.Begin(ctx, leaderID, "alpha", false)
			Expect(err).To(BeNil())

			Eventually(func() *Session {
				return wizard.registry.Get(leaderID)
			}, "2s", "20ms").Should(BeNil())
			Eventually(func() []string {
				return channels.deletedChannels()
			}, "2s", "20ms").Should(ContainElement(s.ChannelID))
			Expect(notify.contains("timed out")).To(BeTrue())
		})
	})

	Describe("SubmitTeamInfo", func() {
		BeforeEach(func() {
			_, _, err := wizard.Begin(ctx, leaderID, "alpha", false)
			Expect(err).To(BeNil())
		})

		Specify("happy path", func() {
			s, err := wizard.SubmitTeamInfo(ctx, leaderID, "  Night Owls  ", "OWL")
			Expect(err).To(BeNil())
			Expect(s.Draft.TeamName).To(Equal("Night Owls"))
			Expect(s.Draft.TeamTag).To(Equal("OWL"))
			Expect(s.Step).To(Equal(StepRoster))
		})

		Specify("sad path - no session", func() {
			_, err := wizard.SubmitTeamInfo(ctx, "999999999999999999", "x", "y")
			Expect(err).To(Equal(errs.ErrNoSession))
		})

		Specify("sad path - name too short", func() {
			_, err := wizard.SubmitTeamInfo(ctx, leaderID, "A", "OWL")
			Expect(err).To(Equal(errs.ErrTeamNameTooShort))
		})

		Specify("sad path - tag too short", func() {
			_, err := wizard.SubmitTeamInfo(ctx, leaderID, "Night Owls", "O")
			Expect(err).To(Equal(errs.ErrTeamTagTooShort))
		})

		Specify("sad path - name taken, case-insensitive", func() {
			teams.teams["444444444444444444"] = entity.Team{
				UserID: "444444444444444444", TeamName: "night OWLS", TeamTag: "NO",
			}
			_, err := wizard.SubmitTeamInfo(ctx, leaderID, "Night Owls", "OWL")
			Expect(err).To(Equal(errs.ErrTeamNameTaken))
		})

		Specify("sad path - wrong step", func() {
			_, err := wizard.SubmitTeamInfo(ctx, leaderID, "Night Owls", "OWL")
			Expect(err).To(BeNil())

			_, err = wizard.SubmitTeamInfo(ctx, leaderID, "Other Name", "OTH")
			Expect(err).To(Equal(errs.ErrWrongStep))
		})
	})

	Describe("updating keeps the old name", func() {
		Specify("the duplicate check skips the updating user's own team", func() {
			seedTeam()
			_, _, err := wizard.Begin(ctx, leaderID, "alpha", true)
			Expect(err).To(BeNil())

			_, err = wizard.SubmitTeamInfo(ctx, leaderID, "Night Owls", "OWL")
			Expect(err).To(BeNil())
		})
	})

	Describe("SubmitRoster", func() {
		BeforeEach(func() {
			_, _, err := wizard.Begin(ctx, leaderID, "alpha", false)
			Expect(err).To(BeNil())
			_, err = wizard.SubmitTeamInfo(ctx, leaderID, "Night Owls", "OWL")
			Expect(err).To(BeNil())
		})

		Specify("happy path", func() {
			s, _, err := wizard.SubmitRoster(ctx, leaderID,
				leaderID+" - Alpha\n\n"+memberID+"   -   Beta\n")
			Expect(err).To(BeNil())
			Expect(s.Step).To(Equal(StepConfirm))
			Expect(s.Draft.Players).To(Equal([]entity.Player{
				{ID: leaderID, Name: "Alpha"},
				{ID: memberID, Name: "Beta"},
			}))
		})

		Specify("sad path - malformed line rejects the whole batch", func() {
			_, invalid, err := wizard.SubmitRoster(ctx, leaderID,
				leaderID+" - Alpha\n12345 - Bob")
			Expect(err).To(Equal(errs.ErrRosterLine))
			Expect(invalid).To(ConsistOf("12345 - Bob"))

			s := wizard.registry.Get(leaderID)
			Expect(s.Step).To(Equal(StepRoster))
			Expect(s.Draft.Players).To(BeEmpty())
		})
	})

	Describe("ParseRoster", func() {
		Specify("17 digit ID with a one character name is valid", func() {
			players, _, err := ParseRoster("12345678901234567 - X")
			Expect(err).To(BeNil())
			Expect(players).To(Equal([]entity.Player{{ID: "12345678901234567", Name: "X"}}))
		})

		Specify("sad path - empty input", func() {
			_, _, err := ParseRoster("  \n\n  ")
			Expect(err).To(Equal(errs.ErrRosterEmpty))
		})

		Specify("sad path - more than fifty lines", func() {
			var lines []string
			for i := 0; i < 51; i++ {
				lines = append(lines, fmt.Sprintf("1234567890123456%02d - Player %d", i, i))
			}
			_, _, err := ParseRoster(strings.Join(lines, "\n"))
			Expect(err).To(Equal(errs.ErrRosterTooLarge))
		})

		Specify("sad path - name over 32 characters", func() {
			_, invalid, err := ParseRoster(leaderID + " - " + strings.Repeat("a", 33))
			Expect(err).To(Equal(errs.ErrRosterLine))
			Expect(invalid).To(HaveLen(1))
		})

		Specify("sad path - 16 digit ID", func() {
			_, invalid, err := ParseRoster("1234567890123456 - Short")
			Expect(err).To(Equal(errs.ErrRosterLine))
			Expect(invalid).To(HaveLen(1))
		})
	})

	Describe("Finish", func() {
		advanceToConfirm := func() {
			_, _, err := wizard.Begin(ctx, leaderID, "alpha", false)
			Expect(err).To(BeNil())
			_, err = wizard.SubmitTeamInfo(ctx, leaderID, "Night Owls", "OWL")
			Expect(err).To(BeNil())
			_, _, err = wizard.SubmitRoster(ctx, leaderID, leaderID+" - Alpha")
			Expect(err).To(BeNil())
		}

		Specify("happy path", func() {
			advanceToConfirm()

			team, err := wizard.Finish(ctx, leaderID)
			Expect(err).To(BeNil())
			Expect(team.UserID).To(Equal(leaderID))
			Expect(team.EnrollmentTime).NotTo(BeZero())
			Expect(team.LastUpdated).NotTo(BeZero())
			Expect(teams.teams).To(HaveKey(leaderID))
		})

		Specify("sad path - confirmation comes before the roster", func() {
			_, _, err := wizard.Begin(ctx, leaderID, "alpha", false)
			Expect(err).To(BeNil())

			_, err = wizard.Finish(ctx, leaderID)
			Expect(err).To(Equal(errs.ErrWrongStep))
		})

		Specify("a persistence failure keeps the session alive", func() {
			advanceToConfirm()
			teams.failPut = true

			_, err := wizard.Finish(ctx, leaderID)
			Expect(err).To(Equal(errs.ErrDatabase))
			Expect(wizard.registry.Get(leaderID)).NotTo(BeNil())

			teams.failPut = false
			_, err = wizard.Finish(ctx, leaderID)
			Expect(err).To(BeNil())
		})

		Specify("updates preserve the original enrollment time", func() {
			seedTeam()
			original := teams.teams[leaderID].EnrollmentTime

			_, _, err := wizard.Begin(ctx, leaderID, "alpha", true)
			Expect(err).To(BeNil())
			_, err = wizard.SubmitTeamInfo(ctx, leaderID, "Night Owls", "OWL")
			Expect(err).To(BeNil())
			_, _, err = wizard.SubmitRoster(ctx, leaderID, leaderID+" - Alpha\n"+memberID+" - Beta")
			Expect(err).To(BeNil())

			team, err := wizard.Finish(ctx, leaderID)
			Expect(err).To(BeNil())
			Expect(team.EnrollmentTime).To(Equal(original))
			Expect(team.LastUpdated).NotTo(Equal(original))
		})
	})

	Describe("Cancel", func() {
		Specify("happy path", func() {
			_, _, err := wizard.Begin(ctx, leaderID, "alpha", false)
			Expect(err).To(BeNil())

			Expect(wizard.Cancel(ctx, leaderID)).To(BeNil())
			Expect(notify.contains("cancelled")).To(BeTrue())
		})

		Specify("sad path - no session", func() {
			Expect(wizard.Cancel(ctx, leaderID)).To(Equal(errs.ErrNoSession))
		})
	})

	Describe("TransferLeadership", func() {
		beginUpdate := func() {
			seedTeam()
			_, _, err := wizard.Begin(ctx, leaderID, "alpha", true)
			Expect(err).To(BeNil())
		}

		Specify("happy path", func() {
			beginUpdate()

			Expect(wizard.TransferLeadership(ctx, leaderID, memberID)).To(BeNil())
			Expect(handoff.oldLeaderID).To(Equal(leaderID))
			Expect(handoff.newLeaderID).To(Equal(memberID))
			Expect(handoff.team.TeamName).To(Equal("Night Owls"))
		})

		Specify("sad path - fresh enrollment", func() {
			_, _, err := wizard.Begin(ctx, leaderID, "alpha", false)
			Expect(err).To(BeNil())

			err = wizard.TransferLeadership(ctx, leaderID, memberID)
			Expect(err).To(Equal(errs.ErrUpdateOnly))
		})

		Specify("sad path - malformed ID", func() {
			beginUpdate()
			err := wizard.TransferLeadership(ctx, leaderID, "not-an-id")
			Expect(err).To(Equal(errs.ErrInvalidUserID))
		})

		Specify("sad path - new leader not on the roster", func() {
			beginUpdate()
			err := wizard.TransferLeadership(ctx, leaderID, member2ID)
			Expect(err).To(Equal(errs.ErrNotRosterMember))
		})

		Specify("sad path - new leader left the guild", func() {
			beginUpdate()
			members.gone[memberID] = true
			err := wizard.TransferLeadership(ctx, leaderID, memberID)
			Expect(err).To(Equal(errs.ErrNotGuildMember))
		})
	})
})
