package transfer

import (
	"context"
	"strings"
	"sync"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"scrimbot/entity"
	"scrimbot/errs"
)

type memTeams struct {
	mu      sync.Mutex
	teams   map[string]entity.Team
	failDel bool
}

func (m *memTeams) PutTeam(ctx context.Context, t *entity.Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.teams[t.UserID] = *t
	return nil
}

func (m *memTeams) DeleteTeam(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failDel {
		return errs.ErrDatabase
	}
	delete(m.teams, userID)
	return nil
}

type stubSessions struct {
	active map[string]bool
}

func (s *stubSessions) Has(userID string) bool { return s.active[userID] }

type logSink struct {
	mu       sync.Mutex
	messages []string
}

func (l *logSink) PublicLog(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = append(l.messages, message)
}

func (l *logSink) contains(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, m := range l.messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

var _ = Describe("Service", func() {
	var (
		teams    *memTeams
		sessions *stubSessions
		sink     *logSink
		tracker  *Tracker
		service  *Service
		clock    time.Time
		ctx      context.Context
	)

	team := func() *entity.Team {
		return &entity.Team{
			UserID:   "oldLeader",
			TeamName: "Night Owls",
			TeamTag:  "OWL",
			Players: []entity.Player{
				{ID: "oldLeader", Name: "Alpha"},
				{ID: "newLeader", Name: "Beta"},
			},
		}
	}

	BeforeEach(func() {
		teams = &memTeams{teams: map[string]entity.Team{}}
		sessions = &stubSessions{active: map[string]bool{}}
		sink = &logSink{}
		tracker = NewTracker()
		clock = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		tracker.now = func() time.Time { return clock }
		service = NewService(teams, tracker, sessions, sink)
		ctx = context.Background()

		teams.teams["oldLeader"] = *team()
	})

	Describe("Transfer", func() {
		Specify("the team document moves to the new leader's key", func() {
			err := service.Transfer(ctx, "oldLeader", "newLeader", *team())
			Expect(err).To(BeNil())

			Expect(teams.teams).NotTo(HaveKey("oldLeader"))
			Expect(teams.teams).To(HaveKey("newLeader"))
			Expect(teams.teams["newLeader"].TeamName).To(Equal("Night Owls"))
			Expect(tracker.HasTransferred("oldLeader")).To(BeTrue())
			Expect(sink.contains("leadership transferred")).To(BeTrue())
		})
	})

	Describe("HandleDeparture", func() {
		Specify("no team means nothing to do", func() {
			outcome, err := service.HandleDeparture(ctx, "stranger", nil)
			Expect(err).To(BeNil())
			Expect(outcome).To(Equal(OutcomeNone))
		})

		Specify("ordinary departure deletes the team", func() {
			t := team()
			outcome, err := service.HandleDeparture(ctx, "newLeader", t)
			Expect(err).To(BeNil())
			Expect(outcome).To(Equal(OutcomeDeleted))
			Expect(teams.teams).NotTo(HaveKey("oldLeader"))
			Expect(sink.contains("automatically deleted")).To(BeTrue())
		})

		Specify("an active session defers deletion and records the departure", func() {
			sessions.active["oldLeader"] = true

			t := team()
			outcome, err := service.HandleDeparture(ctx, "newLeader", t)
			Expect(err).To(BeNil())
			Expect(outcome).To(Equal(OutcomeKeptActiveSession))
			Expect(teams.teams).To(HaveKey("oldLeader"))
			Expect(tracker.departures["oldLeader"]).To(HaveLen(1))
		})

		Specify("the old leader leaving after a clean handoff keeps the team", func() {
			Expect(service.Transfer(ctx, "oldLeader", "newLeader", *team())).To(BeNil())

			moved := teams.teams["newLeader"]
			outcome, err := service.HandleDeparture(ctx, "oldLeader", &moved)
			Expect(err).To(BeNil())
			Expect(outcome).To(Equal(OutcomeKeptValidTransfer))
			Expect(teams.teams).To(HaveKey("newLeader"))
		})

		Specify("a departure mid-session before the handoff invalidates it", func() {
			sessions.active["oldLeader"] = true

			outcome, err := service.HandleDeparture(ctx, "someMember", team())
			Expect(err).To(BeNil())
			Expect(outcome).To(Equal(OutcomeKeptActiveSession))

			clock = clock.Add(time.Minute)
			Expect(service.Transfer(ctx, "oldLeader", "newLeader", *team())).To(BeNil())

			clock = clock.Add(time.Minute)
			sessions.active = map[string]bool{}
			moved := teams.teams["newLeader"]
			outcome, err = service.HandleDeparture(ctx, "oldLeader", &moved)
			Expect(err).To(BeNil())
			Expect(outcome).To(Equal(OutcomeDeletedInvalidTransfer))
			Expect(sink.contains("left before leadership transfer")).To(BeTrue())
		})
	})
})
