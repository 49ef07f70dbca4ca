package enrollment

import (
	"context"
	"time"

	"github.com/google/uuid"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Registry", func() {
	var (
		channels *fakeChannels
		registry *Registry
		ctx      context.Context
	)

	BeforeEach(func() {
		channels = &fakeChannels{}
		registry = NewRegistry(channels)
		ctx = context.Background()
	})

	newSession := func(channelID string) *Session {
		return &Session{
			ID:        uuid.New(),
			UserID:    leaderID,
			ChannelID: channelID,
			StartTime: time.Now(),
		}
	}

	Describe("EndIf", func() {
		It("ends the session when the ID matches", func() {
			s := newSession("chan-old")
			Expect(registry.Start(s)).To(Succeed())

			Expect(registry.EndIf(ctx, leaderID, s.ID)).To(BeTrue())
			Expect(registry.Get(leaderID)).To(BeNil())
			Expect(channels.deletedChannels()).To(ConsistOf("chan-old"))
		})

		It("leaves a newer session untouched when the ID is stale", func() {
			old := newSession("chan-old")
			Expect(registry.Start(old)).To(Succeed())
			registry.End(ctx, leaderID)

			fresh := newSession("chan-fresh")
			Expect(registry.Start(fresh)).To(Succeed())

			Expect(registry.EndIf(ctx, leaderID, old.ID)).To(BeFalse())
			Expect(registry.Get(leaderID)).To(Equal(fresh))
			Expect(channels.deletedChannels()).NotTo(ContainElement("chan-fresh"))
		})

		It("only lets one of two racing calls win", func() {
			s := newSession("chan-old")
			Expect(registry.Start(s)).To(Succeed())

			first := make(chan bool, 2)
			go func() { first <- registry.EndIf(ctx, leaderID, s.ID) }()
			go func() { first <- registry.EndIf(ctx, leaderID, s.ID) }()

			results := []bool{<-first, <-first}
			Expect(results).To(ConsistOf(true, false))
			Expect(channels.deletedChannels()).To(ConsistOf("chan-old"))
		})
	})
})
