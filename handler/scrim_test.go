package handler

import (
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"scrimbot/entity"
)

var _ = Describe("registrationSpan", func() {
	regAt := func(t time.Time) entity.ScrimRegistration {
		return entity.ScrimRegistration{RegistrationTime: t}
	}

	It("measures first to last registration, not time since the first", func() {
		base := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
		regs := []entity.ScrimRegistration{
			regAt(base.Add(45 * time.Minute)),
			regAt(base),
			regAt(base.Add(10 * time.Minute)),
		}

		Expect(registrationSpan(regs)).To(Equal(45 * time.Minute))
	})

	It("is zero for a single registration", func() {
		regs := []entity.ScrimRegistration{regAt(time.Now().Add(-2 * time.Hour))}

		Expect(registrationSpan(regs)).To(Equal(time.Duration(0)))
	})
})

var _ = Describe("formatDuration", func() {
	It("rounds sub-minute spans down", func() {
		Expect(formatDuration(30 * time.Second)).To(Equal("less than a minute"))
	})

	It("formats minutes and hours", func() {
		Expect(formatDuration(12 * time.Minute)).To(Equal("12m"))
		Expect(formatDuration(2*time.Hour + 5*time.Minute)).To(Equal("2h 5m"))
	})
})
