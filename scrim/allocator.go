package scrim

import (
	"context"
	"time"

	"scrimbot/entity"
	"scrimbot/errs"
)

// Store is the slice of the persistent store the allocator needs.
// Availability is always computed from a fresh read; the allocator caches
// nothing.
type Store interface {
	Team(ctx context.Context, userID string) (*entity.Team, error)
	PutRegistration(ctx context.Context, reg *entity.ScrimRegistration) error
	DeleteRegistration(ctx context.Context, timeSlot, userID string) error
	RegistrationByUser(ctx context.Context, userID string) (*entity.ScrimRegistration, error)
	Registrations(ctx context.Context) ([]entity.ScrimRegistration, error)
	RegistrationsBySlot(ctx context.Context, timeSlot string) ([]entity.ScrimRegistration, error)
}

// Allocator adjudicates slot and location claims. Locations are a single
// shared pool across all slots: once claimed anywhere, a location is gone
// until its registration is deleted. The final arbiter of a claim race is
// the store's unique location index, which turns the insert into an
// atomic conditional write.
type Allocator struct {
	store Store
	now   func() time.Time
}

func NewAllocator(store Store) *Allocator {
	return &Allocator{store: store, now: time.Now}
}

// Register is the direct-command path: it refuses when the user already
// holds a registration anywhere. The availability pre-check produces the
// friendly "already taken" rejection; a claim that races past it fails on
// the insert instead and surfaces as "just taken".
func (a *Allocator) Register(ctx context.Context, userID string, user entity.UserSnapshot, timeSlot, location string) (*entity.ScrimRegistration, error) {
	if !ValidSlot(timeSlot, CommandSlots) {
		return nil, errs.ErrUnknownSlot
	}

	if _, err := a.store.RegistrationByUser(ctx, userID); err == nil {
		return nil, errs.ErrAlreadyRegistered
	} else if err != errs.ErrNotFound {
		return nil, err
	}

	team, err := a.store.Team(ctx, userID)
	if err != nil {
		if err == errs.ErrNotFound {
			return nil, errs.ErrNoTeam
		}
		return nil, err
	}

	available, err := a.AvailableLocations(ctx)
	if err != nil {
		return nil, err
	}
	found := false
	for _, l := range available {
		if l.Name == location {
			found = true
			break
		}
	}
	if !found {
		// Covers both a location missing from the catalog and one that is
		// already claimed; the caller cannot tell the difference and the
		// message is the same either way.
		return nil, errs.ErrLocationTaken
	}

	reg := &entity.ScrimRegistration{
		TimeSlot:         timeSlot,
		UserID:           userID,
		Team:             entity.TeamSnapshot{Team: *team, Location: location},
		RegistrationTime: a.now(),
		User:             user,
	}

	if err := a.store.PutRegistration(ctx, reg); err != nil {
		return nil, err
	}

	return reg, nil
}

// SelectSlot is the menu path: re-selecting a slot supersedes any
// existing registration instead of rejecting it, and no location is
// claimed. The asymmetry with Register is deliberate and mirrors the two
// documented entry points.
func (a *Allocator) SelectSlot(ctx context.Context, userID string, user entity.UserSnapshot, timeSlot string) (*entity.ScrimRegistration, error) {
	if !ValidSlot(timeSlot, MenuSlots) {
		return nil, errs.ErrUnknownSlot
	}

	team, err := a.store.Team(ctx, userID)
	if err != nil {
		if err == errs.ErrNotFound {
			return nil, errs.ErrNoTeam
		}
		return nil, err
	}

	if existing, err := a.store.RegistrationByUser(ctx, userID); err == nil {
		if derr := a.store.DeleteRegistration(ctx, existing.TimeSlot, userID); derr != nil {
			return nil, derr
		}
	} else if err != errs.ErrNotFound {
		return nil, err
	}

	reg := &entity.ScrimRegistration{
		TimeSlot:         timeSlot,
		UserID:           userID,
		Team:             entity.TeamSnapshot{Team: *team},
		RegistrationTime: a.now(),
		User:             user,
	}

	if err := a.store.PutRegistration(ctx, reg); err != nil {
		return nil, err
	}

	return reg, nil
}

// Unregister deletes the user's single registration, wherever it is,
// releasing its location back to the pool.
func (a *Allocator) Unregister(ctx context.Context, userID string) (*entity.ScrimRegistration, error) {
	reg, err := a.store.RegistrationByUser(ctx, userID)
	if err != nil {
		if err == errs.ErrNotFound {
			return nil, errs.ErrNotRegistered
		}
		return nil, err
	}

	if err := a.store.DeleteRegistration(ctx, reg.TimeSlot, userID); err != nil {
		return nil, err
	}

	return reg, nil
}

// CurrentRegistration returns the user's registration, if any.
func (a *Allocator) CurrentRegistration(ctx context.Context, userID string) (*entity.ScrimRegistration, error) {
	reg, err := a.store.RegistrationByUser(ctx, userID)
	if err != nil {
		if err == errs.ErrNotFound {
			return nil, errs.ErrNotRegistered
		}
		return nil, err
	}

	return reg, nil
}

// RegistrationsForSlot lists the registrations of a single slot.
func (a *Allocator) RegistrationsForSlot(ctx context.Context, timeSlot string) ([]entity.ScrimRegistration, error) {
	return a.store.RegistrationsBySlot(ctx, timeSlot)
}

// AllRegistrations lists every registration across all slots.
func (a *Allocator) AllRegistrations(ctx context.Context) ([]entity.ScrimRegistration, error) {
	return a.store.Registrations(ctx)
}

// AvailableLocations is the catalog minus every location claimed by any
// registration in any slot, read fresh at call time.
func (a *Allocator) AvailableLocations(ctx context.Context) ([]entity.Location, error) {
	regs, err := a.store.Registrations(ctx)
	if err != nil {
		return nil, err
	}

	taken := make(map[string]bool, len(regs))
	for _, r := range regs {
		if r.Team.Location != "" {
			taken[r.Team.Location] = true
		}
	}

	available := make([]entity.Location, 0, len(Locations))
	for _, l := range Locations {
		if !taken[l.Name] {
			available = append(available, l)
		}
	}

	return available, nil
}
