package transfer

import (
	"sync"
	"time"
)

// Retention bounds how long transfer and departure records are kept.
// Anything older than this can no longer influence a departure decision,
// so it is pruned to keep the maps from growing without bound.
const Retention = 24 * time.Hour

type departure struct {
	memberID string
	at       time.Time
}

type record struct {
	newLeaderID string
	at          time.Time
}

// Tracker keeps the leadership-transfer bookkeeping: which old leader
// handed off to whom and when, and which members left which team and when.
// It is constructed once at startup and shared; all access is
// mutex-guarded.
type Tracker struct {
	mu         sync.Mutex
	transfers  map[string]record      // old leader ID -> transfer
	departures map[string][]departure // team ID (leader ID) -> departures

	now func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		transfers:  make(map[string]record),
		departures: make(map[string][]departure),
		now:        time.Now,
	}
}

// RecordTransfer notes that oldLeaderID handed the team to newLeaderID.
func (t *Tracker) RecordTransfer(oldLeaderID, newLeaderID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.pruneLocked(t.now())
	t.transfers[oldLeaderID] = record{newLeaderID: newLeaderID, at: t.now()}
}

// RecordDeparture notes that memberID left while teamID's enrollment was
// in flight.
func (t *Tracker) RecordDeparture(teamID, memberID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.pruneLocked(t.now())
	t.departures[teamID] = append(t.departures[teamID], departure{memberID: memberID, at: t.now()})
}

// HasTransferred reports whether userID previously handed off leadership.
func (t *Tracker) HasTransferred(userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.transfers[userID]
	return ok
}

// NewLeader returns who oldLeaderID transferred to, if anyone.
func (t *Tracker) NewLeader(oldLeaderID string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.transfers[oldLeaderID]
	return r.newLeaderID, ok
}

// TransferValid reports whether oldLeaderID's handoff still stands. A
// transfer is invalidated by any departure recorded strictly before the
// transfer timestamp: the roster went stale while the handoff was being
// finalized. Departures are keyed by the leader ID the team had when they
// were recorded, which is the old leader's.
func (t *Tracker) TransferValid(oldLeaderID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.transfers[oldLeaderID]
	if !ok {
		return true
	}

	for _, d := range t.departures[oldLeaderID] {
		if d.at.Before(r.at) {
			return false
		}
	}

	return true
}

// Prune drops records older than the retention window.
func (t *Tracker) Prune(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.pruneLocked(now)
}

func (t *Tracker) pruneLocked(now time.Time) {
	cutoff := now.Add(-Retention)

	for id, r := range t.transfers {
		if r.at.Before(cutoff) {
			delete(t.transfers, id)
		}
	}

	for teamID, ds := range t.departures {
		kept := ds[:0]
		for _, d := range ds {
			if !d.at.Before(cutoff) {
				kept = append(kept, d)
			}
		}
		if len(kept) == 0 {
			delete(t.departures, teamID)
		} else {
			t.departures[teamID] = kept
		}
	}
}
