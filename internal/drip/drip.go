// Package drip computes time-released content locks.
//
// A module's release policy is a delay relative to the account's enrollment
// timestamp. The lock state is always derived from (enrolledAt, policy, now)
// and never stored.
package drip

import (
	"context"
	"time"
)

const day = 24 * time.Hour

// Policy is a release delay. DelayHours, when set, takes precedence over
// DelayDays. Zero delay means immediately available.
type Policy struct {
	DelayDays  int
	DelayHours *int
}

// Hours returns a Policy released after h hours.
func Hours(h int) Policy { return Policy{DelayHours: &h} }

// Days returns a Policy released after d whole days.
func Days(d int) Policy { return Policy{DelayDays: d} }

// Immediate reports whether the policy never locks.
func (p Policy) Immediate() bool {
	if p.DelayHours != nil {
		return *p.DelayHours <= 0
	}
	return p.DelayDays <= 0
}

// UnlockAt returns the instant the policy releases content for an account
// enrolled at enrolledAt. Day policies unlock at whole-day boundaries.
func (p Policy) UnlockAt(enrolledAt time.Time) time.Time {
	if p.DelayHours != nil {
		return enrolledAt.Add(time.Duration(max(*p.DelayHours, 0)) * time.Hour)
	}
	return enrolledAt.Add(time.Duration(max(p.DelayDays, 0)) * day)
}

// State is the derived lock state of one module.
type State struct {
	Locked    bool
	Remaining time.Duration
}

// RemainingMillis is Remaining in whole milliseconds.
func (s State) RemainingMillis() int64 {
	return s.Remaining.Milliseconds()
}

// Evaluate computes the lock state at now.
//
// Hour policies are precise: the remaining time counts down to the exact
// unlock instant. Day policies are coarse: remaining is the number of whole
// days still to wait times 24h, recomputed as full days elapse.
func Evaluate(enrolledAt time.Time, p Policy, now time.Time) State {
	if p.DelayHours != nil {
		remaining := p.UnlockAt(enrolledAt).Sub(now)
		if remaining <= 0 {
			return State{}
		}
		return State{Locked: true, Remaining: remaining}
	}

	daysUntil := int64(max(p.DelayDays, 0)) - elapsedDays(enrolledAt, now)
	if daysUntil > 0 {
		return State{Locked: true, Remaining: time.Duration(daysUntil) * day}
	}
	return State{}
}

// elapsedDays is floor((now-enrolledAt)/24h), also for now before enrolledAt.
func elapsedDays(enrolledAt, now time.Time) int64 {
	elapsed := now.Sub(enrolledAt)
	d := int64(elapsed / day)
	if elapsed < 0 && elapsed%day != 0 {
		d--
	}
	return d
}

// Watch re-evaluates the policy every interval and delivers each state on
// the returned channel, starting with the current one. The channel is
// closed after the first unlocked state is delivered or when ctx is done,
// so the timer never outlives the lock.
func Watch(ctx context.Context, enrolledAt time.Time, p Policy, interval time.Duration, now func() time.Time) <-chan State {
	if now == nil {
		now = time.Now
	}
	if interval <= 0 {
		interval = time.Second
	}

	out := make(chan State, 1)

	go func() {
		defer close(out)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			st := Evaluate(enrolledAt, p, now())

			select {
			case out <- st:
			case <-ctx.Done():
				return
			}

			if !st.Locked {
				return
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
