package appointment

import (
	"errors"
	"time"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrActorNotAllowed   = errors.New("actor not allowed for this transition")
)

// The transition table is the single definition of which status changes are
// legal, for every caller (web handler, batch job, admin tool). Each rule
// names the permitted actors and an optional time gate evaluated against an
// injected "now".
type transitionRule struct {
	actors []Actor
	gate   func(a *Appointment, now time.Time) bool
}

var transitions = map[Status]map[Status]transitionRule{
	StatusPending: {
		StatusConfirmed: {actors: ownerOnly},
		StatusCancelled: {actors: customerOrOwner},
		StatusRejected:  {actors: ownerOnly},
	},
	StatusConfirmed: {
		// Completion only once the appointment window has ended.
		StatusCompleted: {actors: ownerOnly, gate: afterEnd},
		// Customers cannot cancel a same-day or past confirmed appointment.
		StatusCancelled: {actors: customerOrOwner, gate: beforeDay},
		// No-show can only be called once the start time has passed.
		StatusNoShow: {actors: ownerOnly, gate: afterStart},
	},
}

var (
	ownerOnly       = []Actor{ActorShopOwner}
	customerOrOwner = []Actor{ActorCustomer, ActorShopOwner}
)

func afterEnd(a *Appointment, now time.Time) bool {
	return now.After(a.slot.End())
}

func afterStart(a *Appointment, now time.Time) bool {
	return now.After(a.slot.Start())
}

func beforeDay(a *Appointment, now time.Time) bool {
	return now.Before(a.day)
}

// TransitionTo applies a status change if the transition table allows it for
// this actor at this time. Statuses only move forward; terminal statuses
// have no outgoing edges.
func (a *Appointment) TransitionTo(to Status, actor Actor, now time.Time) error {
	rule, ok := transitions[a.status][to]
	if !ok {
		return ErrInvalidTransition
	}

	allowed := false
	for _, act := range rule.actors {
		if act == actor {
			allowed = true
			break
		}
	}
	if !allowed {
		return ErrActorNotAllowed
	}

	if rule.gate != nil && !rule.gate(a, now) {
		return ErrInvalidTransition
	}

	a.status = to
	a.updatedAt = now
	return nil
}

// CanTransition reports whether the move would succeed, without applying it.
func (a *Appointment) CanTransition(to Status, actor Actor, now time.Time) bool {
	rule, ok := transitions[a.status][to]
	if !ok {
		return false
	}
	for _, act := range rule.actors {
		if act == actor {
			if rule.gate != nil {
				return rule.gate(a, now)
			}
			return true
		}
	}
	return false
}
