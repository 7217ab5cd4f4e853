package simulation

import "fmt"

// SuggestionKind distinguishes the handful of advisory patterns the Advisor
// knows how to recognize. Modeled on the teacher's SuggestionKind enum
// (suggestions.go), narrowed to this engine's domain.
type SuggestionKind int

const (
	SuggestSignalOvertime SuggestionKind = iota
	SuggestStarvedWaiter
	SuggestStalledTrip
)

func (k SuggestionKind) String() string {
	switch k {
	case SuggestSignalOvertime:
		return "signal-overtime"
	case SuggestStarvedWaiter:
		return "starved-waiter"
	case SuggestStalledTrip:
		return "stalled-trip"
	default:
		return "unknown"
	}
}

// Suggestion is a single scored, read-only observation the Advisor surfaced
// about the current state of the simulation. Accepting one invokes an
// ordinary public Sim operation; the Advisor itself never mutates state.
type Suggestion struct {
	ID       int
	Kind     SuggestionKind
	Subject  string // human-readable identifier of what the suggestion is about
	Score    float64
	Detail   string
	accept   func(s *Sim) error
}

// Advisor periodically scans a Sim's state for a few easily-diagnosed
// problem patterns and turns them into scored Suggestions, mirroring the
// teacher's SuggestionEngine (suggestions.go) but built over this engine's
// own IntersectionSimState/TripManager instead of ts2's track/signal model.
type Advisor struct {
	sim      *Sim
	nextID   int
	current  []Suggestion
	lastScan Time
}

// NewAdvisor builds an Advisor bound to sim. RecomputeIfDue only reads the
// Sim, but a rescan replaces the Advisor's own cached suggestion list.
func NewAdvisor(sim *Sim) *Advisor {
	return &Advisor{sim: sim}
}

// recomputeInterval is how often RecomputeIfDue actually rescans, to avoid
// the advisor becoming a hot path on every Step call.
const recomputeInterval = Duration(30e9) // 30s

// RecomputeIfDue rescans if at least recomputeInterval has passed since the
// last scan, and returns the current suggestion list either way.
func (a *Advisor) RecomputeIfDue() []Suggestion {
	now := a.sim.Now()
	if now.Sub(a.lastScan) >= recomputeInterval || a.lastScan.IsZero() {
		a.Recompute()
	}
	return a.current
}

// Recompute unconditionally rescans and replaces the current suggestion
// list.
func (a *Advisor) Recompute() []Suggestion {
	now := a.sim.Now()
	a.lastScan = now
	var out []Suggestion
	out = append(out, a.scanSignalOvertime(now)...)
	out = append(out, a.scanStarvedWaiters(now)...)
	out = append(out, a.scanStalledTrips(now)...)
	a.current = out
	return out
}

func (a *Advisor) nextSuggestionID() int {
	a.nextID++
	return a.nextID
}

// scanSignalOvertime flags traffic signals currently in overtime (serving an
// accepted agent whose turn the current cycle no longer allows), a sign the
// cycle timing is too aggressive for the demand it's carrying.
func (a *Advisor) scanSignalOvertime(now Time) []Suggestion {
	var out []Suggestion
	for _, i := range a.sim.Map().AllIntersections() {
		if i.Type != IntersectionTrafficSignal {
			continue
		}
		if !a.sim.intersections.IsInOvertime(i.ID, now, a.sim.Map()) {
			continue
		}
		accepted := a.sim.intersections.GetAcceptedAgents(i.ID)
		if len(accepted) == 0 {
			continue
		}
		ixID := i.ID
		out = append(out, Suggestion{
			ID:      a.nextSuggestionID(),
			Kind:    SuggestSignalOvertime,
			Subject: i.ID.String(),
			Score:   float64(len(accepted)),
			Detail:  fmt.Sprintf("%v is serving %d agent(s) past its cycle boundary", i.ID, len(accepted)),
			accept: func(s *Sim) error {
				// Accepting forces the signal's next UpdateIntersection to
				// fire immediately, re-running cycle arbitration now instead
				// of waiting out the rest of overtime.
				s.scheduler.Update(s.Now(), UpdateIntersectionCommand(ixID), s.Now())
				return nil
			},
		})
	}
	return out
}

// scanStarvedWaiters flags every request currently in an intersection's
// waiting queue, each with a score of 1. Waiting time is not tracked, so
// starvedThreshold is not applied and a request that has just been queued is
// flagged the same as one that has waited for minutes.
const starvedThreshold = Duration(120e9) // 2 minutes

func (a *Advisor) scanStarvedWaiters(now Time) []Suggestion {
	var out []Suggestion
	for id, st := range a.sim.intersections.states {
		for _, w := range st.waiting {
			agent := w.Agent
			out = append(out, Suggestion{
				ID:      a.nextSuggestionID(),
				Kind:    SuggestStarvedWaiter,
				Subject: fmt.Sprintf("%v at %v", w.Agent, id),
				Score:   1,
				Detail:  fmt.Sprintf("%v is waiting to take %v", w.Agent, w.Turn),
				accept: func(s *Sim) error {
					s.scheduler.Update(s.Now(), wakeupCommandFor(agent), s.Now())
					return nil
				},
			})
		}
	}
	return out
}

// scanStalledTrips flags in-progress trips that have been running for at
// least stalledTripThreshold, suggesting the agent is stuck (e.g. circling
// for parking with no free spot).
const stalledTripThreshold = Duration(1800e9) // 30 minutes

func (a *Advisor) scanStalledTrips(now Time) []Suggestion {
	var out []Suggestion
	for _, t := range a.sim.trips.Active() {
		age := now.Sub(t.StartedAt)
		if age < stalledTripThreshold {
			continue
		}
		tripID := t.ID
		out = append(out, Suggestion{
			ID:      a.nextSuggestionID(),
			Kind:    SuggestStalledTrip,
			Subject: tripID.String(),
			Score:   age.Seconds(),
			Detail:  fmt.Sprintf("%v has been running for %s", tripID, age),
			accept: func(s *Sim) error {
				s.trips.Abort(tripID, s.Now())
				return nil
			},
		})
	}
	return out
}

// Accept applies the suggestion with the given ID by invoking its bound
// public Sim operation, then drops it from the current list.
func (a *Advisor) Accept(id int) error {
	for idx, sug := range a.current {
		if sug.ID == id {
			if err := sug.accept(a.sim); err != nil {
				return err
			}
			a.current = append(a.current[:idx], a.current[idx+1:]...)
			return nil
		}
	}
	return fmt.Errorf("no such suggestion: %d", id)
}

// Reject drops the suggestion with the given ID without applying it.
func (a *Advisor) Reject(id int) error {
	for idx, sug := range a.current {
		if sug.ID == id {
			a.current = append(a.current[:idx], a.current[idx+1:]...)
			return nil
		}
	}
	return fmt.Errorf("no such suggestion: %d", id)
}

// Current returns the most recently computed suggestion list.
func (a *Advisor) Current() []Suggestion { return a.current }
