package simulation

// Cycle is one phase of a traffic signal: for its Duration, turns in
// Priority or Yield may proceed; every other turn at the intersection is
// implicitly Banned. IntersectionSimState admits Priority and Yield turns
// the same way: only while no accepted turn conflicts with them.
type Cycle struct {
	Duration Duration
	Priority map[TurnID]bool
	Yield    map[TurnID]bool
}

// NewCycle builds an empty cycle of the given duration.
func NewCycle(d Duration) Cycle {
	return Cycle{Duration: d, Priority: make(map[TurnID]bool), Yield: make(map[TurnID]bool)}
}

// AddPriority marks t as a Priority turn during this cycle.
func (c Cycle) AddPriority(t TurnID) { c.Priority[t] = true }

// AddYield marks t as conditionally allowed (must yield to conflicts) during
// this cycle.
func (c Cycle) AddYield(t TurnID) { c.Yield[t] = true }

// GetPriority reports the TurnPriority a cycle grants turn: Priority, Yield,
// or Banned if the turn isn't listed in either set.
func (c Cycle) GetPriority(turn TurnID) TurnPriority {
	if c.Priority[turn] {
		return Priority
	}
	if c.Yield[turn] {
		return Yield
	}
	return Banned
}

// ControlTrafficSignal is a fixed-time signal: a sequence of Cycles that
// repeat forever, each occupying its Duration before advancing to the next.
type ControlTrafficSignal struct {
	ID     IntersectionID
	Cycles []Cycle
}

// CycleDuration is the total length of one full repetition of all cycles.
func (s *ControlTrafficSignal) CycleDuration() Duration {
	var total Duration
	for _, c := range s.Cycles {
		total += c.Duration
	}
	return total
}

// CurrentCycleAndRemainingTime resolves now to the cycle it falls within and
// how much of that cycle remains; it returns (0, 0) for a signal whose cycles
// have no total duration. Overtime is not derived from this: see
// IntersectionSimState.IsInOvertime, which checks each accepted turn's
// priority in the current cycle.
func (s *ControlTrafficSignal) CurrentCycleAndRemainingTime(now Time) (int, Duration) {
	total := s.CycleDuration()
	if total <= 0 {
		return 0, ZeroDuration
	}
	elapsed := Duration(int64(now.Sub(TimeZero)) % int64(total))
	for idx, c := range s.Cycles {
		if elapsed < c.Duration {
			return idx, c.Duration - elapsed
		}
		elapsed -= c.Duration
	}
	return len(s.Cycles) - 1, ZeroDuration
}

// GetPriority reports the priority turn has at time now.
func (s *ControlTrafficSignal) GetPriority(turn TurnID, now Time) TurnPriority {
	idx, _ := s.CurrentCycleAndRemainingTime(now)
	return s.Cycles[idx].GetPriority(turn)
}
