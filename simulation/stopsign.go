package simulation

import "fmt"

// TurnPriority is the ordered right-of-way scale a ControlStopSign assigns to
// every turn at its intersection. Ordered so direct comparison (<, >, ==)
// implements the scale from spec.md's glossary.
type TurnPriority int

const (
	Banned TurnPriority = iota
	Stop
	Yield
	Priority
)

func (p TurnPriority) String() string {
	switch p {
	case Banned:
		return "Banned"
	case Stop:
		return "Stop"
	case Yield:
		return "Yield"
	case Priority:
		return "Priority"
	default:
		return "TurnPriority(?)"
	}
}

// ControlStopSign maps every turn at an intersection to a TurnPriority.
// Invariants (validated by Validate): every turn at the intersection is
// present, and no two Priority turns conflict.
type ControlStopSign struct {
	ID    IntersectionID
	Turns map[TurnID]TurnPriority
}

// GetPriority returns the priority sign assigns to turn; panics if turn isn't
// part of this sign's intersection, mirroring the Rust original's indexing
// panic (a programmer error, not a runtime condition).
func (s *ControlStopSign) GetPriority(turn TurnID) TurnPriority {
	p, ok := s.Turns[turn]
	if !ok {
		panic(fmt.Sprintf("%v has no ControlStopSign entry for %v", s.ID, turn))
	}
	return p
}

// CouldBePriorityTurn reports whether id could be marked Priority without
// conflicting with an already-Priority turn, per the map's conflict predicate.
func (s *ControlStopSign) CouldBePriorityTurn(id TurnID, m *Map) bool {
	for t, pri := range s.Turns {
		if pri == Priority && m.ConflictsWith(id, t) {
			return false
		}
	}
	return true
}

// Validate checks the two invariants spec.md §4.2 requires: coverage
// (diagnostic-only, missing/extra turns are a warning) and no conflicting
// Priority pair (an error — a fatal invariant break per spec.md §7).
func (s *ControlStopSign) Validate(m *Map) (warnings []string, err error) {
	i := m.Intersection(s.ID)
	if i == nil {
		return nil, fmt.Errorf("stop sign for unknown intersection %v", s.ID)
	}
	if len(s.Turns) != len(i.Turns) {
		warnings = append(warnings, fmt.Sprintf(
			"stop sign for %v has %d turns but should have %d", s.ID, len(s.Turns), len(i.Turns)))
	}
	for _, t := range i.Turns {
		if _, ok := s.Turns[t]; !ok {
			warnings = append(warnings, fmt.Sprintf("stop sign for %v is missing %v", s.ID, t))
		}
	}

	var priorityTurns []TurnID
	for t, pri := range s.Turns {
		if pri == Priority {
			priorityTurns = append(priorityTurns, t)
		}
	}
	for _, t1 := range priorityTurns {
		for _, t2 := range priorityTurns {
			if t1 == t2 {
				continue
			}
			if m.ConflictsWith(t1, t2) {
				return warnings, fmt.Errorf(
					"stop sign has conflicting priority turns %v and %v", t1, t2)
			}
		}
	}
	return warnings, nil
}

// highwayRank is the fixed road-rank table spec.md §4.2 defines for smart
// stop-sign assignment. Unknown OSM highway tags are a fatal error: ranking a
// road we can't classify would silently produce an unsafe assignment.
func highwayRank(highway string) (int, error) {
	switch highway {
	case "motorway":
		return 20, nil
	case "motorway_link":
		return 19, nil
	case "trunk":
		return 17, nil
	case "trunk_link":
		return 16, nil
	case "primary":
		return 15, nil
	case "primary_link":
		return 14, nil
	case "secondary":
		return 13, nil
	case "secondary_link":
		return 12, nil
	case "tertiary":
		return 10, nil
	case "tertiary_link":
		return 9, nil
	case "residential":
		return 5, nil
	case "footway":
		return 1, nil
	case "unclassified", "road", "":
		return 0, nil
	default:
		return 0, fmt.Errorf("unknown OSM highway class %q", highway)
	}
}

// NewControlStopSign runs smart assignment for intersection id, then
// validates the result. A conflicting-Priority-pair failure on the
// degenerate/deadend path falls back to all-way-stop with a warning
// (spec.md §7's recoverable tier); any other validation error is fatal and
// panics, since it means the smart-assignment algorithm itself is broken.
func NewControlStopSign(m *Map, id IntersectionID) (*ControlStopSign, []string) {
	ss, warnings, err := smartAssignment(m, id)
	if err != nil {
		panic(err)
	}
	vwarnings, verr := ss.Validate(m)
	if verr != nil {
		panic(verr)
	}
	return ss, append(warnings, vwarnings...)
}

func smartAssignment(m *Map, id IntersectionID) (*ControlStopSign, []string, error) {
	i := m.Intersection(id)
	if len(i.Roads) <= 2 {
		return forDegenerateAndDeadend(m, id)
	}

	rankPerIncomingLane := make(map[LaneID]int)
	ranks := make(map[int]bool)
	highestRank := 0
	for _, l := range append(append([]LaneID{}, i.IncomingLanes...), i.OutgoingLanes...) {
		lane := m.Lane(l)
		road := m.Road(lane.Road)
		rank, err := highwayRank(road.OSMTags["highway"])
		if err != nil {
			return nil, nil, err
		}
		rankPerIncomingLane[l] = rank
		if rank > highestRank {
			highestRank = rank
		}
		ranks[rank] = true
	}
	if len(ranks) == 1 {
		return allWayStop(m, id), nil, nil
	}

	ss := &ControlStopSign{ID: id, Turns: make(map[TurnID]TurnPriority)}
	for _, t := range i.Turns {
		turn := m.Turn(t)
		if rankPerIncomingLane[t.Src] == highestRank {
			if turn.Type != TurnLeft && ss.CouldBePriorityTurn(t, m) {
				ss.Turns[t] = Priority
			} else {
				ss.Turns[t] = Yield
			}
		} else {
			ss.Turns[t] = Stop
		}
	}
	return ss, nil, nil
}

func allWayStop(m *Map, id IntersectionID) *ControlStopSign {
	ss := &ControlStopSign{ID: id, Turns: make(map[TurnID]TurnPriority)}
	for _, t := range m.Intersection(id).Turns {
		ss.Turns[t] = Stop
	}
	return ss
}

func forDegenerateAndDeadend(m *Map, id IntersectionID) (*ControlStopSign, []string, error) {
	ss := &ControlStopSign{ID: id, Turns: make(map[TurnID]TurnPriority)}
	for _, t := range m.Intersection(id).Turns {
		if m.Turn(t).Type == TurnCrosswalk {
			ss.Turns[t] = Stop
		} else {
			ss.Turns[t] = Priority
		}
	}
	if _, err := ss.Validate(m); err != nil {
		return allWayStop(m, id), []string{
			fmt.Sprintf("giving up on for_degenerate_and_deadend(%v): %v", id, err),
		}, nil
	}
	return ss, nil, nil
}
