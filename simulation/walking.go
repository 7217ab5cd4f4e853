package simulation

// defaultWalkSpeed is used absent a per-pedestrian speed model.
const defaultWalkSpeed Speed = 1.4 // meters/second, a brisk walking pace

type pedState struct {
	path      []LaneID
	laneIdx   int
	onLane    bool
	turn      TurnID
	waiting   bool // turn requested but not yet accepted by the intersection
	goal      SidewalkSpot
	trip      TripID
	legsAfter []TripLeg
}

// WalkingSimState owns every pedestrian currently on the sidewalk network,
// reusing the same crosswalk-turn arbitration IntersectionSimState already
// provides for cars (crosswalks are ordinary Turns of TurnType
// TurnCrosswalk; see map.go).
type WalkingSimState struct {
	peds map[PedestrianID]*pedState
}

// NewWalkingSimState builds an empty walking state.
func NewWalkingSimState() *WalkingSimState {
	return &WalkingSimState{peds: make(map[PedestrianID]*pedState)}
}

// SpawnPed introduces a new pedestrian at the head of its resolved path.
func (w *WalkingSimState) SpawnPed(now Time, c *CreatePedestrian, m *Map, scheduler *Scheduler) {
	ps := &pedState{
		path:      c.Path,
		onLane:    true,
		goal:      c.Goal,
		trip:      c.Trip,
		legsAfter: c.LegsAfter,
	}
	w.peds[c.ID] = ps
	scheduler.Push(now.Add(walkDuration(m, ps.path, 0)), UpdatePedCommand(c.ID), now)
}

func walkDuration(m *Map, path []LaneID, idx int) Duration {
	if idx >= len(path) {
		return defaultTurnDuration
	}
	lane := m.Lane(path[idx])
	if lane == nil {
		return defaultTurnDuration
	}
	return DurationFromSeconds(lane.Length / float64(defaultWalkSpeed))
}

// UpdatePedResult mirrors UpdateCarResult for the pedestrian side of a trip.
type UpdatePedResult struct {
	TripFinished bool
	TripID       TripID
	ArrivedAt    SidewalkPOI
	NextLeg      *TripLeg
	AgentID      AgentID
}

// UpdatePed advances pedestrian id's state machine by one event, symmetric
// to DrivingSimState.UpdateCar.
func (w *WalkingSimState) UpdatePed(now Time, id PedestrianID, m *Map, scheduler *Scheduler, isect *IntersectionSimState) UpdatePedResult {
	ps, ok := w.peds[id]
	if !ok {
		return UpdatePedResult{}
	}
	agent := NewPedAgent(id)

	if ps.onLane {
		if ps.laneIdx == len(ps.path)-1 {
			return w.finishTrip(id, ps)
		}
		lane := ps.path[ps.laneIdx]
		next := ps.path[ps.laneIdx+1]
		turn := TurnID{Parent: m.Lane(lane).Dst, Src: lane, Dst: next}
		ps.turn = turn
		ps.onLane = false
		if isect.MaybeStartTurn(now, agent, turn, m, scheduler) {
			scheduler.Push(now.Add(defaultTurnDuration), UpdatePedCommand(id), now)
		} else {
			ps.waiting = true
		}
		return UpdatePedResult{AgentID: agent}
	}

	if ps.waiting {
		// Woken while still waiting for the turn: request it again.
		if isect.MaybeStartTurn(now, agent, ps.turn, m, scheduler) {
			ps.waiting = false
			scheduler.Push(now.Add(defaultTurnDuration), UpdatePedCommand(id), now)
		}
		return UpdatePedResult{AgentID: agent}
	}

	isect.TurnFinished(now, agent, ps.turn, scheduler)
	ps.laneIdx++
	ps.onLane = true
	scheduler.Push(now.Add(walkDuration(m, ps.path, ps.laneIdx)), UpdatePedCommand(id), now)
	return UpdatePedResult{AgentID: agent}
}

func (w *WalkingSimState) finishTrip(id PedestrianID, ps *pedState) UpdatePedResult {
	delete(w.peds, id)
	res := UpdatePedResult{TripFinished: true, TripID: ps.trip, ArrivedAt: ps.goal.POI, AgentID: NewPedAgent(id)}
	if len(ps.legsAfter) > 0 {
		leg := ps.legsAfter[0]
		res.NextLeg = &leg
	}
	return res
}

// PedCount reports how many pedestrians are currently active, for
// metrics/debug.
func (w *WalkingSimState) PedCount() int { return len(w.peds) }
