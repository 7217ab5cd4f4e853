package simulation

// defaultTurnDuration is how long an accepted turn takes to clear, absent a
// per-vehicle physics model (out of scope; see DESIGN.md).
const defaultTurnDuration = Duration(2e9) // 2s, expressed in nanoseconds

// fallbackSpeed is used for a vehicle with no MaxSpeed set.
const fallbackSpeed Speed = 11.0 // ~25mph, meters/second

type carState struct {
	vehicle   Vehicle
	path      []LaneID // full resolved path, path[laneIdx] is the one currently occupied
	laneIdx   int
	onLane    bool // true: travelling along path[laneIdx]; false: mid-turn
	turn      TurnID
	waiting   bool // turn requested but not yet accepted by the intersection
	goal      DrivingGoal
	trip      TripID
	legsAfter []TripLeg
}

// DrivingSimState owns every car currently on the road network: their
// position within their resolved path and their arbitration state at the
// intersection ahead. It mirrors mechanics::DrivingSimState's role, reduced
// to the event-driven subset this engine tracks (see spec.md §4 — Non-goals
// excludes continuous physics, lane-changing, and car-following).
type DrivingSimState struct {
	cars map[CarID]*carState
}

// NewDrivingSimState builds an empty driving state.
func NewDrivingSimState() *DrivingSimState {
	return &DrivingSimState{cars: make(map[CarID]*carState)}
}

// SpawnCar introduces a new car at the head of its resolved path and
// schedules its first lane-traversal wakeup.
func (d *DrivingSimState) SpawnCar(now Time, c *CreateCar, m *Map, scheduler *Scheduler) {
	cs := &carState{
		vehicle:   c.Vehicle,
		path:      c.Path,
		onLane:    true,
		goal:      c.Goal,
		trip:      c.Trip,
		legsAfter: c.LegsAfter,
	}
	d.cars[c.Vehicle.ID] = cs
	scheduler.Push(now.Add(laneTraverseDuration(m, cs.path, 0, cs.vehicle.MaxSpeed)), UpdateCarCommand(c.Vehicle.ID), now)
}

func laneTraverseDuration(m *Map, path []LaneID, idx int, speed Speed) Duration {
	if idx >= len(path) {
		return defaultTurnDuration
	}
	lane := m.Lane(path[idx])
	if lane == nil {
		return defaultTurnDuration
	}
	if speed <= 0 {
		speed = fallbackSpeed
	}
	return DurationFromSeconds(lane.Length / float64(speed))
}

// UpdateCarResult tells Sim.Step what follow-up work a car's Update event
// produced, since DrivingSimState alone doesn't own parking or trip
// completion bookkeeping.
type UpdateCarResult struct {
	TripFinished bool
	TripID       TripID
	Vehicle      Vehicle
	ParkNear     BuildingID
	WantsToPark  bool
	LeftMap      bool
	NextLeg      *TripLeg
	AgentID      AgentID
}

// UpdateCar advances car id's state machine by one event: either it has
// just reached the end of its current lane (onLane==true) and must request
// the next turn, or it has just finished a turn (onLane==false) and moves
// onto the next lane. A car woken while its turn request is still waiting
// requests the turn again.
func (d *DrivingSimState) UpdateCar(now Time, id CarID, m *Map, scheduler *Scheduler, isect *IntersectionSimState) UpdateCarResult {
	cs, ok := d.cars[id]
	if !ok {
		return UpdateCarResult{}
	}
	agent := NewCarAgent(id)

	if cs.onLane {
		if cs.laneIdx == len(cs.path)-1 {
			return d.finishTrip(now, id, cs)
		}
		lane := cs.path[cs.laneIdx]
		next := cs.path[cs.laneIdx+1]
		turn := TurnID{Parent: m.Lane(lane).Dst, Src: lane, Dst: next}
		cs.turn = turn
		cs.onLane = false
		if isect.MaybeStartTurn(now, agent, turn, m, scheduler) {
			scheduler.Push(now.Add(defaultTurnDuration), UpdateCarCommand(id), now)
		} else {
			cs.waiting = true
		}
		// If not granted, the car simply waits: IntersectionSimState will
		// reschedule this same Update command once the turn becomes
		// available (TurnFinished / UpdateIntersection).
		return UpdateCarResult{AgentID: agent}
	}

	if cs.waiting {
		// Woken while still waiting for the turn: request it again.
		if isect.MaybeStartTurn(now, agent, cs.turn, m, scheduler) {
			cs.waiting = false
			scheduler.Push(now.Add(defaultTurnDuration), UpdateCarCommand(id), now)
		}
		return UpdateCarResult{AgentID: agent}
	}

	// Mid-turn: the turn is finished, advance onto the next lane.
	isect.TurnFinished(now, agent, cs.turn, scheduler)
	cs.laneIdx++
	cs.onLane = true
	if cs.laneIdx == len(cs.path)-1 {
		scheduler.Push(now.Add(laneTraverseDuration(m, cs.path, cs.laneIdx, cs.vehicle.MaxSpeed)), UpdateCarCommand(id), now)
		return UpdateCarResult{AgentID: agent}
	}
	scheduler.Push(now.Add(laneTraverseDuration(m, cs.path, cs.laneIdx, cs.vehicle.MaxSpeed)), UpdateCarCommand(id), now)
	return UpdateCarResult{AgentID: agent}
}

func (d *DrivingSimState) finishTrip(now Time, id CarID, cs *carState) UpdateCarResult {
	delete(d.cars, id)
	res := UpdateCarResult{TripFinished: true, TripID: cs.trip, Vehicle: cs.vehicle, AgentID: NewCarAgent(id)}
	switch cs.goal.Kind {
	case GoalParkNear:
		res.WantsToPark = true
		res.ParkNear = cs.goal.ParkingAt
	case GoalBorder:
		res.LeftMap = true
	}
	if len(cs.legsAfter) > 0 {
		leg := cs.legsAfter[0]
		res.NextLeg = &leg
	}
	return res
}

// CarCount reports how many cars are currently active, for metrics/debug.
func (d *DrivingSimState) CarCount() int { return len(d.cars) }
