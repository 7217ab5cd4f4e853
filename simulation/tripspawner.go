package simulation

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// TripSpecKind distinguishes the five ways a trip can begin, matching
// spawner.rs's TripSpec enum.
type TripSpecKind int

const (
	SpecCarAppearing TripSpecKind = iota
	SpecUsingParkedCar
	SpecJustWalking
	SpecUsingBike
	SpecUsingTransit
)

// TripSpec describes how a trip should start, before any pathfinding has run.
// Only the fields relevant to Kind are meaningful.
type TripSpec struct {
	Kind TripSpecKind

	// SpecCarAppearing / SpecUsingBike
	Vehicle Vehicle
	Start   Position
	Goal    DrivingGoal

	// SpecUsingParkedCar
	ParkedCarOwner BuildingID

	// SpecJustWalking
	WalkStart SidewalkSpot
	WalkGoal  SidewalkSpot

	// SpecUsingTransit
	Route BusRouteID
	Stop1 BusStopID
	Stop2 BusStopID
}

// getPathfindingRequest builds the single PathRequest spawn_all needs to
// resolve before this spec can become a Command. UsingTransit legs are
// walk-to-stop only; the bus itself isn't pathfound per-rider.
func (spec TripSpec) getPathfindingRequest(m *Map) (PathRequest, error) {
	switch spec.Kind {
	case SpecCarAppearing:
		end, ok := drivingGoalPosition(m, spec.Goal)
		if !ok {
			return PathRequest{}, fmt.Errorf("CarAppearing: no destination position for goal")
		}
		return PathRequest{Start: spec.Start, End: end}, nil
	case SpecUsingBike:
		end, ok := drivingGoalPosition(m, spec.Goal)
		if !ok {
			return PathRequest{}, fmt.Errorf("UsingBike: no destination position for goal")
		}
		return PathRequest{Start: spec.Start, End: end, CanUseBikeLanes: true}, nil
	case SpecUsingParkedCar:
		b := m.Building(spec.ParkedCarOwner)
		if b == nil {
			return PathRequest{}, fmt.Errorf("UsingParkedCar: unknown owner building")
		}
		end, ok := drivingGoalPosition(m, spec.Goal)
		if !ok {
			return PathRequest{}, fmt.Errorf("UsingParkedCar: no destination position for goal")
		}
		return PathRequest{Start: Position{Lane: b.Lane}, End: end}, nil
	case SpecJustWalking:
		return PathRequest{Start: spec.WalkStart.Pos, End: spec.WalkGoal.Pos}, nil
	case SpecUsingTransit:
		stop := m.BusStop(spec.Stop1)
		if stop == nil {
			return PathRequest{}, fmt.Errorf("UsingTransit: unknown stop1")
		}
		return PathRequest{Start: spec.WalkStart.Pos, End: Position{Lane: stop.Lane}}, nil
	default:
		return PathRequest{}, fmt.Errorf("unknown TripSpec kind %d", spec.Kind)
	}
}

func drivingGoalPosition(m *Map, goal DrivingGoal) (Position, bool) {
	switch goal.Kind {
	case GoalBorder:
		i := m.Intersection(goal.BorderAt)
		if i == nil || len(i.IncomingLanes) == 0 {
			return Position{}, false
		}
		return Position{Lane: i.IncomingLanes[0]}, true
	case GoalParkNear:
		b := m.Building(goal.ParkingAt)
		if b == nil {
			return Position{}, false
		}
		return Position{Lane: b.Lane}, true
	default:
		return Position{}, false
	}
}

type scheduledTrip struct {
	id    TripID
	start Time
	spec  TripSpec
}

// TripSpawner accumulates validated trip requests and turns them into
// Scheduler commands in one batch. This mirrors the original engine's
// two-phase schedule_trip/spawn_all split: validating and claiming resources
// (like a parked car) happens eagerly and cheaply at schedule time, while
// the expensive pathfinding is deferred and parallelized across the whole
// batch in SpawnAll.
type TripSpawner struct {
	parkedCarsClaimed map[CarID]bool
	trips             []scheduledTrip
	nextTripID        TripID
}

// NewTripSpawner builds an empty spawner.
func NewTripSpawner() *TripSpawner {
	return &TripSpawner{parkedCarsClaimed: make(map[CarID]bool)}
}

// ScheduleTrip validates spec and, if valid, records it to be spawned by a
// later SpawnAll call. Returns the new trip's ID.
//
// Only UsingParkedCar specs are validated here: the owner building must have
// a parked car in parkedCarOf, and that car must not already be claimed by
// another scheduled trip. Either failure is returned as an error (ScheduleTrip
// does not panic). Specs of the other kinds are recorded without validation.
func (sp *TripSpawner) ScheduleTrip(start Time, spec TripSpec, parkedCarOf map[BuildingID]CarID) (TripID, error) {
	if spec.Kind == SpecUsingParkedCar {
		car, ok := parkedCarOf[spec.ParkedCarOwner]
		if !ok {
			return 0, fmt.Errorf("UsingParkedCar: building %v has no parked car", spec.ParkedCarOwner)
		}
		if sp.parkedCarsClaimed[car] {
			return 0, fmt.Errorf("UsingParkedCar: %v's car already claimed by another trip", car)
		}
		sp.parkedCarsClaimed[car] = true
	}
	id := sp.nextTripID
	sp.nextTripID++
	sp.trips = append(sp.trips, scheduledTrip{id: id, start: start, spec: spec})
	return id, nil
}

// pathResult holds one trip's pathfinding outcome: the path that was found,
// if any. Its position in SpawnAll's results slice is the trip's position in
// the batch, which is what preserves order across the parallel fan-out.
type pathResult struct {
	path  Path
	found bool
}

// SpawnAll resolves every trip scheduled since the spawner was created (or
// since the last SpawnAll) into Scheduler commands. Pathfinding runs across
// a bounded worker pool — bounded parallel fan-out, replacing the original
// engine's scoped_threadpool with golang.org/x/sync/errgroup — but the
// resulting commands are pushed onto the scheduler in the spawner's original
// trip order, so two runs given the same trips in the same order produce
// identical scheduler state regardless of which goroutine finished first.
func (sp *TripSpawner) SpawnAll(m *Map, scheduler *Scheduler, now Time, idAlloc *IDAllocator) []error {
	trips := sp.trips
	sp.trips = nil
	results := make([]pathResult, len(trips))

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(runtime.NumCPU())
	for idx, t := range trips {
		idx, t := idx, t
		g.Go(func() error {
			req, err := t.spec.getPathfindingRequest(m)
			if err != nil {
				results[idx] = pathResult{found: false}
				return nil
			}
			path, ok := m.Pathfind(req)
			results[idx] = pathResult{path: path, found: ok}
			return nil
		})
	}
	_ = g.Wait() // errors are per-trip and already captured in results

	var errs []error
	for idx, t := range trips {
		res := results[idx]
		if !res.found {
			errs = append(errs, fmt.Errorf("trip %v: no path found, dropping", t.id))
			continue
		}
		cmd, err := buildSpawnCommand(t, res.path, idAlloc)
		if err != nil {
			errs = append(errs, fmt.Errorf("trip %v: %w", t.id, err))
			continue
		}
		scheduler.Push(t.start, cmd, now)
	}
	return errs
}

// IDAllocator hands out fresh CarID/PedestrianID values; owned by Sim so IDs
// stay globally unique across repeated SpawnAll batches.
type IDAllocator struct {
	nextCar CarID
	nextPed PedestrianID
}

// NewIDAllocator builds an allocator starting from zero.
func NewIDAllocator() *IDAllocator { return &IDAllocator{} }

// NewCarID returns the next unused CarID.
func (a *IDAllocator) NewCarID() CarID { id := a.nextCar; a.nextCar++; return id }

// NewPedestrianID returns the next unused PedestrianID.
func (a *IDAllocator) NewPedestrianID() PedestrianID { id := a.nextPed; a.nextPed++; return id }

func buildSpawnCommand(t scheduledTrip, path Path, idAlloc *IDAllocator) (Command, error) {
	switch t.spec.Kind {
	case SpecCarAppearing, SpecUsingBike, SpecUsingParkedCar:
		// UsingParkedCar reuses the vehicle that was already spawned when it
		// was parked (callers populate its existing ID on spec.Vehicle);
		// CarAppearing/UsingBike need a freshly allocated ID below.
		v := t.spec.Vehicle
		if v.ID == 0 && t.spec.Kind != SpecUsingParkedCar {
			v.ID = idAlloc.NewCarID()
		}
		start := t.spec.Start
		if len(path.Lanes) > 0 {
			start = Position{Lane: path.Lanes[0]}
		}
		return SpawnCarCommand(&CreateCar{
			Vehicle: v,
			Start:   start,
			Path:    path.Lanes,
			Goal:    t.spec.Goal,
			Trip:    t.id,
		}), nil
	case SpecJustWalking:
		return SpawnPedCommand(&CreatePedestrian{
			ID:    idAlloc.NewPedestrianID(),
			Start: t.spec.WalkStart,
			Path:  path.Lanes,
			Goal:  t.spec.WalkGoal,
			Trip:  t.id,
		}), nil
	case SpecUsingTransit:
		legsAfter := []TripLeg{
			{Kind: LegRideBus, BusRoute: t.spec.Route, BusStop: t.spec.Stop2},
		}
		return SpawnPedCommand(&CreatePedestrian{
			ID:        idAlloc.NewPedestrianID(),
			Start:     t.spec.WalkStart,
			Path:      path.Lanes,
			Goal:      SidewalkSpot{POI: SidewalkPOI{Kind: POIBusStop, BusStop: t.spec.Stop1}},
			Trip:      t.id,
			LegsAfter: legsAfter,
		}), nil
	default:
		return Command{}, fmt.Errorf("unknown TripSpec kind %d", t.spec.Kind)
	}
}
