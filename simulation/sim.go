package simulation

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"
)

// SimFlags are the user-controlled knobs that seed a Sim, the Go rendering
// of the original engine's SimFlags struct. RNGSeed is what makes a replay
// deterministic: same map, same flags, same scheduled trips, same seed
// produces a bit-identical run.
type SimFlags struct {
	RNGSeed   int64  `yaml:"rng_seed"`
	MapName   string `yaml:"map_name"`
	EditsName string `yaml:"edits_name"`
}

// Benchmark tracks wall-clock vs simulated time to report a running "how
// many sim-seconds per real-second" rate, mirroring sim.rs's Benchmark.
type Benchmark struct {
	lastRealTime time.Time
	lastSimTime  Time
}

// StartBenchmark begins a new measurement window from the current sim time.
func StartBenchmark(now Time) Benchmark {
	return Benchmark{lastRealTime: time.Now(), lastSimTime: now}
}

// MeasureSpeed reports the ratio of simulated-time-elapsed to
// real-time-elapsed since the benchmark started, then resets the window.
func (b *Benchmark) MeasureSpeed(now Time) float64 {
	realElapsed := time.Since(b.lastRealTime).Seconds()
	simElapsed := now.Sub(b.lastSimTime).Seconds()
	b.lastRealTime = time.Now()
	b.lastSimTime = now
	if realElapsed <= 0 {
		return 0
	}
	return simElapsed / realElapsed
}

// Sim is the top-level orchestrator: it owns the scheduler and every
// per-domain state machine, and is the only thing that advances simulated
// time. Map is borrowed for the lifetime of the Sim (see map.go); a new Map
// requires a new Sim, matching the original engine's "no live map edits"
// constraint from spec.md §6.
type Sim struct {
	flags SimFlags
	rng   *rand.Rand
	now   Time

	m             *Map
	scheduler     *Scheduler
	intersections *IntersectionSimState
	driving       *DrivingSimState
	walking       *WalkingSimState
	parking       *ParkingSimState
	spawner       *TripSpawner
	ids           *IDAllocator
	trips         *TripManager
	advisor       *Advisor

	benchmark Benchmark
}

// NewSim builds a fresh Sim over m, seeded per flags. IntersectionSimState
// reads each intersection's Type once at construction and schedules the
// first UpdateIntersection wakeup for every traffic-signal intersection; stop
// signs and signals themselves (see NewControlStopSign in stopsign.go) are
// looked up on the Map each time a turn is arbitrated.
func NewSim(m *Map, flags SimFlags) *Sim {
	now := TimeZero
	scheduler := NewScheduler()
	s := &Sim{
		flags:         flags,
		rng:           rand.New(rand.NewSource(flags.RNGSeed)),
		now:           now,
		m:             m,
		scheduler:     scheduler,
		intersections: NewIntersectionSimState(m, scheduler, now),
		driving:       NewDrivingSimState(),
		walking:       NewWalkingSimState(),
		parking:       NewParkingSimState(),
		spawner:       NewTripSpawner(),
		ids:           NewIDAllocator(),
		trips:         NewTripManager(),
		benchmark:     StartBenchmark(now),
	}
	s.advisor = NewAdvisor(s)
	return s
}

// Now returns the simulation's current time.
func (s *Sim) Now() Time { return s.now }

// Map returns the map this Sim is running on.
func (s *Sim) Map() *Map { return s.m }

// Spawner exposes the trip spawner so callers can ScheduleTrip before
// calling SpawnTrips.
func (s *Sim) Spawner() *TripSpawner { return s.spawner }

// Rand exposes the Sim's seeded RNG so scenario/demand generators (out of
// scope for this engine; see DESIGN.md) can still produce reproducible
// trips when driven externally.
func (s *Sim) Rand() *rand.Rand { return s.rng }

// SpawnTrips resolves every trip scheduled on the spawner since the last
// call, running pathfinding for the whole batch before pushing spawn
// commands onto the scheduler.
func (s *Sim) SpawnTrips() []error {
	return s.spawner.SpawnAll(s.m, s.scheduler, s.now, s.ids)
}

// Step advances the simulation by processing every command due at or before
// now+dt, in (Time, Command) order. It is the sole place simulated time
// moves forward.
func (s *Sim) Step(dt Duration) {
	deadline := s.now.Add(dt)
	for !s.scheduler.IsEmpty() && !deadline.Before(s.scheduler.PeekTime()) {
		at, cmd := s.scheduler.Pop()
		s.now = at
		s.dispatch(cmd)
	}
	s.now = deadline
}

func (s *Sim) dispatch(cmd Command) {
	switch cmd.Kind {
	case CommandSpawnCar:
		s.driving.SpawnCar(s.now, cmd.NewCar, s.m, s.scheduler)
		s.trips.Start(cmd.NewCar.Trip, NewCarAgent(cmd.NewCar.Vehicle.ID), s.now)
	case CommandSpawnPed:
		s.walking.SpawnPed(s.now, cmd.NewPed, s.m, s.scheduler)
		s.trips.Start(cmd.NewPed.Trip, NewPedAgent(cmd.NewPed.ID), s.now)
	case CommandUpdateCar:
		res := s.driving.UpdateCar(s.now, cmd.CarID, s.m, s.scheduler, s.intersections)
		if res.TripFinished {
			s.finishCarLeg(res)
		}
	case CommandUpdatePed:
		res := s.walking.UpdatePed(s.now, cmd.PedID, s.m, s.scheduler, s.intersections)
		if res.TripFinished {
			s.finishPedLeg(res)
		}
	case CommandUpdateIntersection:
		s.intersections.UpdateIntersection(s.now, cmd.IX, s.m, s.scheduler)
	}
}

func (s *Sim) finishCarLeg(res UpdateCarResult) {
	if res.WantsToPark {
		b := s.m.Building(res.ParkNear)
		if b != nil && s.parking.ParkCar(s.m, b.Lane, res.Vehicle, res.ParkNear) {
			s.trips.Finish(res.TripID, s.now)
		} else {
			// No free curb space near the destination: the trip ends
			// stranded rather than silently double-parking.
			s.trips.Abort(res.TripID, s.now)
		}
		return
	}
	if res.NextLeg != nil {
		s.trips.Advance(res.TripID, s.now)
		return
	}
	s.trips.Finish(res.TripID, s.now)
}

func (s *Sim) finishPedLeg(res UpdatePedResult) {
	if res.NextLeg != nil {
		s.trips.Advance(res.TripID, s.now)
		return
	}
	s.trips.Finish(res.TripID, s.now)
}

// MeasureSpeed reports the current sim-seconds-per-real-second rate.
func (s *Sim) MeasureSpeed() float64 { return s.benchmark.MeasureSpeed(s.now) }

// Advisor exposes the read-only suggestion engine.
func (s *Sim) Advisor() *Advisor { return s.advisor }

// CarCount reports how many cars are currently on the road network.
func (s *Sim) CarCount() int { return s.driving.CarCount() }

// PedCount reports how many pedestrians are currently on the sidewalk
// network.
func (s *Sim) PedCount() int { return s.walking.PedCount() }

// CompletedTripCount reports how many trips have finished so far.
func (s *Sim) CompletedTripCount() int { return s.trips.CompletedCount() }

// IntersectionAcceptedAgents reports which agents currently hold an
// accepted turn at intersection id, for the observation layer.
func (s *Sim) IntersectionAcceptedAgents(id IntersectionID) []AgentID {
	return s.intersections.GetAcceptedAgents(id)
}

// saveStateVersion is bumped whenever the JSON shape of savedSim changes
// incompatibly; Load refuses to read a mismatched version rather than
// silently misinterpreting old fields.
const saveStateVersion = 1

type savedSim struct {
	Version int       `json:"version"`
	Flags   SimFlags  `json:"flags"`
	Now     Time      `json:"now"`
}

// Save serializes the Sim's coarse-grained state (flags and current time) as
// JSON. Agents, trips, intersection arbitration and pending scheduler
// commands are not saved (see DESIGN.md Open Questions), so a Sim rebuilt by
// Load starts at the saved time with none of them.
func (s *Sim) Save() ([]byte, error) {
	return json.Marshal(savedSim{Version: saveStateVersion, Flags: s.flags, Now: s.now})
}

// Load restores flags and time from a blob previously produced by Save,
// rebuilding a fresh Sim over m.
func Load(data []byte, m *Map) (*Sim, error) {
	var saved savedSim
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, err
	}
	if saved.Version != saveStateVersion {
		return nil, fmt.Errorf("save-state version %d is not supported (want %d)", saved.Version, saveStateVersion)
	}
	s := NewSim(m, saved.Flags)
	s.now = saved.Now
	return s, nil
}
