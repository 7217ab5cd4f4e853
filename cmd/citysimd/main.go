// Command citysimd runs a citysim traffic microsimulation, either headless
// or serving a websocket/HTTP observation shell.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	log "gopkg.in/inconshreveable/log15.v2"
	"gopkg.in/yaml.v3"

	"github.com/tracktitans/citysim/server"
	"github.com/tracktitans/citysim/simulation"
)

var logger = log.New("module", "citysimd")

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional)")
	headless := flag.Bool("headless", false, "run without the HTTP/websocket observation shell")
	headlessSeconds := flag.Float64("run_for", 3600, "when --headless, how many simulated seconds to run")
	flag.Parse()

	cfg := server.DefaultConfig()
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			logger.Crit("reading config", "err", err)
			os.Exit(1)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			logger.Crit("parsing config", "err", err)
			os.Exit(1)
		}
	}

	m := buildFixtureMap()
	sim := simulation.NewSim(m, cfg.Flags)
	seedDemo(sim, m)

	if *headless {
		sim.Step(simulation.DurationFromSeconds(*headlessSeconds))
		fmt.Printf("ran to t=%s, %d cars active, %d trips completed\n",
			sim.Now(), sim.CarCount(), sim.CompletedTripCount())
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if err := server.Run(ctx, sim, cfg); err != nil {
		logger.Crit("server exited", "err", err)
		os.Exit(1)
	}
}

// buildFixtureMap constructs a small hand-built map for citysimd to run
// against. A real deployment would ingest OSM-derived data through a
// separate conversion pipeline (out of scope; see DESIGN.md) and hand the
// resulting Map to NewSim exactly as this fixture does.
func buildFixtureMap() *simulation.Map {
	m := simulation.NewMap()

	m.AddRoad(&simulation.Road{ID: 1, OSMTags: map[string]string{"highway": "primary"}})
	m.AddRoad(&simulation.Road{ID: 2, OSMTags: map[string]string{"highway": "residential"}})

	m.AddIntersection(&simulation.Intersection{ID: 1, Type: simulation.IntersectionBorder})
	m.AddIntersection(&simulation.Intersection{ID: 2, Type: simulation.IntersectionStopSign})
	m.AddIntersection(&simulation.Intersection{ID: 3, Type: simulation.IntersectionBorder})

	m.AddLane(&simulation.Lane{ID: 10, Type: simulation.LaneDriving, Road: 1, Src: 1, Dst: 2, Length: 200})
	m.AddLane(&simulation.Lane{ID: 11, Type: simulation.LaneDriving, Road: 2, Src: 2, Dst: 3, Length: 150})
	m.AddLane(&simulation.Lane{ID: 12, Type: simulation.LaneParking, Road: 2, Src: 2, Dst: 2, Length: 50, ParkingSpots: 4})

	turn := simulation.TurnID{Parent: 2, Src: 10, Dst: 11}
	m.AddTurn(&simulation.Turn{ID: turn, Type: simulation.TurnStraight})

	m.Intersection(2).IncomingLanes = []simulation.LaneID{10}
	m.Intersection(2).OutgoingLanes = []simulation.LaneID{11}
	m.Intersection(2).Roads = []simulation.RoadID{1, 2}
	m.Intersection(2).Turns = []simulation.TurnID{turn}
	m.Intersection(3).IncomingLanes = []simulation.LaneID{11}

	ss, warnings := simulation.NewControlStopSign(m, 2)
	for _, w := range warnings {
		logger.Warn("stop sign assignment", "warning", w)
	}
	m.SetStopSign(ss)

	return m
}

// seedDemo schedules a handful of trips so a freshly started citysimd has
// visible traffic immediately.
func seedDemo(sim *simulation.Sim, m *simulation.Map) {
	sp := sim.Spawner()
	for i := 0; i < 5; i++ {
		vehicle := simulation.Vehicle{ID: simulation.CarID(i), Type: simulation.VehicleCar, Length: 4.5, MaxSpeed: 13}
		spec := simulation.TripSpec{
			Kind:    simulation.SpecCarAppearing,
			Vehicle: vehicle,
			Start:   simulation.Position{Lane: 10},
			Goal:    simulation.DrivingGoal{Kind: simulation.GoalBorder, BorderAt: 3},
		}
		start := simulation.TimeFromSeconds(float64(i) * 5)
		if _, err := sp.ScheduleTrip(start, spec, nil); err != nil {
			logger.Warn("scheduling demo trip", "err", err)
		}
	}
	if errs := sim.SpawnTrips(); len(errs) > 0 {
		for _, e := range errs {
			logger.Warn("spawning demo trip", "err", e)
		}
	}
}
