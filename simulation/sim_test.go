package simulation

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSimSingleCarNoConflictCompletesTrip(t *testing.T) {
	Convey("Given a car appearing on one end of a freeform line map bound for the far border", t, func() {
		m := buildLineMap(IntersectionFreeform)
		s := NewSim(m, SimFlags{RNGSeed: 1})
		_, err := s.Spawner().ScheduleTrip(TimeZero, TripSpec{
			Kind:    SpecCarAppearing,
			Vehicle: Vehicle{Type: VehicleCar},
			Start:   Position{Lane: 10},
			Goal:    DrivingGoal{Kind: GoalBorder, BorderAt: 3},
		}, nil)
		So(err, ShouldBeNil)
		So(s.SpawnTrips(), ShouldBeEmpty)

		Convey("Stepping far enough completes the trip and clears the car from the network", func() {
			s.Step(DurationFromSeconds(100))
			So(s.CarCount(), ShouldEqual, 0)
			So(s.CompletedTripCount(), ShouldEqual, 1)
		})
	})
}

func TestSimFinishCarLegParksOnArrival(t *testing.T) {
	Convey("Given a trip whose goal is parking near a building with a free curb spot", t, func() {
		m, building := buildParkingFixture(1)
		s := NewSim(m, SimFlags{RNGSeed: 1})
		tripID, err := s.Spawner().ScheduleTrip(TimeZero, TripSpec{
			Kind:    SpecCarAppearing,
			Vehicle: Vehicle{Type: VehicleCar},
			Start:   Position{Lane: 50},
			Goal:    DrivingGoal{Kind: GoalParkNear, ParkingAt: building},
		}, nil)
		So(err, ShouldBeNil)
		So(s.SpawnTrips(), ShouldBeEmpty)

		Convey("The car parks, its trip finishes, and it leaves the active driving population", func() {
			s.Step(DurationFromSeconds(100))
			So(s.CarCount(), ShouldEqual, 0)
			trip, ok := s.trips.Get(tripID)
			So(ok, ShouldBeTrue)
			So(trip.Phase, ShouldEqual, TripDone)
			So(s.parking.OccupiedSpots(50), ShouldEqual, 1)
		})
	})
}

func TestSimFinishCarLegAbortsWhenNoFreeCurbSpace(t *testing.T) {
	Convey("Given a trip whose goal building's parking lane has no free spots", t, func() {
		m, building := buildParkingFixture(0)
		s := NewSim(m, SimFlags{RNGSeed: 1})
		tripID, err := s.Spawner().ScheduleTrip(TimeZero, TripSpec{
			Kind:    SpecCarAppearing,
			Vehicle: Vehicle{Type: VehicleCar},
			Start:   Position{Lane: 50},
			Goal:    DrivingGoal{Kind: GoalParkNear, ParkingAt: building},
		}, nil)
		So(err, ShouldBeNil)
		So(s.SpawnTrips(), ShouldBeEmpty)

		Convey("The trip aborts rather than completing or double-parking", func() {
			s.Step(DurationFromSeconds(100))
			trip, ok := s.trips.Get(tripID)
			So(ok, ShouldBeTrue)
			So(trip.Phase, ShouldEqual, TripAborted)
			So(s.CompletedTripCount(), ShouldEqual, 0)
		})
	})
}

// runDeterministicScenario builds a fresh Sim over an independent copy of the
// same map shape, schedules the identical trip batch, and steps it forward.
// Two independently constructed runs given the same seed and inputs must
// finish in the identical state.
func runDeterministicScenario() *Sim {
	m, mainTurn, minorTurn := buildCrossroads("primary", "residential")
	ss, _ := NewControlStopSign(m, 10)
	m.SetStopSign(ss)
	_ = mainTurn
	_ = minorTurn

	s := NewSim(m, SimFlags{RNGSeed: 42})
	for i := 0; i < 5; i++ {
		_, _ = s.Spawner().ScheduleTrip(TimeFromSeconds(float64(i)), TripSpec{
			Kind:    SpecCarAppearing,
			Vehicle: Vehicle{Type: VehicleCar},
			Start:   Position{Lane: 100},
			Goal:    DrivingGoal{Kind: GoalBorder, BorderAt: 2},
		}, nil)
		_, _ = s.Spawner().ScheduleTrip(TimeFromSeconds(float64(i)), TripSpec{
			Kind:    SpecCarAppearing,
			Vehicle: Vehicle{Type: VehicleCar},
			Start:   Position{Lane: 200},
			Goal:    DrivingGoal{Kind: GoalBorder, BorderAt: 4},
		}, nil)
	}
	s.SpawnTrips()
	s.Step(DurationFromSeconds(120))
	return s
}

func TestSimDeterministicReplay(t *testing.T) {
	Convey("Given two independently constructed Sims over the same map, seed, and trip batch", t, func() {
		a := runDeterministicScenario()
		b := runDeterministicScenario()

		Convey("They reach bit-identical simulated time and completed-trip counts", func() {
			So(a.Now(), ShouldResemble, b.Now())
			So(a.CompletedTripCount(), ShouldEqual, b.CompletedTripCount())
			So(a.CarCount(), ShouldEqual, b.CarCount())
		})
	})
}
