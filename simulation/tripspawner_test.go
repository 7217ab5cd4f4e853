package simulation

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTripSpawnerScheduleTripRejectsDoubleClaimedParkedCar(t *testing.T) {
	Convey("Given a building with one parked car", t, func() {
		sp := NewTripSpawner()
		owner := BuildingID(1)
		parked := map[BuildingID]CarID{owner: 42}
		spec := TripSpec{
			Kind:           SpecUsingParkedCar,
			ParkedCarOwner: owner,
			Goal:           DrivingGoal{Kind: GoalBorder, BorderAt: 3},
		}

		Convey("The first trip to claim it schedules cleanly", func() {
			_, err := sp.ScheduleTrip(TimeZero, spec, parked)
			So(err, ShouldBeNil)
		})

		Convey("A second trip claiming the same parked car is rejected", func() {
			_, err := sp.ScheduleTrip(TimeZero, spec, parked)
			So(err, ShouldBeNil)
			_, err = sp.ScheduleTrip(TimeZero, spec, parked)
			So(err, ShouldNotBeNil)
		})

		Convey("A trip referencing a building with no parked car is rejected", func() {
			other := TripSpec{
				Kind:           SpecUsingParkedCar,
				ParkedCarOwner: BuildingID(99),
				Goal:           spec.Goal,
			}
			_, err := sp.ScheduleTrip(TimeZero, other, parked)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestTripSpawnerSpawnAllDropsUnreachableTrips(t *testing.T) {
	Convey("Given a map with two disconnected lanes", t, func() {
		m := buildLineMap(IntersectionBorder)
		m.AddIntersection(&Intersection{ID: 4, Type: IntersectionBorder})
		m.AddIntersection(&Intersection{ID: 5, Type: IntersectionBorder})
		m.AddLane(&Lane{ID: 20, Type: LaneDriving, Road: 1, Src: 4, Dst: 5, Length: 50})
		m.Intersection(5).IncomingLanes = []LaneID{20}

		sp := NewTripSpawner()
		scheduler := NewScheduler()
		idAlloc := NewIDAllocator()

		Convey("A trip whose start and goal aren't connected is dropped with an error, not scheduled", func() {
			_, err := sp.ScheduleTrip(TimeZero, TripSpec{
				Kind:    SpecCarAppearing,
				Vehicle: Vehicle{Type: VehicleCar},
				Start:   Position{Lane: 10},
				Goal:    DrivingGoal{Kind: GoalBorder, BorderAt: 5},
			}, nil)
			So(err, ShouldBeNil)

			errs := sp.SpawnAll(m, scheduler, TimeZero, idAlloc)
			So(errs, ShouldHaveLength, 1)
			So(scheduler.IsEmpty(), ShouldBeTrue)
		})
	})
}

func TestTripSpawnerSpawnAllPreservesOrder(t *testing.T) {
	Convey("Given several reachable trips scheduled in a batch", t, func() {
		m := buildLineMap(IntersectionFreeform)
		sp := NewTripSpawner()
		scheduler := NewScheduler()
		idAlloc := NewIDAllocator()

		const n = 12
		for i := 0; i < n; i++ {
			_, err := sp.ScheduleTrip(TimeZero, TripSpec{
				Kind:    SpecCarAppearing,
				Vehicle: Vehicle{Type: VehicleCar},
				Start:   Position{Lane: 10},
				Goal:    DrivingGoal{Kind: GoalBorder, BorderAt: 3},
			}, nil)
			So(err, ShouldBeNil)
		}

		Convey("SpawnAll pushes one SpawnCar command per trip regardless of goroutine completion order", func() {
			errs := sp.SpawnAll(m, scheduler, TimeZero, idAlloc)
			So(errs, ShouldBeEmpty)
			So(scheduler.Len(), ShouldEqual, n)

			seen := make(map[CarID]bool)
			nextTrip := TripID(0)
			for !scheduler.IsEmpty() {
				_, cmd := scheduler.Pop()
				So(cmd.Kind, ShouldEqual, CommandSpawnCar)
				So(cmd.NewCar.Trip, ShouldEqual, nextTrip)
				nextTrip++
				So(seen[cmd.NewCar.Vehicle.ID], ShouldBeFalse)
				seen[cmd.NewCar.Vehicle.ID] = true
			}
			So(seen, ShouldHaveLength, n)
		})
	})
}

func TestTripSpawnerReusesParkedVehicleID(t *testing.T) {
	Convey("Given a trip starting from a vehicle that was already parked", t, func() {
		m := buildLineMap(IntersectionFreeform)
		m.AddBuilding(&Building{ID: 1, Lane: 10})
		sp := NewTripSpawner()
		scheduler := NewScheduler()
		idAlloc := NewIDAllocator()
		existing := CarID(77)

		parked := map[BuildingID]CarID{1: existing}
		_, err := sp.ScheduleTrip(TimeZero, TripSpec{
			Kind:           SpecUsingParkedCar,
			ParkedCarOwner: 1,
			Vehicle:        Vehicle{ID: existing, Type: VehicleCar},
			Goal:           DrivingGoal{Kind: GoalBorder, BorderAt: 3},
		}, parked)
		So(err, ShouldBeNil)

		Convey("SpawnAll's command reuses the existing CarID instead of allocating a fresh one", func() {
			errs := sp.SpawnAll(m, scheduler, TimeZero, idAlloc)
			So(errs, ShouldBeEmpty)
			_, cmd := scheduler.Pop()
			So(cmd.NewCar.Vehicle.ID, ShouldEqual, existing)
		})
	})
}
