package simulation

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestHighwayRank(t *testing.T) {
	Convey("Given the OSM highway-rank table", t, func() {
		Convey("Known tags rank in descending road-class order", func() {
			motorway, err := highwayRank("motorway")
			So(err, ShouldBeNil)
			residential, err := highwayRank("residential")
			So(err, ShouldBeNil)
			unclassified, err := highwayRank("unclassified")
			So(err, ShouldBeNil)
			So(motorway, ShouldBeGreaterThan, residential)
			So(residential, ShouldBeGreaterThan, unclassified)
		})

		Convey("An empty tag ranks as unclassified rather than erroring", func() {
			rank, err := highwayRank("")
			So(err, ShouldBeNil)
			So(rank, ShouldEqual, 0)
		})

		Convey("An unrecognized tag is a fatal error, not a silent zero", func() {
			_, err := highwayRank("skyway")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSmartAssignmentCrossroads(t *testing.T) {
	Convey("Given a crossroads where the main road outranks the minor road", t, func() {
		m, mainTurn, minorTurn := buildCrossroads("primary", "residential")

		Convey("The higher-ranked straight turn is assigned Priority and the other Stop", func() {
			ss, warnings := NewControlStopSign(m, 10)
			So(warnings, ShouldBeEmpty)
			So(ss.GetPriority(mainTurn), ShouldEqual, Priority)
			So(ss.GetPriority(minorTurn), ShouldEqual, Stop)
		})
	})

	Convey("Given a crossroads where both roads share the same rank", t, func() {
		m, mainTurn, minorTurn := buildCrossroads("residential", "residential")

		Convey("Smart assignment falls back to all-way-stop", func() {
			ss, _ := NewControlStopSign(m, 10)
			So(ss.GetPriority(mainTurn), ShouldEqual, Stop)
			So(ss.GetPriority(minorTurn), ShouldEqual, Stop)
		})
	})

	Convey("Given a crossroads tagged with an OSM highway class the rank table doesn't know", t, func() {
		m, _, _ := buildCrossroads("skyway", "residential")

		Convey("NewControlStopSign panics rather than silently misranking the road", func() {
			So(func() { NewControlStopSign(m, 10) }, ShouldPanic)
		})
	})
}

func TestSmartAssignmentDegenerateAndDeadend(t *testing.T) {
	Convey("Given a through-road intersection with only one road (<=2-road degenerate case)", t, func() {
		m := buildLineMap(IntersectionStopSign)
		turn := TurnID{Parent: 2, Src: 10, Dst: 11}

		Convey("Its single non-crosswalk turn is assigned Priority outright", func() {
			ss, _ := NewControlStopSign(m, 2)
			So(ss.GetPriority(turn), ShouldEqual, Priority)
		})
	})

	Convey("Given a degenerate intersection whose only turn is a crosswalk", t, func() {
		m := buildLineMap(IntersectionStopSign)
		turn := TurnID{Parent: 2, Src: 10, Dst: 11}
		m.Turn(turn).Type = TurnCrosswalk

		Convey("The crosswalk turn is assigned Stop, not Priority", func() {
			ss, _ := NewControlStopSign(m, 2)
			So(ss.GetPriority(turn), ShouldEqual, Stop)
		})
	})
}

func TestControlStopSignCouldBePriorityTurn(t *testing.T) {
	Convey("Given a stop sign with one turn already marked Priority", t, func() {
		m, mainTurn, minorTurn := buildCrossroads("primary", "residential")
		ss := &ControlStopSign{ID: 10, Turns: map[TurnID]TurnPriority{
			mainTurn:  Priority,
			minorTurn: Stop,
		}}

		Convey("A turn conflicting with it could not also become Priority", func() {
			So(ss.CouldBePriorityTurn(minorTurn, m), ShouldBeFalse)
		})

		Convey("The already-Priority turn itself is unaffected by its own entry", func() {
			So(ss.CouldBePriorityTurn(mainTurn, m), ShouldBeTrue)
		})
	})
}

func TestControlStopSignValidate(t *testing.T) {
	Convey("Given a stop sign with two conflicting turns both marked Priority", t, func() {
		m, mainTurn, minorTurn := buildCrossroads("primary", "residential")
		ss := &ControlStopSign{ID: 10, Turns: map[TurnID]TurnPriority{
			mainTurn:  Priority,
			minorTurn: Priority,
		}}

		Convey("Validate reports the conflict as a fatal error", func() {
			_, err := ss.Validate(m)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given a stop sign missing an entry for one of the intersection's turns", t, func() {
		m, mainTurn, _ := buildCrossroads("primary", "residential")
		ss := &ControlStopSign{ID: 10, Turns: map[TurnID]TurnPriority{
			mainTurn: Priority,
		}}

		Convey("Validate reports a warning but not an error", func() {
			warnings, err := ss.Validate(m)
			So(err, ShouldBeNil)
			So(warnings, ShouldNotBeEmpty)
		})
	})
}
