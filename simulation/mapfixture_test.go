package simulation

// buildLineMap builds a trivial border -> intersection -> border fixture: one
// incoming and one outgoing lane through a single intersection of the given
// type, for tests that don't care about stop-sign ranking.
func buildLineMap(imType IntersectionType) *Map {
	m := NewMap()
	m.AddRoad(&Road{ID: 1, OSMTags: map[string]string{"highway": "primary"}})
	m.AddIntersection(&Intersection{ID: 1, Type: IntersectionBorder})
	m.AddIntersection(&Intersection{ID: 2, Type: imType})
	m.AddIntersection(&Intersection{ID: 3, Type: IntersectionBorder})
	m.AddLane(&Lane{ID: 10, Type: LaneDriving, Road: 1, Src: 1, Dst: 2, Length: 100})
	m.AddLane(&Lane{ID: 11, Type: LaneDriving, Road: 1, Src: 2, Dst: 3, Length: 100})
	turn := TurnID{Parent: 2, Src: 10, Dst: 11}
	m.AddTurn(&Turn{ID: turn, Type: TurnStraight})
	m.Intersection(2).IncomingLanes = []LaneID{10}
	m.Intersection(2).OutgoingLanes = []LaneID{11}
	m.Intersection(2).Roads = []RoadID{1}
	m.Intersection(2).Turns = []TurnID{turn}
	m.Intersection(3).IncomingLanes = []LaneID{11}
	return m
}

// buildCrossroads builds a 4-way intersection where an east-west road crosses
// a north-south road, with each road's straight-through turn marked as
// conflicting with the other's. Each arm is its own Road (a Road is a bundle
// of same-direction lanes between two intersections, not a whole street), so
// the intersection carries four distinct Roads and smart assignment takes the
// rank-comparison branch rather than the <=2-roads degenerate/deadend one.
// mainHighway/minorHighway select the OSM tags that ranking compares.
func buildCrossroads(mainHighway, minorHighway string) (*Map, TurnID, TurnID) {
	m := NewMap()
	m.AddRoad(&Road{ID: 1, OSMTags: map[string]string{"highway": mainHighway}})
	m.AddRoad(&Road{ID: 2, OSMTags: map[string]string{"highway": mainHighway}})
	m.AddRoad(&Road{ID: 3, OSMTags: map[string]string{"highway": minorHighway}})
	m.AddRoad(&Road{ID: 4, OSMTags: map[string]string{"highway": minorHighway}})

	m.AddIntersection(&Intersection{ID: 1, Type: IntersectionBorder}) // west
	m.AddIntersection(&Intersection{ID: 2, Type: IntersectionBorder}) // east
	m.AddIntersection(&Intersection{ID: 3, Type: IntersectionBorder}) // north
	m.AddIntersection(&Intersection{ID: 4, Type: IntersectionBorder}) // south
	m.AddIntersection(&Intersection{ID: 10, Type: IntersectionStopSign})

	m.AddLane(&Lane{ID: 100, Type: LaneDriving, Road: 1, Src: 1, Dst: 10, Length: 100})
	m.AddLane(&Lane{ID: 101, Type: LaneDriving, Road: 2, Src: 10, Dst: 2, Length: 100})
	m.AddLane(&Lane{ID: 200, Type: LaneDriving, Road: 3, Src: 3, Dst: 10, Length: 100})
	m.AddLane(&Lane{ID: 201, Type: LaneDriving, Road: 4, Src: 10, Dst: 4, Length: 100})

	mainTurn := TurnID{Parent: 10, Src: 100, Dst: 101}
	minorTurn := TurnID{Parent: 10, Src: 200, Dst: 201}
	m.AddTurn(&Turn{ID: mainTurn, Type: TurnStraight})
	m.AddTurn(&Turn{ID: minorTurn, Type: TurnStraight})
	m.SetConflict(mainTurn, minorTurn)

	i := m.Intersection(10)
	i.IncomingLanes = []LaneID{100, 200}
	i.OutgoingLanes = []LaneID{101, 201}
	i.Roads = []RoadID{1, 2, 3, 4}
	i.Turns = []TurnID{mainTurn, minorTurn}
	m.Intersection(2).IncomingLanes = []LaneID{101}
	m.Intersection(4).IncomingLanes = []LaneID{201}

	return m, mainTurn, minorTurn
}

// buildThreeWayAllConflict builds an all-way-stop intersection with three
// mutually-conflicting turns (e.g. three approaches to a single-lane
// roundabout-like point), for testing the waiting-queue tie-break in
// isolation from the accepted-conflict short-circuit.
func buildThreeWayAllConflict() (m *Map, a, b, c TurnID) {
	m = NewMap()
	m.AddRoad(&Road{ID: 1, OSMTags: map[string]string{"highway": "residential"}})
	m.AddIntersection(&Intersection{ID: 1, Type: IntersectionBorder})
	m.AddIntersection(&Intersection{ID: 2, Type: IntersectionBorder})
	m.AddIntersection(&Intersection{ID: 3, Type: IntersectionBorder})
	m.AddIntersection(&Intersection{ID: 20, Type: IntersectionStopSign})

	m.AddLane(&Lane{ID: 100, Type: LaneDriving, Road: 1, Src: 1, Dst: 20, Length: 50})
	m.AddLane(&Lane{ID: 101, Type: LaneDriving, Road: 1, Src: 20, Dst: 1, Length: 50})
	m.AddLane(&Lane{ID: 200, Type: LaneDriving, Road: 1, Src: 2, Dst: 20, Length: 50})
	m.AddLane(&Lane{ID: 201, Type: LaneDriving, Road: 1, Src: 20, Dst: 2, Length: 50})
	m.AddLane(&Lane{ID: 300, Type: LaneDriving, Road: 1, Src: 3, Dst: 20, Length: 50})
	m.AddLane(&Lane{ID: 301, Type: LaneDriving, Road: 1, Src: 20, Dst: 3, Length: 50})

	a = TurnID{Parent: 20, Src: 100, Dst: 201}
	b = TurnID{Parent: 20, Src: 200, Dst: 301}
	c = TurnID{Parent: 20, Src: 300, Dst: 101}
	m.AddTurn(&Turn{ID: a, Type: TurnLeft})
	m.AddTurn(&Turn{ID: b, Type: TurnLeft})
	m.AddTurn(&Turn{ID: c, Type: TurnLeft})
	m.SetConflict(a, b)
	m.SetConflict(b, c)
	m.SetConflict(a, c)

	i := m.Intersection(20)
	i.IncomingLanes = []LaneID{100, 200, 300}
	i.OutgoingLanes = []LaneID{101, 201, 301}
	i.Roads = []RoadID{1}
	i.Turns = []TurnID{a, b, c}

	ss := allWayStop(m, 20)
	m.SetStopSign(ss)
	return m, a, b, c
}

// buildParkingFixture builds a single parking lane shared as both the start
// and end of a trivial GoalParkNear trip, with one building owning it and
// spots free curb spaces. Used to exercise Sim.finishCarLeg's parking wiring
// without needing a multi-lane drive to get there.
func buildParkingFixture(spots int) (m *Map, building BuildingID) {
	m = NewMap()
	m.AddRoad(&Road{ID: 1, OSMTags: map[string]string{"highway": "residential"}})
	m.AddIntersection(&Intersection{ID: 1, Type: IntersectionBorder})
	m.AddIntersection(&Intersection{ID: 2, Type: IntersectionBorder})
	m.AddLane(&Lane{ID: 50, Type: LaneParking, Road: 1, Src: 1, Dst: 2, Length: 50, ParkingSpots: spots})
	building = BuildingID(1)
	m.AddBuilding(&Building{ID: building, Lane: 50})
	return m, building
}
