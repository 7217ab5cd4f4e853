package simulation

import "fmt"

// LaneType distinguishes what kind of agent may travel on a lane.
type LaneType int

const (
	LaneDriving LaneType = iota
	LaneParking
	LaneSidewalk
	LaneBiking
	LaneBus
)

// TurnType classifies the geometric shape of a turn, used by stop-sign smart
// assignment and by crosswalk handling.
type TurnType int

const (
	TurnStraight TurnType = iota
	TurnRight
	TurnLeft
	TurnCrosswalk
)

// IntersectionType selects which arbitration policy governs an intersection.
type IntersectionType int

const (
	IntersectionFreeform IntersectionType = iota
	IntersectionStopSign
	IntersectionTrafficSignal
	IntersectionBorder
)

// RoadID identifies a road (a bundle of same-direction lanes between two
// intersections), the unit stop-sign ranking reasons about.
type RoadID int

func (id RoadID) String() string { return fmt.Sprintf("Road #%d", int(id)) }

// Road carries the OSM tag dictionary stop-sign ranking consults.
type Road struct {
	ID      RoadID
	OSMTags map[string]string
}

// Lane is one directed travel path between two intersections.
type Lane struct {
	ID       LaneID
	Type     LaneType
	Road     RoadID
	Src, Dst IntersectionID
	Length   float64 // meters
	// ParkingSpots is the number of curbside spots if Type == LaneParking.
	ParkingSpots int
}

// Turn is a directed connection between two lanes through an intersection.
// Conflicts is populated at map-construction time (geometry/polyline
// intersection is out of scope for this engine; see DESIGN.md) and backs the
// Map.ConflictsWith predicate the spec requires.
type Turn struct {
	ID        TurnID
	Type      TurnType
	Conflicts map[TurnID]bool
}

// Intersection is a node in the lane graph; Roads lists the distinct roads
// meeting here (used by stop-sign smart assignment's road-count heuristics).
type Intersection struct {
	ID             IntersectionID
	Type           IntersectionType
	Roads          []RoadID
	IncomingLanes  []LaneID
	OutgoingLanes  []LaneID
	Turns          []TurnID
}

// Building is the source/sink of walking and parking trip legs.
type Building struct {
	ID   BuildingID
	Lane LaneID // nearest sidewalk lane
}

// BusStop is a point along a sidewalk lane where riders board/alight.
type BusStop struct {
	ID   BusStopID
	Lane LaneID
}

// BusRoute is an ordered sequence of stops a bus service visits.
type BusRoute struct {
	ID    BusRouteID
	Stops []BusStopID
}

// PathRequest describes a single pathfinding query.
type PathRequest struct {
	Start          Position
	End            Position
	CanUseBusLanes  bool
	CanUseBikeLanes bool
}

// Path is a resolved sequence of lanes from a PathRequest's start to its end,
// Lanes[0] being the lane the start Position sits on.
type Path struct {
	Lanes []LaneID
}

// Map is the lane-and-intersection graph the simulation runs on; the Sim
// only reads it. Map itself does not block edits: its Add* and Set* methods
// still work while a Sim built on it is running.
type Map struct {
	lanes         map[LaneID]*Lane
	intersections map[IntersectionID]*Intersection
	turns         map[TurnID]*Turn
	roads         map[RoadID]*Road
	buildings     map[BuildingID]*Building
	busStops      map[BusStopID]*BusStop
	busRoutes     map[BusRouteID]*BusRoute
	stopSigns     map[IntersectionID]*ControlStopSign
	signals       map[IntersectionID]*ControlTrafficSignal
}

// NewMap builds an empty map; callers populate it via the Add* methods before
// handing it to a Sim. This mirrors map_model::Map's role as a passive data
// container built once by an out-of-scope converter.
func NewMap() *Map {
	return &Map{
		lanes:         make(map[LaneID]*Lane),
		intersections: make(map[IntersectionID]*Intersection),
		turns:         make(map[TurnID]*Turn),
		roads:         make(map[RoadID]*Road),
		buildings:     make(map[BuildingID]*Building),
		busStops:      make(map[BusStopID]*BusStop),
		busRoutes:     make(map[BusRouteID]*BusRoute),
		stopSigns:     make(map[IntersectionID]*ControlStopSign),
		signals:       make(map[IntersectionID]*ControlTrafficSignal),
	}
}

func (m *Map) AddRoad(r *Road)             { m.roads[r.ID] = r }
func (m *Map) AddLane(l *Lane)             { m.lanes[l.ID] = l }
func (m *Map) AddBuilding(b *Building)     { m.buildings[b.ID] = b }
func (m *Map) AddBusStop(s *BusStop)       { m.busStops[s.ID] = s }
func (m *Map) AddBusRoute(r *BusRoute)     { m.busRoutes[r.ID] = r }

// AddIntersection registers an intersection; its turns are registered
// separately with AddTurn.
func (m *Map) AddIntersection(i *Intersection) { m.intersections[i.ID] = i }

// AddTurn registers a turn; call after its parent intersection exists.
func (m *Map) AddTurn(t *Turn) {
	if t.Conflicts == nil {
		t.Conflicts = make(map[TurnID]bool)
	}
	m.turns[t.ID] = t
}

// SetConflict marks a and b (distinct turns at the same intersection) as
// mutually conflicting. Symmetric: registers both directions.
func (m *Map) SetConflict(a, b TurnID) {
	m.turns[a].Conflicts[b] = true
	m.turns[b].Conflicts[a] = true
}

// SetStopSign installs a stop-sign control as given, without validating it
// (NewControlStopSign validates the controls it builds).
func (m *Map) SetStopSign(ss *ControlStopSign) { m.stopSigns[ss.ID] = ss }

// SetTrafficSignal installs a signal control.
func (m *Map) SetTrafficSignal(ts *ControlTrafficSignal) { m.signals[ts.ID] = ts }

func (m *Map) Lane(id LaneID) *Lane                     { return m.lanes[id] }
func (m *Map) Intersection(id IntersectionID) *Intersection { return m.intersections[id] }
func (m *Map) Turn(id TurnID) *Turn                     { return m.turns[id] }
func (m *Map) Road(id RoadID) *Road                     { return m.roads[id] }
func (m *Map) Building(id BuildingID) *Building          { return m.buildings[id] }
func (m *Map) BusStop(id BusStopID) *BusStop             { return m.busStops[id] }
func (m *Map) BusRoute(id BusRouteID) *BusRoute          { return m.busRoutes[id] }

// AllIntersections returns every intersection, in no particular order;
// callers that need determinism should sort by ID.
func (m *Map) AllIntersections() []*Intersection {
	out := make([]*Intersection, 0, len(m.intersections))
	for _, i := range m.intersections {
		out = append(out, i)
	}
	return out
}

// MaybeGetStopSign returns the stop sign controlling i, if any.
func (m *Map) MaybeGetStopSign(i IntersectionID) (*ControlStopSign, bool) {
	ss, ok := m.stopSigns[i]
	return ss, ok
}

// MaybeGetTrafficSignal returns the signal controlling i, if any.
func (m *Map) MaybeGetTrafficSignal(i IntersectionID) (*ControlTrafficSignal, bool) {
	ts, ok := m.signals[i]
	return ts, ok
}

// ConflictsWith is the binary conflict predicate spec.md §2 requires Turn to
// expose via the Map.
func (m *Map) ConflictsWith(a, b TurnID) bool {
	if a == b {
		return false
	}
	ta := m.turns[a]
	if ta == nil {
		return false
	}
	return ta.Conflicts[b]
}

// Pathfind resolves a PathRequest to a lane sequence by breadth-first search
// over the lane graph, honoring the request's lane-type restrictions. Real
// map-ingestion-grade routing (elevation, turn restrictions, contraction
// hierarchies) is out of scope; this oracle only needs to be correct, not
// fast, since it runs off the hot simulation path inside TripSpawner's
// parallel path-batch (see tripspawner.go).
func (m *Map) Pathfind(req PathRequest) (Path, bool) {
	start := req.Start.Lane
	goal := req.End.Lane
	if start == goal {
		return Path{Lanes: []LaneID{start}}, true
	}

	type queueItem struct {
		lane LaneID
		path []LaneID
	}
	visited := map[LaneID]bool{start: true}
	queue := []queueItem{{lane: start, path: []LaneID{start}}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range m.outgoingLanes(cur.lane, req) {
			if visited[next] {
				continue
			}
			visited[next] = true
			path := append(append([]LaneID{}, cur.path...), next)
			if next == goal {
				return Path{Lanes: path}, true
			}
			queue = append(queue, queueItem{lane: next, path: path})
		}
	}
	return Path{}, false
}

// outgoingLanes returns the lanes reachable from lane via a single turn,
// filtered to types the request may use.
func (m *Map) outgoingLanes(lane LaneID, req PathRequest) []LaneID {
	l := m.lanes[lane]
	if l == nil {
		return nil
	}
	i := m.intersections[l.Dst]
	if i == nil {
		return nil
	}
	var out []LaneID
	for _, tid := range i.Turns {
		if tid.Src != lane {
			continue
		}
		dst := m.lanes[tid.Dst]
		if dst == nil {
			continue
		}
		if !m.laneUsable(req.Start.Lane, dst.Type, req) {
			continue
		}
		out = append(out, tid.Dst)
	}
	return out
}

// laneUsable decides whether a lane of type t may appear in a path that
// started on startLane: agents stay within their own travel-surface type
// (sidewalks for walking, driving lanes for cars) except where the request
// explicitly opts into bus or bike lanes.
func (m *Map) laneUsable(startLane LaneID, t LaneType, req PathRequest) bool {
	startType := LaneDriving
	if l := m.lanes[startLane]; l != nil {
		startType = l.Type
	}
	if t == startType {
		return true
	}
	switch t {
	case LaneBus:
		return req.CanUseBusLanes
	case LaneBiking:
		return req.CanUseBikeLanes
	default:
		return false
	}
}
