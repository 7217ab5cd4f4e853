package simulation

import "fmt"

// CarID identifies a single vehicle for the lifetime of the simulation.
type CarID int

func (id CarID) String() string { return fmt.Sprintf("Car #%d", int(id)) }

// PedestrianID identifies a single pedestrian.
type PedestrianID int

func (id PedestrianID) String() string { return fmt.Sprintf("Pedestrian #%d", int(id)) }

// TripID identifies a trip, the ordered sequence of legs an agent executes.
type TripID int

func (id TripID) String() string { return fmt.Sprintf("Trip #%d", int(id)) }

// LaneID identifies a lane within the map.
type LaneID int

func (id LaneID) String() string { return fmt.Sprintf("Lane #%d", int(id)) }

// IntersectionID identifies an intersection (a node in the lane graph).
type IntersectionID int

func (id IntersectionID) String() string { return fmt.Sprintf("Intersection #%d", int(id)) }

// TurnID identifies a directed connection between two lanes through an
// intersection.
type TurnID struct {
	Parent IntersectionID
	Src    LaneID
	Dst    LaneID
}

func (t TurnID) String() string {
	return fmt.Sprintf("Turn(%d, %d->%d)", int(t.Parent), int(t.Src), int(t.Dst))
}

// Less gives TurnID a total order, used only for deterministic iteration in
// tests and debug dumps; arbitration order is governed by Request, not this.
func (t TurnID) Less(other TurnID) bool {
	if t.Parent != other.Parent {
		return t.Parent < other.Parent
	}
	if t.Src != other.Src {
		return t.Src < other.Src
	}
	return t.Dst < other.Dst
}

// BuildingID identifies a building, the source/sink of walking and parking trips.
type BuildingID int

func (id BuildingID) String() string { return fmt.Sprintf("Building #%d", int(id)) }

// BusRouteID identifies a bus route.
type BusRouteID int

func (id BusRouteID) String() string { return fmt.Sprintf("BusRoute #%d", int(id)) }

// BusStopID identifies a stop along a bus route.
type BusStopID int

func (id BusStopID) String() string { return fmt.Sprintf("BusStop #%d", int(id)) }

// AgentKind tags which half of the AgentID union is populated.
type AgentKind uint8

const (
	AgentCar AgentKind = iota
	AgentPedestrian
)

// AgentID is a tagged union of a CarID or a PedestrianID. Exactly one of Car /
// Ped is meaningful, selected by Kind.
type AgentID struct {
	Kind AgentKind
	Car  CarID
	Ped  PedestrianID
}

// NewCarAgent wraps a CarID as an AgentID.
func NewCarAgent(id CarID) AgentID { return AgentID{Kind: AgentCar, Car: id} }

// NewPedAgent wraps a PedestrianID as an AgentID.
func NewPedAgent(id PedestrianID) AgentID { return AgentID{Kind: AgentPedestrian, Ped: id} }

func (a AgentID) String() string {
	if a.Kind == AgentCar {
		return a.Car.String()
	}
	return a.Ped.String()
}

// Less gives AgentID a total order: cars sort before pedestrians, then by
// their respective integer ID.
func (a AgentID) Less(other AgentID) bool {
	if a.Kind != other.Kind {
		return a.Kind < other.Kind
	}
	if a.Kind == AgentCar {
		return a.Car < other.Car
	}
	return a.Ped < other.Ped
}

// Position is a point along a lane, measured as a distance from the lane's
// start.
type Position struct {
	Lane        LaneID
	DistAlong   float64 // meters
}

// Speed is expressed in meters per second.
type Speed float64
