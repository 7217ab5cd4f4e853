package simulation

// VehicleType distinguishes the handful of vehicle kinds spawner.rs supports.
type VehicleType int

const (
	VehicleCar VehicleType = iota
	VehicleBike
	VehicleBus
)

// Vehicle is the static description of a car-like agent; it never changes
// once spawned, unlike its dynamic position/speed which lives in the driving
// state machine.
type Vehicle struct {
	ID          CarID
	Type        VehicleType
	Length      float64 // meters
	MaxSpeed    Speed
	OwnerBldg   BuildingID // zero value means no owner (e.g. a bus)
	HasOwner    bool
}

// SidewalkPOI tags what's at the far end of a walking trip leg — the
// Go rendering of TripSpec's point-of-interest union (spawner.rs).
type SidewalkPOIKind int

const (
	POIBuilding SidewalkPOIKind = iota
	POIBusStop
	POIBikeRack
	POIBorder
)

type SidewalkPOI struct {
	Kind     SidewalkPOIKind
	Building BuildingID
	BusStop  BusStopID
	Border   IntersectionID
}

// SidewalkSpot is a walking-leg endpoint: a position along a sidewalk lane
// plus what's there.
type SidewalkSpot struct {
	Pos Position
	POI SidewalkPOI
}

// DrivingGoalKind distinguishes where a driving leg ends.
type DrivingGoalKind int

const (
	GoalBorder DrivingGoalKind = iota
	GoalParkNear
)

// DrivingGoal is a driving-leg endpoint: either leaving the map at a border
// intersection, or parking near a building.
type DrivingGoal struct {
	Kind       DrivingGoalKind
	BorderAt   IntersectionID
	ParkingAt  BuildingID
}

// ParkingSpot is one claimed space within a parking lane.
type ParkingSpot struct {
	Lane  LaneID
	Index int
}

// TripLegKind distinguishes the three leg shapes a trip can be built from.
type TripLegKind int

const (
	LegWalk TripLegKind = iota
	LegDrive
	LegRideBus
)

// TripLeg is one segment of a Trip's plan, in the order they'll execute.
type TripLeg struct {
	Kind TripLegKind

	// LegWalk
	WalkTo SidewalkSpot

	// LegDrive
	DriveVehicle Vehicle
	DriveGoal    DrivingGoal

	// LegRideBus
	BusRoute BusRouteID
	BusStop  BusStopID
}

// CreateCar is the Spawn payload for a car-based trip leg: the vehicle to
// instantiate, the lanes it will drive in order (resolved by TripSpawner's
// pathfinding batch), and the remaining legs of its trip once this driving
// leg completes (mirrors spawner.rs's CreateCar).
type CreateCar struct {
	Vehicle   Vehicle
	Start     Position
	Path      []LaneID
	Goal      DrivingGoal
	Trip      TripID
	LegsAfter []TripLeg
}

// CreatePedestrian is the Spawn payload for a walking trip leg.
type CreatePedestrian struct {
	ID        PedestrianID
	Start     SidewalkSpot
	Path      []LaneID
	Goal      SidewalkSpot
	Trip      TripID
	LegsAfter []TripLeg
}
