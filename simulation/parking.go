package simulation

import "fmt"

// ParkingSimState tracks which curbside parking spots are occupied and by
// which vehicle. Double claims of a parked car are tracked by TripSpawner
// itself, not here.
type ParkingSimState struct {
	spotOf    map[ParkingSpot]CarID
	laneOf    map[CarID]LaneID
	ownerOf   map[BuildingID]CarID
	carOfBldg map[CarID]BuildingID
}

// NewParkingSimState builds an empty parking state.
func NewParkingSimState() *ParkingSimState {
	return &ParkingSimState{
		spotOf:    make(map[ParkingSpot]CarID),
		laneOf:    make(map[CarID]LaneID),
		ownerOf:   make(map[BuildingID]CarID),
		carOfBldg: make(map[CarID]BuildingID),
	}
}

// SeedParkedCar places car into the first free spot on lane on behalf of
// owner, used when constructing a Sim's initial parked-car population. Fatal
// if the lane has no free spot, since an over-subscribed initial population
// means the scenario generator (out of scope) is broken.
func (p *ParkingSimState) SeedParkedCar(m *Map, lane LaneID, car Vehicle, owner BuildingID) {
	l := m.Lane(lane)
	if l == nil || l.Type != LaneParking {
		panic(fmt.Sprintf("SeedParkedCar: %v is not a parking lane", lane))
	}
	for i := 0; i < l.ParkingSpots; i++ {
		spot := ParkingSpot{Lane: lane, Index: i}
		if _, taken := p.spotOf[spot]; taken {
			continue
		}
		p.spotOf[spot] = car.ID
		p.laneOf[car.ID] = lane
		p.ownerOf[owner] = car.ID
		p.carOfBldg[car.ID] = owner
		return
	}
	panic(fmt.Sprintf("SeedParkedCar: lane %v has no free spot", lane))
}

// ParkedCarOwners returns a copy of the building->car map, the shape
// TripSpawner.ScheduleTrip takes to resolve a UsingParkedCar spec to a
// concrete vehicle.
func (p *ParkingSimState) ParkedCarOwners() map[BuildingID]CarID {
	out := make(map[BuildingID]CarID, len(p.ownerOf))
	for b, c := range p.ownerOf {
		out[b] = c
	}
	return out
}

// ClaimCar removes car from its parking spot when it departs on a new trip.
func (p *ParkingSimState) ClaimCar(car CarID) (LaneID, bool) {
	lane, ok := p.laneOf[car]
	if !ok {
		return 0, false
	}
	delete(p.laneOf, car)
	if b, ok := p.carOfBldg[car]; ok {
		delete(p.ownerOf, b)
		delete(p.carOfBldg, car)
	}
	for spot, c := range p.spotOf {
		if c == car {
			delete(p.spotOf, spot)
			break
		}
	}
	return lane, true
}

// ParkCar claims a free spot on lane for car on behalf of owner, once a
// driving trip leg with GoalParkNear completes. Returns false if lane is
// full (spec.md §4 edge case: a destination street with no free curb space).
func (p *ParkingSimState) ParkCar(m *Map, lane LaneID, car Vehicle, owner BuildingID) bool {
	l := m.Lane(lane)
	if l == nil || l.Type != LaneParking {
		return false
	}
	for i := 0; i < l.ParkingSpots; i++ {
		spot := ParkingSpot{Lane: lane, Index: i}
		if _, taken := p.spotOf[spot]; taken {
			continue
		}
		p.spotOf[spot] = car.ID
		p.laneOf[car.ID] = lane
		p.ownerOf[owner] = car.ID
		p.carOfBldg[car.ID] = owner
		return true
	}
	return false
}

// OccupiedSpots reports how many spots on lane are currently taken.
func (p *ParkingSimState) OccupiedSpots(lane LaneID) int {
	n := 0
	for spot := range p.spotOf {
		if spot.Lane == lane {
			n++
		}
	}
	return n
}
