package simulation

import "fmt"

// CommandKind distinguishes the five event kinds the Scheduler dispatches.
// Ordered so CommandKind itself participates in the total tie-break order.
type CommandKind uint8

const (
	CommandSpawnCar CommandKind = iota
	CommandSpawnPed
	CommandUpdateCar
	CommandUpdatePed
	CommandUpdateIntersection
)

// Command is a scheduler event. Exactly one payload field is meaningful,
// selected by Kind. CreateCar/CreatePedestrian are heap-allocated payloads
// only present on Spawn* commands; Update* commands carry only an ID.
type Command struct {
	Kind CommandKind

	CarID    CarID
	PedID    PedestrianID
	IX       IntersectionID
	NewCar   *CreateCar
	NewPed   *CreatePedestrian
}

// UpdateCarCommand builds the retry/advance command for a car.
func UpdateCarCommand(id CarID) Command { return Command{Kind: CommandUpdateCar, CarID: id} }

// UpdatePedCommand builds the retry/advance command for a pedestrian.
func UpdatePedCommand(id PedestrianID) Command { return Command{Kind: CommandUpdatePed, PedID: id} }

// UpdateIntersectionCommand builds the signal-cycle-boundary command.
func UpdateIntersectionCommand(id IntersectionID) Command {
	return Command{Kind: CommandUpdateIntersection, IX: id}
}

// SpawnCarCommand builds the initial spawn event for a car-based trip leg.
func SpawnCarCommand(c *CreateCar) Command { return Command{Kind: CommandSpawnCar, NewCar: c} }

// SpawnPedCommand builds the initial spawn event for a walking trip leg.
func SpawnPedCommand(c *CreatePedestrian) Command { return Command{Kind: CommandSpawnPed, NewPed: c} }

// identityKey is the part of a Command that determines whether two commands
// refer to "the same event" for cancel/update purposes (Scheduler.Update) and
// for the tie-break total order.
type identityKey struct {
	kind CommandKind
	id   int
}

func (c Command) key() identityKey {
	switch c.Kind {
	case CommandSpawnCar:
		return identityKey{kind: c.Kind, id: int(c.NewCar.Vehicle.ID)}
	case CommandSpawnPed:
		return identityKey{kind: c.Kind, id: int(c.NewPed.ID)}
	case CommandUpdateCar:
		return identityKey{kind: c.Kind, id: int(c.CarID)}
	case CommandUpdatePed:
		return identityKey{kind: c.Kind, id: int(c.PedID)}
	case CommandUpdateIntersection:
		return identityKey{kind: c.Kind, id: int(c.IX)}
	default:
		panic(fmt.Sprintf("command with unknown kind %d", c.Kind))
	}
}

// Less implements the Command total order used to break ties between events
// scheduled at the same Time: first by kind, then by the command's identity.
// This, combined with the waiting-queue insertion order in
// IntersectionSimState, is what makes replays from the same seed and inputs
// produce bit-identical results (see Scheduler).
func (c Command) Less(other Command) bool {
	ck, ok := c.key(), other.key()
	if ck.kind != ok.kind {
		return ck.kind < ok.kind
	}
	return ck.id < ok.id
}

// Equal reports whether c and other refer to the same logical event for
// cancel/update purposes (ignores payload contents beyond identity).
func (c Command) Equal(other Command) bool {
	return c.key() == other.key()
}

func (c Command) String() string {
	switch c.Kind {
	case CommandSpawnCar:
		return fmt.Sprintf("SpawnCar(%s)", c.NewCar.Vehicle.ID)
	case CommandSpawnPed:
		return fmt.Sprintf("SpawnPed(%s)", c.NewPed.ID)
	case CommandUpdateCar:
		return fmt.Sprintf("UpdateCar(%s)", c.CarID)
	case CommandUpdatePed:
		return fmt.Sprintf("UpdatePed(%s)", c.PedID)
	case CommandUpdateIntersection:
		return fmt.Sprintf("UpdateIntersection(%s)", c.IX)
	default:
		return "Command(?)"
	}
}
