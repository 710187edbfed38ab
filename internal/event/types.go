package event

import "github.com/Versifine/tilewalk/internal/world"

const (
	EventPathSet         = "path.set"
	EventPathRejected    = "path.rejected"
	EventMovementStep    = "movement.step"
	EventMovementArrived = "movement.arrived"
	EventMovementStopped = "movement.stopped"
	EventMovementMode    = "movement.mode"
)

// All lists every event name the session publishes.
var All = []string{
	EventPathSet,
	EventPathRejected,
	EventMovementStep,
	EventMovementArrived,
	EventMovementStopped,
	EventMovementMode,
}

type PathSetEvent struct {
	Source    SourceType
	From      world.Cell
	Requested world.Cell
	Goal      world.Cell
	Cells     int
	Waypoints int
	Run       bool
}

type PathRejectedEvent struct {
	Source    SourceType
	From      world.Cell
	Requested world.Cell
	Reason    string
}

type StepEvent struct {
	Tick  uint64
	From  world.Cell
	To    world.Cell
	Cells int
	Run   bool
}

type ArrivedEvent struct {
	Tick uint64
	At   world.Cell
}

type StoppedEvent struct {
	Source SourceType
	At     world.Cell
}

type ModeEvent struct {
	Running bool
}
