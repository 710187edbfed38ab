package movement

import (
	"errors"
	"fmt"

	"github.com/Versifine/tilewalk/internal/world"
)

var ErrInvalidState = errors.New("invalid movement state")

// State is either Idle or *Following.
type State interface {
	Phase() string
}

// Idle means nothing is queued and the animation rests on the logical tile.
type Idle struct{}

func (Idle) Phase() string { return "idle" }

// Following carries everything a moving controller owns.
//
// Queue holds cells not yet reached by the tick loop. Plan holds compressed
// corners not yet reached. Buffer holds reached corners waiting to be
// animated, plus at most one trailing end point on a straight stretch, and
// Segment is the one being animated now.
type Following struct {
	Queue   []world.Cell
	Plan    []Waypoint
	Buffer  []Waypoint
	Segment *Segment
	Run     bool

	// tail is set while the last Buffer entry is a straight-run end point
	// rather than a corner.
	tail bool
}

func (*Following) Phase() string { return "following" }

func (f *Following) empty() bool {
	return len(f.Queue) == 0 && len(f.Plan) == 0 && len(f.Buffer) == 0 && f.Segment == nil
}

// release hands a reached waypoint to the animation. A trailing end point
// lies on the line toward whatever follows it, so it is overwritten instead
// of queued behind.
func (f *Following) release(wp Waypoint, corner bool) {
	if f.tail && len(f.Buffer) > 0 {
		f.Buffer[len(f.Buffer)-1] = wp
	} else {
		f.Buffer = append(f.Buffer, wp)
	}
	f.tail = !corner
}

// backlog counts buffered waypoints plus the segment in flight.
func (f *Following) backlog() int {
	n := len(f.Buffer)
	if f.Segment != nil {
		n++
	}
	return n
}

func validateFollowing(f *Following, tile, target world.Cell) error {
	if f == nil {
		return fmt.Errorf("%w: nil following state", ErrInvalidState)
	}
	if f.empty() {
		return fmt.Errorf("%w: following with nothing in flight", ErrInvalidState)
	}
	if len(f.Plan) > 0 && len(f.Queue) == 0 {
		return fmt.Errorf("%w: %d planned waypoints with an empty queue", ErrInvalidState, len(f.Plan))
	}
	if len(f.Queue) > 0 {
		last := f.Queue[len(f.Queue)-1]
		if target != last {
			return fmt.Errorf("%w: target %s does not match queue end %s", ErrInvalidState, target, last)
		}
		if len(f.Plan) > 0 && f.Plan[len(f.Plan)-1].Cell != last {
			return fmt.Errorf("%w: plan ends at %s, queue ends at %s", ErrInvalidState, f.Plan[len(f.Plan)-1].Cell, last)
		}
	}

	var tail *Waypoint
	switch {
	case len(f.Buffer) > 0:
		tail = &f.Buffer[len(f.Buffer)-1]
	case f.Segment != nil:
		tail = &f.Segment.To
	}
	if tail != nil && tail.Cell != tile {
		return fmt.Errorf("%w: animation heads for %s ahead of logical tile %s", ErrInvalidState, tail.Cell, tile)
	}

	if f.Segment != nil && (f.Segment.Progress < 0 || f.Segment.Progress > 1) {
		return fmt.Errorf("%w: segment progress %v outside [0,1]", ErrInvalidState, f.Segment.Progress)
	}
	return nil
}
