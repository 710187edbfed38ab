package event

import (
	"fmt"
	"log/slog"
)

// SourceType records which input produced a request.
type SourceType int

const (
	SourceSystem SourceType = iota
	SourceClick
	SourceKeyboard
	SourceConsole
	SourceScript
)

func (st SourceType) String() string {
	switch st {
	case SourceSystem:
		return "System"
	case SourceClick:
		return "Click"
	case SourceKeyboard:
		return "Keyboard"
	case SourceConsole:
		return "Console"
	case SourceScript:
		return "Script"
	default:
		return "Unknown"
	}
}

// LogHandler writes any known event to the default logger.
func LogHandler(evt any) {
	switch e := evt.(type) {
	case *PathSetEvent:
		slog.Info("Path set", "source", e.Source.String(), "from", e.From.String(), "goal", e.Goal.String(),
			"requested", e.Requested.String(), "cells", e.Cells, "waypoints", e.Waypoints, "run", e.Run)
	case *PathRejectedEvent:
		slog.Debug("Path rejected", "source", e.Source.String(), "from", e.From.String(),
			"requested", e.Requested.String(), "reason", e.Reason)
	case *StepEvent:
		slog.Debug("Step", "tick", e.Tick, "from", e.From.String(), "to", e.To.String(), "cells", e.Cells, "run", e.Run)
	case *ArrivedEvent:
		slog.Info("Arrived", "tick", e.Tick, "at", e.At.String())
	case *StoppedEvent:
		slog.Info("Movement stopped", "source", e.Source.String(), "at", e.At.String())
	case *ModeEvent:
		mode := "walk"
		if e.Running {
			mode = "run"
		}
		slog.Info("Movement mode", "mode", mode)
	default:
		slog.Error("Invalid event type for LogHandler", "type", typeName(evt))
	}
}

func typeName(v any) string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%T", v)
}
