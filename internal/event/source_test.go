package event

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/Versifine/tilewalk/internal/world"
)

// TestSourceTypeString 测试 SourceType 的字符串表示
func TestSourceTypeString(t *testing.T) {
	tests := []struct {
		name     string
		source   SourceType
		expected string
	}{
		{"System", SourceSystem, "System"},
		{"Click", SourceClick, "Click"},
		{"Keyboard", SourceKeyboard, "Keyboard"},
		{"Console", SourceConsole, "Console"},
		{"Script", SourceScript, "Script"},
		{"Unknown", SourceType(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.source.String()
			if got != tt.expected {
				t.Errorf("SourceType(%d).String() = %q, 期望 %q", tt.source, got, tt.expected)
			}
		})
	}
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

// TestLogHandler 测试 LogHandler 对各类事件的输出
func TestLogHandler(t *testing.T) {
	tests := []struct {
		name string
		evt  any
		want []string
	}{
		{"path set", &PathSetEvent{Source: SourceClick, Goal: world.Cell{X: 3, Y: 4}, Cells: 5}, []string{"Path set", "source=Click", "goal=(3,4)", "cells=5"}},
		{"rejected", &PathRejectedEvent{Reason: "unreachable"}, []string{"Path rejected", "reason=unreachable"}},
		{"step", &StepEvent{Tick: 2, To: world.Cell{X: 1}}, []string{"msg=Step", "tick=2", "to=(1,0)"}},
		{"arrived", &ArrivedEvent{At: world.Cell{X: 9, Y: 9}}, []string{"Arrived", "at=(9,9)"}},
		{"stopped", &StoppedEvent{Source: SourceKeyboard}, []string{"Movement stopped", "source=Keyboard"}},
		{"mode", &ModeEvent{Running: true}, []string{"Movement mode", "mode=run"}},
		{"unknown", 42, []string{"level=ERROR", "type=int"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t)
			LogHandler(tt.evt)
			out := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("输出 %q 中缺少 %q", out, want)
				}
			}
		})
	}
}
