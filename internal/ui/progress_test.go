package ui

import (
	"errors"
	"strings"
	"testing"

	"ffigen/internal/driver"
)

func TestProgressModelTracksFiles(t *testing.T) {
	events := make(chan driver.Event)
	m := NewProgressModel("ffigen gen", []string{"a.h", "b.h"}, events).(*progressModel)

	m.applyEvent(driver.Event{File: "a.h", Stage: driver.StageResolve, Status: driver.StatusWorking})
	m.applyEvent(driver.Event{File: "b.h", Status: driver.StatusError})
	m.applyEvent(driver.Event{File: "unknown.h", Status: driver.StatusDone})

	if m.items[0].status != "resolving" || m.items[1].status != "error" {
		t.Fatalf("statuses = %+v", m.items)
	}
	view := m.View()
	if !strings.Contains(view, "resolving") || !strings.Contains(view, "b.h") {
		t.Fatalf("view:\n%s", view)
	}
}

func TestProgressModelShowsErrorsAndSummary(t *testing.T) {
	events := make(chan driver.Event)
	m := NewProgressModel("ffigen gen", []string{"a.h", "b.h"}, events).(*progressModel)

	m.applyEvent(driver.Event{File: "a.h", Stage: driver.StageRender, Status: driver.StatusDone})
	m.applyEvent(driver.Event{File: "b.h", Stage: driver.StagePreprocess, Status: driver.StatusError,
		Err: errors.New("gcc: fatal error: missing.h\ncompilation terminated.")})
	m.done = true

	view := m.View()
	if !strings.Contains(view, "gcc: fatal error: missing.h") || strings.Contains(view, "compilation terminated") {
		t.Fatalf("error line not shown as first line only:\n%s", view)
	}
	if !strings.Contains(view, "1 generated, 1 failed") {
		t.Fatalf("summary missing:\n%s", view)
	}
}

func TestTruncate(t *testing.T) {
	got := truncate("include/very/long/path/api.h", 12)
	if !strings.HasSuffix(got, "...") || len(got) > 12 {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("api.h", 12); got != "api.h" {
		t.Fatalf("short value changed: %q", got)
	}
}
