package audit

import (
	"bytes"
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, Event) {
	s.count.Add(1)
}

type gateSink struct {
	gate chan struct{}
}

func (s *gateSink) Emit(context.Context, Event) {
	<-s.gate
}

func TestNilDispatcherIsSafe(t *testing.T) {
	var d *Dispatcher

	d.Emit(context.Background(), Event{EventType: "login_success"})
	if got := d.Dropped(); got != 0 {
		t.Fatalf("Dropped on nil dispatcher = %d, want 0", got)
	}
	d.Close()
}

func TestDisabledConfigReturnsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, &countingSink{})
	if d != nil {
		t.Fatal("disabled config must produce a nil dispatcher")
	}
}

func TestNilSinkDefaultsToNoOp(t *testing.T) {
	d := NewDispatcher(Config{Enabled: true, BufferSize: 4}, nil)
	if d == nil {
		t.Fatal("enabled config produced nil dispatcher")
	}
	defer d.Close()

	d.Emit(context.Background(), Event{EventType: "logout"})
}

func TestCloseDrainsBufferedEvents(t *testing.T) {
	sink := &countingSink{}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 16}, sink)

	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), Event{EventType: "login_success"})
	}
	d.Close()

	if got := sink.count.Load(); got != 10 {
		t.Fatalf("delivered %d events after Close, want 10", got)
	}
	if got := d.Dropped(); got != 0 {
		t.Fatalf("Dropped = %d, want 0", got)
	}
}

func TestDropIfFullCountsDiscards(t *testing.T) {
	sink := &gateSink{gate: make(chan struct{})}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	// First event occupies the worker, second fills the buffer. Everything
	// after that must be dropped, not block.
	deadline := time.After(2 * time.Second)
	for d.Dropped() == 0 {
		select {
		case <-deadline:
			t.Fatal("no event was dropped under backpressure")
		default:
		}
		d.Emit(context.Background(), Event{EventType: "login_failure"})
	}

	close(sink.gate)
	d.Close()
}

func TestEmitAfterCloseIsIgnored(t *testing.T) {
	sink := &countingSink{}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 4}, sink)
	d.Close()

	d.Emit(context.Background(), Event{EventType: "login_success"})
	if got := sink.count.Load(); got != 0 {
		t.Fatalf("delivered %d events after Close, want 0", got)
	}
}

func TestJSONWriterSinkWritesOneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), Event{EventType: "login_success", Email: "admin@conectaworking.dev", Success: true})
	sink.Emit(context.Background(), Event{EventType: "logout", Success: true})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("wrote %d lines, want 2", len(lines))
	}
	if !strings.Contains(lines[0], `"event_type":"login_success"`) {
		t.Fatalf("first line missing event type: %s", lines[0])
	}
	if !strings.Contains(lines[0], `"email":"admin@conectaworking.dev"`) {
		t.Fatalf("first line missing email: %s", lines[0])
	}
}

func TestChannelSinkDeliversEvents(t *testing.T) {
	sink := NewChannelSink(4)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 4}, sink)

	d.Emit(context.Background(), Event{EventType: "signup_success", Email: "user@conectaworking.dev"})
	d.Close()

	select {
	case event := <-sink.Events():
		if event.EventType != "signup_success" {
			t.Fatalf("EventType = %q, want signup_success", event.EventType)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered to channel sink")
	}
}
