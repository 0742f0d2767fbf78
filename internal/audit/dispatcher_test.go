package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"
)

// recordingSink collects events; block gates Emit for backpressure tests.
type recordingSink struct {
	mu     sync.Mutex
	events []Event
	block  chan struct{}
}

func (s *recordingSink) Emit(ctx context.Context, event Event) {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestDispatcherDisabledIsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, &recordingSink{})
	if d != nil {
		t.Fatal("a disabled dispatcher must be nil")
	}

	// The nil dispatcher is a valid receiver everywhere.
	d.Emit(context.Background(), Event{EventType: "x"})
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher must report zero drops")
	}
	d.Close()
}

func TestDispatcherDeliversInOrder(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 8}, sink)

	for i := 0; i < 5; i++ {
		d.Emit(context.Background(), Event{EventType: "e", Metadata: map[string]string{"n": string(rune('a' + i))}})
	}
	d.Close()

	if got := sink.count(); got != 5 {
		t.Fatalf("delivered = %d, want 5", got)
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	for i, event := range sink.events {
		if want := string(rune('a' + i)); event.Metadata["n"] != want {
			t.Fatalf("event %d = %q, want %q", i, event.Metadata["n"], want)
		}
	}
}

func TestDispatcherCloseDrainsQueue(t *testing.T) {
	sink := &recordingSink{block: make(chan struct{})}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 16}, sink)

	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), Event{EventType: "queued"})
	}
	close(sink.block)
	d.Close()

	if got := sink.count(); got != 10 {
		t.Fatalf("drained = %d, want 10", got)
	}
}

func TestDispatcherDropIfFullCounts(t *testing.T) {
	sink := &recordingSink{block: make(chan struct{})}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 2, DropIfFull: true}, sink)

	// One event is pulled into the blocked sink, two sit in the buffer; the
	// rest must be dropped without blocking.
	deadline := time.After(time.Second)
	for d.Dropped() == 0 {
		d.Emit(context.Background(), Event{EventType: "flood"})
		select {
		case <-deadline:
			t.Fatal("DropIfFull never dropped")
		default:
		}
	}

	close(sink.block)
	d.Close()

	if d.Dropped() == 0 {
		t.Fatal("dropped counter must survive Close")
	}
}

func TestDispatcherEmitAfterCloseIsNoOp(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 4}, sink)
	d.Close()

	d.Emit(context.Background(), Event{EventType: "late"})
	if got := sink.count(); got != 0 {
		t.Fatalf("delivered = %d, want 0 after Close", got)
	}
}

func TestChannelSink(t *testing.T) {
	sink := NewChannelSink(2)
	sink.Emit(context.Background(), Event{EventType: "a"})

	select {
	case event := <-sink.Events():
		if event.EventType != "a" {
			t.Fatalf("event = %+v", event)
		}
	default:
		t.Fatal("event not buffered")
	}

	// A full channel respects context cancellation instead of blocking.
	sink.Emit(context.Background(), Event{EventType: "b"})
	sink.Emit(context.Background(), Event{EventType: "c"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sink.Emit(ctx, Event{EventType: "d"})
}

func TestJSONWriterSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), Event{EventType: "login.success", Success: true, Email: "a@x.com"})
	sink.Emit(context.Background(), Event{EventType: "logout.local", Success: true})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}

	var first Event
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line 0 is not JSON: %v", err)
	}
	if first.EventType != "login.success" || first.Email != "a@x.com" {
		t.Fatalf("decoded = %+v", first)
	}
}
