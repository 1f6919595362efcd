package events_test

import (
	"testing"
	"time"

	"github.com/mezmerize-audio/preampd/internal/events"
	"github.com/mezmerize-audio/preampd/internal/models"
)

func TestBusSubscribePublish(t *testing.T) {
	bus := events.NewBus()

	ch := bus.Subscribe("test1")

	state := models.State{Mode: models.ModeNormal}
	state.Runtime.Volume = 42

	bus.Publish(state)

	select {
	case got := <-ch:
		if got.Mode != models.ModeNormal {
			t.Errorf("got mode %v, want %v", got.Mode, models.ModeNormal)
		}
		if got.Runtime.Volume != 42 {
			t.Errorf("got volume %d, want 42", got.Runtime.Volume)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timed out waiting for event")
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := events.NewBus()
	ch := bus.Subscribe("test-unsub")

	bus.Unsubscribe("test-unsub")

	// Channel should be closed
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected channel to be closed after unsubscribe")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timed out waiting for channel close")
	}
}

func TestBusDropsEventsWhenFull(t *testing.T) {
	bus := events.NewBus()
	ch := bus.Subscribe("slow-reader")

	// Publish many events without reading; must not block
	done := make(chan struct{})
	go func() {
		for i := 0; i < 20; i++ {
			bus.Publish(models.State{})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Publish blocked for too long (should drop events)")
	}

	bus.Unsubscribe("slow-reader")
	_ = ch
}

func TestBusSubscriberCount(t *testing.T) {
	bus := events.NewBus()
	if n := bus.SubscriberCount(); n != 0 {
		t.Errorf("expected 0 subscribers, got %d", n)
	}
	bus.Subscribe("s1")
	bus.Subscribe("s2")
	if n := bus.SubscriberCount(); n != 2 {
		t.Errorf("expected 2 subscribers, got %d", n)
	}
	bus.Unsubscribe("s1")
	if n := bus.SubscriberCount(); n != 1 {
		t.Errorf("expected 1 subscriber, got %d", n)
	}
}

func TestBusClose(t *testing.T) {
	bus := events.NewBus()
	ch := bus.Subscribe("s1")

	bus.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected channel to be closed after bus close")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timed out waiting for channel close")
	}

	// Late subscribers get an already-closed channel rather than a hang.
	late := bus.Subscribe("s2")
	select {
	case _, ok := <-late:
		if ok {
			t.Error("expected closed channel for late subscriber")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timed out waiting for late channel close")
	}
	if n := bus.SubscriberCount(); n != 0 {
		t.Errorf("expected 0 subscribers after close, got %d", n)
	}
}
