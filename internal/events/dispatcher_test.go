package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcher_DeliversToAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		calls = append(calls, "a:"+e.TicketID)
		return nil
	})
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		calls = append(calls, "b:"+e.TicketID)
		return errors.New("boom")
	})
	d.Subscribe(EventTicketDeleted, func(context.Context, Event) error {
		calls = append(calls, "deleted")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: "7"})
	if err == nil {
		t.Error("Publish() should surface handler errors")
	}
	if len(calls) != 2 || calls[0] != "a:7" || calls[1] != "b:7" {
		t.Errorf("calls = %v", calls)
	}
}

func TestDispatcher_NoHandlers(t *testing.T) {
	if err := NewInMemoryDispatcher().Publish(context.Background(), Event{Type: EventUserLoggedIn}); err != nil {
		t.Errorf("Publish() with no handlers = %v", err)
	}
}

func TestDispatcher_SubscribeAllSeesEveryType(t *testing.T) {
	d := NewInMemoryDispatcher()
	seen := map[EventType]int{}
	d.SubscribeAll(func(_ context.Context, e Event) error {
		seen[e.Type]++
		return nil
	})
	for _, et := range AllEventTypes {
		if err := d.Publish(context.Background(), Event{Type: et}); err != nil {
			t.Fatalf("Publish(%s) = %v", et, err)
		}
	}
	if len(seen) != len(AllEventTypes) {
		t.Errorf("catch-all saw %d types, want %d", len(seen), len(AllEventTypes))
	}
}

func TestDispatcher_PanickingHandlerIsIsolated(t *testing.T) {
	d := NewInMemoryDispatcher()
	delivered := false
	d.Subscribe(EventTicketUpdated, func(context.Context, Event) error {
		panic("audit sink down")
	})
	d.SubscribeAll(func(context.Context, Event) error {
		delivered = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketUpdated})
	if err == nil {
		t.Error("Publish() should report the panic")
	}
	if !delivered {
		t.Error("handlers after the panicking one did not run")
	}
}
