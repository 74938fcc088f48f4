package service

import (
	"context"
	"testing"

	"assetwatch/internal/domain"
)

func TestEventBusFanOut(t *testing.T) {
	bus := NewEventBus()
	first := make(chan Event, 1)
	second := make(chan Event, 1)
	bus.Subscribe(first)
	bus.Subscribe(second)

	bus.Publish(Event{Type: EventScanCompleted})

	for i, ch := range []chan Event{first, second} {
		select {
		case ev := <-ch:
			if ev.Type != EventScanCompleted {
				t.Errorf("subscriber %d got %s, want %s", i, ev.Type, EventScanCompleted)
			}
		default:
			t.Errorf("subscriber %d did not receive the event", i)
		}
	}
}

func TestEventBusSkipsFullSubscriber(t *testing.T) {
	bus := NewEventBus()
	full := make(chan Event) // nothing ever reads
	live := make(chan Event, 1)
	bus.Subscribe(full)
	bus.Subscribe(live)

	// Must not block on the stuck subscriber.
	bus.Publish(Event{Type: EventAssetUpdated})

	select {
	case ev := <-live:
		if ev.Type != EventAssetUpdated {
			t.Errorf("got %s, want %s", ev.Type, EventAssetUpdated)
		}
	default:
		t.Error("live subscriber did not receive the event")
	}
}

func TestAssetEventsReachSubscribers(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	bus := NewEventBus()
	events := make(chan Event, 8)
	bus.Subscribe(events)
	svc := NewAssetService(repo, bus)

	if err := svc.CreateAsset(ctx, &domain.Asset{Tag: "AW-CAM-0001", Name: "Camera"}); err != nil {
		t.Fatalf("create asset: %v", err)
	}

	select {
	case ev := <-events:
		if ev.Type != EventAssetCreated {
			t.Errorf("event type = %s, want %s", ev.Type, EventAssetCreated)
		}
	default:
		t.Error("expected a published event")
	}
}
