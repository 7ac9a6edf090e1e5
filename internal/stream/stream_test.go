package stream

import (
	"context"
	"testing"
	"time"

	"roadwatch.org/internal/damage"
)

func TestPublishReachesSubscribers(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch1 := s.Subscribe(ctx)
	ch2 := s.Subscribe(ctx)

	evt := EventFor("added", damage.Record{
		ID:           "rec-1",
		DamageType:   damage.Pothole,
		Severity:     damage.SeverityHigh,
		Latitude:     52.3,
		Longitude:    12.8,
		State:        "Brandenburg",
		Municipality: "Kloster Lehnin",
	})
	s.Publish(evt)

	for i, ch := range []<-chan DamageEvent{ch1, ch2} {
		select {
		case got := <-ch:
			if got.RecordID != "rec-1" || got.Action != "added" {
				t.Fatalf("subscriber %d: unexpected event %+v", i, got)
			}
			if got.State != "Brandenburg" || got.Municipality != "Kloster Lehnin" {
				t.Fatalf("subscriber %d: administrative fields missing: %+v", i, got)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d: no event received", i)
		}
	}
}

func TestSubscribeClosesOnContextCancel(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())

	ch := s.Subscribe(ctx)
	cancel()

	select {
	case _, open := <-ch:
		if open {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}

	// publishing after cancellation must not panic
	s.Publish(DamageEvent{Action: "fixed"})
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_ = s.Subscribe(ctx) // never drained

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			s.Publish(DamageEvent{Action: "added"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}
