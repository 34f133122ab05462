package bus

import (
	"errors"
	"sync"
	"testing"
)

type testObserver struct {
	mu             sync.Mutex
	publishCount   int
	deliveredCount int
	lastErr        error
}

func (o *testObserver) OnPublish(_ string, _ Event) {
	o.mu.Lock()
	o.publishCount++
	o.mu.Unlock()
}

func (o *testObserver) OnDelivered(_ string, handlers int, err error, _ int64) {
	o.mu.Lock()
	o.deliveredCount += handlers
	o.lastErr = err
	o.mu.Unlock()
}

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	var got Event
	_, err := b.Subscribe("route.arrived", func(e Event) error {
		got = e
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err = b.Publish(NewEvent("route.arrived", "tester", 123)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if got == nil {
		t.Fatal("handler not called")
	}
	if got.Data() != 123 || got.Source() != "tester" {
		t.Fatalf("unexpected event: %+v", got)
	}
	if got.ID() == "" {
		t.Fatal("event id not assigned")
	}
}

func TestEventIDsAreUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := NewEvent("x", "s", nil).ID()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = struct{}{}
	}
}

func TestDeliveryFollowsSubscriptionOrder(t *testing.T) {
	b := New()
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		_, _ = b.Subscribe("ev", func(Event) error {
			order = append(order, i)
			return nil
		})
	}
	_ = b.Publish(NewEvent("ev", "s", nil))
	for i, v := range order {
		if v != i {
			t.Fatalf("out of order delivery: %v", order)
		}
	}
	if len(order) != 5 {
		t.Fatalf("expected 5 deliveries, got %d", len(order))
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	count := 0
	sub, _ := b.Subscribe("ev", func(Event) error { count++; return nil })
	_ = b.Publish(NewEvent("ev", "s", nil))
	if err := b.Unsubscribe(sub); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	if sub.IsActive() {
		t.Fatal("subscription still active")
	}
	// second cancel is a no-op
	if err := sub.Cancel(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	_ = b.Publish(NewEvent("ev", "s", nil))
	if count != 1 {
		t.Fatalf("expected 1 delivery, got %d", count)
	}
	if err := b.Unsubscribe(nil); err != nil {
		t.Fatalf("nil unsubscribe: %v", err)
	}
}

func TestHandlerErrorsAreJoined(t *testing.T) {
	b := New()
	e1, e2 := errors.New("one"), errors.New("two")
	_, _ = b.Subscribe("ev", func(Event) error { return e1 })
	_, _ = b.Subscribe("ev", func(Event) error { return e2 })

	err := b.Publish(NewEvent("ev", "s", nil))
	if !errors.Is(err, e1) || !errors.Is(err, e2) {
		t.Fatalf("expected both errors, got %v", err)
	}

	err = b.PublishBatch(NewEvent("ev", "s", nil), NewEvent("other", "s", nil))
	if !errors.Is(err, e1) {
		t.Fatalf("batch lost handler error: %v", err)
	}
}

func TestSubscribeRejectsNilHandler(t *testing.T) {
	if _, err := New().Subscribe("ev", nil); err == nil {
		t.Fatal("expected error for nil handler")
	}
}

func TestObserverMetricsOptional(t *testing.T) {
	b := New()
	// without observer, metrics should remain zero despite activity
	_, _ = b.Subscribe("e", func(e Event) error { return nil })
	_ = b.Publish(NewEvent("e", "s", nil))
	if m := b.GetMetrics(); m.Published != 0 || m.DeliveredHandlers != 0 {
		t.Fatalf("metrics should be zero without observers: %+v", m)
	}

	obs := &testObserver{}
	b.AddObserver(obs)
	_ = b.Publish(NewEvent("e", "s", nil))
	m := b.GetMetrics()
	if m.Published != 1 || m.DeliveredHandlers != 1 || m.SubscribersActive != 1 {
		t.Fatalf("metrics should update with observer: %+v", m)
	}
	if obs.publishCount != 1 || obs.deliveredCount != 1 {
		t.Fatalf("observer not called: %+v", obs)
	}

	b.RemoveObserver(obs)
	_ = b.Publish(NewEvent("e", "s", nil))
	if obs.publishCount != 1 {
		t.Fatal("removed observer still notified")
	}
}

func TestConcurrentPublishAndSubscribe(t *testing.T) {
	b := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = b.Publish(NewEvent("ev", "s", j))
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				s, _ := b.Subscribe("ev", func(Event) error { return nil })
				_ = s.Cancel()
			}
		}()
	}
	wg.Wait()
}
