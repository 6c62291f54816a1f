package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBusDelivers(t *testing.T) {
	bus := NewBus(zap.NewNop())
	ch, cancel := bus.Subscribe(4)
	defer cancel()

	bus.Publish(Event{Kind: KindAssetCreated, AssetCreated: &AssetCreated{Symbol: "TEST"}})

	select {
	case ev := <-ch:
		require.Equal(t, KindAssetCreated, ev.Kind)
		require.NotNil(t, ev.AssetCreated)
		require.Equal(t, "TEST", ev.AssetCreated.Symbol)
		require.False(t, ev.Time.IsZero())
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestBusDropsWhenSubscriberFull(t *testing.T) {
	bus := NewBus(zap.NewNop())
	ch, cancel := bus.Subscribe(1)
	defer cancel()

	// Second publish must not block even though nobody is reading.
	done := make(chan struct{})
	go func() {
		bus.Publish(Event{Kind: KindTradeExecuted})
		bus.Publish(Event{Kind: KindTradeExecuted})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}

	require.Len(t, ch, 1)
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus(zap.NewNop())
	ch, cancel := bus.Subscribe(1)
	cancel()

	_, open := <-ch
	require.False(t, open)

	// Publishing after unsubscribe is a no-op.
	bus.Publish(Event{Kind: KindPhaseChanged})
}
