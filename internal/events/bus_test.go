package events

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversToSubscribers(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var received []*Event
	bus.Subscribe(TradeExecuted, func(e *Event) {
		received = append(received, e)
	})

	bus.Emit(TradeExecuted, "trading", map[string]interface{}{"txn_id": "txn_1"})
	bus.Emit(PriceUpdated, "market", nil)

	require.Len(t, received, 1)
	assert.Equal(t, TradeExecuted, received[0].Type)
	assert.Equal(t, "trading", received[0].Module)
	assert.Equal(t, "txn_1", received[0].Data["txn_id"])
	assert.False(t, received[0].Timestamp.IsZero())
}

func TestBusPanickingHandlerIsIsolated(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	called := false
	bus.Subscribe(PriceUpdated, func(e *Event) {
		panic("boom")
	})
	bus.Subscribe(PriceUpdated, func(e *Event) {
		called = true
	})

	assert.NotPanics(t, func() {
		bus.Emit(PriceUpdated, "market", nil)
	})
	assert.True(t, called)
}

func TestBusSubscribeDuringDelivery(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	lateCalls := 0
	bus.Subscribe(PriceUpdated, func(e *Event) {
		bus.Subscribe(PriceUpdated, func(e *Event) {
			lateCalls++
		})
	})

	// The handler added mid-delivery must not run for this emit
	bus.Emit(PriceUpdated, "market", nil)
	assert.Equal(t, 0, lateCalls)

	bus.Emit(PriceUpdated, "market", nil)
	assert.Equal(t, 1, lateCalls)
}

func TestManagerEmitReachesBus(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	manager := NewManager(bus, zerolog.Nop())

	var received *Event
	bus.Subscribe(ErrorOccurred, func(e *Event) {
		received = e
	})

	manager.EmitError("market", assert.AnError, map[string]interface{}{"symbol": "AAPL"})

	require.NotNil(t, received)
	assert.Equal(t, assert.AnError.Error(), received.Data["error"])
}
