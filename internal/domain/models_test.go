package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddHoldingFirstBuy(t *testing.T) {
	p := NewPortfolio("user1")

	p.AddHolding("AAPL", 10, 100)

	require.Len(t, p.Holdings, 1)
	assert.Equal(t, "AAPL", p.Holdings[0].Symbol)
	assert.Equal(t, 10.0, p.Holdings[0].Quantity)
	assert.Equal(t, 100.0, p.Holdings[0].AveragePrice)
}

func TestAddHoldingWeightedAverage(t *testing.T) {
	p := NewPortfolio("user1")

	p.AddHolding("AAPL", 10, 100)
	p.AddHolding("AAPL", 10, 200)

	require.Len(t, p.Holdings, 1)
	assert.Equal(t, 20.0, p.Holdings[0].Quantity)
	// (10*100 + 10*200) / 20
	assert.InDelta(t, 150.0, p.Holdings[0].AveragePrice, 1e-9)
}

func TestAddHoldingKeepsInsertionOrder(t *testing.T) {
	p := NewPortfolio("user1")

	p.AddHolding("AAPL", 1, 100)
	p.AddHolding("TSLA", 1, 250)
	p.AddHolding("AAPL", 1, 110)

	require.Len(t, p.Holdings, 2)
	assert.Equal(t, "AAPL", p.Holdings[0].Symbol)
	assert.Equal(t, "TSLA", p.Holdings[1].Symbol)
}

func TestRemoveHoldingPartial(t *testing.T) {
	p := NewPortfolio("user1")
	p.AddHolding("AAPL", 10, 100)

	p.RemoveHolding("AAPL", 4)

	require.Len(t, p.Holdings, 1)
	assert.Equal(t, 6.0, p.Holdings[0].Quantity)
	assert.Equal(t, 100.0, p.Holdings[0].AveragePrice)
}

func TestRemoveHoldingDropsAtZero(t *testing.T) {
	p := NewPortfolio("user1")
	p.AddHolding("AAPL", 10, 100)

	p.RemoveHolding("AAPL", 10)

	assert.Empty(t, p.Holdings)
}

func TestRepriceRecomputesDerivedFields(t *testing.T) {
	p := NewPortfolio("user1")
	p.AddHolding("AAPL", 10, 100)
	p.AddHolding("TSLA", 2, 250)

	p.Reprice(map[string]float64{"AAPL": 120, "TSLA": 200})

	aapl := p.FindHolding("AAPL")
	require.NotNil(t, aapl)
	assert.InDelta(t, 1200.0, aapl.CurrentValue, 1e-9)
	assert.InDelta(t, 200.0, aapl.TotalReturn, 1e-9)
	assert.InDelta(t, 20.0, aapl.PercentageReturn, 1e-9)

	assert.InDelta(t, 1600.0, p.TotalValue, 1e-9)
	assert.InDelta(t, 1500.0, p.TotalInvested, 1e-9)
	assert.InDelta(t, 100.0, p.TotalReturn, 1e-9)
	assert.InDelta(t, 100.0/1500.0*100, p.PercentageReturn, 1e-9)
}

func TestRepriceMissingSymbolKeepsValue(t *testing.T) {
	p := NewPortfolio("user1")
	p.AddHolding("AAPL", 10, 100)
	p.Reprice(map[string]float64{"AAPL": 120})

	p.Reprice(map[string]float64{})

	assert.InDelta(t, 1200.0, p.FindHolding("AAPL").CurrentValue, 1e-9)
}

func TestRepriceEmptyPortfolio(t *testing.T) {
	p := NewPortfolio("user1")

	p.Reprice(map[string]float64{"AAPL": 120})

	assert.Zero(t, p.TotalValue)
	assert.Zero(t, p.TotalInvested)
	assert.Zero(t, p.PercentageReturn)
}

func TestCanAfford(t *testing.T) {
	u := &User{Balance: 100}

	assert.True(t, u.CanAfford(100))
	assert.True(t, u.CanAfford(50))
	assert.False(t, u.CanAfford(100.01))
}

func TestTransactionComplete(t *testing.T) {
	txn := &Transaction{Status: StatusPending}

	txn.Complete()

	assert.Equal(t, StatusCompleted, txn.Status)
	assert.False(t, txn.Timestamp.IsZero())
}
