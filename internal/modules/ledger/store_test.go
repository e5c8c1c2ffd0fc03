package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jperaltad/tradesim/internal/database"
	"github.com/jperaltad/tradesim/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := database.New(database.Config{
		Path: filepath.Join(t.TempDir(), "ledger.db"),
		Name: "ledger-test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate())
	return NewStore(db.Conn(), zerolog.Nop())
}

func TestSeedDemoDataIsIdempotent(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SeedDemoData())
	require.NoError(t, store.SeedDemoData())

	users, err := store.GetAllUsers()
	require.NoError(t, err)
	assert.Len(t, users, 3)

	assets, err := store.GetAllAssets()
	require.NoError(t, err)
	assert.Len(t, assets, 5)

	// Every asset has a matching market data row at the same price
	for _, asset := range assets {
		md, err := store.GetMarketData(asset.Symbol)
		require.NoError(t, err)
		require.NotNil(t, md)
		assert.Equal(t, asset.CurrentPrice, md.Price)
	}

	// Every user starts with an empty portfolio
	for _, user := range users {
		p, err := store.GetPortfolio(user.ID)
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Empty(t, p.Holdings)
	}
}

func TestUserRoundTrip(t *testing.T) {
	store := newTestStore(t)

	user := &domain.User{
		ID:            "u1",
		Name:          "Test User",
		Balance:       1234.56,
		RiskTolerance: domain.RiskToleranceHigh,
		CreatedAt:     time.Now(),
	}
	require.NoError(t, store.UpdateUser(user))

	got, err := store.GetUser("u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.Name, got.Name)
	assert.InDelta(t, user.Balance, got.Balance, 1e-9)
	assert.Equal(t, user.RiskTolerance, got.RiskTolerance)
}

func TestGetUserAbsentReturnsNilNil(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetUser("ghost")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestNegativeBalanceRejected(t *testing.T) {
	store := newTestStore(t)

	err := store.UpdateUser(&domain.User{ID: "u1", Name: "x", Balance: -1})
	assert.Error(t, err)
}

func TestAssetSymbolNormalized(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.UpdateAsset(&domain.Asset{
		Symbol: " aapl ", Name: "Apple Inc.", Sector: "Technology",
		CurrentPrice: 175.50, LastUpdated: time.Now(),
	}))

	got, err := store.GetAsset("AAPL")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "AAPL", got.Symbol)

	got, err = store.GetAsset("aapl")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestPortfolioRoundTripKeepsOrder(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.UpdateUser(&domain.User{ID: "u1", Name: "x", Balance: 0}))

	p := domain.NewPortfolio("u1")
	p.AddHolding("TSLA", 2, 250)
	p.AddHolding("AAPL", 10, 100)
	p.AddHolding("JNJ", 1, 160)
	require.NoError(t, store.UpdatePortfolio(p))

	got, err := store.GetPortfolio("u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Holdings, 3)
	assert.Equal(t, "TSLA", got.Holdings[0].Symbol)
	assert.Equal(t, "AAPL", got.Holdings[1].Symbol)
	assert.Equal(t, "JNJ", got.Holdings[2].Symbol)

	// Removing a holding persists as a removal, not a zero-quantity row
	got.RemoveHolding("AAPL", 10)
	require.NoError(t, store.UpdatePortfolio(got))

	got, err = store.GetPortfolio("u1")
	require.NoError(t, err)
	require.Len(t, got.Holdings, 2)
	assert.Nil(t, got.FindHolding("AAPL"))
}

func TestApplyTradePersistsAllThree(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.UpdateUser(&domain.User{ID: "u1", Name: "x", Balance: 10000}))

	user := &domain.User{ID: "u1", Name: "x", Balance: 8990}
	p := domain.NewPortfolio("u1")
	p.AddHolding("AAPL", 10, 100)
	txn := &domain.Transaction{
		ID: "txn_1", UserID: "u1", Symbol: "AAPL",
		Side: domain.SideBuy, Status: domain.StatusCompleted,
		Quantity: 10, Price: 100, Fees: 10, Total: 1010,
		Timestamp: time.Now(),
	}

	require.NoError(t, store.ApplyTrade(user, p, txn))

	gotUser, _ := store.GetUser("u1")
	assert.InDelta(t, 8990.0, gotUser.Balance, 1e-9)

	gotPortfolio, _ := store.GetPortfolio("u1")
	require.NotNil(t, gotPortfolio)
	assert.NotNil(t, gotPortfolio.FindHolding("AAPL"))

	txns, _ := store.GetTransactions("u1")
	require.Len(t, txns, 1)
	assert.Equal(t, "txn_1", txns[0].ID)
}

func TestApplyTradeRollsBackOnBadTransaction(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.UpdateUser(&domain.User{ID: "u1", Name: "x", Balance: 10000}))

	user := &domain.User{ID: "u1", Name: "x", Balance: 8990}
	p := domain.NewPortfolio("u1")
	p.AddHolding("AAPL", 10, 100)
	// Pending transactions must not enter the ledger; the whole write
	// rolls back
	txn := &domain.Transaction{
		ID: "txn_1", UserID: "u1", Symbol: "AAPL",
		Side: domain.SideBuy, Status: domain.StatusPending,
		Quantity: 10, Price: 100, Fees: 10, Total: 1010,
		Timestamp: time.Now(),
	}

	require.Error(t, store.ApplyTrade(user, p, txn))

	gotUser, _ := store.GetUser("u1")
	assert.InDelta(t, 10000.0, gotUser.Balance, 1e-9)

	gotPortfolio, _ := store.GetPortfolio("u1")
	assert.Nil(t, gotPortfolio)

	txns, _ := store.GetTransactions("u1")
	assert.Empty(t, txns)
}

func TestApplyQuoteRejectsMismatchedPrices(t *testing.T) {
	store := newTestStore(t)

	asset := &domain.Asset{Symbol: "AAPL", Name: "Apple Inc.", Sector: "Technology", CurrentPrice: 100, LastUpdated: time.Now()}
	md := &domain.MarketData{Symbol: "AAPL", Price: 101, Timestamp: time.Now()}

	err := store.ApplyQuote(asset, md)
	assert.Error(t, err)

	md.Price = 100
	md.Symbol = "TSLA"
	err = store.ApplyQuote(asset, md)
	assert.Error(t, err)
}

func TestApplyQuoteWritesBothRecords(t *testing.T) {
	store := newTestStore(t)

	now := time.Now()
	asset := &domain.Asset{Symbol: "AAPL", Name: "Apple Inc.", Sector: "Technology", CurrentPrice: 100.5, LastUpdated: now}
	md := &domain.MarketData{Symbol: "AAPL", Price: 100.5, Change: 0.5, ChangePercent: 0.5, Volume: 42, Timestamp: now}

	require.NoError(t, store.ApplyQuote(asset, md))

	gotAsset, _ := store.GetAsset("AAPL")
	gotMD, _ := store.GetMarketData("AAPL")
	require.NotNil(t, gotAsset)
	require.NotNil(t, gotMD)
	assert.Equal(t, gotAsset.CurrentPrice, gotMD.Price)
	assert.Equal(t, int64(42), gotMD.Volume)
}

func TestTransactionsMostRecentFirst(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.UpdateUser(&domain.User{ID: "u1", Name: "x", Balance: 0}))

	base := time.Now()
	for i, id := range []string{"txn_a", "txn_b", "txn_c"} {
		txn := &domain.Transaction{
			ID: id, UserID: "u1", Symbol: "AAPL",
			Side: domain.SideBuy, Status: domain.StatusCompleted,
			Quantity: 1, Price: 100, Fees: 1, Total: 101,
			Timestamp: base.Add(time.Duration(i) * time.Millisecond),
		}
		require.NoError(t, store.AppendTransaction(txn))
	}

	txns, err := store.GetTransactions("u1")
	require.NoError(t, err)
	require.Len(t, txns, 3)
	assert.Equal(t, "txn_c", txns[0].ID)
	assert.Equal(t, "txn_b", txns[1].ID)
	assert.Equal(t, "txn_a", txns[2].ID)
}

func TestSnapshotRepository(t *testing.T) {
	store := newTestStore(t)

	base := time.Now()
	require.NoError(t, store.Snapshots().Insert(base, []byte("one")))
	require.NoError(t, store.Snapshots().Insert(base.Add(time.Second), []byte("two")))

	snapshots, err := store.Snapshots().ListRecent(10)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Equal(t, []byte("two"), snapshots[0].Data)
	assert.Equal(t, []byte("one"), snapshots[1].Data)
}
