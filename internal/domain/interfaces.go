package domain

// Store defines the persistence boundary for the trading core.
// Lookup methods return (nil, nil) when the entity is absent; callers
// translate absence into NotFoundError where that matters.
type Store interface {
	// User operations
	GetUser(id string) (*User, error)
	GetAllUsers() ([]User, error)
	UpdateUser(user *User) error

	// Asset operations
	GetAsset(symbol string) (*Asset, error)
	UpdateAsset(asset *Asset) error
	GetAllAssets() ([]Asset, error)

	// Market data operations
	GetMarketData(symbol string) (*MarketData, error)
	UpdateMarketData(md *MarketData) error
	GetAllMarketData() ([]MarketData, error)

	// Portfolio operations
	GetPortfolio(userID string) (*Portfolio, error)
	UpdatePortfolio(portfolio *Portfolio) error

	// Transaction log (append-only)
	AppendTransaction(txn *Transaction) error
	GetTransactions(userID string) ([]Transaction, error)
}
