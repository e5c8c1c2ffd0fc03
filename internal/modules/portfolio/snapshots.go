package portfolio

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/jperaltad/tradesim/internal/domain"
)

// MarketReader provides the market data set to snapshot
type MarketReader interface {
	GetAllMarketData() ([]domain.MarketData, error)
}

// SnapshotWriter persists encoded snapshots
type SnapshotWriter interface {
	Insert(takenAt time.Time, data []byte) error
}

// SnapshotRecorder is a market subscriber that captures the full
// market data set after each price-update cycle, msgpack-encoded, for
// later inspection and replay.
type SnapshotRecorder struct {
	market MarketReader
	writer SnapshotWriter
	log    zerolog.Logger
}

// NewSnapshotRecorder creates a market snapshot subscriber
func NewSnapshotRecorder(market MarketReader, writer SnapshotWriter, log zerolog.Logger) *SnapshotRecorder {
	return &SnapshotRecorder{
		market: market,
		writer: writer,
		log:    log.With().Str("component", "snapshots").Logger(),
	}
}

// Name identifies this subscriber in the registry
func (s *SnapshotRecorder) Name() string { return "market-snapshots" }

// Update captures one snapshot of all market data
func (s *SnapshotRecorder) Update() {
	data, err := s.market.GetAllMarketData()
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to read market data for snapshot")
		return
	}

	encoded, err := msgpack.Marshal(data)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to encode market snapshot")
		return
	}

	if err := s.writer.Insert(time.Now(), encoded); err != nil {
		s.log.Error().Err(err).Msg("Failed to store market snapshot")
	}
}

// DecodeSnapshot decodes a stored snapshot blob back into market data
func DecodeSnapshot(data []byte) ([]domain.MarketData, error) {
	var mds []domain.MarketData
	if err := msgpack.Unmarshal(data, &mds); err != nil {
		return nil, err
	}
	return mds, nil
}
