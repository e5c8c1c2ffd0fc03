package portfolio

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jperaltad/tradesim/internal/domain"
)

type fakeMarketReader struct {
	data []domain.MarketData
	err  error
}

func (f *fakeMarketReader) GetAllMarketData() ([]domain.MarketData, error) {
	return f.data, f.err
}

type fakeSnapshotWriter struct {
	inserts [][]byte
}

func (f *fakeSnapshotWriter) Insert(takenAt time.Time, data []byte) error {
	f.inserts = append(f.inserts, data)
	return nil
}

func TestSnapshotRecorderRoundTrip(t *testing.T) {
	reader := &fakeMarketReader{data: []domain.MarketData{
		{Symbol: "AAPL", Price: 175.50, Volume: 1000},
		{Symbol: "TSLA", Price: 250.75, Volume: 2000},
	}}
	writer := &fakeSnapshotWriter{}
	recorder := NewSnapshotRecorder(reader, writer, zerolog.Nop())

	recorder.Update()

	require.Len(t, writer.inserts, 1)
	decoded, err := DecodeSnapshot(writer.inserts[0])
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, "AAPL", decoded[0].Symbol)
	assert.InDelta(t, 175.50, decoded[0].Price, 1e-9)
	assert.Equal(t, int64(2000), decoded[1].Volume)
}

func TestSnapshotRecorderSkipsOnReadError(t *testing.T) {
	reader := &fakeMarketReader{err: assert.AnError}
	writer := &fakeSnapshotWriter{}
	recorder := NewSnapshotRecorder(reader, writer, zerolog.Nop())

	recorder.Update()

	assert.Empty(t, writer.inserts)
}
