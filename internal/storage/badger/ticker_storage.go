package badger

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ajsalagundi/Stock-Intelligence/internal/model"
)

// TickerStorage persists assembled ticker records keyed by symbol. Re-runs
// upsert in place, so the store holds at most one record per ticker.
type TickerStorage struct {
	db     *DB
	logger zerolog.Logger
}

// NewTickerStorage creates a new TickerStorage.
func NewTickerStorage(db *DB) *TickerStorage {
	return &TickerStorage{
		db:     db,
		logger: log.With().Str("component", "ticker_storage").Logger(),
	}
}

// SaveRecord upserts one record under its ticker symbol.
func (s *TickerStorage) SaveRecord(rec *model.TickerRecord) error {
	if rec.Ticker == "" {
		return fmt.Errorf("ticker symbol is required")
	}
	if err := s.db.Store().Upsert(rec.Ticker, rec); err != nil {
		return fmt.Errorf("saving record for %s: %w", rec.Ticker, err)
	}
	s.logger.Debug().Str("symbol", rec.Ticker).Msg("Saved ticker record")
	return nil
}

// GetRecord fetches the record for one symbol.
func (s *TickerStorage) GetRecord(symbol string) (*model.TickerRecord, error) {
	var rec model.TickerRecord
	if err := s.db.Store().Get(symbol, &rec); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("no record for %s", symbol)
		}
		return nil, fmt.Errorf("loading record for %s: %w", symbol, err)
	}
	return &rec, nil
}

// ListSymbols returns the symbols of all stored records, sorted.
func (s *TickerStorage) ListSymbols() ([]string, error) {
	var recs []model.TickerRecord
	if err := s.db.Store().Find(&recs, nil); err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	symbols := make([]string, len(recs))
	for i, rec := range recs {
		symbols[i] = rec.Ticker
	}
	sort.Strings(symbols)
	return symbols, nil
}
