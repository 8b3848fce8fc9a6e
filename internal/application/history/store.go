// Package history exposes past submissions fetched from the remote service.
// Rows are produced by the same reconciler used for live results.
package history

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/doeshing/widgera/internal/application/reconcile"
	"github.com/doeshing/widgera/internal/domain"
	"github.com/doeshing/widgera/internal/ports"
)

// Option configures a Store.
type Option func(*Store)

// WithLimit caps the number of records returned by Records. Zero or less
// means no cap.
func WithLimit(n int) Option {
	return func(s *Store) { s.limit = n }
}

// WithCacheSize sets the capacity of the id index.
func WithCacheSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.cacheSize = n
		}
	}
}

// State is a snapshot of the store. Records and Error are never both set.
type State struct {
	Loading bool
	Records []domain.HistoryRecord
	Error   string
}

// Store holds the last successfully fetched history list.
type Store struct {
	fetcher   ports.HistoryFetcher
	logger    ports.Logger
	limit     int
	cacheSize int

	mu      sync.Mutex
	loading bool
	records []domain.HistoryRecord
	err     error
	index   *lru.Cache[int64, domain.HistoryRecord]
}

// NewStore returns an empty store backed by fetcher.
func NewStore(fetcher ports.HistoryFetcher, logger ports.Logger, opts ...Option) (*Store, error) {
	s := &Store{
		fetcher:   fetcher,
		logger:    logger,
		cacheSize: domain.DefaultHistoryCacheSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	index, err := lru.New[int64, domain.HistoryRecord](s.cacheSize)
	if err != nil {
		return nil, err
	}
	s.index = index
	return s, nil
}

// Refresh performs one fetch. On failure the previous list is dropped and
// a *domain.HistoryFetchError is returned; no partial list is kept.
func (s *Store) Refresh(ctx context.Context) (State, error) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	records, err := s.fetcher.History(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.index.Purge()
	if err != nil {
		s.records = nil
		s.err = &domain.HistoryFetchError{Err: err}
		s.logger.Error("history fetch failed", err, nil)
		return s.snapshotLocked(), s.err
	}

	s.err = nil
	s.records = records
	for _, rec := range records {
		s.index.Add(rec.ID, rec)
	}
	s.logger.Debug("history loaded", map[string]interface{}{"records": len(records)})
	return s.snapshotLocked(), nil
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Records returns the fetched records in service order, newest first,
// capped at the configured limit.
func (s *Store) Records() []domain.HistoryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visibleLocked()
}

// Lookup finds a fetched record by id.
func (s *Store) Lookup(id int64) (domain.HistoryRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.index.Get(id); ok {
		return rec, true
	}
	// The index may have evicted older entries on very long histories.
	for _, rec := range s.records {
		if rec.ID == id {
			s.index.Add(id, rec)
			return rec, true
		}
	}
	return domain.HistoryRecord{}, false
}

// Rows reconciles a record's output against its own schema.
func Rows(rec domain.HistoryRecord) []domain.DisplayRow {
	return reconcile.Reconcile(rec.Fields, rec.Output)
}

func (s *Store) visibleLocked() []domain.HistoryRecord {
	if s.records == nil {
		return nil
	}
	n := len(s.records)
	if s.limit > 0 && s.limit < n {
		n = s.limit
	}
	return append([]domain.HistoryRecord(nil), s.records[:n]...)
}

func (s *Store) snapshotLocked() State {
	state := State{Loading: s.loading, Records: s.visibleLocked()}
	if s.err != nil {
		state.Error = s.err.Error()
	}
	return state
}
