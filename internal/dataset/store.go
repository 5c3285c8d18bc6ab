package dataset

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"gopetro/internal"
	"gopetro/internal/errors"
	"gopetro/ports"

	"golang.org/x/sync/singleflight"
)

// SwapListener is notified after a new dataset version has been published
type SwapListener func(previous, current *Dataset)

// Store owns the current Dataset and replaces it atomically on refresh.
// Readers load the pointer once per render and never see a partial update.
type Store struct {
	source  ports.SampleSource
	logger  *internal.Logger
	current atomic.Pointer[Dataset]
	group   singleflight.Group

	listenersMu sync.RWMutex
	listeners   []SwapListener
}

// NewStore creates an empty store reading from source
func NewStore(source ports.SampleSource, logger *internal.Logger) *Store {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &Store{source: source, logger: logger.Named("dataset")}
}

// NewStaticStore wraps an already built dataset; Refresh is unsupported
func NewStaticStore(ds *Dataset) *Store {
	s := &Store{logger: internal.NewNopLogger()}
	s.current.Store(ds)
	return s
}

// Current returns the published dataset, or nil before the first load
func (s *Store) Current() *Dataset {
	return s.current.Load()
}

// OnSwap registers fn for every published version change
func (s *Store) OnSwap(fn SwapListener) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Refresh loads the source and publishes the rebuilt dataset. Concurrent calls
// share one load. On failure the previous dataset stays published.
func (s *Store) Refresh(ctx context.Context) (*Dataset, error) {
	if s.source == nil {
		if ds := s.Current(); ds != nil {
			return ds, nil
		}
		return nil, errors.DatasetUnavailable("no sample source configured", nil)
	}

	v, err, _ := s.group.Do("refresh", func() (interface{}, error) {
		return s.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Dataset), nil
}

func (s *Store) refresh(ctx context.Context) (*Dataset, error) {
	start := time.Now()
	raw, err := s.source.LoadSamples(ctx)
	if err != nil {
		s.logger.Error("Loading samples from %s failed: %v", s.source.Describe(), err)
		return nil, errors.DatasetUnavailable("failed to load samples from "+s.source.Describe(), err)
	}

	next, err := Build(s.source.Describe(), raw)
	if err != nil {
		s.logger.Error("Dataset build failed: %v", err)
		return nil, err
	}
	if excluded := next.ExcludedIDs(); len(excluded) > 0 {
		s.logger.Warn("Excluded %d of %d samples: %s", len(excluded), len(raw), strings.Join(excluded, ", "))
	}

	prev := s.Current()
	if prev != nil && prev.Version() == next.Version() {
		s.logger.Debug("Dataset unchanged (version %s)", prev.Version().Short())
		return prev, nil
	}

	s.current.Store(next)
	s.logger.Info("Published dataset %s: %d samples from %s in %s",
		next.Version().Short(), next.Len(), next.Source(), time.Since(start).Round(time.Millisecond))

	s.listenersMu.RLock()
	listeners := append([]SwapListener(nil), s.listeners...)
	s.listenersMu.RUnlock()
	for _, fn := range listeners {
		fn(prev, next)
	}
	return next, nil
}

// Run refreshes every interval until ctx is done. Failures are logged and the
// previous dataset is kept.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Refresh(ctx); err != nil {
				s.logger.Warn("Periodic refresh failed, keeping previous dataset: %v", err)
			}
		}
	}
}
