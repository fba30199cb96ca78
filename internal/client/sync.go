package client

import (
	"bufio"
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Phase tracks where the syncer is in its lifecycle. It only moves forward
// except for Live → Syncing flaps while a refetch is in flight.
type Phase int32

const (
	PhaseInitializing Phase = iota
	PhaseHydrating          // cache loaded, first refetch not yet complete
	PhaseSyncing            // refetch in flight
	PhaseLive               // mirror matches the last server snapshot
)

func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseHydrating:
		return "hydrating"
	case PhaseSyncing:
		return "syncing"
	case PhaseLive:
		return "live"
	default:
		return "unknown"
	}
}

// debounceWindow coalesces bursts of change events into one refetch. A sale
// publishes to three streams at once; fetching once covers all of them.
const debounceWindow = 300 * time.Millisecond

// Syncer keeps the store converged with the server: hydrate from disk cache,
// refetch everything, then follow the change feed. Change events carry no
// state; each one just schedules a full refetch.
type Syncer struct {
	backend Backend
	store   *Store
	cache   *Cache

	phase    atomic.Int32
	kick     chan struct{}
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	interval time.Duration // fallback poll when the feed is down
}

func NewSyncer(backend Backend, store *Store, cache *Cache) *Syncer {
	return &Syncer{
		backend:  backend,
		store:    store,
		cache:    cache,
		kick:     make(chan struct{}, 1),
		interval: time.Minute,
	}
}

func (s *Syncer) Phase() Phase { return Phase(s.phase.Load()) }

// Start hydrates from cache synchronously, then launches the refetch loop
// and the feed follower. The store may briefly show stale cached values
// until the first refetch lands.
func (s *Syncer) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	if s.cache != nil {
		if st, ok := s.cache.Load(); ok {
			s.store.ReplaceAll(st)
		}
	}
	s.phase.Store(int32(PhaseHydrating))

	s.RequestRefetch()

	s.wg.Add(2)
	go s.refetchLoop(ctx)
	go s.followFeed(ctx)
}

// Close stops both goroutines and blocks until they exit.
func (s *Syncer) Close() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// RequestRefetch schedules a full refetch. Safe from any goroutine; calls
// made while one is already pending coalesce.
func (s *Syncer) RequestRefetch() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

func (s *Syncer) refetchLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refetch(ctx)
		case <-s.kick:
			// Let a burst of change events settle into one fetch.
			timer := time.NewTimer(debounceWindow)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
			s.refetch(ctx)
		}
	}
}

// refetch pulls every mirrored collection in parallel and swaps them in as
// one unit. If any fetch fails the whole snapshot is discarded: a
// half-updated mirror could pair new balances with old stock and violate
// every local check.
func (s *Syncer) refetch(ctx context.Context) {
	s.phase.Store(int32(PhaseSyncing))

	var st State
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st.Categories, err = s.backend.Categories(gctx)
		return err
	})
	g.Go(func() (err error) {
		st.Balances, err = s.backend.Balances(gctx)
		return err
	})
	g.Go(func() (err error) {
		st.Sales, err = s.backend.Sales(gctx)
		return err
	})
	g.Go(func() (err error) {
		st.Expenses, err = s.backend.Expenses(gctx)
		return err
	})
	g.Go(func() (err error) {
		st.Deposits, err = s.backend.Deposits(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		log.Warn().Err(err).Msg("sync: refetch failed, keeping previous state")
		s.phase.Store(int32(PhaseHydrating))
		return
	}

	s.store.ReplaceAll(st)
	if s.cache != nil {
		s.cache.Save(st)
	}
	s.phase.Store(int32(PhaseLive))
}

// followFeed holds the SSE stream open and converts every event into a
// refetch request, reconnecting with backoff when the stream drops.
func (s *Syncer) followFeed(ctx context.Context) {
	defer s.wg.Done()

	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}

		body, err := s.backend.OpenFeed(ctx)
		if err != nil {
			log.Warn().Err(err).Dur("retry_in", backoff).Msg("sync: feed connect failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		s.consumeFeed(ctx, body)
		body.Close()
	}
}

// consumeFeed reads SSE lines until the stream ends. Only event lines
// matter; heartbeats and data payloads are skipped.
func (s *Syncer) consumeFeed(ctx context.Context, body io.Reader) {
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := scanner.Text()
		if len(line) < 7 || line[:6] != "event:" {
			continue
		}
		event := line[6:]
		for len(event) > 0 && event[0] == ' ' {
			event = event[1:]
		}
		if event == "ping" || event == "" {
			continue
		}
		s.RequestRefetch()
	}
}
