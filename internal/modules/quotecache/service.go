// README: Request deduplication: at-most-one in-flight computation per request hash.
package quotecache

import (
	"context"
	"log"
	"sync"
	"time"

	"tratta/internal/modules/pricing"
)

const (
	DefaultTTL = 60 * time.Second
	// How long a duplicate waits for the in-flight leader before computing
	// independently. Never block indefinitely.
	defaultWaitBudget = 5 * time.Second
	// In-flight markers older than this are considered abandoned.
	abandonAfter = 30 * time.Second
	sweepTick    = 30 * time.Second
)

type flight struct {
	done      chan struct{}
	startedAt time.Time
}

// Service wraps a Store with in-flight deduplication. Per key the lifecycle
// is absent → in-flight → cached → expired. Concurrent identical requests
// wait on the leader's completion channel instead of recomputing; the wait is
// bounded, after which the follower computes independently.
type Service struct {
	store      Store
	ttl        time.Duration
	waitBudget time.Duration

	mu       sync.Mutex
	inflight map[string]*flight
}

func NewService(store Store, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		store:      store,
		ttl:        ttl,
		waitBudget: defaultWaitBudget,
		inflight:   make(map[string]*flight),
	}
}

// WithWaitBudget overrides the follower wait budget.
func (s *Service) WithWaitBudget(d time.Duration) *Service {
	if d > 0 {
		s.waitBudget = d
	}
	return s
}

// GetOrCompute returns the cached result for key, or runs compute exactly
// once across concurrent callers and caches its result. The second return
// value reports a cache hit. The cache is populated before waiters are
// released, so a woken follower never reads a partial result.
func (s *Service) GetOrCompute(ctx context.Context, key string, compute func(context.Context) (pricing.QuoteResult, error)) (pricing.QuoteResult, bool, error) {
	if e, ok, err := s.store.Get(ctx, key); err != nil {
		log.Printf("quotecache: get %s: %v", key, err)
	} else if ok {
		return e.Response, true, nil
	}

	s.mu.Lock()
	if f, ok := s.inflight[key]; ok {
		s.mu.Unlock()
		return s.waitForLeader(ctx, key, f, compute)
	}
	f := &flight{done: make(chan struct{}), startedAt: time.Now()}
	s.inflight[key] = f
	s.mu.Unlock()

	// Leader path. The marker is cleared and waiters released even if
	// compute panics.
	var (
		res pricing.QuoteResult
		err error
	)
	defer func() {
		s.mu.Lock()
		delete(s.inflight, key)
		s.mu.Unlock()
		close(f.done)
	}()

	res, err = compute(ctx)
	if err != nil {
		return res, false, err
	}
	if serr := s.store.Set(ctx, key, Entry{Response: res, CreatedAt: time.Now()}, s.ttl); serr != nil {
		log.Printf("quotecache: set %s: %v", key, serr)
	}
	return res, false, nil
}

// waitForLeader blocks until the in-flight computation for key finishes, the
// wait budget runs out, or the caller's context ends. Budget exhaustion and a
// failed leader both fall through to an independent computation.
func (s *Service) waitForLeader(ctx context.Context, key string, f *flight, compute func(context.Context) (pricing.QuoteResult, error)) (pricing.QuoteResult, bool, error) {
	timer := time.NewTimer(s.waitBudget)
	defer timer.Stop()

	select {
	case <-f.done:
		if e, ok, err := s.store.Get(ctx, key); err == nil && ok {
			return e.Response, true, nil
		}
	case <-timer.C:
		log.Printf("quotecache: wait budget exhausted for %s, computing independently", key)
	case <-ctx.Done():
		return pricing.QuoteResult{}, false, ctx.Err()
	}

	res, err := compute(ctx)
	return res, false, err
}

// RunSweeper periodically removes expired cache entries and abandoned
// in-flight markers until ctx is done.
func (s *Service) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(sweepTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			if err := s.store.Sweep(ctx, now); err != nil {
				log.Printf("quotecache: sweep: %v", err)
			}
			s.sweepInflight(now)
		}
	}
}

// sweepInflight drops markers whose leader has apparently died. The leader's
// own deferred cleanup still closes the channel; dropping the marker only
// lets new requests start a fresh computation.
func (s *Service) sweepInflight(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, f := range s.inflight {
		if now.Sub(f.startedAt) > abandonAfter {
			log.Printf("quotecache: dropping abandoned in-flight marker %s", key)
			delete(s.inflight, key)
		}
	}
}
