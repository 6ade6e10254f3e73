package repository

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/fieldtrials/pkg/metrics"
)

// Defaults for MemoryStore.
const (
	DefaultTTL           = 30 * time.Minute
	DefaultMaxSessions   = 256
	DefaultSweepInterval = time.Minute
)

// MemoryStore is an in-memory Store with idle expiry and an LRU cap.
type MemoryStore struct {
	mu    sync.Mutex
	byID  map[string]*list.Element
	order *list.List // front is most recently used

	ttl           time.Duration
	maxSessions   int
	sweepInterval time.Duration
	now           func() time.Time

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore constructs a store and starts its background sweeper, which
// stops when ctx is done or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		byID:          make(map[string]*list.Element),
		order:         list.New(),
		ttl:           DefaultTTL,
		maxSessions:   DefaultMaxSessions,
		sweepInterval: DefaultSweepInterval,
		now:           time.Now,
		stopChan:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startSweeper(ctx)
	return s
}

// Close stops the sweeper.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// Put implements Store.Put.
func (s *MemoryStore) Put(ctx context.Context, sess Session) (Session, error) {
	if sess.Table == nil {
		return Session{}, ErrInvalidTable
	}
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	now := s.now()
	sess.CreatedAt, sess.LastAccess = now, now

	s.mu.Lock()
	if el, ok := s.byID[sess.ID]; ok {
		s.order.Remove(el)
		delete(s.byID, sess.ID)
	}
	evicted := 0
	for s.order.Len() >= s.maxSessions {
		s.removeElement(s.order.Back())
		evicted++
	}
	s.byID[sess.ID] = s.order.PushFront(&sess)
	count := s.order.Len()
	s.mu.Unlock()

	if evicted > 0 {
		metrics.RecordSessionsEvicted(evicted)
	}
	metrics.UpdateSessionsActive(count)
	return sess, nil
}

// Get implements Store.Get.
func (s *MemoryStore) Get(ctx context.Context, id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.byID[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	sess := el.Value.(*Session)
	now := s.now()
	if s.expired(sess, now) {
		s.removeElement(el)
		metrics.RecordSessionsEvicted(1)
		metrics.UpdateSessionsActive(s.order.Len())
		return Session{}, ErrNotFound
	}
	sess.LastAccess = now
	s.order.MoveToFront(el)
	return *sess, nil
}

// Delete implements Store.Delete.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	el, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.removeElement(el)
	count := s.order.Len()
	s.mu.Unlock()

	metrics.UpdateSessionsActive(count)
	return nil
}

// Count implements Store.Count.
func (s *MemoryStore) Count(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// Sweep implements Store.Sweep. Expired sessions gather at the back of the
// LRU list, so the walk stops at the first live one.
func (s *MemoryStore) Sweep(ctx context.Context) int {
	s.mu.Lock()
	now := s.now()
	removed := 0
	for el := s.order.Back(); el != nil; {
		if !s.expired(el.Value.(*Session), now) {
			break
		}
		prev := el.Prev()
		s.removeElement(el)
		removed++
		el = prev
	}
	count := s.order.Len()
	s.mu.Unlock()

	if removed > 0 {
		metrics.RecordSessionsEvicted(removed)
	}
	metrics.UpdateSessionsActive(count)
	return removed
}

func (s *MemoryStore) expired(sess *Session, now time.Time) bool {
	return now.Sub(sess.LastAccess) > s.ttl
}

// removeElement assumes the lock is held.
func (s *MemoryStore) removeElement(el *list.Element) {
	sess := el.Value.(*Session)
	delete(s.byID, sess.ID)
	s.order.Remove(el)
}

func (s *MemoryStore) startSweeper(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.Sweep(ctx)
			}
		}
	}()
}
