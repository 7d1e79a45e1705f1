package cache

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ppiankov/lossreport/internal/observability"
	"github.com/ppiankov/lossreport/internal/workflow"
)

// entry guards one session. busy is held for the whole of an action;
// mu only while reading or writing the value.
type entry struct {
	busy    sync.Mutex
	mu      sync.RWMutex
	session workflow.Session
}

func (e *entry) load() workflow.Session {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.session
}

// MemoryStore keeps sessions in memory and expires them after a period of
// inactivity.
type MemoryStore struct {
	cache   *gocache.Cache
	ttl     time.Duration
	metrics *observability.Metrics
}

// NewMemoryStore creates a session store. Expired sessions are swept every
// cleanupInterval.
func NewMemoryStore(ttl, cleanupInterval time.Duration, metrics *observability.Metrics) *MemoryStore {
	s := &MemoryStore{
		cache:   gocache.New(ttl, cleanupInterval),
		ttl:     ttl,
		metrics: metrics,
	}
	s.cache.OnEvicted(func(string, interface{}) { s.updateGauge() })
	return s
}

// Create stores a new session.
func (s *MemoryStore) Create(session workflow.Session) {
	s.cache.Set(session.ID, &entry{session: session}, s.ttl)
	s.updateGauge()
}

// Get returns a snapshot of the session.
func (s *MemoryStore) Get(id string) (workflow.Session, error) {
	e, ok := s.lookup(id)
	if !ok {
		return workflow.Session{}, ErrNotFound
	}
	return e.load(), nil
}

// Acquire claims the session for one action. It fails with ErrBusy instead
// of waiting when another action holds it.
func (s *MemoryStore) Acquire(id string) (*Lease, error) {
	e, ok := s.lookup(id)
	if !ok {
		return nil, ErrNotFound
	}
	if !e.busy.TryLock() {
		return nil, ErrBusy
	}
	return &Lease{store: s, id: id, entry: e}, nil
}

// Delete removes the session.
func (s *MemoryStore) Delete(id string) {
	s.cache.Delete(id)
}

// Len returns the number of live sessions.
func (s *MemoryStore) Len() int {
	return s.cache.ItemCount()
}

func (s *MemoryStore) lookup(id string) (*entry, bool) {
	v, found := s.cache.Get(id)
	if !found {
		return nil, false
	}
	return v.(*entry), true
}

func (s *MemoryStore) updateGauge() {
	if s.metrics != nil {
		s.metrics.ActiveSessions.Set(float64(s.cache.ItemCount()))
	}
}

// Lease is exclusive access to one session for the duration of an action.
type Lease struct {
	store *MemoryStore
	id    string
	entry *entry
	once  sync.Once
}

// Session returns the leased session.
func (l *Lease) Session() workflow.Session {
	return l.entry.load()
}

// Commit replaces the stored session and refreshes its expiry.
func (l *Lease) Commit(session workflow.Session) {
	l.entry.mu.Lock()
	l.entry.session = session
	l.entry.mu.Unlock()
	l.store.cache.Set(l.id, l.entry, l.store.ttl)
}

// Release ends the lease. It is safe to call more than once.
func (l *Lease) Release() {
	l.once.Do(l.entry.busy.Unlock)
}
