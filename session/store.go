package session

import (
	"sync"
	"time"

	"github.com/sage-x-project/anp/internal/metrics"
)

// Session is a per-DID, in-memory key/value scratchpad a registered RPC
// method can use to carry state across calls from the same caller (e.g. a
// meta-protocol negotiation's accumulated state). Two different DIDs never
// observe each other's keys; there is no cross-DID lookup path.
type Session struct {
	did        string
	mu         sync.RWMutex
	data       map[string]interface{}
	lastUsedAt time.Time
}

func newSession(did string) *Session {
	return &Session{
		did:        did,
		data:       make(map[string]interface{}),
		lastUsedAt: time.Now(),
	}
}

// DID returns the identity this session scratchpad belongs to.
func (s *Session) DID() string {
	return s.did
}

// Set stores value under key, overwriting any prior value.
func (s *Session) Set(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	s.lastUsedAt = time.Now()
}

// Get returns the value stored under key, or def if key was never set (or
// was removed).
func (s *Session) Get(key string, def interface{}) interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return def
	}
	return v
}

// Delete removes key, if present.
func (s *Session) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

func (s *Session) idleSince() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.lastUsedAt)
}

// Store hands out one Session per DID, creating it on first use. It
// satisfies rpc.SessionProvider structurally (GetOrCreate returns
// interface{}), so the rpc package never needs to import this one.
type Store struct {
	mu         sync.Mutex
	sessions   map[string]*Session
	idleExpiry time.Duration
	tick       *time.Ticker
	stop       chan struct{}
}

// NewStore creates a Store that evicts a DID's session after it has been
// idle longer than idleExpiry. idleExpiry <= 0 disables eviction.
func NewStore(idleExpiry time.Duration) *Store {
	st := &Store{
		sessions:   make(map[string]*Session),
		idleExpiry: idleExpiry,
	}
	if idleExpiry > 0 {
		st.tick = time.NewTicker(idleExpiry)
		st.stop = make(chan struct{})
		go st.gcLoop()
	}
	return st
}

// GetOrCreateSession returns the existing Session for did, creating an
// empty one on first use.
func (st *Store) GetOrCreateSession(did string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[did]
	if !ok {
		s = newSession(did)
		st.sessions[did] = s
		metrics.SessionsCreated.WithLabelValues("success").Inc()
		metrics.SessionsActive.Inc()
	}
	return s
}

// GetOrCreate implements rpc.SessionProvider.
func (st *Store) GetOrCreate(did string) interface{} {
	return st.GetOrCreateSession(did)
}

// Delete drops did's session entirely.
func (st *Store) Delete(did string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[did]; ok {
		delete(st.sessions, did)
		metrics.SessionsClosed.Inc()
		metrics.SessionsActive.Dec()
	}
}

// Count returns the number of DIDs currently holding a session.
func (st *Store) Count() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Close stops background eviction. Held sessions are left as-is; they are
// plain in-memory maps with nothing to release.
func (st *Store) Close() {
	if st.tick == nil {
		return
	}
	st.tick.Stop()
	close(st.stop)
}

func (st *Store) gcLoop() {
	for {
		select {
		case <-st.tick.C:
			st.evictIdle()
		case <-st.stop:
			return
		}
	}
}

func (st *Store) evictIdle() {
	st.mu.Lock()
	defer st.mu.Unlock()
	for did, s := range st.sessions {
		if s.idleSince() >= st.idleExpiry {
			delete(st.sessions, did)
			metrics.SessionsExpired.Inc()
			metrics.SessionsActive.Dec()
		}
	}
}
