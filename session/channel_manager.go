package session

import (
	"fmt"
	"sync"
	"time"
)

// ChannelManager handles secure-channel lifecycle, storage, and cleanup.
// Replay protection now lives in auth.NonceStore, keyed by DID rather than
// by the transport-level keyid this manager used to track.
type ChannelManager struct {
    sessions       map[string]SecureChannel
    mu             sync.RWMutex
    cleanupTicker  *time.Ticker
    stopCleanup    chan struct{}
    defaultConfig  Config
}

// NewChannelManager creates a new channel manager with default configuration
func NewChannelManager() *ChannelManager {
    m := &ChannelManager{
        sessions:     make(map[string]SecureChannel),
        stopCleanup:  make(chan struct{}),
        defaultConfig: Config{
            MaxAge:      time.Hour,        // 1-hour absolute expiration
            IdleTimeout: 10 * time.Minute, // 10-minute idle timeout
            MaxMessages: 1000,
        },
    }

    // Start background cleanup every 30 seconds
    m.cleanupTicker = time.NewTicker(30 * time.Second)
    go m.runCleanup()

    return m
}

// CreateSession creates a new channel with the given shared secret
func (m *ChannelManager) CreateSession(sessionID string, sharedSecret []byte) (SecureChannel, error) {
    return m.CreateSessionWithConfig(sessionID, sharedSecret, m.defaultConfig)
}

// EnsureSessionWithParams computes a deterministic sessionID and creates the channel.
func (m *ChannelManager) EnsureSessionWithParams(p Params, cfg *Config) (SecureChannel, string, bool, error) {
	seed, err := DeriveSessionSeed(p.SharedSecret, p)
	if err != nil {
		return nil, "", false, fmt.Errorf("derive seed: %w", err)
	}
	sid, err := ComputeSessionIDFromSeed(seed, p.Label)
	if err != nil {
		return nil, "", false, fmt.Errorf("compute id: %w", err)
	}

	// Fast path
	m.mu.RLock()
	if s, ok := m.sessions[sid]; ok {
		m.mu.RUnlock()
		return s, sid, true, nil
	}
	m.mu.RUnlock()

	newCfg := m.defaultConfig
	if cfg != nil {
		newCfg = withDefaults(*cfg)
	}
	s, err := NewSecureChannel(sid, seed, newCfg)
	if err != nil {
		return nil, "", false, fmt.Errorf("new secure channel: %w", err)
	}

	// Double-checked put
	m.mu.Lock()
	if exist, ok := m.sessions[sid]; ok {
		m.mu.Unlock()
		_ = s.Close()
		return exist, sid, true, nil
	}
	m.sessions[sid] = s
	m.mu.Unlock()

	return s, sid, false, nil
}

// CreateSessionWithConfig creates a new channel with custom configuration
func (m *ChannelManager) CreateSessionWithConfig(sessionID string, sharedSecret []byte, config Config) (SecureChannel, error) {
    m.mu.Lock()
    defer m.mu.Unlock()

    // Check if a channel already exists under this ID
    if _, exists := m.sessions[sessionID]; exists {
        return nil, fmt.Errorf("session %s already exists", sessionID)
    }

    // Create new crypto channel
    sess, err := NewSecureChannel(sessionID, sharedSecret, config)
    if err != nil {
        return nil, fmt.Errorf("failed to create session: %w", err)
    }

    // Store in manager
    m.sessions[sessionID] = sess

    return sess, nil
}

// GetSession retrieves a channel by ID, returns nil if not found or expired
func (m *ChannelManager) GetSession(sessionID string) (SecureChannel, bool) {
    m.mu.RLock()
    sess, exists := m.sessions[sessionID]
    m.mu.RUnlock()

    if !exists {
        return nil, false
    }

    if sess.IsExpired() {
        // Remove expired channel
        m.RemoveSession(sessionID)
        return nil, false
    }

    return sess, true
}

// RemoveSession removes a channel.
func (m *ChannelManager) RemoveSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sess, exists := m.sessions[sessionID]; exists {
		sess.Close()
		delete(m.sessions, sessionID)
	}
}

// ListSessions returns all active channel IDs
func (m *ChannelManager) ListSessions() []string {
    m.mu.RLock()
    defer m.mu.RUnlock()

    var sessionIDs []string
    for id := range m.sessions {
        sessionIDs = append(sessionIDs, id)
    }

    return sessionIDs
}

// GetSessionCount returns the number of active channels
func (m *ChannelManager) GetSessionCount() int {
    m.mu.RLock()
    defer m.mu.RUnlock()
    return len(m.sessions)
}

// GetSessionStats returns statistics about channels
func (m *ChannelManager) GetSessionStats() Status {
    m.mu.RLock()
    defer m.mu.RUnlock()

    stats := Status{
        TotalSessions: len(m.sessions),
        ActiveSessions: 0,
        ExpiredSessions: 0,
    }

    for _, sess := range m.sessions {
        if sess.IsExpired() {
            stats.ExpiredSessions++
        } else {
            stats.ActiveSessions++
        }
    }

    return stats
}

// SetDefaultConfig updates the default channel configuration
func (m *ChannelManager) SetDefaultConfig(config Config) {
    m.defaultConfig = config
}

// Close stops the manager and cleans up all channels.
func (m *ChannelManager) Close() error {
	close(m.stopCleanup)
	if m.cleanupTicker != nil {
		m.cleanupTicker.Stop()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sess := range m.sessions {
		sess.Close()
	}
	m.sessions = make(map[string]SecureChannel)
	return nil
}

// runCleanup runs in background to remove expired channels
func (m *ChannelManager) runCleanup() {
    for {
        select {
        case <-m.cleanupTicker.C:
            m.cleanupExpiredSessions()
        case <-m.stopCleanup:
            return
        }
    }
}

// cleanupExpiredSessions removes expired channels
func (m *ChannelManager) cleanupExpiredSessions() {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expiredIDs []string
	for id, sess := range m.sessions {
		if sess.IsExpired() {
			expiredIDs = append(expiredIDs, id)
		}
	}
	for _, id := range expiredIDs {
		if sess, exists := m.sessions[id]; exists {
			sess.Close()
			delete(m.sessions, id)
		}
	}
	if len(expiredIDs) > 0 {
		fmt.Printf("Cleaned up %d expired sessions\n", len(expiredIDs))
	}
}

func withDefaults(c Config) Config {
    if c.MaxAge == 0 {
        c.MaxAge = time.Hour // default 1 hour
    }
    if c.IdleTimeout == 0 {
        c.IdleTimeout = 10 * time.Minute // default 10 minutes
    }
    if c.MaxMessages == 0 {
        c.MaxMessages = 1000 // default max message count
    }
    return c
}
