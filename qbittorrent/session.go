package qbittorrent

import (
	"sync"
	"time"
)

// DefaultSessionTTL is how long a session cookie is trusted before the
// client logs in again.
const DefaultSessionTTL = 30 * time.Minute

// sessionCache holds the current session token and its acquisition time.
// An empty token is a valid cached value: some server configurations
// complete the login exchange without issuing a cookie.
type sessionCache struct {
	mu         sync.Mutex
	token      string
	acquiredAt time.Time
	ttl        time.Duration
	now        func() time.Time
}

func newSessionCache(ttl time.Duration) *sessionCache {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &sessionCache{ttl: ttl, now: time.Now}
}

// Get returns the cached token if it is still within the TTL.
func (s *sessionCache) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.acquiredAt.IsZero() || s.now().Sub(s.acquiredAt) >= s.ttl {
		return "", false
	}
	return s.token, true
}

// Set records the token and the current time.
func (s *sessionCache) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.acquiredAt = s.now()
}

// Invalidate clears the cached token.
func (s *sessionCache) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.acquiredAt = time.Time{}
}
