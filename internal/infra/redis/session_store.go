package redis

import (
	"context"
	"sync"
	"time"

	"trivia-quiz/internal/app"

	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Runners own goroutines and timers, so they stay in a local map; Redis only
// carries a liveness marker per session that operators (and other instances)
// can inspect. The marker expires on its own if this process dies.
type SessionStore struct {
	client    *redis.Client
	ttl       time.Duration
	opTimeout time.Duration
	mu        sync.RWMutex
	sessions  map[string]*app.Runner
}

const defaultMarkerTimeout = 500 * time.Millisecond

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:    client,
		ttl:       ttl,
		opTimeout: defaultMarkerTimeout,
		sessions:  make(map[string]*app.Runner),
	}
}

// WithMarkerTimeout bounds each liveness round-trip.
func (s *SessionStore) WithMarkerTimeout(d time.Duration) *SessionStore {
	if d > 0 {
		s.opTimeout = d
	}
	return s
}

// Redis is touched outside the lock so a slow server never stalls lookups.
func (s *SessionStore) Put(r *app.Runner) {
	s.mu.Lock()
	s.sessions[r.ID()] = r
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.opTimeout)
	defer cancel()
	// best-effort liveness marker
	_ = s.client.Set(ctx, s.key(r.ID()), r.View().Category, s.ttl).Err()
}

func (s *SessionStore) Get(id string) (*app.Runner, bool) {
	s.mu.RLock()
	r, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		ctx, cancel := context.WithTimeout(context.Background(), s.opTimeout)
		defer cancel()
		_ = s.client.Expire(ctx, s.key(id), s.ttl).Err()
	}
	return r, ok
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.opTimeout)
	defer cancel()
	_ = s.client.Del(ctx, s.key(id)).Err()
}

func (s *SessionStore) List() []*app.Runner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*app.Runner, 0, len(s.sessions))
	for _, r := range s.sessions {
		out = append(out, r)
	}
	return out
}

func (s *SessionStore) key(id string) string {
	return "quiz:session:" + id
}
