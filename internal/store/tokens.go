package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TokenRegistry tracks which access tokens are currently valid and when
// they stop being valid. Tokens are opaque: the registry alone maps a
// token back to its username.
type TokenRegistry interface {
	// Issue creates a new token for username, valid until the returned time
	Issue(ctx context.Context, username string) (string, time.Time, error)
	// Validate resolves a token to its username. Returns ErrTokenNotFound
	// for unknown tokens and ErrTokenExpired for tokens past their TTL.
	Validate(ctx context.Context, token string) (string, error)
	// Revoke deletes a token. Returns ErrTokenNotFound if absent.
	Revoke(ctx context.Context, token string) error
}

type tokenRecord struct {
	username  string
	expiresAt time.Time
}

// MemoryTokenRegistry is the default in-process registry. Expired entries
// are evicted lazily on Validate; an optional background sweeper can be
// started to reclaim entries that are never looked up again.
type MemoryTokenRegistry struct {
	mu     sync.Mutex
	tokens map[string]tokenRecord
	ttl    time.Duration
	now    func() time.Time

	sweepStop chan struct{}
	sweepDone chan struct{}
}

// NewMemoryTokenRegistry creates a registry issuing tokens with the given TTL
func NewMemoryTokenRegistry(ttl time.Duration) *MemoryTokenRegistry {
	return &MemoryTokenRegistry{
		tokens: make(map[string]tokenRecord),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue creates a crypto-random opaque token for username. The token
// itself carries no information; the username mapping lives only here.
func (r *MemoryTokenRegistry) Issue(_ context.Context, username string) (string, time.Time, error) {
	token := uuid.NewString()
	expiresAt := r.now().Add(r.ttl).UTC()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = tokenRecord{username: username, expiresAt: expiresAt}
	return token, expiresAt, nil
}

// Validate resolves a token to its username, lazily evicting it when
// expired. The first lookup after expiry reports ErrTokenExpired;
// later lookups see an absent token and report ErrTokenNotFound.
func (r *MemoryTokenRegistry) Validate(_ context.Context, token string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.tokens[token]
	if !ok {
		return "", ErrTokenNotFound
	}
	if r.now().After(record.expiresAt) {
		delete(r.tokens, token)
		return "", ErrTokenExpired
	}
	return record.username, nil
}

// Revoke deletes a token from the registry
func (r *MemoryTokenRegistry) Revoke(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[token]; !ok {
		return ErrTokenNotFound
	}
	delete(r.tokens, token)
	return nil
}

// Sweep removes all expired entries and returns how many were evicted
func (r *MemoryTokenRegistry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	evicted := 0
	for token, record := range r.tokens {
		if now.After(record.expiresAt) {
			delete(r.tokens, token)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of entries currently held, expired or not
func (r *MemoryTokenRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}

// StartSweeper runs Sweep on the given interval until StopSweeper is called
func (r *MemoryTokenRegistry) StartSweeper(interval time.Duration, logger *logrus.Logger) {
	r.sweepStop = make(chan struct{})
	r.sweepDone = make(chan struct{})

	go func() {
		defer close(r.sweepDone)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if evicted := r.Sweep(); evicted > 0 {
					logger.WithField("evicted", evicted).Debug("Swept expired tokens")
				}
			case <-r.sweepStop:
				return
			}
		}
	}()
}

// StopSweeper stops the background sweeper and waits for it to exit
func (r *MemoryTokenRegistry) StopSweeper() {
	if r.sweepStop == nil {
		return
	}
	close(r.sweepStop)
	<-r.sweepDone
	r.sweepStop = nil
}
