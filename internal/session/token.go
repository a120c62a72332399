package session

import (
	"context"
	"errors"
	"sync"
)

// CanonicalKey is where tokens are written.
const CanonicalKey = "glycofy.token"

// LegacyKeys are read after CanonicalKey, in this order, so tokens saved
// by older clients keep working.
var LegacyKeys = []string{"access_token", "token", "auth_token", "jwt"}

// TokenStore persists the auth token. It never inspects expiry; a token is
// dropped on logout or when the backend answers 401.
type TokenStore struct {
	kv KV
}

func NewTokenStore(kv KV) *TokenStore {
	return &TokenStore{kv: kv}
}

// Get returns the first non-empty token among the canonical and legacy keys.
func (s *TokenStore) Get(ctx context.Context) (string, error) {
	for _, key := range append([]string{CanonicalKey}, LegacyKeys...) {
		v, ok, err := s.kv.Get(ctx, key)
		if err != nil {
			return "", err
		}
		if ok && v != "" {
			return v, nil
		}
	}
	return "", nil
}

// Set writes the canonical key only.
func (s *TokenStore) Set(ctx context.Context, token string) error {
	return s.kv.Set(ctx, CanonicalKey, token)
}

// Clear removes the canonical and every legacy key.
func (s *TokenStore) Clear(ctx context.Context) error {
	var errs []error
	for _, key := range append([]string{CanonicalKey}, LegacyKeys...) {
		if err := s.kv.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Session is the credential the API client authenticates with. It caches
// the token in memory and writes changes through to its store.
type Session struct {
	mu    sync.RWMutex
	token string
	store *TokenStore
}

// Load reads the stored token into a new Session. store may be nil for a
// purely in-memory session.
func Load(ctx context.Context, store *TokenStore) (*Session, error) {
	s := &Session{store: store}
	if store == nil {
		return s, nil
	}
	tok, err := store.Get(ctx)
	if err != nil {
		return nil, err
	}
	s.token = tok
	return s, nil
}

// Token returns the current token, or "" when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether a token is held.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// SetToken replaces the token and persists it.
func (s *Session) SetToken(ctx context.Context, token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	if s.store == nil {
		return nil
	}
	return s.store.Set(ctx, token)
}

// Clear drops the token in memory and in the store.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	if s.store == nil {
		return nil
	}
	return s.store.Clear(ctx)
}
