package payment

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL bounds how long a login token is reused.
const DefaultTokenTTL = 10 * time.Minute

var ErrMissingToken = errors.New("login response did not include a token")

// Token is a cached bearer token. Key identifies the credentials it was
// issued for.
type Token struct {
	Value     string
	Key       string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenCache holds at most one token for the adapter that owns it. Two
// callers that both find it stale will both log in; the later Store wins.
type TokenCache struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	token *Token
}

func NewTokenCache(ttl time.Duration, now func() time.Time) *TokenCache {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if now == nil {
		now = time.Now
	}
	return &TokenCache{ttl: ttl, now: now}
}

// Get returns the cached token for key while it is still valid.
func (c *TokenCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == nil || c.token.Key != key {
		return "", false
	}
	if !c.now().Before(c.token.ExpiresAt) {
		return "", false
	}
	return c.token.Value, true
}

// Store caches value, issued now. A JWT whose exp is earlier than the TTL
// expires at exp instead.
func (c *TokenCache) Store(key, value string) Token {
	issued := c.now()
	tok := Token{
		Value:     value,
		Key:       key,
		IssuedAt:  issued,
		ExpiresAt: issued.Add(c.ttl),
	}
	if exp, ok := jwtExpiry(value); ok && exp.Before(tok.ExpiresAt) {
		tok.ExpiresAt = exp
	}

	c.mu.Lock()
	c.token = &tok
	c.mu.Unlock()
	return tok
}

func (c *TokenCache) Clear() {
	c.mu.Lock()
	c.token = nil
	c.mu.Unlock()
}

// Token returns a valid cached token or calls login and caches its result.
// The lock is not held during login.
func (c *TokenCache) Token(ctx context.Context, key string, login func(ctx context.Context) (string, error)) (string, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := login(ctx)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", ErrMissingToken
	}
	c.Store(key, v)
	return v, nil
}

// jwtExpiry reads exp without verifying the signature; the token is only
// inspected for scheduling, never trusted.
func jwtExpiry(value string) (time.Time, bool) {
	tok, _, err := jwt.NewParser().ParseUnverified(value, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := tok.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
