package synapse

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// Scope selects which acquisition call supplies a request's token
type Scope string

const (
	ScopeNone   Scope = ""
	ScopeTenant Scope = "tenant"
	ScopeUser   Scope = "user"
	ScopeEither Scope = "either"
)

// ParseScope converts a string into a Scope, returning false for unknown values
func ParseScope(s string) (Scope, bool) {
	switch Scope(s) {
	case ScopeNone, ScopeTenant, ScopeUser, ScopeEither:
		return Scope(s), true
	}
	return ScopeNone, false
}

// TokenFunc acquires a token. Generated clients pass method values such as
// c.tokens.TenantToken.
type TokenFunc func(ctx context.Context) (string, error)

// TokenProvider is the default token manager contract: one acquisition call
// per scope.
type TokenProvider interface {
	TenantToken(ctx context.Context) (string, error)
	UserToken(ctx context.Context) (string, error)
}

// StaticTokens returns fixed tokens. Useful for tests and service accounts.
type StaticTokens struct {
	Tenant string
	User   string
}

func (s StaticTokens) TenantToken(context.Context) (string, error) { return s.Tenant, nil }
func (s StaticTokens) UserToken(context.Context) (string, error)   { return s.User, nil }

// CachingTokenProvider caches tokens from another provider. JWTs are cached
// until shortly before their exp claim; opaque tokens use the fallback TTL.
// Concurrent misses for the same scope share one acquisition; a caller
// whose context ends stops waiting on it.
type CachingTokenProvider struct {
	next        TokenProvider
	cache       *gocache.Cache
	group       singleflight.Group
	fallbackTTL time.Duration
	skew        time.Duration
}

// NewCachingTokenProvider wraps next with a token cache
func NewCachingTokenProvider(next TokenProvider, fallbackTTL time.Duration) *CachingTokenProvider {
	return &CachingTokenProvider{
		next:        next,
		cache:       gocache.New(fallbackTTL, time.Minute),
		fallbackTTL: fallbackTTL,
		skew:        30 * time.Second,
	}
}

// TenantToken returns the cached tenant token or acquires a new one
func (p *CachingTokenProvider) TenantToken(ctx context.Context) (string, error) {
	return p.get(ctx, ScopeTenant, p.next.TenantToken)
}

// UserToken returns the cached user token or acquires a new one
func (p *CachingTokenProvider) UserToken(ctx context.Context) (string, error) {
	return p.get(ctx, ScopeUser, p.next.UserToken)
}

// Invalidate drops the cached token for scope, e.g. after a 401
func (p *CachingTokenProvider) Invalidate(scope Scope) {
	p.cache.Delete(string(scope))
}

func (p *CachingTokenProvider) get(ctx context.Context, scope Scope, fetch TokenFunc) (string, error) {
	key := string(scope)
	if v, ok := p.cache.Get(key); ok {
		return v.(string), nil
	}

	ch := p.group.DoChan(key, func() (any, error) {
		token, err := fetch(ctx)
		if err != nil {
			return "", err
		}
		if ttl, ok := p.ttl(token); ok {
			p.cache.Set(key, token, ttl)
		}
		return token, nil
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// ttl reports how long token may be cached. Empty and already expired
// tokens are not cached.
func (p *CachingTokenProvider) ttl(token string) (time.Duration, bool) {
	if token == "" {
		return 0, false
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil || claims.ExpiresAt == nil {
		return p.fallbackTTL, p.fallbackTTL > 0
	}

	d := time.Until(claims.ExpiresAt.Time) - p.skew
	if d <= 0 {
		return 0, false
	}
	return d, true
}
