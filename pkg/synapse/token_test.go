package synapse

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTokens struct {
	tenant  string
	user    string
	err     error
	calls   atomic.Int32
	release chan struct{}
}

func (c *countingTokens) TenantToken(context.Context) (string, error) {
	c.calls.Add(1)
	if c.release != nil {
		<-c.release
	}
	return c.tenant, c.err
}

func (c *countingTokens) UserToken(context.Context) (string, error) {
	c.calls.Add(1)
	return c.user, c.err
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "svc",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestParseScope(t *testing.T) {
	testCases := map[string]struct {
		want Scope
		ok   bool
	}{
		"":       {ScopeNone, true},
		"tenant": {ScopeTenant, true},
		"user":   {ScopeUser, true},
		"either": {ScopeEither, true},
		"admin":  {ScopeNone, false},
	}
	for in, tc := range testCases {
		got, ok := ParseScope(in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseScope(%q) = (%q, %v), want (%q, %v)", in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestCachingTokenProvider_CachesJWTUntilExpiry(t *testing.T) {
	next := &countingTokens{tenant: signedToken(t, time.Now().Add(time.Hour))}
	p := NewCachingTokenProvider(next, 0)

	first, err := p.TenantToken(context.Background())
	require.NoError(t, err)
	second, err := p.TenantToken(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), next.calls.Load())

	p.Invalidate(ScopeTenant)
	_, err = p.TenantToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), next.calls.Load())
}

func TestCachingTokenProvider_ExpiredJWTNotCached(t *testing.T) {
	next := &countingTokens{user: signedToken(t, time.Now().Add(10*time.Second))}
	p := NewCachingTokenProvider(next, time.Hour)

	for i := 0; i < 3; i++ {
		_, err := p.UserToken(context.Background())
		require.NoError(t, err)
	}
	// exp falls inside the refresh skew, so every call goes to the source
	assert.Equal(t, int32(3), next.calls.Load())
}

func TestCachingTokenProvider_OpaqueTokens(t *testing.T) {
	t.Run("fallback ttl caches", func(t *testing.T) {
		next := &countingTokens{tenant: "opaque-token"}
		p := NewCachingTokenProvider(next, time.Minute)

		for i := 0; i < 3; i++ {
			got, err := p.TenantToken(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "opaque-token", got)
		}
		assert.Equal(t, int32(1), next.calls.Load())
	})

	t.Run("no fallback ttl", func(t *testing.T) {
		next := &countingTokens{tenant: "opaque-token"}
		p := NewCachingTokenProvider(next, 0)

		for i := 0; i < 2; i++ {
			_, err := p.TenantToken(context.Background())
			require.NoError(t, err)
		}
		assert.Equal(t, int32(2), next.calls.Load())
	})

	t.Run("empty token not cached", func(t *testing.T) {
		next := &countingTokens{}
		p := NewCachingTokenProvider(next, time.Minute)

		for i := 0; i < 2; i++ {
			got, err := p.TenantToken(context.Background())
			require.NoError(t, err)
			assert.Empty(t, got)
		}
		assert.Equal(t, int32(2), next.calls.Load())
	})
}

func TestCachingTokenProvider_ScopesAreSeparate(t *testing.T) {
	next := &countingTokens{tenant: "t", user: "u"}
	p := NewCachingTokenProvider(next, time.Minute)

	tenant, err := p.TenantToken(context.Background())
	require.NoError(t, err)
	user, err := p.UserToken(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "t", tenant)
	assert.Equal(t, "u", user)
}

func TestCachingTokenProvider_PropagatesErrors(t *testing.T) {
	boom := errors.New("denied")
	p := NewCachingTokenProvider(&countingTokens{err: boom}, time.Minute)

	_, err := p.TenantToken(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestCachingTokenProvider_SharesConcurrentMisses(t *testing.T) {
	next := &countingTokens{tenant: "shared", release: make(chan struct{})}
	p := NewCachingTokenProvider(next, time.Minute)

	var wg sync.WaitGroup
	results := make([]string, 10)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = p.TenantToken(context.Background())
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(next.release)
	wg.Wait()

	assert.Equal(t, int32(1), next.calls.Load())
	for _, r := range results {
		assert.Equal(t, "shared", r)
	}
}

func TestCachingTokenProvider_WaiterHonoursOwnContext(t *testing.T) {
	next := &countingTokens{tenant: "slow", release: make(chan struct{})}
	p := NewCachingTokenProvider(next, time.Minute)

	first := make(chan string, 1)
	go func() {
		token, _ := p.TenantToken(context.Background())
		first <- token
	}()
	require.Eventually(t, func() bool { return next.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := p.TenantToken(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 400*time.Millisecond)

	close(next.release)
	assert.Equal(t, "slow", <-first)
	assert.Equal(t, int32(1), next.calls.Load())
}
