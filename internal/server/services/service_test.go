package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/focustodo/internal/common"
	"github.com/dmitrijs2005/focustodo/internal/server/auth"
	"github.com/dmitrijs2005/focustodo/internal/server/metrics"
	"github.com/dmitrijs2005/focustodo/internal/server/ratelimit"
	"github.com/dmitrijs2005/focustodo/internal/server/repositories/repomanager"
)

// --- helpers ---

var testNow = time.Date(2026, time.May, 4, 12, 0, 0, 0, time.UTC)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

// denyLimiter rejects every call of the listed operations.
type denyLimiter struct {
	ops   map[string]bool
	retry time.Duration
	calls []string
}

func (l *denyLimiter) Allow(name, key string) (bool, time.Duration) {
	l.calls = append(l.calls, name+":"+key)
	if l.ops[name] {
		return false, l.retry
	}
	return true, 0
}

type testEnv struct {
	repos *repomanager.MemoryRepositoryManager
	clock *fakeClock
	deps  Deps
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	clock := &fakeClock{t: testNow}
	repos := repomanager.NewMemoryRepositoryManager()
	return &testEnv{
		repos: repos,
		clock: clock,
		deps: Deps{
			Repos:   repos,
			Metrics: metrics.New(),
			Clock:   clock.Now,
		},
	}
}

func userCtx(userID string) context.Context {
	return auth.WithUserID(context.Background(), userID)
}

func TestAdmit_RateLimitError(t *testing.T) {
	lim := &denyLimiter{ops: map[string]bool{ratelimit.CreateTodo: true}, retry: 1500 * time.Millisecond}
	b := newBase(Deps{Limiter: lim, Metrics: metrics.New()})

	err := b.admit(ratelimit.CreateTodo, "u1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrRateLimited))

	var rl *common.RateLimitError
	require.True(t, errors.As(err, &rl))
	assert.Equal(t, 2, rl.RetryAfterSeconds())
	assert.Equal(t, "Rate limit exceeded. Please try again in 2 seconds.", err.Error())
	assert.Equal(t, []string{"createTodo:u1"}, lim.calls)

	require.NoError(t, b.admit(ratelimit.UpdateTodo, "u1"))
}

func TestBegin_Unauthenticated(t *testing.T) {
	lim := &denyLimiter{}
	b := newBase(Deps{Limiter: lim})

	_, err := b.begin(context.Background(), ratelimit.CreateTodo)
	require.ErrorIs(t, err, common.ErrUnauthenticated)
	assert.Empty(t, lim.calls, "limiter must not be consulted without a caller")
}

func TestBegin_UsesRealLimiter(t *testing.T) {
	b := newBase(Deps{Limiter: ratelimit.New(ratelimit.DefaultPolicies())})
	ctx := userCtx("u1")

	// createThread allows a burst of two.
	for i := 0; i < 2; i++ {
		_, err := b.begin(ctx, ratelimit.CreateThread)
		require.NoError(t, err)
	}
	_, err := b.begin(ctx, ratelimit.CreateThread)
	require.ErrorIs(t, err, common.ErrRateLimited)

	// Other callers have their own budget.
	_, err = b.begin(userCtx("u2"), ratelimit.CreateThread)
	require.NoError(t, err)
}

func TestFetchOwned_InvalidID(t *testing.T) {
	called := false
	_, err := fetchOwned(context.Background(), "not-a-uuid", "u1", "Todo", "update",
		func(context.Context, string) (string, error) { called = true; return "", nil },
		func(string) string { return "u1" })

	require.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, "Todo not found", err.Error())
	assert.False(t, called)
}

func TestFetchOwned_StoreError(t *testing.T) {
	boom := errors.New("boom")
	_, err := fetchOwned(context.Background(), "8b0e7a38-7a32-4a4d-9d3e-3c1c7b0f1e11", "u1", "Todo", "update",
		func(context.Context, string) (string, error) { return "", boom },
		func(string) string { return "u1" })

	require.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, common.ErrNotFound))
}
