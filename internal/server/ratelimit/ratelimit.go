// Package ratelimit implements the named, per-caller admission policies of
// the mutating operations. Token-bucket policies are backed by
// golang.org/x/time/rate; fixed-window policies count requests per window.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Kind int

const (
	TokenBucket Kind = iota
	FixedWindow
)

// Policy admits Rate requests per Period. Token buckets hold at most Burst
// tokens; fixed windows ignore Burst.
type Policy struct {
	Kind   Kind
	Rate   int
	Period time.Duration
	Burst  int
}

// Operation names shared with the service layer.
const (
	CreateTodo        = "createTodo"
	UpdateTodo        = "updateTodo"
	DeleteTodo        = "deleteTodo"
	SendMessage       = "sendMessage"
	CreateThread      = "createThread"
	UpdatePreferences = "updatePreferences"
	SendEmail         = "sendEmail"
	ExportData        = "exportData"
)

// DefaultPolicies lists the production limits.
func DefaultPolicies() map[string]Policy {
	return map[string]Policy{
		CreateTodo:        {Kind: TokenBucket, Rate: 20, Period: time.Minute, Burst: 5},
		UpdateTodo:        {Kind: TokenBucket, Rate: 50, Period: time.Minute, Burst: 10},
		DeleteTodo:        {Kind: TokenBucket, Rate: 30, Period: time.Minute, Burst: 5},
		SendMessage:       {Kind: TokenBucket, Rate: 10, Period: time.Minute, Burst: 2},
		CreateThread:      {Kind: TokenBucket, Rate: 5, Period: time.Minute, Burst: 2},
		UpdatePreferences: {Kind: TokenBucket, Rate: 20, Period: time.Minute, Burst: 5},
		SendEmail:         {Kind: FixedWindow, Rate: 10, Period: time.Hour},
		ExportData:        {Kind: TokenBucket, Rate: 5, Period: time.Hour, Burst: 1},
	}
}

type bucketKey struct {
	name string
	key  string
}

// sweepInterval bounds how often Allow scans for idle entries.
const sweepInterval = time.Minute

type window struct {
	start time.Time
	count int
}

// Limiter keeps one bucket or window per (operation, key). It is safe for
// concurrent use.
type Limiter struct {
	mu       sync.Mutex
	policies map[string]Policy
	buckets  map[bucketKey]*rate.Limiter
	windows  map[bucketKey]*window
	now      func() time.Time

	lastSweep time.Time
}

func New(policies map[string]Policy) *Limiter {
	return &Limiter{
		policies: policies,
		buckets:  make(map[bucketKey]*rate.Limiter),
		windows:  make(map[bucketKey]*window),
		now:      time.Now,
	}
}

// Allow consumes one unit of the named policy for key. When the request is
// rejected it returns false and the time until a retry can succeed.
// Operations without a policy are always admitted.
func (l *Limiter) Allow(name, key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.policies[name]
	if !ok {
		return true, 0
	}

	k := bucketKey{name: name, key: key}
	now := l.now()
	if now.Sub(l.lastSweep) >= sweepInterval {
		l.sweep(now)
	}

	if p.Kind == FixedWindow {
		return l.allowWindow(k, p, now)
	}
	return l.allowBucket(k, p, now)
}

func (l *Limiter) allowBucket(k bucketKey, p Policy, now time.Time) (bool, time.Duration) {
	lim, ok := l.buckets[k]
	if !ok {
		every := p.Period / time.Duration(p.Rate)
		lim = rate.NewLimiter(rate.Every(every), p.Burst)
		l.buckets[k] = lim
	}

	r := lim.ReserveN(now, 1)
	if !r.OK() {
		return false, p.Period
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

func (l *Limiter) allowWindow(k bucketKey, p Policy, now time.Time) (bool, time.Duration) {
	w, ok := l.windows[k]
	if !ok || !now.Before(w.start.Add(p.Period)) {
		w = &window{start: now}
		l.windows[k] = w
	}
	if w.count >= p.Rate {
		return false, w.start.Add(p.Period).Sub(now)
	}
	w.count++
	return true, 0
}

// sweep drops buckets that have refilled to their burst and windows that
// have expired. A dropped entry is indistinguishable from a fresh one, so
// eviction never changes a decision.
func (l *Limiter) sweep(now time.Time) {
	l.lastSweep = now
	for k, lim := range l.buckets {
		if lim.TokensAt(now) >= float64(lim.Burst()) {
			delete(l.buckets, k)
		}
	}
	for k, w := range l.windows {
		if !now.Before(w.start.Add(l.policies[k.name].Period)) {
			delete(l.windows, k)
		}
	}
}
