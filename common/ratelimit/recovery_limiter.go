package ratelimit

import (
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	DefaultMaxRequests   = 3
	DefaultWindowMinutes = 15
)

// RecoveryLimiter throttles password-recovery requests per identifier
// (email) over a sliding time window. State is in-memory only and resets
// on process restart.
//
// The admission check counts the current request in its own tally: with
// maxRequests=3 the third request inside the window is still allowed and
// the fourth is denied. Callers depend on that exact policy.
type RecoveryLimiter struct {
	mu          sync.Mutex
	requests    map[string][]time.Time
	maxRequests int
	window      time.Duration

	now func() time.Time // overridable in tests
}

// NewRecoveryLimiter creates a limiter allowing maxRequests per identifier
// within a trailing window of windowMinutes.
func NewRecoveryLimiter(maxRequests, windowMinutes int) *RecoveryLimiter {
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}
	if windowMinutes <= 0 {
		windowMinutes = DefaultWindowMinutes
	}
	return &RecoveryLimiter{
		requests:    make(map[string][]time.Time),
		maxRequests: maxRequests,
		window:      time.Duration(windowMinutes) * time.Minute,
		now:         time.Now,
	}
}

// IsAllowed records the current request and reports whether it is within
// the limit. Entries older than the window are pruned first. Identifiers
// are case-insensitive.
func (l *RecoveryLimiter) IsAllowed(identifier string) bool {
	key := strings.ToLower(identifier)
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.requests[key][:0]
	for _, ts := range l.requests[key] {
		if now.Sub(ts) <= l.window {
			kept = append(kept, ts)
		}
	}
	kept = append(kept, now)
	l.requests[key] = kept

	return len(kept) <= l.maxRequests
}

// RemainingAttempts returns how many requests the identifier has left in
// the current window, never below zero.
func (l *RecoveryLimiter) RemainingAttempts(identifier string) int {
	key := strings.ToLower(identifier)
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	valid := 0
	for _, ts := range l.requests[key] {
		if now.Sub(ts) <= l.window {
			valid++
		}
	}
	if remaining := l.maxRequests - valid; remaining > 0 {
		return remaining
	}
	return 0
}

// RetryAfter returns how long the identifier must wait before the next
// request can be admitted. The second return is false while the identifier
// is still under the limit.
func (l *RecoveryLimiter) RetryAfter(identifier string) (time.Duration, bool) {
	key := strings.ToLower(identifier)
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	var valid []time.Time
	for _, ts := range l.requests[key] {
		if now.Sub(ts) <= l.window {
			valid = append(valid, ts)
		}
	}
	if len(valid) < l.maxRequests {
		return 0, false
	}

	sort.Slice(valid, func(i, j int) bool { return valid[i].Before(valid[j]) })

	retryAfter := l.window - now.Sub(valid[0])
	if retryAfter <= 0 {
		return 0, false
	}
	return retryAfter, true
}
