// Package rate throttles swipes per actor with two fixed windows.
package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	minuteWindow = time.Minute
	tenSecWindow = 10 * time.Second
)

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	WindowState(ctx context.Context, key string) (int64, time.Duration, error)
}

type Limiter struct {
	store     WindowStore
	perMinute int
	per10Sec  int
}

// NewLimiter builds a limiter; a zero limit disables that window.
func NewLimiter(store WindowStore, perMinute, per10Sec int) *Limiter {
	return &Limiter{
		store:     store,
		perMinute: max(perMinute, 0),
		per10Sec:  max(per10Sec, 0),
	}
}

func (l *Limiter) Enabled() bool {
	return l != nil && l.store != nil && (l.perMinute > 0 || l.per10Sec > 0)
}

// AllowSwipe counts one swipe for actor. When a window is exhausted it returns
// allowed=false and the number of seconds until the longest blocking window
// resets.
func (l *Limiter) AllowSwipe(ctx context.Context, actor uuid.UUID) (int64, bool, error) {
	if actor == uuid.Nil {
		return 0, false, fmt.Errorf("invalid actor id")
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}

	var retryAfter int64
	for _, w := range l.windows(actor) {
		count, ttl, err := l.store.IncrementWindow(ctx, w.key, w.span)
		if err != nil {
			return 0, false, err
		}
		if count > int64(w.limit) {
			retryAfter = max(retryAfter, ceilSeconds(ttl))
		}
	}

	if retryAfter > 0 {
		return retryAfter, false, nil
	}
	return 0, true, nil
}

// RetryAfter reports how long actor must wait without consuming a slot.
func (l *Limiter) RetryAfter(ctx context.Context, actor uuid.UUID) (int64, error) {
	if actor == uuid.Nil {
		return 0, fmt.Errorf("invalid actor id")
	}
	if l.store == nil {
		return 0, fmt.Errorf("rate limiter store is nil")
	}

	var retryAfter int64
	for _, w := range l.windows(actor) {
		count, ttl, err := l.store.WindowState(ctx, w.key)
		if err != nil {
			return 0, err
		}
		if count >= int64(w.limit) {
			retryAfter = max(retryAfter, ceilSeconds(ttl))
		}
	}
	return retryAfter, nil
}

type window struct {
	key   string
	span  time.Duration
	limit int
}

func (l *Limiter) windows(actor uuid.UUID) []window {
	out := make([]window, 0, 2)
	if l.perMinute > 0 {
		out = append(out, window{key: "rate:swipes:min:" + actor.String(), span: minuteWindow, limit: l.perMinute})
	}
	if l.per10Sec > 0 {
		out = append(out, window{key: "rate:swipes:10s:" + actor.String(), span: tenSecWindow, limit: l.per10Sec})
	}
	return out
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	return max(sec, 1)
}
