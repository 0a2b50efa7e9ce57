package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	redrepo "github.com/ivankudzin/pawmatch/internal/repo/redis"
)

func TestLimiterBlocksOn10SecondWindow(t *testing.T) {
	mr, client := newMiniRedisClient(t)

	limiter := NewLimiter(redrepo.NewRateRepo(client), 100, 2)
	ctx := context.Background()
	actor := uuid.New()

	for i := 0; i < 2; i++ {
		retryAfter, allowed, err := limiter.AllowSwipe(ctx, actor)
		if err != nil {
			t.Fatalf("allow swipe #%d: %v", i+1, err)
		}
		if !allowed || retryAfter != 0 {
			t.Fatalf("unexpected result on swipe #%d: allowed=%v retry_after=%d", i+1, allowed, retryAfter)
		}
	}

	retryAfter, allowed, err := limiter.AllowSwipe(ctx, actor)
	if err != nil {
		t.Fatalf("allow swipe #3: %v", err)
	}
	if allowed {
		t.Fatalf("expected block on third swipe in 10s window")
	}
	if retryAfter <= 0 || retryAfter > 10 {
		t.Fatalf("expected retry_after within the window, got %d", retryAfter)
	}

	current, err := limiter.RetryAfter(ctx, actor)
	if err != nil {
		t.Fatalf("retry_after state: %v", err)
	}
	if current <= 0 {
		t.Fatalf("expected positive retry_after state, got %d", current)
	}

	mr.FastForward(11 * time.Second)

	retryAfter, allowed, err = limiter.AllowSwipe(ctx, actor)
	if err != nil {
		t.Fatalf("allow swipe after window: %v", err)
	}
	if !allowed || retryAfter != 0 {
		t.Fatalf("unexpected result after fast forward: allowed=%v retry_after=%d", allowed, retryAfter)
	}
}

func TestLimiterBlocksOnMinuteWindow(t *testing.T) {
	_, client := newMiniRedisClient(t)

	limiter := NewLimiter(redrepo.NewRateRepo(client), 3, 100)
	ctx := context.Background()
	actor := uuid.New()

	for i := 0; i < 3; i++ {
		if _, allowed, err := limiter.AllowSwipe(ctx, actor); err != nil || !allowed {
			t.Fatalf("swipe #%d: allowed=%v err=%v", i+1, allowed, err)
		}
	}

	retryAfter, allowed, err := limiter.AllowSwipe(ctx, actor)
	if err != nil {
		t.Fatalf("allow swipe #4: %v", err)
	}
	if allowed {
		t.Fatalf("expected block on fourth swipe in minute window")
	}
	if retryAfter <= 10 {
		t.Fatalf("expected minute-scale retry_after, got %d", retryAfter)
	}

	// other actors keep their own budget
	if _, allowed, err := limiter.AllowSwipe(ctx, uuid.New()); err != nil || !allowed {
		t.Fatalf("unrelated actor blocked: allowed=%v err=%v", allowed, err)
	}
}

func TestLimiterEnabled(t *testing.T) {
	_, client := newMiniRedisClient(t)
	store := redrepo.NewRateRepo(client)

	if NewLimiter(store, 0, 0).Enabled() {
		t.Fatalf("zero limits must disable the limiter")
	}
	if NewLimiter(nil, 10, 10).Enabled() {
		t.Fatalf("missing store must disable the limiter")
	}
	if !NewLimiter(store, -1, 5).Enabled() {
		t.Fatalf("expected limiter enabled with a 10s limit")
	}
	var nilLimiter *Limiter
	if nilLimiter.Enabled() {
		t.Fatalf("nil limiter must report disabled")
	}
}

func TestLimiterPropagatesStoreErrors(t *testing.T) {
	boom := errors.New("redis down")
	limiter := NewLimiter(failingStore{err: boom}, 5, 5)

	if _, _, err := limiter.AllowSwipe(context.Background(), uuid.New()); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
	if _, _, err := limiter.AllowSwipe(context.Background(), uuid.Nil); err == nil {
		t.Fatalf("expected error for nil actor")
	}
}

func TestCeilSeconds(t *testing.T) {
	cases := map[time.Duration]int64{
		0:                       0,
		-time.Second:            0,
		time.Millisecond:        1,
		time.Second:             1,
		1500 * time.Millisecond: 2,
		10 * time.Second:        10,
	}
	for in, want := range cases {
		if got := ceilSeconds(in); got != want {
			t.Fatalf("ceilSeconds(%s) = %d, want %d", in, got, want)
		}
	}
}

type failingStore struct {
	err error
}

func (s failingStore) IncrementWindow(context.Context, string, time.Duration) (int64, time.Duration, error) {
	return 0, 0, s.err
}

func (s failingStore) WindowState(context.Context, string) (int64, time.Duration, error) {
	return 0, 0, s.err
}

func newMiniRedisClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return mr, client
}
