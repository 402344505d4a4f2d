package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newPointerStoreTest(t *testing.T, ttl time.Duration, sliding bool) (*Store, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewStore(rdb, "cw", ttl, sliding)
	return store, mr, func() {
		rdb.Close()
		mr.Close()
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	store, _, done := newPointerStoreTest(t, 0, false)
	defer done()
	ctx := context.Background()

	now := time.Now().Unix()
	in := &Pointer{Email: "admin@conectaworking.dev", CreatedAt: now, LastSeenAt: now}
	if err := store.Set(ctx, "client-1", in); err != nil {
		t.Fatalf("set: %v", err)
	}

	out, err := store.Get(ctx, "client-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if out.Email != in.Email || out.CreatedAt != in.CreatedAt || out.LastSeenAt != in.LastSeenAt {
		t.Fatalf("round trip mismatch: got %+v, want %+v", out, in)
	}
}

func TestGetAnonymousClient(t *testing.T) {
	store, _, done := newPointerStoreTest(t, 0, false)
	defer done()

	_, err := store.Get(context.Background(), "nobody")
	if !errors.Is(err, ErrPointerNotFound) {
		t.Fatalf("get absent pointer = %v, want ErrPointerNotFound", err)
	}
}

func TestEmptyClientIDUsesDefaultSlot(t *testing.T) {
	store, _, done := newPointerStoreTest(t, 0, false)
	defer done()
	ctx := context.Background()

	ptr := &Pointer{Email: "a@x.com", CreatedAt: 1}
	if err := store.Set(ctx, "", ptr); err != nil {
		t.Fatalf("set: %v", err)
	}

	out, err := store.Get(ctx, "0")
	if err != nil {
		t.Fatalf("get default slot: %v", err)
	}
	if out.Email != "a@x.com" {
		t.Fatalf("email = %q, want a@x.com", out.Email)
	}
}

func TestClearIdempotent(t *testing.T) {
	store, _, done := newPointerStoreTest(t, 0, false)
	defer done()
	ctx := context.Background()

	ptr := &Pointer{Email: "a@x.com", CreatedAt: 1}
	if err := store.Set(ctx, "c", ptr); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Clear(ctx, "c"); err != nil {
		t.Fatalf("first clear: %v", err)
	}
	if err := store.Clear(ctx, "c"); err != nil {
		t.Fatalf("second clear: %v", err)
	}

	if _, err := store.Get(ctx, "c"); !errors.Is(err, ErrPointerNotFound) {
		t.Fatalf("get after clear = %v, want ErrPointerNotFound", err)
	}
}

func TestLastWriteWins(t *testing.T) {
	store, _, done := newPointerStoreTest(t, 0, false)
	defer done()
	ctx := context.Background()

	if err := store.Set(ctx, "c", &Pointer{Email: "first@x.com", CreatedAt: 1}); err != nil {
		t.Fatalf("set first: %v", err)
	}
	if err := store.Set(ctx, "c", &Pointer{Email: "second@x.com", CreatedAt: 2}); err != nil {
		t.Fatalf("set second: %v", err)
	}

	out, err := store.Get(ctx, "c")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if out.Email != "second@x.com" {
		t.Fatalf("email = %q, want second@x.com", out.Email)
	}
}

func TestSlidingExpirationRefreshesTTL(t *testing.T) {
	store, mr, done := newPointerStoreTest(t, time.Minute, true)
	defer done()
	ctx := context.Background()

	if err := store.Set(ctx, "c", &Pointer{Email: "a@x.com", CreatedAt: 1}); err != nil {
		t.Fatalf("set: %v", err)
	}

	mr.FastForward(30 * time.Second)
	if _, err := store.Get(ctx, "c"); err != nil {
		t.Fatalf("get: %v", err)
	}

	mr.FastForward(45 * time.Second)
	if _, err := store.Get(ctx, "c"); err != nil {
		t.Fatalf("pointer expired despite sliding refresh: %v", err)
	}
}

func TestTTLExpiryWithoutSliding(t *testing.T) {
	store, mr, done := newPointerStoreTest(t, time.Minute, false)
	defer done()
	ctx := context.Background()

	if err := store.Set(ctx, "c", &Pointer{Email: "a@x.com", CreatedAt: 1}); err != nil {
		t.Fatalf("set: %v", err)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := store.Get(ctx, "c"); !errors.Is(err, ErrPointerNotFound) {
		t.Fatalf("get after expiry = %v, want ErrPointerNotFound", err)
	}
}

func TestTouchUpdatesLastSeen(t *testing.T) {
	store, _, done := newPointerStoreTest(t, 0, false)
	defer done()
	ctx := context.Background()

	if err := store.Set(ctx, "c", &Pointer{Email: "a@x.com", CreatedAt: 100, LastSeenAt: 100}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Touch(ctx, "c", time.Unix(500, 0)); err != nil {
		t.Fatalf("touch: %v", err)
	}

	out, err := store.Get(ctx, "c")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if out.CreatedAt != 100 {
		t.Fatalf("touch must preserve CreatedAt, got %d", out.CreatedAt)
	}
	if out.LastSeenAt != 500 {
		t.Fatalf("LastSeenAt = %d, want 500", out.LastSeenAt)
	}
}

func TestTouchMissingPointer(t *testing.T) {
	store, _, done := newPointerStoreTest(t, 0, false)
	defer done()

	err := store.Touch(context.Background(), "c", time.Unix(1, 0))
	if !errors.Is(err, ErrPointerNotFound) {
		t.Fatalf("touch absent pointer = %v, want ErrPointerNotFound", err)
	}
}

func TestCorruptPointerSurfaced(t *testing.T) {
	store, mr, done := newPointerStoreTest(t, 0, false)
	defer done()
	ctx := context.Background()

	if err := mr.Set("cw:ptr:c", "not-a-pointer"); err != nil {
		t.Fatalf("seed corrupt blob: %v", err)
	}

	_, err := store.Get(ctx, "c")
	if !errors.Is(err, ErrPointerCorrupt) {
		t.Fatalf("get corrupt pointer = %v, want ErrPointerCorrupt", err)
	}
}
