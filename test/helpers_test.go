//go:build integration
// +build integration

package test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/conectaworking/sessionkit/session"
)

func newIntegrationStore(t *testing.T) (*session.Store, *miniredis.Miniredis, *redis.Client, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := session.NewStore(rdb, "cw", 0, false)

	return store, mr, rdb, func() {
		_ = rdb.Close()
		mr.Close()
	}
}

func makePointer(email string) *session.Pointer {
	now := time.Now().Unix()
	return &session.Pointer{
		Email:      email,
		CreatedAt:  now,
		LastSeenAt: now,
	}
}
