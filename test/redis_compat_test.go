//go:build integration
// +build integration

package test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	sessionkit "github.com/conectaworking/sessionkit"
	"github.com/conectaworking/sessionkit/credstore"
	"github.com/conectaworking/sessionkit/session"
)

// redisMode describes which Redis backend the compatibility suite is running against.
type redisMode struct {
	name  string
	setup func(t *testing.T) (redis.UniversalClient, func())
}

// redisModes returns the set of Redis backends to test.
// miniredis is always available.
// Real Redis standalone is used when REDIS_ADDR is set (e.g. "127.0.0.1:6379").
func redisModes(t *testing.T) []redisMode {
	t.Helper()
	modes := []redisMode{
		{
			name: "miniredis",
			setup: func(t *testing.T) (redis.UniversalClient, func()) {
				t.Helper()
				mr, err := miniredis.Run()
				if err != nil {
					t.Fatalf("miniredis: %v", err)
				}
				rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
				return rdb, func() { _ = rdb.Close(); mr.Close() }
			},
		},
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		modes = append(modes, redisMode{
			name: "standalone:" + addr,
			setup: func(t *testing.T) (redis.UniversalClient, func()) {
				t.Helper()
				rdb := redis.NewClient(&redis.Options{Addr: addr})
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				if err := rdb.Ping(ctx).Err(); err != nil {
					t.Skipf("cannot connect to Redis at %s: %v", addr, err)
				}
				// Flush the test DB to avoid state leaking between runs.
				rdb.FlushDB(context.Background())
				return rdb, func() { rdb.FlushDB(context.Background()); _ = rdb.Close() }
			},
		})
	}

	if addrs := os.Getenv("REDIS_CLUSTER_ADDRS"); addrs != "" {
		modes = append(modes, redisMode{
			name: "cluster",
			setup: func(t *testing.T) (redis.UniversalClient, func()) {
				t.Helper()
				rdb := redis.NewClusterClient(&redis.ClusterOptions{Addrs: strings.Split(addrs, ",")})
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := rdb.Ping(ctx).Err(); err != nil {
					t.Skipf("cannot connect to Redis cluster: %v", err)
				}
				return rdb, func() { _ = rdb.Close() }
			},
		})
	}

	return modes
}

func TestPointerStoreCompat(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			client, cleanup := mode.setup(t)
			defer cleanup()

			ctx := context.Background()
			store := session.NewStore(client, "cw", time.Hour, false)

			ptr := makePointer("compat@conectaworking.dev")
			if err := store.Set(ctx, "compat-client", ptr); err != nil {
				t.Fatalf("Set failed: %v", err)
			}

			got, err := store.Get(ctx, "compat-client")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if got.Email != ptr.Email || got.CreatedAt != ptr.CreatedAt {
				t.Fatalf("round-trip mismatch: %+v != %+v", got, ptr)
			}

			if err := store.Clear(ctx, "compat-client"); err != nil {
				t.Fatalf("Clear failed: %v", err)
			}
			if _, err := store.Get(ctx, "compat-client"); !errors.Is(err, session.ErrPointerNotFound) {
				t.Fatalf("expected ErrPointerNotFound, got %v", err)
			}
		})
	}
}

func TestCredentialStoreCompat(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			client, cleanup := mode.setup(t)
			defer cleanup()

			ctx := context.Background()
			repo := credstore.NewRedis(client, "cwc")

			created, err := repo.Create(ctx, sessionkit.RegisterInput{
				Email:        "compat@conectaworking.dev",
				PasswordHash: "argon2id$compat",
				Metadata: sessionkit.UserMetadata{
					Role:       sessionkit.RolePro,
					PlanActive: true,
					FirstName:  "Compat",
				},
			})
			if err != nil {
				t.Fatalf("Create failed: %v", err)
			}

			got, err := repo.FindByEmail(ctx, "compat@conectaworking.dev")
			if err != nil {
				t.Fatalf("FindByEmail failed: %v", err)
			}
			if got.ID != created.ID || got.Metadata.Role != sessionkit.RolePro {
				t.Fatalf("round-trip mismatch: %+v", got)
			}

			if _, err := repo.Create(ctx, sessionkit.RegisterInput{
				Email:        "compat@conectaworking.dev",
				PasswordHash: "argon2id$other",
			}); !errors.Is(err, sessionkit.ErrEmailAlreadyRegistered) {
				t.Fatalf("expected ErrEmailAlreadyRegistered, got %v", err)
			}

			if err := repo.SetPlanActive(ctx, "compat@conectaworking.dev", false); err != nil {
				t.Fatalf("SetPlanActive failed: %v", err)
			}
			got, err = repo.FindByEmail(ctx, "compat@conectaworking.dev")
			if err != nil {
				t.Fatalf("FindByEmail after update failed: %v", err)
			}
			if got.Metadata.PlanActive {
				t.Fatal("plan must be inactive after SetPlanActive(false)")
			}
		})
	}
}
