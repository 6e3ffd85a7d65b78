package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/openvote/voting-system/internal/core/domain"
)

func newTestStore(t *testing.T, ttl time.Duration) (*TokenStore, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTokenStore(client, ttl), srv
}

func record(userID, token string) *domain.RefreshTokenRecord {
	return &domain.RefreshTokenRecord{
		UserID:    userID,
		Token:     token,
		CreatedAt: time.Now().UTC(),
	}
}

func TestTokenStore_SaveAndFind(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)

	if err := store.Save(context.Background(), record("user_1", "tok_a")); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	got, err := store.FindByToken(context.Background(), "tok_a")
	if err != nil {
		t.Fatalf("FindByToken returned error: %v", err)
	}
	if got.UserID != "user_1" || got.Token != "tok_a" {
		t.Fatalf("unexpected record: %+v", got)
	}

	if _, err := store.FindByToken(context.Background(), "tok_unknown"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for unknown token, got %v", err)
	}
}

func TestTokenStore_RecordsExpire(t *testing.T) {
	store, srv := newTestStore(t, time.Minute)

	if err := store.Save(context.Background(), record("user_1", "tok_a")); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	srv.FastForward(2 * time.Minute)

	if _, err := store.FindByToken(context.Background(), "tok_a"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected expired token to be absent, got %v", err)
	}
}

func TestTokenStore_DeleteByToken_Idempotent(t *testing.T) {
	store, srv := newTestStore(t, time.Hour)

	if err := store.Save(context.Background(), record("user_1", "tok_a")); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if err := store.DeleteByToken(context.Background(), "tok_a"); err != nil {
		t.Fatalf("DeleteByToken returned error: %v", err)
	}
	if _, err := store.FindByToken(context.Background(), "tok_a"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected deleted token to be absent, got %v", err)
	}
	// The set membership goes with the token key.
	if members, _ := srv.SMembers(userKey("user_1")); len(members) != 0 {
		t.Fatalf("expected empty session set, got %v", members)
	}

	if err := store.DeleteByToken(context.Background(), "tok_a"); err != nil {
		t.Fatalf("repeated DeleteByToken returned error: %v", err)
	}
}

func TestTokenStore_DeleteAllByUser(t *testing.T) {
	store, srv := newTestStore(t, time.Hour)

	for _, tok := range []string{"tok_a", "tok_b", "tok_c"} {
		if err := store.Save(context.Background(), record("user_1", tok)); err != nil {
			t.Fatalf("Save returned error: %v", err)
		}
	}
	if err := store.Save(context.Background(), record("user_2", "tok_other")); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if err := store.DeleteAllByUser(context.Background(), "user_1"); err != nil {
		t.Fatalf("DeleteAllByUser returned error: %v", err)
	}

	for _, tok := range []string{"tok_a", "tok_b", "tok_c"} {
		if _, err := store.FindByToken(context.Background(), tok); !errors.Is(err, domain.ErrUnauthenticated) {
			t.Fatalf("expected %s to be revoked, got %v", tok, err)
		}
	}
	if srv.Exists(userKey("user_1")) {
		t.Fatalf("expected the session set to be gone")
	}

	// Other users' sessions are untouched.
	if _, err := store.FindByToken(context.Background(), "tok_other"); err != nil {
		t.Fatalf("unrelated token must survive: %v", err)
	}
}

func TestTokenStore_RevokeRacingSaveStaysConsistent(t *testing.T) {
	store, srv := newTestStore(t, time.Hour)

	// A Save racing DeleteAllByUser must never leave a token key orphaned
	// from the session set: whichever way the two serialize, a subsequent
	// revoke removes every live token.
	for i := 0; i < 50; i++ {
		if err := store.Save(context.Background(), record("user_1", "tok_old")); err != nil {
			t.Fatalf("Save returned error: %v", err)
		}

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := store.Save(context.Background(), record("user_1", "tok_new")); err != nil {
				t.Errorf("concurrent Save returned error: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if err := store.DeleteAllByUser(context.Background(), "user_1"); err != nil {
				t.Errorf("concurrent DeleteAllByUser returned error: %v", err)
			}
		}()
		wg.Wait()

		// Token present implies set membership present, never one without
		// the other.
		members, _ := srv.SMembers(userKey("user_1"))
		inSet := make(map[string]bool, len(members))
		for _, m := range members {
			inSet[m] = true
		}
		for _, tok := range []string{"tok_old", "tok_new"} {
			if srv.Exists(tokenKey(tok)) != inSet[tok] {
				t.Fatalf("iteration %d: %s key/set mismatch (key=%v set=%v)",
					i, tok, srv.Exists(tokenKey(tok)), inSet[tok])
			}
		}

		if err := store.DeleteAllByUser(context.Background(), "user_1"); err != nil {
			t.Fatalf("final DeleteAllByUser returned error: %v", err)
		}
		for _, tok := range []string{"tok_old", "tok_new"} {
			if _, err := store.FindByToken(context.Background(), tok); !errors.Is(err, domain.ErrUnauthenticated) {
				t.Fatalf("iteration %d: token %q survived bulk revocation", i, tok)
			}
		}
	}
}
