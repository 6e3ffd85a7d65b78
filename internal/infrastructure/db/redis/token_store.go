package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openvote/voting-system/internal/core/domain"
)

// TokenStore implements ports.RefreshTokenStore backed by Redis.
//
// Key layout:
//   - refresh:<token>    → JSON record, TTL = refresh-token lifetime
//   - sessions:<user_id> → set of the user's live tokens (bulk revocation)
//
// Each mutation runs as a MULTI/EXEC pipeline, so a token is either fully
// present (value + set membership) or fully absent. Keys expire together
// with the tokens they back, so revoked-by-expiry sessions clean themselves
// up.
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTokenStore creates a TokenStore; ttl must match the refresh-token TTL
// used by the codec so store records never outlive their tokens.
func NewTokenStore(client *redis.Client, ttl time.Duration) *TokenStore {
	return &TokenStore{client: client, ttl: ttl}
}

type storedRecord struct {
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *TokenStore) Save(ctx context.Context, record *domain.RefreshTokenRecord) error {
	payload, err := json.Marshal(storedRecord{UserID: record.UserID, CreatedAt: record.CreatedAt})
	if err != nil {
		return fmt.Errorf("encode refresh record: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, tokenKey(record.Token), payload, s.ttl)
		pipe.SAdd(ctx, userKey(record.UserID), record.Token)
		pipe.Expire(ctx, userKey(record.UserID), s.ttl)
		return nil
	})
	if err != nil {
		return storageErr("save refresh token", err)
	}
	return nil
}

func (s *TokenStore) FindByToken(ctx context.Context, token string) (*domain.RefreshTokenRecord, error) {
	raw, err := s.client.Get(ctx, tokenKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, storageErr("find refresh token", err)
	}

	var rec storedRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode refresh record: %w", err)
	}

	return &domain.RefreshTokenRecord{
		UserID:    rec.UserID,
		Token:     token,
		CreatedAt: rec.CreatedAt,
	}, nil
}

func (s *TokenStore) DeleteByToken(ctx context.Context, token string) error {
	raw, err := s.client.Get(ctx, tokenKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Already absent: logout is idempotent.
			return nil
		}
		return storageErr("find refresh token", err)
	}

	var rec storedRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return fmt.Errorf("decode refresh record: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, tokenKey(token))
		pipe.SRem(ctx, userKey(rec.UserID), token)
		return nil
	})
	if err != nil {
		return storageErr("delete refresh token", err)
	}
	return nil
}

// maxRevokeRetries bounds the optimistic-lock retries in DeleteAllByUser.
const maxRevokeRetries = 5

func (s *TokenStore) DeleteAllByUser(ctx context.Context, userID string) error {
	// The member read and the deletes must act on the same set snapshot:
	// a Save landing in between would keep its token key while losing its
	// set membership, leaving a live session that can never be bulk-revoked.
	// WATCH on the set aborts the transaction in that case and the retry
	// revokes the freshly saved token as well.
	revoke := func(tx *redis.Tx) error {
		tokens, err := tx.SMembers(ctx, userKey(userID)).Result()
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, token := range tokens {
				pipe.Del(ctx, tokenKey(token))
			}
			pipe.Del(ctx, userKey(userID))
			return nil
		})
		return err
	}

	var err error
	for attempt := 0; attempt < maxRevokeRetries; attempt++ {
		err = s.client.Watch(ctx, revoke, userKey(userID))
		if err == nil {
			return nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	return storageErr("revoke user sessions", err)
}

func tokenKey(token string) string {
	return "refresh:" + token
}

func userKey(userID string) string {
	return "sessions:" + userID
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, domain.ErrStorageUnavailable, err)
}
