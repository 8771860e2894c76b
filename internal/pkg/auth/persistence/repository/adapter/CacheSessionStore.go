package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	cacheport "github.com/sparxmathsalternative/damnis/internal/infrastructure/cache/port"
	auth "github.com/sparxmathsalternative/damnis/internal/pkg/auth/domain"
	repository "github.com/sparxmathsalternative/damnis/internal/pkg/auth/persistence/repository/port"
)

const sessionKeyPrefix = "session:"

// CacheSessionStore keeps sessions as JSON values in the key-value cache
// port. No TTL is set: the credential store checks expiry itself so the
// lazy-delete-on-access semantics stay observable.
type CacheSessionStore struct {
	cache cacheport.Cache
}

func NewCacheSessionStore(cache cacheport.Cache) *CacheSessionStore {
	return &CacheSessionStore{cache: cache}
}

// Ensure interface compliance at compile time
var _ repository.SessionStore = (*CacheSessionStore)(nil)

func (s *CacheSessionStore) Save(ctx context.Context, sess auth.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session store: encode: %w", err)
	}
	return s.cache.Set(ctx, sessionKeyPrefix+sess.Token, string(raw), 0)
}

func (s *CacheSessionStore) Find(ctx context.Context, token string) (*auth.Session, error) {
	raw, err := s.cache.Get(ctx, sessionKeyPrefix+token)
	if errors.Is(err, cacheport.ErrMiss) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var sess auth.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("session store: decode: %w", err)
	}
	return &sess, nil
}

func (s *CacheSessionStore) Delete(ctx context.Context, token string) error {
	_, err := s.cache.Del(ctx, sessionKeyPrefix+token)
	return err
}
