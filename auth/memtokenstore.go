package auth

import (
	"context"
	"errors"
	"time"

	"github.com/allegro/bigcache/v3"
)

type (
	memStore struct {
		cache *bigcache.BigCache
	}
)

// InMemoryTokenStore keeps sessions in process memory, entries are
// evicted once the life window elapses. Good enough for a single
// instance deployment, which is all this application targets.
func InMemoryTokenStore(lifeWindow time.Duration) TokenStore {
	cache, _ := bigcache.NewBigCache(bigcache.DefaultConfig(lifeWindow))
	return &memStore{
		cache: cache,
	}
}

func (m *memStore) Save(ctx context.Context, token string, payload []byte) error {
	return m.cache.Set(token, payload)
}

func (m *memStore) Lookup(ctx context.Context, token string) ([]byte, bool, error) {
	buf, err := m.cache.Get(token)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}
	return buf, true, nil
}

func (m *memStore) Delete(ctx context.Context, token string) error {
	err := m.cache.Delete(token)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil
	}
	return err
}
