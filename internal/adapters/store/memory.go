package store

import (
	"context"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sellerhub/backoffice/catalog-service/pkg/interfaces"
)

// MemoryStore — реализация StorePort в памяти процесса.
// Используется в тестах и для локального запуска без Redis.
type MemoryStore struct {
	items *gocache.Cache
}

// NewMemoryStore создает хранилище в памяти
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: gocache.New(gocache.NoExpiration, 0),
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	value, found := m.items.Get(key)
	if !found {
		return nil, interfaces.ErrKeyNotFound
	}
	return value.([]byte), nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.items.Set(key, value, gocache.NoExpiration)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.items.Delete(key)
	return nil
}

func (m *MemoryStore) Close() error {
	m.items.Flush()
	return nil
}
