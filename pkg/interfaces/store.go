package interfaces

import (
	"context"
	"errors"
)

// ErrKeyNotFound возвращается хранилищем, если значение по ключу отсутствует
var ErrKeyNotFound = errors.New("key not found")

// StorePort определяет интерфейс для простого персистентного key-value хранилища.
// Это примитив нижнего уровня: без TTL-семантики и без неймспейсов —
// сроки жизни и неймспейсы добавляет обёртка cache.SessionCache.
// Реализация может использовать Redis или память процесса (для тестов).
type StorePort interface {
	// Get получает значение по ключу
	// Возвращает ErrKeyNotFound, если значение отсутствует
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение по ключу
	Set(ctx context.Context, key string, value []byte) error

	// Delete удаляет значение по ключу. Отсутствие ключа не является ошибкой
	Delete(ctx context.Context, key string) error

	// Close закрывает соединение с хранилищем
	Close() error
}
