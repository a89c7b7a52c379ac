package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sellerhub/backoffice/catalog-service/pkg/interfaces"
)

// ErrCacheMiss возвращается, если значение отсутствует или просрочено
var ErrCacheMiss = errors.New("cache miss")

const pendingActionsKey = "pending_actions"

// envelope оборачивает каждое значение меткой времени и сроком действия
type envelope struct {
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	Expiry    time.Time       `json:"expiry"`
}

// PendingAction — отложенное действие продавца, записанное в офлайне.
// Очередь неограниченная, только добавление; воспроизведением занимается
// воркер, которому действия передаются при дренаже.
type PendingAction struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// SessionCache — неймспейсированная TTL-обертка над персистентным
// key-value хранилищем. Используется для пользовательских настроек,
// пресетов фильтров и очереди отложенных действий; ничего из этого
// не чувствительно к производительности, поэтому никакой политики
// вытеснения кроме TTL здесь нет.
type SessionCache struct {
	store     interfaces.StorePort
	namespace string
}

// NewSessionCache создает кэш с заданным неймспейсом (обычно — ID продавца)
func NewSessionCache(store interfaces.StorePort, namespace string) *SessionCache {
	return &SessionCache{
		store:     store,
		namespace: namespace,
	}
}

func (c *SessionCache) buildKey(key string) string {
	return fmt.Sprintf("session:%s:%s", c.namespace, key)
}

// Set сохраняет значение с заданным сроком жизни.
// Нулевой ttl означает отсутствие срока.
func (c *SessionCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("ошибка сериализации значения: %w", err)
	}

	now := time.Now().UTC()
	env := envelope{
		Data:      data,
		Timestamp: now,
	}
	if ttl > 0 {
		env.Expiry = now.Add(ttl)
	}

	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("ошибка сериализации конверта: %w", err)
	}

	return c.store.Set(ctx, c.buildKey(key), raw)
}

// Get читает значение в out. Просроченное значение прозрачно
// удаляется, возвращается ErrCacheMiss.
func (c *SessionCache) Get(ctx context.Context, key string, out interface{}) error {
	env, err := c.load(ctx, key)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("ошибка десериализации значения: %w", err)
	}

	return nil
}

// Remove удаляет значение
func (c *SessionCache) Remove(ctx context.Context, key string) error {
	return c.store.Delete(ctx, c.buildKey(key))
}

// IsFresh сообщает, записано ли значение не раньше, чем maxAge назад
func (c *SessionCache) IsFresh(ctx context.Context, key string, maxAge time.Duration) bool {
	env, err := c.load(ctx, key)
	if err != nil {
		return false
	}
	return time.Since(env.Timestamp) <= maxAge
}

// load читает конверт и выселяет его, если срок истек
func (c *SessionCache) load(ctx context.Context, key string) (*envelope, error) {
	raw, err := c.store.Get(ctx, c.buildKey(key))
	if err != nil {
		if errors.Is(err, interfaces.ErrKeyNotFound) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("ошибка десериализации конверта: %w", err)
	}

	if !env.Expiry.IsZero() && time.Now().After(env.Expiry) {
		_ = c.store.Delete(ctx, c.buildKey(key))
		return nil, ErrCacheMiss
	}

	return &env, nil
}

// AddPendingAction добавляет действие в конец очереди отложенных действий
func (c *SessionCache) AddPendingAction(ctx context.Context, actionType string, payload json.RawMessage) (*PendingAction, error) {
	actions, err := c.PendingActions(ctx)
	if err != nil {
		return nil, err
	}

	action := PendingAction{
		ID:        uuid.New().String(),
		Type:      actionType,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	actions = append(actions, action)

	if err := c.Set(ctx, pendingActionsKey, actions, 0); err != nil {
		return nil, err
	}

	return &action, nil
}

// PendingActions возвращает очередь отложенных действий в порядке добавления
func (c *SessionCache) PendingActions(ctx context.Context) ([]PendingAction, error) {
	var actions []PendingAction
	err := c.Get(ctx, pendingActionsKey, &actions)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, nil
		}
		return nil, err
	}
	return actions, nil
}

// ClearPendingActions очищает очередь отложенных действий
func (c *SessionCache) ClearPendingActions(ctx context.Context) error {
	return c.Remove(ctx, pendingActionsKey)
}

// Drain публикует все отложенные действия в тему воспроизведения
// и очищает очередь. Возвращает число опубликованных действий.
// Очередь очищается только после успешной публикации всех действий.
func (c *SessionCache) Drain(ctx context.Context, messaging interfaces.MessagingPort, topic string) (int, error) {
	actions, err := c.PendingActions(ctx)
	if err != nil {
		return 0, err
	}
	if len(actions) == 0 {
		return 0, nil
	}

	for i, action := range actions {
		body, err := json.Marshal(action)
		if err != nil {
			return i, fmt.Errorf("ошибка сериализации действия %s: %w", action.ID, err)
		}
		if err := messaging.PublishWithKey(ctx, topic, c.namespace, body); err != nil {
			return i, fmt.Errorf("ошибка публикации действия %s: %w", action.ID, err)
		}
	}

	if err := c.ClearPendingActions(ctx); err != nil {
		return len(actions), err
	}

	return len(actions), nil
}
