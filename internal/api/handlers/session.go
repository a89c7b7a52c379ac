package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sellerhub/backoffice/catalog-service/internal/cache"
	"github.com/sellerhub/backoffice/catalog-service/internal/security"
	"github.com/sellerhub/backoffice/catalog-service/pkg/interfaces"
)

// SessionHandler обработчик сессионного состояния продавца:
// пресеты фильтров и очередь отложенных действий
type SessionHandler struct {
	store        interfaces.StorePort
	messaging    interfaces.MessagingPort
	actionsTopic string
	logger       interfaces.LoggerPort

	// presetTTL — срок жизни пресета фильтра в хранилище
	presetTTL time.Duration
}

// NewSessionHandler создает новый обработчик сессий
func NewSessionHandler(store interfaces.StorePort, messaging interfaces.MessagingPort, actionsTopic string, presetTTL time.Duration, logger interfaces.LoggerPort) *SessionHandler {
	if presetTTL <= 0 {
		presetTTL = 30 * 24 * time.Hour
	}
	return &SessionHandler{
		store:        store,
		messaging:    messaging,
		actionsTopic: actionsTopic,
		presetTTL:    presetTTL,
		logger:       logger,
	}
}

// sellerCache возвращает сессионный кэш продавца из контекста запроса
func (h *SessionHandler) sellerCache(w http.ResponseWriter, r *http.Request) (*cache.SessionCache, bool) {
	sellerID, ok := security.SellerIDFromContext(r.Context())
	if !ok || sellerID == "" {
		writeError(w, r, http.StatusUnauthorized, "unauthorized", "ID продавца не определен")
		return nil, false
	}
	return cache.NewSessionCache(h.store, sellerID), true
}

// addActionRequest — тело запроса на добавление отложенного действия
type addActionRequest struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// AddAction добавляет действие в очередь отложенных действий
func (h *SessionHandler) AddAction(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.sellerCache(w, r)
	if !ok {
		return
	}

	var req addActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Type == "" {
		writeError(w, r, http.StatusBadRequest, "bad_request", "Тип действия не указан")
		return
	}

	action, err := sc.AddPendingAction(r.Context(), req.Type, req.Payload)
	if err != nil {
		h.logger.ErrorWithContext(r.Context(), "Ошибка записи отложенного действия",
			interfaces.LogField{Key: "type", Value: req.Type},
			interfaces.LogField{Key: "error", Value: err.Error()})
		writeError(w, r, http.StatusInternalServerError, "internal_error", "Ошибка записи отложенного действия")
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response{
		Success: true,
		Data:    action,
	})
}

// ListActions возвращает очередь отложенных действий в порядке добавления
func (h *SessionHandler) ListActions(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.sellerCache(w, r)
	if !ok {
		return
	}

	actions, err := sc.PendingActions(r.Context())
	if err != nil {
		h.logger.ErrorWithContext(r.Context(), "Ошибка чтения отложенных действий",
			interfaces.LogField{Key: "error", Value: err.Error()})
		writeError(w, r, http.StatusInternalServerError, "internal_error", "Ошибка чтения отложенных действий")
		return
	}
	if actions == nil {
		actions = []cache.PendingAction{}
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    actions,
		Meta:    map[string]int{"count": len(actions)},
	})
}

// DrainActions публикует очередь в тему воспроизведения и очищает ее
func (h *SessionHandler) DrainActions(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.sellerCache(w, r)
	if !ok {
		return
	}

	published, err := sc.Drain(r.Context(), h.messaging, h.actionsTopic)
	if err != nil {
		h.logger.ErrorWithContext(r.Context(), "Ошибка дренажа отложенных действий",
			interfaces.LogField{Key: "published", Value: published},
			interfaces.LogField{Key: "error", Value: err.Error()})
		writeError(w, r, http.StatusInternalServerError, "internal_error", "Ошибка дренажа отложенных действий")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    map[string]int{"published": published},
	})
}

// SetPreference сохраняет пресет фильтра или иное пользовательское значение
func (h *SessionHandler) SetPreference(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.sellerCache(w, r)
	if !ok {
		return
	}

	key := chi.URLParam(r, "key")
	if key == "" {
		writeError(w, r, http.StatusBadRequest, "bad_request", "Ключ не указан")
		return
	}

	var value json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&value); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", "Некорректное JSON-значение")
		return
	}

	if err := sc.Set(r.Context(), "pref:"+key, value, h.presetTTL); err != nil {
		h.logger.ErrorWithContext(r.Context(), "Ошибка сохранения пресета",
			interfaces.LogField{Key: "key", Value: key},
			interfaces.LogField{Key: "error", Value: err.Error()})
		writeError(w, r, http.StatusInternalServerError, "internal_error", "Ошибка сохранения пресета")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{Success: true})
}

// GetPreference возвращает сохраненный пресет
func (h *SessionHandler) GetPreference(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.sellerCache(w, r)
	if !ok {
		return
	}

	key := chi.URLParam(r, "key")
	if key == "" {
		writeError(w, r, http.StatusBadRequest, "bad_request", "Ключ не указан")
		return
	}

	var value json.RawMessage
	if err := sc.Get(r.Context(), "pref:"+key, &value); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			writeError(w, r, http.StatusNotFound, "not_found", "Пресет не найден или просрочен")
			return
		}
		h.logger.ErrorWithContext(r.Context(), "Ошибка чтения пресета",
			interfaces.LogField{Key: "key", Value: key},
			interfaces.LogField{Key: "error", Value: err.Error()})
		writeError(w, r, http.StatusInternalServerError, "internal_error", "Ошибка чтения пресета")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    value,
	})
}
