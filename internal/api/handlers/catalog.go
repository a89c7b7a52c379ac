package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sellerhub/backoffice/catalog-service/internal/adapters/productapi"
	"github.com/sellerhub/backoffice/catalog-service/internal/domain/catalog"
	"github.com/sellerhub/backoffice/catalog-service/internal/domain/models"
	"github.com/sellerhub/backoffice/catalog-service/internal/export"
	"github.com/sellerhub/backoffice/catalog-service/internal/security"
	"github.com/sellerhub/backoffice/catalog-service/internal/utils"
	"github.com/sellerhub/backoffice/catalog-service/pkg/interfaces"
)

// errorResponse представляет структуру ответа с ошибкой
type errorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

// response представляет структуру успешного ответа
type response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{
		Error:   code,
		Code:    status,
		Message: message,
	})
}

// writeDomainError переводит известные ошибки домена в HTTP-статусы
func writeDomainError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, utils.ErrUnauthorized):
		writeError(w, r, http.StatusUnauthorized, "unauthorized", "API продуктов отклонил токен")
	case errors.Is(err, utils.ErrAPIUnavailable):
		writeError(w, r, http.StatusBadGateway, "api_unavailable", "API продуктов недоступен")
	case errors.Is(err, utils.ErrReloadSuperseded):
		writeError(w, r, http.StatusConflict, "reload_superseded", "Перезагрузка вытеснена более новой")
	case errors.Is(err, utils.ErrUnknownEntry):
		writeError(w, r, http.StatusNotFound, "not_found", "Запись не найдена в каталоге")
	case errors.Is(err, utils.ErrInvalidSortSpec):
		writeError(w, r, http.StatusBadRequest, "bad_request", "Недопустимое поле или направление сортировки")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal_error", fallback)
	}
}

// sellerView достает ID продавца из контекста и возвращает его представление каталога
func (h *CatalogHandler) sellerView(w http.ResponseWriter, r *http.Request) (*catalog.View, bool) {
	sellerID, ok := security.SellerIDFromContext(r.Context())
	if !ok || sellerID == "" {
		writeError(w, r, http.StatusUnauthorized, "unauthorized", "ID продавца не определен")
		return nil, false
	}
	return h.sessions.View(sellerID), true
}

// CatalogHandler обработчик запросов каталога продавца
type CatalogHandler struct {
	sessions   *catalog.Sessions
	serializer *export.Serializer
	client     *productapi.Client
	logger     interfaces.LoggerPort
}

// NewCatalogHandler создает новый обработчик каталога
func NewCatalogHandler(sessions *catalog.Sessions, serializer *export.Serializer, client *productapi.Client, logger interfaces.LoggerPort) *CatalogHandler {
	return &CatalogHandler{
		sessions:   sessions,
		serializer: serializer,
		client:     client,
		logger:     logger,
	}
}

// GetCatalog возвращает видимый срез каталога с метаданными пагинации
func (h *CatalogHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	view, ok := h.sellerView(w, r)
	if !ok {
		return
	}

	slice := view.Visible()

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    slice.Entries,
		Meta:    slice.Pagination,
	})
}

// Reload перезагружает каталог из API продуктов
func (h *CatalogHandler) Reload(w http.ResponseWriter, r *http.Request) {
	view, ok := h.sellerView(w, r)
	if !ok {
		return
	}

	if err := view.Reload(r.Context()); err != nil {
		if errors.Is(err, utils.ErrReloadSuperseded) {
			// Не ошибка для клиента: более новая перезагрузка уже отработала
			render.Status(r, http.StatusOK)
			render.JSON(w, r, response{Success: true})
			return
		}
		h.logger.ErrorWithContext(r.Context(), "Ошибка перезагрузки каталога",
			interfaces.LogField{Key: "error", Value: err.Error()})
		writeDomainError(w, r, err, "Ошибка перезагрузки каталога")
		return
	}

	slice := view.Visible()

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    slice.Entries,
		Meta:    slice.Pagination,
	})
}

// SetFilter устанавливает фильтр каталога
func (h *CatalogHandler) SetFilter(w http.ResponseWriter, r *http.Request) {
	view, ok := h.sellerView(w, r)
	if !ok {
		return
	}

	var spec models.FilterSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", "Некорректное тело фильтра")
		return
	}

	view.SetFilter(spec)

	slice := view.Visible()

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    slice.Entries,
		Meta:    slice.Pagination,
	})
}

// SetSort устанавливает сортировку каталога
func (h *CatalogHandler) SetSort(w http.ResponseWriter, r *http.Request) {
	view, ok := h.sellerView(w, r)
	if !ok {
		return
	}

	var spec models.SortSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", "Некорректное тело сортировки")
		return
	}

	if err := view.SetSort(spec); err != nil {
		writeDomainError(w, r, err, "Ошибка установки сортировки")
		return
	}

	slice := view.Visible()

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    slice.Entries,
		Meta:    slice.Pagination,
	})
}

// SetPage устанавливает текущую страницу
func (h *CatalogHandler) SetPage(w http.ResponseWriter, r *http.Request) {
	view, ok := h.sellerView(w, r)
	if !ok {
		return
	}

	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil || n < 1 {
		writeError(w, r, http.StatusBadRequest, "bad_request", "Номер страницы должен быть положительным числом")
		return
	}

	view.SetPage(n)

	slice := view.Visible()

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    slice.Entries,
		Meta:    slice.Pagination,
	})
}

// GetStats возвращает сводную статистику по полной коллекции
func (h *CatalogHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	view, ok := h.sellerView(w, r)
	if !ok {
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    view.Stats(),
	})
}

// ToggleSelect переключает выделение записи
func (h *CatalogHandler) ToggleSelect(w http.ResponseWriter, r *http.Request) {
	view, ok := h.sellerView(w, r)
	if !ok {
		return
	}

	entryID := chi.URLParam(r, "id")
	if entryID == "" {
		writeError(w, r, http.StatusBadRequest, "bad_request", "ID записи не указан")
		return
	}

	if err := view.ToggleSelect(entryID); err != nil {
		writeDomainError(w, r, err, "Ошибка переключения выделения")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    view.SelectedIDs(),
	})
}

// SelectAll выделяет все записи, проходящие текущий фильтр
func (h *CatalogHandler) SelectAll(w http.ResponseWriter, r *http.Request) {
	view, ok := h.sellerView(w, r)
	if !ok {
		return
	}

	view.SelectAll()

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    view.SelectedIDs(),
	})
}

// ClearSelection снимает выделение со всех записей
func (h *CatalogHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	view, ok := h.sellerView(w, r)
	if !ok {
		return
	}

	view.ClearSelection()

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{Success: true})
}

// bulkDeleteRequest — тело запроса массового удаления.
// Пустой список означает удаление текущего выделения.
type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// BulkDelete удаляет записи параллельно и возвращает итог по каждой
func (h *CatalogHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	view, ok := h.sellerView(w, r)
	if !ok {
		return
	}

	var req bulkDeleteRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, http.StatusBadRequest, "bad_request", "Некорректное тело запроса")
			return
		}
	}

	ids := req.IDs
	if len(ids) == 0 {
		ids = view.SelectedIDs()
	}
	if len(ids) == 0 {
		writeError(w, r, http.StatusBadRequest, "bad_request", "Нет записей для удаления")
		return
	}

	result := view.BulkDelete(r.Context(), ids)

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: len(result.Failed) == 0,
		Data:    result,
	})
}

// exportRequest — тело запроса выгрузки. SelectedOnly ограничивает
// выгрузку текущим выделением вместо отфильтрованной коллекции.
type exportRequest struct {
	models.ExportSpec
	SelectedOnly bool `json:"selected_only,omitempty"`
}

// Export сериализует каталог в запрошенный формат и отдает файл
func (h *CatalogHandler) Export(w http.ResponseWriter, r *http.Request) {
	view, ok := h.sellerView(w, r)
	if !ok {
		return
	}

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", "Некорректное тело запроса выгрузки")
		return
	}

	entries := view.Filtered()
	if req.SelectedOnly {
		entries = view.Selected()
	}

	result, err := h.serializer.Serialize(r.Context(), entries, view.Stats(), req.ExportSpec)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrNoExportFields),
			errors.Is(err, utils.ErrUnknownExportField),
			errors.Is(err, utils.ErrUnknownFormat):
			writeError(w, r, http.StatusBadRequest, "bad_request", err.Error())
		case errors.Is(err, utils.ErrNothingToExport):
			writeError(w, r, http.StatusUnprocessableEntity, "nothing_to_export", "Нет записей, подходящих под условия выгрузки")
		default:
			h.logger.ErrorWithContext(r.Context(), "Ошибка выгрузки каталога",
				interfaces.LogField{Key: "format", Value: req.Format},
				interfaces.LogField{Key: "error", Value: err.Error()})
			writeError(w, r, http.StatusInternalServerError, "internal_error", "Ошибка выгрузки каталога")
		}
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Data)
}

// Upload передает Excel-файл с товарами в API продуктов
func (h *CatalogHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sellerView(w, r); !ok {
		return
	}

	// 32 МБ в памяти, остальное во временных файлах
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", "Некорректная multipart-форма")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", "Файл не приложен")
		return
	}
	defer file.Close()

	if err := h.client.UploadExcel(r.Context(), header.Filename, file); err != nil {
		h.logger.ErrorWithContext(r.Context(), "Ошибка загрузки файла товаров",
			interfaces.LogField{Key: "filename", Value: header.Filename},
			interfaces.LogField{Key: "error", Value: err.Error()})
		writeDomainError(w, r, err, "Ошибка загрузки файла товаров")
		return
	}

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, response{Success: true})
}

// DeleteAll удаляет все товары продавца через API продуктов
func (h *CatalogHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	view, ok := h.sellerView(w, r)
	if !ok {
		return
	}

	if err := h.client.DeleteAll(r.Context()); err != nil {
		h.logger.ErrorWithContext(r.Context(), "Ошибка удаления всех товаров",
			interfaces.LogField{Key: "error", Value: err.Error()})
		writeDomainError(w, r, err, "Ошибка удаления всех товаров")
		return
	}

	view.ClearSelection()

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{Success: true})
}
