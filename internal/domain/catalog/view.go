package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/sellerhub/backoffice/catalog-service/internal/adapters/productapi"
	"github.com/sellerhub/backoffice/catalog-service/internal/domain/models"
	"github.com/sellerhub/backoffice/catalog-service/internal/utils"
	"github.com/sellerhub/backoffice/catalog-service/pkg/interfaces"
	pkgutils "github.com/sellerhub/backoffice/catalog-service/pkg/utils"
)

// ProductAPI — операции API продуктов, нужные представлению каталога
type ProductAPI interface {
	FetchPage(ctx context.Context, page, limit int) (*productapi.Page, error)
	Delete(ctx context.Context, id string) error
}

// VisibleSlice — видимый срез каталога: результат применения
// фильтра, сортировки и пагинации к полной коллекции
type VisibleSlice struct {
	Entries    []*models.CatalogEntry `json:"entries"`
	Pagination *pkgutils.Pagination   `json:"pagination"`
}

// FailedDelete описывает одну неудачную попытку удаления
type FailedDelete struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// BulkDeleteResult — итог массового удаления. Частичный успех возможен:
// неудача одного запроса не откатывает остальные
type BulkDeleteResult struct {
	Succeeded []string       `json:"succeeded"`
	Failed    []FailedDelete `json:"failed"`
}

// View — представление каталога одного продавца.
//
// Держит рабочую копию коллекции (заменяется целиком при перезагрузке),
// текущий фильтр, сортировку, страницу и набор выделенных записей.
// Видимый срез всегда вычисляется как paginate(sort(filter(all))) —
// отдельной изменяемой копии не существует.
//
// Все переходы состояния сериализуются мьютексом: HTTP-обработчики
// дергают представление конкурентно.
type View struct {
	mu     sync.Mutex
	api    ProductAPI
	logger interfaces.LoggerPort

	entries   []*models.CatalogEntry
	filter    models.FilterSpec
	sort      models.SortSpec
	page      int
	pageSize  int
	selection map[string]struct{}

	// generation нумерует запросы перезагрузки: ответ устаревшей
	// перезагрузки не должен затереть состояние более новой
	generation  uint64
	reloadLimit int
}

// NewView создает представление каталога с пустой рабочей копией
func NewView(api ProductAPI, logger interfaces.LoggerPort, pageSize, reloadLimit int) *View {
	if pageSize < 1 {
		pageSize = 20
	}
	if reloadLimit < 1 {
		reloadLimit = 1000
	}

	return &View{
		api:         api,
		logger:      logger,
		page:        1,
		pageSize:    pageSize,
		selection:   make(map[string]struct{}),
		sort:        models.SortSpec{Field: models.SortByCreatedAt, Direction: models.SortDesc},
		reloadLimit: reloadLimit,
	}
}

// Reload запрашивает коллекцию у API продуктов и заменяет рабочую копию целиком.
//
// При ошибке прежнее состояние остается нетронутым: устаревшие, но валидные
// данные лучше пустого экрана. Ответ перезагрузки, которую успела обогнать
// более новая, отбрасывается (ErrReloadSuperseded).
func (v *View) Reload(ctx context.Context) error {
	v.mu.Lock()
	v.generation++
	gen := v.generation
	v.mu.Unlock()

	page, err := v.api.FetchPage(ctx, 1, v.reloadLimit)
	if err != nil {
		return fmt.Errorf("ошибка перезагрузки каталога: %w", err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if gen != v.generation {
		return utils.ErrReloadSuperseded
	}

	v.entries = page.Products

	// Выделение остается подмножеством известных идентификаторов
	known := make(map[string]struct{}, len(v.entries))
	for _, e := range v.entries {
		known[e.ID] = struct{}{}
	}
	for id := range v.selection {
		if _, ok := known[id]; !ok {
			delete(v.selection, id)
		}
	}

	return nil
}

// SetFilter устанавливает фильтр. Выделение не пересматривается:
// запись, выпавшая из фильтра, остается выделенной, но скрытой.
func (v *View) SetFilter(spec models.FilterSpec) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter = spec
	v.page = 1
}

// SetSort устанавливает сортировку
func (v *View) SetSort(spec models.SortSpec) error {
	if !spec.Valid() {
		return utils.ErrInvalidSortSpec
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.sort = spec
	return nil
}

// SetPage устанавливает текущую страницу (минимум 1)
func (v *View) SetPage(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if n < 1 {
		n = 1
	}
	v.page = n
}

// SetPageSize устанавливает размер страницы
func (v *View) SetPageSize(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if n < 1 {
		return
	}
	v.pageSize = n
}

// Visible возвращает текущий видимый срез
func (v *View) Visible() *VisibleSlice {
	v.mu.Lock()
	defer v.mu.Unlock()

	filtered := v.filter.Apply(v.entries)
	sorted := models.SortEntries(filtered, v.sort)

	pagination := pkgutils.NewPagination(v.page, v.pageSize)
	pagination.SetTotal(int64(len(sorted)))

	offset := pagination.GetOffset()
	if offset > len(sorted) {
		offset = len(sorted)
	}
	end := offset + pagination.GetLimit()
	if end > len(sorted) {
		end = len(sorted)
	}

	return &VisibleSlice{
		Entries:    sorted[offset:end],
		Pagination: pagination,
	}
}

// Filtered возвращает все записи, проходящие текущий фильтр,
// в отсортированном порядке, без пагинации
func (v *View) Filtered() []*models.CatalogEntry {
	v.mu.Lock()
	defer v.mu.Unlock()
	return models.SortEntries(v.filter.Apply(v.entries), v.sort)
}

// All возвращает полную рабочую копию коллекции
func (v *View) All() []*models.CatalogEntry {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]*models.CatalogEntry, len(v.entries))
	copy(out, v.entries)
	return out
}

// Stats считает сводку по полной, неотфильтрованной коллекции
func (v *View) Stats() models.Stats {
	v.mu.Lock()
	defer v.mu.Unlock()
	return models.Aggregate(v.entries)
}

// ToggleSelect переключает выделение записи.
// Неизвестный идентификатор — ошибка: выделение всегда остается
// подмножеством известных записей.
func (v *View) ToggleSelect(id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	known := false
	for _, e := range v.entries {
		if e.ID == id {
			known = true
			break
		}
	}
	if !known {
		return utils.ErrUnknownEntry
	}

	if _, ok := v.selection[id]; ok {
		delete(v.selection, id)
	} else {
		v.selection[id] = struct{}{}
	}

	return nil
}

// SelectAll выделяет ровно те записи, которые проходят текущий фильтр.
// Последующие изменения фильтра выделение задним числом не меняют.
func (v *View) SelectAll() {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, e := range v.filter.Apply(v.entries) {
		v.selection[e.ID] = struct{}{}
	}
}

// ClearSelection снимает выделение со всех записей
func (v *View) ClearSelection() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selection = make(map[string]struct{})
}

// Selected возвращает выделенные записи в порядке рабочей копии
func (v *View) Selected() []*models.CatalogEntry {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]*models.CatalogEntry, 0, len(v.selection))
	for _, e := range v.entries {
		if _, ok := v.selection[e.ID]; ok {
			out = append(out, e)
		}
	}
	return out
}

// SelectedIDs возвращает выделенные идентификаторы в порядке рабочей копии
func (v *View) SelectedIDs() []string {
	selected := v.Selected()
	ids := make([]string, len(selected))
	for i, e := range selected {
		ids[i] = e.ID
	}
	return ids
}

// BulkDelete удаляет записи по одной, параллельно.
//
// Семантика "дождаться всех, потом отчитаться": неудача одного запроса
// не прерывает и не откатывает остальные, итог содержит оба списка.
// Рабочая копия не изменяется — состояние отражает подтвержденные
// сервером данные только после Reload.
func (v *View) BulkDelete(ctx context.Context, ids []string) *BulkDeleteResult {
	type outcome struct {
		id  string
		err error
	}

	outcomes := make([]outcome, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			outcomes[i] = outcome{id: id, err: v.api.Delete(ctx, id)}
		}(i, id)
	}
	wg.Wait()

	result := &BulkDeleteResult{
		Succeeded: make([]string, 0, len(ids)),
	}
	for _, o := range outcomes {
		if o.err != nil {
			result.Failed = append(result.Failed, FailedDelete{ID: o.id, Reason: o.err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, o.id)
	}

	if len(result.Failed) > 0 && v.logger != nil {
		v.logger.WarnWithContext(ctx, "Массовое удаление завершилось частично",
			interfaces.LogField{Key: "succeeded", Value: len(result.Succeeded)},
			interfaces.LogField{Key: "failed", Value: len(result.Failed)},
		)
	}

	return result
}

// Sessions хранит представления каталога по продавцам, создавая их по требованию
type Sessions struct {
	mu     sync.Mutex
	views  map[string]*View
	api    ProductAPI
	logger interfaces.LoggerPort

	pageSize    int
	reloadLimit int
}

// NewSessions создает реестр представлений
func NewSessions(api ProductAPI, logger interfaces.LoggerPort, pageSize, reloadLimit int) *Sessions {
	return &Sessions{
		views:       make(map[string]*View),
		api:         api,
		logger:      logger,
		pageSize:    pageSize,
		reloadLimit: reloadLimit,
	}
}

// View возвращает представление каталога продавца, создавая его при первом обращении
func (s *Sessions) View(sellerID string) *View {
	s.mu.Lock()
	defer s.mu.Unlock()

	view, ok := s.views[sellerID]
	if !ok {
		view = NewView(s.api, s.logger, s.pageSize, s.reloadLimit)
		s.views[sellerID] = view
	}
	return view
}
