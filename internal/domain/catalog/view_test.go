package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sellerhub/backoffice/catalog-service/internal/adapters/productapi"
	"github.com/sellerhub/backoffice/catalog-service/internal/domain/models"
	"github.com/sellerhub/backoffice/catalog-service/internal/utils"
)

// fakeAPI — управляемая замена клиента API продуктов
type fakeAPI struct {
	entries   []*models.CatalogEntry
	fetchFunc func(ctx context.Context, page, limit int) (*productapi.Page, error)
	failIDs   map[string]error
}

func (f *fakeAPI) FetchPage(ctx context.Context, page, limit int) (*productapi.Page, error) {
	if f.fetchFunc != nil {
		return f.fetchFunc(ctx, page, limit)
	}
	return &productapi.Page{
		Products: f.entries,
		Total:    len(f.entries),
		Page:     page,
		Pages:    1,
	}, nil
}

func (f *fakeAPI) Delete(ctx context.Context, id string) error {
	if err, ok := f.failIDs[id]; ok {
		return err
	}
	return nil
}

func makeEntries(n int) []*models.CatalogEntry {
	entries := make([]*models.CatalogEntry, n)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		entries[i] = &models.CatalogEntry{
			ID:        fmt.Sprintf("%03d", i+1),
			Name:      fmt.Sprintf("Товар %d", i+1),
			Category:  "shoes",
			Price:     float64((i + 1) * 10),
			InStock:   i%2 == 0,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
	}
	return entries
}

func newTestView(t *testing.T, api *fakeAPI, pageSize int) *View {
	t.Helper()
	v := NewView(api, nil, pageSize, 1000)
	if err := v.Reload(context.Background()); err != nil {
		t.Fatalf("ошибка начальной загрузки: %v", err)
	}
	return v
}

func TestViewReloadReplacesCollection(t *testing.T) {
	api := &fakeAPI{entries: makeEntries(5)}
	v := newTestView(t, api, 20)

	if got := len(v.All()); got != 5 {
		t.Fatalf("загружено %d записей, ожидалось 5", got)
	}

	api.entries = makeEntries(2)
	if err := v.Reload(context.Background()); err != nil {
		t.Fatalf("ошибка перезагрузки: %v", err)
	}
	if got := len(v.All()); got != 2 {
		t.Errorf("после перезагрузки %d записей, ожидалось 2", got)
	}
}

func TestViewReloadKeepsStateOnError(t *testing.T) {
	api := &fakeAPI{entries: makeEntries(3)}
	v := newTestView(t, api, 20)

	api.fetchFunc = func(ctx context.Context, page, limit int) (*productapi.Page, error) {
		return nil, errors.New("connection refused")
	}

	if err := v.Reload(context.Background()); err == nil {
		t.Fatal("ожидалась ошибка перезагрузки")
	}
	if got := len(v.All()); got != 3 {
		t.Errorf("при ошибке рабочая копия должна остаться нетронутой, записей: %d", got)
	}
}

func TestViewReloadSuperseded(t *testing.T) {
	api := &fakeAPI{entries: makeEntries(3)}
	v := NewView(api, nil, 20, 1000)

	// Пока первая перезагрузка ждет ответа API, успевает целиком
	// отработать вторая. Ответ первой должен быть отброшен.
	first := true
	api.fetchFunc = func(ctx context.Context, page, limit int) (*productapi.Page, error) {
		if first {
			first = false
			newer := &fakeAPI{entries: makeEntries(7)}
			v.api = newer
			if err := v.Reload(ctx); err != nil {
				t.Fatalf("вложенная перезагрузка: %v", err)
			}
			v.api = api
			return &productapi.Page{Products: makeEntries(3)}, nil
		}
		return &productapi.Page{Products: makeEntries(7)}, nil
	}

	err := v.Reload(context.Background())
	if !errors.Is(err, utils.ErrReloadSuperseded) {
		t.Fatalf("ожидалась ErrReloadSuperseded, получено %v", err)
	}
	if got := len(v.All()); got != 7 {
		t.Errorf("должно остаться состояние более новой перезагрузки, записей: %d", got)
	}
}

func TestViewVisiblePagination(t *testing.T) {
	api := &fakeAPI{entries: makeEntries(45)}
	v := newTestView(t, api, 20)

	slice := v.Visible()
	if len(slice.Entries) != 20 {
		t.Errorf("первая страница: %d записей, ожидалось 20", len(slice.Entries))
	}
	if slice.Pagination.TotalPages != 3 {
		t.Errorf("TotalPages = %d, ожидалось 3", slice.Pagination.TotalPages)
	}

	v.SetPage(3)
	slice = v.Visible()
	if len(slice.Entries) != 5 {
		t.Errorf("последняя страница: %d записей, ожидалось 5", len(slice.Entries))
	}

	// Страница за пределами коллекции дает пустой срез, а не панику
	v.SetPage(99)
	slice = v.Visible()
	if len(slice.Entries) != 0 {
		t.Errorf("страница за пределами: %d записей, ожидалось 0", len(slice.Entries))
	}
}

func TestViewVisiblePagesCoverFilteredSequence(t *testing.T) {
	api := &fakeAPI{entries: makeEntries(45)}
	v := newTestView(t, api, 10)

	inStock := true
	v.SetFilter(models.FilterSpec{InStock: &inStock})
	if err := v.SetSort(models.SortSpec{Field: models.SortByPrice, Direction: models.SortDesc}); err != nil {
		t.Fatal(err)
	}

	want := v.Filtered()

	// Конкатенация всех страниц воспроизводит отфильтрованную
	// отсортированную последовательность без пропусков и дублей
	var got []*models.CatalogEntry
	v.SetPage(1)
	slice := v.Visible()
	for page := 1; page <= slice.Pagination.TotalPages; page++ {
		v.SetPage(page)
		got = append(got, v.Visible().Entries...)
	}

	if len(got) != len(want) {
		t.Fatalf("по страницам собрано %d записей, ожидалось %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID {
			t.Errorf("позиция %d: %s, ожидалось %s", i, got[i].ID, want[i].ID)
		}
	}

	seen := make(map[string]struct{}, len(got))
	for _, e := range got {
		if _, ok := seen[e.ID]; ok {
			t.Errorf("запись %s встретилась на страницах дважды", e.ID)
		}
		seen[e.ID] = struct{}{}
	}
}

func TestViewSetFilterResetsPage(t *testing.T) {
	api := &fakeAPI{entries: makeEntries(45)}
	v := newTestView(t, api, 20)

	v.SetPage(3)
	v.SetFilter(models.FilterSpec{Search: "Товар"})

	slice := v.Visible()
	if slice.Pagination.Page != 1 {
		t.Errorf("смена фильтра должна сбрасывать страницу, Page = %d", slice.Pagination.Page)
	}
}

func TestViewSetSortInvalid(t *testing.T) {
	api := &fakeAPI{entries: makeEntries(3)}
	v := newTestView(t, api, 20)

	err := v.SetSort(models.SortSpec{Field: "rating"})
	if !errors.Is(err, utils.ErrInvalidSortSpec) {
		t.Errorf("ожидалась ErrInvalidSortSpec, получено %v", err)
	}
}

func TestViewSelection(t *testing.T) {
	api := &fakeAPI{entries: makeEntries(5)}
	v := newTestView(t, api, 20)

	if err := v.ToggleSelect("001"); err != nil {
		t.Fatalf("переключение: %v", err)
	}
	if err := v.ToggleSelect("003"); err != nil {
		t.Fatalf("переключение: %v", err)
	}

	got := v.SelectedIDs()
	if len(got) != 2 || got[0] != "001" || got[1] != "003" {
		t.Errorf("выделение = %v, ожидалось [001 003]", got)
	}

	// Повторное переключение снимает выделение
	if err := v.ToggleSelect("001"); err != nil {
		t.Fatalf("переключение: %v", err)
	}
	if got := v.SelectedIDs(); len(got) != 1 || got[0] != "003" {
		t.Errorf("выделение = %v, ожидалось [003]", got)
	}

	if err := v.ToggleSelect("нет-такого"); !errors.Is(err, utils.ErrUnknownEntry) {
		t.Errorf("ожидалась ErrUnknownEntry, получено %v", err)
	}
}

func TestViewSelectionSurvivesFilterChange(t *testing.T) {
	api := &fakeAPI{entries: makeEntries(5)}
	v := newTestView(t, api, 20)

	if err := v.ToggleSelect("002"); err != nil {
		t.Fatal(err)
	}

	// Фильтр, под который запись 002 не попадает
	v.SetFilter(models.FilterSpec{Search: "Товар 4"})

	got := v.SelectedIDs()
	if len(got) != 1 || got[0] != "002" {
		t.Errorf("выделение должно пережить смену фильтра, получено %v", got)
	}
}

func TestViewSelectAllFilteredOnly(t *testing.T) {
	api := &fakeAPI{entries: makeEntries(5)}
	v := newTestView(t, api, 20)

	inStock := true
	v.SetFilter(models.FilterSpec{InStock: &inStock})
	v.SelectAll()

	// В наличии записи 001, 003, 005
	got := v.SelectedIDs()
	if len(got) != 3 {
		t.Fatalf("выделено %d записей, ожидалось 3: %v", len(got), got)
	}

	// Снятие фильтра не расширяет выделение задним числом
	v.SetFilter(models.FilterSpec{})
	if got := v.SelectedIDs(); len(got) != 3 {
		t.Errorf("после снятия фильтра выделение должно сохраниться, получено %v", got)
	}

	v.ClearSelection()
	if got := v.SelectedIDs(); len(got) != 0 {
		t.Errorf("после очистки выделение пусто, получено %v", got)
	}
}

func TestViewReloadPrunesSelection(t *testing.T) {
	api := &fakeAPI{entries: makeEntries(5)}
	v := newTestView(t, api, 20)

	if err := v.ToggleSelect("001"); err != nil {
		t.Fatal(err)
	}
	if err := v.ToggleSelect("005"); err != nil {
		t.Fatal(err)
	}

	// Запись 005 исчезла на стороне API
	api.entries = makeEntries(4)
	if err := v.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}

	got := v.SelectedIDs()
	if len(got) != 1 || got[0] != "001" {
		t.Errorf("выделение должно остаться подмножеством известных записей, получено %v", got)
	}
}

func TestViewBulkDeletePartialFailure(t *testing.T) {
	api := &fakeAPI{
		entries: makeEntries(4),
		failIDs: map[string]error{
			"002": errors.New("internal server error"),
			"004": errors.New("not found"),
		},
	}
	v := newTestView(t, api, 20)

	result := v.BulkDelete(context.Background(), []string{"001", "002", "003", "004"})

	if len(result.Succeeded) != 2 {
		t.Errorf("Succeeded = %v, ожидалось 2 записи", result.Succeeded)
	}
	if len(result.Failed) != 2 {
		t.Fatalf("Failed = %v, ожидалось 2 записи", result.Failed)
	}

	failed := make(map[string]string, len(result.Failed))
	for _, f := range result.Failed {
		failed[f.ID] = f.Reason
	}
	if failed["002"] != "internal server error" {
		t.Errorf("причина для 002 = %q", failed["002"])
	}
	if failed["004"] != "not found" {
		t.Errorf("причина для 004 = %q", failed["004"])
	}

	// Рабочая копия не меняется до перезагрузки
	if got := len(v.All()); got != 4 {
		t.Errorf("до перезагрузки в копии %d записей, ожидалось 4", got)
	}
}

func TestSessionsViewPerSeller(t *testing.T) {
	api := &fakeAPI{entries: makeEntries(2)}
	sessions := NewSessions(api, nil, 20, 1000)

	a := sessions.View("seller-a")
	b := sessions.View("seller-b")
	if a == b {
		t.Error("у разных продавцов должны быть разные представления")
	}
	if again := sessions.View("seller-a"); again != a {
		t.Error("повторное обращение возвращает то же представление")
	}
}
