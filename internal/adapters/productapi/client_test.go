package productapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sellerhub/backoffice/catalog-service/internal/domain/models"
	"github.com/sellerhub/backoffice/catalog-service/internal/security"
	"github.com/sellerhub/backoffice/catalog-service/internal/utils"
	"github.com/sellerhub/backoffice/catalog-service/pkg/interfaces"
)

// recordingLogger считает отладочные записи; клиент пишет только DebugWithContext
type recordingLogger struct {
	interfaces.LoggerPort
	debugs int
}

func (l *recordingLogger) DebugWithContext(ctx context.Context, msg string, args ...interface{}) {
	l.debugs++
}

func TestFetchPagePassesBearerToken(t *testing.T) {
	var gotAuth, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"products":[{"id":"1","name":"A","price":100}],"total":1,"page":1,"pages":1}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, nil)
	ctx := security.WithToken(context.Background(), "seller-token")

	page, err := client.FetchPage(ctx, 2, 50)
	if err != nil {
		t.Fatalf("ошибка запроса: %v", err)
	}

	if gotAuth != "Bearer seller-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if !strings.Contains(gotQuery, "page=2") || !strings.Contains(gotQuery, "limit=50") {
		t.Errorf("query = %q", gotQuery)
	}
	if len(page.Products) != 1 || page.Products[0].ID != "1" {
		t.Errorf("страница = %+v", page)
	}
	// Валюта по умолчанию проставляется при декодировании
	if page.Products[0].Currency != "RUB" {
		t.Errorf("Currency = %q, ожидалось RUB", page.Products[0].Currency)
	}
}

func TestClientLogsRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	log := &recordingLogger{}
	client := NewClient(srv.URL, 5*time.Second, log)
	if err := client.Delete(context.Background(), "1"); err != nil {
		t.Fatalf("ошибка удаления: %v", err)
	}
	if log.debugs != 1 {
		t.Errorf("отладочных записей = %d, ожидалась 1", log.debugs)
	}
}

func TestCreatePostsEntry(t *testing.T) {
	var gotMethod, gotPath, gotContentType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"42","name":"Новый товар","price":99}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, nil)
	created, err := client.Create(context.Background(), &models.CatalogEntry{
		Name:     "Новый товар",
		Category: "shoes",
		Price:    99,
	})
	if err != nil {
		t.Fatalf("ошибка создания: %v", err)
	}

	if gotMethod != http.MethodPost || gotPath != "/products" {
		t.Errorf("запрос = %s %s", gotMethod, gotPath)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if !strings.Contains(string(gotBody), `"Новый товар"`) {
		t.Errorf("тело запроса = %s", gotBody)
	}
	if created.ID != "42" || created.Currency != "RUB" {
		t.Errorf("создано = %+v", created)
	}
}

func TestUpdateSendsPatch(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.EscapedPath()
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"42","name":"Товар","price":120}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, nil)
	updated, err := client.Update(context.Background(), "42", map[string]interface{}{"price": 120})
	if err != nil {
		t.Fatalf("ошибка обновления: %v", err)
	}

	if gotMethod != http.MethodPut || gotPath != "/products/42" {
		t.Errorf("запрос = %s %s", gotMethod, gotPath)
	}
	if !strings.Contains(string(gotBody), `"price":120`) {
		t.Errorf("тело запроса = %s", gotBody)
	}
	if updated.Price != 120 {
		t.Errorf("обновлено = %+v", updated)
	}
}

func TestClientErrorMapping(t *testing.T) {
	status := http.StatusUnauthorized
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(`{"error":"detail"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, nil)
	ctx := context.Background()

	if err := client.Delete(ctx, "1"); !errors.Is(err, utils.ErrUnauthorized) {
		t.Errorf("401: ожидалась ErrUnauthorized, получено %v", err)
	}

	status = http.StatusBadGateway
	if err := client.Delete(ctx, "1"); !errors.Is(err, utils.ErrAPIUnavailable) {
		t.Errorf("502: ожидалась ErrAPIUnavailable, получено %v", err)
	}

	status = http.StatusConflict
	err := client.Delete(ctx, "1")
	if err == nil || errors.Is(err, utils.ErrAPIUnavailable) || errors.Is(err, utils.ErrUnauthorized) {
		t.Errorf("409: ожидалась ошибка с телом ответа, получено %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), "409") {
		t.Errorf("текст ошибки должен содержать статус: %v", err)
	}
}

func TestClientNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // закрыт до запроса

	client := NewClient(srv.URL, time.Second, nil)
	if err := client.DeleteAll(context.Background()); !errors.Is(err, utils.ErrAPIUnavailable) {
		t.Errorf("сетевая ошибка: ожидалась ErrAPIUnavailable, получено %v", err)
	}
}

func TestUploadExcelMultipart(t *testing.T) {
	var gotPath, gotFilename string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("форма не разбирается: %v", err)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("файл отсутствует: %v", err)
			return
		}
		defer file.Close()
		gotFilename = header.Filename
		buf := make([]byte, header.Size)
		file.Read(buf)
		gotBody = buf
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, nil)
	err := client.UploadExcel(context.Background(), "товары.xlsx", strings.NewReader("содержимое"))
	if err != nil {
		t.Fatalf("ошибка загрузки: %v", err)
	}

	if gotPath != "/products/upload-excel" {
		t.Errorf("путь = %q", gotPath)
	}
	if gotFilename != "товары.xlsx" {
		t.Errorf("имя файла = %q", gotFilename)
	}
	if string(gotBody) != "содержимое" {
		t.Errorf("тело файла = %q", gotBody)
	}
}

func TestDeleteEscapesID(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, nil)
	if err := client.Delete(context.Background(), "id с пробелом/слэшем"); err != nil {
		t.Fatalf("ошибка удаления: %v", err)
	}
	if strings.Contains(gotPath, " ") || strings.Count(gotPath, "/") != 2 {
		t.Errorf("идентификатор должен экранироваться в пути: %q", gotPath)
	}
}
