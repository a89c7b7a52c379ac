package productapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sellerhub/backoffice/catalog-service/internal/domain/models"
	"github.com/sellerhub/backoffice/catalog-service/internal/security"
	"github.com/sellerhub/backoffice/catalog-service/internal/utils"
	"github.com/sellerhub/backoffice/catalog-service/pkg/interfaces"
)

// Page представляет одну страницу ответа GET /products/paginated
type Page struct {
	Products []*models.CatalogEntry `json:"products"`
	Total    int                    `json:"total"`
	Page     int                    `json:"page"`
	Pages    int                    `json:"pages"`
}

// Client — HTTP клиент API продуктов.
// Bearer-токен продавца прокидывается из контекста запроса как есть;
// клиент не занимается повторами и бэкоффом.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     interfaces.LoggerPort
}

// NewClient создает новый клиент API продуктов
func NewClient(baseURL string, timeout time.Duration, logger interfaces.LoggerPort) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// FetchPage получает страницу каталога
func (c *Client) FetchPage(ctx context.Context, page, limit int) (*Page, error) {
	endpoint := fmt.Sprintf("%s/products/paginated?%s", c.baseURL, url.Values{
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(limit)},
	}.Encode())

	var result Page
	if err := c.do(ctx, http.MethodGet, endpoint, nil, "", &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// Create создает новую запись каталога
func (c *Client) Create(ctx context.Context, entry *models.CatalogEntry) (*models.CatalogEntry, error) {
	body, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации записи: %w", err)
	}

	var created models.CatalogEntry
	endpoint := c.baseURL + "/products"
	if err := c.do(ctx, http.MethodPost, endpoint, bytes.NewReader(body), "application/json", &created); err != nil {
		return nil, err
	}

	return &created, nil
}

// Update частично обновляет запись каталога
func (c *Client) Update(ctx context.Context, id string, patch map[string]interface{}) (*models.CatalogEntry, error) {
	body, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации изменений: %w", err)
	}

	var updated models.CatalogEntry
	endpoint := c.baseURL + "/products/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodPut, endpoint, bytes.NewReader(body), "application/json", &updated); err != nil {
		return nil, err
	}

	return &updated, nil
}

// Delete удаляет запись каталога
func (c *Client) Delete(ctx context.Context, id string) error {
	endpoint := c.baseURL + "/products/" + url.PathEscape(id)
	return c.do(ctx, http.MethodDelete, endpoint, nil, "", nil)
}

// DeleteAll удаляет все записи каталога продавца
func (c *Client) DeleteAll(ctx context.Context) error {
	endpoint := c.baseURL + "/products/all"
	return c.do(ctx, http.MethodDelete, endpoint, nil, "", nil)
}

// UploadExcel загружает файл Excel с товарами (multipart)
func (c *Client) UploadExcel(ctx context.Context, filename string, file io.Reader) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("ошибка подготовки multipart-формы: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("ошибка копирования файла в форму: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("ошибка завершения multipart-формы: %w", err)
	}

	endpoint := c.baseURL + "/products/upload-excel"
	return c.do(ctx, http.MethodPost, endpoint, &buf, writer.FormDataContentType(), nil)
}

// do выполняет запрос, подставляя токен из контекста, и декодирует ответ в out
func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if token := security.TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if c.logger != nil {
		c.logger.DebugWithContext(ctx, "Запрос к API продуктов",
			interfaces.LogField{Key: "method", Value: method},
			interfaces.LogField{Key: "endpoint", Value: endpoint},
		)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrAPIUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return utils.ErrUnauthorized
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: статус %d", utils.ErrAPIUnavailable, resp.StatusCode)
	case resp.StatusCode >= http.StatusBadRequest:
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("api продуктов ответил %d: %s", resp.StatusCode, payload)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ошибка декодирования ответа: %w", err)
	}

	return nil
}
