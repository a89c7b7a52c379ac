package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sellerhub/backoffice/catalog-service/internal/security"
)

func okHandler(t *testing.T, wantSeller string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wantSeller != "" {
			sellerID, ok := security.SellerIDFromContext(r.Context())
			if !ok || sellerID != wantSeller {
				t.Errorf("seller_id в контексте = %q, ожидалось %q", sellerID, wantSeller)
			}
			if security.TokenFromContext(r.Context()) == "" {
				t.Error("токен должен попасть в контекст")
			}
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestID(t *testing.T) {
	handler := RequestID(okHandler(t, ""))

	// Без заголовка генерируется новый идентификатор
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID должен быть проставлен")
	}

	// Присланный идентификатор сохраняется
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "req-123" {
		t.Errorf("X-Request-ID = %q, ожидалось req-123", got)
	}
}

func TestAuth(t *testing.T) {
	inspector := security.NewTokenInspector()
	handler := Auth(inspector, nil)(okHandler(t, "seller-9"))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"seller_id": "seller-9"})
	signed, err := token.SignedString([]byte("секрет"))
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("статус = %d, ожидался 200", rec.Code)
	}
}

func TestAuthRejectsMissingOrBadToken(t *testing.T) {
	inspector := security.NewTokenInspector()
	handler := Auth(inspector, nil)(okHandler(t, ""))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("без заголовка: статус = %d, ожидался 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer мусор")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("с мусорным токеном: статус = %d, ожидался 401", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	handler := CORS([]string{"https://app.example.com"})(okHandler(t, ""))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("Allow-Origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("чужой origin не должен получать заголовки CORS, получено %q", got)
	}

	// Предварительный запрос OPTIONS завершается сразу
	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("OPTIONS: статус = %d, ожидался 200", rec.Code)
	}
}
