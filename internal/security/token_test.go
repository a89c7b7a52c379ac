package security

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("не-важно-какой-секрет"))
	if err != nil {
		t.Fatalf("ошибка подписи тестового токена: %v", err)
	}
	return signed
}

func TestSellerIDFromClaim(t *testing.T) {
	inspector := NewTokenInspector()

	token := signToken(t, jwt.MapClaims{"seller_id": "seller-42", "sub": "user-1"})
	got, err := inspector.SellerID(token)
	if err != nil {
		t.Fatalf("ошибка разбора: %v", err)
	}
	if got != "seller-42" {
		t.Errorf("SellerID = %q, ожидалось seller-42", got)
	}

	// Повторный вызов идет из кэша и дает тот же результат
	got, err = inspector.SellerID(token)
	if err != nil || got != "seller-42" {
		t.Errorf("повторный вызов: %q, %v", got, err)
	}
}

func TestSellerIDFallsBackToSubject(t *testing.T) {
	inspector := NewTokenInspector()

	token := signToken(t, jwt.MapClaims{"sub": "user-7"})
	got, err := inspector.SellerID(token)
	if err != nil {
		t.Fatalf("ошибка разбора: %v", err)
	}
	if got != "user-7" {
		t.Errorf("SellerID = %q, ожидалось user-7", got)
	}
}

func TestSellerIDExpiredTokenStillParses(t *testing.T) {
	inspector := NewTokenInspector()

	// Просроченный токен разбирается: валидность проверяет API продуктов
	token := signToken(t, jwt.MapClaims{
		"seller_id": "seller-1",
		"exp":       time.Now().Add(-time.Hour).Unix(),
	})
	got, err := inspector.SellerID(token)
	if err != nil || got != "seller-1" {
		t.Errorf("получено %q, %v", got, err)
	}
}

func TestSellerIDMalformed(t *testing.T) {
	inspector := NewTokenInspector()

	for _, token := range []string{"мусор", "a.b", "a.b.c"} {
		if _, err := inspector.SellerID(token); !errors.Is(err, ErrMalformedJWT) {
			t.Errorf("%q: ожидалась ErrMalformedJWT, получено %v", token, err)
		}
	}

	// Валидный токен без seller_id и без subject бесполезен
	token := signToken(t, jwt.MapClaims{"aud": "catalog"})
	if _, err := inspector.SellerID(token); !errors.Is(err, ErrMalformedJWT) {
		t.Errorf("токен без идентификатора: ожидалась ErrMalformedJWT, получено %v", err)
	}
}

func TestExtractBearer(t *testing.T) {
	tests := []struct {
		header string
		want   string
		wantOK bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc", "abc", true},
		{"", "", false},
		{"Basic dXNlcg==", "", false},
		{"Bearer ", "", false},
		{"abc", "", false},
	}

	for _, tt := range tests {
		got, err := ExtractBearer(tt.header)
		if tt.wantOK {
			if err != nil || got != tt.want {
				t.Errorf("ExtractBearer(%q) = %q, %v", tt.header, got, err)
			}
			continue
		}
		if !errors.Is(err, ErrNoToken) {
			t.Errorf("ExtractBearer(%q): ожидалась ErrNoToken, получено %v", tt.header, err)
		}
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()

	if got := TokenFromContext(ctx); got != "" {
		t.Errorf("пустой контекст: %q", got)
	}
	if _, ok := SellerIDFromContext(ctx); ok {
		t.Error("пустой контекст не содержит продавца")
	}

	ctx = WithToken(ctx, "токен")
	ctx = WithSellerID(ctx, "seller-1")

	if got := TokenFromContext(ctx); got != "токен" {
		t.Errorf("TokenFromContext = %q", got)
	}
	if got, ok := SellerIDFromContext(ctx); !ok || got != "seller-1" {
		t.Errorf("SellerIDFromContext = %q, %v", got, ok)
	}
}
