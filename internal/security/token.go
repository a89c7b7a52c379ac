package security

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/patrickmn/go-cache"
)

var (
	ErrNoToken      = errors.New("authorization token is missing")
	ErrMalformedJWT = errors.New("malformed bearer token")
)

type contextKey string

const (
	tokenKey  contextKey = "bearer_token"
	sellerKey contextKey = "seller_id"
)

// Claims — интересующие нас утверждения из токена продавца
type Claims struct {
	jwt.RegisteredClaims
	SellerID string `json:"seller_id"`
}

// TokenInspector извлекает идентификатор продавца из bearer-токена.
// Токен не валидируется: проверка подписи — зона ответственности
// API продуктов, мы лишь прокидываем токен дальше. Разобранные
// claims кэшируются, чтобы не парсить один и тот же токен на каждый запрос.
type TokenInspector struct {
	parser *jwt.Parser
	claims *cache.Cache
}

// NewTokenInspector создает новый инспектор токенов
func NewTokenInspector() *TokenInspector {
	return &TokenInspector{
		parser: jwt.NewParser(jwt.WithoutClaimsValidation()),
		claims: cache.New(5*time.Minute, 10*time.Minute),
	}
}

// SellerID возвращает идентификатор продавца из токена.
// Используется seller_id из claims, при его отсутствии — subject.
func (t *TokenInspector) SellerID(tokenString string) (string, error) {
	if cached, found := t.claims.Get(tokenString); found {
		return cached.(string), nil
	}

	var claims Claims
	_, _, err := t.parser.ParseUnverified(tokenString, &claims)
	if err != nil {
		return "", ErrMalformedJWT
	}

	sellerID := claims.SellerID
	if sellerID == "" {
		sellerID = claims.Subject
	}
	if sellerID == "" {
		return "", ErrMalformedJWT
	}

	ttl := cache.DefaultExpiration
	if claims.ExpiresAt != nil {
		if until := time.Until(claims.ExpiresAt.Time); until > 0 {
			ttl = until
		}
	}
	t.claims.Set(tokenString, sellerID, ttl)

	return sellerID, nil
}

// ExtractBearer достает токен из заголовка Authorization
func ExtractBearer(header string) (string, error) {
	if header == "" {
		return "", ErrNoToken
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", ErrNoToken
	}

	return parts[1], nil
}

// WithToken кладет bearer-токен в контекст для прокидывания в API продуктов
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// TokenFromContext возвращает bearer-токен из контекста
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}

// WithSellerID кладет идентификатор продавца в контекст
func WithSellerID(ctx context.Context, sellerID string) context.Context {
	return context.WithValue(ctx, sellerKey, sellerID)
}

// SellerIDFromContext возвращает идентификатор продавца из контекста
func SellerIDFromContext(ctx context.Context) (string, bool) {
	sellerID, ok := ctx.Value(sellerKey).(string)
	return sellerID, ok
}
