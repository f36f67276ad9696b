package auth

import (
	"context"
	"strings"

	"google.golang.org/grpc/metadata"
)

type tokenKey struct{}

const bearerPrefix = "bearer "

// WithToken сохраняет токен сессии в контексте запроса.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext возвращает токен сессии: из контекста, а при его отсутствии из gRPC-метаданных authorization.
func TokenFromContext(ctx context.Context) (string, bool) {
	if token, ok := ctx.Value(tokenKey{}).(string); ok && token != "" {
		return token, true
	}

	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", false
	}

	if val := md.Get("authorization"); len(val) > 0 {
		return ParseBearer(val[0])
	}

	return "", false
}

// ParseBearer извлекает токен из значения заголовка "Bearer <token>".
func ParseBearer(header string) (string, bool) {
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}
