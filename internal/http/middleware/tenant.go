package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const tenantKey contextKey = "tenant_id"

// TenantHeader carries the tenant id when no signing secret is configured.
const TenantHeader = "X-Tenant-ID"

// Claims is the token payload. Only tenant_id is read; authorization is the
// issuer's concern.
type Claims struct {
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

// Tenant extracts the caller's tenant and injects it into the request context.
// With a secret, the tenant comes from an HS256 Bearer token. Without one it is
// read from the X-Tenant-ID header, which is meant for local development.
func Tenant(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				tenantID uuid.UUID
				err      error
			)

			if len(secret) == 0 {
				tenantID, err = uuid.Parse(r.Header.Get(TenantHeader))
			} else {
				tenantID, err = tenantFromToken(r.Header.Get("Authorization"), secret)
			}

			if err != nil || tenantID == uuid.Nil {
				writeJSONError(w, http.StatusUnauthorized, "missing or invalid tenant")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), tenantID)))
		})
	}
}

func tenantFromToken(header string, secret []byte) (uuid.UUID, error) {
	tokenStr, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return uuid.Nil, errors.New("missing bearer token")
	}

	var claims Claims

	_, err := jwt.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return uuid.Nil, err
	}

	return uuid.Parse(claims.TenantID)
}

func WithTenant(ctx context.Context, tenantID uuid.UUID) context.Context {
	return context.WithValue(ctx, tenantKey, tenantID)
}

// TenantFromContext returns the tenant injected by Tenant.
func TenantFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(tenantKey).(uuid.UUID)
	return id, ok
}
