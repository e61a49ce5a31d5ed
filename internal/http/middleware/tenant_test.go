package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func okHandler(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func sign(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()

	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)

	return signed
}

func TestTenant(t *testing.T) {
	tenantID := uuid.New()

	valid := Claims{
		TenantID:         tenantID.String(),
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}
	expired := Claims{
		TenantID:         tenantID.String(),
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))},
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "Valid", header: "Bearer " + sign(t, jwt.SigningMethodHS256, secret, valid), wantStatus: http.StatusOK},
		{name: "MissingHeader", header: "", wantStatus: http.StatusUnauthorized},
		{name: "NotBearer", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "WrongSecret", header: "Bearer " + sign(t, jwt.SigningMethodHS256, []byte("other"), valid), wantStatus: http.StatusUnauthorized},
		{name: "Expired", header: "Bearer " + sign(t, jwt.SigningMethodHS256, secret, expired), wantStatus: http.StatusUnauthorized},
		{name: "NoTenantClaim", header: "Bearer " + sign(t, jwt.SigningMethodHS256, secret, Claims{}), wantStatus: http.StatusUnauthorized},
		{name: "WrongAlgorithm", header: "Bearer " + sign(t, jwt.SigningMethodHS512, secret, valid), wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got uuid.UUID

			h := Tenant(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = TenantFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)

			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tenantID, got)
			}
		})
	}
}

func TestTenant_HeaderWithoutSecret(t *testing.T) {
	tenantID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TenantHeader, tenantID.String())

	rr := httptest.NewRecorder()
	Tenant(nil)(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TenantHeader, "not-a-uuid")

	rr = httptest.NewRecorder()
	Tenant(nil)(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
