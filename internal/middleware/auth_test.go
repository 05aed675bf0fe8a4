// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/talentmarket/internal/core"
)

type fakeVerifier struct {
	claims map[string]*AccessTokenClaims
	err    error
}

func (f *fakeVerifier) VerifyAccessToken(
	_ context.Context,
	token string,
) (*AccessTokenClaims, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.claims[token]
	if !ok {
		return nil, core.ErrTokenInvalid
	}
	return c, nil
}

func newVerifier() *fakeVerifier {
	return &fakeVerifier{claims: map[string]*AccessTokenClaims{
		"talent-token": {UserID: "user-1", Role: "talent"},
		"admin-token":  {UserID: "admin-1", Role: RoleAdmin},
	}}
}

func echoIdentity() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "%s|%s", GetUserID(r.Context()), GetUserRole(r.Context()))
	})
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body core.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	return body.Error.Code
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		cookie string
		want   string
	}{
		{"bearer", "Bearer abc", "", "abc"},
		{"case insensitive scheme", "bearer abc", "", "abc"},
		{"basic scheme", "Basic abc", "", ""},
		{"cookie fallback", "", "from-cookie", "from-cookie"},
		{"header wins over cookie", "Bearer abc", "from-cookie", "abc"},
		{"nothing", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: tt.cookie})
			}
			assert.Equal(t, tt.want, ExtractToken(req))
		})
	}
}

func TestAuthenticator(t *testing.T) {
	h := Authenticator(newVerifier())(echoIdentity())

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer talent-token")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-1|talent", rec.Body.String())
	})

	t.Run("valid cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "admin-token"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "admin-1|admin", rec.Body.String())
	})

	t.Run("unknown token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer forged")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "TOKEN_INVALID", errorCode(t, rec))
	})
}

func TestAuthenticatorMapsVerifierErrors(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{core.ErrTokenExpired, "TOKEN_EXPIRED"},
		{fmt.Errorf("wrapped: %w", core.ErrTokenRevoked), "TOKEN_REVOKED"},
		{core.UnauthorizedError("user no longer exists"), "UNAUTHORIZED"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			h := Authenticator(&fakeVerifier{err: tt.err})(echoIdentity())
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer anything")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	h := OptionalAuth(newVerifier())(echoIdentity())

	anon := httptest.NewRecorder()
	h.ServeHTTP(anon, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, anon.Code)
	assert.Equal(t, "|", anon.Body.String())

	bad := httptest.NewRequest(http.MethodGet, "/", nil)
	bad.Header.Set("Authorization", "Bearer forged")
	badRec := httptest.NewRecorder()
	h.ServeHTTP(badRec, bad)
	assert.Equal(t, http.StatusOK, badRec.Code)
	assert.Equal(t, "|", badRec.Body.String())

	good := httptest.NewRequest(http.MethodGet, "/", nil)
	good.Header.Set("Authorization", "Bearer talent-token")
	goodRec := httptest.NewRecorder()
	h.ServeHTTP(goodRec, good)
	assert.Equal(t, "user-1|talent", goodRec.Body.String())
}

func TestRequireAdmin(t *testing.T) {
	h := Authenticator(newVerifier())(RequireAdmin(echoIdentity()))

	talent := httptest.NewRequest(http.MethodGet, "/", nil)
	talent.Header.Set("Authorization", "Bearer talent-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, talent)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := httptest.NewRequest(http.MethodGet, "/", nil)
	admin.Header.Set("Authorization", "Bearer admin-token")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, admin)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	RequireAdmin(echoIdentity()).ServeHTTP(
		rec, httptest.NewRequest(http.MethodGet, "/", nil),
	)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
