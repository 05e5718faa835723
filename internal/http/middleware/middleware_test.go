package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	echo "github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bharatcyclehub/bch-admin/internal/identity/identitytest"
	"github.com/bharatcyclehub/bch-admin/internal/model"
)

func newEcho(dir *identitytest.Directory) *echo.Echo {
	e := echo.New()
	g := e.Group("", FirebaseAdminMiddleware(dir), RateLimitMiddleware(RateLimitConfig{RPS: 1}))
	g.GET("/whoami", func(c echo.Context) error {
		uid, ok := UIDFromCtx(c)
		if !ok {
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.String(http.StatusOK, uid+" "+ClaimsFromCtx(c)["email"].(string))
	})
	return e
}

func do(e *echo.Echo, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestFirebaseAdminMiddleware(t *testing.T) {
	dir := identitytest.New()
	admin := dir.Add(model.Account{Email: "admin@bch.com", Claims: model.AdminClaims(model.RoleSuperAdmin)})
	staff := dir.Add(model.Account{Email: "staff@bch.com", Claims: map[string]any{"role": "viewer"}})
	dir.Tokens["admin-token"] = admin.UID
	dir.Tokens["staff-token"] = staff.UID
	e := newEcho(dir)

	rec := do(e, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, "Bearer nope")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, "Bearer staff-token")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(e, "Bearer admin-token")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, admin.UID+" admin@bch.com", rec.Body.String())

	// raw token without the Bearer prefix is accepted too; no redis means no limit
	for i := 0; i < 3; i++ {
		rec = do(e, "admin-token")
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer  abc "))
	assert.Equal(t, "abc", bearerToken("abc"))
	assert.Equal(t, "", bearerToken("  "))
}
