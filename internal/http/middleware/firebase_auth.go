package middleware

import (
	"net/http"
	"strings"

	echo "github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/bharatcyclehub/bch-admin/internal/identity"
	"github.com/bharatcyclehub/bch-admin/internal/model"
)

const (
	ctxUID    = "uid"
	ctxClaims = "claims"
)

// UIDFromCtx extracts the authenticated uid set by FirebaseAdminMiddleware.
func UIDFromCtx(c echo.Context) (string, bool) {
	uid, ok := c.Get(ctxUID).(string)
	return uid, ok && uid != ""
}

// ClaimsFromCtx returns the verified token claims.
func ClaimsFromCtx(c echo.Context) map[string]any {
	claims, _ := c.Get(ctxClaims).(map[string]any)
	return claims
}

// bearerToken accepts "Bearer <token>" or the bare token.
func bearerToken(h string) string {
	h = strings.TrimSpace(h)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return h
}

// FirebaseAdminMiddleware authenticates requests with a Firebase ID token in
// the Authorization header and only lets through tokens whose admin claim is true.
func FirebaseAdminMiddleware(verifier identity.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing authentication token"})
			}

			uid, claims, err := verifier.Verify(c.Request().Context(), token)
			if err != nil {
				log.Warnf("token verification failed: %v", err)
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
			}
			if !model.HasAdminClaim(claims) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "admin access required"})
			}

			c.Set(ctxUID, uid)
			c.Set(ctxClaims, claims)
			return next(c)
		}
	}
}
