package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bharatcyclehub/bch-admin/internal/http/middleware"
	"github.com/bharatcyclehub/bch-admin/internal/model"
)

type adminUser struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Admin bool   `json:"admin"`
}

// verifyAdminHandler echoes the identity the middleware accepted; the admin
// frontend calls it after sign-in.
func verifyAdminHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		uid, ok := middleware.UIDFromCtx(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}
		claims := middleware.ClaimsFromCtx(c)

		email, _ := claims["email"].(string)
		role, _ := claims[model.ClaimRole].(string)
		if role == "" {
			role = model.RoleAdmin
		}

		return c.JSON(http.StatusOK, map[string]any{
			"success": true,
			"user": adminUser{
				UID:   uid,
				Email: email,
				Role:  role,
				Admin: model.HasAdminClaim(claims),
			},
		})
	}
}
