package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bharatcyclehub/bch-admin/internal/audit"
	"github.com/bharatcyclehub/bch-admin/internal/config"
	"github.com/bharatcyclehub/bch-admin/internal/http/middleware"
	"github.com/bharatcyclehub/bch-admin/internal/identity"
	"github.com/bharatcyclehub/bch-admin/internal/logger"
	"github.com/bharatcyclehub/bch-admin/internal/metrics"
	"github.com/bharatcyclehub/bch-admin/internal/repository"
	"github.com/bharatcyclehub/bch-admin/internal/service/reconcile"
)

// Deps are the collaborators of the admin API. Archive, Audit and Redis are optional.
type Deps struct {
	Leads    repository.LeadsRepository
	Verifier identity.TokenVerifier
	Archive  reconcile.Archiver
	Audit    audit.Sink
	Redis    *redis.Client
}

type Server struct{ e *echo.Echo }

func NewServer(cfg config.Config, d Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echoMid.Recover(), echoMid.Logger(), countRequests)
	if len(cfg.HTTP.AllowOrigins) > 0 {
		e.Use(echoMid.CORSWithConfig(echoMid.CORSConfig{
			AllowOrigins: cfg.HTTP.AllowOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
		}))
	}

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// middlewares
	authMW := middleware.FirebaseAdminMiddleware(d.Verifier)
	rlMW := middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Redis:          d.Redis,
		RPS:            cfg.RateLimit.RPS,
		KeyPrefix:      "rl:uid:",
		Window:         time.Second,
		RetryAfterHint: true,
	})

	// routes
	v1 := e.Group("/v1", authMW, rlMW)
	v1.GET("/admin/verify", verifyAdminHandler())
	v1.GET("/leads", listLeadsHandler(d.Leads))
	v1.GET("/leads/stats", leadStatsHandler(d.Leads))
	v1.DELETE("/leads/:id", deleteLeadHandler(d.Leads, d.Archive, d.Audit))

	return &Server{e: e}
}

// countRequests feeds the request counter; route is the registered path, not the raw URL.
func countRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		code := c.Response().Status
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Path(), strconv.Itoa(code)).Inc()
		return err
	}
}

func (s *Server) Handler() http.Handler { return s.e }

func (s *Server) Start(addr string) error {
	logger.Log.Info("http: listening", zap.String("addr", addr))
	return s.e.Start(addr)
}
func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }
