package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/bharatcyclehub/bch-admin/internal/audit"
	"github.com/bharatcyclehub/bch-admin/internal/http/middleware"
	"github.com/bharatcyclehub/bch-admin/internal/metrics"
	"github.com/bharatcyclehub/bch-admin/internal/model"
	"github.com/bharatcyclehub/bch-admin/internal/repository"
	"github.com/bharatcyclehub/bch-admin/internal/service/reconcile"
	"github.com/bharatcyclehub/bch-admin/internal/util"
)

const (
	defaultLeadsLimit = 20
	maxLeadsLimit     = 500
)

func listLeadsHandler(leads repository.LeadsRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		limit := defaultLeadsLimit
		if v := c.QueryParam("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 || n > maxLeadsLimit {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "limit must be between 1 and 500"})
			}
			limit = n
		}

		var st model.PaymentStatus
		if raw := strings.ToUpper(strings.TrimSpace(c.QueryParam("status"))); raw != "" {
			st = model.PaymentStatus(raw)
			if !st.Valid() {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payment status"})
			}
		}

		res, err := leads.ListRecent(c.Request().Context(), limit, st)
		if err != nil {
			log.Errorf("list leads failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "query failed"})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"success": true,
			"limit":   limit,
			"count":   len(res),
			"leads":   res,
		})
	}
}

func leadStatsHandler(leads repository.LeadsRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		stats, err := leads.Stats(c.Request().Context())
		if err != nil {
			log.Errorf("lead stats failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "query failed"})
		}
		return c.JSON(http.StatusOK, map[string]any{"success": true, "stats": stats})
	}
}

// deleteLeadHandler removes one lead, archiving it first when an archive is configured.
func deleteLeadHandler(leads repository.LeadsRepository, archive reconcile.Archiver, sink audit.Sink) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		id := strings.TrimSpace(c.Param("id"))
		if id == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "lead id required"})
		}

		lead, err := leads.Get(ctx, id)
		if errors.Is(err, model.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "lead not found"})
		}
		if err != nil {
			log.Errorf("get lead %s failed: %v", id, err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "query failed"})
		}

		uid, _ := middleware.UIDFromCtx(c)
		runID := util.NewID()
		rec := audit.NewRecorder(runID, "api delete-lead uid="+uid, sink)

		if archive != nil {
			if err := archive.Archive(ctx, runID, []model.Lead{*lead}); err != nil {
				log.Errorf("archive lead %s failed: %v", id, err)
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "archive failed"})
			}
			rec.Record(ctx, model.ActionArchived, id, runID)
		}

		if err := leads.Delete(ctx, id); err != nil {
			log.Errorf("delete lead %s failed: %v", id, err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "delete failed"})
		}
		metrics.LeadsTotal.WithLabelValues("deleted").Inc()
		rec.Record(ctx, model.ActionDeleted, id, lead.Name)

		return c.JSON(http.StatusOK, map[string]any{"success": true, "id": id})
	}
}
