package handlers

import (
	"log"
	"net/http"

	"traindesk/internal/caching"
	"traindesk/internal/jobs/background"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

type HealthHandlers struct {
	pool      *pgxpool.Pool
	cacheSvc  caching.CacheService
	scheduler *background.JobScheduler
}

func NewHealthHandlers(pool *pgxpool.Pool, cacheSvc caching.CacheService, scheduler *background.JobScheduler) *HealthHandlers {
	return &HealthHandlers{pool: pool, cacheSvc: cacheSvc, scheduler: scheduler}
}

// Health reports dependency status. The cache being down degrades the report
// but not the status code; the database being down is a hard 503.
func (h *HealthHandlers) Health(c echo.Context) error {
	ctx := c.Request().Context()

	dbStatus := "ok"
	if err := h.pool.Ping(ctx); err != nil {
		log.Printf("ERROR: database ping failed: %v", err)
		dbStatus = "down"
	}

	cacheStatus := "ok"
	if h.cacheSvc != nil {
		if err := h.cacheSvc.Ping(ctx); err != nil {
			cacheStatus = "down"
		}
	} else {
		cacheStatus = "disabled"
	}

	status := http.StatusOK
	if dbStatus != "ok" {
		status = http.StatusServiceUnavailable
	}

	return c.JSON(status, map[string]string{
		"database": dbStatus,
		"cache":    cacheStatus,
	})
}

// Jobs reports the registered background jobs for operators.
func (h *HealthHandlers) Jobs(c echo.Context) error {
	if h.scheduler == nil {
		return c.JSON(http.StatusOK, map[string]interface{}{"total_jobs": 0, "jobs": []string{}})
	}
	return c.JSON(http.StatusOK, h.scheduler.GetJobStatus())
}
