package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inventario-ufc/patrimonio-api/internal/dto"
	"github.com/inventario-ufc/patrimonio-api/internal/middleware"
	appErrors "github.com/inventario-ufc/patrimonio-api/pkg/errors"
	"github.com/inventario-ufc/patrimonio-api/pkg/response"
)

type statsService interface {
	Divergences(ctx context.Context) (*dto.DivergenceStats, bool, error)
	Campuses(ctx context.Context) (*dto.CampusStats, bool, error)
	Ranking(ctx context.Context) ([]dto.RankingEntry, bool, error)
	Summary(ctx context.Context) (*dto.SummaryStats, bool, error)
}

// StatsHandler wires the inventory statistics service to HTTP endpoints.
type StatsHandler struct {
	service statsService
}

// NewStatsHandler constructs the handler.
func NewStatsHandler(service statsService) *StatsHandler {
	return &StatsHandler{service: service}
}

// Divergences godoc
// @Summary Divergence counts per tracked field
// @Tags Statistics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats/divergences [get]
func (h *StatsHandler) Divergences(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	stats, cacheHit, err := h.service.Divergences(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, cacheHit, stats)
}

// Campuses godoc
// @Summary Audited records grouped by owning campus
// @Tags Statistics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats/campuses [get]
func (h *StatsHandler) Campuses(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	stats, cacheHit, err := h.service.Campuses(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, cacheHit, stats)
}

// Ranking godoc
// @Summary Auditor ranking by submission count
// @Tags Statistics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats/ranking [get]
func (h *StatsHandler) Ranking(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	ranking, cacheHit, err := h.service.Ranking(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, cacheHit, ranking)
}

// Summary godoc
// @Summary Consolidated inventory progress summary
// @Tags Statistics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats/summary [get]
func (h *StatsHandler) Summary(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	summary, cacheHit, err := h.service.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, cacheHit, summary)
}

func (h *StatsHandler) respond(c *gin.Context, cacheHit bool, payload interface{}) {
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, payload, nil, middleware.ExtractMeta(c))
}
