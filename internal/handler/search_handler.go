package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/inventario-ufc/patrimonio-api/internal/dto"
	appErrors "github.com/inventario-ufc/patrimonio-api/pkg/errors"
	"github.com/inventario-ufc/patrimonio-api/pkg/response"
)

type searchService interface {
	Rooms(ctx context.Context, userID, query string, seq uint64, limit int) (*dto.SuggestionResponse, error)
	Responsibles(ctx context.Context, userID, query string, seq uint64, limit int) (*dto.SuggestionResponse, error)
	Assets(ctx context.Context, userID, query string, seq uint64, limit, offset int) (*dto.AssetSearchResponse, error)
}

// SearchHandler serves typeahead suggestions and responsible-based search.
type SearchHandler struct {
	service searchService
}

// NewSearchHandler constructs the handler.
func NewSearchHandler(service searchService) *SearchHandler {
	return &SearchHandler{service: service}
}

// Rooms godoc
// @Summary Room typeahead suggestions
// @Tags Search
// @Produce json
// @Param q query string true "Prefix"
// @Param seq query int false "Client sequence number for stale detection"
// @Param limit query int false "Max suggestions"
// @Success 200 {object} response.Envelope
// @Router /search/rooms [get]
func (h *SearchHandler) Rooms(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	seq, limit, _ := searchParams(c)
	res, err := h.service.Rooms(c.Request.Context(), claims.UserID, strings.TrimSpace(c.Query("q")), seq, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Responsibles godoc
// @Summary Responsible typeahead suggestions
// @Tags Search
// @Produce json
// @Param q query string true "Prefix"
// @Param seq query int false "Client sequence number for stale detection"
// @Param limit query int false "Max suggestions"
// @Success 200 {object} response.Envelope
// @Router /search/responsibles [get]
func (h *SearchHandler) Responsibles(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	seq, limit, _ := searchParams(c)
	res, err := h.service.Responsibles(c.Request.Context(), claims.UserID, strings.TrimSpace(c.Query("q")), seq, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Assets godoc
// @Summary Search reference assets by responsible
// @Tags Search
// @Produce json
// @Param name query string true "Responsible name fragment"
// @Param seq query int false "Client sequence number for stale detection"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Router /search/assets [get]
func (h *SearchHandler) Assets(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	seq, limit, offset := searchParams(c)
	res, err := h.service.Assets(c.Request.Context(), claims.UserID, strings.TrimSpace(c.Query("name")), seq, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

func searchParams(c *gin.Context) (seq uint64, limit, offset int) {
	seq, _ = strconv.ParseUint(c.Query("seq"), 10, 64)
	limit, _ = strconv.Atoi(c.Query("limit"))
	offset, _ = strconv.Atoi(c.Query("offset"))
	return seq, limit, offset
}
