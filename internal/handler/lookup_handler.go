package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/inventario-ufc/patrimonio-api/internal/dto"
	appErrors "github.com/inventario-ufc/patrimonio-api/pkg/errors"
	"github.com/inventario-ufc/patrimonio-api/pkg/response"
)

type lookupService interface {
	Lookup(ctx context.Context, tag, auditingCampus string) (*dto.LookupResponse, error)
}

type campusResolver interface {
	GetCampus(ctx context.Context, userID string) string
}

// LookupHandler serves reference-registry lookups for the audit form.
type LookupHandler struct {
	service     lookupService
	preferences campusResolver
}

// NewLookupHandler constructs the handler.
func NewLookupHandler(service lookupService, preferences campusResolver) *LookupHandler {
	return &LookupHandler{service: service, preferences: preferences}
}

// Lookup godoc
// @Summary Look up an asset by tag
// @Description Fetches the reference registry entry and the precomputed reconciliation state for the audit form
// @Tags Lookup
// @Produce json
// @Param tag path string true "Asset tag (tombo)"
// @Param campus query string false "Auditing campus; defaults to the user's campus preference"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /assets/{tag}/lookup [get]
func (h *LookupHandler) Lookup(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	campus := strings.TrimSpace(c.Query("campus"))
	if campus == "" && h.preferences != nil {
		campus = h.preferences.GetCampus(c.Request.Context(), claims.UserID)
	}

	res, err := h.service.Lookup(c.Request.Context(), c.Param("tag"), campus)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}
