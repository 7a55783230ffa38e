package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inventario-ufc/patrimonio-api/internal/dto"
	appErrors "github.com/inventario-ufc/patrimonio-api/pkg/errors"
	"github.com/inventario-ufc/patrimonio-api/pkg/response"
)

type preferenceService interface {
	GetCampus(ctx context.Context, userID string) string
	SetCampus(ctx context.Context, userID, campus string) error
}

// PreferenceHandler exposes per-user preference endpoints.
type PreferenceHandler struct {
	service preferenceService
}

// NewPreferenceHandler constructs the handler.
func NewPreferenceHandler(service preferenceService) *PreferenceHandler {
	return &PreferenceHandler{service: service}
}

// GetCampus godoc
// @Summary Get the preferred auditing campus
// @Tags Preferences
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /preferences/campus [get]
func (h *PreferenceHandler) GetCampus(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	campus := h.service.GetCampus(c.Request.Context(), claims.UserID)
	response.JSON(c, http.StatusOK, dto.CampusPreferenceResponse{Campus: campus}, nil)
}

// SetCampus godoc
// @Summary Set the preferred auditing campus
// @Tags Preferences
// @Accept json
// @Produce json
// @Param payload body dto.CampusPreferenceRequest true "Campus preference"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /preferences/campus [put]
func (h *PreferenceHandler) SetCampus(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CampusPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid preference payload"))
		return
	}

	if err := h.service.SetCampus(c.Request.Context(), claims.UserID, req.Campus); err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, dto.CampusPreferenceResponse{Campus: req.Campus}, nil)
}
