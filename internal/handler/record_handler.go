package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/inventario-ufc/patrimonio-api/internal/dto"
	"github.com/inventario-ufc/patrimonio-api/internal/models"
	appErrors "github.com/inventario-ufc/patrimonio-api/pkg/errors"
	"github.com/inventario-ufc/patrimonio-api/pkg/response"
)

type recordService interface {
	Create(ctx context.Context, req dto.RecordRequest, photos []dto.PhotoUpload, submitter *models.User) (*models.AuditRecord, error)
	Update(ctx context.Context, id string, req dto.RecordRequest, submitter *models.User) (*models.AuditRecord, error)
	GetByID(ctx context.Context, id string) (*models.AuditRecord, error)
	GetLatestByTag(ctx context.Context, tag string) (*models.AuditRecord, error)
	List(ctx context.Context, filter models.RecordFilter) ([]models.AuditRecord, *models.Pagination, error)
}

// RecordHandler exposes the audit record endpoints.
type RecordHandler struct {
	service recordService
}

// NewRecordHandler constructs the handler.
func NewRecordHandler(service recordService) *RecordHandler {
	return &RecordHandler{service: service}
}

// photo slots arrive as multipart files named foto_1 and foto_2.
var photoFields = []string{"foto_1", "foto_2"}

// Create godoc
// @Summary Submit an audit record
// @Description Accepts a multipart form with a "payload" JSON field and optional foto_1/foto_2 files
// @Tags Records
// @Accept multipart/form-data
// @Produce json
// @Param payload formData string true "Record payload (JSON)"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /records [post]
func (h *RecordHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	payload := c.PostForm("payload")
	if payload == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "payload field is required"))
		return
	}

	var req dto.RecordRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid record payload"))
		return
	}

	photos, err := h.readPhotos(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	record, err := h.service.Create(c.Request.Context(), req, photos, userFromClaims(claims))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, record)
}

// Update godoc
// @Summary Correct an existing audit record
// @Tags Records
// @Accept json
// @Produce json
// @Param id path string true "Record ID"
// @Param payload body dto.RecordRequest true "Record payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /records/{id} [put]
func (h *RecordHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid record payload"))
		return
	}

	record, err := h.service.Update(c.Request.Context(), c.Param("id"), req, userFromClaims(claims))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, record, nil)
}

// Get godoc
// @Summary Get an audit record by ID
// @Tags Records
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /records/{id} [get]
func (h *RecordHandler) Get(c *gin.Context) {
	record, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// LatestByTag godoc
// @Summary Latest audit record for a tag
// @Description Returns the most recent submission for the given tag, used to pre-fill corrections
// @Tags Records
// @Produce json
// @Param tag path string true "Asset tag (tombo)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /records/tag/{tag}/latest [get]
func (h *RecordHandler) LatestByTag(c *gin.Context) {
	record, err := h.service.GetLatestByTag(c.Request.Context(), c.Param("tag"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// List godoc
// @Summary List audit records
// @Tags Records
// @Produce json
// @Param tombo query string false "Filter by tag"
// @Param campus query string false "Filter by auditing campus"
// @Param criado_por query string false "Filter by submitter ID"
// @Param cadastrado query string false "Filter by registry match (YES, NO, UNSET)"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /records [get]
func (h *RecordHandler) List(c *gin.Context) {
	filter := models.RecordFilter{
		Tag:       strings.TrimSpace(c.Query("tombo")),
		Campus:    strings.TrimSpace(c.Query("campus")),
		CreatedBy: strings.TrimSpace(c.Query("criado_por")),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if registered := strings.TrimSpace(c.Query("cadastrado")); registered != "" {
		state := models.TriState(strings.ToUpper(registered))
		if !state.Valid(false) {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "cadastrado must be YES, NO or UNSET"))
			return
		}
		filter.Registered = &state
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	records, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, records, pagination)
}

func (h *RecordHandler) readPhotos(c *gin.Context) ([]dto.PhotoUpload, error) {
	var photos []dto.PhotoUpload
	for slot, field := range photoFields {
		header, err := c.FormFile(field)
		if err != nil {
			if err == http.ErrMissingFile {
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid photo upload")
		}
		file, err := header.Open()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable photo upload")
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable photo upload")
		}
		photos = append(photos, dto.PhotoUpload{
			Slot:        slot + 1,
			Data:        data,
			ContentType: header.Header.Get("Content-Type"),
		})
	}
	return photos, nil
}
