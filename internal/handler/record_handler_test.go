package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inventario-ufc/patrimonio-api/internal/dto"
	"github.com/inventario-ufc/patrimonio-api/internal/middleware"
	"github.com/inventario-ufc/patrimonio-api/internal/models"
)

type fakeRecordSrv struct {
	created       *models.AuditRecord
	err           error
	lastReq       dto.RecordRequest
	lastPhotos    []dto.PhotoUpload
	lastSubmitter *models.User
	lastUpdateID  string
	lastFilter    models.RecordFilter
}

func (f *fakeRecordSrv) Create(_ context.Context, req dto.RecordRequest, photos []dto.PhotoUpload, submitter *models.User) (*models.AuditRecord, error) {
	f.lastReq = req
	f.lastPhotos = photos
	f.lastSubmitter = submitter
	return f.created, f.err
}

func (f *fakeRecordSrv) Update(_ context.Context, id string, req dto.RecordRequest, submitter *models.User) (*models.AuditRecord, error) {
	f.lastUpdateID = id
	f.lastReq = req
	f.lastSubmitter = submitter
	return f.created, f.err
}

func (f *fakeRecordSrv) GetByID(context.Context, string) (*models.AuditRecord, error) {
	return f.created, f.err
}

func (f *fakeRecordSrv) GetLatestByTag(context.Context, string) (*models.AuditRecord, error) {
	return f.created, f.err
}

func (f *fakeRecordSrv) List(_ context.Context, filter models.RecordFilter) ([]models.AuditRecord, *models.Pagination, error) {
	f.lastFilter = filter
	return nil, &models.Pagination{Page: 1, PageSize: 20}, f.err
}

func multipartRecordBody(t *testing.T, payload string, photoField string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("payload", payload))
	if photoField != "" {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="`+photoField+`"; filename="foto.png"`)
		header.Set("Content-Type", "image/png")
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte("png-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestRecordHandlerCreateMultipart(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeRecordSrv{created: &models.AuditRecord{ID: "rec-1", Tag: "12345"}}
	handler := NewRecordHandler(srv)

	payload := `{"tombo":"12345","possui_etiqueta":"YES","campus_inventario":"FORTALEZA"}`
	body, contentType := multipartRecordBody(t, payload, "foto_1")

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/records", body)
	c.Request.Header.Set("Content-Type", contentType)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleUser})

	handler.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "12345", srv.lastReq.Tag)
	assert.Equal(t, models.TriStateYes, srv.lastReq.HasLabel)
	require.Len(t, srv.lastPhotos, 1)
	assert.Equal(t, 1, srv.lastPhotos[0].Slot)
	assert.Equal(t, "image/png", srv.lastPhotos[0].ContentType)
	require.NotNil(t, srv.lastSubmitter)
	assert.Equal(t, "user-1", srv.lastSubmitter.ID)
}

func TestRecordHandlerCreateRequiresPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewRecordHandler(&fakeRecordSrv{})

	body, contentType := multipartRecordBody(t, "", "")

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/records", body)
	c.Request.Header.Set("Content-Type", contentType)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1"})

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordHandlerUpdateForwardsID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeRecordSrv{created: &models.AuditRecord{ID: "rec-7"}}
	handler := NewRecordHandler(srv)

	payload := `{"tombo":"12345","possui_etiqueta":"NO","campus_inventario":"SOBRAL"}`
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPut, "/records/rec-7", bytes.NewBufferString(payload))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "rec-7"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleAdmin})

	handler.Update(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rec-7", srv.lastUpdateID)
}

func TestRecordHandlerListParsesRegisteredFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeRecordSrv{}
	handler := NewRecordHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/records?cadastrado=no&campus=SOBRAL&page=2", nil)

	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, srv.lastFilter.Registered)
	assert.Equal(t, models.TriStateNo, *srv.lastFilter.Registered)
	assert.Equal(t, "SOBRAL", srv.lastFilter.Campus)
	assert.Equal(t, 2, srv.lastFilter.Page)
}

func TestRecordHandlerListRejectsBadRegisteredFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewRecordHandler(&fakeRecordSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/records?cadastrado=maybe", nil)

	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
