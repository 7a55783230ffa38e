package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/inventario-ufc/patrimonio-api/internal/dto"
	"github.com/inventario-ufc/patrimonio-api/internal/middleware"
	"github.com/inventario-ufc/patrimonio-api/internal/models"
)

type fakeLookupSrv struct {
	resp       *dto.LookupResponse
	err        error
	lastTag    string
	lastCampus string
}

func (f *fakeLookupSrv) Lookup(_ context.Context, tag, campus string) (*dto.LookupResponse, error) {
	f.lastTag = tag
	f.lastCampus = campus
	return f.resp, f.err
}

type fakePrefs struct {
	campus string
}

func (f *fakePrefs) GetCampus(context.Context, string) string { return f.campus }

func TestLookupHandlerUsesCampusQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeLookupSrv{resp: &dto.LookupResponse{Tag: "12345", Found: true}}
	handler := NewLookupHandler(srv, &fakePrefs{campus: "FORTALEZA"})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/assets/12345?campus=SOBRAL", nil)
	c.Params = gin.Params{{Key: "tag", Value: "12345"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1"})

	handler.Lookup(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "12345", srv.lastTag)
	assert.Equal(t, "SOBRAL", srv.lastCampus)
}

func TestLookupHandlerFallsBackToPreference(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeLookupSrv{resp: &dto.LookupResponse{Tag: "12345"}}
	handler := NewLookupHandler(srv, &fakePrefs{campus: "QUIXADA"})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/assets/12345", nil)
	c.Params = gin.Params{{Key: "tag", Value: "12345"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1"})

	handler.Lookup(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "QUIXADA", srv.lastCampus)
}

func TestLookupHandlerRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewLookupHandler(&fakeLookupSrv{}, &fakePrefs{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/assets/12345", nil)

	handler.Lookup(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
