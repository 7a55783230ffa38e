package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/inventario-ufc/patrimonio-api/internal/dto"
)

type fakeStatsSrv struct {
	summary    *dto.SummaryStats
	summaryHit bool
	summaryErr error
}

func (f *fakeStatsSrv) Divergences(context.Context) (*dto.DivergenceStats, bool, error) {
	return &dto.DivergenceStats{}, false, nil
}

func (f *fakeStatsSrv) Campuses(context.Context) (*dto.CampusStats, bool, error) {
	return &dto.CampusStats{}, false, nil
}

func (f *fakeStatsSrv) Ranking(context.Context) ([]dto.RankingEntry, bool, error) {
	return nil, false, nil
}

func (f *fakeStatsSrv) Summary(context.Context) (*dto.SummaryStats, bool, error) {
	return f.summary, f.summaryHit, f.summaryErr
}

type responseEnvelope struct {
	Data map[string]interface{} `json:"data"`
	Meta map[string]interface{} `json:"meta"`
}

func TestStatsHandlerSummarySetsCacheMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStatsHandler(&fakeStatsSrv{
		summary:    &dto.SummaryStats{TotalAudited: 4},
		summaryHit: true,
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/stats/summary", nil)

	handler.Summary(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Equal(t, float64(4), envelope.Data["total_inventariado"])
}

func TestStatsHandlerSummaryError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStatsHandler(&fakeStatsSrv{summaryErr: errors.New("boom")})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/stats/summary", nil)

	handler.Summary(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
