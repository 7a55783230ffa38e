package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inventario-ufc/patrimonio-api/internal/models"
	appErrors "github.com/inventario-ufc/patrimonio-api/pkg/errors"
)

type fakeAssetReader struct {
	asset *models.AssetReference
	err   error
}

func (f *fakeAssetReader) FindByTag(context.Context, string) (*models.AssetReference, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.asset, nil
}

func TestLookupFound(t *testing.T) {
	assets := &fakeAssetReader{asset: &models.AssetReference{
		Tag:         "12345",
		Description: "Mesa de escritório",
		Campus:      "SOBRAL",
	}}
	svc := NewLookupService(assets, NewReconciler("FORTALEZA"), zap.NewNop())

	resp, err := svc.Lookup(context.Background(), "12345", "FORTALEZA")
	require.NoError(t, err)
	assert.True(t, resp.Found)
	assert.True(t, resp.CustodyPendency)
	assert.Equal(t, "Mesa de escritório", resp.State.Description.ReferenceValue)
	assert.Equal(t, models.TriStateUnset, resp.State.Description.Matches)
	// the auditor sees the custody situation before filling the form
	assert.Contains(t, resp.Warning, "pendência de custódia")
}

func TestLookupSameCampusNoWarning(t *testing.T) {
	assets := &fakeAssetReader{asset: &models.AssetReference{
		Tag:         "12345",
		Description: "Mesa de escritório",
		Campus:      "FORTALEZA",
	}}
	svc := NewLookupService(assets, NewReconciler("FORTALEZA"), zap.NewNop())

	resp, err := svc.Lookup(context.Background(), "12345", "FORTALEZA")
	require.NoError(t, err)
	assert.True(t, resp.Found)
	assert.False(t, resp.CustodyPendency)
	assert.Empty(t, resp.Warning)
}

func TestLookupNotFound(t *testing.T) {
	assets := &fakeAssetReader{err: sql.ErrNoRows}
	svc := NewLookupService(assets, NewReconciler("FORTALEZA"), zap.NewNop())

	resp, err := svc.Lookup(context.Background(), "99999", "FORTALEZA")
	require.NoError(t, err)
	assert.False(t, resp.Found)
	assert.Nil(t, resp.Reference)
	assert.False(t, resp.CustodyPendency)
	assert.Empty(t, resp.Warning)
}

func TestLookupRegistryFailureDegradesToNotFound(t *testing.T) {
	assets := &fakeAssetReader{err: errors.New("connection refused")}
	svc := NewLookupService(assets, NewReconciler("FORTALEZA"), zap.NewNop())

	resp, err := svc.Lookup(context.Background(), "12345", "FORTALEZA")
	require.NoError(t, err)
	assert.False(t, resp.Found)
	assert.NotEmpty(t, resp.Warning)
}

func TestLookupEmptyTag(t *testing.T) {
	svc := NewLookupService(&fakeAssetReader{}, NewReconciler("FORTALEZA"), zap.NewNop())

	_, err := svc.Lookup(context.Background(), "  ", "FORTALEZA")
	require.ErrorIs(t, err, appErrors.ErrMissingTag)
}
