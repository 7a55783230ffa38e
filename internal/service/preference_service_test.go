package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/inventario-ufc/patrimonio-api/pkg/errors"
)

type memoryCacheRepo struct {
	values map[string][]byte
	getErr error
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{values: make(map[string][]byte)}
}

func (m *memoryCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.values[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(context.Context, string) error {
	m.values = make(map[string][]byte)
	return nil
}

func newPreferenceService(repo CacheRepository) *PreferenceService {
	cache := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)
	return NewPreferenceService(cache, "FORTALEZA", zap.NewNop())
}

func TestPreferenceDefaultsWhenUnset(t *testing.T) {
	svc := newPreferenceService(newMemoryCacheRepo())
	assert.Equal(t, "FORTALEZA", svc.GetCampus(context.Background(), "user-1"))
}

func TestPreferenceRoundTrip(t *testing.T) {
	svc := newPreferenceService(newMemoryCacheRepo())

	require.NoError(t, svc.SetCampus(context.Background(), "user-1", " SOBRAL "))
	assert.Equal(t, "SOBRAL", svc.GetCampus(context.Background(), "user-1"))
	// other users keep the default
	assert.Equal(t, "FORTALEZA", svc.GetCampus(context.Background(), "user-2"))
}

func TestPreferenceReadFailureFallsBack(t *testing.T) {
	repo := newMemoryCacheRepo()
	repo.getErr = errors.New("redis down")
	svc := newPreferenceService(repo)

	assert.Equal(t, "FORTALEZA", svc.GetCampus(context.Background(), "user-1"))
}

func TestPreferenceRejectsEmptyCampus(t *testing.T) {
	svc := newPreferenceService(newMemoryCacheRepo())

	err := svc.SetCampus(context.Background(), "user-1", "   ")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
