package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/inventario-ufc/patrimonio-api/pkg/errors"
)

const (
	campusPrefKeyPrefix = "pref:campus:"
	campusPrefTTL       = 365 * 24 * time.Hour
)

// PreferenceService stores per-auditor campus selection in Redis. A missing
// or unreadable preference falls back to the campaign default so the form
// can always be pre-filled.
type PreferenceService struct {
	cache         *CacheService
	defaultCampus string
	logger        *zap.Logger
}

// NewPreferenceService constructs a PreferenceService.
func NewPreferenceService(cache *CacheService, defaultCampus string, logger *zap.Logger) *PreferenceService {
	return &PreferenceService{cache: cache, defaultCampus: defaultCampus, logger: logger}
}

// GetCampus returns the auditor's preferred campus or the default.
func (s *PreferenceService) GetCampus(ctx context.Context, userID string) string {
	var campus string
	hit, err := s.cache.Get(ctx, campusPrefKeyPrefix+userID, &campus)
	if err != nil {
		s.logger.Warn("campus preference read failed, using default",
			zap.String("user", userID), zap.Error(err))
		return s.defaultCampus
	}
	if !hit || campus == "" {
		return s.defaultCampus
	}
	return campus
}

// SetCampus stores the auditor's preferred campus.
func (s *PreferenceService) SetCampus(ctx context.Context, userID, campus string) error {
	campus = strings.TrimSpace(campus)
	if campus == "" {
		return appErrors.Clone(appErrors.ErrValidation, "campus must not be empty")
	}
	return s.cache.Set(ctx, campusPrefKeyPrefix+userID, campus, campusPrefTTL)
}
