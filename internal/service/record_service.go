package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/inventario-ufc/patrimonio-api/internal/dto"
	"github.com/inventario-ufc/patrimonio-api/internal/models"
	appErrors "github.com/inventario-ufc/patrimonio-api/pkg/errors"
)

type recordStore interface {
	Insert(ctx context.Context, record *models.AuditRecord) error
	Update(ctx context.Context, record *models.AuditRecord) error
	GetByID(ctx context.Context, id string) (*models.AuditRecord, error)
	LatestByTag(ctx context.Context, tag string) (*models.AuditRecord, error)
	List(ctx context.Context, filter models.RecordFilter) ([]models.AuditRecord, int, error)
}

type photoStore interface {
	Save(filename string, data []byte) (string, error)
	Delete(filename string) error
}

const statsCachePattern = "stats:*"

// RecordService owns the audit record write path: server-side reference
// re-fetch, draft assembly, photo storage and persistence.
type RecordService struct {
	records      recordStore
	assets       assetReader
	photos       photoStore
	reconciler   *Reconciler
	cache        *CacheService
	maxPhotoSize int64
	logger       *zap.Logger
}

// NewRecordService constructs a RecordService.
func NewRecordService(records recordStore, assets assetReader, photos photoStore, reconciler *Reconciler, cache *CacheService, maxPhotoSize int64, logger *zap.Logger) *RecordService {
	return &RecordService{
		records:      records,
		assets:       assets,
		photos:       photos,
		reconciler:   reconciler,
		cache:        cache,
		maxPhotoSize: maxPhotoSize,
		logger:       logger,
	}
}

// Create assembles and persists a new audit record. The reference row is
// re-fetched here rather than trusted from the client, so a submission built
// against stale lookup data still lands consistent.
func (s *RecordService) Create(ctx context.Context, req dto.RecordRequest, photos []dto.PhotoUpload, submitter *models.User) (*models.AuditRecord, error) {
	for _, photo := range photos {
		if s.maxPhotoSize > 0 && int64(len(photo.Data)) > s.maxPhotoSize {
			return nil, appErrors.ErrPhotoTooLarge
		}
	}

	record, err := s.assemble(ctx, req, submitter.ID)
	if err != nil {
		return nil, err
	}

	record.Photo1URL, record.Photo2URL = s.storePhotos(submitter.ID, photos)

	if err := s.records.Insert(ctx, record); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx)
	return record, nil
}

// Update replaces every reconciliation column of an existing record. Only the
// original auditor or an admin may update; creator, creation time and photos
// are preserved.
func (s *RecordService) Update(ctx context.Context, id string, req dto.RecordRequest, submitter *models.User) (*models.AuditRecord, error) {
	existing, err := s.records.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, err
	}
	if existing.CreatedBy != submitter.ID && submitter.Role != models.RoleAdmin {
		return nil, appErrors.ErrNotOwner
	}

	record, err := s.assemble(ctx, req, existing.CreatedBy)
	if err != nil {
		return nil, err
	}
	record.ID = existing.ID
	record.CreatedAt = existing.CreatedAt
	record.Photo1URL = existing.Photo1URL
	record.Photo2URL = existing.Photo2URL

	if err := s.records.Update(ctx, record); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, err
	}
	s.invalidateStats(ctx)
	return record, nil
}

// GetByID returns a single record.
func (s *RecordService) GetByID(ctx context.Context, id string) (*models.AuditRecord, error) {
	record, err := s.records.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, err
	}
	return record, nil
}

// GetLatestByTag returns the most recent record for a tag.
func (s *RecordService) GetLatestByTag(ctx context.Context, tag string) (*models.AuditRecord, error) {
	record, err := s.records.LatestByTag(ctx, tag)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, err
	}
	return record, nil
}

// List returns records matching the filter with pagination metadata.
func (s *RecordService) List(ctx context.Context, filter models.RecordFilter) ([]models.AuditRecord, *models.Pagination, error) {
	records, total, err := s.records.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return records, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

func (s *RecordService) assemble(ctx context.Context, req dto.RecordRequest, submitterID string) (*models.AuditRecord, error) {
	var ref *models.AssetReference
	if found, err := s.assets.FindByTag(ctx, req.Tag); err == nil {
		ref = found
	} else if !errors.Is(err, sql.ErrNoRows) {
		s.logger.Warn("reference re-fetch failed, assembling as unregistered",
			zap.String("tag", req.Tag), zap.Error(err))
	}

	state := models.NewReconciliationState(req.Tag, ref)
	for _, key := range models.FieldKeys() {
		field := state.Field(key)
		input := fieldInput(req, key)
		field.Matches = input.Matches
		field.CorrectedValue = input.Value
		state.SetField(key, field)
	}

	draft := models.RecordDraft{
		Tag:            req.Tag,
		SecondaryTag:   req.SecondaryTag,
		HasLabel:       req.HasLabel,
		LabelCondition: req.LabelCondition,
		State:          state,
		Notes:          req.Notes,
		AuditingCampus: req.AuditingCampus,
		SubmitterID:    submitterID,
	}
	if ref != nil {
		draft.OwningCampus = ref.Campus
	}
	return s.reconciler.AssembleRecord(draft)
}

// storePhotos persists both photo slots atomically from the record's point
// of view: if either write fails the other is rolled back and the record
// proceeds without photos.
func (s *RecordService) storePhotos(submitterID string, photos []dto.PhotoUpload) (*string, *string) {
	if len(photos) == 0 {
		return nil, nil
	}

	timestamp := time.Now().UTC().Format("20060102T150405")
	var urls [2]*string
	var stored []string
	for _, photo := range photos {
		if photo.Slot < 1 || photo.Slot > 2 || len(photo.Data) == 0 {
			continue
		}
		filename := fmt.Sprintf("%s/%s_%d%s", submitterID, timestamp, photo.Slot, photoExtension(photo.ContentType))
		name, err := s.photos.Save(filename, photo.Data)
		if err != nil {
			s.logger.Warn("photo upload failed, discarding all photos for submission",
				zap.String("submitter", submitterID), zap.Int("slot", photo.Slot), zap.Error(err))
			for _, prev := range stored {
				if delErr := s.photos.Delete(prev); delErr != nil {
					s.logger.Warn("photo rollback failed", zap.String("file", prev), zap.Error(delErr))
				}
			}
			return nil, nil
		}
		stored = append(stored, name)
		url := "/photos/" + name
		urls[photo.Slot-1] = &url
	}
	return urls[0], urls[1]
}

func (s *RecordService) invalidateStats(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, statsCachePattern); err != nil {
		s.logger.Warn("stats cache invalidation failed", zap.Error(err))
	}
}

func fieldInput(req dto.RecordRequest, key models.FieldKey) dto.RecordFieldInput {
	switch key {
	case models.FieldDescription:
		return req.Description
	case models.FieldSerialNumber:
		return req.SerialNumber
	case models.FieldRoom:
		return req.Room
	case models.FieldCondition:
		return req.Condition
	case models.FieldResponsible:
		return req.Responsible
	}
	return dto.RecordFieldInput{}
}

func photoExtension(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
