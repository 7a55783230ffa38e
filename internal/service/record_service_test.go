package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inventario-ufc/patrimonio-api/internal/dto"
	"github.com/inventario-ufc/patrimonio-api/internal/models"
	appErrors "github.com/inventario-ufc/patrimonio-api/pkg/errors"
)

type fakeRecordStore struct {
	inserted *models.AuditRecord
	updated  *models.AuditRecord
	existing *models.AuditRecord
	getErr   error
	listErr  error
	records  []models.AuditRecord
	total    int
}

func (f *fakeRecordStore) Insert(_ context.Context, record *models.AuditRecord) error {
	f.inserted = record
	return nil
}

func (f *fakeRecordStore) Update(_ context.Context, record *models.AuditRecord) error {
	f.updated = record
	return nil
}

func (f *fakeRecordStore) GetByID(context.Context, string) (*models.AuditRecord, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.existing, nil
}

func (f *fakeRecordStore) LatestByTag(context.Context, string) (*models.AuditRecord, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.existing, nil
}

func (f *fakeRecordStore) List(context.Context, models.RecordFilter) ([]models.AuditRecord, int, error) {
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	return f.records, f.total, nil
}

type fakePhotoStore struct {
	saved   []string
	deleted []string
	failOn  string
}

func (f *fakePhotoStore) Save(filename string, _ []byte) (string, error) {
	if f.failOn != "" && filename == f.failOn {
		return "", errors.New("disk full")
	}
	f.saved = append(f.saved, filename)
	return filename, nil
}

func (f *fakePhotoStore) Delete(filename string) error {
	f.deleted = append(f.deleted, filename)
	return nil
}

func submitRequest() dto.RecordRequest {
	return dto.RecordRequest{
		Tag:            "12345",
		HasLabel:       models.TriStateYes,
		Description:    dto.RecordFieldInput{Matches: models.TriStateNo, Value: "Mesa de reunião"},
		SerialNumber:   dto.RecordFieldInput{Matches: models.TriStateNotApplicable},
		Room:           dto.RecordFieldInput{Matches: models.TriStateYes},
		Condition:      dto.RecordFieldInput{Matches: models.TriStateYes},
		Responsible:    dto.RecordFieldInput{Matches: models.TriStateYes},
		AuditingCampus: "FORTALEZA",
	}
}

func newRecordService(store *fakeRecordStore, assets assetReader, photos photoStore) *RecordService {
	return NewRecordService(store, assets, photos, NewReconciler("FORTALEZA"), nil, 8*1024*1024, zap.NewNop())
}

func TestRecordServiceCreateRegistered(t *testing.T) {
	store := &fakeRecordStore{}
	assets := &fakeAssetReader{asset: &models.AssetReference{Tag: "12345", Description: "Mesa de escritório", Campus: "FORTALEZA"}}
	svc := newRecordService(store, assets, &fakePhotoStore{})

	record, err := svc.Create(context.Background(), submitRequest(), nil, &models.User{ID: "user-1"})
	require.NoError(t, err)
	require.NotNil(t, store.inserted)
	assert.Equal(t, models.TriStateYes, record.Registered.State())
	assert.Equal(t, models.TriStateNo, record.DescriptionMatches.State())
	require.NotNil(t, record.DescriptionNew)
	assert.Equal(t, "Mesa de reunião", *record.DescriptionNew)
	assert.Equal(t, "user-1", record.CreatedBy)
	assert.Nil(t, record.Photo1URL)
}

func TestRecordServiceCreateStoresPhotos(t *testing.T) {
	store := &fakeRecordStore{}
	assets := &fakeAssetReader{asset: &models.AssetReference{Tag: "12345", Campus: "FORTALEZA"}}
	photos := &fakePhotoStore{}
	svc := newRecordService(store, assets, photos)

	uploads := []dto.PhotoUpload{
		{Slot: 1, Data: []byte("a"), ContentType: "image/jpeg"},
		{Slot: 2, Data: []byte("b"), ContentType: "image/png"},
	}
	record, err := svc.Create(context.Background(), submitRequest(), uploads, &models.User{ID: "user-1"})
	require.NoError(t, err)
	require.NotNil(t, record.Photo1URL)
	require.NotNil(t, record.Photo2URL)
	assert.Contains(t, *record.Photo1URL, "user-1/")
	assert.Contains(t, *record.Photo2URL, ".png")
	assert.Len(t, photos.saved, 2)
}

func TestRecordServicePhotoFailureDiscardsBoth(t *testing.T) {
	store := &fakeRecordStore{}
	assets := &fakeAssetReader{asset: &models.AssetReference{Tag: "12345", Campus: "FORTALEZA"}}
	photos := &fakePhotoStore{}
	// second slot fails after the first is written
	svc := NewRecordService(store, assets, &failingSecondSlot{inner: photos}, NewReconciler("FORTALEZA"), nil, 0, zap.NewNop())

	uploads := []dto.PhotoUpload{
		{Slot: 1, Data: []byte("a"), ContentType: "image/jpeg"},
		{Slot: 2, Data: []byte("b"), ContentType: "image/jpeg"},
	}
	record, err := svc.Create(context.Background(), submitRequest(), uploads, &models.User{ID: "user-1"})
	require.NoError(t, err)
	assert.Nil(t, record.Photo1URL)
	assert.Nil(t, record.Photo2URL)
	assert.Len(t, photos.deleted, 1)
	require.NotNil(t, store.inserted)
}

type failingSecondSlot struct {
	inner *fakePhotoStore
	calls int
}

func (f *failingSecondSlot) Save(filename string, data []byte) (string, error) {
	f.calls++
	if f.calls == 2 {
		return "", errors.New("disk full")
	}
	return f.inner.Save(filename, data)
}

func (f *failingSecondSlot) Delete(filename string) error {
	return f.inner.Delete(filename)
}

func TestRecordServiceCreatePhotoTooLarge(t *testing.T) {
	store := &fakeRecordStore{}
	assets := &fakeAssetReader{asset: &models.AssetReference{Tag: "12345", Campus: "FORTALEZA"}}
	svc := NewRecordService(store, assets, &fakePhotoStore{}, NewReconciler("FORTALEZA"), nil, 2, zap.NewNop())

	uploads := []dto.PhotoUpload{{Slot: 1, Data: []byte("abc"), ContentType: "image/jpeg"}}
	_, err := svc.Create(context.Background(), submitRequest(), uploads, &models.User{ID: "user-1"})
	require.ErrorIs(t, err, appErrors.ErrPhotoTooLarge)
	assert.Nil(t, store.inserted)
}

func TestRecordServiceCreateReFetchFailureAssemblesUnregistered(t *testing.T) {
	store := &fakeRecordStore{}
	assets := &fakeAssetReader{err: errors.New("connection refused")}
	svc := newRecordService(store, assets, &fakePhotoStore{})

	req := submitRequest()
	req.Description = dto.RecordFieldInput{Value: "Projetor sem tombamento"}
	record, err := svc.Create(context.Background(), req, nil, &models.User{ID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, models.TriStateNo, record.Registered.State())
	require.NotNil(t, record.DescriptionNew)
	assert.Equal(t, "Projetor sem tombamento", *record.DescriptionNew)
}

func TestRecordServiceUpdateOwnership(t *testing.T) {
	existing := &models.AuditRecord{ID: "rec-1", Tag: "12345", CreatedBy: "user-1"}
	store := &fakeRecordStore{existing: existing}
	assets := &fakeAssetReader{asset: &models.AssetReference{Tag: "12345", Campus: "FORTALEZA"}}
	svc := newRecordService(store, assets, &fakePhotoStore{})

	_, err := svc.Update(context.Background(), "rec-1", submitRequest(), &models.User{ID: "user-2", Role: models.RoleUser})
	require.ErrorIs(t, err, appErrors.ErrNotOwner)

	updated, err := svc.Update(context.Background(), "rec-1", submitRequest(), &models.User{ID: "user-2", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, "rec-1", updated.ID)
	assert.Equal(t, "user-1", updated.CreatedBy)
}

func TestRecordServiceUpdatePreservesPhotos(t *testing.T) {
	url := "/photos/user-1/old_1.jpg"
	existing := &models.AuditRecord{ID: "rec-1", Tag: "12345", CreatedBy: "user-1", Photo1URL: &url}
	store := &fakeRecordStore{existing: existing}
	assets := &fakeAssetReader{asset: &models.AssetReference{Tag: "12345", Campus: "FORTALEZA"}}
	svc := newRecordService(store, assets, &fakePhotoStore{})

	updated, err := svc.Update(context.Background(), "rec-1", submitRequest(), &models.User{ID: "user-1"})
	require.NoError(t, err)
	require.NotNil(t, updated.Photo1URL)
	assert.Equal(t, url, *updated.Photo1URL)
}

func TestRecordServiceGetLatestByTagNotFound(t *testing.T) {
	store := &fakeRecordStore{getErr: sql.ErrNoRows}
	svc := newRecordService(store, &fakeAssetReader{}, &fakePhotoStore{})

	_, err := svc.GetLatestByTag(context.Background(), "77777")
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}
