package service

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inventario-ufc/patrimonio-api/internal/models"
	"github.com/inventario-ufc/patrimonio-api/pkg/storage"
)

type memoryFileStorage struct {
	files map[string][]byte
}

func newMemoryFileStorage() *memoryFileStorage {
	return &memoryFileStorage{files: make(map[string][]byte)}
}

func (m *memoryFileStorage) Save(filename string, data []byte) (string, error) {
	m.files[filename] = data
	return filename, nil
}

func (m *memoryFileStorage) Open(string) (*os.File, error) { return nil, os.ErrNotExist }

func (m *memoryFileStorage) Delete(filename string) error {
	delete(m.files, filename)
	return nil
}

func (m *memoryFileStorage) CleanupOlderThan(time.Duration) ([]string, error) { return nil, nil }

func newExportService(records []models.AuditRecord, users []models.User, store *memoryFileStorage) *ExportService {
	lister := &fakeRecordLister{records: records}
	directory := &fakeUserDirectory{users: users}
	stats := NewStatsService(lister, &fakeAssetCounter{total: 10}, directory, nil, time.Minute, zap.NewNop())
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	return NewExportService(lister, directory, stats, store, signer, ExportConfig{APIPrefix: "/api/v1"}, zap.NewNop(), nil, nil, nil)
}

func TestExportGenerateInventoryCSV(t *testing.T) {
	records := statsRecords()
	users := []models.User{{ID: "user-1", FullName: "Maria Silva", Email: "maria@ufc.br"}}
	store := newMemoryFileStorage()
	svc := newExportService(records, users, store)

	job := &models.ExportJob{
		ID:     "job-1",
		Type:   models.ExportTypeInventory,
		Params: models.ExportJobParams{Format: models.ExportFormatCSV},
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	assert.Contains(t, result.URL, "/api/v1/exports/download/")
	assert.True(t, strings.HasSuffix(result.RelativePath, ".csv"))

	payload := string(store.files[result.RelativePath])
	assert.Contains(t, payload, "Tombo")
	assert.Contains(t, payload, "12345")
	assert.Contains(t, payload, "Maria Silva")
	assert.Contains(t, payload, "PENDENCIA DE CUSTODIA")
}

func TestExportGenerateInventoryCampusFilter(t *testing.T) {
	fortaleza := "FORTALEZA"
	records := []models.AuditRecord{
		{Tag: "1", AuditingCampus: "FORTALEZA", OwningCampus: &fortaleza, Registered: models.MatchFlag(models.TriStateYes), CampiReconciled: models.CampusReconciled, CreatedBy: "user-1"},
		{Tag: "2", AuditingCampus: "SOBRAL", Registered: models.MatchFlag(models.TriStateYes), CampiReconciled: models.CampusReconciled, CreatedBy: "user-1"},
	}
	store := newMemoryFileStorage()
	svc := newExportService(records, nil, store)

	job := &models.ExportJob{
		ID:     "job-2",
		Type:   models.ExportTypeInventory,
		Params: models.ExportJobParams{Format: models.ExportFormatCSV, Campus: "sobral"},
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)

	payload := string(store.files[result.RelativePath])
	lines := strings.Split(strings.TrimSpace(payload), "\n")
	// header plus the single SOBRAL row
	assert.Len(t, lines, 2)
}

func TestExportGenerateSummaryPDF(t *testing.T) {
	store := newMemoryFileStorage()
	svc := newExportService(statsRecords(), nil, store)

	job := &models.ExportJob{
		ID:     "job-3",
		Type:   models.ExportTypeSummary,
		Params: models.ExportJobParams{Format: models.ExportFormatPDF},
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(result.RelativePath, ".pdf"))
	assert.True(t, strings.HasPrefix(string(store.files[result.RelativePath]), "%PDF"))
}

func TestExportGenerateUnsupportedFormat(t *testing.T) {
	svc := newExportService(nil, nil, newMemoryFileStorage())

	job := &models.ExportJob{
		ID:     "job-4",
		Type:   models.ExportTypeInventory,
		Params: models.ExportJobParams{Format: models.ExportFormat("docx")},
	}
	_, err := svc.Generate(context.Background(), job)
	require.Error(t, err)
}
