package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inventario-ufc/patrimonio-api/internal/dto"
	"github.com/inventario-ufc/patrimonio-api/internal/models"
	"github.com/inventario-ufc/patrimonio-api/internal/repository"
	appErrors "github.com/inventario-ufc/patrimonio-api/pkg/errors"
	"github.com/inventario-ufc/patrimonio-api/pkg/jobs"
)

type fakeExportJobStore struct {
	created *models.ExportJob
	jobs    map[string]*models.ExportJob
	updates []repository.UpdateExportJobParams
}

func newFakeExportJobStore() *fakeExportJobStore {
	return &fakeExportJobStore{jobs: make(map[string]*models.ExportJob)}
}

func (f *fakeExportJobStore) Create(_ context.Context, job *models.ExportJob) error {
	if job.ID == "" {
		job.ID = "job-1"
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	f.created = job
	f.jobs[job.ID] = job
	return nil
}

func (f *fakeExportJobStore) GetByID(_ context.Context, id string) (*models.ExportJob, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return job, nil
}

func (f *fakeExportJobStore) Update(_ context.Context, id string, params repository.UpdateExportJobParams) error {
	f.updates = append(f.updates, params)
	if job, ok := f.jobs[id]; ok {
		if params.Status != nil {
			job.Status = *params.Status
		}
		if params.Progress != nil {
			job.Progress = *params.Progress
		}
		if params.ResultURL != nil {
			job.ResultURL = params.ResultURL
		}
	}
	return nil
}

func (f *fakeExportJobStore) ListQueued(context.Context, int) ([]models.ExportJob, error) {
	var queued []models.ExportJob
	for _, job := range f.jobs {
		if job.Status == models.ExportStatusQueued {
			queued = append(queued, *job)
		}
	}
	return queued, nil
}

func (f *fakeExportJobStore) ListFinishedBefore(context.Context, time.Time, int) ([]models.ExportJob, error) {
	return nil, nil
}

type fakeDispatcher struct {
	enqueued []string
	err      error
}

func (f *fakeDispatcher) Enqueue(jobID string) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, jobID)
	return nil
}

type fakeGenerator struct {
	result *ExportResult
	err    error
}

func (f *fakeGenerator) Generate(context.Context, *models.ExportJob) (*ExportResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func TestExportJobCreateAndEnqueue(t *testing.T) {
	store := newFakeExportJobStore()
	queue := &fakeDispatcher{}
	svc := NewExportJobService(store, queue, nil, zap.NewNop(), ExportJobConfig{})

	resp, err := svc.CreateJob(context.Background(), dto.ExportRequest{
		Type:   models.ExportTypeInventory,
		Format: models.ExportFormatXLSX,
	}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusQueued, resp.Status)
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, store.created.ID, queue.enqueued[0])
}

func TestExportJobCreateRejectsUnknownType(t *testing.T) {
	svc := NewExportJobService(newFakeExportJobStore(), &fakeDispatcher{}, nil, zap.NewNop(), ExportJobConfig{})

	_, err := svc.CreateJob(context.Background(), dto.ExportRequest{
		Type:   models.ExportType("everything"),
		Format: models.ExportFormatCSV,
	}, "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportJobCreateEnqueueFailureMarksFailed(t *testing.T) {
	store := newFakeExportJobStore()
	queue := &fakeDispatcher{err: errors.New("queue stopped")}
	svc := NewExportJobService(store, queue, nil, zap.NewNop(), ExportJobConfig{})

	_, err := svc.CreateJob(context.Background(), dto.ExportRequest{
		Type:   models.ExportTypeSummary,
		Format: models.ExportFormatPDF,
	}, "admin-1")
	require.Error(t, err)
	require.NotEmpty(t, store.updates)
	assert.Equal(t, models.ExportStatusFailed, *store.updates[0].Status)
}

func TestExportJobGetStatusOwnership(t *testing.T) {
	store := newFakeExportJobStore()
	job := &models.ExportJob{ID: "job-9", Type: models.ExportTypeInventory, Status: models.ExportStatusQueued, CreatedBy: "user-1", CreatedAt: time.Now()}
	store.jobs[job.ID] = job
	svc := NewExportJobService(store, &fakeDispatcher{}, nil, zap.NewNop(), ExportJobConfig{})

	_, err := svc.GetStatus(context.Background(), "job-9", "user-2", models.RoleUser)
	require.ErrorIs(t, err, appErrors.ErrForbidden)

	resp, err := svc.GetStatus(context.Background(), "job-9", "user-2", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "job-9", resp.JobID)
}

func TestExportWorkerHandleSuccess(t *testing.T) {
	store := newFakeExportJobStore()
	job := &models.ExportJob{ID: "job-5", Type: models.ExportTypeInventory, Status: models.ExportStatusQueued, Params: models.ExportJobParams{Format: models.ExportFormatCSV}}
	store.jobs[job.ID] = job
	generator := &fakeGenerator{result: &ExportResult{URL: "/api/v1/exports/download/tok"}}
	worker := NewExportWorker(store, generator, 3, zap.NewNop())

	require.NoError(t, worker.Handle(context.Background(), jobs.Task{JobID: "job-5"}))
	assert.Equal(t, models.ExportStatusFinished, store.jobs["job-5"].Status)
	require.NotNil(t, store.jobs["job-5"].ResultURL)
	assert.Equal(t, "/api/v1/exports/download/tok", *store.jobs["job-5"].ResultURL)
}

func TestExportWorkerHandleExhaustedRetriesMarksFailed(t *testing.T) {
	store := newFakeExportJobStore()
	job := &models.ExportJob{ID: "job-6", Type: models.ExportTypeInventory, Status: models.ExportStatusProcessing}
	store.jobs[job.ID] = job
	generator := &fakeGenerator{err: errors.New("render failed")}
	worker := NewExportWorker(store, generator, 2, zap.NewNop())

	err := worker.Handle(context.Background(), jobs.Task{JobID: "job-6", Attempt: 2})
	require.Error(t, err)
	assert.Equal(t, models.ExportStatusFailed, store.jobs["job-6"].Status)
}
