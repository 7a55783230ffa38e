package dto

import (
	"time"

	"github.com/inventario-ufc/patrimonio-api/internal/models"
)

// ExportRequest asks for a background export job.
type ExportRequest struct {
	Type   models.ExportType   `json:"type" validate:"required,oneof=inventory summary"`
	Format models.ExportFormat `json:"format" validate:"required,oneof=csv xlsx pdf"`
	Campus string              `json:"campus,omitempty"`
}

// ExportJobResponse is returned right after enqueueing.
type ExportJobResponse struct {
	JobID     string              `json:"job_id"`
	Status    models.ExportStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
}

// ExportStatusResponse reports job progress and, once finished, the signed
// download URL.
type ExportStatusResponse struct {
	JobID        string              `json:"job_id"`
	Type         models.ExportType   `json:"type"`
	Status       models.ExportStatus `json:"status"`
	Progress     int                 `json:"progress"`
	DownloadURL  *string             `json:"download_url,omitempty"`
	ErrorMessage *string             `json:"error_message,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	FinishedAt   *time.Time          `json:"finished_at,omitempty"`
}
