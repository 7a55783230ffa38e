package dto

import "github.com/inventario-ufc/patrimonio-api/internal/models"

// RecordFieldInput carries one tracked field as edited in the audit form.
// In direct-entry mode (asset not found in the registry) Valor holds the
// observed value and Confere is ignored.
type RecordFieldInput struct {
	Matches models.TriState `json:"confere"`
	Value   string          `json:"valor"`
}

// RecordRequest is the JSON part of a record submission. Photos travel as
// separate multipart files alongside it.
type RecordRequest struct {
	Tag            string           `json:"tombo" validate:"required"`
	SecondaryTag   string           `json:"tombo_antigo,omitempty"`
	HasLabel       models.TriState  `json:"possui_etiqueta"`
	LabelCondition string           `json:"estado_etiqueta,omitempty"`
	Description    RecordFieldInput `json:"descricao"`
	SerialNumber   RecordFieldInput `json:"numero_serie"`
	Room           RecordFieldInput `json:"sala"`
	Condition      RecordFieldInput `json:"estado"`
	Responsible    RecordFieldInput `json:"responsavel"`
	Notes          string           `json:"observacoes,omitempty"`
	AuditingCampus string           `json:"campus_inventario" validate:"required"`
}

// PhotoUpload is one photo slot received with a submission.
type PhotoUpload struct {
	Slot        int
	Data        []byte
	ContentType string
}
