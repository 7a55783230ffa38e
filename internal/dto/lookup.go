package dto

import "github.com/inventario-ufc/patrimonio-api/internal/models"

// LookupResponse is the reference registry lookup result that seeds the
// audit form. Backend read failures are deliberately indistinguishable from
// "no reference row" (Found=false).
type LookupResponse struct {
	Tag             string                     `json:"tombo"`
	Found           bool                       `json:"cadastrado"`
	Reference       *models.AssetReference     `json:"referencia,omitempty"`
	State           models.ReconciliationState `json:"conciliacao"`
	CustodyPendency bool                       `json:"pendencia_custodia"`
	Warning         string                     `json:"aviso,omitempty"`
	AuditingCampus  string                     `json:"campus_inventario"`
}
