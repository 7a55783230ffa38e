package service

import (
	"strings"

	"github.com/inventario-ufc/patrimonio-api/internal/models"
	appErrors "github.com/inventario-ufc/patrimonio-api/pkg/errors"
)

// Reconciler holds the pure audit assembly rules. It has no I/O; the record
// service feeds it drafts built from validated requests and a fresh registry
// lookup.
type Reconciler struct {
	defaultCampus string
}

// NewReconciler constructs a Reconciler with the campaign default campus.
func NewReconciler(defaultCampus string) *Reconciler {
	return &Reconciler{defaultCampus: defaultCampus}
}

// CustodyPendency reports whether the owning campus diverges from the campus
// running the audit. A missing owning campus falls back to the default, so
// pre-split rows keep reconciling cleanly. Comparison is case-insensitive.
func (r *Reconciler) CustodyPendency(owningCampus, auditingCampus string) bool {
	owning := strings.TrimSpace(owningCampus)
	if owning == "" {
		owning = r.defaultCampus
	}
	return !strings.EqualFold(owning, strings.TrimSpace(auditingCampus))
}

// AssembleRecord converts a completed draft into the persisted row shape,
// applying the nullification rules that keep flags and corrected values
// mutually consistent:
//
//   - asset not in registry: every match flag stays NULL and the observed
//     values persist directly in the corrected columns
//   - field attested equal (or not applicable): flag persists, corrected
//     value is forced NULL regardless of form content
//   - field attested different: flag persists NO alongside the corrected value
func (r *Reconciler) AssembleRecord(draft models.RecordDraft) (*models.AuditRecord, error) {
	tag := strings.TrimSpace(draft.Tag)
	if tag == "" {
		return nil, appErrors.ErrMissingTag
	}
	if !draft.HasLabel.IsSet() || draft.HasLabel == models.TriStateNotApplicable {
		return nil, appErrors.ErrLabelStateUnset
	}

	record := &models.AuditRecord{
		Tag:            tag,
		SecondaryTag:   nullable(draft.SecondaryTag),
		HasLabel:       models.MatchFlag(draft.HasLabel),
		Notes:          nullable(draft.Notes),
		AuditingCampus: strings.TrimSpace(draft.AuditingCampus),
		CreatedBy:      draft.SubmitterID,
	}
	// estado_etiqueta is a sub-state of possui_etiqueta="SIM"; without a
	// label there is nothing whose condition could be described
	if draft.HasLabel == models.TriStateYes {
		record.LabelCondition = nullable(draft.LabelCondition)
	}

	if !draft.State.Found {
		record.Registered = models.MatchFlag(models.TriStateNo)
		record.CampiReconciled = models.CampusReconciled
		for _, key := range models.FieldKeys() {
			setCorrected(record, key, nullable(draft.State.Field(key).CorrectedValue))
		}
		return record, nil
	}

	record.Registered = models.MatchFlag(models.TriStateYes)
	owning := strings.TrimSpace(draft.OwningCampus)
	if owning == "" {
		owning = r.defaultCampus
	}
	record.OwningCampus = &owning
	record.CampiReconciled = models.CampusReconciliationFor(r.CustodyPendency(draft.OwningCampus, draft.AuditingCampus))

	for _, key := range models.FieldKeys() {
		field := draft.State.Field(key)
		allowNA := key == models.FieldSerialNumber
		if !field.Matches.Valid(allowNA) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid attestation state for field "+string(key))
		}
		switch field.Matches {
		case models.TriStateNo:
			setMatch(record, key, field.Matches)
			setCorrected(record, key, nullable(field.CorrectedValue))
		case models.TriStateYes, models.TriStateNotApplicable:
			setMatch(record, key, field.Matches)
			setCorrected(record, key, nil)
		default:
			// untouched toggle: flag and corrected value both stay NULL
		}
	}
	return record, nil
}

func setMatch(record *models.AuditRecord, key models.FieldKey, state models.TriState) {
	switch key {
	case models.FieldDescription:
		record.DescriptionMatches = models.MatchFlag(state)
	case models.FieldSerialNumber:
		record.SerialMatches = models.SerialMatchFlag(state)
	case models.FieldRoom:
		record.RoomMatches = models.MatchFlag(state)
	case models.FieldCondition:
		record.ConditionMatches = models.MatchFlag(state)
	case models.FieldResponsible:
		record.ResponsibleMatches = models.MatchFlag(state)
	}
}

func setCorrected(record *models.AuditRecord, key models.FieldKey, value *string) {
	switch key {
	case models.FieldDescription:
		record.DescriptionNew = value
	case models.FieldSerialNumber:
		record.SerialNew = value
	case models.FieldRoom:
		record.RoomNew = value
	case models.FieldCondition:
		record.ConditionNew = value
	case models.FieldResponsible:
		record.ResponsibleNew = value
	}
}

func nullable(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
