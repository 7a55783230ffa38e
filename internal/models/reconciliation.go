package models

// TriState is the closed attestation state for a reconciled field. The
// legacy store keeps these as string literals; TriState never leaks raw
// storage strings into business logic (see MatchFlag / SerialMatchFlag).
type TriState string

const (
	TriStateUnset         TriState = "UNSET"
	TriStateYes           TriState = "YES"
	TriStateNo            TriState = "NO"
	TriStateNotApplicable TriState = "NOT_APPLICABLE"
)

// Valid reports whether the value is one of the closed variants. The empty
// string is accepted as UNSET so omitted JSON fields behave like untouched
// toggles.
func (t TriState) Valid(allowNotApplicable bool) bool {
	switch t {
	case TriStateUnset, TriStateYes, TriStateNo, "":
		return true
	case TriStateNotApplicable:
		return allowNotApplicable
	default:
		return false
	}
}

// IsSet reports whether the user explicitly toggled the state.
func (t TriState) IsSet() bool {
	return t == TriStateYes || t == TriStateNo || t == TriStateNotApplicable
}

// FieldKey identifies one of the five tracked reconciliation fields.
type FieldKey string

const (
	FieldDescription  FieldKey = "descricao"
	FieldSerialNumber FieldKey = "numero_serie"
	FieldRoom         FieldKey = "sala"
	FieldCondition    FieldKey = "estado"
	FieldResponsible  FieldKey = "responsavel"
)

// FieldKeys lists the tracked fields in their canonical order.
func FieldKeys() []FieldKey {
	return []FieldKey{FieldDescription, FieldSerialNumber, FieldRoom, FieldCondition, FieldResponsible}
}

// ReconciliationField holds the comparison state for a single tracked field.
// CorrectedValue is only meaningful when Matches is NO or the asset has no
// reference record (direct-entry mode).
type ReconciliationField struct {
	ReferenceValue string   `json:"valor_referencia"`
	Matches        TriState `json:"confere"`
	CorrectedValue string   `json:"valor_corrigido"`
}

// ReconciliationState tracks the per-field attestation for one asset under
// audit. When Found is false the five fields collapse into direct-entry mode
// and the match states are ignored.
type ReconciliationState struct {
	Tag          string              `json:"tombo"`
	Found        bool                `json:"cadastrado"`
	Description  ReconciliationField `json:"descricao"`
	SerialNumber ReconciliationField `json:"numero_serie"`
	Room         ReconciliationField `json:"sala"`
	Condition    ReconciliationField `json:"estado"`
	Responsible  ReconciliationField `json:"responsavel"`
}

// Field returns the state for the given key.
func (s *ReconciliationState) Field(key FieldKey) ReconciliationField {
	switch key {
	case FieldDescription:
		return s.Description
	case FieldSerialNumber:
		return s.SerialNumber
	case FieldRoom:
		return s.Room
	case FieldCondition:
		return s.Condition
	case FieldResponsible:
		return s.Responsible
	}
	return ReconciliationField{}
}

// SetField stores the state for the given key.
func (s *ReconciliationState) SetField(key FieldKey, field ReconciliationField) {
	switch key {
	case FieldDescription:
		s.Description = field
	case FieldSerialNumber:
		s.SerialNumber = field
	case FieldRoom:
		s.Room = field
	case FieldCondition:
		s.Condition = field
	case FieldResponsible:
		s.Responsible = field
	}
}

// NewReconciliationState initialises state from a reference lookup result.
// Fields always start UNSET: equality is attested manually by the auditor,
// never auto-compared.
func NewReconciliationState(tag string, ref *AssetReference) ReconciliationState {
	state := ReconciliationState{Tag: tag}
	if ref == nil {
		return state
	}
	state.Found = true
	state.Description = ReconciliationField{ReferenceValue: ref.Description, Matches: TriStateUnset}
	state.SerialNumber = ReconciliationField{ReferenceValue: ref.SerialNumber, Matches: TriStateUnset}
	state.Room = ReconciliationField{ReferenceValue: ref.Room, Matches: TriStateUnset}
	state.Condition = ReconciliationField{ReferenceValue: ref.Condition, Matches: TriStateUnset}
	state.Responsible = ReconciliationField{ReferenceValue: ref.Responsible, Matches: TriStateUnset}
	return state
}

// RecordDraft is the fully edited form content handed to record assembly.
type RecordDraft struct {
	Tag            string
	SecondaryTag   string
	HasLabel       TriState
	LabelCondition string
	State          ReconciliationState
	Notes          string
	AuditingCampus string
	OwningCampus   string
	SubmitterID    string
}
