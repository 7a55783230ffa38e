package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Legacy storage literals. The uppercase/lowercase asymmetry between the
// general match flags and the serial-number flag is part of the existing
// schema and is preserved bit-for-bit rather than migrated.
const (
	flagYes   = "SIM"
	flagNo    = "NÃO"
	serialYes = "sim"
	serialNo  = "nao"
	serialNA  = "nsa"
)

// MatchFlag persists a TriState using the legacy uppercase "SIM"/"NÃO"
// literals, with UNSET stored as NULL. NOT_APPLICABLE is not representable
// in uppercase columns.
type MatchFlag TriState

// Value implements driver.Valuer.
func (f MatchFlag) Value() (driver.Value, error) {
	switch TriState(f) {
	case TriStateYes:
		return flagYes, nil
	case TriStateNo:
		return flagNo, nil
	case TriStateUnset, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("match flag cannot persist state %q", string(f))
	}
}

// Scan implements sql.Scanner.
func (f *MatchFlag) Scan(value interface{}) error {
	raw, err := scanFlagString(value)
	if err != nil {
		return err
	}
	switch raw {
	case "":
		*f = MatchFlag(TriStateUnset)
	case flagYes:
		*f = MatchFlag(TriStateYes)
	case flagNo:
		*f = MatchFlag(TriStateNo)
	default:
		return fmt.Errorf("unknown match flag literal %q", raw)
	}
	return nil
}

// State exposes the closed variant.
func (f MatchFlag) State() TriState {
	if f == "" {
		return TriStateUnset
	}
	return TriState(f)
}

// SerialMatchFlag persists the serial-number tri-state using the legacy
// lowercase "sim"/"nao"/"nsa" literals, with UNSET stored as NULL.
type SerialMatchFlag TriState

// Value implements driver.Valuer.
func (f SerialMatchFlag) Value() (driver.Value, error) {
	switch TriState(f) {
	case TriStateYes:
		return serialYes, nil
	case TriStateNo:
		return serialNo, nil
	case TriStateNotApplicable:
		return serialNA, nil
	case TriStateUnset, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("serial match flag cannot persist state %q", string(f))
	}
}

// Scan implements sql.Scanner.
func (f *SerialMatchFlag) Scan(value interface{}) error {
	raw, err := scanFlagString(value)
	if err != nil {
		return err
	}
	switch raw {
	case "":
		*f = SerialMatchFlag(TriStateUnset)
	case serialYes:
		*f = SerialMatchFlag(TriStateYes)
	case serialNo:
		*f = SerialMatchFlag(TriStateNo)
	case serialNA:
		*f = SerialMatchFlag(TriStateNotApplicable)
	default:
		return fmt.Errorf("unknown serial match flag literal %q", raw)
	}
	return nil
}

// State exposes the closed variant.
func (f SerialMatchFlag) State() TriState {
	if f == "" {
		return TriStateUnset
	}
	return TriState(f)
}

func scanFlagString(value interface{}) (string, error) {
	if value == nil {
		return "", nil
	}
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("unsupported type %T for match flag", value)
	}
}

// CampusReconciliation is the boolean-derived custody flag persisted next to
// the raw owning campus for downstream reporting joins.
type CampusReconciliation string

const (
	CampusReconciled      CampusReconciliation = "CONCILIADO"
	CampusCustodyPendency CampusReconciliation = "PENDENCIA DE CUSTODIA"
)

// CampusReconciliationFor maps the pendency boolean to its persisted label.
func CampusReconciliationFor(pendency bool) CampusReconciliation {
	if pendency {
		return CampusCustodyPendency
	}
	return CampusReconciled
}

// Pendency recovers the boolean from the persisted label.
func (c CampusReconciliation) Pendency() bool {
	return c == CampusCustodyPendency
}

// AuditRecord is the unit of persistence produced by a completed audit form.
// Records are inserted on submit and only ever mutated via full-row replace;
// no delete operation is exposed. Duplicate submissions per tag are tolerated
// and resolved read-side by latest criado_em.
type AuditRecord struct {
	ID                 string               `db:"id" json:"id"`
	Tag                string               `db:"tombo" json:"tombo"`
	SecondaryTag       *string              `db:"tombo_antigo" json:"tombo_antigo,omitempty"`
	HasLabel           MatchFlag            `db:"possui_etiqueta" json:"possui_etiqueta"`
	LabelCondition     *string              `db:"estado_etiqueta" json:"estado_etiqueta,omitempty"`
	Registered         MatchFlag            `db:"cadastrado" json:"cadastrado"`
	DescriptionMatches MatchFlag            `db:"descricao_confere" json:"descricao_confere"`
	DescriptionNew     *string              `db:"descricao_nova" json:"descricao_nova,omitempty"`
	SerialMatches      SerialMatchFlag      `db:"numero_serie_confere" json:"numero_serie_confere"`
	SerialNew          *string              `db:"numero_serie_novo" json:"numero_serie_novo,omitempty"`
	RoomMatches        MatchFlag            `db:"sala_confere" json:"sala_confere"`
	RoomNew            *string              `db:"sala_nova" json:"sala_nova,omitempty"`
	ConditionMatches   MatchFlag            `db:"estado_confere" json:"estado_confere"`
	ConditionNew       *string              `db:"estado_novo" json:"estado_novo,omitempty"`
	ResponsibleMatches MatchFlag            `db:"responsavel_confere" json:"responsavel_confere"`
	ResponsibleNew     *string              `db:"responsavel_novo" json:"responsavel_novo,omitempty"`
	Notes              *string              `db:"observacoes" json:"observacoes,omitempty"`
	Photo1URL          *string              `db:"foto_1_url" json:"foto_1_url,omitempty"`
	Photo2URL          *string              `db:"foto_2_url" json:"foto_2_url,omitempty"`
	OwningCampus       *string              `db:"campus_origem" json:"campus_origem,omitempty"`
	AuditingCampus     string               `db:"campus_inventario" json:"campus_inventario"`
	CampiReconciled    CampusReconciliation `db:"campi_conciliados" json:"campi_conciliados"`
	CreatedBy          string               `db:"criado_por" json:"criado_por"`
	CreatedAt          time.Time            `db:"criado_em" json:"criado_em"`
}

// MatchFor returns the persisted match state for a tracked field key.
func (r *AuditRecord) MatchFor(key FieldKey) TriState {
	switch key {
	case FieldDescription:
		return r.DescriptionMatches.State()
	case FieldSerialNumber:
		return r.SerialMatches.State()
	case FieldRoom:
		return r.RoomMatches.State()
	case FieldCondition:
		return r.ConditionMatches.State()
	case FieldResponsible:
		return r.ResponsibleMatches.State()
	}
	return TriStateUnset
}

// CorrectedFor returns the persisted corrected value for a tracked field key.
func (r *AuditRecord) CorrectedFor(key FieldKey) *string {
	switch key {
	case FieldDescription:
		return r.DescriptionNew
	case FieldSerialNumber:
		return r.SerialNew
	case FieldRoom:
		return r.RoomNew
	case FieldCondition:
		return r.ConditionNew
	case FieldResponsible:
		return r.ResponsibleNew
	}
	return nil
}

// RecordFilter captures filtering criteria for listing audit records.
type RecordFilter struct {
	Tag        string
	Campus     string
	CreatedBy  string
	Registered *TriState
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
