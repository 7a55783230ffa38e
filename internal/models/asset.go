package models

// AssetReference is a read-only row of the institutional asset registry.
// The registry is the system-of-record; this application never writes it.
type AssetReference struct {
	Tag          string `db:"tombo" json:"tombo"`
	Description  string `db:"descricao" json:"descricao"`
	SerialNumber string `db:"numero_serie" json:"numero_serie"`
	Room         string `db:"sala" json:"sala"`
	Condition    string `db:"estado" json:"estado"`
	Responsible  string `db:"responsavel" json:"responsavel"`
	Campus       string `db:"campus" json:"campus"`
}
