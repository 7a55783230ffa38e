package dto

// FieldDivergence counts records with a recorded correction for one field.
type FieldDivergence struct {
	Field string `json:"campo"`
	Count int    `json:"total"`
}

// DivergenceStats aggregates corrections across the full record set.
// IncludesUnregistered flags that the counts conflate "not registered, so
// always divergent" with "registered but found to differ".
type DivergenceStats struct {
	TotalRecords         int               `json:"total_registros"`
	IncludesUnregistered bool              `json:"includesUnregistered"`
	ByField              []FieldDivergence `json:"por_campo"`
}

// CampusGroup is one partition of the records by derived campus key.
type CampusGroup struct {
	Campus string `json:"campus"`
	Count  int    `json:"total"`
}

// CampusStats partitions records by owning campus. Unregistered assets and
// tags that do not parse as numeric fall into the no-custody bucket.
type CampusStats struct {
	Groups []CampusGroup `json:"grupos"`
}

// RankingEntry ranks a submitter by record count, joined with the profile
// for display. Order: count descending, submitter id ascending on ties.
type RankingEntry struct {
	SubmitterID string `json:"id"`
	FullName    string `json:"nome"`
	Email       string `json:"email"`
	Count       int    `json:"total"`
}

// SummaryStats is the composed statistics payload backing the admin screen
// and the summary export. DistinctTags exposes duplicate-driven undercount
// of NotLocated (the formula assumes at most one audit per asset).
type SummaryStats struct {
	TotalReference int             `json:"total_referencia"`
	TotalAudited   int             `json:"total_inventariado"`
	DistinctTags   int             `json:"tombos_distintos"`
	NotLocated     int             `json:"nao_localizados"`
	Pendencies     int             `json:"pendencias_custodia"`
	Divergences    DivergenceStats `json:"divergencias"`
	Campuses       CampusStats     `json:"campi"`
	Ranking        []RankingEntry  `json:"ranking"`
}
