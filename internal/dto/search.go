package dto

import "github.com/inventario-ufc/patrimonio-api/internal/models"

// SuggestionResponse answers a typeahead query. Seq echoes the client's
// request sequence untouched; Stale is set when a newer request from the
// same user has already been observed, so the client can drop the payload
// without comparing sequences itself.
type SuggestionResponse struct {
	Query       string   `json:"query"`
	Seq         uint64   `json:"seq"`
	Stale       bool     `json:"stale"`
	Suggestions []string `json:"suggestions"`
}

// AssetSearchResponse answers a responsible-name asset search with the
// same staleness contract as SuggestionResponse.
type AssetSearchResponse struct {
	Query   string                  `json:"query"`
	Seq     uint64                  `json:"seq"`
	Stale   bool                    `json:"stale"`
	Total   int                     `json:"total"`
	Results []models.AssetReference `json:"results"`
}
