package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/inventario-ufc/patrimonio-api/internal/models"
)

// AssetRepository provides read-only access to the institutional asset
// registry (table bens).
type AssetRepository struct {
	db *sqlx.DB
}

// NewAssetRepository creates a new instance of AssetRepository.
func NewAssetRepository(db *sqlx.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

// FindByTag returns the registry row for a tag.
func (r *AssetRepository) FindByTag(ctx context.Context, tag string) (*models.AssetReference, error) {
	const query = `SELECT tombo, descricao, numero_serie, sala, estado, responsavel, campus FROM bens WHERE tombo = $1 LIMIT 1`
	var asset models.AssetReference
	if err := r.db.GetContext(ctx, &asset, query, tag); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find asset by tag: %w", err)
	}
	return &asset, nil
}

// Count returns the total number of registry rows.
func (r *AssetRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM bens`
	var total int
	if err := r.db.GetContext(ctx, &total, query); err != nil {
		return 0, fmt.Errorf("count assets: %w", err)
	}
	return total, nil
}

// DistinctRooms returns distinct room names matching a case-insensitive
// prefix, ordered alphabetically.
func (r *AssetRepository) DistinctRooms(ctx context.Context, prefix string, limit int) ([]string, error) {
	const query = `SELECT DISTINCT sala FROM bens WHERE sala <> '' AND LOWER(sala) LIKE $1 ORDER BY sala ASC LIMIT $2`
	var rooms []string
	pattern := strings.ToLower(prefix) + "%"
	if err := r.db.SelectContext(ctx, &rooms, query, pattern, limit); err != nil {
		return nil, fmt.Errorf("distinct rooms: %w", err)
	}
	return rooms, nil
}

// DistinctResponsibles returns distinct responsible names matching a
// case-insensitive prefix, ordered alphabetically.
func (r *AssetRepository) DistinctResponsibles(ctx context.Context, prefix string, limit int) ([]string, error) {
	const query = `SELECT DISTINCT responsavel FROM bens WHERE responsavel <> '' AND LOWER(responsavel) LIKE $1 ORDER BY responsavel ASC LIMIT $2`
	var names []string
	pattern := strings.ToLower(prefix) + "%"
	if err := r.db.SelectContext(ctx, &names, query, pattern, limit); err != nil {
		return nil, fmt.Errorf("distinct responsibles: %w", err)
	}
	return names, nil
}

// SearchByResponsible returns registry rows whose responsible contains the
// given fragment, case-insensitive, paginated.
func (r *AssetRepository) SearchByResponsible(ctx context.Context, name string, limit, offset int) ([]models.AssetReference, error) {
	const query = `SELECT tombo, descricao, numero_serie, sala, estado, responsavel, campus FROM bens WHERE responsavel ILIKE $1 ORDER BY tombo ASC LIMIT $2 OFFSET $3`
	var assets []models.AssetReference
	pattern := "%" + name + "%"
	if err := r.db.SelectContext(ctx, &assets, query, pattern, limit, offset); err != nil {
		return nil, fmt.Errorf("search assets by responsible: %w", err)
	}
	return assets, nil
}

// CountByResponsible returns the total match count for SearchByResponsible.
func (r *AssetRepository) CountByResponsible(ctx context.Context, name string) (int, error) {
	const query = `SELECT COUNT(*) FROM bens WHERE responsavel ILIKE $1`
	var total int
	pattern := "%" + name + "%"
	if err := r.db.GetContext(ctx, &total, query, pattern); err != nil {
		return 0, fmt.Errorf("count assets by responsible: %w", err)
	}
	return total, nil
}
