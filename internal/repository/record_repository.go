package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/inventario-ufc/patrimonio-api/internal/models"
)

const recordColumns = `id, tombo, tombo_antigo, possui_etiqueta, estado_etiqueta, cadastrado, descricao_confere, descricao_nova, numero_serie_confere, numero_serie_novo, sala_confere, sala_nova, estado_confere, estado_novo, responsavel_confere, responsavel_novo, observacoes, foto_1_url, foto_2_url, campus_origem, campus_inventario, campi_conciliados, criado_por, criado_em`

// RecordRepository persists audit records (table inventarios). Rows are
// insert-only except for full-row replacement via Update; deletes are not
// supported.
type RecordRepository struct {
	db *sqlx.DB
}

// NewRecordRepository creates a new instance of RecordRepository.
func NewRecordRepository(db *sqlx.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Insert stores a new audit record with generated defaults.
func (r *RecordRepository) Insert(ctx context.Context, record *models.AuditRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO inventarios (` + recordColumns + `)
VALUES (:id, :tombo, :tombo_antigo, :possui_etiqueta, :estado_etiqueta, :cadastrado, :descricao_confere, :descricao_nova, :numero_serie_confere, :numero_serie_novo, :sala_confere, :sala_nova, :estado_confere, :estado_novo, :responsavel_confere, :responsavel_novo, :observacoes, :foto_1_url, :foto_2_url, :campus_origem, :campus_inventario, :campi_conciliados, :criado_por, :criado_em)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// Update replaces every mutable column of an existing record. Creator and
// creation timestamp are preserved.
func (r *RecordRepository) Update(ctx context.Context, record *models.AuditRecord) error {
	const query = `UPDATE inventarios SET tombo = :tombo, tombo_antigo = :tombo_antigo, possui_etiqueta = :possui_etiqueta, estado_etiqueta = :estado_etiqueta, cadastrado = :cadastrado, descricao_confere = :descricao_confere, descricao_nova = :descricao_nova, numero_serie_confere = :numero_serie_confere, numero_serie_novo = :numero_serie_novo, sala_confere = :sala_confere, sala_nova = :sala_nova, estado_confere = :estado_confere, estado_novo = :estado_novo, responsavel_confere = :responsavel_confere, responsavel_novo = :responsavel_novo, observacoes = :observacoes, foto_1_url = :foto_1_url, foto_2_url = :foto_2_url, campus_origem = :campus_origem, campus_inventario = :campus_inventario, campi_conciliados = :campi_conciliados WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, record)
	if err != nil {
		return fmt.Errorf("update audit record: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetByID returns a record by identifier.
func (r *RecordRepository) GetByID(ctx context.Context, id string) (*models.AuditRecord, error) {
	const query = `SELECT ` + recordColumns + ` FROM inventarios WHERE id = $1 LIMIT 1`
	var record models.AuditRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get audit record: %w", err)
	}
	return &record, nil
}

// LatestByTag returns the most recent record for a tag. Duplicate
// submissions per tag are resolved by criado_em descending.
func (r *RecordRepository) LatestByTag(ctx context.Context, tag string) (*models.AuditRecord, error) {
	const query = `SELECT ` + recordColumns + ` FROM inventarios WHERE tombo = $1 ORDER BY criado_em DESC LIMIT 1`
	var record models.AuditRecord
	if err := r.db.GetContext(ctx, &record, query, tag); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("latest audit record by tag: %w", err)
	}
	return &record, nil
}

// List returns records based on filters with total count.
func (r *RecordRepository) List(ctx context.Context, filter models.RecordFilter) ([]models.AuditRecord, int, error) {
	baseQuery := `FROM inventarios WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Tag != "" {
		conditions = append(conditions, fmt.Sprintf("tombo = $%d", len(args)+1))
		args = append(args, filter.Tag)
	}
	if filter.Campus != "" {
		conditions = append(conditions, fmt.Sprintf("campus_inventario = $%d", len(args)+1))
		args = append(args, filter.Campus)
	}
	if filter.CreatedBy != "" {
		conditions = append(conditions, fmt.Sprintf("criado_por = $%d", len(args)+1))
		args = append(args, filter.CreatedBy)
	}
	if filter.Registered != nil {
		flag := models.MatchFlag(*filter.Registered)
		value, err := flag.Value()
		if err != nil {
			return nil, 0, fmt.Errorf("registered filter: %w", err)
		}
		if value == nil {
			conditions = append(conditions, "cadastrado IS NULL")
		} else {
			conditions = append(conditions, fmt.Sprintf("cadastrado = $%d", len(args)+1))
			args = append(args, value)
		}
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"criado_em":         true,
		"tombo":             true,
		"campus_inventario": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "criado_em"
	}

	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", recordColumns, baseQuery, sortBy, sortOrder, pageSize, offset)

	var records []models.AuditRecord
	if err := r.db.SelectContext(ctx, &records, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list audit records: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count audit records: %w", err)
	}

	return records, total, nil
}

// ListAll returns every record, oldest first. Aggregation reads the whole
// table; volumes stay in the low tens of thousands for a campaign.
func (r *RecordRepository) ListAll(ctx context.Context) ([]models.AuditRecord, error) {
	const query = `SELECT ` + recordColumns + ` FROM inventarios ORDER BY criado_em ASC`
	var records []models.AuditRecord
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("list all audit records: %w", err)
	}
	return records, nil
}

// Count returns the total number of audit records.
func (r *RecordRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM inventarios`
	var total int
	if err := r.db.GetContext(ctx, &total, query); err != nil {
		return 0, fmt.Errorf("count audit records: %w", err)
	}
	return total, nil
}
