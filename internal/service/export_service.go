package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/inventario-ufc/patrimonio-api/internal/models"
	"github.com/inventario-ufc/patrimonio-api/pkg/export"
	"github.com/inventario-ufc/patrimonio-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type xlsxRenderer interface {
	Render(data export.Dataset, sheet string) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportService builds export datasets and persists rendered files.
type ExportService struct {
	records recordLister
	users   userDirectory
	stats   *StatsService
	storage fileStorage
	csv     csvRenderer
	xlsx    xlsxRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(records recordLister, users userDirectory, stats *StatsService, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, xlsx xlsxRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if xlsx == nil {
		xlsx = export.NewXLSXExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		records: records,
		users:   users,
		stats:   stats,
		storage: store,
		csv:     csv,
		xlsx:    xlsx,
		pdf:     pdf,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
	}
}

// Generate builds the dataset for a job and stores the rendered file.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatXLSX:
		payload, err = s.xlsx.Render(dataset, title)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, claims, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	signedURL := fmt.Sprintf("%s/exports/download/%s", prefix, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    claims.ExpiresAt,
	}, nil
}

// ParseToken validates a download token and returns its claims.
func (s *ExportService) ParseToken(token string, allowExpired bool) (storage.DownloadClaims, error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ExportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	base := "inventario"
	if job.Type == models.ExportTypeSummary {
		base = "resumo"
	}
	return fmt.Sprintf("%s_%s.%s", base, timestamp, job.Params.Format)
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ExportJob) (export.Dataset, string, error) {
	switch job.Type {
	case models.ExportTypeInventory:
		return s.buildInventoryDataset(ctx, job.Params)
	case models.ExportTypeSummary:
		return s.buildSummaryDataset(ctx)
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported export type %s", job.Type)
	}
}

var inventoryHeaders = []string{
	"Tombo", "Tombo Antigo", "Possui Etiqueta", "Estado Etiqueta", "Cadastrado",
	"Descrição Confere", "Descrição Nova", "Nº Série Confere", "Nº Série Novo",
	"Sala Confere", "Sala Nova", "Estado Confere", "Estado Novo",
	"Responsável Confere", "Responsável Novo", "Observações",
	"Campus Origem", "Campus Inventário", "Conciliação",
	"Inventariado Por", "E-mail", "Criado Em",
}

func (s *ExportService) buildInventoryDataset(ctx context.Context, params models.ExportJobParams) (export.Dataset, string, error) {
	records, err := s.records.ListAll(ctx)
	if err != nil {
		return export.Dataset{}, "", err
	}

	if params.Campus != "" {
		filtered := records[:0]
		for _, record := range records {
			if strings.EqualFold(record.AuditingCampus, params.Campus) {
				filtered = append(filtered, record)
			}
		}
		records = filtered
	}

	submitterIDs := make(map[string]struct{}, len(records))
	for _, record := range records {
		submitterIDs[record.CreatedBy] = struct{}{}
	}
	ids := make([]string, 0, len(submitterIDs))
	for id := range submitterIDs {
		ids = append(ids, id)
	}
	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return export.Dataset{}, "", err
	}
	profiles := make(map[string]models.User, len(users))
	for _, user := range users {
		profiles[user.ID] = user
	}

	rows := make([]map[string]string, 0, len(records))
	for _, record := range records {
		profile := profiles[record.CreatedBy]
		rows = append(rows, map[string]string{
			"Tombo":               record.Tag,
			"Tombo Antigo":        deref(record.SecondaryTag),
			"Possui Etiqueta":     flagLabel(record.HasLabel.State()),
			"Estado Etiqueta":     deref(record.LabelCondition),
			"Cadastrado":          flagLabel(record.Registered.State()),
			"Descrição Confere":   flagLabel(record.DescriptionMatches.State()),
			"Descrição Nova":      deref(record.DescriptionNew),
			"Nº Série Confere":    flagLabel(record.SerialMatches.State()),
			"Nº Série Novo":       deref(record.SerialNew),
			"Sala Confere":        flagLabel(record.RoomMatches.State()),
			"Sala Nova":           deref(record.RoomNew),
			"Estado Confere":      flagLabel(record.ConditionMatches.State()),
			"Estado Novo":         deref(record.ConditionNew),
			"Responsável Confere": flagLabel(record.ResponsibleMatches.State()),
			"Responsável Novo":    deref(record.ResponsibleNew),
			"Observações":         deref(record.Notes),
			"Campus Origem":       deref(record.OwningCampus),
			"Campus Inventário":   record.AuditingCampus,
			"Conciliação":         string(record.CampiReconciled),
			"Inventariado Por":    profile.FullName,
			"E-mail":              profile.Email,
			"Criado Em":           record.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	dataset := export.Dataset{Headers: inventoryHeaders, Rows: rows}
	title := "Inventário"
	if params.Campus != "" {
		title = "Inventário " + params.Campus
	}
	return dataset, title, nil
}

func (s *ExportService) buildSummaryDataset(ctx context.Context) (export.Dataset, string, error) {
	summary, _, err := s.stats.Summary(ctx)
	if err != nil {
		return export.Dataset{}, "", err
	}

	rows := []map[string]string{
		{"Indicador": "Bens na referência", "Valor": fmt.Sprintf("%d", summary.TotalReference)},
		{"Indicador": "Registros inventariados", "Valor": fmt.Sprintf("%d", summary.TotalAudited)},
		{"Indicador": "Tombos distintos", "Valor": fmt.Sprintf("%d", summary.DistinctTags)},
		{"Indicador": "Não localizados", "Valor": fmt.Sprintf("%d", summary.NotLocated)},
		{"Indicador": "Pendências de custódia", "Valor": fmt.Sprintf("%d", summary.Pendencies)},
	}
	for _, field := range summary.Divergences.ByField {
		rows = append(rows, map[string]string{
			"Indicador": "Divergências em " + field.Field,
			"Valor":     fmt.Sprintf("%d", field.Count),
		})
	}
	for _, group := range summary.Campuses.Groups {
		rows = append(rows, map[string]string{
			"Indicador": "Registros do campus " + group.Campus,
			"Valor":     fmt.Sprintf("%d", group.Count),
		})
	}
	for i, entry := range summary.Ranking {
		name := entry.FullName
		if name == "" {
			name = entry.SubmitterID
		}
		rows = append(rows, map[string]string{
			"Indicador": fmt.Sprintf("%dº %s", i+1, name),
			"Valor":     fmt.Sprintf("%d", entry.Count),
		})
	}

	dataset := export.Dataset{Headers: []string{"Indicador", "Valor"}, Rows: rows}
	return dataset, "Resumo do Inventário", nil
}

func flagLabel(state models.TriState) string {
	switch state {
	case models.TriStateYes:
		return "SIM"
	case models.TriStateNo:
		return "NÃO"
	case models.TriStateNotApplicable:
		return "NSA"
	default:
		return ""
	}
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
