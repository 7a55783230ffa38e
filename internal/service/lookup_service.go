package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/inventario-ufc/patrimonio-api/internal/dto"
	"github.com/inventario-ufc/patrimonio-api/internal/models"
	appErrors "github.com/inventario-ufc/patrimonio-api/pkg/errors"
)

type assetReader interface {
	FindByTag(ctx context.Context, tag string) (*models.AssetReference, error)
}

// LookupService resolves a scanned tag against the asset registry and seeds
// the reconciliation state for the audit form.
type LookupService struct {
	assets     assetReader
	reconciler *Reconciler
	logger     *zap.Logger
}

// NewLookupService constructs a LookupService.
func NewLookupService(assets assetReader, reconciler *Reconciler, logger *zap.Logger) *LookupService {
	return &LookupService{assets: assets, reconciler: reconciler, logger: logger}
}

// Lookup fetches the reference row for a tag. Registry read failures degrade
// to a not-found response so the auditor can proceed in direct-entry mode;
// the form, not the lookup, decides what happens next.
func (s *LookupService) Lookup(ctx context.Context, tag, auditingCampus string) (*dto.LookupResponse, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, appErrors.ErrMissingTag
	}

	resp := &dto.LookupResponse{Tag: tag, AuditingCampus: auditingCampus}

	ref, err := s.assets.FindByTag(ctx, tag)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("asset registry lookup failed, degrading to not found",
				zap.String("tag", tag), zap.Error(err))
			resp.Warning = "registro de referência indisponível; prossiga com cadastro direto"
		}
		resp.State = models.NewReconciliationState(tag, nil)
		return resp, nil
	}

	resp.Found = true
	resp.Reference = ref
	resp.State = models.NewReconciliationState(tag, ref)
	resp.CustodyPendency = s.reconciler.CustodyPendency(ref.Campus, auditingCampus)
	if resp.CustodyPendency {
		resp.Warning = "bem pertence a outro campus; o registro será marcado como pendência de custódia"
	}
	return resp, nil
}
