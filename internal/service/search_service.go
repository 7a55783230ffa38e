package service

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/inventario-ufc/patrimonio-api/internal/dto"
	"github.com/inventario-ufc/patrimonio-api/internal/models"
)

type suggestionSource interface {
	DistinctRooms(ctx context.Context, prefix string, limit int) ([]string, error)
	DistinctResponsibles(ctx context.Context, prefix string, limit int) ([]string, error)
	SearchByResponsible(ctx context.Context, name string, limit, offset int) ([]models.AssetReference, error)
	CountByResponsible(ctx context.Context, name string) (int, error)
}

// SearchService serves typeahead suggestions and responsible-name asset
// search. Every response echoes the client's request sequence; when a newer
// sequence from the same user has already been seen the response is marked
// stale so the client drops it without local bookkeeping. Registry read
// failures degrade to empty result sets.
type SearchService struct {
	assets       suggestionSource
	defaultLimit int
	maxLimit     int
	logger       *zap.Logger

	mu        sync.Mutex
	latestSeq map[string]uint64
}

// NewSearchService constructs a SearchService.
func NewSearchService(assets suggestionSource, defaultLimit, maxLimit int, logger *zap.Logger) *SearchService {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	if maxLimit <= 0 {
		maxLimit = 50
	}
	return &SearchService{
		assets:       assets,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		logger:       logger,
		latestSeq:    make(map[string]uint64),
	}
}

// Rooms suggests room names by prefix.
func (s *SearchService) Rooms(ctx context.Context, userID, query string, seq uint64, limit int) (*dto.SuggestionResponse, error) {
	stale := s.observeSeq(userID, seq)
	resp := &dto.SuggestionResponse{Query: query, Seq: seq, Stale: stale, Suggestions: []string{}}

	rooms, err := s.assets.DistinctRooms(ctx, strings.TrimSpace(query), s.clampLimit(limit))
	if err != nil {
		s.logger.Warn("room suggestion query failed", zap.String("query", query), zap.Error(err))
		return resp, nil
	}
	resp.Suggestions = rooms
	return resp, nil
}

// Responsibles suggests responsible names by prefix.
func (s *SearchService) Responsibles(ctx context.Context, userID, query string, seq uint64, limit int) (*dto.SuggestionResponse, error) {
	stale := s.observeSeq(userID, seq)
	resp := &dto.SuggestionResponse{Query: query, Seq: seq, Stale: stale, Suggestions: []string{}}

	names, err := s.assets.DistinctResponsibles(ctx, strings.TrimSpace(query), s.clampLimit(limit))
	if err != nil {
		s.logger.Warn("responsible suggestion query failed", zap.String("query", query), zap.Error(err))
		return resp, nil
	}
	resp.Suggestions = names
	return resp, nil
}

// Assets searches the registry by responsible name fragment.
func (s *SearchService) Assets(ctx context.Context, userID, query string, seq uint64, limit, offset int) (*dto.AssetSearchResponse, error) {
	stale := s.observeSeq(userID, seq)
	resp := &dto.AssetSearchResponse{Query: query, Seq: seq, Stale: stale, Results: []models.AssetReference{}}

	query = strings.TrimSpace(query)
	if query == "" {
		return resp, nil
	}
	if offset < 0 {
		offset = 0
	}

	assets, err := s.assets.SearchByResponsible(ctx, query, s.clampLimit(limit), offset)
	if err != nil {
		s.logger.Warn("asset search failed", zap.String("query", query), zap.Error(err))
		return resp, nil
	}
	total, err := s.assets.CountByResponsible(ctx, query)
	if err != nil {
		s.logger.Warn("asset search count failed", zap.String("query", query), zap.Error(err))
		total = len(assets)
	}
	resp.Results = assets
	resp.Total = total
	return resp, nil
}

// observeSeq advances the per-user high-water mark and reports whether this
// request arrived behind a newer one. Seq zero never advances the mark, so
// clients that do not implement sequencing are never flagged.
func (s *SearchService) observeSeq(userID string, seq uint64) bool {
	if seq == 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.latestSeq[userID] {
		return true
	}
	s.latestSeq[userID] = seq
	return false
}

func (s *SearchService) clampLimit(limit int) int {
	if limit <= 0 {
		return s.defaultLimit
	}
	if limit > s.maxLimit {
		return s.maxLimit
	}
	return limit
}
