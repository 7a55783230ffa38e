package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/inventario-ufc/patrimonio-api/internal/dto"
	"github.com/inventario-ufc/patrimonio-api/internal/models"
)

const (
	statsDivergencesKey = "stats:divergences"
	statsCampusesKey    = "stats:campuses"
	statsRankingKey     = "stats:ranking"
	statsSummaryKey     = "stats:summary"

	// campusNoCustody buckets records that cannot be attributed to an owning
	// campus: unregistered assets and tags outside the numeric tombo range.
	campusNoCustody = "SEM CUSTODIA"
)

type recordLister interface {
	ListAll(ctx context.Context) ([]models.AuditRecord, error)
}

type assetCounter interface {
	Count(ctx context.Context) (int, error)
}

type userDirectory interface {
	ListByIDs(ctx context.Context, ids []string) ([]models.User, error)
}

// StatsService computes campaign aggregations over the full record set.
// Results are cached in Redis and invalidated by the record write path.
type StatsService struct {
	records  recordLister
	assets   assetCounter
	users    userDirectory
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewStatsService constructs a StatsService.
func NewStatsService(records recordLister, assets assetCounter, users userDirectory, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *StatsService {
	return &StatsService{records: records, assets: assets, users: users, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// Divergences aggregates per-field correction counts. The boolean reports a
// cache hit.
func (s *StatsService) Divergences(ctx context.Context) (*dto.DivergenceStats, bool, error) {
	var cached dto.DivergenceStats
	if hit, err := s.cache.Get(ctx, statsDivergencesKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	records, err := s.records.ListAll(ctx)
	if err != nil {
		return nil, false, err
	}
	stats := computeDivergences(records)
	s.storeCache(ctx, statsDivergencesKey, stats)
	return stats, false, nil
}

// Campuses partitions records by owning campus.
func (s *StatsService) Campuses(ctx context.Context) (*dto.CampusStats, bool, error) {
	var cached dto.CampusStats
	if hit, err := s.cache.Get(ctx, statsCampusesKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	records, err := s.records.ListAll(ctx)
	if err != nil {
		return nil, false, err
	}
	stats := computeCampuses(records)
	s.storeCache(ctx, statsCampusesKey, stats)
	return stats, false, nil
}

// Ranking orders auditors by submitted record count.
func (s *StatsService) Ranking(ctx context.Context) ([]dto.RankingEntry, bool, error) {
	var cached []dto.RankingEntry
	if hit, err := s.cache.Get(ctx, statsRankingKey, &cached); err == nil && hit {
		return cached, true, nil
	}

	records, err := s.records.ListAll(ctx)
	if err != nil {
		return nil, false, err
	}
	ranking, err := s.computeRanking(ctx, records)
	if err != nil {
		return nil, false, err
	}
	s.storeCache(ctx, statsRankingKey, ranking)
	return ranking, false, nil
}

// Summary composes the full statistics payload for the admin screen and the
// summary export.
func (s *StatsService) Summary(ctx context.Context) (*dto.SummaryStats, bool, error) {
	var cached dto.SummaryStats
	if hit, err := s.cache.Get(ctx, statsSummaryKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	records, err := s.records.ListAll(ctx)
	if err != nil {
		return nil, false, err
	}
	totalReference, err := s.assets.Count(ctx)
	if err != nil {
		return nil, false, err
	}
	ranking, err := s.computeRanking(ctx, records)
	if err != nil {
		return nil, false, err
	}

	distinct := make(map[string]struct{}, len(records))
	pendencies := 0
	for _, record := range records {
		distinct[record.Tag] = struct{}{}
		if record.CampiReconciled.Pendency() {
			pendencies++
		}
	}

	notLocated := totalReference - len(records)
	if notLocated < 0 {
		notLocated = 0
	}

	summary := &dto.SummaryStats{
		TotalReference: totalReference,
		TotalAudited:   len(records),
		DistinctTags:   len(distinct),
		NotLocated:     notLocated,
		Pendencies:     pendencies,
		Divergences:    *computeDivergences(records),
		Campuses:       *computeCampuses(records),
		Ranking:        ranking,
	}
	s.storeCache(ctx, statsSummaryKey, summary)
	return summary, false, nil
}

func (s *StatsService) computeRanking(ctx context.Context, records []models.AuditRecord) ([]dto.RankingEntry, error) {
	counts := make(map[string]int)
	for _, record := range records {
		counts[record.CreatedBy]++
	}

	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	profiles := make(map[string]models.User, len(users))
	for _, user := range users {
		profiles[user.ID] = user
	}

	ranking := make([]dto.RankingEntry, 0, len(counts))
	for id, count := range counts {
		entry := dto.RankingEntry{SubmitterID: id, Count: count}
		if profile, ok := profiles[id]; ok {
			entry.FullName = profile.FullName
			entry.Email = profile.Email
		}
		ranking = append(ranking, entry)
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Count != ranking[j].Count {
			return ranking[i].Count > ranking[j].Count
		}
		return ranking[i].SubmitterID < ranking[j].SubmitterID
	})
	return ranking, nil
}

func (s *StatsService) storeCache(ctx context.Context, key string, value interface{}) {
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil && s.logger != nil {
		s.logger.Warn("stats cache store failed", zap.String("key", key), zap.Error(err))
	}
}

// computeDivergences counts records carrying a corrected value per field.
// Unregistered assets persist their observed values in the same columns, so
// their direct entries count as divergences too; IncludesUnregistered makes
// that conflation visible to consumers.
func computeDivergences(records []models.AuditRecord) *dto.DivergenceStats {
	stats := &dto.DivergenceStats{TotalRecords: len(records)}
	counts := make(map[models.FieldKey]int)
	for _, record := range records {
		unregistered := record.Registered.State() != models.TriStateYes
		for _, key := range models.FieldKeys() {
			if record.CorrectedFor(key) != nil {
				counts[key]++
				if unregistered {
					stats.IncludesUnregistered = true
				}
			}
		}
	}
	for _, key := range models.FieldKeys() {
		stats.ByField = append(stats.ByField, dto.FieldDivergence{Field: string(key), Count: counts[key]})
	}
	return stats
}

func computeCampuses(records []models.AuditRecord) *dto.CampusStats {
	counts := make(map[string]int)
	for _, record := range records {
		counts[campusBucket(record)]++
	}
	groups := make([]dto.CampusGroup, 0, len(counts))
	for campus, count := range counts {
		groups = append(groups, dto.CampusGroup{Campus: campus, Count: count})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Campus < groups[j].Campus
	})
	return &dto.CampusStats{Groups: groups}
}

func campusBucket(record models.AuditRecord) string {
	if record.Registered.State() != models.TriStateYes {
		return campusNoCustody
	}
	if !numericTag(record.Tag) {
		return campusNoCustody
	}
	if record.OwningCampus == nil || *record.OwningCampus == "" {
		return campusNoCustody
	}
	return *record.OwningCampus
}

func numericTag(tag string) bool {
	if tag == "" {
		return false
	}
	for _, r := range tag {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
