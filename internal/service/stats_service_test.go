package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inventario-ufc/patrimonio-api/internal/models"
)

type fakeRecordLister struct {
	records []models.AuditRecord
	err     error
}

func (f *fakeRecordLister) ListAll(context.Context) ([]models.AuditRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

type fakeAssetCounter struct {
	total int
}

func (f *fakeAssetCounter) Count(context.Context) (int, error) {
	return f.total, nil
}

type fakeUserDirectory struct {
	users []models.User
}

func (f *fakeUserDirectory) ListByIDs(context.Context, []string) ([]models.User, error) {
	return f.users, nil
}

func str(s string) *string { return &s }

func statsRecords() []models.AuditRecord {
	fortaleza := "FORTALEZA"
	sobral := "SOBRAL"
	return []models.AuditRecord{
		{
			Tag:             "12345",
			Registered:      models.MatchFlag(models.TriStateYes),
			DescriptionNew:  str("Mesa de reunião"),
			OwningCampus:    &fortaleza,
			CampiReconciled: models.CampusReconciled,
			CreatedBy:       "user-1",
		},
		{
			Tag:             "12346",
			Registered:      models.MatchFlag(models.TriStateYes),
			OwningCampus:    &sobral,
			CampiReconciled: models.CampusCustodyPendency,
			CreatedBy:       "user-1",
		},
		{
			Tag:             "99999",
			Registered:      models.MatchFlag(models.TriStateNo),
			DescriptionNew:  str("Projetor sem tombamento"),
			RoomNew:         str("Sala 202"),
			CampiReconciled: models.CampusReconciled,
			CreatedBy:       "user-2",
		},
	}
}

func newStatsService(records []models.AuditRecord, refTotal int, users []models.User) *StatsService {
	return NewStatsService(
		&fakeRecordLister{records: records},
		&fakeAssetCounter{total: refTotal},
		&fakeUserDirectory{users: users},
		nil,
		time.Minute,
		zap.NewNop(),
	)
}

func TestStatsDivergencesConflationFlagged(t *testing.T) {
	svc := newStatsService(statsRecords(), 10, nil)

	stats, hit, err := svc.Divergences(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 3, stats.TotalRecords)
	assert.True(t, stats.IncludesUnregistered)

	byField := make(map[string]int)
	for _, fd := range stats.ByField {
		byField[fd.Field] = fd.Count
	}
	// registered correction plus unregistered direct entry
	assert.Equal(t, 2, byField["descricao"])
	assert.Equal(t, 1, byField["sala"])
	assert.Equal(t, 0, byField["estado"])
}

func TestStatsDivergencesRegisteredOnly(t *testing.T) {
	records := statsRecords()[:2]
	svc := newStatsService(records, 10, nil)

	stats, _, err := svc.Divergences(context.Background())
	require.NoError(t, err)
	assert.False(t, stats.IncludesUnregistered)
}

func TestStatsCampusesBuckets(t *testing.T) {
	svc := newStatsService(statsRecords(), 10, nil)

	stats, _, err := svc.Campuses(context.Background())
	require.NoError(t, err)
	require.Len(t, stats.Groups, 3)

	byName := make(map[string]int)
	for _, g := range stats.Groups {
		byName[g.Campus] = g.Count
	}
	assert.Equal(t, 1, byName["FORTALEZA"])
	assert.Equal(t, 1, byName["SOBRAL"])
	assert.Equal(t, 1, byName["SEM CUSTODIA"])
}

func TestStatsCampusesNonNumericTag(t *testing.T) {
	fortaleza := "FORTALEZA"
	records := []models.AuditRecord{{
		Tag:          "ABC-01",
		Registered:   models.MatchFlag(models.TriStateYes),
		OwningCampus: &fortaleza,
		CreatedBy:    "user-1",
	}}
	svc := newStatsService(records, 10, nil)

	stats, _, err := svc.Campuses(context.Background())
	require.NoError(t, err)
	require.Len(t, stats.Groups, 1)
	assert.Equal(t, "SEM CUSTODIA", stats.Groups[0].Campus)
}

func TestStatsRankingOrderAndTiebreak(t *testing.T) {
	records := []models.AuditRecord{
		{Tag: "1", CreatedBy: "user-b"},
		{Tag: "2", CreatedBy: "user-b"},
		{Tag: "3", CreatedBy: "user-a"},
		{Tag: "4", CreatedBy: "user-c"},
	}
	users := []models.User{
		{ID: "user-a", FullName: "Ana", Email: "ana@ufc.br"},
		{ID: "user-b", FullName: "Bruno", Email: "bruno@ufc.br"},
	}
	svc := newStatsService(records, 10, users)

	ranking, _, err := svc.Ranking(context.Background())
	require.NoError(t, err)
	require.Len(t, ranking, 3)
	assert.Equal(t, "user-b", ranking[0].SubmitterID)
	assert.Equal(t, "Bruno", ranking[0].FullName)
	// equal counts fall back to submitter id order
	assert.Equal(t, "user-a", ranking[1].SubmitterID)
	assert.Equal(t, "user-c", ranking[2].SubmitterID)
	// unknown submitters still rank, just without profile data
	assert.Empty(t, ranking[2].FullName)
}

func TestStatsSummary(t *testing.T) {
	records := statsRecords()
	// duplicate audit of the same tag
	records = append(records, models.AuditRecord{Tag: "12345", Registered: models.MatchFlag(models.TriStateYes), CreatedBy: "user-2"})
	svc := newStatsService(records, 10, nil)

	summary, _, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, summary.TotalReference)
	assert.Equal(t, 4, summary.TotalAudited)
	assert.Equal(t, 3, summary.DistinctTags)
	assert.Equal(t, 6, summary.NotLocated)
	assert.Equal(t, 1, summary.Pendencies)
	require.Len(t, summary.Ranking, 2)
}

func TestStatsSummaryNotLocatedFloorsAtZero(t *testing.T) {
	svc := newStatsService(statsRecords(), 1, nil)

	summary, _, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.NotLocated)
}
