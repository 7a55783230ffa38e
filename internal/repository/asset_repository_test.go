package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAssetRepositoryFindByTag(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssetRepository(db)

	rows := sqlmock.NewRows([]string{"tombo", "descricao", "numero_serie", "sala", "estado", "responsavel", "campus"}).
		AddRow("12345", "Mesa de escritório", "SN-001", "Sala 101", "BOM", "Maria Silva", "FORTALEZA")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT tombo, descricao, numero_serie, sala, estado, responsavel, campus FROM bens WHERE tombo = $1 LIMIT 1")).
		WithArgs("12345").
		WillReturnRows(rows)

	asset, err := repo.FindByTag(context.Background(), "12345")
	require.NoError(t, err)
	require.Equal(t, "Mesa de escritório", asset.Description)
	require.Equal(t, "FORTALEZA", asset.Campus)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssetRepositoryFindByTagNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssetRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT tombo, descricao, numero_serie, sala, estado, responsavel, campus FROM bens WHERE tombo = $1 LIMIT 1")).
		WithArgs("99999").
		WillReturnError(sql.ErrNoRows)

	asset, err := repo.FindByTag(context.Background(), "99999")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.Nil(t, asset)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssetRepositoryDistinctRooms(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssetRepository(db)

	rows := sqlmock.NewRows([]string{"sala"}).AddRow("Sala 101").AddRow("Sala 102")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT sala FROM bens WHERE sala <> '' AND LOWER(sala) LIKE $1 ORDER BY sala ASC LIMIT $2")).
		WithArgs("sala%", 10).
		WillReturnRows(rows)

	rooms, err := repo.DistinctRooms(context.Background(), "Sala", 10)
	require.NoError(t, err)
	require.Equal(t, []string{"Sala 101", "Sala 102"}, rooms)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssetRepositorySearchByResponsible(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssetRepository(db)

	rows := sqlmock.NewRows([]string{"tombo", "descricao", "numero_serie", "sala", "estado", "responsavel", "campus"}).
		AddRow("12345", "Mesa de escritório", "SN-001", "Sala 101", "BOM", "Maria Silva", "FORTALEZA").
		AddRow("12400", "Cadeira giratória", "", "Sala 101", "REGULAR", "Maria Silva", "FORTALEZA")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT tombo, descricao, numero_serie, sala, estado, responsavel, campus FROM bens WHERE responsavel ILIKE $1 ORDER BY tombo ASC LIMIT $2 OFFSET $3")).
		WithArgs("%maria%", 20, 0).
		WillReturnRows(rows)

	assets, err := repo.SearchByResponsible(context.Background(), "maria", 20, 0)
	require.NoError(t, err)
	require.Len(t, assets, 2)
	require.Equal(t, "Maria Silva", assets[0].Responsible)
	require.NoError(t, mock.ExpectationsWereMet())
}
