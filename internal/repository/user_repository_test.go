package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/inventario-ufc/patrimonio-api/internal/models"
)

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "password_hash", "full_name", "role", "home_campus", "active", "last_login", "created_at", "updated_at"})
}

func TestUserRepositoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	rows := userRows().AddRow("user-1", "maria@ufc.br", "hash", "Maria Silva", models.RoleUser, "FORTALEZA", true, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1 LIMIT 1")).
		WithArgs("maria@ufc.br").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "maria@ufc.br")
	require.NoError(t, err)
	require.Equal(t, "FORTALEZA", user.HomeCampus)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryListByIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	rows := userRows().
		AddRow("user-1", "maria@ufc.br", "hash", "Maria Silva", models.RoleUser, "FORTALEZA", true, nil, time.Now(), time.Now()).
		AddRow("user-2", "joao@ufc.br", "hash", "João Souza", models.RoleUser, "SOBRAL", true, nil, time.Now(), time.Now())
	mock.ExpectQuery("FROM users WHERE id IN").
		WithArgs("user-1", "user-2").
		WillReturnRows(rows)

	users, err := repo.ListByIDs(context.Background(), []string{"user-1", "user-2"})
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryListByIDsEmpty(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	users, err := repo.ListByIDs(context.Background(), nil)
	require.NoError(t, err)
	require.Nil(t, users)
}
