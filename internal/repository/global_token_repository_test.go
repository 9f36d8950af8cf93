package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brandpanel/internal/models"
)

func TestGlobalTokenRepository_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT token FROM global_tokens WHERE id = \\$1").
		WithArgs(models.GlobalTokenID).
		WillReturnRows(sqlmock.NewRows([]string{"token"}).AddRow("stored-token"))

	token, ok, err := NewGlobalTokenRepository(db).Get(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "stored-token", token)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGlobalTokenRepository_Get_NoRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT token FROM global_tokens WHERE id = \\$1").
		WithArgs(models.GlobalTokenID).
		WillReturnRows(sqlmock.NewRows([]string{"token"}))

	token, ok, err := NewGlobalTokenRepository(db).Get(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, token)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGlobalTokenRepository_Get_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT token FROM global_tokens").
		WillReturnError(errors.New("connection reset"))

	_, ok, err := NewGlobalTokenRepository(db).Get(context.Background())
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestGlobalTokenRepository_Set_Upserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("(?s)INSERT INTO global_tokens.+ON CONFLICT \\(id\\)").
		WithArgs(models.GlobalTokenID, "fresh-token", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewGlobalTokenRepository(db).Set(context.Background(), "fresh-token"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGlobalTokenRepository_Set_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO global_tokens").
		WillReturnError(errors.New("write failed"))

	assert.Error(t, NewGlobalTokenRepository(db).Set(context.Background(), "fresh-token"))
}
