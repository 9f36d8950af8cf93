package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brandpanel/internal/models"
)

var postColumnList = []string{
	"id", "brand_id", "status", "title", "short_text", "long_text", "caption",
	"hashtags", "body", "media_url", "schedule_at", "last_error", "created_at", "updated_at",
}

func postRow(rows *sqlmock.Rows, id int64, scheduleAt any) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, int64(1), models.PostStatusScheduled, "Launch", "st", "lt", "cap",
		"{#go,#brand}", "body", "https://cdn.example.com/img.png", scheduleAt, "", now, now)
}

func TestPostRepository_ListDue_SelectsOnlyScheduledPastDue(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	rows := postRow(sqlmock.NewRows(postColumnList), 7, now.Add(-time.Hour))

	mock.ExpectQuery("SELECT (.+) FROM posts WHERE status = \\$1 AND schedule_at <= \\$2").
		WithArgs(models.PostStatusScheduled, now).
		WillReturnRows(rows)

	due, err := NewPostRepository(db).ListDue(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, int64(7), due[0].ID)
	assert.Equal(t, []string{"#go", "#brand"}, due[0].Hashtags)
	require.NotNil(t, due[0].ScheduleAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_ListDue_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM posts WHERE status = \\$1 AND schedule_at <= \\$2").
		WithArgs(models.PostStatusScheduled, now).
		WillReturnRows(sqlmock.NewRows(postColumnList))

	due, err := NewPostRepository(db).ListDue(context.Background(), now)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestPostRepository_GetByID_NoRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM posts WHERE id = \\$1").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(postColumnList))

	post, err := NewPostRepository(db).GetByID(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, post)
}

func TestPostRepository_GetByID_NullScheduleAt(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := postRow(sqlmock.NewRows(postColumnList), 7, nil)
	mock.ExpectQuery("SELECT (.+) FROM posts WHERE id = \\$1").
		WithArgs(int64(7)).
		WillReturnRows(rows)

	post, err := NewPostRepository(db).GetByID(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, post)
	assert.Nil(t, post.ScheduleAt)
}

func TestPostRepository_Schedule(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Now().Add(time.Hour)
	mock.ExpectExec("(?s)UPDATE posts.+SET status = \\$1").
		WithArgs(models.PostStatusScheduled, at, sqlmock.AnyArg(), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewPostRepository(db).Schedule(context.Background(), 7, at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_MarkFailed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("(?s)UPDATE posts.+SET status = \\$1").
		WithArgs(models.PostStatusFailed, "webhook returned 500", sqlmock.AnyArg(), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewPostRepository(db).MarkFailed(context.Background(), 7, "webhook returned 500"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_UpdateStatus_ClearsLastError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("(?s)UPDATE posts.+last_error = ''").
		WithArgs(models.PostStatusSent, sqlmock.AnyArg(), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewPostRepository(db).UpdateStatus(context.Background(), models.PostStatusSent, 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_CheckByUserID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("(?s)SELECT 1 FROM posts p.+JOIN brands b").
		WithArgs(int64(7), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	ok, err := NewPostRepository(db).CheckByUserID(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectQuery("(?s)SELECT 1 FROM posts p.+JOIN brands b").
		WithArgs(int64(7), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	ok, err = NewPostRepository(db).CheckByUserID(context.Background(), 7, 2)
	require.NoError(t, err)
	assert.False(t, ok)
}
