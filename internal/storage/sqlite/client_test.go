package sqlite

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scout-dashboard/suqi/internal/storage/models"
)

var historyColumns = []string{
	"id", "user_id", "question", "method", "confidence", "sql_text", "template_id", "cached", "latency_ms", "created_at",
}

func newMock(t *testing.T) (*Client, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewClientFromDB(db), mock
}

func TestInsertQueryRecord(t *testing.T) {
	client, mock := newMock(t)
	created := time.Unix(1700000000, 0)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO query_history")).
		WithArgs("q-1", "u-1", "what is the total revenue", "semantic", 0.837,
			"SELECT SUM(revenue)", "total_revenue", 0, 3, created.Unix()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := client.InsertQueryRecord(context.Background(), &models.QueryRecord{
		ID:         "q-1",
		UserID:     "u-1",
		Question:   "what is the total revenue",
		Method:     "semantic",
		Confidence: 0.837,
		SQL:        "SELECT SUM(revenue)",
		TemplateID: "total_revenue",
		LatencyMS:  3,
		CreatedAt:  created,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertQueryRecord_WrapsError(t *testing.T) {
	client, mock := newMock(t)
	boom := errors.New("disk full")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO query_history")).WillReturnError(boom)

	err := client.InsertQueryRecord(context.Background(), &models.QueryRecord{ID: "q-1"})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to insert query record")
}

func TestGetQueryHistory_ByUser(t *testing.T) {
	client, mock := newMock(t)

	rows := sqlmock.NewRows(historyColumns).
		AddRow("q-2", "u-1", "revenue by region", "semantic", 0.9, "SELECT region", "revenue_by_region", 1, 1, int64(1700000100)).
		AddRow("q-1", "u-1", "xyzzy", "fallback", 0.3, "SELECT 'Summary'", nil, 0, 2, int64(1700000000))

	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = ? ORDER BY created_at DESC LIMIT ?")).
		WithArgs("u-1", 5).
		WillReturnRows(rows)

	records, err := client.GetQueryHistory(context.Background(), "u-1", 5)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "q-2", records[0].ID)
	assert.True(t, records[0].Cached)
	assert.Equal(t, "revenue_by_region", records[0].TemplateID)
	assert.Equal(t, "fallback", records[1].Method)
	assert.Empty(t, records[1].TemplateID)
	assert.Equal(t, time.Unix(1700000000, 0), records[1].CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetQueryHistory_AllUsersDefaultLimit(t *testing.T) {
	client, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC LIMIT ?")).
		WithArgs(DefaultHistoryLimit).
		WillReturnRows(sqlmock.NewRows(historyColumns))

	records, err := client.GetQueryHistory(context.Background(), "", 0)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetQueryRecord_NotFound(t *testing.T) {
	client, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = ?")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(historyColumns))

	_, err := client.GetQueryRecord(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreFeedback(t *testing.T) {
	client, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO feedback")).
		WithArgs("q-1", 1, "wrong_template", "expected stores", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := client.StoreFeedback(context.Background(), &models.Feedback{
		QueryID:       "q-1",
		Helpful:       true,
		IssueCategory: "wrong_template",
		Comment:       "expected stores",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertEvaluationRun(t *testing.T) {
	client, mock := newMock(t)
	created := time.Unix(1700000000, 0)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO evaluation_runs")).
		WithArgs(10, 9, 0.9, 0.8, created.Unix()).
		WillReturnResult(sqlmock.NewResult(7, 1))

	run := &models.EvaluationRun{TotalCases: 10, Passed: 9, Accuracy: 0.9, MeanConfidence: 0.8, CreatedAt: created}
	require.NoError(t, client.InsertEvaluationRun(context.Background(), run))
	assert.Equal(t, 7, run.ID)
}

func TestInitSchema(t *testing.T) {
	client, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS query_history")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, client.InitSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
