package stats

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRepository(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return NewRepository(mock), mock
}

func TestOverview(t *testing.T) {
	repo, mock := testRepository(t)

	mock.ExpectQuery(`SELECT\s+COUNT\(\*\),`).
		WillReturnRows(pgxmock.NewRows([]string{"total", "approved", "rejected", "pending"}).
			AddRow(int64(10), int64(6), int64(3), int64(1)))

	mock.ExpectQuery(`AVG\(\(r->>'confidence'\)::float\)`).
		WillReturnRows(pgxmock.NewRows([]string{"avg"}).AddRow(0.82))

	mock.ExpectQuery(`NOT \(r->>'passed'\)::bool`).
		WillReturnRows(pgxmock.NewRows([]string{"check_name", "failures"}).
			AddRow("sharpness", int64(4)).
			AddRow("background", int64(2)))

	overview, err := repo.Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(10), overview.Total)
	assert.Equal(t, int64(6), overview.Approved)
	assert.Equal(t, int64(3), overview.Rejected)
	assert.Equal(t, int64(1), overview.Pending)
	assert.InDelta(t, 0.82, overview.AvgConfidence, 1e-9)

	require.Len(t, overview.CheckFailures, 2)
	assert.Equal(t, "sharpness", overview.CheckFailures[0].CheckName)
	assert.Equal(t, int64(4), overview.CheckFailures[0].Failures)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOverviewEmptyTable(t *testing.T) {
	repo, mock := testRepository(t)

	mock.ExpectQuery(`SELECT\s+COUNT\(\*\),`).
		WillReturnRows(pgxmock.NewRows([]string{"total", "approved", "rejected", "pending"}).
			AddRow(int64(0), int64(0), int64(0), int64(0)))

	mock.ExpectQuery(`AVG\(\(r->>'confidence'\)::float\)`).
		WillReturnRows(pgxmock.NewRows([]string{"avg"}).AddRow(0.0))

	mock.ExpectQuery(`NOT \(r->>'passed'\)::bool`).
		WillReturnRows(pgxmock.NewRows([]string{"check_name", "failures"}))

	overview, err := repo.Overview(context.Background())
	require.NoError(t, err)

	assert.Zero(t, overview.Total)
	assert.Zero(t, overview.AvgConfidence)
	assert.Empty(t, overview.CheckFailures)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDaily(t *testing.T) {
	repo, mock := testRepository(t)

	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`date_trunc\('day', created_at\)`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"day", "total", "approved", "rejected"}).
			AddRow(day, int64(5), int64(4), int64(1)).
			AddRow(day.AddDate(0, 0, 1), int64(2), int64(0), int64(2)))

	counts, err := repo.Daily(context.Background(), 7)
	require.NoError(t, err)

	require.Len(t, counts, 2)
	assert.Equal(t, day, counts[0].Day)
	assert.Equal(t, int64(5), counts[0].Total)
	assert.Equal(t, int64(2), counts[1].Rejected)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDailyDefaultsWindow(t *testing.T) {
	repo, mock := testRepository(t)

	mock.ExpectQuery(`date_trunc\('day', created_at\)`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"day", "total", "approved", "rejected"}))

	counts, err := repo.Daily(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, counts)

	assert.NoError(t, mock.ExpectationsWereMet())
}
