package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/fitpulse-lab/fitpulse/internal/store"
)

func newMockAdapter(t *testing.T) (*Adapter, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectPrepare("SELECT data, revision")
	mock.ExpectPrepare("INSERT INTO snapshots")
	mock.ExpectPrepare("UPDATE snapshots")
	mock.ExpectPrepare("DELETE FROM snapshots")

	adapter, err := NewAdapterWithDB(db)
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })

	return adapter, mock
}

func TestAdapter_Load(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	rows := sqlmock.NewRows([]string{"data", "revision"}).
		AddRow([]byte(`{"daily_data":{}}`), "rev-1")
	mock.ExpectQuery("SELECT data, revision").
		WithArgs("garmin_data").
		WillReturnRows(rows)

	data, revision, err := adapter.Load(context.Background(), "garmin_data")
	require.NoError(t, err)
	require.Equal(t, "rev-1", revision)
	require.JSONEq(t, `{"daily_data":{}}`, string(data))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_LoadMissingKey(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectQuery("SELECT data, revision").
		WithArgs("garmin_data").
		WillReturnError(sql.ErrNoRows)

	_, _, err := adapter.Load(context.Background(), "garmin_data")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_SaveFirstWrite(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectQuery("INSERT INTO snapshots").
		WithArgs("garmin_data", []byte(`{}`), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"revision"}).AddRow("rev-1"))

	revision, err := adapter.Save(context.Background(), "garmin_data", []byte(`{}`), "")
	require.NoError(t, err)
	require.Equal(t, "rev-1", revision)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_SaveFirstWriteLosesRace(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	// ON CONFLICT DO NOTHING yields no rows when the key already exists.
	mock.ExpectQuery("INSERT INTO snapshots").
		WithArgs("garmin_data", []byte(`{}`), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"revision"}))

	_, err := adapter.Save(context.Background(), "garmin_data", []byte(`{}`), "")
	require.ErrorIs(t, err, store.ErrRevisionMismatch)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_SaveWithRevision(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectQuery("UPDATE snapshots").
		WithArgs("garmin_data", []byte(`{"v":2}`), sqlmock.AnyArg(), "rev-1").
		WillReturnRows(sqlmock.NewRows([]string{"revision"}).AddRow("rev-2"))

	revision, err := adapter.Save(context.Background(), "garmin_data", []byte(`{"v":2}`), "rev-1")
	require.NoError(t, err)
	require.Equal(t, "rev-2", revision)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_SaveStaleRevision(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectQuery("UPDATE snapshots").
		WithArgs("garmin_data", []byte(`{"v":2}`), sqlmock.AnyArg(), "stale").
		WillReturnRows(sqlmock.NewRows([]string{"revision"}))

	_, err := adapter.Save(context.Background(), "garmin_data", []byte(`{"v":2}`), "stale")
	require.ErrorIs(t, err, store.ErrRevisionMismatch)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_Delete(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectExec("DELETE FROM snapshots").
		WithArgs("garmin_data").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, adapter.Delete(context.Background(), "garmin_data"))
	require.NoError(t, mock.ExpectationsWereMet())
}
