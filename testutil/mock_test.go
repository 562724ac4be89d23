package testutil_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dan-strohschein/syndrdb-batch/testutil"
)

func TestMockDB_QueryExpectation(t *testing.T) {
	mock := testutil.NewMockDB()
	defer mock.Close()

	mock.ExpectQuery("SELECT id FROM users").
		WillReturnRows([]string{"id"}, []interface{}{int64(1)}, []interface{}{int64(2)})

	rows, err := mock.DB().QueryContext(context.Background(), "SELECT id FROM users")
	require.NoError(t, err)
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	require.NoError(t, rows.Err())

	assert.Equal(t, []int64{1, 2}, ids)
	mock.VerifyExpectations(t)
}

func TestMockDB_ExecExpectation(t *testing.T) {
	mock := testutil.NewMockDB()
	defer mock.Close()

	mock.ExpectExec("INSERT INTO users (name) VALUES (?)").WillReturnResult(7, 1)

	res, err := mock.DB().ExecContext(context.Background(), "INSERT INTO users (name) VALUES (?)", "alice")
	require.NoError(t, err)

	id, err := res.LastInsertId()
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	affected, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	calls := mock.GetCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "Exec", calls[0].Method)
	assert.Equal(t, []interface{}{"alice"}, calls[0].Args)
	mock.VerifyExpectations(t)
}

func TestMockDB_ErrorExpectation(t *testing.T) {
	mock := testutil.NewMockDB()
	defer mock.Close()

	boom := errors.New("constraint violation")
	mock.ExpectExec("INSERT INTO users (name) VALUES (?)").WillReturnError(boom)

	_, err := mock.DB().ExecContext(context.Background(), "INSERT INTO users (name) VALUES (?)", "bob")
	assert.ErrorIs(t, err, boom)
}

func TestMockDB_RowError(t *testing.T) {
	mock := testutil.NewMockDB()
	defer mock.Close()

	boom := errors.New("cursor broke")
	mock.ExpectQuery("SELECT id FROM users").
		WillReturnRows([]string{"id"}, []interface{}{int64(1)}, []interface{}{int64(2)}).
		WillFailAtRow(1, boom)

	rows, err := mock.DB().QueryContext(context.Background(), "SELECT id FROM users")
	require.NoError(t, err)
	defer rows.Close()

	count := 0
	for rows.Next() {
		count++
	}
	assert.Equal(t, 1, count)
	assert.ErrorIs(t, rows.Err(), boom)
}

func TestMockDB_UnexpectedCall(t *testing.T) {
	mock := testutil.NewMockDB()
	defer mock.Close()

	_, err := mock.DB().ExecContext(context.Background(), "DELETE FROM users")
	assert.Error(t, err)
	assert.Equal(t, 1, mock.GetCallCount("Exec"))
}

func TestMockDB_Times(t *testing.T) {
	mock := testutil.NewMockDB()
	defer mock.Close()

	mock.ExpectExec("UPDATE users SET name = ?").WillReturnResult(0, 1).AnyTimes()

	for i := 0; i < 3; i++ {
		_, err := mock.DB().ExecContext(context.Background(), "UPDATE users SET name = ?", "x")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, mock.GetCallCount("Exec"))
	mock.VerifyExpectations(t)

	mock.Reset()
	assert.Empty(t, mock.GetCalls())
}
