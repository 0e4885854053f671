package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

// These tests pin the statement sequence of the enrollment transaction
// against a mocked driver: the row lock must be taken first, every
// precondition failure must roll back, and only the full happy path may
// commit. Expectations are ordered, so reordering or dropping a statement
// fails the test even though no real MySQL is involved.

const (
	lockActivitySQL   = `SELECT id_usuario, data_hora, vagas FROM atividades WHERE id = ? FOR UPDATE`
	dupCheckSQL       = `SELECT 1 FROM participacoes WHERE id_usuario = ? AND id_atividade = ? LIMIT 1`
	countEnrolledSQL  = `SELECT COUNT(*) FROM participacoes WHERE id_atividade = ?`
	insertEnrollSQL   = `INSERT INTO participacoes (id_usuario, id_atividade) VALUES (?, ?)`
	lockOwnedRowSQL   = `SELECT 1 FROM atividades WHERE id = ? AND id_usuario = ? FOR UPDATE`
	deleteEnrollsSQL  = `DELETE FROM participacoes WHERE id_atividade = ?`
	deleteActivitySQL = `DELETE FROM atividades WHERE id = ?`
)

func newMockRepo(t *testing.T) (*EnrollmentRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewEnrollmentRepo(db), mock
}

func activityRow(owner uint64, when time.Time, vagas int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id_usuario", "data_hora", "vagas"}).
		AddRow(owner, when, vagas)
}

func TestJoinCommitsAfterLockCheckInsert(t *testing.T) {
	repo, mock := newMockRepo(t)
	future := time.Now().UTC().Add(24 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockActivitySQL)).
		WithArgs(uint64(5)).
		WillReturnRows(activityRow(1, future, 3))
	mock.ExpectQuery(regexp.QuoteMeta(dupCheckSQL)).
		WithArgs(uint64(2), uint64(5)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta(countEnrolledSQL)).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta(insertEnrollSQL)).
		WithArgs(uint64(2), uint64(5)).
		WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectCommit()

	remaining, err := repo.Join(context.Background(), 2, 5)
	require.NoError(t, err)
	require.Equal(t, 1, remaining) // 3 seats, 1 taken before, 1 taken now
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinRollsBackWhenFull(t *testing.T) {
	repo, mock := newMockRepo(t)
	future := time.Now().UTC().Add(24 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockActivitySQL)).
		WithArgs(uint64(5)).
		WillReturnRows(activityRow(1, future, 3))
	mock.ExpectQuery(regexp.QuoteMeta(dupCheckSQL)).
		WithArgs(uint64(2), uint64(5)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta(countEnrolledSQL)).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(3))
	mock.ExpectRollback()

	_, err := repo.Join(context.Background(), 2, 5)
	require.ErrorIs(t, err, ErrActivityFull)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinRollsBackOnEachPrecondition(t *testing.T) {
	future := time.Now().UTC().Add(24 * time.Hour)
	past := time.Now().UTC().Add(-time.Hour)

	cases := []struct {
		name   string
		expect func(mock sqlmock.Sqlmock)
		want   error
	}{
		{
			name: "unknown activity",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(lockActivitySQL)).
					WithArgs(uint64(5)).
					WillReturnError(sql.ErrNoRows)
			},
			want: ErrActivityNotFound,
		},
		{
			name: "already happened",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(lockActivitySQL)).
					WithArgs(uint64(5)).
					WillReturnRows(activityRow(1, past, 3))
			},
			want: ErrActivityExpired,
		},
		{
			name: "organizer joining own activity",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(lockActivitySQL)).
					WithArgs(uint64(5)).
					WillReturnRows(activityRow(2, future, 3))
			},
			want: ErrOwnActivity,
		},
		{
			name: "existing enrollment",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(lockActivitySQL)).
					WithArgs(uint64(5)).
					WillReturnRows(activityRow(1, future, 3))
				mock.ExpectQuery(regexp.QuoteMeta(dupCheckSQL)).
					WithArgs(uint64(2), uint64(5)).
					WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
			},
			want: ErrAlreadyEnrolled,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			mock.ExpectBegin()
			tc.expect(mock)
			mock.ExpectRollback()

			_, err := repo.Join(context.Background(), 2, 5)
			require.ErrorIs(t, err, tc.want)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestJoinDuplicateKeyBackstop(t *testing.T) {
	// A racing insert that slips past the existence check dies on the
	// unique index and must come back as the duplicate error, not as an
	// internal failure.
	repo, mock := newMockRepo(t)
	future := time.Now().UTC().Add(24 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockActivitySQL)).
		WithArgs(uint64(5)).
		WillReturnRows(activityRow(1, future, 3))
	mock.ExpectQuery(regexp.QuoteMeta(dupCheckSQL)).
		WithArgs(uint64(2), uint64(5)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta(countEnrolledSQL)).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta(insertEnrollSQL)).
		WithArgs(uint64(2), uint64(5)).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry '2-5' for key 'uq_participacoes_usuario_atividade'"))
	mock.ExpectRollback()

	_, err := repo.Join(context.Background(), 2, 5)
	require.ErrorIs(t, err, ErrAlreadyEnrolled)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveMapsZeroRows(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM participacoes WHERE id_usuario = ? AND id_atividade = ?`)).
		WithArgs(uint64(2), uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Leave(context.Background(), 2, 5)
	require.ErrorIs(t, err, ErrNotEnrolled)
	require.NoError(t, mock.ExpectationsWereMet())
}
