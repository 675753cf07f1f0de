package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"focustracks/core/playlist"
	"focustracks/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMembershipsByPlaylist(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "playlist_id", "track_id", "position", "created_at", "updated_at"}).
		AddRow("m1", 1, 10, 1, now, now).
		AddRow("m2", 1, 20, 2, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, playlist_id, track_id, position, created_at, updated_at")).
		WithArgs(int64(1)).
		WillReturnRows(rows)

	repo := NewMySQLPlaylistTrackRepository(db)
	members, err := repo.MembershipsByPlaylist(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, int64(10), members[0].TrackID)
	assert.Equal(t, 2, members[1].Position)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertMembership(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	membership := &model.PlaylistTrack{
		ID: "m1", PlaylistID: 1, TrackID: 10, Position: 1,
		CreatedAt: now, UpdatedAt: now,
	}
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO playlist_tracks")).
		WithArgs("m1", int64(1), int64(10), 1, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewMySQLPlaylistTrackRepository(db)
	require.NoError(t, repo.InsertMembership(context.Background(), membership))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertMembershipDuplicateKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO playlist_tracks")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	repo := NewMySQLPlaylistTrackRepository(db)
	err = repo.InsertMembership(context.Background(), &model.PlaylistTrack{
		ID: "m1", PlaylistID: 1, TrackID: 10, Position: 1,
	})
	assert.ErrorIs(t, err, playlist.ErrDuplicateMembership)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaylistIDsByTrack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"playlist_id"}).AddRow(1).AddRow(3)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT playlist_id FROM playlist_tracks WHERE track_id = ?")).
		WithArgs(int64(10)).
		WillReturnRows(rows)

	repo := NewMySQLPlaylistTrackRepository(db)
	ids, err := repo.PlaylistIDsByTrack(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMembershipCommitsDeleteAndRenumbering(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM playlist_tracks WHERE playlist_id = ? AND track_id = ?")).
		WithArgs(int64(1), int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectPrepare(regexp.QuoteMeta("UPDATE playlist_tracks SET position = ?, updated_at = ? WHERE id = ?"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE playlist_tracks SET position = ?, updated_at = ? WHERE id = ?")).
		WithArgs(1, sqlmock.AnyArg(), "m2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewMySQLPlaylistTrackRepository(db)
	updates := []*model.PlaylistTrack{{ID: "m2", Position: 1}}
	require.NoError(t, repo.DeleteMembership(context.Background(), 1, 10, updates))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMembershipNotFoundRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM playlist_tracks WHERE playlist_id = ? AND track_id = ?")).
		WithArgs(int64(1), int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	repo := NewMySQLPlaylistTrackRepository(db)
	err = repo.DeleteMembership(context.Background(), 1, 99, nil)
	assert.ErrorIs(t, err, playlist.ErrMembershipNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePositions(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectPrepare(regexp.QuoteMeta("UPDATE playlist_tracks SET position = ?, updated_at = ? WHERE id = ?"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE playlist_tracks SET position = ?, updated_at = ? WHERE id = ?")).
		WithArgs(2, sqlmock.AnyArg(), "m1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE playlist_tracks SET position = ?, updated_at = ? WHERE id = ?")).
		WithArgs(1, sqlmock.AnyArg(), "m2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewMySQLPlaylistTrackRepository(db)
	updates := []*model.PlaylistTrack{
		{ID: "m1", Position: 2},
		{ID: "m2", Position: 1},
	}
	require.NoError(t, repo.UpdatePositions(context.Background(), updates))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePositionsRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectPrepare(regexp.QuoteMeta("UPDATE playlist_tracks SET position = ?, updated_at = ? WHERE id = ?"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE playlist_tracks SET position = ?, updated_at = ? WHERE id = ?")).
		WithArgs(2, sqlmock.AnyArg(), "m1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE playlist_tracks SET position = ?, updated_at = ? WHERE id = ?")).
		WithArgs(1, sqlmock.AnyArg(), "m2").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	repo := NewMySQLPlaylistTrackRepository(db)
	updates := []*model.PlaylistTrack{
		{ID: "m1", Position: 2},
		{ID: "m2", Position: 1},
	}
	err = repo.UpdatePositions(context.Background(), updates)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePositionsEmptyBatchIsNoOp(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewMySQLPlaylistTrackRepository(db)
	require.NoError(t, repo.UpdatePositions(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAllMemberships(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM playlist_tracks WHERE playlist_id = ?")).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	repo := NewMySQLPlaylistTrackRepository(db)
	require.NoError(t, repo.DeleteAllMemberships(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}
