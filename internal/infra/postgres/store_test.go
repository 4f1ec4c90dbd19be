package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"live-quiz-service/internal/domain"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := bun.NewDB(sqldb, pgdialect.New())
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db), mock
}

func TestAdjustScoreIsSingleUpdate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`UPDATE "players" .*score = score \+ -1.*RETURNING score`).
		WillReturnRows(sqlmock.NewRows([]string{"score"}).AddRow(4))

	score, err := store.AdjustScore(context.Background(), "p1", -1)
	require.NoError(t, err)
	require.Equal(t, 4, score)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustScoreMissingPlayer(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`UPDATE "players"`).
		WillReturnRows(sqlmock.NewRows([]string{"score"}))

	_, err := store.AdjustScore(context.Background(), "ghost", 1)
	require.ErrorIs(t, err, domain.ErrPlayerNotFound)
}

func TestDeletePlayersReturnsCount(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM "players" AS "p" WHERE \(room_id = 'room-1'\)`).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := store.DeletePlayers(context.Background(), "room-1")
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRoomNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE "rooms" AS "r" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.SaveRoom(context.Background(), domain.Room{ID: "missing", Status: domain.StatusWaiting})
	require.ErrorIs(t, err, domain.ErrRoomNotFound)
}
