package messages

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	text string
	err  error
}

func (r fakeRow) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*string)) = r.text
	return nil
}

type fakeDB struct {
	row      fakeRow
	lastSQL  string
	lastArgs []interface{}
}

func (f *fakeDB) Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("not implemented")
}

func (f *fakeDB) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...interface{}) pgx.Row {
	f.lastSQL = sql
	f.lastArgs = args
	return f.row
}

func TestGetMessageText(t *testing.T) {
	db := &fakeDB{row: fakeRow{text: "Hello world"}}
	repo := NewRepository(db)

	text, err := repo.GetMessageText(context.Background(), "msg-1")

	require.NoError(t, err)
	assert.Equal(t, "Hello world", text)
	assert.Equal(t, []interface{}{"msg-1"}, db.lastArgs)
	assert.Contains(t, db.lastSQL, "FROM messages")
}

func TestGetMessageText_NotFound(t *testing.T) {
	repo := NewRepository(&fakeDB{row: fakeRow{err: pgx.ErrNoRows}})

	_, err := repo.GetMessageText(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetMessageText_DatabaseError(t *testing.T) {
	dbErr := errors.New("connection reset")
	repo := NewRepository(&fakeDB{row: fakeRow{err: dbErr}})

	_, err := repo.GetMessageText(context.Background(), "msg-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrNotFound)
}
