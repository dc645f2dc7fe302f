package minidb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minidb/internal/dberrors"
	"minidb/internal/value"
)

func TestCreateInsertSelect(t *testing.T) {
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Execute(`CREATE TABLE users (id INTEGER PRIMARY KEY, name VARCHAR(32) NOT NULL)`)
	require.NoError(t, err)
	_, err = db.Execute(`INSERT INTO users (id, name) VALUES (1, 'alice')`)
	require.NoError(t, err)

	res, err := db.Execute(`SELECT * FROM users`)
	require.NoError(t, err)
	rs := res.(RowSet)
	require.Len(t, rs.Rows, 1)
}

func TestPrimaryKeyViolationEndToEnd(t *testing.T) {
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Execute(`CREATE TABLE users (id INTEGER PRIMARY KEY, name VARCHAR(32))`)
	require.NoError(t, err)
	_, err = db.Execute(`INSERT INTO users (id, name) VALUES (1, 'alice')`)
	require.NoError(t, err)

	_, err = db.Execute(`INSERT INTO users (id, name) VALUES (1, 'bob')`)
	require.Error(t, err)
	var ce *dberrors.ConstraintError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, dberrors.ConstraintPK, ce.Kind)
}

func TestUniqueColumnAllowsMultipleNullsEndToEnd(t *testing.T) {
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Execute(`CREATE TABLE users (id INTEGER PRIMARY KEY, email VARCHAR(64) UNIQUE)`)
	require.NoError(t, err)
	_, err = db.Execute(`INSERT INTO users (id) VALUES (1)`)
	require.NoError(t, err)
	_, err = db.Execute(`INSERT INTO users (id) VALUES (2)`)
	require.NoError(t, err, "two rows with a NULL email must both be accepted")
}

func TestUpdateReplacesRid(t *testing.T) {
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Execute(`CREATE TABLE users (id INTEGER PRIMARY KEY, name VARCHAR(32))`)
	require.NoError(t, err)
	_, err = db.Execute(`INSERT INTO users (id, name) VALUES (1, 'alice')`)
	require.NoError(t, err)

	res, err := db.Execute(`UPDATE users SET name = 'alicia' WHERE id = 1`)
	require.NoError(t, err)
	assert.Equal(t, Ack{Kind: "UPDATE", Affected: 1}, res)

	sel, err := db.Execute(`SELECT name FROM users WHERE id = 1`)
	require.NoError(t, err)
	rows := sel.(RowSet).Rows
	require.Len(t, rows, 1)
	assert.Equal(t, value.Str("alicia"), rows[0][0])
}

func TestIndexAcceleratedSelectAndJoin(t *testing.T) {
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Execute(`CREATE TABLE t (id INTEGER PRIMARY KEY, name VARCHAR(16))`)
	require.NoError(t, err)
	_, err = db.Execute(`CREATE TABLE o (tid INTEGER, amt INTEGER)`)
	require.NoError(t, err)
	_, err = db.Execute(`INSERT INTO t (id, name) VALUES (1, 'a')`)
	require.NoError(t, err)
	_, err = db.Execute(`INSERT INTO t (id, name) VALUES (2, 'b')`)
	require.NoError(t, err)
	_, err = db.Execute(`INSERT INTO o (tid, amt) VALUES (1, 10)`)
	require.NoError(t, err)
	_, err = db.Execute(`INSERT INTO o (tid, amt) VALUES (2, 20)`)
	require.NoError(t, err)
	_, err = db.Execute(`CREATE INDEX idx_t_id ON t (id)`)
	require.NoError(t, err)

	res, err := db.Execute(`SELECT t.name, o.amt FROM t JOIN o ON t.id = o.tid WHERE o.amt = 20`)
	require.NoError(t, err)
	rs := res.(RowSet)
	require.Len(t, rs.Rows, 1)
	assert.Equal(t, []value.Value{value.Str("b"), value.Int(20)}, rs.Rows[0])
}

func TestReopenPreservesState(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	require.NoError(t, err)
	_, err = db.Execute(`CREATE TABLE t (id INTEGER PRIMARY KEY)`)
	require.NoError(t, err)
	_, err = db.Execute(`INSERT INTO t (id) VALUES (1)`)
	require.NoError(t, err)
	_, err = db.Execute(`INSERT INTO t (id) VALUES (2)`)
	require.NoError(t, err)
	_, err = db.Execute(`DELETE FROM t WHERE id = 1`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	res, err := reopened.Execute(`SELECT * FROM t`)
	require.NoError(t, err)
	rows := res.(RowSet).Rows
	require.Len(t, rows, 1)
	assert.Equal(t, value.Int(2), rows[0][0])

	_, err = reopened.Execute(`INSERT INTO t (id) VALUES (1)`)
	require.NoError(t, err, "id=1 was tombstoned, not just updated, so re-inserting it must succeed")
}

func TestMultiStatementScriptReturnsLastResult(t *testing.T) {
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	res, err := db.Execute(`CREATE TABLE t (id INTEGER); INSERT INTO t (id) VALUES (1); SELECT * FROM t`)
	require.NoError(t, err)
	_, ok := res.(RowSet)
	assert.True(t, ok, "the last statement's result must be returned")
}
