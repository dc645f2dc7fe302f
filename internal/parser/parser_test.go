package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minidb/internal/value"
)

func TestParseCreateTable(t *testing.T) {
	stmts, err := Parse(`CREATE TABLE t (id INTEGER PRIMARY KEY, name VARCHAR(10) NOT NULL, tag TEXT UNIQUE);`)
	require.NoError(t, err)
	require.Len(t, stmts, 1)

	ct, ok := stmts[0].(*CreateTable)
	require.True(t, ok)
	assert.Equal(t, "t", ct.Table)
	require.Len(t, ct.Columns, 3)
	assert.Equal(t, ColDef{Name: "id", Type: ColType{Name: "INTEGER"}, PrimaryKey: true}, ct.Columns[0])
	assert.Equal(t, ColDef{Name: "name", Type: ColType{Name: "VARCHAR", Length: 10}, NotNull: true}, ct.Columns[1])
	assert.Equal(t, ColDef{Name: "tag", Type: ColType{Name: "TEXT"}, Unique: true}, ct.Columns[2])
}

func TestParseCreateIndex(t *testing.T) {
	stmts, err := Parse(`CREATE INDEX idx_t_id ON t(id);`)
	require.NoError(t, err)
	ci := stmts[0].(*CreateIndex)
	assert.Equal(t, "idx_t_id", ci.IndexName)
	assert.Equal(t, "t", ci.Table)
	assert.Equal(t, "id", ci.Column)
}

func TestParseInsert(t *testing.T) {
	stmts, err := Parse(`INSERT INTO t (id,name) VALUES (1,'a');`)
	require.NoError(t, err)
	ins := stmts[0].(*Insert)
	assert.Equal(t, "t", ins.Table)
	assert.Equal(t, []string{"id", "name"}, ins.Columns)
	assert.Equal(t, []value.Value{value.Int(1), value.Str("a")}, ins.Values)
}

func TestParseInsertArityMismatch(t *testing.T) {
	_, err := Parse(`INSERT INTO t (id,name) VALUES (1);`)
	require.Error(t, err)
}

func TestParseSelectColumnsWithJoinAndWhere(t *testing.T) {
	stmts, err := Parse(`SELECT t.name, o.amt FROM t JOIN o ON t.id=o.tid WHERE o.amt=20;`)
	require.NoError(t, err)
	sel := stmts[0].(*Select)
	assert.False(t, sel.Star)
	assert.Equal(t, []ColRef{{Table: "t", Col: "name"}, {Table: "o", Col: "amt"}}, sel.Columns)
	assert.Equal(t, "t", sel.From)
	require.Len(t, sel.Joins, 1)
	assert.Equal(t, JoinClause{Table: "o", Left: ColRef{Table: "t", Col: "id"}, Right: ColRef{Table: "o", Col: "tid"}}, sel.Joins[0])
	require.Len(t, sel.Where, 1)
	assert.Equal(t, Eq{Col: ColRef{Table: "o", Col: "amt"}, Value: value.Int(20)}, sel.Where[0])
}

func TestParseSelectStar(t *testing.T) {
	stmts, err := Parse(`SELECT * FROM t WHERE id=2;`)
	require.NoError(t, err)
	sel := stmts[0].(*Select)
	assert.True(t, sel.Star)
}

func TestParseUpdate(t *testing.T) {
	stmts, err := Parse(`UPDATE t SET name='A', tag=NULL WHERE id=1 AND active=TRUE;`)
	require.NoError(t, err)
	upd := stmts[0].(*Update)
	assert.Equal(t, "t", upd.Table)
	assert.Equal(t, []Assign{{Column: "name", Value: value.Str("A")}, {Column: "tag", Value: value.Null}}, upd.Assigns)
	require.Len(t, upd.Where, 2)
}

func TestParseDeleteNoWhere(t *testing.T) {
	stmts, err := Parse(`DELETE FROM t;`)
	require.NoError(t, err)
	del := stmts[0].(*Delete)
	assert.Equal(t, "t", del.Table)
	assert.Nil(t, del.Where)
}

func TestParseMultiStatementScript(t *testing.T) {
	stmts, err := Parse(`CREATE TABLE t (id INTEGER); INSERT INTO t (id) VALUES (1); SELECT * FROM t`)
	require.NoError(t, err)
	require.Len(t, stmts, 3)
}

func TestParseTrailingGarbageIsError(t *testing.T) {
	_, err := Parse(`SELECT * FROM t; GARBAGE`)
	require.Error(t, err)
}

func TestParseErrorIncludesPosition(t *testing.T) {
	_, err := Parse(`CREATE TABLE (id INTEGER);`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse error at 1:14")
}
