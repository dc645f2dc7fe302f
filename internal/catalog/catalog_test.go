package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTablePersistsAndReopens(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(dir, true)
	require.NoError(t, err)

	cols := []*Column{
		{Name: "id", Type: TypeInteger, PrimaryKey: true},
		{Name: "name", Type: TypeText, NotNull: true},
	}
	_, err = c.CreateTable("t", cols)
	require.NoError(t, err)

	reopened, err := Open(dir, true)
	require.NoError(t, err)
	tbl, ok := reopened.LookupTable("t")
	require.True(t, ok)
	require.Len(t, tbl.Columns, 2)
	assert.True(t, tbl.Columns[0].NotNull, "PRIMARY KEY must imply NOT NULL")
	assert.True(t, tbl.Columns[0].Unique, "PRIMARY KEY must imply UNIQUE")
}

func TestCreateTableRejectsDuplicateName(t *testing.T) {
	c, err := Open(t.TempDir(), true)
	require.NoError(t, err)
	cols := []*Column{{Name: "id", Type: TypeInteger}}
	_, err = c.CreateTable("t", cols)
	require.NoError(t, err)

	_, err = c.CreateTable("t", cols)
	require.Error(t, err)
}

func TestCreateTableRejectsMultiplePrimaryKeys(t *testing.T) {
	c, err := Open(t.TempDir(), true)
	require.NoError(t, err)
	cols := []*Column{
		{Name: "a", Type: TypeInteger, PrimaryKey: true},
		{Name: "b", Type: TypeInteger, PrimaryKey: true},
	}
	_, err = c.CreateTable("t", cols)
	require.Error(t, err)
}

func TestCreateTableRejectsNegativeVarcharLength(t *testing.T) {
	c, err := Open(t.TempDir(), true)
	require.NoError(t, err)
	cols := []*Column{{Name: "a", Type: TypeVarchar, VarcharLength: -1}}
	_, err = c.CreateTable("t", cols)
	require.Error(t, err)
}

func TestCreateIndexValidatesTableAndColumn(t *testing.T) {
	c, err := Open(t.TempDir(), true)
	require.NoError(t, err)
	_, err = c.CreateTable("t", []*Column{{Name: "id", Type: TypeInteger}})
	require.NoError(t, err)

	_, err = c.CreateIndex("idx_missing_table", "nope", "id")
	require.Error(t, err)

	_, err = c.CreateIndex("idx_missing_col", "t", "nope")
	require.Error(t, err)

	idx, err := c.CreateIndex("idx_t_id", "t", "id")
	require.NoError(t, err)
	assert.Equal(t, "t", idx.Table)

	_, err = c.CreateIndex("idx_t_id", "t", "id")
	require.Error(t, err, "index names are globally unique")
}

func TestBumpNextRidIsMonotonicAndPersists(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(dir, true)
	require.NoError(t, err)
	_, err = c.CreateTable("t", []*Column{{Name: "id", Type: TypeInteger}})
	require.NoError(t, err)

	first, err := c.BumpNextRid("t")
	require.NoError(t, err)
	second, err := c.BumpNextRid("t")
	require.NoError(t, err)
	assert.Equal(t, first+1, second)

	reopened, err := Open(dir, true)
	require.NoError(t, err)
	tbl, _ := reopened.LookupTable("t")
	assert.Equal(t, second+1, tbl.NextRid)
}
