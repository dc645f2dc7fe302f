package dberrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalogErrorMessageVariesWithFieldsSet(t *testing.T) {
	assert.Contains(t, (&CatalogError{Message: "unknown table", Table: "t"}).Error(), "table=t")
	assert.Contains(t, (&CatalogError{Message: "unknown column", Table: "t", Column: "c"}).Error(), "column=c")
	assert.NotContains(t, (&CatalogError{Message: "bad request"}).Error(), "table=")
}

func TestConstraintErrorOmitsValueWhenEmpty(t *testing.T) {
	withValue := &ConstraintError{Kind: ConstraintUnique, Table: "t", Column: "c", Value: "7"}
	assert.Contains(t, withValue.Error(), "value=7")

	withoutValue := &ConstraintError{Kind: ConstraintNotNull, Table: "t", Column: "c"}
	assert.NotContains(t, withoutValue.Error(), "value=")
}

func TestIOErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("disk full")
	ioErr := &IOError{Op: "write", Path: "/tmp/x", Err: cause}

	assert.ErrorIs(t, ioErr, cause)
	assert.Contains(t, ioErr.Error(), "disk full")
}

func TestNotImplementedErrorNamesFeature(t *testing.T) {
	err := &NotImplementedError{Feature: "ALTER TABLE"}
	assert.Equal(t, "not implemented: ALTER TABLE", err.Error())
}
