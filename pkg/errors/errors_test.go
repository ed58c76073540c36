package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(CodeDependency, cause, "insert lead event")

	require.ErrorIs(t, err, cause)
	assert.Equal(t, CodeDependency, err.Code())
	assert.Equal(t, "DEPENDENCY_ERROR: insert lead event", err.Error())
}

func TestAsFindsTypedErrorInChain(t *testing.T) {
	inner := New(CodeValidation, "name is required")
	wrapped := Wrap(CodeInternal, inner, "ingest lead")

	typed := As(wrapped)
	require.NotNil(t, typed)
	assert.Equal(t, CodeInternal, typed.Code())

	typed = As(inner)
	require.NotNil(t, typed)
	assert.Equal(t, CodeValidation, typed.Code())
}

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	meta := MetadataFor(Code("BOGUS"))
	assert.Equal(t, http.StatusInternalServerError, meta.HTTPStatus)
}

func TestDumpCollectsChain(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(CodeDependency, cause, "count purchases")

	dump := Dump(err)
	assert.Equal(t, CodeDependency, dump.Code)
	require.Len(t, dump.Chain, 2)
	assert.Contains(t, dump.Chain[1], "boom")
}
