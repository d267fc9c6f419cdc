package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{"without cause", NewAppValidationError("chunk size must not be negative"), "validation: chunk size must not be negative"},
		{"with cause", NewParsingError("read batch", fmt.Errorf("bare quote in field")), "parsing: read batch: bare quote in field"},
		{"schema mismatch names the concept", NewSchemaMismatchError("institution_id"), "schema_mismatch: no column for institution_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_UnwrapAndFields(t *testing.T) {
	cause := fmt.Errorf("permission denied")
	err := NewSourceUnavailableError("/data/CURSOS_2020.CSV", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "/data/CURSOS_2020.CSV", err.Fields["path"])

	nf := NewNotFoundError("table female_share")
	assert.Equal(t, "table female_share", nf.Fields["resource"])

	plain := &AppError{Type: ErrTypeStorage, Message: "insert"}
	plain.With("table", "enrollments").With("rows", 12)
	require.Len(t, plain.Fields, 2)
	assert.Equal(t, 12, plain.Fields["rows"])
}

func TestErrNoData_IsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("run pipeline: %w", ErrNoData)

	assert.True(t, errors.Is(wrapped, ErrNoData))
	assert.False(t, errors.Is(NewStorageError("commit", nil), ErrNoData))
	assert.Equal(t, ErrTypeNoData, TypeOf(wrapped))
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ErrorType(""), TypeOf(fmt.Errorf("plain")))
	assert.Equal(t, ErrTypeConfig, TypeOf(NewConfigError("bad yaml", nil)))
	assert.Equal(t, ErrTypeNotFound, TypeOf(fmt.Errorf("lookup: %w", NewNotFoundError("table"))))
}

func TestErrorType_HTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, ErrTypeNotFound.HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, ErrTypeValidation.HTTPStatus())
	assert.Equal(t, http.StatusServiceUnavailable, ErrTypeNoData.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, ErrTypeParsing.HTTPStatus())
}

func TestAPIError_Error(t *testing.T) {
	assert.Equal(t, "year: must be an integer", ErrValidation("year", "must be an integer").Error())
	assert.Equal(t, "table x not found", NotFoundError("table x").Error())
	assert.Equal(t, http.StatusTooManyRequests, RateLimited().Status)
}
