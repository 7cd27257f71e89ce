package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[Code]int{
		CodeInvalidInput:       http.StatusBadRequest,
		CodeValidationFail:     http.StatusBadRequest,
		CodeUnknownStrategy:    http.StatusBadRequest,
		CodeUnauthorized:       http.StatusUnauthorized,
		CodeForbidden:          http.StatusForbidden,
		CodeNotFound:           http.StatusNotFound,
		CodeConflict:           http.StatusConflict,
		CodeUnbalancedSchedule: http.StatusUnprocessableEntity,
		CodeDatabase:           http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, HTTPStatus(New(code, "x")), code)
	}
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}

func TestWrappedErrorsKeepTheirCode(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("saving: %w", Database(cause, "could not save"))

	assert.True(t, Is(err, CodeDatabase))
	assert.Equal(t, CodeDatabase, GetCode(err))
	assert.Equal(t, "could not save", Message(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeUnknown, GetCode(cause))
}

func TestUnknownStrategyListsNames(t *testing.T) {
	err := UnknownStrategy("x", []string{"a", "b"})
	assert.Equal(t, "unknown strategy: x. Available strategies: [a, b]", err.Message)
	assert.Equal(t, []string{"a", "b"}, err.Fields["available"])
}

func TestValidationErrors(t *testing.T) {
	ve := &ValidationErrors{}
	assert.False(t, ve.HasErrors())

	ve.Add("start_date", "missing required field")
	ve.Add("staff_ids", "missing required field")
	err := ve.ToAppError()
	assert.Equal(t, CodeValidationFail, err.Code)
	assert.Equal(t, "validation failed: start_date - missing required field", err.Message)
	assert.Len(t, err.Fields, 2)
}
