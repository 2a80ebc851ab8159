package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_WrappedSentinel(t *testing.T) {
	err := fmt.Errorf("create request: %w", ErrRequestPending)

	assert.True(t, errors.Is(err, ErrRequestPending))
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, "request_pending", CodeOf(err))
	assert.Equal(t, http.StatusConflict, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{NotFound("course_not_found", "course %s not found", "c1"), http.StatusNotFound},
		{ErrInvalidReorder, http.StatusBadRequest},
		{ErrInvalidSignature, http.StatusBadRequest},
		{External("gateway_error", errors.New("timeout")), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
		{Internal(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.err), tc.err.Error())
	}
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "course c1 not found", NotFound("x", "course %s not found", "c1").Error())
	assert.Equal(t, "code_only", New(KindConflict, "code_only", nil).Error())
	assert.Equal(t, "internal_error", CodeOf(errors.New("plain")))
}
