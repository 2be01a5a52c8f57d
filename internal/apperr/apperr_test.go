package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	base := errors.New("sale not found")

	assert.Equal(t, CodeNotFound, CodeOf(New(CodeNotFound, base)))
	assert.Equal(t, CodeNotFound, CodeOf(fmt.Errorf("get sale: %w", New(CodeNotFound, base))))
	assert.Equal(t, CodeInternal, CodeOf(base))
	assert.True(t, errors.Is(New(CodeNotFound, base), base))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeInvalidArgument, http.StatusBadRequest},
		{CodeUnauthenticated, http.StatusUnauthorized},
		{CodePermissionDenied, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeAlreadyExists, http.StatusConflict},
		{CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestMessageHidesInternalCause(t *testing.T) {
	err := New(CodeInternal, errors.New("disk I/O error at /var/lib/sales.db"))
	assert.Equal(t, "internal error", MessageOf(err))
	assert.Equal(t, "internal error", MessageOf(errors.New("raw")))

	err = New(CodePermissionDenied, errors.New("you can only access your own sales"))
	assert.Equal(t, "you can only access your own sales", MessageOf(err))
}
