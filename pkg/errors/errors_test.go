package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/arthur-debert/dotseed/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "not_found_error",
			code:    errors.ErrNotFound,
			message: "manifest entry not found",
			wantStr: "[NOT_FOUND] manifest entry not found",
		},
		{
			name:    "io_error",
			code:    errors.ErrIO,
			message: "cannot write destination",
			wantStr: "[IO] cannot write destination",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.NotNil(t, err.Details)
			assert.Equal(t, tt.wantStr, err.Error())
		})
	}
}

func TestNewf(t *testing.T) {
	err := errors.Newf(errors.ErrInvalidInput, "line %d: %q is absolute", 3, "/etc/passwd")
	assert.Equal(t, `line 3: "/etc/passwd" is absolute`, err.Message)
	assert.Equal(t, errors.ErrInvalidInput, err.Code)
}

func TestWrap(t *testing.T) {
	t.Run("nil error stays nil", func(t *testing.T) {
		assert.Nil(t, errors.Wrap(nil, errors.ErrIO, "ignored"))
		assert.Nil(t, errors.Wrapf(nil, errors.ErrIO, "ignored %s", "x"))
	})

	t.Run("wrapped error is reachable", func(t *testing.T) {
		base := stderrors.New("permission denied")
		err := errors.Wrapf(base, errors.ErrIO, "cannot copy %s", "dot-profile")

		assert.Equal(t, "[IO] cannot copy dot-profile: permission denied", err.Error())
		assert.True(t, stderrors.Is(err, base))
		assert.Equal(t, base, stderrors.Unwrap(err))
	})
}

func TestIs(t *testing.T) {
	err := errors.New(errors.ErrNotFound, "missing")
	assert.True(t, stderrors.Is(err, errors.New(errors.ErrNotFound, "other message")))
	assert.False(t, stderrors.Is(err, errors.New(errors.ErrIO, "missing")))
}

func TestDetails(t *testing.T) {
	err := errors.New(errors.ErrIO, "write failed").
		WithDetail("path", "/home/u/.profile").
		WithDetails(map[string]interface{}{"step": "deploy-profile", "attempt": 1})

	details := errors.GetErrorDetails(err)
	require.NotNil(t, details)
	assert.Equal(t, "/home/u/.profile", details["path"])
	assert.Equal(t, "deploy-profile", details["step"])
	assert.Equal(t, 1, details["attempt"])

	assert.Nil(t, errors.GetErrorDetails(stderrors.New("plain")))
}

func TestErrorCodeLookup(t *testing.T) {
	inner := errors.New(errors.ErrNotFound, "entry missing")
	outer := fmt.Errorf("build-archive: %w", inner)

	assert.Equal(t, errors.ErrNotFound, errors.GetErrorCode(outer))
	assert.True(t, errors.IsErrorCode(outer, errors.ErrNotFound))
	assert.False(t, errors.IsErrorCode(outer, errors.ErrIO))

	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(stderrors.New("plain")))
	assert.False(t, errors.IsErrorCode(nil, errors.ErrIO))
}

func TestIsErrorCodeWalksNestedErrors(t *testing.T) {
	inner := errors.New(errors.ErrIO, "disk full")
	outer := errors.Wrap(inner, errors.ErrConfigLoad, "load config")

	assert.True(t, errors.IsErrorCode(outer, errors.ErrConfigLoad))
	assert.True(t, errors.IsErrorCode(outer, errors.ErrIO))
	assert.Equal(t, errors.ErrConfigLoad, errors.GetErrorCode(outer))
}
