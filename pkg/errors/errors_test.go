// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and utility functions

package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/arthur-debert/kiln/pkg/errors"
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
			name:    "config_invalid_error",
			code:    errors.ErrConfigValid,
			message: "missing target",
			wantStr: "[CONFIG_INVALID] missing target",
		},
		{
			name:    "command_failed_error",
			code:    errors.ErrCommandFailed,
			message: "compiler exited with status 1",
			wantStr: "[COMMAND_FAILED] compiler exited with status 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.NotNil(t, err.Details, "details should be initialized")
			assert.Equal(t, tt.wantStr, err.Error())
		})
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("permission denied")
	err := errors.Wrap(cause, errors.ErrFileAccess, "cannot read source")

	require.NotNil(t, err)
	assert.Equal(t, errors.ErrFileAccess, err.Code)
	assert.Equal(t, "[FILE_ACCESS] cannot read source: permission denied", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestWrapNil(t *testing.T) {
	// Wrapping nil must stay nil so call sites can wrap unconditionally.
	err := errors.Wrap(nil, errors.ErrStoreWrite, "ignored")
	assert.Nil(t, err)

	err = errors.Wrapf(nil, errors.ErrStoreWrite, "ignored %d", 1)
	assert.Nil(t, err)
}

func TestIsErrorCode(t *testing.T) {
	err := errors.Newf(errors.ErrVariantUnknown, "unknown build variant %q", "profile")

	assert.True(t, errors.IsErrorCode(err, errors.ErrVariantUnknown))
	assert.False(t, errors.IsErrorCode(err, errors.ErrCommandFailed))
	assert.False(t, errors.IsErrorCode(stderrors.New("plain"), errors.ErrVariantUnknown))
}

func TestIsErrorCodeThroughWrapping(t *testing.T) {
	inner := errors.New(errors.ErrCommandSpawn, "sh not found")
	outer := errors.Wrap(inner, errors.ErrCommandFailed, "build step failed")

	// errors.As walks the chain, so the outer code wins but the inner is reachable.
	assert.Equal(t, errors.ErrCommandFailed, errors.GetErrorCode(outer))
	assert.True(t, stderrors.Is(outer, inner))
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrCommandFailed, "link failed").
		WithDetail("command", "clang++ -o build/release/main").
		WithDetail("exitCode", 1)

	details := errors.GetErrorDetails(err)
	require.NotNil(t, details)
	assert.Equal(t, "clang++ -o build/release/main", details["command"])
	assert.Equal(t, 1, details["exitCode"])
}

func TestGetErrorCodeUnknown(t *testing.T) {
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(stderrors.New("who knows")))
	assert.Nil(t, errors.GetErrorDetails(stderrors.New("who knows")))
}
