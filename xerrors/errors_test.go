package xerrors

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

func TestIndexOutOfRange(t *testing.T) {
	err := IndexOutOfRange(7, 3)

	assert.Equal(t, ErrOutOfRange, err.Type)
	assert.Equal(t, CodeIndexOutOfRange, err.Code)
	assert.Equal(t, 7, err.Context["index"])
	assert.Equal(t, 3, err.Context["length"])
	assert.Contains(t, err.Error(), "index 7 not in [0, 3)")
	assert.NotEmpty(t, err.Stack)
	assert.Equal(t, codes.OutOfRange, err.GRPCCode())
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus())
}

func TestWrapKeepsType(t *testing.T) {
	inner := IndexOutOfRange(1, 1)
	wrapped := Wrap(inner, ErrInternal, "time lookup failed")

	require.NotNil(t, wrapped)
	assert.Equal(t, ErrOutOfRange, wrapped.Type)
	assert.Same(t, inner, wrapped.Unwrap())
	assert.True(t, IsType(wrapped, ErrOutOfRange))
	assert.False(t, IsType(wrapped, ErrInvalidArg))

	assert.Nil(t, Wrap(nil, ErrInternal, "noop"))
}

func TestIsTypeThroughFmt(t *testing.T) {
	err := fmt.Errorf("calibration step: %w", ParameterArity(2, 3))

	assert.True(t, IsType(err, ErrInvalidArg))
	e, ok := FromError(err)
	require.True(t, ok)
	assert.Equal(t, CodeParameterArity, e.Code)
	assert.Equal(t, codes.InvalidArgument, e.ToGRPCStatus().Code())
}

func TestIsTypeFollowsCause(t *testing.T) {
	err := EvaluationAborted(context.Canceled)

	assert.True(t, IsType(err, ErrCanceled))
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsType(context.Canceled, ErrCanceled))
}

func TestFreshInstances(t *testing.T) {
	a := NilDiscretization("simulation")
	b := NilDiscretization("libor")

	assert.NotSame(t, a, b)
	assert.Equal(t, "simulation", a.Context["discretization"])
	assert.Equal(t, "libor", b.Context["discretization"])
}

func TestErrorTypeString(t *testing.T) {
	assert.Equal(t, "OutOfRange", ErrOutOfRange.String())
	assert.Equal(t, "Unknown", ErrorType(99).String())
}
