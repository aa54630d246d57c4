package timediscretization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/lmm/xerrors"
)

func TestNewGrid(t *testing.T) {
	g, err := NewGrid(0.0, 0.5, 1.0, 2.0)
	require.NoError(t, err)

	assert.Equal(t, 4, g.NumberOfTimes())
	assert.Equal(t, 3, g.NumberOfTimeSteps())

	v, err := g.Time(2)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	step, err := g.TimeStep(2)
	require.NoError(t, err)
	assert.Equal(t, 1.0, step)
}

func TestNewGridRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		times []float64
	}{
		{"empty", nil},
		{"duplicate", []float64{0, 1, 1}},
		{"decreasing", []float64{0, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGrid(tt.times...)
			assert.Nil(t, g)
			assert.True(t, xerrors.IsType(err, xerrors.ErrInvalidArg), "got %v", err)
		})
	}
}

func TestGridOwnsItsTimes(t *testing.T) {
	times := []float64{0, 1, 2}
	g, err := NewGrid(times...)
	require.NoError(t, err)

	times[0] = 42
	got := g.Times()
	got[1] = 42

	v0, _ := g.Time(0)
	v1, _ := g.Time(1)
	assert.Equal(t, 0.0, v0)
	assert.Equal(t, 1.0, v1)
}

func TestTimeOutOfRange(t *testing.T) {
	g, err := NewGrid(0, 1, 2)
	require.NoError(t, err)

	for _, idx := range []int{-1, 3, 100} {
		_, err := g.Time(idx)
		assert.True(t, xerrors.IsType(err, xerrors.ErrOutOfRange), "index %d", idx)
	}

	_, err = g.TimeStep(2)
	assert.True(t, xerrors.IsType(err, xerrors.ErrOutOfRange))
}

func TestNewUniformGrid(t *testing.T) {
	g, err := NewUniformGrid(0, 20, 0.5)
	require.NoError(t, err)

	assert.Equal(t, 21, g.NumberOfTimes())
	last, _ := g.Time(20)
	assert.Equal(t, 10.0, last)

	single, err := NewUniformGrid(1.5, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5}, single.Times())

	_, err = NewUniformGrid(0, 3, 0)
	assert.True(t, xerrors.IsType(err, xerrors.ErrInvalidArg))
	_, err = NewUniformGrid(0, -1, 1)
	assert.True(t, xerrors.IsType(err, xerrors.ErrInvalidArg))
}

func TestTimeIndex(t *testing.T) {
	g, err := NewGrid(0, 0.25, 0.5, 1.0)
	require.NoError(t, err)

	assert.Equal(t, 0, g.TimeIndex(0))
	assert.Equal(t, 2, g.TimeIndex(0.5))
	assert.Equal(t, 3, g.TimeIndex(1.0))
	assert.Equal(t, -1, g.TimeIndex(0.3))
	assert.Equal(t, -1, g.TimeIndex(2))

	assert.Equal(t, -1, g.TimeIndexNearestLessOrEqual(-0.1))
	assert.Equal(t, 0, g.TimeIndexNearestLessOrEqual(0))
	assert.Equal(t, 1, g.TimeIndexNearestLessOrEqual(0.3))
	assert.Equal(t, 2, g.TimeIndexNearestLessOrEqual(0.5))
	assert.Equal(t, 3, g.TimeIndexNearestLessOrEqual(7))
}

func TestGridImplementsTimeDiscretization(t *testing.T) {
	var _ TimeDiscretization = (*Grid)(nil)
}
