package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/wyfcoding/lmm/logging"
	"github.com/wyfcoding/lmm/timediscretization"
	"github.com/wyfcoding/lmm/volatility"
)

func TestRender(t *testing.T) {
	simulation, err := timediscretization.NewGrid(0, 1, 2)
	require.NoError(t, err)
	libor, err := timediscretization.NewGrid(0, 1, 2, 3)
	require.NoError(t, err)
	model, err := volatility.NewExponentialModel(simulation, libor, 0.2, 0.1)
	require.NoError(t, err)

	dense := mat.NewDense(3, 4, []float64{
		0, 0.180967, 0.163746, 0.148164,
		0, 0, 0.180967, 0.163746,
		0, 0, 0, 0.180967,
	})

	var buf bytes.Buffer
	require.NoError(t, render(&buf, model, dense, 4))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{`t\T`, "0", "1", "2", "3"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"0", "0.0000", "0.1810", "0.1637", "0.1482"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"2", "0.0000", "0.0000", "0.0000", "0.1810"}, strings.Fields(lines[3]))
}

func TestEvaluateLogsDurationOnFailure(t *testing.T) {
	simulation, err := timediscretization.NewGrid(0, 1)
	require.NoError(t, err)
	model, err := volatility.NewExponentialModel(simulation, simulation, 0.2, 0.1)
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := &logging.Logger{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = evaluate(ctx, logger, volatility.NewEvaluator(volatility.WithLogger(slog.New(slog.DiscardHandler))), model, "exponential")
	require.Error(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "volatility matrix finished", record["msg"])
	assert.Equal(t, "exponential", record["type"])
	assert.Contains(t, record, "duration")
}
