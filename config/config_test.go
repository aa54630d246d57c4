package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const exponentialTOML = `
version = "test"

[log]
level = "debug"

[model]
type = "exponential"
a = 0.2
b = 0.1

[model.simulation_times]
times = [0.0, 1.0, 2.0]

[model.libor_periods]
start = 0.0
step = 0.5
count = 6

[evaluation]
concurrency = 4
`

func TestLoadExponential(t *testing.T) {
	var cfg Config
	require.NoError(t, Load(writeConfig(t, exponentialTOML), &cfg))

	assert.Equal(t, "test", cfg.Version)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "stdout", cfg.Log.Output)
	assert.Equal(t, "exponential", cfg.Model.Type)
	assert.Equal(t, 0.2, cfg.Model.A)
	assert.Equal(t, 0.1, cfg.Model.B)
	assert.True(t, cfg.Model.IsCalibrateable())
	assert.Equal(t, []float64{0, 1, 2}, cfg.Model.SimulationTimes.Times)
	assert.Equal(t, 0.5, cfg.Model.LiborPeriods.Step)
	assert.Equal(t, 6, cfg.Model.LiborPeriods.Count)
	assert.Equal(t, 4, cfg.Evaluation.Concurrency)
	assert.Equal(t, int32(6), cfg.Evaluation.Precision)
	assert.Equal(t, "9090", cfg.Metrics.Port)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, "volmatrix", cfg.Tracing.ServiceName)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRatio)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LMM_MODEL_A", "0.35")

	var cfg Config
	require.NoError(t, Load(writeConfig(t, exponentialTOML), &cfg))
	assert.Equal(t, 0.35, cfg.Model.A)
}

func TestLoadMatrix(t *testing.T) {
	body := `
[model]
type = "matrix"
calibrateable = false
matrix = [[0.1, 0.2], [0.0, 0.3]]

[model.simulation_times]
times = [0.0, 1.0]

[model.libor_periods]
times = [0.0, 1.0]
`
	var cfg Config
	require.NoError(t, Load(writeConfig(t, body), &cfg))

	assert.Equal(t, [][]float64{{0.1, 0.2}, {0.0, 0.3}}, cfg.Model.Matrix)
	assert.False(t, cfg.Model.IsCalibrateable())
}

func TestLoadValidation(t *testing.T) {
	tests := map[string]string{
		"missing model type": `
[model]
a = 0.2
`,
		"unknown model type": `
[model]
type = "sabr"
`,
		"matrix without values": `
[model]
type = "matrix"
`,
		"negative step": `
[model]
type = "exponential"
[model.libor_periods]
step = -1.0
`,
		"tracing without endpoint": `
[tracing]
enabled = true
[model]
type = "exponential"
`,
		"file output without path": `
[log]
output = "file"
[model]
type = "exponential"
`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			var cfg Config
			err := Load(writeConfig(t, body), &cfg)
			assert.ErrorContains(t, err, "config validation failed")
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	var cfg Config
	err := Load(filepath.Join(t.TempDir(), "absent.toml"), &cfg)
	assert.ErrorContains(t, err, "read config error")
}

func TestLogConfigConversion(t *testing.T) {
	lc := LogConfig{Level: "warn", Format: "text", Output: "both", File: "/tmp/lmm.log", MaxSize: 10}
	got := lc.Logging("volmatrix", "main")

	assert.Equal(t, "volmatrix", got.Service)
	assert.Equal(t, "main", got.Module)
	assert.Equal(t, "warn", got.Level)
	assert.Equal(t, "both", got.Output)
	assert.Equal(t, 10, got.MaxSize)
}

func TestRegisterReloadHookIgnoresNil(t *testing.T) {
	before := len(onReload)
	RegisterReloadHook(nil)
	RegisterReloadHook(func(*Config) {})
	assert.Len(t, onReload, before+1)
}

func TestLoadWithoutWatchKeepsSnapshot(t *testing.T) {
	path := writeConfig(t, exponentialTOML)

	var cfg Config
	require.NoError(t, Load(path, &cfg, WithWatch(false)))
	require.Equal(t, 0.2, cfg.Model.A)

	updated := strings.Replace(exponentialTOML, "a = 0.2", "a = 0.9", 1)
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o600))

	// 超过热更新的去抖时间
	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, 0.2, cfg.Model.A)
	assert.Equal(t, "exponential", cfg.Model.Type)
}
