package volatility

import (
	"github.com/wyfcoding/lmm/config"
	"github.com/wyfcoding/lmm/timediscretization"
	"github.com/wyfcoding/lmm/xerrors"
)

// NewFromConfig 根据配置构建时间网格与波动率模型。
func NewFromConfig(cfg config.ModelConfig) (Model, error) {
	simulationTimes, err := GridFromConfig(cfg.SimulationTimes)
	if err != nil {
		return nil, xerrors.Wrap(err, xerrors.ErrInvalidArg, "invalid simulation time grid")
	}
	liborPeriods, err := GridFromConfig(cfg.LiborPeriods)
	if err != nil {
		return nil, xerrors.Wrap(err, xerrors.ErrInvalidArg, "invalid libor period grid")
	}

	opts := []Option{WithCalibration(cfg.IsCalibrateable())}
	switch cfg.Type {
	case "exponential":
		m, err := NewExponentialModel(simulationTimes, liborPeriods, cfg.A, cfg.B, opts...)
		if err != nil {
			return nil, err
		}
		return m, nil
	case "matrix":
		m, err := NewMatrixModel(simulationTimes, liborPeriods, cfg.Matrix, opts...)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, xerrors.New(xerrors.ErrInvalidArg, xerrors.CodeUnknownModel, "unknown volatility model type", cfg.Type, nil)
	}
}

// GridFromConfig 显式 times 优先，否则按 start/step/count 生成等距网格。
func GridFromConfig(cfg config.GridConfig) (*timediscretization.Grid, error) {
	if len(cfg.Times) > 0 {
		return timediscretization.NewGrid(cfg.Times...)
	}
	return timediscretization.NewUniformGrid(cfg.Start, cfg.Count, cfg.Step)
}
