package volatility

import (
	"github.com/wyfcoding/lmm/randomvariable"
	"github.com/wyfcoding/lmm/timediscretization"
	"github.com/wyfcoding/lmm/xerrors"
)

// MatrixModel 由给定矩阵直接读取波动率，矩阵行对应模拟时间、列对应 LIBOR 期间。
// 可校准时参数向量为按行展开的矩阵。
type MatrixModel struct {
	simulationTimes timediscretization.TimeDiscretization
	liborPeriods    timediscretization.TimeDiscretization
	values          []float64 // 行优先存储
	rows            int
	cols            int
	calibrateable   bool
}

// NewMatrixModel 创建矩阵波动率模型，矩阵会被复制。
func NewMatrixModel(simulationTimes, liborPeriods timediscretization.TimeDiscretization, volatility [][]float64, opts ...Option) (*MatrixModel, error) {
	if err := checkDiscretizations(simulationTimes, liborPeriods); err != nil {
		return nil, err
	}

	rows, cols := simulationTimes.NumberOfTimes(), liborPeriods.NumberOfTimes()
	if len(volatility) != rows {
		return nil, xerrors.New(xerrors.ErrInvalidArg, xerrors.CodeMatrixShape, "volatility matrix shape mismatch", "", nil).
			WithDetail("expected %d rows, got %d", rows, len(volatility))
	}

	values := make([]float64, 0, rows*cols)
	for i, row := range volatility {
		if len(row) != cols {
			return nil, xerrors.New(xerrors.ErrInvalidArg, xerrors.CodeMatrixShape, "volatility matrix shape mismatch", "", nil).
				WithDetail("row %d: expected %d columns, got %d", i, cols, len(row)).
				WithContext("row", i)
		}
		values = append(values, row...)
	}

	o := buildOptions(opts)
	return &MatrixModel{
		simulationTimes: simulationTimes,
		liborPeriods:    liborPeriods,
		values:          values,
		rows:            rows,
		cols:            cols,
		calibrateable:   o.calibrateable,
	}, nil
}

func (m *MatrixModel) Volatility(timeIndex, liborIndex int) (randomvariable.RandomVariable, error) {
	time, err := m.simulationTimes.Time(timeIndex)
	if err != nil {
		return randomvariable.RandomVariable{}, err
	}
	if _, err := m.liborPeriods.Time(liborIndex); err != nil {
		return randomvariable.RandomVariable{}, err
	}
	return randomvariable.NewScalar(time, m.values[timeIndex*m.cols+liborIndex]), nil
}

func (m *MatrixModel) Parameters() []float64 {
	if !m.calibrateable {
		return nil
	}
	out := make([]float64, len(m.values))
	copy(out, m.values)
	return out
}

func (m *MatrixModel) SetParameters(values []float64) error {
	if !m.calibrateable {
		return nil
	}
	if len(values) != len(m.values) {
		return xerrors.ParameterArity(len(m.values), len(values))
	}
	copy(m.values, values)
	return nil
}

// Clone 复制矩阵数据，时间网格共享。
func (m *MatrixModel) Clone() Model {
	clone := *m
	clone.values = make([]float64, len(m.values))
	copy(clone.values, m.values)
	return &clone
}

func (m *MatrixModel) SimulationTimes() timediscretization.TimeDiscretization {
	return m.simulationTimes
}

func (m *MatrixModel) LiborPeriods() timediscretization.TimeDiscretization {
	return m.liborPeriods
}

func (m *MatrixModel) IsCalibrateable() bool {
	return m.calibrateable
}
