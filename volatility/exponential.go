package volatility

import (
	"math"

	"github.com/wyfcoding/lmm/randomvariable"
	"github.com/wyfcoding/lmm/timediscretization"
	"github.com/wyfcoding/lmm/xerrors"
)

const exponentialParameterCount = 2

// ExponentialModel 两参数指数衰减波动率模型:
//
//	sigma(i, j) = a * exp(-b * (T_j - t_i)),  T_j - t_i > 0
//	sigma(i, j) = 0,                          otherwise
//
// t_i 为模拟时间，T_j 为 LIBOR 期间起始时间。已定盘的远期利率波动率为 0。
type ExponentialModel struct {
	simulationTimes timediscretization.TimeDiscretization
	liborPeriods    timediscretization.TimeDiscretization
	a               float64 // 初始波动率水平
	b               float64 // 随剩余期限的指数衰减速率
	calibrateable   bool
}

// NewExponentialModel 创建指数波动率模型。a、b 的符号不做校验，由调用方负责。
func NewExponentialModel(simulationTimes, liborPeriods timediscretization.TimeDiscretization, a, b float64, opts ...Option) (*ExponentialModel, error) {
	if err := checkDiscretizations(simulationTimes, liborPeriods); err != nil {
		return nil, err
	}

	o := buildOptions(opts)
	return &ExponentialModel{
		simulationTimes: simulationTimes,
		liborPeriods:    liborPeriods,
		a:               a,
		b:               b,
		calibrateable:   o.calibrateable,
	}, nil
}

// Volatility 计算 sigma(timeIndex, liborIndex)。
func (m *ExponentialModel) Volatility(timeIndex, liborIndex int) (randomvariable.RandomVariable, error) {
	time, err := m.simulationTimes.Time(timeIndex)
	if err != nil {
		return randomvariable.RandomVariable{}, err
	}
	maturity, err := m.liborPeriods.Time(liborIndex)
	if err != nil {
		return randomvariable.RandomVariable{}, err
	}

	timeToMaturity := maturity - time
	if timeToMaturity <= 0 {
		return randomvariable.NewScalar(time, 0), nil
	}
	return randomvariable.NewScalar(time, m.a*math.Exp(-m.b*timeToMaturity)), nil
}

// Parameters 返回 [a, b]。
func (m *ExponentialModel) Parameters() []float64 {
	if !m.calibrateable {
		return nil
	}
	return []float64{m.a, m.b}
}

// SetParameters 以 [a, b] 覆盖参数。
func (m *ExponentialModel) SetParameters(values []float64) error {
	if !m.calibrateable {
		return nil
	}
	if len(values) != exponentialParameterCount {
		return xerrors.ParameterArity(exponentialParameterCount, len(values))
	}
	m.a = values[0]
	m.b = values[1]
	return nil
}

func (m *ExponentialModel) Clone() Model {
	clone := *m
	return &clone
}

func (m *ExponentialModel) SimulationTimes() timediscretization.TimeDiscretization {
	return m.simulationTimes
}

func (m *ExponentialModel) LiborPeriods() timediscretization.TimeDiscretization {
	return m.liborPeriods
}

func (m *ExponentialModel) IsCalibrateable() bool {
	return m.calibrateable
}
