// Package volatility 实现 LIBOR 市场模型 (LMM) 中远期利率的瞬时波动率模型族。
//
// 所有模型共享同一能力集：按 (模拟时间索引, LIBOR 期间索引) 求波动率、
// 以参数向量形式暴露/接收校准参数、以及克隆。
// 模型不做内部加锁：Volatility 可被多条模拟路径并发调用，
// 但调用方必须保证 SetParameters 不与读并发执行；推荐使用 WithParameters
// 或 Clone 生成独立快照后再交给并发模拟批次。
package volatility

import (
	"reflect"

	"github.com/wyfcoding/lmm/randomvariable"
	"github.com/wyfcoding/lmm/timediscretization"
	"github.com/wyfcoding/lmm/xerrors"
)

// Model 远期利率波动率模型。
type Model interface {
	// Volatility 返回第 liborIndex 个远期利率在第 timeIndex 个模拟时间点的瞬时波动率，
	// 结果的过滤时间为该模拟时间点。索引越界时透传时间网格返回的错误。
	Volatility(timeIndex, liborIndex int) (randomvariable.RandomVariable, error)
	// Parameters 返回校准参数快照；不可校准时返回 nil。
	Parameters() []float64
	// SetParameters 覆盖校准参数；不可校准时为空操作。
	SetParameters(values []float64) error
	// Clone 返回共享时间网格、复制标量状态的独立实例。
	Clone() Model

	SimulationTimes() timediscretization.TimeDiscretization
	LiborPeriods() timediscretization.TimeDiscretization
}

// WithParameters 在克隆上应用参数并返回新快照，原模型保持不变。
// 用于校准循环与并发模拟交替进行的场景。
func WithParameters(m Model, values []float64) (Model, error) {
	if m == nil {
		return nil, xerrors.InvalidArg("volatility model is nil")
	}
	snapshot := m.Clone()
	if err := snapshot.SetParameters(values); err != nil {
		return nil, err
	}
	return snapshot, nil
}

type modelOptions struct {
	calibrateable bool
}

// Option 定义模型构造选项。
type Option func(*modelOptions)

// WithCalibration 设置参数是否对校准器开放，默认开放。构造后不可更改。
func WithCalibration(enabled bool) Option {
	return func(o *modelOptions) {
		o.calibrateable = enabled
	}
}

func buildOptions(opts []Option) modelOptions {
	o := modelOptions{calibrateable: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// checkDiscretizations 校验两个时间网格均已提供，包括带类型的 nil 指针。
func checkDiscretizations(simulationTimes, liborPeriods timediscretization.TimeDiscretization) error {
	if isNil(simulationTimes) {
		return xerrors.NilDiscretization("simulation")
	}
	if isNil(liborPeriods) {
		return xerrors.NilDiscretization("libor")
	}
	return nil
}

func isNil(td timediscretization.TimeDiscretization) bool {
	if td == nil {
		return true
	}
	v := reflect.ValueOf(td)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
