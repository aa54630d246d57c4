// Package randomvariable 定义带过滤时间 (filtration time) 的随机变量值对象。
// 确定性变量只持有一个标量，路径型变量持有每条模拟路径上的实现值。
package randomvariable

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// RandomVariable 是不可变的值类型，所有方法返回新实例。
type RandomVariable struct {
	realizations []float64
	time         float64
	value        float64
}

// NewScalar 创建在 time 时刻可测的确定性随机变量。
func NewScalar(time, value float64) RandomVariable {
	return RandomVariable{time: time, value: value}
}

// New 创建路径型随机变量，realizations 会被复制。空切片等价于取值为 0 的确定性变量。
func New(time float64, realizations []float64) RandomVariable {
	if len(realizations) == 0 {
		return NewScalar(time, 0)
	}
	owned := make([]float64, len(realizations))
	copy(owned, realizations)
	return RandomVariable{time: time, realizations: owned}
}

// FiltrationTime 返回该变量可测的模拟时间点。
func (r RandomVariable) FiltrationTime() float64 {
	return r.time
}

func (r RandomVariable) IsDeterministic() bool {
	return r.realizations == nil
}

// Size 路径数，确定性变量为 1。
func (r RandomVariable) Size() int {
	if r.IsDeterministic() {
		return 1
	}
	return len(r.realizations)
}

// Get 返回第 path 条路径上的取值，确定性变量对任意路径返回同一标量。
func (r RandomVariable) Get(path int) float64 {
	if r.IsDeterministic() {
		return r.value
	}
	return r.realizations[path]
}

// Average 路径均值。
func (r RandomVariable) Average() float64 {
	if r.IsDeterministic() {
		return r.value
	}
	return floats.Sum(r.realizations) / float64(len(r.realizations))
}

// Value 确定性变量的标量值；路径型变量返回均值。
func (r RandomVariable) Value() float64 {
	return r.Average()
}

// Mult 按常数缩放。
func (r RandomVariable) Mult(factor float64) RandomVariable {
	if r.IsDeterministic() {
		return NewScalar(r.time, r.value*factor)
	}
	scaled := New(r.time, r.realizations)
	floats.Scale(factor, scaled.realizations)
	return scaled
}

func (r RandomVariable) String() string {
	if r.IsDeterministic() {
		return fmt.Sprintf("RandomVariable{t=%g, value=%g}", r.time, r.value)
	}
	return fmt.Sprintf("RandomVariable{t=%g, paths=%d, mean=%g}", r.time, len(r.realizations), r.Average())
}
