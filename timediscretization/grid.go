// Package timediscretization 提供有序时间网格，用于蒙特卡洛模拟时间轴与 LIBOR 期间起始时间。
package timediscretization

import (
	"math"
	"sort"

	"github.com/wyfcoding/lmm/xerrors"
)

// tolerance 时间点比较的容差。
const tolerance = 1e-12

// TimeDiscretization 定义按索引 (从 0 开始) 查询时间点的只读契约。
// 实现必须在构造后不可变，以便在多个模型与模拟路径之间共享。
type TimeDiscretization interface {
	// Time 返回索引处的时间点，越界时返回 ErrOutOfRange 类型错误。
	Time(index int) (float64, error)
	// NumberOfTimes 时间点个数。
	NumberOfTimes() int
	// NumberOfTimeSteps 时间步个数，即 NumberOfTimes()-1。
	NumberOfTimeSteps() int
	// TimeStep 返回 t[index+1]-t[index]。
	TimeStep(index int) (float64, error)
	// TimeIndex 返回与 t 重合的时间点索引，不存在时返回 -1。
	TimeIndex(t float64) int
	// TimeIndexNearestLessOrEqual 返回不大于 t 的最后一个时间点索引，t 早于首个时间点时返回 -1。
	TimeIndexNearestLessOrEqual(t float64) int
	// Times 返回全部时间点的副本。
	Times() []float64
}

// Grid 是基于严格递增切片的 TimeDiscretization 实现。
type Grid struct {
	times []float64
}

// NewGrid 由显式时间点创建网格。时间点必须非空且严格递增。
func NewGrid(times ...float64) (*Grid, error) {
	if len(times) == 0 {
		return nil, xerrors.New(xerrors.ErrInvalidArg, xerrors.CodeEmptyGrid, "empty time grid", "at least one time point is required", nil)
	}
	for i, t := range times {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, xerrors.New(xerrors.ErrInvalidArg, xerrors.CodeUnorderedGrid, "non-finite time point", "", nil).
				WithDetail("time[%d] = %v", i, t).
				WithContext("index", i)
		}
		if i > 0 && t <= times[i-1] {
			return nil, xerrors.New(xerrors.ErrInvalidArg, xerrors.CodeUnorderedGrid, "time grid not strictly increasing", "", nil).
				WithDetail("time[%d] = %v <= time[%d] = %v", i, t, i-1, times[i-1]).
				WithContext("index", i)
		}
	}

	owned := make([]float64, len(times))
	copy(owned, times)
	return &Grid{times: owned}, nil
}

// NewUniformGrid 创建 start, start+step, ..., start+count*step 共 count+1 个时间点。
func NewUniformGrid(start float64, count int, step float64) (*Grid, error) {
	if count < 0 || (count > 0 && !(step > 0)) {
		return nil, xerrors.New(xerrors.ErrInvalidArg, xerrors.CodeInvalidGridStep, "invalid uniform grid", "", nil).
			WithDetail("count=%d step=%v", count, step)
	}

	times := make([]float64, count+1)
	for i := range times {
		// 乘法而非累加，避免步长误差累积
		times[i] = start + float64(i)*step
	}
	return NewGrid(times...)
}

// Time 返回索引处的时间点。
func (g *Grid) Time(index int) (float64, error) {
	if index < 0 || index >= len(g.times) {
		return 0, xerrors.IndexOutOfRange(index, len(g.times))
	}
	return g.times[index], nil
}

func (g *Grid) NumberOfTimes() int {
	return len(g.times)
}

func (g *Grid) NumberOfTimeSteps() int {
	return len(g.times) - 1
}

// TimeStep 返回第 index 个时间步长。
func (g *Grid) TimeStep(index int) (float64, error) {
	if index < 0 || index >= len(g.times)-1 {
		return 0, xerrors.IndexOutOfRange(index, len(g.times)-1)
	}
	return g.times[index+1] - g.times[index], nil
}

// TimeIndex 二分查找 t 所在索引。
func (g *Grid) TimeIndex(t float64) int {
	i := sort.SearchFloat64s(g.times, t-tolerance)
	if i < len(g.times) && math.Abs(g.times[i]-t) <= tolerance {
		return i
	}
	return -1
}

func (g *Grid) TimeIndexNearestLessOrEqual(t float64) int {
	// 第一个严格大于 t 的位置减一
	i := sort.Search(len(g.times), func(k int) bool { return g.times[k] > t+tolerance })
	return i - 1
}

func (g *Grid) Times() []float64 {
	out := make([]float64, len(g.times))
	copy(out, g.times)
	return out
}
