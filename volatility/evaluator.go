package volatility

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sourcegraph/conc/pool"
	"gonum.org/v1/gonum/mat"

	"github.com/wyfcoding/lmm/metrics"
	"github.com/wyfcoding/lmm/tracing"
	"github.com/wyfcoding/lmm/xerrors"
)

// maxObservedParameters 参数向量超过该长度时 (如矩阵模型) 只上报参数个数。
const maxObservedParameters = 8

// Evaluator 在模型快照上并发计算完整的波动率矩阵 sigma(i, j)。
// 每次求值先 Clone 模型，求值期间原模型上的 SetParameters 不会影响结果。
type Evaluator struct {
	options *evaluatorOptions
	metrics *evaluatorMetrics
}

type evaluatorMetrics struct {
	evaluations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	parameters  *prometheus.GaugeVec
}

type evaluatorOptions struct {
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	Name        string
	Concurrency int
}

// EvaluatorOption 定义求值器配置选项。
type EvaluatorOption func(*evaluatorOptions)

// WithName 设置求值器名称，作为指标与日志的标签。
func WithName(name string) EvaluatorOption {
	return func(o *evaluatorOptions) {
		o.Name = name
	}
}

// WithConcurrency 设置并发求值的最大协程数，<=0 时使用 GOMAXPROCS。
func WithConcurrency(n int) EvaluatorOption {
	return func(o *evaluatorOptions) {
		o.Concurrency = n
	}
}

// WithLogger 注入日志记录器。
func WithLogger(logger *slog.Logger) EvaluatorOption {
	return func(o *evaluatorOptions) {
		o.Logger = logger
	}
}

// WithMetrics 注入指标采集器。同一 Metrics 只能挂载一个求值器。
func WithMetrics(m *metrics.Metrics) EvaluatorOption {
	return func(o *evaluatorOptions) {
		o.Metrics = m
	}
}

// NewEvaluator 创建求值器。
func NewEvaluator(opts ...EvaluatorOption) *Evaluator {
	options := &evaluatorOptions{
		Name:   "default",
		Logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.Concurrency <= 0 {
		options.Concurrency = runtime.GOMAXPROCS(0)
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	e := &Evaluator{options: options}
	if options.Metrics != nil {
		e.metrics = &evaluatorMetrics{
			evaluations: options.Metrics.NewCounterVec(prometheus.CounterOpts{
				Namespace: metrics.Namespace,
				Name:      "volatility_matrix_evaluations_total",
				Help:      "Total number of volatility matrix evaluations",
			}, []string{"evaluator", "model", "status"}),
			duration: options.Metrics.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: metrics.Namespace,
				Name:      "volatility_matrix_duration_seconds",
				Help:      "Volatility matrix evaluation latency in seconds",
				Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
			}, []string{"evaluator", "model"}),
			parameters: options.Metrics.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: metrics.Namespace,
				Name:      "volatility_model_parameter",
				Help:      "Calibration parameters of the last evaluated volatility model",
			}, []string{"evaluator", "model", "index"}),
		}
	}
	return e
}

// Matrix 返回 NumberOfTimes(simulation) x NumberOfTimes(libor) 的波动率矩阵。
// 按行并发求值，任一单元格失败或 ctx 取消时返回首个错误。
func (e *Evaluator) Matrix(ctx context.Context, model Model) (*mat.Dense, error) {
	if model == nil {
		return nil, xerrors.InvalidArg("volatility model is nil")
	}

	snapshot := model.Clone()
	name := modelName(snapshot)
	rows := snapshot.SimulationTimes().NumberOfTimes()
	cols := snapshot.LiborPeriods().NumberOfTimes()

	ctx, span := tracing.StartSpan(ctx, "volatility.Matrix")
	defer span.End()
	tracing.AddTag(ctx, "lmm.evaluator", e.options.Name)
	tracing.AddTag(ctx, "lmm.model", name)
	tracing.AddTag(ctx, "lmm.rows", rows)
	tracing.AddTag(ctx, "lmm.cols", cols)
	parameters := snapshot.Parameters()
	tracing.AddTag(ctx, "lmm.parameter_count", len(parameters))
	if len(parameters) <= maxObservedParameters {
		tracing.AddTag(ctx, "lmm.parameters", parameters)
	}

	if rows == 0 || cols == 0 {
		err := xerrors.New(xerrors.ErrInvalidArg, xerrors.CodeMatrixShape, "empty volatility matrix", "", nil).
			WithDetail("rows=%d cols=%d", rows, cols)
		tracing.SetError(ctx, err)
		return nil, err
	}

	start := time.Now()
	dense := mat.NewDense(rows, cols, nil)

	p := pool.New().
		WithMaxGoroutines(e.options.Concurrency).
		WithContext(ctx).
		WithFirstError().
		WithCancelOnError()

	for i := range rows {
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return xerrors.EvaluationAborted(err)
			}
			// 不同行写入 Dense 的不相交区间
			for j := range cols {
				v, err := snapshot.Volatility(i, j)
				if err != nil {
					return xerrors.Wrap(err, xerrors.ErrInternal, "volatility evaluation failed").
						WithContext("time_index", i).
						WithContext("libor_index", j)
				}
				dense.Set(i, j, v.Value())
			}
			return nil
		})
	}

	err := p.Wait()
	elapsed := time.Since(start)
	e.observe(name, snapshot, elapsed, err)

	if err != nil {
		tracing.SetError(ctx, err)
		e.options.Logger.ErrorContext(ctx, "volatility matrix evaluation failed",
			"evaluator", e.options.Name, "model", name, "error", err)
		return nil, err
	}

	e.options.Logger.DebugContext(ctx, "volatility matrix evaluated",
		"evaluator", e.options.Name, "model", name, "rows", rows, "cols", cols, "duration", elapsed)
	return dense, nil
}

func (e *Evaluator) observe(name string, model Model, elapsed time.Duration, err error) {
	if e.metrics == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	e.metrics.evaluations.WithLabelValues(e.options.Name, name, status).Inc()
	e.metrics.duration.WithLabelValues(e.options.Name, name).Observe(elapsed.Seconds())

	parameters := model.Parameters()
	if len(parameters) > maxObservedParameters {
		return
	}
	for i, v := range parameters {
		e.metrics.parameters.WithLabelValues(e.options.Name, name, strconv.Itoa(i)).Set(v)
	}
}

func modelName(m Model) string {
	switch m.(type) {
	case *ExponentialModel:
		return "exponential"
	case *MatrixModel:
		return "matrix"
	default:
		return fmt.Sprintf("%T", m)
	}
}
