// volmatrix 读取波动率模型配置并打印 sigma(t_i, T_j) 矩阵。
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/mat"

	"github.com/wyfcoding/lmm/config"
	"github.com/wyfcoding/lmm/logging"
	"github.com/wyfcoding/lmm/metrics"
	"github.com/wyfcoding/lmm/tracing"
	"github.com/wyfcoding/lmm/volatility"
)

const serviceName = "volmatrix"

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "configs/volmatrix.toml", "path to config file")
	flag.Parse()

	if err := run(configPath, os.Stdout); err != nil {
		logging.Error(context.Background(), "volmatrix failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, out io.Writer) error {
	// 1. Config，单次运行不监听文件变更
	var cfg config.Config
	if err := config.Load(configPath, &cfg, config.WithWatch(false)); err != nil {
		return err
	}

	// 2. Logger
	logger := logging.InitLogger(cfg.Log.Logging(serviceName, "main"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Tracing
	shutdownTracer, err := tracing.InitTracer(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logging.Warn(ctx, "tracer shutdown failed", "error", err)
		}
	}()

	// 4. Metrics
	opts := []volatility.EvaluatorOption{
		volatility.WithName(serviceName),
		volatility.WithLogger(logger.Logger),
		volatility.WithConcurrency(cfg.Evaluation.Concurrency),
	}
	if cfg.Metrics.Enabled {
		m := metrics.NewMetrics(serviceName)
		m.RegisterBuildInfo(cfg.Version)
		shutdown := m.ExposeHttp(cfg.Metrics.Port)
		defer shutdown()
		opts = append(opts, volatility.WithMetrics(m))
	}

	// 5. Model
	model, err := volatility.NewFromConfig(cfg.Model)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "volatility model built",
		"type", cfg.Model.Type,
		"calibrateable", cfg.Model.IsCalibrateable(),
		"parameters", model.Parameters())

	// 6. Evaluate
	dense, err := evaluate(ctx, logger, volatility.NewEvaluator(opts...), model, cfg.Model.Type)
	if err != nil {
		return err
	}

	return render(out, model, dense, cfg.Evaluation.Precision)
}

// evaluate 求值波动率矩阵，成功与失败都记录耗时。
func evaluate(ctx context.Context, logger *logging.Logger, e *volatility.Evaluator, model volatility.Model, modelType string) (*mat.Dense, error) {
	defer logger.LogDuration(ctx, "volatility matrix", "type", modelType)()
	return e.Matrix(ctx, model)
}

// render 以表格形式输出矩阵，行首为模拟时间，表头为 LIBOR 期间起始时间。
func render(out io.Writer, model volatility.Model, dense *mat.Dense, precision int32) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprint(w, "t\\T\t")
	for _, maturity := range model.LiborPeriods().Times() {
		fmt.Fprint(w, strconv.FormatFloat(maturity, 'f', -1, 64), "\t")
	}
	fmt.Fprintln(w)

	rows, cols := dense.Dims()
	times := model.SimulationTimes().Times()
	for i := range rows {
		fmt.Fprint(w, strconv.FormatFloat(times[i], 'f', -1, 64), "\t")
		for j := range cols {
			fmt.Fprint(w, decimal.NewFromFloat(dense.At(i, j)).StringFixed(precision), "\t")
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}
