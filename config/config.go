// Package config 提供了统一的配置加载、校验与热更新能力.
package config

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/wyfcoding/lmm/logging"
)

// Config 全局顶级配置结构.
type Config struct {
	Version    string           `mapstructure:"version"    toml:"version"`
	Log        LogConfig        `mapstructure:"log"        toml:"log"`
	Metrics    MetricsConfig    `mapstructure:"metrics"    toml:"metrics"`
	Tracing    TracingConfig    `mapstructure:"tracing"    toml:"tracing"`
	Model      ModelConfig      `mapstructure:"model"      toml:"model"`
	Evaluation EvaluationConfig `mapstructure:"evaluation" toml:"evaluation"`
}

// LogConfig 定义日志输出、级别与切割策略.
type LogConfig struct {
	Level      string `mapstructure:"level"       toml:"level"       validate:"omitempty,oneof=debug info warn error"` // 日志级别。
	Format     string `mapstructure:"format"      toml:"format"      validate:"omitempty,oneof=json text"`             // 日志格式（json/text）。
	Output     string `mapstructure:"output"      toml:"output"      validate:"omitempty,oneof=stdout file both"`      // 日志输出目标。
	File       string `mapstructure:"file"        toml:"file"        validate:"required_if=Output file,required_if=Output both"` // 日志文件路径。
	MaxSize    int    `mapstructure:"max_size"    toml:"max_size"`    // 单个文件最大大小 (MB)。
	MaxBackups int    `mapstructure:"max_backups" toml:"max_backups"` // 最大备份数。
	MaxAge     int    `mapstructure:"max_age"     toml:"max_age"`     // 最大保留天数。
	Compress   bool   `mapstructure:"compress"    toml:"compress"`    // 是否启用压缩。
}

// Logging 转换为 logging.Config。
func (c LogConfig) Logging(service, module string) logging.Config {
	return logging.Config{
		Service:    service,
		Module:     module,
		Level:      c.Level,
		Format:     c.Format,
		Output:     c.Output,
		File:       c.File,
		MaxSize:    c.MaxSize,
		MaxBackups: c.MaxBackups,
		MaxAge:     c.MaxAge,
		Compress:   c.Compress,
	}
}

// MetricsConfig Prometheus 暴露端口.
type MetricsConfig struct {
	Port    string `mapstructure:"port"    toml:"port"    validate:"omitempty,numeric"`
	Enabled bool   `mapstructure:"enabled" toml:"enabled"`
}

// TracingConfig OTLP 链路追踪配置.
type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"       toml:"enabled"`
	ServiceName  string  `mapstructure:"service_name"  toml:"service_name"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint" toml:"otlp_endpoint" validate:"required_if=Enabled true"`
	SampleRatio  float64 `mapstructure:"sample_ratio"  toml:"sample_ratio"  validate:"gte=0,lte=1"`
}

// GridConfig 描述一个时间网格：显式 times，或 start + i*step (i = 0..count).
type GridConfig struct {
	Times []float64 `mapstructure:"times" toml:"times"`
	Start float64   `mapstructure:"start" toml:"start"`
	Step  float64   `mapstructure:"step"  toml:"step"  validate:"gte=0"`
	Count int       `mapstructure:"count" toml:"count" validate:"gte=0"`
}

// ModelConfig 波动率模型参数.
type ModelConfig struct {
	Type            string      `mapstructure:"type"             toml:"type"             validate:"required,oneof=exponential matrix"`
	A               float64     `mapstructure:"a"                toml:"a"`
	B               float64     `mapstructure:"b"                toml:"b"`
	Matrix          [][]float64 `mapstructure:"matrix"           toml:"matrix"           validate:"required_if=Type matrix"`
	Calibrateable   *bool       `mapstructure:"calibrateable"    toml:"calibrateable"`
	SimulationTimes GridConfig  `mapstructure:"simulation_times" toml:"simulation_times"`
	LiborPeriods    GridConfig  `mapstructure:"libor_periods"    toml:"libor_periods"`
}

// IsCalibrateable 未配置时默认开放校准.
func (c ModelConfig) IsCalibrateable() bool {
	return c.Calibrateable == nil || *c.Calibrateable
}

// EvaluationConfig 波动率矩阵求值参数.
type EvaluationConfig struct {
	Concurrency int   `mapstructure:"concurrency" toml:"concurrency" validate:"gte=0"`
	Precision   int32 `mapstructure:"precision"   toml:"precision"   validate:"gte=0,lte=16"`
}

var (
	vInstance = viper.New()
	onReload  []func(*Config)
	hookMu    sync.Mutex
)

// RegisterReloadHook 注册配置热更新回调。
func RegisterReloadHook(hook func(*Config)) {
	if hook == nil {
		return
	}
	hookMu.Lock()
	defer hookMu.Unlock()
	onReload = append(onReload, hook)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age", 30)
	v.SetDefault("metrics.port", "9090")
	v.SetDefault("tracing.service_name", "volmatrix")
	v.SetDefault("tracing.sample_ratio", 1.0)
	v.SetDefault("evaluation.precision", 6)
}

type loadOptions struct {
	watch bool
}

// LoadOption 定义配置加载选项.
type LoadOption func(*loadOptions)

// WithWatch 设置是否监听配置文件并热更新 conf，默认开启.
// 热更新会在后台 goroutine 中改写 conf，一次性运行的命令行应关闭.
func WithWatch(enabled bool) LoadOption {
	return func(o *loadOptions) {
		o.watch = enabled
	}
}

// Load 读取 TOML 配置、叠加 LMM_ 前缀环境变量、校验并按需开启热更新.
func Load(path string, conf any, opts ...LoadOption) error {
	o := loadOptions{watch: true}
	for _, opt := range opts {
		opt(&o)
	}

	vInstance.SetConfigFile(path)
	vInstance.SetConfigType("toml")
	setDefaults(vInstance)

	vInstance.SetEnvPrefix("LMM")
	vInstance.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vInstance.AutomaticEnv()

	if err := vInstance.ReadInConfig(); err != nil {
		return fmt.Errorf("read config error: %w", err)
	}

	if err := vInstance.Unmarshal(conf); err != nil {
		return fmt.Errorf("unmarshal config error: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(conf); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if !o.watch {
		return nil
	}

	vInstance.WatchConfig()
	vInstance.OnConfigChange(func(event fsnotify.Event) {
		slog.Info("detecting config change", "file", event.Name)
		const debounceTimeout = 500 * time.Millisecond
		time.Sleep(debounceTimeout)

		if unmarshalErr := vInstance.Unmarshal(conf); unmarshalErr != nil {
			slog.Error("reload config unmarshal failed", "error", unmarshalErr)

			return
		}

		if validateErr := validate.Struct(conf); validateErr != nil {
			slog.Error("reload config validation failed", "error", validateErr)

			return
		}

		applyLogLevel(conf)
		slog.Info("config hot-reloaded and validated successfully")

		if cfg, ok := conf.(*Config); ok {
			hookMu.Lock()
			hooks := append([]func(*Config){}, onReload...)
			hookMu.Unlock()
			for _, hook := range hooks {
				hook(cfg)
			}
		}
	})

	return nil
}

// applyLogLevel 如果配置中有日志级别，自动更新全局日志级别.
func applyLogLevel(conf any) {
	if c, ok := conf.(*Config); ok {
		logging.SetLevel(c.Log.Level)

		return
	}

	// 嵌入方自定义的配置结构，尝试用反射获取 Log.Level
	val := reflect.ValueOf(conf)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return
	}
	logField := val.FieldByName("Log")
	if logField.IsValid() && logField.Kind() == reflect.Struct {
		levelField := logField.FieldByName("Level")
		if levelField.IsValid() && levelField.Kind() == reflect.String {
			logging.SetLevel(levelField.String())
		}
	}
}
