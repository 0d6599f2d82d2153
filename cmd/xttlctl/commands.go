package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xttl/pkg/config/xconf"
	"github.com/omeyang/xttl/pkg/lifecycle/xrun"
	"github.com/omeyang/xttl/pkg/observability/xlog"
	"github.com/omeyang/xttl/pkg/observability/xmetrics"
	"github.com/omeyang/xttl/pkg/util/xid"
	"github.com/omeyang/xttl/pkg/util/xttl"
)

const (
	keysUUID      = "uuid"
	keysSonyflake = "sonyflake"

	defaultPoll = 100 * time.Millisecond
)

// errDrained 表示存储已清空，run 正常结束。
var errDrained = errors.New("store drained")

// runOptions 是 run 命令的参数。
type runOptions struct {
	configPath string
	keys       string
	report     string
	poll       time.Duration
	logLevel   string
	logFormat  string
	logFile    string
}

func createCommands() []*cli.Command {
	configFlag := &cli.StringFlag{
		Name:     "config",
		Aliases:  []string{"c"},
		Usage:    "存储定义文件（.yaml/.yml/.json）",
		Required: true,
	}
	return []*cli.Command{
		{
			Name:  "run",
			Usage: "加载配置并运行存储，直到清空或收到终止信号",
			Flags: []cli.Flag{
				configFlag,
				&cli.StringFlag{Name: "keys", Usage: "自动生成键的方式：uuid 或 sonyflake", Value: keysUUID},
				&cli.StringFlag{Name: "report", Usage: "统计输出的 cron 表达式，如 \"@every 1s\"；为空不输出"},
				&cli.DurationFlag{Name: "poll", Usage: "检查存储是否清空的间隔", Value: defaultPoll},
				&cli.StringFlag{Name: "log-level", Usage: "日志级别 (debug/info/warn/error)", Value: "info"},
				&cli.StringFlag{Name: "log-format", Usage: "日志格式 (text/json)", Value: "text"},
				&cli.StringFlag{Name: "log-file", Usage: "日志文件路径，按大小轮转；为空输出到 stderr"},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return cmdRun(ctx, runOptions{
					configPath: cmd.String("config"),
					keys:       cmd.String("keys"),
					report:     cmd.String("report"),
					poll:       cmd.Duration("poll"),
					logLevel:   cmd.String("log-level"),
					logFormat:  cmd.String("log-format"),
					logFile:    cmd.String("log-file"),
				}, cmd.Root().ErrWriter)
			},
		},
		{
			Name:  "validate",
			Usage: "校验配置并以 JSON 输出解析结果",
			Flags: []cli.Flag{configFlag},
			Action: func(_ context.Context, cmd *cli.Command) error {
				return cmdValidate(cmd.String("config"), cmd.Root().Writer)
			},
		},
	}
}

// cmdValidate 校验 path 处的定义并输出 JSON。
func cmdValidate(path string, out io.Writer) error {
	_, def, err := loadDefinition(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(def)
}

// cmdRun 运行存储直到清空、ctx 结束或收到信号。
// 退出前剩余条目经观察者逐个通知。
func cmdRun(ctx context.Context, opts runOptions, logOut io.Writer) error {
	logger, cleanup, err := buildLogger(opts, logOut)
	if err != nil {
		return &usageError{msg: "日志配置无效", err: err}
	}
	defer func() { _ = cleanup() }() //nolint:errcheck // 退出时关闭轮转文件

	keyFunc, err := newKeyFunc(opts.keys)
	if err != nil {
		return err
	}

	cfg, def, err := loadDefinition(opts.configPath)
	if err != nil {
		return err
	}

	recorder, err := xmetrics.NewOTelRecorder(xmetrics.WithInstrumentationName("github.com/omeyang/xttl/cmd/xttlctl"))
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	store, err := xttl.NewFromConfig(def.Store,
		xttl.WithContext[string](runCtx),
		xttl.WithKeyFunc[string](keyFunc),
		xttl.WithLogger[string](logger),
		xttl.WithRecorder[string](recorder),
		xttl.WithObserver(func(value, key string) {
			logger.Info(runCtx, "entry evicted", slog.String("key", key), slog.String("value", value))
		}),
	)
	if err != nil {
		return err
	}
	defer store.Close()

	fill(store, def.Items)
	logger.Info(runCtx, "store running",
		slog.String("store", store.Name()),
		slog.Duration("lifetime", store.Lifetime()),
		slog.Int("entries", store.Len()),
	)

	services := []func(context.Context) error{
		drainWatcher(store, opts.poll),
		configWatcher(cfg, store, logger),
	}
	if opts.report != "" {
		services = append(services, xrun.Cron(opts.report, reporter(store, logger), func(err error) {
			logger.Warn(runCtx, "report failed", xlog.Err(err))
		}))
	}

	err = xrun.RunWithOptions(runCtx, []xrun.Option{
		xrun.WithName("xttlctl"),
		xrun.WithLogger(logger),
	}, services...)

	// 剩余条目（信号或 ctx 结束时）经观察者通知
	store.Flush()

	switch {
	case err == nil, errors.Is(err, errDrained), errors.Is(err, xrun.ErrSignal), ctx.Err() != nil:
		logger.Info(context.WithoutCancel(runCtx), "store stopped", slog.String("reason", stopReason(err)))
		return nil
	case errors.Is(err, xrun.ErrInvalidSchedule):
		return &usageError{msg: "--report 无效", err: err}
	default:
		return err
	}
}

func stopReason(err error) string {
	if err == nil {
		return "canceled"
	}
	return err.Error()
}

func buildLogger(opts runOptions, out io.Writer) (xlog.LoggerWithLevel, func() error, error) {
	b := xlog.New().
		SetOutput(out).
		SetLevelString(opts.logLevel).
		SetFormat(opts.logFormat)
	if opts.logFile != "" {
		b.SetRotation(opts.logFile)
	}
	return b.Build()
}

// newKeyFunc 按名称返回自动生成键的函数。
func newKeyFunc(kind string) (func() string, error) {
	switch kind {
	case "", keysUUID:
		return xid.UUID, nil
	case keysSonyflake:
		gen, err := xid.NewGenerator()
		if err != nil {
			return nil, err
		}
		return gen.KeyFunc(), nil
	default:
		return nil, &usageError{msg: fmt.Sprintf("--keys 仅支持 %s 或 %s，得到 %q", keysUUID, keysSonyflake, kind)}
	}
}

// fill 按顺序写入初始条目，未指定 key 的条目使用生成的键。
func fill(store *xttl.Store[string], items []item) {
	for _, it := range items {
		var opts []xttl.EntryOption[string]
		if it.Lifetime > 0 {
			opts = append(opts, xttl.EntryLifetime[string](it.Lifetime))
		}
		if it.Key == "" {
			store.Push(it.Value, opts...)
			continue
		}
		store.Set(it.Key, it.Value, opts...)
	}
}

// drainWatcher 在存储清空后以 errDrained 结束整个运行。
func drainWatcher(store *xttl.Store[string], poll time.Duration) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := xrun.Until(poll, store.IsEmpty)(ctx); err != nil {
			return err
		}
		return errDrained
	}
}

// configWatcher 监视配置文件，将变更后的 store.lifetime 应用到存储。
func configWatcher(cfg xconf.Config, store *xttl.Store[string], logger xlog.Logger) func(context.Context) error {
	return func(ctx context.Context) error {
		return xconf.Watch(ctx, cfg, func(cfg xconf.Config, err error) {
			if err != nil {
				logger.Warn(ctx, "config reload failed", xlog.Err(err))
				return
			}
			applyLifetime(ctx, cfg, store, logger)
		})
	}
}

func applyLifetime(ctx context.Context, cfg xconf.Config, store *xttl.Store[string], logger xlog.Logger) {
	var sc xttl.Config
	if err := cfg.Unmarshal("store", &sc); err != nil {
		logger.Warn(ctx, "config decode failed", xlog.Err(err))
		return
	}
	if sc.Lifetime == store.Lifetime() {
		return
	}
	if err := store.SetLifetime(sc.Lifetime); err != nil {
		logger.Warn(ctx, "lifetime rejected", xlog.Err(err))
		return
	}
	logger.Info(ctx, "lifetime updated", slog.Duration("lifetime", sc.Lifetime))
}

// reporter 输出存储当前状态。
func reporter(store *xttl.Store[string], logger xlog.Logger) func(context.Context) error {
	return func(ctx context.Context) error {
		logger.Info(ctx, "store stats",
			slog.String("store", store.Name()),
			slog.Int("entries", store.Len()),
			slog.Duration("lifetime", store.Lifetime()),
		)
		return nil
	}
}
