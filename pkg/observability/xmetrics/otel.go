package xmetrics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultInstrumentationName = "github.com/omeyang/xttl/xmetrics"
	unknownComponent           = "unknown"
	unknownOperation           = "unknown"

	metricEntryEvents       = "xttl.entry.events"
	metricEntryLive         = "xttl.entry.live"
	metricOperationTotal    = "xttl.operation.total"
	metricOperationDuration = "xttl.operation.duration"
)

type otelConfig struct {
	instrumentationName string
	tracerProvider      trace.TracerProvider
	meterProvider       metric.MeterProvider
}

// Option 定义 OTel Recorder 的配置选项。
type Option func(*otelConfig)

// WithInstrumentationName 设置 OTel instrumentation 名称。
func WithInstrumentationName(name string) Option {
	return func(cfg *otelConfig) {
		if name != "" {
			cfg.instrumentationName = name
		}
	}
}

// WithTracerProvider 设置 TracerProvider。
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(cfg *otelConfig) {
		if provider != nil {
			cfg.tracerProvider = provider
		}
	}
}

// WithMeterProvider 设置 MeterProvider。
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(cfg *otelConfig) {
		if provider != nil {
			cfg.meterProvider = provider
		}
	}
}

// NewOTelRecorder 创建基于 OpenTelemetry 的 Recorder。
// 未指定 Provider 时使用 otel 全局 Provider。
func NewOTelRecorder(opts ...Option) (Recorder, error) {
	cfg := &otelConfig{
		instrumentationName: defaultInstrumentationName,
		tracerProvider:      otel.GetTracerProvider(),
		meterProvider:       otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	meter := cfg.meterProvider.Meter(cfg.instrumentationName)

	events, err := meter.Int64Counter(
		metricEntryEvents,
		metric.WithDescription("entry lifecycle events"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateCounter, err)
	}

	live, err := meter.Int64UpDownCounter(
		metricEntryLive,
		metric.WithDescription("live entries"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateCounter, err)
	}

	total, err := meter.Int64Counter(
		metricOperationTotal,
		metric.WithDescription("total bulk operations"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateCounter, err)
	}

	duration, err := meter.Float64Histogram(
		metricOperationDuration,
		metric.WithDescription("bulk operation duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateHistogram, err)
	}

	return &otelRecorder{
		tracer:   cfg.tracerProvider.Tracer(cfg.instrumentationName),
		events:   events,
		live:     live,
		total:    total,
		duration: duration,
	}, nil
}

type otelRecorder struct {
	tracer   trace.Tracer
	events   metric.Int64Counter
	live     metric.Int64UpDownCounter
	total    metric.Int64Counter
	duration metric.Float64Histogram
}

// Event 将 store 的 event 事件计数增加 n，n <= 0 时忽略。
func (r *otelRecorder) Event(ctx context.Context, store, event string, n int64) {
	if n <= 0 {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	r.events.Add(ctx, n, metric.WithAttributes(
		attribute.String("store", orUnknown(store, unknownComponent)),
		attribute.String("event", orUnknown(event, unknownOperation)),
	))
}

// Live 调整 store 的存活条目数。
func (r *otelRecorder) Live(ctx context.Context, store string, delta int64) {
	if delta == 0 {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	r.live.Add(ctx, delta, metric.WithAttributes(
		attribute.String("store", orUnknown(store, unknownComponent)),
	))
}

// Start 开始一次观测跨度。
func (r *otelRecorder) Start(ctx context.Context, opts SpanOptions) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	component := orUnknown(opts.Component, unknownComponent)
	operation := orUnknown(opts.Operation, unknownOperation)

	attrs := make([]attribute.KeyValue, 0, 2+len(opts.Attrs))
	attrs = append(attrs,
		attribute.String("component", component),
		attribute.String("operation", operation),
	)
	attrs = append(attrs, attrsToOTel(opts.Attrs)...)

	ctx, span := r.tracer.Start(
		ctx,
		operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)

	return ctx, &otelSpan{
		span:      span,
		recorder:  r,
		ctx:       ctx,
		component: component,
		operation: operation,
		start:     time.Now(),
	}
}

type otelSpan struct {
	span      trace.Span
	recorder  *otelRecorder
	ctx       context.Context
	component string
	operation string
	start     time.Time
	endOnce   sync.Once
}

// End 结束观测并记录结果，多次调用只记录一次。
func (s *otelSpan) End(result Result) {
	if s == nil {
		return
	}
	s.endOnce.Do(func() {
		status := resolveStatus(result)
		if status == StatusError {
			msg := "operation failed"
			if result.Err != nil {
				s.span.RecordError(result.Err)
				msg = result.Err.Error()
			}
			s.span.SetStatus(codes.Error, msg)
		} else {
			if result.Err != nil {
				s.span.RecordError(result.Err)
			}
			s.span.SetStatus(codes.Ok, "")
		}
		if len(result.Attrs) > 0 {
			s.span.SetAttributes(attrsToOTel(result.Attrs)...)
		}
		s.span.End()

		// 调用方 context 可能已被取消，指标仍需记录
		metricsCtx := context.WithoutCancel(s.ctx)
		attrs := metric.WithAttributes(
			attribute.String("component", s.component),
			attribute.String("operation", s.operation),
			attribute.String("status", string(status)),
		)
		s.recorder.total.Add(metricsCtx, 1, attrs)
		s.recorder.duration.Record(metricsCtx, time.Since(s.start).Seconds(), attrs)
	})
}

func orUnknown(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func attrsToOTel(attrs []Attr) []attribute.KeyValue {
	if len(attrs) == 0 {
		return nil
	}
	converted := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if attr.Key == "" || attr.Value == nil {
			continue
		}
		converted = append(converted, toKeyValue(attr))
	}
	return converted
}

func toKeyValue(attr Attr) attribute.KeyValue {
	switch v := attr.Value.(type) {
	case string:
		return attribute.String(attr.Key, v)
	case bool:
		return attribute.Bool(attr.Key, v)
	case int:
		return attribute.Int(attr.Key, v)
	case int64:
		return attribute.Int64(attr.Key, v)
	case float64:
		return attribute.Float64(attr.Key, v)
	case time.Duration:
		return attribute.Int64(attr.Key, v.Nanoseconds())
	default:
		return attribute.String(attr.Key, fmt.Sprint(v))
	}
}
