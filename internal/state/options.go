package state

import (
	"time"

	"bistrocore/internal/blob"
	"bistrocore/internal/validation"
	"bistrocore/pkg/finance"
)

// defaultCacheSize bounds the validation cache to the last distinct
// dataset versions.
const defaultCacheSize = 8

// DatasetValidator is the whole-dataset predicate consulted after every
// recomputation.
type DatasetValidator func(finance.Dataset) finance.ValidationResult

type managerOptions struct {
	logger    Logger
	metrics   MetricsRecorder
	tracer    Tracer
	clock     func() time.Time
	archive   blob.Store
	validator DatasetValidator
	cacheSize int
}

func defaultManagerOptions() managerOptions {
	return managerOptions{
		logger:    noopLogger{},
		metrics:   noopMetrics{},
		tracer:    noopTracer{},
		clock:     func() time.Time { return time.Now().UTC() },
		validator: validation.Dataset,
		cacheSize: defaultCacheSize,
	}
}

// Option customizes manager construction.
type Option func(*managerOptions)

// WithLogger installs a structured logger (Debug/Info/Warn/Error with
// key-value args; *slog.Logger satisfies the interface).
func WithLogger(l Logger) Option {
	return func(o *managerOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetricsRecorder installs an operation metrics recorder.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(o *managerOptions) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithTracer installs a span tracer around manager operations.
func WithTracer(t Tracer) Option {
	return func(o *managerOptions) {
		if t != nil {
			o.tracer = t
		}
	}
}

// WithClock overrides the timestamp source. Test hook.
func WithClock(now func() time.Time) Option {
	return func(o *managerOptions) {
		if now != nil {
			o.clock = now
		}
	}
}

// WithArchive installs the blob store receiving dated export snapshots.
func WithArchive(s blob.Store) Option {
	return func(o *managerOptions) { o.archive = s }
}

// WithDatasetValidator replaces the whole-dataset validation rule.
func WithDatasetValidator(v DatasetValidator) Option {
	return func(o *managerOptions) {
		if v != nil {
			o.validator = v
		}
	}
}

// WithValidationCacheSize bounds the validation result cache.
func WithValidationCacheSize(n int) Option {
	return func(o *managerOptions) {
		if n > 0 {
			o.cacheSize = n
		}
	}
}
