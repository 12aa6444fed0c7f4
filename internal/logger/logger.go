package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type options struct {
	outputs []string
}

// Option changes how New builds the logger.
type Option func(*options)

// WithOutput sends log entries to the given paths instead of stdout.
// The interactive client logs to stderr so printed suggestions stay on stdout.
func WithOutput(paths ...string) Option {
	return func(o *options) {
		if len(paths) > 0 {
			o.outputs = paths
		}
	}
}

func New(json bool, debug bool, opts ...Option) (*zap.Logger, error) {
	o := options{outputs: []string{"stdout"}}
	for _, opt := range opts {
		opt(&o)
	}

	level := zapcore.InfoLevel
	encoding := "console"

	if json {
		encoding = "json"
	}

	if debug {
		level = zapcore.DebugLevel
	}

	cfg := zap.Config{
		Encoding:         encoding,
		Level:            zap.NewAtomicLevelAt(level),
		OutputPaths:      o.outputs,
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "step",

			LevelKey:    "level",
			EncodeLevel: zapcore.LowercaseLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.RFC3339TimeEncoder,

			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,

			StacktraceKey:  "stacktrace",
			EncodeDuration: zapcore.StringDurationEncoder,
		},
	}

	logger, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, err
	}

	return logger, nil
}
