package observability

import (
	"os"

	"github.com/stoik/phishguard/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds a logger that writes to console in cfg.Format and, when
// cfg.LogFile is set, to a rotated JSON file as well.
func New(cfg config.LoggerConfig, console zapcore.WriteSyncer) *zap.Logger {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	cores := []zapcore.Core{zapcore.NewCore(encoderFor(cfg.Format), console, level)}
	if cfg.LogFile != "" {
		rotated := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		cores = append(cores, zapcore.NewCore(encoderFor("json"), zapcore.AddSync(rotated), level))
	}

	opts := []zap.Option{zap.AddStacktrace(zapcore.ErrorLevel)}
	if cfg.AddSource {
		opts = append(opts, zap.AddCaller())
	}

	logger := zap.New(zapcore.NewTee(cores...), opts...)
	if cfg.ServiceName != "" {
		logger = logger.Named(cfg.ServiceName)
	}
	return logger
}

// Setup builds the process logger on stderr and installs it as zap's global.
// Stdout stays reserved for command output.
func Setup(cfg config.LoggerConfig) *zap.Logger {
	logger := New(cfg, zapcore.Lock(os.Stderr))
	zap.ReplaceGlobals(logger)
	return logger
}

// Sync flushes the global logger
func Sync() {
	// stderr is often a terminal, which rejects fsync
	_ = zap.L().Sync()
}

func encoderFor(format string) zapcore.Encoder {
	if format == "console" {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(ec)
	}

	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(ec)
}
