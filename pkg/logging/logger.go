package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var DebugEnabled bool

// Init installs the global zap logger. Console output goes to stderr so that
// command results on stdout stay machine readable.
func Init(debug bool) *zap.Logger {
	DebugEnabled = debug

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if !debug {
		encCfg.TimeKey = ""
		encCfg.CallerKey = ""
	}

	logger := zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(os.Stderr),
		level,
	))
	zap.ReplaceGlobals(logger)
	return logger
}

// Debugf logs through the global sugared logger at debug level.
func Debugf(format string, args ...interface{}) {
	zap.S().Debugf(format, args...)
}

// Infof logs through the global sugared logger at info level.
func Infof(format string, args ...interface{}) {
	zap.S().Infof(format, args...)
}
