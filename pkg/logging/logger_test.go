package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitLevels(t *testing.T) {
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })

	l := Init(false)
	if l.Core().Enabled(zapcore.DebugLevel) {
		t.Errorf("debug level should be disabled without --debug")
	}
	if DebugEnabled {
		t.Errorf("DebugEnabled should be false")
	}

	l = Init(true)
	if !l.Core().Enabled(zapcore.DebugLevel) {
		t.Errorf("debug level should be enabled with --debug")
	}
	if zap.L() != l {
		t.Errorf("Init should replace the global logger")
	}
}
