package applog

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNoOpSatisfiesLogger(t *testing.T) {
	var l Logger = NoOp{}
	l.Info("hello", zap.String("k", "v"))
	l2 := l.With(zap.Int("n", 1))
	require.NotNil(t, l2)
}

func TestNewBuildsLogger(t *testing.T) {
	l, err := New(zapcore.InfoLevel)
	require.NoError(t, err)
	require.NotNil(t, l)
	l.Info("built ok")
}
