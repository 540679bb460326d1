package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerWith(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := NewZapLogger(zap.New(core).Sugar())

	child := logger.With("provider", "rest")
	child.Infow("checked")
	logger.Infow("unscoped")

	require.Equal(t, 2, logs.Len())
	all := logs.All()
	assert.ElementsMatch(t, []zap.Field{zap.String("provider", "rest")}, all[0].Context)
	assert.Empty(t, all[1].Context)
}

func TestZapLoggerNamed(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := NewZapLogger(zap.New(core).Sugar())

	logger.Named("restauth").Info("hello")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "restauth", logs.All()[0].LoggerName)
}

func TestNewDevLogger(t *testing.T) {
	assert.NotNil(t, NewDevLogger())
	assert.NotNil(t, NewProdLogger())
}
