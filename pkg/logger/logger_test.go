package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestInit_Levels(t *testing.T) {
	assert.NoError(t, Init("debug"))
	assert.True(t, Logger().Core().Enabled(zap.DebugLevel))

	assert.NoError(t, Init(""))
	assert.False(t, Logger().Core().Enabled(zap.DebugLevel))
	assert.True(t, Logger().Core().Enabled(zap.InfoLevel))

	assert.Error(t, Init("verbose"))
}
