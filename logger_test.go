package sfu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLogger_ReturnsUsableLogger(t *testing.T) {
	logger := NewLogger("test-scope")
	assert.NotPanics(t, func() {
		logger.Info("hello", "key", "value")
	})
}

func TestNewPionLoggerFactory_ScopesLoggersByComponent(t *testing.T) {
	factory := NewPionLoggerFactory()
	logger := factory.NewLogger("sctp")

	assert.NotPanics(t, func() {
		logger.Debugf("stream %d opened", 3)
		logger.Warn("retransmit")
		logger.Error("association reset")
	})
}
