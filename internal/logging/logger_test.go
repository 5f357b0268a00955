package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerForwardsFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := NewZapLogger(zap.New(core))

	logger.Info("issued session token", "username", "alice")
	logger.Warn("verification rejected", "username", "eve")
	logger.Error("comment feed request failed", "status", 503)
	logger.Debug("session token rejected")

	entries := logs.All()
	assert.Len(t, entries, 4)
	assert.Equal(t, "issued session token", entries[0].Message)
	assert.Equal(t, "alice", entries[0].ContextMap()["username"])
	assert.Equal(t, int64(503), entries[2].ContextMap()["status"])
}

func TestNamedReturnsChildLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := NewZapLogger(zap.New(core)).Named("verifier")

	logger.Info("issued session token")

	assert.Equal(t, "verifier", logs.All()[0].LoggerName)
}

func TestDefLoggerDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		l := DefLogger{}
		l.Debug("debug", "k", "v")
		l.Info("info")
		l.Warn("warn", "k", 1)
		l.Error("error", "err", "boom")
	})
}
