package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/andrescamacho/warehouse-go/internal/infrastructure/config"
)

func TestLogger_WritesStructuredFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := Wrap(zap.New(core))

	logger.Info("movement recorded", "material_id", "m-1", "quantity", "5")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "movement recorded", entries[0].Message)
	assert.Equal(t, "m-1", entries[0].ContextMap()["material_id"])
}

func TestLogger_RedactsCredentials(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := Wrap(zap.New(core)).With("redis_password", "hunter2")

	logger.Warn("connecting", "database_url", "postgresql://u:p@h/db", "host", "db")

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "[REDACTED]", fields["redis_password"])
	assert.Equal(t, "[REDACTED]", fields["database_url"])
	assert.Equal(t, "db", fields["host"])
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "chatty", Format: "json", Output: "stdout"})
	assert.Error(t, err)
}

func TestNew_BuildsFromConfig(t *testing.T) {
	logger, err := New(config.LoggingConfig{Level: "debug", Format: "text", Output: "stderr"})
	require.NoError(t, err)
	assert.NotNil(t, logger.Zap())
}
