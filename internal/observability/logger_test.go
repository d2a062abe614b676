package observability

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn", "sprint")

	logger.Info().Msg("hidden")
	require.Zero(t, buf.Len())

	logger.Warn().Msg("shown")
	require.Contains(t, buf.String(), `"service":"sprint"`)
	require.Contains(t, buf.String(), "shown")
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "loud", "sprint")
	require.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestErrorReportingDisabledWithoutToken(t *testing.T) {
	hook, flush := ErrorReporting{}.Setup()
	require.Nil(t, hook)
	require.NotPanics(t, flush)
}
