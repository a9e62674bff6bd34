package observability

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "debug", Format: "json", Output: &buf, ServiceName: "pdfproc-test"})

	logger.WithOperation("render").WithInvocation("abc").Debug().
		Tool("pdftocairo").
		Int("exit_code", 0).
		Msg("process finished")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "pdfproc-test", entry["service"])
	assert.Equal(t, "render", entry["operation"])
	assert.Equal(t, "abc", entry["invocation_id"])
	assert.Equal(t, "pdftocairo", entry["tool"])
	assert.Equal(t, "debug", entry["level"])
}

func TestNewLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "warn", Output: &buf})

	logger.Info().Msg("dropped")
	assert.Empty(t, buf.String())
	assert.False(t, logger.Enabled("debug"))
	assert.True(t, logger.Enabled("error"))

	logger.Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNop(t *testing.T) {
	logger := Nop()
	assert.False(t, logger.Enabled("error"))
	// Must not panic on a disabled event chain.
	logger.Debug().Str("k", "v").Err(nil).Msg("ignored")
}

func TestFromZerolog(t *testing.T) {
	var buf bytes.Buffer
	logger := FromZerolog(zerolog.New(&buf).Level(zerolog.InfoLevel))

	logger.Debug().Msg("hidden")
	logger.Info().Str("k", "v").Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"k":"v"`)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"":         zerolog.InfoLevel,
		"DEBUG":    zerolog.DebugLevel,
		"warning":  zerolog.WarnLevel,
		"off":      zerolog.Disabled,
		"disabled": zerolog.Disabled,
		"bogus":    zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestLogEvent_PageField(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "debug", Format: "json", Output: &buf})

	logger.Debug().Page(3).Msg("page done")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, float64(3), entry["page"])
}
