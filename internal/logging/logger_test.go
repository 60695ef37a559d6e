package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestInit_JSON(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "json", Output: &buf})
	t.Cleanup(func() { Init(Config{}) })

	l := Component("reactions")
	l.Info().Str("subject", "place:1").Msg("vote applied")
	Debug().Msg("hidden")

	out := buf.String()
	assert.Contains(t, out, `"component":"reactions"`)
	assert.Contains(t, out, `"message":"vote applied"`)
	assert.NotContains(t, out, "hidden")
}

func TestPackageLevelEvents(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Format: "json", Output: &buf})
	t.Cleanup(func() { Init(Config{}) })

	Info().Msg("quiet")
	Warn().Str("subject", "gallery:2").Msg("slow store")
	Error().Msg("store failed")

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"subject":"gallery:2"`)
	assert.Contains(t, out, `"level":"error"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
}
