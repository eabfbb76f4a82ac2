package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("verbose"))
}

func TestFromZerolog_EscribeJSON(t *testing.T) {
	var buf bytes.Buffer
	log := FromZerolog(zerolog.New(&buf))
	log.Info().Str("product_id", "p-1").Msg("stock ajustado")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "p-1", line["product_id"])
	assert.Equal(t, "stock ajustado", line["message"])
}

func TestNewNop_NoEscribe(t *testing.T) {
	log := NewNop()
	log.Error().Msg("descartado")
	assert.Equal(t, zerolog.Disabled, log.Zerolog().GetLevel())
}
