package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewDefaultsEmptyLevel(t *testing.T) {
	log, err := New(&Config{})
	require.NoError(t, err)
	assert.NotNil(t, log)
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	log, err := New(&Config{Level: "loud"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidLevel)
	assert.Contains(t, err.Error(), "loud")
	assert.Nil(t, log)
}

func TestGetLogLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"fatal": zapcore.FatalLevel,
		"ERROR": zapcore.ErrorLevel,
	}
	for input, want := range cases {
		lvl, err := getLogLevel(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, lvl, input)
	}

	_, err := getLogLevel("verbose")
	assert.ErrorIs(t, err, ErrInvalidLevel)
}
