package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	for _, format := range []string{"json", "console", ""} {
		logger, atom, err := New("debug", format)
		require.NoError(t, err, format)
		assert.NotNil(t, logger)
		assert.Equal(t, zapcore.DebugLevel, atom.Level())
	}
}

func TestNew_Rejects(t *testing.T) {
	_, _, err := New("info", "xml")
	require.Error(t, err)

	_, _, err = New("loud", "json")
	require.Error(t, err)
}

func TestSetLevel(t *testing.T) {
	_, atom, err := New("", "json")
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, atom.Level())

	require.NoError(t, SetLevel(atom, "warn"))
	assert.Equal(t, zapcore.WarnLevel, atom.Level())
}
