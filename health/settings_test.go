package health

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/bbshealth/config"
)

func TestConfigChecker_Loads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.DefaultConfigName)
	require.NoError(t, os.WriteFile(path, []byte("[interface]\ntype = tcp\nport = 4500\n"), 0o644))

	c := NewConfigChecker("", dir)
	assert.Empty(t, c.Path())

	r := c.Check(context.Background())
	require.Equal(t, StatusHealthy, r.Status, r.Message)
	assert.Equal(t, path, c.Path())

	radio, ok := c.Radio()
	require.True(t, ok)
	assert.True(t, radio.IsTCP())
	assert.Equal(t, 4500, radio.Port)
	assert.Equal(t, "config", c.Name())
}

func TestConfigChecker_Missing(t *testing.T) {
	c := NewConfigChecker("", t.TempDir())

	r := c.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, r.Status)
	assert.Equal(t, "no configuration file found", r.Message)
	assert.True(t, errors.Is(r.Error, config.ErrNoConfig))

	_, ok := c.Radio()
	assert.False(t, ok)
}

func TestConfigChecker_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bbs.ini")
	require.NoError(t, os.WriteFile(path, []byte("type = tcp\n"), 0o644))

	r := NewConfigChecker(path, "").Check(context.Background())
	assert.Equal(t, StatusUnhealthy, r.Status)
	assert.ErrorIs(t, r.Error, config.ErrInvalidConfig)
}
