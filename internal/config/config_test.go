package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	assert.Equal(t, 1, c.Concurrency)
	assert.Equal(t, 2, c.Retries)
	assert.True(t, c.ContinueOnError)
	assert.False(t, c.ITunesEnabled)
	assert.Equal(t, "say", c.Engine)
	assert.True(t, c.ChunkingEnabled)
	assert.Equal(t, 1000, c.ChunkWords)
	assert.Equal(t, 30*time.Second, c.ChunkTimeout)
}

func TestFromViperLayersOverDefaults(t *testing.T) {
	v := viper.New()
	v.Set("concurrency", 4)
	v.Set("itunes.enabled", true)
	v.Set("chunking.timeout", "45s")
	v.Set("engine.voice", "Samantha")

	c, err := FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, 4, c.Concurrency)
	assert.True(t, c.ITunesEnabled)
	assert.Equal(t, 45*time.Second, c.ChunkTimeout)
	assert.Equal(t, "Samantha", c.Voice)
	// untouched keys keep their defaults
	assert.Equal(t, 2, c.Retries)
	assert.Equal(t, "say", c.Engine)
}

func TestFromViperEnvironmentOverride(t *testing.T) {
	t.Setenv("READOUT_CONCURRENCY", "8")
	t.Setenv("READOUT_VOICE", "Daniel")

	v := viper.New()
	v.Set("concurrency", 2)

	c, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 8, c.Concurrency, "environment wins over viper")
	assert.Equal(t, "Daniel", c.Voice)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.Concurrency = 0 },
			wantErr: "concurrency",
		},
		{
			name:    "negative retries",
			mutate:  func(c *Config) { c.Retries = -1 },
			wantErr: "retries",
		},
		{
			name:    "unknown engine",
			mutate:  func(c *Config) { c.Engine = "festival" },
			wantErr: "unknown engine",
		},
		{
			name:    "piper without model",
			mutate:  func(c *Config) { c.Engine = "piper" },
			wantErr: "model path",
		},
		{
			name:    "zero chunk budget",
			mutate:  func(c *Config) { c.ChunkWords = 0 },
			wantErr: "word budget",
		},
		{
			name:    "zero chunk timeout",
			mutate:  func(c *Config) { c.ChunkTimeout = 0 },
			wantErr: "timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
