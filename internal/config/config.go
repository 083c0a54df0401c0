// Package config holds the typed per-run configuration with documented
// defaults. Values are layered: defaults, then config file and flags via
// viper, then environment overrides. Validation happens once at batch
// start, not ad hoc at each step.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
)

// Config is the full validated run configuration.
type Config struct {
	// Concurrency is the number of items converted simultaneously.
	Concurrency int `env:"READOUT_CONCURRENCY"`

	// Retries is the per-step retry budget; a step runs at most
	// Retries+1 times.
	Retries int `env:"READOUT_RETRIES"`

	// ContinueOnError keeps the batch going past failed items.
	ContinueOnError bool `env:"READOUT_CONTINUE_ON_ERROR"`

	// ITunesEnabled turns on catalog import of finished audio.
	ITunesEnabled bool `env:"READOUT_ITUNES"`

	// OutputDir places finished audio in one directory; empty means next
	// to each source file (or staged, when importing to iTunes).
	OutputDir string `env:"READOUT_OUTPUT_DIR"`

	// DirectOutput forces output next to the source even when iTunes
	// import is enabled.
	DirectOutput bool `env:"READOUT_DIRECT"`

	// OverwriteExisting re-synthesizes items whose audio already exists.
	OverwriteExisting bool `env:"READOUT_OVERWRITE"`

	// Engine selects the synthesis backend: "say" or "piper".
	Engine string `env:"READOUT_ENGINE"`

	// Voice is the backend voice name; empty uses the backend default.
	Voice string `env:"READOUT_VOICE"`

	// Rate is the speaking rate in words per minute; 0 uses the default.
	Rate int `env:"READOUT_RATE"`

	// PiperModel is the .onnx model path, required for the piper engine.
	PiperModel string `env:"READOUT_PIPER_MODEL"`

	// ChunkingEnabled turns on the long-input synthesis path.
	ChunkingEnabled bool `env:"READOUT_CHUNKING"`

	// ChunkWords is the per-chunk word budget.
	ChunkWords int `env:"READOUT_CHUNK_WORDS"`

	// ChunkTimeout bounds each chunk's synthesis call.
	ChunkTimeout time.Duration `env:"READOUT_CHUNK_TIMEOUT"`

	// Debug enables debug logging.
	Debug bool `env:"READOUT_DEBUG"`
}

// Default returns the documented defaults.
func Default() Config {
	return Config{
		Concurrency:     1,
		Retries:         2,
		ContinueOnError: true,
		Engine:          "say",
		ChunkingEnabled: true,
		ChunkWords:      1000,
		ChunkTimeout:    30 * time.Second,
	}
}

// FromViper builds a Config from viper state layered over the defaults,
// applies environment overrides, and validates the result.
func FromViper(v *viper.Viper) (Config, error) {
	c := Default()

	set := func(key string, apply func()) {
		if v.IsSet(key) {
			apply()
		}
	}
	set("concurrency", func() { c.Concurrency = v.GetInt("concurrency") })
	set("retries", func() { c.Retries = v.GetInt("retries") })
	set("continue_on_error", func() { c.ContinueOnError = v.GetBool("continue_on_error") })
	set("itunes.enabled", func() { c.ITunesEnabled = v.GetBool("itunes.enabled") })
	set("output.dir", func() { c.OutputDir = v.GetString("output.dir") })
	set("output.direct", func() { c.DirectOutput = v.GetBool("output.direct") })
	set("output.overwrite", func() { c.OverwriteExisting = v.GetBool("output.overwrite") })
	set("engine.name", func() { c.Engine = v.GetString("engine.name") })
	set("engine.voice", func() { c.Voice = v.GetString("engine.voice") })
	set("engine.rate", func() { c.Rate = v.GetInt("engine.rate") })
	set("engine.piper_model", func() { c.PiperModel = v.GetString("engine.piper_model") })
	set("chunking.enabled", func() { c.ChunkingEnabled = v.GetBool("chunking.enabled") })
	set("chunking.max_words", func() { c.ChunkWords = v.GetInt("chunking.max_words") })
	set("chunking.timeout", func() { c.ChunkTimeout = v.GetDuration("chunking.timeout") })
	set("debug", func() { c.Debug = v.GetBool("debug") })

	if err := env.Parse(&c); err != nil {
		return c, fmt.Errorf("reading environment: %w", err)
	}

	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Validate rejects configurations no run could honor.
func (c *Config) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries must not be negative, got %d", c.Retries)
	}
	switch c.Engine {
	case "say", "piper":
	default:
		return fmt.Errorf("unknown engine %q (want say or piper)", c.Engine)
	}
	if c.Engine == "piper" && c.PiperModel == "" {
		return fmt.Errorf("the piper engine requires a model path")
	}
	if c.ChunkWords < 1 {
		return fmt.Errorf("chunk word budget must be at least 1, got %d", c.ChunkWords)
	}
	if c.ChunkTimeout <= 0 {
		return fmt.Errorf("chunk timeout must be positive, got %s", c.ChunkTimeout)
	}
	return nil
}
