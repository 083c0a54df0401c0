package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# files converted in parallel
concurrency: 1
# per-step retry budget; a step runs at most retries+1 times
retries: 2
# keep going past failed files
continue_on_error: true
# debug logging
debug: false

itunes:
  # add finished audio to the Music library
  enabled: false

output:
  # directory for finished audio; empty means next to each source file
  dir: ""
  # write next to sources even when importing to iTunes
  direct: false
  # replace audio files that already exist
  overwrite: false

engine:
  # speech engine: say or piper
  name: "say"
  # voice name; empty uses the engine default
  voice: ""
  # speaking rate in words per minute; 0 uses the engine default
  rate: 0
  # path to the piper .onnx model (required for the piper engine)
  # piper_model: "/path/to/model.onnx"

chunking:
  # split long documents into sentence-bounded chunks before synthesis
  enabled: true
  # word budget per chunk
  max_words: 1000
  # synthesis timeout per chunk
  timeout: "30s"
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the readout config file",
	Long:    "\nEdit the readout config file. We'll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.",
	Example: "readout config\nreadout config --config path/to/config.yml",
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("Readout", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
