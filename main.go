// Package main provides the entry point for the readout CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/readout/internal/batch"
	"github.com/dgnsrekt/readout/internal/catalog"
	"github.com/dgnsrekt/readout/internal/config"
	"github.com/dgnsrekt/readout/internal/event"
	"github.com/dgnsrekt/readout/internal/extract"
	"github.com/dgnsrekt/readout/internal/outpath"
	"github.com/dgnsrekt/readout/internal/pipeline"
	"github.com/dgnsrekt/readout/internal/synth"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string

	rootCmd = &cobra.Command{
		Use:   "readout [PATH]...",
		Short: "Convert documents to audio, hands-free",
		Long:  "\nConvert text and markdown documents to audio files, one or many at a time.",
		Example: `  readout notes.md
  readout ~/articles --concurrency 4
  readout report.txt --itunes`,
		SilenceErrors: false,
		SilenceUsage:  true,
		Args:          cobra.ArbitraryArgs,
		RunE:          execute,
	}
)

func execute(_ *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no input files given (try: readout document.txt)")
	}

	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return err
	}

	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	log.SetReportTimestamp(false)

	backend, err := buildBackend(cfg)
	if err != nil {
		return err
	}
	if !backend.Available() {
		return fmt.Errorf("speech engine %q is not available on this system", backend.Name())
	}

	var importer catalog.Importer = catalog.NopImporter{}
	if cfg.ITunesEnabled {
		music := &catalog.MusicImporter{}
		if !music.Available() {
			return fmt.Errorf("iTunes import requested but osascript is not available")
		}
		importer = music
	}

	resolver := &outpath.Resolver{
		OutputDir: cfg.OutputDir,
		Staged:    cfg.ITunesEnabled && cfg.OutputDir == "" && !cfg.DirectOutput,
		Overwrite: cfg.OverwriteExisting,
	}

	temps := outpath.NewTempSet()
	bus := event.NewBus()
	defer bus.Close()

	coord := synth.NewCoordinator(backend, os.TempDir())
	pipe := pipeline.New(extract.New(), coord, importer, resolver, temps, bus)

	sched := batch.New(pipe, bus, temps, batch.Options{
		Concurrency: cfg.Concurrency,
		Pipeline: pipeline.Config{
			Retries:         cfg.Retries,
			ContinueOnError: cfg.ContinueOnError,
			ITunesEnabled:   cfg.ITunesEnabled,
			Synth: synth.Options{
				ChunkingEnabled:  cfg.ChunkingEnabled,
				MaxWordsPerChunk: cfg.ChunkWords,
				ChunkTimeout:     cfg.ChunkTimeout,
			},
		},
	})

	events := bus.Subscribe(256)
	rendered := make(chan struct{})
	go func() {
		defer close(rendered)
		renderEvents(events)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		_ = sched.Stop()
	}()

	summary, results, err := sched.Run(ctx, args)

	bus.Close()
	<-rendered

	printSummary(summary, results)
	return err
}

// renderEvents drains the bus and logs each event until the bus closes.
func renderEvents(events <-chan event.Event) {
	for e := range events {
		switch e.Type {
		case event.WorkflowStarted:
			log.Info("Starting", "inputs", len(e.Files))
		case event.WorkflowFilesDiscovered:
			log.Info("Found files to convert", "count", e.Count)
		case event.WorkflowProgress:
			log.Info(fmt.Sprintf("Progress %3.0f%%", e.Progress*100),
				"done", e.Processed, "total", e.Total)
		case event.WorkflowError:
			log.Error("Batch error", "phase", e.Phase, "error", e.Error)
		case event.FileStarted:
			log.Info("Converting", "file", filepath.Base(e.Path))
		case event.FileCompleted:
			log.Info("Finished", "file", filepath.Base(e.Path))
		case event.FileFailed:
			log.Error("Failed", "file", filepath.Base(e.Path), "step", e.Step, "error", e.Error)
		case event.FileWarning:
			log.Warn(e.Reason, "file", filepath.Base(e.Path))
		case event.OperationRetry:
			log.Warn("Retrying step", "file", filepath.Base(e.Path), "step", e.Step, "attempt", e.Attempt)
		case event.WorkflowCompleted:
			// the summary is printed after the run returns
		}
	}
}

func printSummary(summary batch.Summary, results []pipeline.Outcome) {
	if summary.TotalFiles == 0 {
		return
	}

	var totalBytes uint64
	for _, r := range results {
		if !r.Success {
			continue
		}
		step, ok := r.Steps[pipeline.StepConvert]
		if !ok || step.Status != pipeline.StatusSuccess {
			continue
		}
		if res, ok := step.Payload.(*synth.Result); ok {
			if fi, err := os.Stat(res.AudioPath); err == nil {
				totalBytes += uint64(fi.Size())
			}
		}
	}

	log.Info("Done",
		"converted", summary.SuccessfulFiles,
		"failed", summary.FailedFiles,
		"total", summary.TotalFiles,
		"audio", humanize.Bytes(totalBytes),
		"took", summary.ProcessingTime.Round(100*time.Millisecond))
}

func buildBackend(cfg config.Config) (synth.Backend, error) {
	switch cfg.Engine {
	case "say":
		return &synth.SayBackend{Voice: cfg.Voice, Rate: cfg.Rate}, nil
	case "piper":
		return synth.NewPiperBackend("", cfg.PiperModel)
	default:
		return nil, fmt.Errorf("unknown engine %q", cfg.Engine)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	defaults := config.Default()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.Flags().IntP("concurrency", "j", defaults.Concurrency, "files converted in parallel")
	rootCmd.Flags().Int("retries", defaults.Retries, "per-step retry budget")
	rootCmd.Flags().Bool("continue-on-error", defaults.ContinueOnError, "keep going past failed files")
	rootCmd.Flags().Bool("itunes", defaults.ITunesEnabled, "add finished audio to the Music library")
	rootCmd.Flags().StringP("output", "o", defaults.OutputDir, "directory for finished audio (default: next to each source)")
	rootCmd.Flags().Bool("direct", defaults.DirectOutput, "write next to sources even when importing to iTunes")
	rootCmd.Flags().BoolP("overwrite", "f", defaults.OverwriteExisting, "replace audio files that already exist")
	rootCmd.Flags().String("engine", defaults.Engine, "speech engine (say or piper)")
	rootCmd.Flags().StringP("voice", "v", defaults.Voice, "voice name (engine default when empty)")
	rootCmd.Flags().IntP("rate", "r", defaults.Rate, "speaking rate in words per minute (0 = engine default)")
	rootCmd.Flags().String("piper-model", defaults.PiperModel, "path to the piper .onnx model")
	rootCmd.Flags().Bool("chunking", defaults.ChunkingEnabled, "split long documents before synthesis")
	rootCmd.Flags().Int("chunk-words", defaults.ChunkWords, "word budget per chunk")
	rootCmd.Flags().Duration("chunk-timeout", defaults.ChunkTimeout, "synthesis timeout per chunk")
	rootCmd.Flags().Bool("debug", defaults.Debug, "debug logging")

	// Config bindings
	_ = viper.BindPFlag("concurrency", rootCmd.Flags().Lookup("concurrency"))
	_ = viper.BindPFlag("retries", rootCmd.Flags().Lookup("retries"))
	_ = viper.BindPFlag("continue_on_error", rootCmd.Flags().Lookup("continue-on-error"))
	_ = viper.BindPFlag("itunes.enabled", rootCmd.Flags().Lookup("itunes"))
	_ = viper.BindPFlag("output.dir", rootCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("output.direct", rootCmd.Flags().Lookup("direct"))
	_ = viper.BindPFlag("output.overwrite", rootCmd.Flags().Lookup("overwrite"))
	_ = viper.BindPFlag("engine.name", rootCmd.Flags().Lookup("engine"))
	_ = viper.BindPFlag("engine.voice", rootCmd.Flags().Lookup("voice"))
	_ = viper.BindPFlag("engine.rate", rootCmd.Flags().Lookup("rate"))
	_ = viper.BindPFlag("engine.piper_model", rootCmd.Flags().Lookup("piper-model"))
	_ = viper.BindPFlag("chunking.enabled", rootCmd.Flags().Lookup("chunking"))
	_ = viper.BindPFlag("chunking.max_words", rootCmd.Flags().Lookup("chunk-words"))
	_ = viper.BindPFlag("chunking.timeout", rootCmd.Flags().Lookup("chunk-timeout"))
	_ = viper.BindPFlag("debug", rootCmd.Flags().Lookup("debug"))

	rootCmd.AddCommand(configCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "readout")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find the configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "readout")}, dirs...)
	}

	if c := os.Getenv("READOUT_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("readout")
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "readout.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
