package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kraftysprouts/pinmaker"
	"github.com/kraftysprouts/pinmaker/internal/config"
	"github.com/kraftysprouts/pinmaker/internal/logger"
	"github.com/kraftysprouts/pinmaker/store"
)

type rootFlags struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "pinmaker",
		Short:         "Pinmaker turns images into editable, regenerable design templates",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to YAML config file")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(newAnalyzeCmd(flags))
	cmd.AddCommand(newTemplateCmd(flags))
	cmd.AddCommand(newPreviewCmd(flags))
	cmd.AddCommand(newFetchCmd(flags))

	return cmd
}

// newService builds a Service from the config file (or defaults) and the
// verbosity flag. The sqlite backend is required for CLI use across
// invocations; the memory backend only makes sense within one command.
func newService(flags *rootFlags) (*pinmaker.Service, error) {
	cfg := config.Default()
	if flags.configPath != "" {
		loaded, err := config.Load(flags.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	level := cfg.Log.Level
	if flags.verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Options{
		Level:         level,
		HumanReadable: true,
		Writer:        os.Stderr,
	})
	if err != nil {
		return nil, err
	}

	opts := []pinmaker.Option{
		pinmaker.WithLogger(log),
		pinmaker.WithWorkers(cfg.Pipeline.Workers),
		pinmaker.WithQueueDepth(cfg.Pipeline.QueueDepth),
		pinmaker.WithTimeout(cfg.Pipeline.Timeout),
		pinmaker.WithRetention(cfg.Pipeline.Retention),
		pinmaker.WithSweepSchedule(cfg.Store.SweepSchedule),
	}

	if cfg.Store.Backend == "sqlite" {
		path := cfg.Store.Path
		if path == "" {
			path = "pinmaker.db"
		}
		st, err := store.OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		opts = append(opts, pinmaker.WithStore(st))
	}

	if cfg.Preview.FontFile != "" {
		opts = append(opts, pinmaker.WithFontFile(cfg.Preview.FontFile))
	}

	if rec, err := newRecognizer(cfg.Pipeline.OCRLanguage); err == nil && rec != nil {
		opts = append(opts, pinmaker.WithRecognizer(rec))
	} else if err != nil {
		fmt.Fprintf(os.Stderr, "ocr unavailable, text detection disabled: %v\n", err)
	}

	return pinmaker.New(opts...)
}
