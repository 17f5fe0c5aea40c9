package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/iwvelando/signal-timing/internal/config"
	"github.com/iwvelando/signal-timing/internal/history"
	"github.com/iwvelando/signal-timing/internal/logging"
	"github.com/iwvelando/signal-timing/internal/simulation"
	"github.com/iwvelando/signal-timing/pkg/constants"
	"github.com/iwvelando/signal-timing/pkg/output"
	"github.com/iwvelando/signal-timing/pkg/validation"
	"go.uber.org/zap"
)

type options struct {
	configLocation string
	configSet      bool
	preset         string
	outputFormat   string
	logLevel       string
	showHistory    bool
	clearHistory   bool
	noSave         bool
}

func parseFlags(args []string) (options, error) {
	var opts options
	flags := flag.NewFlagSet("signal-timing", flag.ContinueOnError)
	flags.StringVar(&opts.configLocation, "config", constants.DefaultConfigFile, "path to configuration file")
	flags.StringVar(&opts.preset, "preset", "", "simulate a built-in preset (rushHour, normalDay, lightTraffic, unevenFlow)")
	flags.StringVar(&opts.outputFormat, "output-format", "", "type of output override: pretty, csv, json")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flags.BoolVar(&opts.showHistory, "history", false, "print stored runs instead of simulating")
	flags.BoolVar(&opts.clearHistory, "clear-history", false, "remove all stored runs")
	flags.BoolVar(&opts.noSave, "no-save", false, "do not store this run in history")
	if err := flags.Parse(args); err != nil {
		return opts, err
	}
	flags.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			opts.configSet = true
		}
	})
	return opts, nil
}

// loadConfiguration loads the run configuration. Without an explicit -config
// a missing default file is not an error.
func loadConfiguration(opts options) (*config.Configuration, error) {
	conf, err := config.LoadConfiguration(opts.configLocation)
	if err != nil && !opts.configSet && errors.Is(err, fs.ErrNotExist) {
		return config.DefaultConfiguration()
	}
	return conf, err
}

func run(args []string, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	conf, err := loadConfiguration(opts)
	if err != nil {
		return fmt.Errorf("failed to load configuration at %s: %w", opts.configLocation, err)
	}

	logger, err := logging.NewLogger(conf.Logging, opts.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if opts.outputFormat != "" {
		outputFormat = opts.outputFormat
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}

	if opts.preset != "" {
		conf.Preset = opts.preset
	}

	// History is best effort: a store that cannot be opened only disables it.
	repo, err := history.Open(logger, conf.History.Options())
	if err != nil {
		logger.Warn("history unavailable",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	if repo != nil {
		defer func() {
			if err := repo.Close(); err != nil {
				logger.Warn("failed to close history",
					zap.String("op", "main"),
					zap.Error(err),
				)
			}
		}()
	}
	recorder := history.NewRecorder(logger, repo)

	if opts.clearHistory {
		recorder.ClearHistory()
		logger.Info("simulation history cleared", zap.String("op", "main"))
		return nil
	}

	if opts.showHistory {
		return output.RenderHistory(stdout, outputFormat, recorder.GetHistory())
	}

	// Validate configuration and display any warnings
	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	optimizerOptions, err := conf.Optimizer.Options()
	if err != nil {
		return err
	}

	raw, err := conf.ResolveIntersection()
	if err != nil {
		return fmt.Errorf("failed to resolve intersection: %w", err)
	}

	runner := simulation.NewRunner(logger, simulation.WithOptimizerOptions(optimizerOptions))
	result := runner.Run(raw)

	if !opts.noSave {
		recorder.SaveResult(result)
	}

	return output.Render(stdout, outputFormat, result)
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logging.WriteFatal(os.Stdout, "signal-timing failed", err)
		os.Exit(1)
	}
}
