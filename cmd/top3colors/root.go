package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ironsheep/top3colors/internal/config"
	"github.com/ironsheep/top3colors/internal/imaging"
	"github.com/ironsheep/top3colors/internal/pipeline"
	"github.com/spf13/cobra"
)

// logLevelEnv selects the log level when --verbose is not given.
const logLevelEnv = "TOP3COLORS_LOG_LEVEL"

// usageText is printed when the command runs without arguments.
const usageText = `Top Three Colors Finder:
------------------------
The first parameter is an input file name - mandatory
The second parameter is an output file name - mandatory
The third parameter is an explicit concurrency level - optional
`

// rootOptions holds the flag values of the root command.
type rootOptions struct {
	configPath string
	timeout    time.Duration
	userAgent  string
	proxy      string
	verbose    bool
}

// NewRootCmd creates the root command for top3colors.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "top3colors <inputFile> <outputFile> [concurrencyLevel]",
		Short: "Find the three most frequent colors of images listed in a file",
		Long: `top3colors reads one image URL per line from the input file, downloads
each image, and appends "url,#RRGGBB,#RRGGBB,#RRGGBB" to the output file with
the colors ordered from most to least frequent.

The output file is recreated on every run. Records are written in completion
order. The first URL that cannot be fetched or decoded stops the run; records
written before that stay in the output file.

Without a concurrency level, the number of parallel downloads is derived from
the memory budget (GOMEMLIMIT, or a quarter of the container or host memory,
512 MiB per worker) and the CPU count.`,
		Version:       fmt.Sprintf("%s (built %s, commit %s)", Version, BuildTime, GitCommit),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTop3(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "",
		"YAML configuration file (default $XDG_CONFIG_HOME/top3colors/config.yaml)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "HTTP timeout per image (overrides config)")
	cmd.Flags().StringVar(&opts.userAgent, "user-agent", "", "HTTP User-Agent header (overrides config)")
	cmd.Flags().StringVar(&opts.proxy, "proxy", "", "proxy URL, e.g. socks5://127.0.0.1:9050 (overrides config)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")

	return cmd
}

// runTop3 validates the arguments, builds the pipeline and runs it.
func runTop3(cmd *cobra.Command, opts *rootOptions, args []string) error {
	start := time.Now()

	if len(args) == 0 {
		fmt.Fprint(cmd.OutOrStdout(), usageText)
		return nil
	}
	if len(args) < 2 || len(args) > 3 {
		return &pipeline.ArgumentError{Err: pipeline.ErrArgumentCount}
	}

	override := 0
	if len(args) == 3 {
		n, err := pipeline.ParseConcurrency(args[2])
		if err != nil {
			return err
		}
		override = n
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("cannot load configuration: %w", err)
	}
	applyFlags(cmd, opts, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(cmd.ErrOrStderr(), opts.verbose)

	fetcher, err := imaging.NewFetcher(imaging.FetcherOptions{
		Timeout:      cfg.Timeout,
		UserAgent:    cfg.UserAgent,
		MaxBodyBytes: cfg.MaxBodyBytes,
		Proxy:        cfg.Proxy,
	})
	if err != nil {
		return err
	}

	memory := cfg.MemoryLimitBytes
	if memory == 0 {
		memory = pipeline.MemoryLimit()
	}
	workers := pipeline.EstimateWorkers(memory, cfg.WorkerMemoryBytes, pipeline.AvailableCPUs(), override)

	p := pipeline.New(fetcher,
		pipeline.WithWorkers(workers),
		pipeline.WithLogger(logger),
	)
	res, err := p.Run(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}

	logger.Debug("run finished", "records", res.Records, "pipeline_elapsed", res.Elapsed)
	fmt.Fprintf(cmd.OutOrStdout(), "Finished processing URLs in %d seconds.\n",
		int64(time.Since(start)/time.Second))
	return nil
}

// applyFlags copies explicitly set flags over the loaded configuration.
func applyFlags(cmd *cobra.Command, opts *rootOptions, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("timeout") {
		cfg.Timeout = opts.timeout
	}
	if flags.Changed("user-agent") {
		cfg.UserAgent = opts.userAgent
	}
	if flags.Changed("proxy") {
		cfg.Proxy = opts.proxy
	}
}

// newLogger builds the stderr logger. The default level is Warn so that a
// failed run's stderr begins with the error message.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	switch strings.ToLower(os.Getenv(logLevelEnv)) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
