package cli

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rickgao/traffic-data/internal/api"
	"github.com/rickgao/traffic-data/internal/config"
	"github.com/rickgao/traffic-data/internal/download"
	"github.com/rickgao/traffic-data/internal/metrics"
	"github.com/rickgao/traffic-data/internal/model"
	"github.com/rickgao/traffic-data/internal/region"
	"github.com/rickgao/traffic-data/internal/seriesfile"
)

// pushTimeout bounds the final Pushgateway push.
const pushTimeout = 10 * time.Second

type downloadFlags struct {
	configPath     string
	startDate      string
	endDate        string
	outputDir      string
	errorDir       string
	regionsFile    string
	regions        []string
	delay          time.Duration
	maxRetries     int
	retryDelay     time.Duration
	timeout        time.Duration
	baseURL        string
	pushgatewayURL string
	logs           logFlags
}

// NewDownloadCommand returns the download command.
func NewDownloadCommand() *cobra.Command {
	var f downloadFlags

	cmd := newCommand("download", "Download traffic fraction series per region")
	cmd.Long = `Download traffic fraction data for every region, one calendar month per
request, and write one series file per region to the output directory.

Regions come from --regions, then --countries-file, then the config file,
then the built-in list. Flags override values from --config.`
	cmd.Args = cobra.NoArgs
	f.register(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := f.load(cmd)
		if err != nil {
			return err
		}
		return runDownload(cmd.Context(), cfg)
	}

	return cmd
}

func (f *downloadFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.configPath, "config", "", "YAML config file")
	flags.StringVar(&f.startDate, "start-date", config.DefaultStartDate, "start date (YYYY-MM-DD)")
	flags.StringVar(&f.endDate, "end-date", "", "end date, inclusive (YYYY-MM-DD, default today)")
	flags.StringVar(&f.outputDir, "output-dir", config.DefaultOutputDir, "directory for series files")
	flags.StringVar(&f.errorDir, "error-dir", config.DefaultErrorDir, "directory for unparseable responses")
	flags.StringVar(&f.regionsFile, "countries-file", "", "file with one region code per line")
	flags.StringSliceVar(&f.regions, "regions", nil, "comma separated region codes")
	flags.Var(newSecondsValue(config.DefaultDelay, &f.delay), "delay", "delay between requests, in seconds (0.5) or as a duration (500ms)")
	flags.IntVar(&f.maxRetries, "max-retries", config.DefaultMaxRetries, "attempts per request")
	flags.Var(newSecondsValue(config.DefaultRetryBackoff, &f.retryDelay), "retry-delay", "first retry backoff in seconds or as a duration, doubled per retry")
	flags.Var(newSecondsValue(config.DefaultAPITimeout, &f.timeout), "timeout", "per-request timeout in seconds or as a duration")
	flags.StringVar(&f.baseURL, "base-url", config.DefaultBaseURL, "traffic fraction endpoint")
	flags.StringVar(&f.pushgatewayURL, "pushgateway-url", "", "push run metrics to this Pushgateway")
	f.logs.register(cmd)
}

// load reads the config file, if any, and applies explicitly set flags.
func (f *downloadFlags) load(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.LoadWithDefaults(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	if changed("start-date") {
		cfg.Download.StartDate = f.startDate
	}
	if changed("end-date") {
		cfg.Download.EndDate = f.endDate
	}
	if changed("output-dir") {
		cfg.Download.OutputDir = f.outputDir
	}
	if changed("error-dir") {
		cfg.Download.ErrorDir = f.errorDir
	}
	if changed("countries-file") {
		cfg.Download.RegionsFile = f.regionsFile
		cfg.Download.Regions = nil
	}
	if changed("regions") {
		cfg.Download.Regions = f.regions
	}
	if changed("delay") {
		cfg.Download.Delay = f.delay
	}
	if changed("max-retries") {
		cfg.API.MaxRetries = f.maxRetries
	}
	if changed("retry-delay") {
		cfg.API.RetryBackoff = f.retryDelay
	}
	if changed("timeout") {
		cfg.API.Timeout = f.timeout
	}
	if changed("base-url") {
		cfg.API.BaseURL = f.baseURL
	}
	if changed("pushgateway-url") {
		cfg.Metrics.PushgatewayURL = f.pushgatewayURL
	}
	f.logs.apply(cmd, &cfg.Logging)

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

func runDownload(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}

	logger, closeLog, err := startLogger(cfg.Logging, "download")
	if err != nil {
		return err
	}
	defer closeLog()

	start, end, err := cfg.Download.Range()
	if err != nil {
		return err
	}

	for _, dir := range []string{cfg.Download.OutputDir, cfg.Download.ErrorDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "create directory %s", dir)
		}
	}

	regions, err := region.Resolve(cfg.Download.Regions, cfg.Download.RegionsFile)
	if err != nil {
		logger.Error("no usable region codes", zap.Error(err))
		return err
	}

	m := metrics.New()
	client := api.NewClient(cfg.API.BaseURL,
		api.WithProductID(cfg.API.ProductID),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, cfg.API.RetryBackoff),
		api.WithErrorDir(cfg.Download.ErrorDir),
		api.WithMetrics(m),
		api.WithLogger(logger),
	)

	outputDir := cfg.Download.OutputDir
	writer := download.SeriesHandlerFunc(func(code string, points []model.DataPoint) error {
		path, err := seriesfile.Write(code, points, outputDir)
		if err != nil {
			return err
		}
		logger.Debug("saved series", zap.String("region", code), zap.String("path", path))
		return nil
	})

	d := download.New(download.Config{
		Start: start,
		End:   end,
		Delay: cfg.Download.Delay,
	}, client, writer, m, logger)

	ctx, cancel := signalContext(parent)
	defer cancel()

	stats, runErr := d.Run(ctx, regions)
	stats.LogSummary(logger)

	if cfg.Metrics.PushgatewayURL != "" {
		pushCtx, pushCancel := context.WithTimeout(context.Background(), pushTimeout)
		err := m.Push(pushCtx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job, map[string]string{"run_id": d.RunID()})
		pushCancel()
		if err != nil {
			logger.Warn("metrics push failed", zap.Error(err))
		}
	}

	if runErr != nil {
		return errors.Wrap(runErr, "download interrupted")
	}
	logger.Info("download complete", zap.String("output_dir", outputDir))
	return nil
}
