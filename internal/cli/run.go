package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/apptimeline/internal/config"
	"github.com/crimson-sun/apptimeline/internal/connector"
	"github.com/crimson-sun/apptimeline/internal/engine"
	"github.com/crimson-sun/apptimeline/internal/engine/extract"
	"github.com/crimson-sun/apptimeline/internal/logging"
	"github.com/crimson-sun/apptimeline/internal/model"
	"github.com/crimson-sun/apptimeline/internal/pipeline"
	"github.com/crimson-sun/apptimeline/internal/plot"
	"github.com/crimson-sun/apptimeline/internal/telemetry"
)

func run(cmd *cobra.Command, opts *options, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	logging.Init(cfg.Log.Format, logging.ParseLevel(cfg.Log.Level))

	if len(args) == 1 {
		master := args[0]
		if n, ok := config.WorkersForMaster(master, cfg.Engine.Workers); ok {
			cfg.Engine.Workers = n
		} else {
			slog.Warn("remote master not supported, running in-process", "master", master, "workers", cfg.Engine.Workers)
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry.Endpoint)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Warn("telemetry shutdown", "error", err)
		}
	}()

	var report *model.Report
	if opts.skipExtract {
		slog.Info("skipping extraction, using existing timeline", "step", "skip", "path", cfg.Output.Path(config.TimelineFile))
	} else {
		rep, err := extractTimeline(ctx, cfg, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		report = &rep
	}

	slog.Info("generating visualizations", "step", "plot")
	charts := plot.Files{
		BarChart:    cfg.Output.Path(config.BarChartFile),
		DensityPlot: cfg.Output.Path(config.DensityPlotFile),
	}
	if report != nil && !cfg.Output.HasSink("files") {
		err = plot.Render(report.Timeline, charts)
	} else {
		err = plot.RenderFromCSV(cfg.Output.Path(config.TimelineFile), charts)
	}
	if err != nil {
		return err
	}

	summaryOut := cmd.OutOrStdout()
	if cfg.Output.HasSink("stdout") {
		summaryOut = cmd.ErrOrStderr()
	}
	printSummary(summaryOut, cfg, report, charts)
	return nil
}

// loadConfig layers explicitly set flags over file and environment config.
func loadConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("net-id") {
		cfg.Source.NetID = opts.netID
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	return cfg, nil
}

// extractTimeline runs the extraction pipeline and writes every enabled sink.
func extractTimeline(ctx context.Context, cfg config.Config, stdout io.Writer) (model.Report, error) {
	pattern := cfg.SourcePattern()
	ctor, err := connector.Resolve(pattern)
	if err != nil {
		return model.Report{}, fmt.Errorf("source %s: %w", pattern, err)
	}
	conn, err := ctor(connector.ConnectorConfig{
		Endpoint:  cfg.Source.Endpoint,
		Region:    cfg.Source.Region,
		AccessKey: cfg.Source.AccessKey,
		SecretKey: cfg.Source.SecretKey,
		UseSSL:    cfg.Source.UseSSL,
	})
	if err != nil {
		return model.Report{}, fmt.Errorf("source %s: %w", pattern, err)
	}

	out, err := buildOutput(ctx, cfg.Output, stdout)
	if err != nil {
		return model.Report{}, err
	}

	p := pipeline.New(conn, engine.New(extract.New(cfg.Engine.StrictIDs)), out,
		pipeline.WithWorkers(cfg.Engine.Workers),
	)
	report, runErr := p.Run(ctx, pattern)
	closeErr := p.Close()
	if runErr != nil {
		return report, runErr
	}
	if closeErr != nil {
		return report, fmt.Errorf("close outputs: %w", closeErr)
	}

	// Sinks other than files tolerate an empty report; the run does not.
	if _, err := report.Stats(); errors.Is(err, model.ErrNoClusters) {
		return report, fmt.Errorf("no applications found under %s: %w", pattern, err)
	}
	return report, nil
}
