package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/crimson-sun/apptimeline/internal/config"
	"github.com/crimson-sun/apptimeline/internal/output"
	"github.com/crimson-sun/apptimeline/internal/output/file"
	"github.com/crimson-sun/apptimeline/internal/output/multi"
	"github.com/crimson-sun/apptimeline/internal/output/sqlite"
	"github.com/crimson-sun/apptimeline/internal/output/stdout"
	"github.com/crimson-sun/apptimeline/internal/output/webhook"
)

// buildOutput opens every sink named in cfg.Sinks, in order.
func buildOutput(ctx context.Context, cfg config.OutputConfig, w io.Writer) (output.Output, error) {
	var sinks []multi.Sink
	for _, name := range cfg.Sinks {
		var out output.Output
		switch name {
		case "files":
			out = file.New(file.Paths{
				Timeline:       cfg.Path(config.TimelineFile),
				ClusterSummary: cfg.Path(config.ClusterSummaryFile),
				Stats:          cfg.Path(config.StatsFile),
			})
		case "sqlite":
			db, err := sqlite.Open(ctx, cfg.SQLiteFile())
			if err != nil {
				multi.New(sinks...).Close()
				return nil, fmt.Errorf("open sqlite output: %w", err)
			}
			out = db
		case "stdout":
			out = stdout.NewWriter(w, cfg.Pretty)
		case "webhook":
			out = webhook.New(cfg.WebhookURL, webhook.WithHeaders(cfg.WebhookHeaders))
		default:
			multi.New(sinks...).Close()
			return nil, fmt.Errorf("unknown output sink %q", name)
		}
		sinks = append(sinks, multi.Sink{Name: name, Output: out})
	}
	if len(sinks) == 1 {
		return sinks[0].Output, nil
	}
	return multi.New(sinks...), nil
}
