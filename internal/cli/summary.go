package cli

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/crimson-sun/apptimeline/internal/config"
	"github.com/crimson-sun/apptimeline/internal/model"
	"github.com/crimson-sun/apptimeline/internal/plot"
)

// printSummary writes the end-of-run report. report is nil in skip mode.
func printSummary(w io.Writer, cfg config.Config, report *model.Report, charts plot.Files) {
	p := message.NewPrinter(language.English)
	row := func(label, value string) {
		fmt.Fprintf(w, "  %s %s\n", styleLabel.Render(label), styleValue.Render(value))
	}

	fmt.Fprintln(w, styleSuccess.Render("Analysis complete."))
	if report != nil {
		if st, err := report.Stats(); err == nil {
			row("Clusters", p.Sprintf("%d", st.Clusters))
			row("Applications", p.Sprintf("%d", st.Applications))
			row("Avg per cluster", p.Sprintf("%.2f", st.AvgPerCluster))
		}
		row("Files read", p.Sprintf("%d (%s)", report.Scan.Files, humanize.Bytes(uint64(report.Scan.Bytes))))
		row("Lines scanned", p.Sprintf("%d", report.Scan.Lines))
		row("Lines kept", p.Sprintf("%d", report.Scan.Kept))
		if report.Scan.EmptyIDs > 0 {
			fmt.Fprintln(w, styleWarning.Render(p.Sprintf("  %d lines came from paths without application identifiers", report.Scan.EmptyIDs)))
		}
		fmt.Fprintln(w, styleHint.Render("  run "+report.RunID))
	}

	fmt.Fprintln(w)
	if cfg.Output.HasSink("files") {
		row("Timeline", cfg.Output.Path(config.TimelineFile))
		row("Cluster summary", cfg.Output.Path(config.ClusterSummaryFile))
		row("Stats", cfg.Output.Path(config.StatsFile))
	}
	if cfg.Output.HasSink("sqlite") {
		row("Database", cfg.Output.SQLiteFile())
	}
	row("Bar chart", charts.BarChart)
	row("Density plot", charts.DensityPlot)
}
