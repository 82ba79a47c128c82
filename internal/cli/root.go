// Package cli implements the apptimeline command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// options holds the values bound to command-line flags.
type options struct {
	netID       string
	skipExtract bool
	configPath  string
	logLevel    string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "apptimeline [master]",
		Short: "Build per-application timelines from cluster container logs",
		Long: `apptimeline reads container logs, extracts the cluster and application
identifiers from each log path and the timestamp from each line, and writes
an application timeline, a per-cluster summary, overall statistics and two
charts.

The optional master argument sets the degree of parallelism: "local" uses
one worker, "local[N]" uses N and "local[*]" one per CPU.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.netID, "net-id", "unknown", "identifier substituted into the source pattern")
	f.BoolVar(&opts.skipExtract, "skip-extract", false, "skip extraction and regenerate charts from the existing timeline CSV")

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	cmd.SetGlobalNormalizationFunc(normalizeFlag)
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// normalizeFlag accepts --skip-spark as the historical name of --skip-extract
// and underscores in place of dashes.
func normalizeFlag(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	name = strings.ReplaceAll(name, "_", "-")
	if name == "skip-spark" {
		name = "skip-extract"
	}
	return pflag.NormalizedName(name)
}

// Execute runs the CLI. SIGINT and SIGTERM cancel the run.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, styleWarning.Render("Interrupted."))
		} else {
			fmt.Fprintln(os.Stderr, styleError.Render("Error: "+err.Error()))
		}
	}
	return err
}
