package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/apptimeline/internal/buildinfo"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Show version information",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s %s\n", styleBrand.Render("apptimeline"), styleVersion.Render(buildinfo.Version))
			fmt.Fprintf(w, "  %s %s\n", styleLabel.Render("Commit:"), buildinfo.CommitHash)
			fmt.Fprintf(w, "  %s %s\n", styleLabel.Render("Built:"), buildinfo.BuildDate)
			fmt.Fprintf(w, "  %s %s/%s\n", styleLabel.Render("OS/Arch:"), runtime.GOOS, runtime.GOARCH)
			fmt.Fprintf(w, "  %s %s\n", styleLabel.Render("Go:"), runtime.Version())
		},
	}
}
