package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/killallgit/r2get/internal/models"
	"github.com/killallgit/r2get/pkg/config"
)

// Set at build time with -ldflags "-X github.com/killallgit/r2get/cmd.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func newVersionCmd() *cobra.Command {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version and catalog settings",
		Long: `Print the r2get build together with the program catalog it talks to,
the station name written into tags and the output formats it can produce.

Catalog values come from the same config file and R2GET_* environment
variables as the get command.`,
		Args: cobra.NoArgs,
		Run:  runVersion,
	}
	versionCmd.Flags().BoolP("short", "s", false, "print just the version number")
	return versionCmd
}

func runVersion(cmd *cobra.Command, args []string) {
	out := cmd.OutOrStdout()
	if short, _ := cmd.Flags().GetBool("short"); short {
		fmt.Fprintf(out, "v%s\n", Version)
		return
	}

	baseURL, channel, station := config.DefaultBaseURL, "raadio2", "R2"
	cfg, err := loadConfig(cmd)
	if err == nil {
		baseURL, channel, station = cfg.API.BaseURL, cfg.API.Channel, cfg.Station.Name
	}

	formats := make([]string, 0, len(models.AllFormats()))
	for _, f := range models.AllFormats() {
		formats = append(formats, strings.TrimPrefix(f.Extension(), "."))
	}

	fmt.Fprintf(out, "r2get v%s (%s, built %s, %s %s/%s)\n",
		Version, GitCommit, BuildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(out, "catalog:  %s\n", baseURL)
	fmt.Fprintf(out, "channel:  %s\n", channel)
	fmt.Fprintf(out, "station:  %s\n", station)
	fmt.Fprintf(out, "formats:  %s\n", strings.Join(formats, " "))
	if err != nil {
		fmt.Fprintf(out, "config:   %v\n", err)
	}
}
