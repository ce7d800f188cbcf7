package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ironsheep/cartoonify-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Environment variables consulted when the matching flag is not given.
const (
	envLogLevel  = "CARTOONIFY_LOG_LEVEL"
	envLogFormat = "CARTOONIFY_LOG_FORMAT"
)

type rootOptions struct {
	logLevel  string
	logFormat string
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "cartoonify-mcp",
		Short: "MCP server that turns photos into cartoons",
		Long: `cartoonify-mcp renders photos as cartoons: bold dark outlines over flat
color regions.

Run without a subcommand it serves the image_load, image_cartoonify and
cartoon_parameters tools over MCP (JSON-RPC on stdin/stdout). Configure it in
your MCP client (e.g., Claude Desktop). Logs go to stderr.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(stderr, opts.logLevel, opts.logFormat)
			if err != nil {
				return err
			}
			logger.WithFields(logrus.Fields{
				"version":    Version,
				"build_time": BuildTime,
				"git_commit": GitCommit,
			}).Debug("starting cartoonify MCP server")

			srv := server.New(logger, Version)
			if err := srv.Run(); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", envOr(envLogLevel, "info"),
		"log level: trace, debug, info, warn, error (env "+envLogLevel+")")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", envOr(envLogFormat, "text"),
		"log format: text or json (env "+envLogFormat+")")

	cmd.AddCommand(newRenderCmd(opts), newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "cartoonify-mcp %s\n", Version)
			fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
		},
	}
}

// envOr returns the value of the environment variable key, or def when it is
// unset or empty.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
