// Package cli wires the catalog, report and web packages into the
// pricemachine command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/pricemachine/internal/catalog"
	"github.com/JonMunkholm/pricemachine/internal/config"
	"github.com/JonMunkholm/pricemachine/internal/logging"
	"github.com/JonMunkholm/pricemachine/internal/metrics"
)

// Execute runs the root command against the process streams.
func Execute() {
	cmd := NewRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// app is the state shared by every subcommand after PersistentPreRunE.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	cfg     *config.Config
	logger  *slog.Logger
	engine  *catalog.Engine
	metrics *metrics.Metrics
}

// NewRootCmd builds the command tree. With no subcommand it starts the
// interactive search session.
func NewRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{in: in, out: out, errOut: errOut}

	var (
		configPath string
		dir        string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:           "pricemachine",
		Short:         "Search and compare CSV price lists by price per kilogram",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if configPath == "" {
				configPath = os.Getenv(config.FileEnv)
			}
			cfg, err := config.LoadFile(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("dir") {
				cfg.Catalog.Dir = dir
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Logging.Level = logLevel
			}
			a.setup(cfg)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runInteractive(cmd.Context())
		},
	}

	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default: $"+config.FileEnv+")")
	cmd.PersistentFlags().StringVarP(&dir, "dir", "d", "", "directory with price lists (default: working directory)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(
		searchCmd(a),
		exportCmd(a),
		filesCmd(a),
		serveCmd(a),
	)
	return cmd
}

func (a *app) setup(cfg *config.Config) {
	a.cfg = cfg
	a.logger = logging.Setup(cfg.Logging.Level, cfg.Logging.Format, a.errOut)
	a.engine = catalog.NewEngine(catalog.WithLogger(a.logger))
	if cfg.Metrics.Enabled {
		a.metrics = metrics.New()
	}
	a.logger.Debug("configuration loaded", "config", cfg.String())
}

// load reads the configured directory into the engine.
func (a *app) load() (*catalog.LoadResult, error) {
	start := time.Now()
	res, err := a.engine.Load(a.cfg.Catalog.Dir)
	if err != nil {
		return nil, err
	}
	a.metrics.ObserveLoad(res, a.engine.Len(), time.Since(start))
	return res, nil
}

// printError writes err with its user-facing message and support code.
func printError(w io.Writer, err error) {
	msg := catalog.MapError(err)
	fmt.Fprintf(w, "Error: %v\n", err)
	if msg.Code != "ERR000" {
		fmt.Fprintf(w, "  %s %s [%s]\n", msg.Message, msg.Action, msg.Code)
	}
}
