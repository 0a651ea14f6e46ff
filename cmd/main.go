package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/podium/internal/config"
	"github.com/okian/podium/pkg/logger"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// cli carries the loaded configuration and the process streams to subcommands.
type cli struct {
	cfg        *config.Config
	configFile string
	logLevel   string

	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	c := &cli{in: in, out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "podium",
		Short: "Monte Carlo championship probability estimator",
		Long: `podium estimates each competitor's chance of winning a points-based
championship by simulating the remaining events many times.

Configuration is read from defaults, an optional YAML file (PODIUM_CONFIG),
a .env file and PODIUM_* environment variables, in that order.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = logger.Sync()
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&c.configFile, "config", "", "YAML config file (overrides PODIUM_CONFIG)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newSimulateCmd(c),
		newServeCmd(c),
		newLoadtestCmd(c),
	)
	return root
}

// setup loads configuration and initializes logging before any subcommand runs.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if c.configFile != "" {
		if err := os.Setenv(config.EnvConfigFile, c.configFile); err != nil {
			return err
		}
	}

	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}

	// Logs go to stderr so reports on stdout stay clean.
	if err := logger.InitWithWriter(c.errOut, cfg.LogFormat); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	c.cfg = cfg
	return nil
}
