package main

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/inkeep-mcp/callbacks"
	"github.com/effective-security/inkeep-mcp/mcp"
	"github.com/effective-security/inkeep-mcp/pkg/config"
	"github.com/effective-security/xlog"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/inkeep-mcp", "cmd")

type cli struct {
	cfgFile  string
	envFile  string
	logLevel string
	verbose  bool

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "inkeep-mcp",
		Short: "MCP server with the Inkeep documentation tools",
		Long: `inkeep-mcp serves the search-inkeep-docs and guidance-on-agents-sdk tools
over the Model Context Protocol.

The Inkeep API key is read from INKEEP_API_KEY or the config file.
Without the key the missing_key_policy applies:
  disable_all     - no tools are registered (default)
  disable_search  - only guidance-on-agents-sdk is registered`,
		SilenceUsage:      true,
		PersistentPreRunE: c.preRun,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&c.cfgFile, "config", "c", "", "config file, .yaml, .json or .toml")
	flags.StringVar(&c.envFile, "env-file", "", "load environment variables from the .env file")
	flags.StringVar(&c.logLevel, "log-level", "", "log level: ERROR, WARNING, INFO, DEBUG")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "print the tool events to stderr")

	root.AddCommand(
		newServeCmd(c),
		newToolsCmd(c),
		newCallCmd(c),
		newConfigCmd(c),
		newVersionCmd(),
	)
	return root
}

func (c *cli) preRun(cmd *cobra.Command, _ []string) error {
	// stdout carries the protocol in stdio mode
	xlog.SetFormatter(xlog.NewStringFormatter(cmd.ErrOrStderr()))

	if c.envFile != "" {
		if err := godotenv.Load(c.envFile); err != nil {
			return errors.Wrapf(err, "unable to load env file: %s", c.envFile)
		}
	}

	cfg, err := config.Load(c.cfgFile)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.LogLevel = strings.ToUpper(c.logLevel)
	}
	if err := setLogLevel(cfg.LogLevel); err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

func setLogLevel(level string) error {
	switch strings.ToUpper(level) {
	case "ERROR":
		xlog.SetGlobalLogLevel(xlog.ERROR)
	case "WARNING":
		xlog.SetGlobalLogLevel(xlog.WARNING)
	case "", "INFO":
		xlog.SetGlobalLogLevel(xlog.INFO)
	case "DEBUG":
		xlog.SetGlobalLogLevel(xlog.DEBUG)
	default:
		return errors.Errorf("invalid log level: %s", level)
	}
	return nil
}

func (c *cli) newServer(cmd *cobra.Command) (*mcp.Server, error) {
	var opts []mcp.Option
	if c.verbose {
		opts = append(opts, mcp.WithCallback(callbacks.NewFanout(
			callbacks.NewPackageLogger(logger),
			callbacks.NewPrinter(cmd.ErrOrStderr(), callbacks.ModeVerbose),
		)))
	}
	return mcp.New(c.cfg, opts...)
}
