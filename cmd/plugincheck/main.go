package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jingkaihe/plugincheck/pkg/config"
	"github.com/jingkaihe/plugincheck/pkg/logger"
	"github.com/jingkaihe/plugincheck/pkg/presenter"
)

// Process exit statuses
const (
	exitPass  = 0
	exitFail  = 1
	exitFault = 2
)

// annotation marking commands that accept the package root as their argument
const rootArgAnnotation = "plugincheck/root-arg"

var errCheckFailed = errors.New("conformance check failed")

// exitError carries the exit status of an error that has already been shown
// to the user
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func exitCode(err error) int {
	if err == nil {
		return exitPass
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitFault
}

// cli holds the state shared by every subcommand of one invocation
type cli struct {
	v      *viper.Viper
	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{
		v:      config.NewViper(),
		stdout: stdout,
		stderr: stderr,
	}

	rootCmd := &cobra.Command{
		Use:   "plugincheck [root]",
		Short: "Check plugin package metadata against JSON Schemas",
		Long: `plugincheck discovers the agents, commands, skills and manifest of a plugin
package, extracts their metadata and validates it against JSON Schemas.

Running plugincheck without a subcommand is the same as "plugincheck check".`,
		Args:          cobra.MaximumNArgs(1),
		Annotations:   map[string]string{rootArgAnnotation: "true"},
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd, args)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runCheck(cmd.Context(), c.presenter())
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to a plugincheck.yaml config file")
	flags.StringP("root", "r", ".", "Plugin package root directory")
	flags.String("schemas-dir", "", "Directory holding <kind>.schema.json files for every checked kind")
	flags.StringSliceP("kind", "k", nil, "Kinds to check (agent, command, skill, plugin); defaults to all")
	flags.StringToString("pattern", nil, "Discovery pattern override per kind, e.g. agent=agents/**/*.md")
	flags.StringSlice("exclude", nil, "Glob patterns of document paths to skip")
	flags.StringP("output", "o", "text", "Output format (text, json)")
	flags.String("color", "auto", "Color mode (auto, always, never)")
	flags.BoolP("quiet", "q", false, "Only print failing kinds")
	flags.String("log-level", "warn", "Log level (debug, info, warn, error)")
	flags.String("log-format", "text", "Log format (text, json)")

	c.bind(flags.Lookup("root"), "root")
	c.bind(flags.Lookup("schemas-dir"), "schemas_dir")
	c.bind(flags.Lookup("kind"), "kinds")
	c.bind(flags.Lookup("pattern"), "patterns")
	c.bind(flags.Lookup("exclude"), "exclude")
	c.bind(flags.Lookup("output"), "output")
	c.bind(flags.Lookup("color"), "color")
	c.bind(flags.Lookup("quiet"), "quiet")
	c.bind(flags.Lookup("log-level"), "log_level")
	c.bind(flags.Lookup("log-format"), "log_format")

	rootCmd.AddCommand(newCheckCmd(c))
	rootCmd.AddCommand(newWatchCmd(c))
	rootCmd.AddCommand(newListCmd(c))
	rootCmd.AddCommand(newSchemaCmd(c))
	rootCmd.AddCommand(newVersionCmd(c))

	return rootCmd
}

func (c *cli) bind(flag *pflag.Flag, key string) {
	if err := c.v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("failed to bind flag %s: %v", key, err))
	}
}

// setup resolves configuration from flags, environment and config file, and
// configures logging before any subcommand runs
func (c *cli) setup(cmd *cobra.Command, args []string) error {
	if cmd.Annotations[rootArgAnnotation] == "true" && len(args) == 1 {
		c.v.Set("root", args[0])
	}

	configFile, _ := cmd.Flags().GetString("config")
	if configFile != "" {
		c.v.SetConfigFile(configFile)
	} else {
		c.v.AddConfigPath(c.v.GetString("root"))
		c.v.AddConfigPath("$HOME/.plugincheck")
	}

	if err := config.ReadConfigFile(c.v); err != nil {
		return err
	}

	cfg, err := config.Load(c.v)
	if err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	c.cfg = cfg

	if err := logger.Configure(cfg.LogLevel, cfg.LogFormat, c.stderr); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger.G(ctx).WithField("root", cfg.Root).
		WithField("config_file", c.v.ConfigFileUsed()).
		Debug("configuration loaded")
	return nil
}

func (c *cli) presenter() presenter.Presenter {
	if c.cfg.Output == "json" {
		return presenter.NewJSON(c.stdout, c.stderr)
	}
	p := presenter.NewWithOptions(c.stdout, c.stderr, presenter.ParseColorMode(c.cfg.Color))
	p.SetQuiet(c.cfg.Quiet)
	return p
}

// run executes the command line and returns the process exit status
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(stdout, stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	var ee *exitError
	if err != nil && !errors.As(err, &ee) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return exitCode(err)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
