// Package cli implements the silk command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/silk/internal/paths"
	"github.com/mesh-intelligence/silk/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	verbose   bool
}

// app is the state shared by one command tree.
type app struct {
	flags  rootFlags
	conf   *viper.Viper
	logger *slog.Logger
}

// NewRootCmd creates the top-level "silk" command with global flags and all
// subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "silk",
		Short: "Typed content and taxonomy models over a relational store",
		Long: "Silk stores posts, terms, post types and users, and resolves\n" +
			"relationships between posts and the terms they are tagged with.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.silk)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVarP(&a.flags.verbose, "verbose", "v", false, "log debug messages to stderr")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newPostCmd(a))
	root.AddCommand(newTermCmd(a))
	root.AddCommand(newRelatedCmd(a))
	root.AddCommand(newPostTypeCmd(a))
	root.AddCommand(newUserCmd(a))

	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	return run(NewRootCmd(), os.Args[1:], os.Stderr)
}

func run(root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(stderr, "silk:", err)
	return exitCode(err)
}

// setup builds the logger and loads config.yaml for the command tree.
func (a *app) setup(cmd *cobra.Command) error {
	level := slog.LevelWarn
	if a.flags.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	conf, err := loadConfig(configDir)
	if err != nil {
		return sysError(err)
	}
	a.conf = conf
	a.logger.Debug("config loaded", "dir", configDir, "file", conf.ConfigFileUsed())
	return nil
}

// exitError carries the exit code chosen for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func sysError(err error) error {
	return &exitError{code: exitSysError, err: err}
}

// userErrors are the failures caused by what the user asked for.
var userErrors = []error{
	types.ErrNotFound,
	types.ErrInvalidID,
	types.ErrInvalidData,
	types.ErrInvalidFilter,
	types.ErrTypeMismatch,
	types.ErrUnresolvableEntityClass,
	types.ErrNonExistentPostType,
	types.ErrPostTypeExists,
	types.ErrInvalidSlug,
	types.ErrBackendEmpty,
	types.ErrBackendUnknown,
	types.ErrDSNEmpty,
	errUsage,
}

// errUsage marks malformed flag or argument values.
var errUsage = errors.New("invalid usage")

// isUserError reports whether err was caused by the request rather than
// the store or the environment.
func isUserError(err error) bool {
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// runE adapts a command body so that every error it returns carries an exit
// code.
func runE(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if err == nil {
			return nil
		}
		var ee *exitError
		if errors.As(err, &ee) {
			return err
		}
		if isUserError(err) {
			return &exitError{code: exitUserError, err: err}
		}
		return sysError(err)
	}
}

// exitCode maps err to an exit code. Errors cobra raises itself (unknown
// flags, wrong argument counts) never pass through runE and are user errors.
func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}
