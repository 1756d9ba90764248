package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harekrishnarai/pipcheck/cmd/display"
	"github.com/harekrishnarai/pipcheck/pkg/config"
	"github.com/harekrishnarai/pipcheck/pkg/log"
	"github.com/harekrishnarai/pipcheck/pkg/pip"
	"github.com/harekrishnarai/pipcheck/pkg/version"
)

// Version of pipcheck, set at build time
var Version = "dev"

// PackageManager is what the command needs from the package manager
type PackageManager interface {
	Version(ctx context.Context) (string, error)
	List(ctx context.Context, mode pip.Mode) ([]version.Package, error)
}

// NewPackageManager builds the package manager for a run. Tests replace it.
type NewPackageManager func(opts config.Options) PackageManager

func execPackageManager(opts config.Options) PackageManager {
	return pip.NewClient(opts, pip.ExecRunner{})
}

var rootCmd = NewRootCmd(execPackageManager, os.Stdout, os.Stderr)

// NewRootCmd returns the pipcheck command writing tables to stdout and
// progress to stderr
func NewRootCmd(newPM NewPackageManager, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipcheck",
		Short: "A quick overview of all installed packages and their update status",
		Long: `pipcheck gives you a quick overview of all installed Python packages and their
update status. Under the hood it calls

    pip list --outdated --format=json

and groups the result into major, minor, unchanged and unknown updates.
Requires pip 9 or higher, or uv (--cmd="uv pip").

Every flag can also be set through the environment, e.g. PIPCHECK_CMD=pip3.`,
		Args:          cobra.NoArgs,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.NewViper(cmd.Flags())
			if err != nil {
				return err
			}
			opts, err := config.Load(v)
			if err != nil {
				return err
			}
			log.SetDebug(opts.Debug)
			if opts.ASCII {
				color.NoColor = true
			}

			return run(cmd.Context(), opts, newPM(opts), stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.BoolP(config.FlagASCII, "a", false, "Display as ASCII Table")
	flags.StringP(config.FlagCmd, "c", config.DefaultCmd, "The pip executable to run, e.g. \"pip3\" or \"uv pip\"")
	flags.BoolP(config.FlagLocal, "l", false, "Show only virtualenv installed packages")
	flags.BoolP(config.FlagNotRequired, "r", false, "List only packages that are not dependencies of installed packages")
	flags.BoolP(config.FlagFullVersion, "f", false, "Show full version strings")
	flags.BoolP(config.FlagHideUnchanged, "H", false, "Do not show \"unchanged\" packages")
	flags.BoolP(config.FlagShowUpdate, "u", false, "Show update instructions for updatable packages")
	flags.BoolP(config.FlagUser, "U", false, "Show only user installed packages")
	flags.Int(config.FlagVersionLength, config.DefaultVersionLength, "Cut versions longer than this many characters (plus three)")
	flags.Bool(config.FlagDebug, false, "Enable debug logging")

	return cmd
}

func run(ctx context.Context, opts config.Options, pm PackageManager, stdout, stderr io.Writer) error {
	banner, err := pm.Version(ctx)
	if err != nil {
		return err
	}

	if py := pip.PythonVersion(banner); py != "" {
		fmt.Fprintf(stdout, "Python %s\n", py)
	}
	fmt.Fprintf(stdout, "%s\n", banner)
	fmt.Fprintf(stdout, "\n📦 Loading package versions...\n")

	stop := display.StartSpinner(asFile(stderr), "waiting for "+opts.Cmd)
	outdated, uptodate, err := fetch(ctx, opts, pm)
	stop()
	if err != nil {
		return err
	}

	packages := version.Classify(outdated, uptodate)
	log.Debug("classified packages",
		"major", len(packages.Packages(version.Major)),
		"minor", len(packages.Packages(version.Minor)),
		"unchanged", len(packages.Packages(version.Unchanged)),
		"unknown", len(packages.Packages(version.Unknown)))

	renderer := display.NewRenderer(stdout, opts)
	renderer.Render(packages)
	if opts.ShowUpdate {
		renderer.UpdateInstructions(packages)
	}
	return nil
}

func fetch(ctx context.Context, opts config.Options, pm PackageManager) (outdated, uptodate []version.Package, err error) {
	if !opts.HideUnchanged {
		uptodate, err = pm.List(ctx, pip.Uptodate)
		if err != nil {
			return nil, nil, err
		}
	}

	outdated, err = pm.List(ctx, pip.Outdated)
	if err != nil {
		return nil, nil, err
	}
	return outdated, uptodate, nil
}

func asFile(w io.Writer) *os.File {
	f, _ := w.(*os.File)
	return f
}

// ExitCode maps the error of a run to the process exit code
func ExitCode(err error) int {
	switch {
	case err == nil,
		errors.Is(err, pip.ErrNoOutdated),
		errors.Is(err, context.Canceled):
		return 0
	default:
		return 1
	}
}

// Report prints the diagnostic for err to stderr. Interrupted runs stay silent.
func Report(err error) {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
	case errors.Is(err, pip.ErrNoOutdated):
		log.Info("No outdated packages. \\o/")
	default:
		log.Error(err.Error())
	}
}

// Execute runs pipcheck until done or until ctx is cancelled
func Execute(ctx context.Context) error {
	rootCmd.Version = Version
	return rootCmd.ExecuteContext(ctx)
}
