// Package config builds the immutable run options of pipcheck from command
// line flags and PIPCHECK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is prepended to every flag name when read from the environment
	EnvPrefix = "PIPCHECK"

	DefaultCmd = "pip"

	// DefaultVersionLength caps displayed versions; some packages carry absurdly
	// long ones such as 0.6.0.1206569328141510525648634803928199668821045408958
	DefaultVersionLength = 10
)

// Flag names shared by the command line, the environment and viper
const (
	FlagASCII         = "ascii"
	FlagCmd           = "cmd"
	FlagLocal         = "local"
	FlagNotRequired   = "not-required"
	FlagFullVersion   = "full-version"
	FlagHideUnchanged = "hide-unchanged"
	FlagShowUpdate    = "show-update"
	FlagUser          = "user"
	FlagVersionLength = "version-length"
	FlagDebug         = "debug"
)

var ErrInvalid = errors.New("invalid configuration")

// Filters narrow down the packages the package manager lists
type Filters struct {
	NotRequired bool // --not-required
	User        bool // --user
	Local       bool // --local
}

// Options is the configuration of a single run. It is built once at startup
// and passed by value afterwards.
type Options struct {
	Cmd           string   // Package manager command as given by the user, e.g. "uv pip"
	CmdArgs       []string // Cmd split into argv words
	Filters       Filters
	ASCII         bool
	FullVersion   bool
	HideUnchanged bool
	ShowUpdate    bool
	VersionLength int
	Debug         bool
}

// Default returns the options used when no flag is given
func Default() Options {
	return Options{
		Cmd:           DefaultCmd,
		CmdArgs:       []string{DefaultCmd},
		VersionLength: DefaultVersionLength,
	}
}

// NewViper returns a viper instance bound to flags and the PIPCHECK_ environment
func NewViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(FlagCmd, DefaultCmd)
	v.SetDefault(FlagVersionLength, DefaultVersionLength)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}
	return v, nil
}

// Load reads the options from v and validates them
func Load(v *viper.Viper) (Options, error) {
	opts := Options{
		Cmd: strings.TrimSpace(v.GetString(FlagCmd)),
		Filters: Filters{
			NotRequired: v.GetBool(FlagNotRequired),
			User:        v.GetBool(FlagUser),
			Local:       v.GetBool(FlagLocal),
		},
		ASCII:         v.GetBool(FlagASCII),
		FullVersion:   v.GetBool(FlagFullVersion),
		HideUnchanged: v.GetBool(FlagHideUnchanged),
		ShowUpdate:    v.GetBool(FlagShowUpdate),
		VersionLength: v.GetInt(FlagVersionLength),
		Debug:         v.GetBool(FlagDebug),
	}

	if opts.Cmd == "" {
		return Options{}, fmt.Errorf("%w: the package manager command is empty", ErrInvalid)
	}

	args, err := shellquote.Split(opts.Cmd)
	if err != nil {
		return Options{}, fmt.Errorf("%w: cannot parse command %q: %v", ErrInvalid, opts.Cmd, err)
	}
	if len(args) == 0 {
		return Options{}, fmt.Errorf("%w: the package manager command is empty", ErrInvalid)
	}
	opts.CmdArgs = args

	if opts.VersionLength <= 0 {
		return Options{}, fmt.Errorf("%w: version length must be positive, got %d", ErrInvalid, opts.VersionLength)
	}

	return opts, nil
}

// InstallCmd returns the package manager command quoted for display in
// copy-pasteable instructions
func (o Options) InstallCmd() string {
	if len(o.CmdArgs) == 0 {
		return o.Cmd
	}
	return shellquote.Join(o.CmdArgs...)
}
