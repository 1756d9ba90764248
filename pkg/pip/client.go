// Package pip talks to a Python package manager (pip, or a compatible one
// such as "uv pip") through its command line and decodes its JSON listings.
package pip

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/harekrishnarai/pipcheck/pkg/config"
	"github.com/harekrishnarai/pipcheck/pkg/log"
	"github.com/harekrishnarai/pipcheck/pkg/version"
)

// MinPipMajor is the oldest pip release that supports --format=json
const MinPipMajor = 9

// connectionErrorMarker shows up in pip's stderr when the index is unreachable
const connectionErrorMarker = "NewConnectionError"

var (
	ErrNotRunnable   = errors.New("the package manager command could not be run")
	ErrCommandFailed = errors.New("the package manager command did not succeed")
	ErrNoVersion     = errors.New("the package manager did not return a version string")
	ErrVersionTooOld = errors.New("the package manager version is not supported")
	ErrNetwork       = errors.New("the package manager indicated that it has connection problems")
	ErrMalformedJSON = errors.New("unable to parse the version list from the package manager")

	// ErrNoOutdated stops a run that has nothing to report. It is not a failure.
	ErrNoOutdated = errors.New("no outdated packages")
)

var (
	pipVersionRe    = regexp.MustCompile(`^pip (\d+)\.(\d+)`)
	uvVersionRe     = regexp.MustCompile(`^uv(?:-pip)? (\d+)\.(\d+)`)
	pythonVersionRe = regexp.MustCompile(`\(python ([^)]+)\)\s*$`)

	minPipVersion = semver.MustParse(fmt.Sprintf("%d.0", MinPipMajor))
)

// Mode selects which packages a listing contains
type Mode int

const (
	Outdated Mode = iota
	Uptodate
)

func (m Mode) flag() string {
	if m == Uptodate {
		return "--uptodate"
	}
	return "--outdated"
}

func (m Mode) String() string {
	return strings.TrimPrefix(m.flag(), "--")
}

// Client runs the configured package manager
type Client struct {
	argv    []string
	filters config.Filters
	runner  Runner
	uv      bool
}

// NewClient returns a client for the command in opts using runner
func NewClient(opts config.Options, runner Runner) *Client {
	argv := opts.CmdArgs
	if len(argv) == 0 {
		argv = []string{opts.Cmd}
	}
	return &Client{
		argv:    argv,
		filters: opts.Filters,
		runner:  runner,
		uv:      filepath.Base(argv[0]) == "uv",
	}
}

func (c *Client) run(ctx context.Context, args ...string) (Result, error) {
	full := append(append([]string{}, c.argv[1:]...), args...)
	return c.runner.Run(ctx, c.argv[0], full...)
}

// Version makes sure the package manager can be called and is recent enough.
// It returns the version banner, e.g. "pip 24.0 from /usr/lib/python3/site-packages/pip (python 3.12)".
func (c *Client) Version(ctx context.Context) (string, error) {
	res, err := c.run(ctx, "--version")
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("%w: %s", ErrCommandFailed, stderrText(res))
	}

	banner := strings.TrimSpace(string(res.Stdout))
	if banner == "" {
		return "", fmt.Errorf("%w: does `%s --version` work for you?", ErrNoVersion, strings.Join(c.argv, " "))
	}

	if m := pipVersionRe.FindStringSubmatch(banner); m != nil {
		v, err := semver.NewVersion(m[1] + "." + m[2])
		if err == nil && !v.LessThan(minPipVersion) {
			return banner, nil
		}
	} else if uvVersionRe.MatchString(banner) {
		return banner, nil
	}

	return "", fmt.Errorf("%w: please update pip, the minimal version required is %d", ErrVersionTooOld, MinPipMajor)
}

// PythonVersion extracts the interpreter version from a pip banner.
// It returns "" when the banner does not name one, as uv's does not.
func PythonVersion(banner string) string {
	if m := pythonVersionRe.FindStringSubmatch(banner); m != nil {
		return m[1]
	}
	return ""
}

// ListArgs returns the arguments of the list call for mode, without the command itself
func (c *Client) ListArgs(mode Mode) []string {
	args := []string{"list", mode.flag()}
	if !c.uv {
		// uv does not know these and has no self version check
		args = append(args, "--retries=1", "--disable-pip-version-check")
	}
	args = append(args, "--format=json")
	if c.filters.NotRequired {
		args = append(args, "--not-required")
	}
	if c.filters.User {
		args = append(args, "--user")
	}
	if c.filters.Local {
		args = append(args, "--local")
	}
	return args
}

// List fetches the packages of the given mode
func (c *Client) List(ctx context.Context, mode Mode) ([]version.Package, error) {
	res, err := c.run(ctx, c.ListArgs(mode)...)
	if err != nil {
		return nil, err
	}

	// pip may exit 0 and still report connection problems on stderr
	if strings.Contains(string(res.Stderr), connectionErrorMarker) {
		return nil, fmt.Errorf("%w, please check your network", ErrNetwork)
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("%w: %s", ErrCommandFailed, stderrText(res))
	}
	if msg := strings.TrimSpace(string(res.Stderr)); msg != "" {
		log.Warn(msg, "mode", mode)
	}

	out := bytes.TrimSpace(res.Stdout)
	if len(out) == 0 {
		if mode == Outdated {
			return nil, ErrNoOutdated
		}
		return nil, nil
	}

	pkgs, err := decode(out)
	if err != nil {
		return nil, fmt.Errorf("%w: does `%s list --format=json` work for you? (%v)", ErrMalformedJSON, strings.Join(c.argv, " "), err)
	}

	log.Debug("decoded package listing", "mode", mode, "packages", len(pkgs))
	return pkgs, nil
}

func decode(data []byte) ([]version.Package, error) {
	// null and scalars unmarshal into a nil slice without complaint
	if data[0] != '[' {
		return nil, fmt.Errorf("expected a JSON array, got %.20q", data)
	}
	var pkgs []version.Package
	if err := json.Unmarshal(data, &pkgs); err != nil {
		return nil, err
	}
	return pkgs, nil
}

func stderrText(res Result) string {
	msg := strings.TrimSpace(string(res.Stderr))
	if msg == "" {
		return fmt.Sprintf("exit status %d", res.ExitCode)
	}
	return msg
}
