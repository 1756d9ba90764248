package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/harekrishnarai/pipcheck/pkg/config"
	"github.com/harekrishnarai/pipcheck/pkg/version"
)

const (
	ellipsis = "..."
	pypiURL  = "https://pypi.python.org/pypi/"
	unknown  = "Unknown"
)

// Labels holds the table title of every bucket
var Labels = map[version.Bucket]string{
	version.Major:     "Major Release Update",
	version.Minor:     "Minor Release Update",
	version.Unchanged: "Unchanged Packages",
	version.Unknown:   "Unknown Package Release Status",
}

var labelColors = map[version.Bucket]tablewriter.Colors{
	version.Major:     {tablewriter.Bold, tablewriter.FgRedColor},
	version.Minor:     {tablewriter.Bold, tablewriter.FgYellowColor},
	version.Unchanged: {tablewriter.Bold, tablewriter.FgGreenColor},
	version.Unknown:   {tablewriter.Bold},
}

// TruncateVersion cuts versions longer than length+3 characters down to length
// characters followed by an ellipsis, so a cut version is never longer than
// the one it replaces. Nothing is cut when full is set.
func TruncateVersion(v string, length int, full bool) string {
	if full || len(v) <= length+len(ellipsis) {
		return v
	}
	return v[:length] + ellipsis
}

// Renderer prints classified packages as tables
type Renderer struct {
	out  io.Writer
	opts config.Options
}

func NewRenderer(out io.Writer, opts config.Options) *Renderer {
	return &Renderer{out: out, opts: opts}
}

func (r *Renderer) cut(v string) string {
	return TruncateVersion(v, r.opts.VersionLength, r.opts.FullVersion)
}

func (r *Renderer) userFlag() string {
	if r.opts.Filters.User {
		return "--user "
	}
	return ""
}

// Row returns the table columns of a package: name, current version, latest
// version and either its PyPI page or, with show-update, the install command.
func (r *Renderer) Row(pkg version.Package) []string {
	current := unknown
	if pkg.Version != "" {
		current = r.cut(pkg.Version)
	}

	latest := unknown
	switch {
	case pkg.LatestVersion != "":
		latest = r.cut(pkg.LatestVersion)
	case pkg.Version != "":
		latest = r.cut(pkg.Version)
	}

	help := pypiURL + pkg.Name
	if r.opts.ShowUpdate && pkg.LatestVersion != "" {
		help = fmt.Sprintf("pip install %s%s==%s", r.userFlag(), pkg.Name, pkg.LatestVersion)
	}

	return []string{pkg.Name, current, latest, help}
}

// Rows returns all rows of a bucket table, header excluded
func (r *Renderer) Rows(pkgs []version.Package) [][]string {
	rows := make([][]string, 0, len(pkgs))
	for _, pkg := range pkgs {
		rows = append(rows, r.Row(pkg))
	}
	return rows
}

// Visible reports whether the table of bucket b is printed for c.
// Hiding unchanged packages happens when listing, not here: with -H the
// unchanged bucket only holds outdated entries whose versions turned out equal.
func (r *Renderer) Visible(c *version.Classification, b version.Bucket) bool {
	return len(c.Packages(b)) > 0
}

func (r *Renderer) newTable() *tablewriter.Table {
	table := tablewriter.NewWriter(r.out)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetRowLine(false)
	table.SetHeaderLine(true)
	table.SetBorders(tablewriter.Border{Left: true, Top: true, Right: true, Bottom: true})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)

	if r.opts.ASCII {
		table.SetColumnSeparator("|")
		table.SetCenterSeparator("+")
		table.SetRowSeparator("-")
	} else {
		table.SetColumnSeparator("│")
		table.SetCenterSeparator("┼")
		table.SetRowSeparator("─")
	}
	return table
}

// Table prints the table of one bucket
func (r *Renderer) Table(b version.Bucket, pkgs []version.Package) {
	table := r.newTable()
	table.SetHeader([]string{Labels[b], "Version", "Latest", ""})
	if !r.opts.ASCII && !color.NoColor {
		table.SetHeaderColor(labelColors[b], tablewriter.Colors{}, tablewriter.Colors{}, tablewriter.Colors{})
	}
	table.AppendBulk(r.Rows(pkgs))
	table.Render()
}

// Render prints a table for every visible bucket, in bucket order
func (r *Renderer) Render(c *version.Classification) {
	for _, b := range version.Buckets {
		if !r.Visible(c, b) {
			continue
		}
		fmt.Fprintln(r.out)
		r.Table(b, c.Packages(b))
	}
}

// UpdateCommand returns the command that upgrades every package of bucket b,
// or an empty string when there is nothing to upgrade
func (r *Renderer) UpdateCommand(c *version.Classification, b version.Bucket) string {
	names := c.Names(b)
	if len(names) == 0 {
		return ""
	}
	return fmt.Sprintf("%s install --upgrade %s%s", r.opts.InstallCmd(), r.userFlag(), strings.Join(names, " "))
}

// UpdateInstructions prints one upgrade command for the major and one for the minor releases
func (r *Renderer) UpdateInstructions(c *version.Classification) {
	for _, b := range []version.Bucket{version.Major, version.Minor} {
		cmd := r.UpdateCommand(c, b)
		if cmd == "" {
			continue
		}
		fmt.Fprintf(r.out, "\nTo update all %s releases run:\n\n  %s\n", b, color.CyanString(cmd))
	}
}
