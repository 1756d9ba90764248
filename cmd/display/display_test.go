package display

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harekrishnarai/pipcheck/pkg/config"
	"github.com/harekrishnarai/pipcheck/pkg/version"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestTruncateVersion(t *testing.T) {
	long := "0.6.0.1206569328141510525648634803928199668821045408958"

	tests := []struct {
		name string
		in   string
		full bool
		want string
	}{
		{"short", "1.0.0", false, "1.0.0"},
		{"empty", "", false, ""},
		{"exactly threshold", "1.2.3.4.5.", false, "1.2.3.4.5."},
		{"thirteen characters", "1.2.3.4.5.6.7", false, "1.2.3.4.5.6.7"},
		{"fourteen characters", "1.2.3.4.5.6.78", false, "1.2.3.4.5...."},
		{"long", long, false, "0.6.0.1206..."},
		{"long with full version", long, true, long},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateVersion(tt.in, config.DefaultVersionLength, tt.full))
		})
	}
}

func TestRow(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Options)
		pkg    version.Package
		want   []string
	}{
		{
			name: "major update",
			pkg:  version.Package{Name: "foo", Version: "1.0.0", LatestVersion: "2.0.0"},
			want: []string{"foo", "1.0.0", "2.0.0", "https://pypi.python.org/pypi/foo"},
		},
		{
			name: "no latest version falls back to current",
			pkg:  version.Package{Name: "baz", Version: "2.0.0"},
			want: []string{"baz", "2.0.0", "2.0.0", "https://pypi.python.org/pypi/baz"},
		},
		{
			name: "no versions at all",
			pkg:  version.Package{Name: "ghost"},
			want: []string{"ghost", "Unknown", "Unknown", "https://pypi.python.org/pypi/ghost"},
		},
		{
			name: "long versions are cut",
			pkg:  version.Package{Name: "pycryptopp", Version: "0.6.0.1206569328141510525648634803928199668821045408958", LatestVersion: "0.7.1.869544967005693312591928092448767568728501330214"},
			want: []string{"pycryptopp", "0.6.0.1206...", "0.7.1.8695...", "https://pypi.python.org/pypi/pycryptopp"},
		},
		{
			name:   "custom version length",
			modify: func(o *config.Options) { o.VersionLength = 3 },
			pkg:    version.Package{Name: "x", Version: "1.22.333", LatestVersion: "1.2.3"},
			want:   []string{"x", "1.2...", "1.2.3", "https://pypi.python.org/pypi/x"},
		},
		{
			name:   "show update",
			modify: func(o *config.Options) { o.ShowUpdate = true },
			pkg:    version.Package{Name: "bar", Version: "1.0.0", LatestVersion: "1.1.0"},
			want:   []string{"bar", "1.0.0", "1.1.0", "pip install bar==1.1.0"},
		},
		{
			name: "show update for user installs",
			modify: func(o *config.Options) {
				o.ShowUpdate = true
				o.Filters.User = true
			},
			pkg:  version.Package{Name: "bar", Version: "1.0.0", LatestVersion: "1.1.0"},
			want: []string{"bar", "1.0.0", "1.1.0", "pip install --user bar==1.1.0"},
		},
		{
			name:   "show update without latest keeps the url",
			modify: func(o *config.Options) { o.ShowUpdate = true },
			pkg:    version.Package{Name: "requests", Version: "2.32.3"},
			want:   []string{"requests", "2.32.3", "2.32.3", "https://pypi.python.org/pypi/requests"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := config.Default()
			if tt.modify != nil {
				tt.modify(&opts)
			}
			r := NewRenderer(&bytes.Buffer{}, opts)
			assert.Equal(t, tt.want, r.Row(tt.pkg))
		})
	}
}

func fixture() *version.Classification {
	return version.Classify(
		[]version.Package{
			{Name: "foo", Version: "1.0.0", LatestVersion: "2.0.0"},
			{Name: "bar", Version: "1.0.0", LatestVersion: "1.1.0"},
			{Name: "baz", Version: "2.0.0"},
			{Name: "zap", Version: "3.0.0", LatestVersion: "4.0.0"},
		},
		[]version.Package{{Name: "requests", Version: "2.32.3"}},
	)
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(&buf, config.Default()).Render(fixture())
	out := buf.String()

	for _, s := range []string{
		"Major Release Update", "Minor Release Update", "Unchanged Packages", "Unknown Package Release Status",
		"foo", "bar", "baz", "zap", "requests", "https://pypi.python.org/pypi/foo", "│", "─",
	} {
		assert.Contains(t, out, s)
	}

	// tables come out in bucket order
	major := strings.Index(out, "Major Release Update")
	minor := strings.Index(out, "Minor Release Update")
	unchanged := strings.Index(out, "Unchanged Packages")
	unknown := strings.Index(out, "Unknown Package Release Status")
	assert.True(t, major < minor && minor < unchanged && unchanged < unknown)

	// packages keep their input order
	assert.Less(t, strings.Index(out, "foo"), strings.Index(out, "zap"))
}

func TestRenderASCII(t *testing.T) {
	opts := config.Default()
	opts.ASCII = true

	var buf bytes.Buffer
	NewRenderer(&buf, opts).Render(fixture())
	out := buf.String()

	assert.Contains(t, out, "+")
	assert.Contains(t, out, "|")
	assert.NotContains(t, out, "│")
	assert.NotContains(t, out, "┼")
}

func TestRenderSkipsEmptyBuckets(t *testing.T) {
	c := version.Classify(
		[]version.Package{{Name: "bar", Version: "1.0.0", LatestVersion: "1.1.0"}},
		nil,
	)

	var buf bytes.Buffer
	r := NewRenderer(&buf, config.Default())
	r.Render(c)
	out := buf.String()

	assert.Contains(t, out, "Minor Release Update")
	assert.NotContains(t, out, "Major Release Update")
	assert.NotContains(t, out, "Unchanged Packages")
	assert.NotContains(t, out, "Unknown Package Release Status")
	assert.False(t, r.Visible(c, version.Unchanged))
	assert.True(t, r.Visible(c, version.Minor))
}

func TestRenderHideUnchangedKeepsEqualOutdated(t *testing.T) {
	opts := config.Default()
	opts.HideUnchanged = true

	// with -H the uptodate listing is never fetched
	c := version.Classify(
		[]version.Package{
			{Name: "bar", Version: "1.0.0", LatestVersion: "1.1.0"},
			{Name: "eq", Version: "1.0.0", LatestVersion: "1.0.0"},
		},
		nil,
	)

	var buf bytes.Buffer
	r := NewRenderer(&buf, opts)
	r.Render(c)
	out := buf.String()

	assert.Contains(t, out, "Minor Release Update")
	assert.Contains(t, out, "Unchanged Packages")
	assert.Contains(t, out, "eq")
	assert.True(t, r.Visible(c, version.Unchanged))
}

func TestRenderNothing(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(&buf, config.Default()).Render(version.Classify(nil, nil))
	assert.Empty(t, buf.String())
}

func TestUpdateInstructions(t *testing.T) {
	t.Run("pip", func(t *testing.T) {
		var buf bytes.Buffer
		r := NewRenderer(&buf, config.Default())
		c := fixture()

		assert.Equal(t, "pip install --upgrade foo zap", r.UpdateCommand(c, version.Major))
		assert.Equal(t, "pip install --upgrade bar", r.UpdateCommand(c, version.Minor))
		assert.Empty(t, r.UpdateCommand(version.Classify(nil, nil), version.Major))

		r.UpdateInstructions(c)
		assert.Equal(t,
			"\nTo update all major releases run:\n\n  pip install --upgrade foo zap\n"+
				"\nTo update all minor releases run:\n\n  pip install --upgrade bar\n",
			buf.String())
	})

	t.Run("custom command for user installs", func(t *testing.T) {
		opts := config.Default()
		opts.Cmd = "uv pip"
		opts.CmdArgs = []string{"uv", "pip"}
		opts.Filters.User = true

		var buf bytes.Buffer
		r := NewRenderer(&buf, opts)
		c := version.Classify([]version.Package{{Name: "bar", Version: "1.0.0", LatestVersion: "1.1.0"}}, nil)

		r.UpdateInstructions(c)
		require.NotContains(t, buf.String(), "major releases")
		assert.Contains(t, buf.String(), "  uv pip install --upgrade --user bar\n")
	})
}

func TestStartSpinnerWithoutTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "spinner")
	require.NoError(t, err)
	defer f.Close()

	stop := StartSpinner(f, "Loading package versions...")
	stop()

	data, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	assert.Empty(t, data)
	assert.NotPanics(t, func() { StartSpinner(nil, "x")() })
}
