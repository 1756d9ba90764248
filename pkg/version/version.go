package version

import (
	"strconv"
	"strings"

	pep440 "github.com/aquasecurity/go-pep440-version"
)

// Package represents one entry of the package manager's JSON listing
type Package struct {
	Name          string `json:"name"`
	Version       string `json:"version,omitempty"`        // Installed version
	LatestVersion string `json:"latest_version,omitempty"` // Latest version on the index, absent for uptodate listings
}

// Bucket is the update severity a package is sorted into
type Bucket int

const (
	Major Bucket = iota
	Minor
	Unchanged
	Unknown
)

// Buckets lists every bucket in display order
var Buckets = []Bucket{Major, Minor, Unchanged, Unknown}

func (b Bucket) String() string {
	switch b {
	case Major:
		return "major"
	case Minor:
		return "minor"
	case Unchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

// Classification holds the packages of one run sorted into buckets.
// Order inside a bucket follows the order of the input listings.
type Classification struct {
	buckets [4][]Package
}

// Classify sorts the outdated packages into buckets. The uptodate packages
// are put into the unchanged bucket as they are, without looking at their versions.
func Classify(outdated, uptodate []Package) *Classification {
	c := &Classification{}
	c.buckets[Unchanged] = append(c.buckets[Unchanged], uptodate...)

	for _, pkg := range outdated {
		b := ClassifyPackage(pkg)
		c.buckets[b] = append(c.buckets[b], pkg)
	}
	return c
}

// ClassifyPackage decides the bucket of a single package from the outdated listing
func ClassifyPackage(pkg Package) Bucket {
	if pkg.Version == "" || pkg.LatestVersion == "" {
		return Unknown
	}

	current, err := pep440.Parse(pkg.Version)
	if err != nil {
		return Unknown
	}
	latest, err := pep440.Parse(pkg.LatestVersion)
	if err != nil {
		return Unknown
	}

	// An installed pre-release can be ahead of the published latest
	if current.GreaterThan(latest) {
		return Unknown
	}

	// pip's outdated and uptodate listings are not always disjoint
	if current.Equal(latest) {
		return Unchanged
	}

	currentMajor, err := releaseMajor(current)
	if err != nil {
		return Unknown
	}
	latestMajor, err := releaseMajor(latest)
	if err != nil {
		return Unknown
	}

	if currentMajor < latestMajor {
		return Major
	}
	return Minor
}

// releaseMajor returns the first release segment of v, ignoring its epoch:
// 2 for "1!2.0.0b1"
func releaseMajor(v pep440.Version) (uint64, error) {
	s := strings.TrimLeft(v.String(), "vV")
	if i := strings.IndexByte(s, '!'); i >= 0 {
		s = s[i+1:]
	}
	if end := strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }); end >= 0 {
		s = s[:end]
	}
	return strconv.ParseUint(s, 10, 64)
}

// Packages returns the packages sorted into b
func (c *Classification) Packages(b Bucket) []Package {
	if b < Major || b > Unknown {
		return nil
	}
	return c.buckets[b]
}

// Names returns the package names of bucket b
func (c *Classification) Names(b Bucket) []string {
	pkgs := c.Packages(b)
	names := make([]string, 0, len(pkgs))
	for _, pkg := range pkgs {
		names = append(names, pkg.Name)
	}
	return names
}

// Len returns the number of packages over all buckets
func (c *Classification) Len() int {
	n := 0
	for _, pkgs := range c.buckets {
		n += len(pkgs)
	}
	return n
}

func (c *Classification) Empty() bool {
	return c.Len() == 0
}
