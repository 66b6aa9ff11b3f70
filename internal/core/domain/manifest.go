package domain

import (
	"regexp"
	"slices"
	"strings"
)

var ipNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// ValidateIPName checks that name can be used as an IP and library name.
func ValidateIPName(name string) error {
	if !ipNamePattern.MatchString(name) {
		return Fail(ErrInvalidManifest, "name", name)
	}
	return nil
}

// Dependency is a manifest-declared requirement on another IP.
type Dependency struct {
	Name       string
	Constraint Constraint
}

// Manifest is the parsed ip.toml of one IP.
type Manifest struct {
	Name            string
	Version         Version
	Library         string
	Dependencies    []Dependency
	DevDependencies []Dependency
}

// LibraryID returns the library the IP's units compile into.
func (m *Manifest) LibraryID() Identifier {
	lib := m.Library
	if lib == "" {
		lib = m.Name
	}
	return DialectVHDL.Normalize(lib)
}

// Spec returns the (name, version) pair of the manifest.
func (m *Manifest) Spec() IPSpec {
	return IPSpec{Name: m.Name, Version: m.Version}
}

// Requirements returns the dependencies considered for resolution, sorted by
// name. Dev-dependencies are included only when dev is set.
func (m *Manifest) Requirements(dev bool) []Dependency {
	deps := slices.Clone(m.Dependencies)
	if dev {
		deps = append(deps, m.DevDependencies...)
	}
	slices.SortStableFunc(deps, func(a, b Dependency) int {
		return strings.Compare(a.Name, b.Name)
	})
	return deps
}

// IPSpec names one concrete IP version.
type IPSpec struct {
	Name    string
	Version Version
}

func (s IPSpec) String() string {
	return s.Name + ":" + s.Version.String()
}

// Compare orders specs by name, then version.
func (s IPSpec) Compare(o IPSpec) int {
	if c := strings.Compare(s.Name, o.Name); c != 0 {
		return c
	}
	return s.Version.Compare(o.Version)
}

// ParseIPSpec parses "name:version".
func ParseIPSpec(s string) (IPSpec, error) {
	name, ver, ok := strings.Cut(s, ":")
	if !ok {
		return IPSpec{}, Fail(ErrInvalidSpec, "spec", s)
	}
	v, err := ParseVersion(ver)
	if err != nil {
		return IPSpec{}, Fail(ErrInvalidSpec, "spec", s, "version", err.Error())
	}
	return IPSpec{Name: name, Version: v}, nil
}
