package domain

import (
	"slices"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is a full MAJOR.MINOR.PATCH version.
type Version struct {
	raw string // without the "v" prefix
}

// ParseVersion parses a full semantic version. A leading "v" is accepted.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	canonical := "v" + s
	if !semver.IsValid(canonical) || strings.Count(s, ".") < 2 {
		return Version{}, Fail(ErrInvalidVersion, "version", s)
	}
	return Version{raw: s}, nil
}

// MustParseVersion is ParseVersion for literals known to be valid.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) String() string { return v.raw }

// IsZero reports whether the version is unset.
func (v Version) IsZero() bool { return v.raw == "" }

// Compare orders versions by semantic-version precedence.
func (v Version) Compare(o Version) int {
	return semver.Compare("v"+v.raw, "v"+o.raw)
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.raw), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := ParseVersion(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Constraint selects versions by prefix: "1" matches 1.x.y, "1.2" matches
// 1.2.y and "1.2.3" matches exactly.
type Constraint struct {
	raw   string
	parts int
}

// ParseConstraint parses a full or partial version constraint.
func ParseConstraint(s string) (Constraint, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	if s == "" {
		return Constraint{}, Fail(ErrInvalidConstraint, "constraint", s)
	}
	parts := strings.Split(s, ".")
	if len(parts) > 3 {
		return Constraint{}, Fail(ErrInvalidConstraint, "constraint", s)
	}
	for _, p := range parts {
		if p == "" || strings.Trim(p, "0123456789") != "" {
			if len(parts) == 3 && semver.IsValid("v"+s) {
				break
			}
			return Constraint{}, Fail(ErrInvalidConstraint, "constraint", s)
		}
	}
	return Constraint{raw: s, parts: len(parts)}, nil
}

func (c Constraint) String() string { return c.raw }

// Matches reports whether v satisfies the constraint.
func (c Constraint) Matches(v Version) bool {
	if c.parts == 3 {
		return v.Compare(Version{raw: c.raw}) == 0
	}
	fields := strings.SplitN(v.raw, ".", 3)
	want := strings.Split(c.raw, ".")
	for i, w := range want {
		if strings.TrimLeft(fields[i], "0") != strings.TrimLeft(w, "0") {
			return false
		}
	}
	return true
}

// Select returns the highest version in available that satisfies c.
func (c Constraint) Select(available []Version) (Version, bool) {
	var best Version
	found := false
	for _, v := range available {
		if !c.Matches(v) {
			continue
		}
		if !found || v.Compare(best) > 0 {
			best = v
			found = true
		}
	}
	return best, found
}

// SortVersions sorts versions ascending by precedence.
func SortVersions(vs []Version) {
	slices.SortFunc(vs, func(a, b Version) int { return a.Compare(b) })
}
