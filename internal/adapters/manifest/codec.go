package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/zerr"
)

// LockHeader is written above the lock tables.
const LockHeader = "# This file is generated by weft. Do not edit.\n\n"

type manifestFile struct {
	IP              ipTable           `toml:"ip"`
	Dependencies    map[string]string `toml:"dependencies"`
	DevDependencies map[string]string `toml:"dev-dependencies"`
}

type ipTable struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Library string `toml:"library"`
}

type lockFile struct {
	Version int         `toml:"version"`
	IP      []lockTable `toml:"ip"`
}

type lockTable struct {
	Name         string   `toml:"name"`
	Version      string   `toml:"version"`
	Checksum     string   `toml:"checksum"`
	Source       string   `toml:"source,omitempty"`
	Dependencies []string `toml:"dependencies"`
}

// DecodeManifest parses and validates ip.toml content.
func DecodeManifest(data []byte) (*domain.Manifest, error) {
	var f manifestFile
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, decodeFailure(domain.ErrInvalidManifest, err)
	}

	if err := domain.ValidateIPName(f.IP.Name); err != nil {
		return nil, zerr.With(err, "field", "ip.name")
	}
	v, err := domain.ParseVersion(f.IP.Version)
	if err != nil {
		return nil, domain.Fail(domain.ErrInvalidManifest, "field", "ip.version", "value", f.IP.Version)
	}
	if f.IP.Library != "" {
		if err := domain.ValidateIPName(f.IP.Library); err != nil {
			return nil, zerr.With(err, "field", "ip.library")
		}
	}

	m := &domain.Manifest{Name: f.IP.Name, Version: v, Library: f.IP.Library}
	if m.Dependencies, err = decodeDependencies("dependencies", f.Dependencies); err != nil {
		return nil, err
	}
	if m.DevDependencies, err = decodeDependencies("dev-dependencies", f.DevDependencies); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeDependencies(table string, raw map[string]string) ([]domain.Dependency, error) {
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	slices.Sort(names)

	deps := make([]domain.Dependency, 0, len(names))
	for _, name := range names {
		if err := domain.ValidateIPName(name); err != nil {
			return nil, zerr.With(err, "field", table+"."+name)
		}
		c, err := domain.ParseConstraint(raw[name])
		if err != nil {
			return nil, domain.Fail(domain.ErrInvalidManifest, "field", table+"."+name, "value", raw[name])
		}
		deps = append(deps, domain.Dependency{Name: name, Constraint: c})
	}
	return deps, nil
}

// DecodeLock parses ip.lock content.
func DecodeLock(data []byte) (*domain.Lock, error) {
	var f lockFile
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, decodeFailure(domain.ErrInvalidLock, err)
	}
	if f.Version != domain.LockVersion {
		return nil, domain.Fail(domain.ErrInvalidLock, "field", "version", "value", f.Version)
	}

	entries := make([]domain.LockEntry, 0, len(f.IP))
	for i, t := range f.IP {
		v, err := domain.ParseVersion(t.Version)
		if err != nil {
			return nil, domain.Fail(domain.ErrInvalidLock, "field", fmt.Sprintf("ip[%d].version", i), "value", t.Version)
		}
		e := domain.LockEntry{Name: t.Name, Version: v, Checksum: t.Checksum, Source: t.Source}
		for _, d := range t.Dependencies {
			spec, err := domain.ParseIPSpec(d)
			if err != nil {
				return nil, zerr.With(domain.Fail(domain.ErrInvalidLock, "field", fmt.Sprintf("ip[%d].dependencies", i)), "value", d)
			}
			e.Dependencies = append(e.Dependencies, spec)
		}
		entries = append(entries, e)
	}
	return domain.NewLock(entries), nil
}

// EncodeLock renders lock in canonical form. Equal locks encode to equal
// bytes.
func EncodeLock(lock *domain.Lock) ([]byte, error) {
	f := lockFile{Version: domain.LockVersion, IP: make([]lockTable, 0, len(lock.Entries))}
	for _, e := range domain.NewLock(lock.Entries).Entries {
		deps := make([]string, len(e.Dependencies))
		for i, d := range e.Dependencies {
			deps[i] = d.String()
		}
		f.IP = append(f.IP, lockTable{
			Name:         e.Name,
			Version:      e.Version.String(),
			Checksum:     e.Checksum,
			Source:       e.Source,
			Dependencies: deps,
		})
	}

	body, err := toml.Marshal(f)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to encode lock")
	}

	var b strings.Builder
	b.WriteString(LockHeader)
	b.Write(body)
	return []byte(b.String()), nil
}

func decodeFailure(sentinel, err error) error {
	var derr *toml.DecodeError
	if errors.As(err, &derr) {
		row, col := derr.Position()
		return domain.Fail(sentinel, "reason", derr.Error(), "line", row, "column", col)
	}
	var serr *toml.StrictMissingError
	if errors.As(err, &serr) {
		return domain.Fail(sentinel, "reason", "unknown field", "detail", strings.TrimSpace(serr.String()))
	}
	return domain.Fail(sentinel, "reason", err.Error())
}
