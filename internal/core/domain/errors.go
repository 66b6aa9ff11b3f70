package domain

import "go.trai.ch/zerr"

var (
	// ErrManifestNotFound is returned when no ip.toml exists in the directory or its parents.
	ErrManifestNotFound = zerr.New("no ip.toml found in current or parent directories")

	// ErrInvalidManifest is returned when a manifest fails to parse or validate.
	ErrInvalidManifest = zerr.New("invalid manifest")

	// ErrLockNotFound is returned when a command needs an ip.lock that does not exist.
	ErrLockNotFound = zerr.New("no ip.lock found, run weft lock first")

	// ErrInvalidLock is returned when a lock file fails to parse.
	ErrInvalidLock = zerr.New("invalid lock file")

	// ErrInvalidVersion is returned when a version string is not MAJOR.MINOR.PATCH.
	ErrInvalidVersion = zerr.New("invalid version")

	// ErrInvalidConstraint is returned when a dependency constraint is malformed.
	ErrInvalidConstraint = zerr.New("invalid version constraint")

	// ErrVersionNotFound is returned when no installed version satisfies a constraint.
	ErrVersionNotFound = zerr.New("no installed version satisfies constraint")

	// ErrNamespaceCollision is returned when an IP name resolves to more than one version.
	ErrNamespaceCollision = zerr.New("namespace collision")

	// ErrNotInstalled is returned when a locked IP is missing from the cache.
	ErrNotInstalled = zerr.New("ip is not installed")

	// ErrChecksumMismatch is returned when cached content differs from the lock.
	ErrChecksumMismatch = zerr.New("checksum mismatch")

	// ErrCacheWriteFailed is returned when an IP cannot be materialized into the cache.
	ErrCacheWriteFailed = zerr.New("failed to write cache entry")

	// ErrCacheReadFailed is returned when the cache directory cannot be read.
	ErrCacheReadFailed = zerr.New("failed to read cache")

	// ErrParseDiagnostic is returned when strict planning encounters scanner diagnostics.
	ErrParseDiagnostic = zerr.New("source files could not be scanned")

	// ErrDuplicateUnit is returned when two primary units share an identity.
	ErrDuplicateUnit = zerr.New("duplicate design unit")

	// ErrMissingDependency is returned when a reference resolves to no known unit.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrAmbiguousReference is returned when an unqualified name matches units in several libraries.
	ErrAmbiguousReference = zerr.New("ambiguous reference")

	// ErrCycleDetected is returned when the unit or IP graph contains a cycle.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrTopUnitNotFound is returned when the requested top unit does not exist.
	ErrTopUnitNotFound = zerr.New("top unit not found")

	// ErrAmbiguousTopUnit is returned when more than one top unit candidate exists.
	ErrAmbiguousTopUnit = zerr.New("ambiguous top unit")

	// ErrNoTopUnit is returned when the IP has no unit that could be the top.
	ErrNoTopUnit = zerr.New("no top unit candidate found")

	// ErrNoBackendCommand is returned when build is invoked without a backend.
	ErrNoBackendCommand = zerr.New("no backend command configured")

	// ErrBackendFailed is returned when the build backend exits non-zero.
	ErrBackendFailed = zerr.New("backend command failed")

	// ErrInvalidConfig is returned when config.yaml fails to parse or validate.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrInvalidSpec is returned when a name[:version] argument cannot be parsed.
	ErrInvalidSpec = zerr.New("invalid ip spec")
)

// Fail wraps sentinel so that errors.Is still matches it and attaches the
// key/value pairs in kv as zerr metadata.
func Fail(sentinel error, kv ...any) error {
	err := zerr.Wrap(sentinel, "")
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		err = zerr.With(err, key, kv[i+1])
	}
	return err
}
