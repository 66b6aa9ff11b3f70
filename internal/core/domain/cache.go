package domain

// CacheEntry is one materialized IP in the content-addressed cache.
type CacheEntry struct {
	Name     string
	Version  Version
	Checksum string
	Dir      string
	// Source is the directory the IP was installed from, if local.
	Source string
}

// Spec returns the entry's (name, version).
func (e CacheEntry) Spec() IPSpec {
	return IPSpec{Name: e.Name, Version: e.Version}
}

// Key returns the cache key "name@version".
func (e CacheEntry) Key() string {
	return CacheKey(e.Spec())
}

// CacheKey is the serialization key for cache operations on one IP version.
func CacheKey(s IPSpec) string {
	return s.Name + "@" + s.Version.String()
}

// ShortChecksum is the checksum prefix used in cache directory names.
func ShortChecksum(sum string) string {
	const n = 10
	if len(sum) <= n {
		return sum
	}
	return sum[:n]
}
