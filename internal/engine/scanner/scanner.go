// Package scanner recovers design units and their references from VHDL,
// Verilog and SystemVerilog sources.
package scanner

import (
	"context"
	"os"
	"runtime"
	"strings"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// DefaultIgnoredLibraries are the libraries every simulator provides.
var DefaultIgnoredLibraries = []string{"ieee", "std"}

const defaultCacheSize = 4096

// Scanner scans HDL files. It is safe for concurrent use.
type Scanner struct {
	ignored map[string]bool
	jobs    int
	cache   *lru.Cache[uint64, *domain.ScanResult]
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithIgnoredLibraries replaces the set of libraries whose references are
// dropped during scanning.
func WithIgnoredLibraries(libs ...string) Option {
	return func(s *Scanner) {
		s.ignored = make(map[string]bool, len(libs))
		for _, l := range libs {
			s.ignored[strings.ToLower(l)] = true
		}
	}
}

// WithJobs bounds the number of files scanned concurrently.
func WithJobs(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.jobs = n
		}
	}
}

// New creates a Scanner.
func New(opts ...Option) *Scanner {
	s := &Scanner{jobs: runtime.NumCPU()}
	WithIgnoredLibraries(DefaultIgnoredLibraries...)(s)
	for _, opt := range opts {
		opt(s)
	}
	// lru.New only fails for a non-positive size.
	s.cache, _ = lru.New[uint64, *domain.ScanResult](defaultCacheSize)
	return s
}

// ScanSource scans src as the contents of path. Any diagnostic voids the
// file's units.
func (s *Scanner) ScanSource(path string, dialect domain.Dialect, src []byte) *domain.ScanResult {
	key := cacheKey(path, dialect, src)
	if cached, ok := s.cache.Get(key); ok {
		return cloneResult(cached)
	}

	res := &domain.ScanResult{File: path, Dialect: dialect}
	switch dialect {
	case domain.DialectVHDL:
		res.Units, res.Diagnostics = scanVHDL(path, src, s.ignored)
	case domain.DialectVerilog, domain.DialectSystemVerilog:
		res.Units, res.Diagnostics = scanVerilog(path, dialect, src, s.ignored)
	default:
		res.Diagnostics = []domain.ParseDiagnostic{{File: path, Line: 1, Column: 1, Message: "unsupported source dialect"}}
	}

	s.cache.Add(key, res)
	return cloneResult(res)
}

// Scan reads and scans one file.
func (s *Scanner) Scan(src domain.SourceFile) (*domain.ScanResult, error) {
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read source"), "file", src.Path)
	}
	return s.ScanSource(src.Path, src.Dialect, data), nil
}

// ScanAll scans files concurrently. Results are returned in the order of
// files regardless of completion order.
func (s *Scanner) ScanAll(ctx context.Context, files []domain.SourceFile) ([]*domain.ScanResult, error) {
	results := make([]*domain.ScanResult, len(files))

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.jobs)

	for i, src := range files {
		g.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			res, err := s.Scan(src)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func cacheKey(path string, dialect domain.Dialect, src []byte) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(path)
	_, _ = h.Write([]byte{0, byte(dialect), 0})
	_, _ = h.Write(src)
	return h.Sum64()
}

// cloneResult copies a result so callers may assign Seq and libraries
// without touching the cached value.
func cloneResult(r *domain.ScanResult) *domain.ScanResult {
	c := *r
	c.Units = make([]*domain.DesignUnit, len(r.Units))
	for i, u := range r.Units {
		cu := *u
		c.Units[i] = &cu
	}
	return &c
}
