// Package config loads user settings from config.yaml and the environment.
package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const (
	// JobsEnvVar overrides the scan worker count.
	JobsEnvVar = "WEFT_JOBS"
	// LogFormatEnvVar overrides the log format.
	LogFormatEnvVar = domain.LogFormatEnvVar
	// DotEnvFile is read from the working directory before anything else.
	DotEnvFile = ".env"
)

// Loader implements ports.ConfigLoader.
type Loader struct {
	Logger ports.Logger
	// Dir is where .env is looked up; empty means the working directory.
	Dir string
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

var _ ports.ConfigLoader = (*Loader)(nil)

// Load resolves settings in order: .env, config.yaml, environment.
// Variables already set in the environment win over .env entries.
func (l *Loader) Load() (*domain.Settings, error) {
	if err := l.loadDotEnv(); err != nil {
		return nil, err
	}

	home := domain.DefaultHomePath()
	s := &domain.Settings{
		Home:      home,
		CacheDir:  filepath.Join(home, domain.CacheDirName),
		Jobs:      runtime.NumCPU(),
		LogFormat: domain.LogFormatPretty,
	}

	path := filepath.Join(home, domain.ConfigFileName)
	f, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if f != nil {
		if err := apply(s, f); err != nil {
			return nil, zerr.With(err, "file", path)
		}
	}

	if err := applyEnv(s); err != nil {
		return nil, err
	}
	return s, nil
}

func (l *Loader) loadDotEnv() error {
	path := filepath.Join(l.Dir, DotEnvFile)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrInvalidConfig.Error()), "file", path)
	}
	if l.Logger != nil {
		l.Logger.Info("loaded environment from " + path)
	}
	return nil
}

// readFile returns nil when the file does not exist.
func readFile(path string) (*File, error) {
	// #nosec G304 -- path is derived from the weft home
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read config"), "file", path)
	}

	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, zerr.With(domain.Fail(domain.ErrInvalidConfig, "reason", err.Error()), "file", path)
	}
	return &f, nil
}

func apply(s *domain.Settings, f *File) error {
	if f.Jobs < 0 {
		return domain.Fail(domain.ErrInvalidConfig, "field", "jobs", "value", f.Jobs)
	}
	if f.Jobs > 0 {
		s.Jobs = f.Jobs
	}
	if f.IgnoredLibraries != nil {
		s.IgnoredLibraries = f.IgnoredLibraries
	}
	if f.CacheDir != "" {
		s.CacheDir = f.CacheDir
		if !filepath.IsAbs(s.CacheDir) {
			s.CacheDir = filepath.Join(s.Home, s.CacheDir)
		}
	}
	if f.LogFormat != "" {
		format, err := parseLogFormat(f.LogFormat)
		if err != nil {
			return err
		}
		s.LogFormat = format
	}
	s.BackendCommand = f.Backend.Command
	return nil
}

func applyEnv(s *domain.Settings) error {
	if v := os.Getenv(JobsEnvVar); v != "" {
		jobs, err := strconv.Atoi(v)
		if err != nil || jobs <= 0 {
			return domain.Fail(domain.ErrInvalidConfig, "env", JobsEnvVar, "value", v)
		}
		s.Jobs = jobs
	}
	if v := os.Getenv(LogFormatEnvVar); v != "" {
		format, err := parseLogFormat(v)
		if err != nil {
			return zerr.With(err, "env", LogFormatEnvVar)
		}
		s.LogFormat = format
	}
	return nil
}

func parseLogFormat(v string) (domain.LogFormat, error) {
	switch f := domain.LogFormat(v); f {
	case domain.LogFormatPretty, domain.LogFormatJSON:
		return f, nil
	default:
		return "", domain.Fail(domain.ErrInvalidConfig, "field", "log_format", "value", v)
	}
}
