package config

// File is the structure of $WEFT_HOME/config.yaml.
type File struct {
	Jobs             int         `yaml:"jobs"`
	IgnoredLibraries []string    `yaml:"ignored_libraries"`
	CacheDir         string      `yaml:"cache_dir"`
	LogFormat        string      `yaml:"log_format"`
	Backend          BackendFile `yaml:"backend"`
}

// BackendFile configures the build backend.
type BackendFile struct {
	Command []string `yaml:"command"`
}
