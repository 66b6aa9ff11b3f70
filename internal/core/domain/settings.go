package domain

// LogFormat selects the log handler.
type LogFormat string

const (
	// LogFormatPretty is colored, human-readable output.
	LogFormatPretty LogFormat = "pretty"
	// LogFormatJSON is one JSON object per record.
	LogFormatJSON LogFormat = "json"
)

// Settings is the user configuration merged from config.yaml and the
// environment.
type Settings struct {
	// Home is the weft home directory holding config.yaml and the cache.
	Home string
	// CacheDir is where installed IPs live.
	CacheDir string
	// Jobs bounds concurrent file scanning.
	Jobs int
	// IgnoredLibraries are dropped from references during scanning.
	IgnoredLibraries []string
	// BackendCommand is the default command run by build.
	BackendCommand []string
	// LogFormat selects pretty or JSON logging.
	LogFormat LogFormat
}

// Command is an external process to run.
type Command struct {
	Args []string
	Dir  string
	Env  map[string]string
}
