package domain

import (
	"os"
	"path/filepath"
)

const (
	// ManifestFileName is the per-IP manifest.
	ManifestFileName = "ip.toml"

	// LockFileName is the resolved lock written next to the manifest.
	LockFileName = "ip.lock"

	// TargetDirName is the per-IP output directory.
	TargetDirName = "target"

	// BlueprintFileName is the planned file list inside the target directory.
	BlueprintFileName = "blueprint.tsv"

	// HomeDirName is the per-user state directory under $HOME.
	HomeDirName = ".weft"

	// CacheDirName is the content-addressed IP cache inside the home directory.
	CacheDirName = "cache"

	// ConfigFileName is the user configuration inside the home directory.
	ConfigFileName = "config.yaml"

	// HomeEnvVar overrides the home directory.
	HomeEnvVar = "WEFT_HOME"

	// LogFormatEnvVar selects the log format before config.yaml is read.
	LogFormatEnvVar = "WEFT_LOG_FORMAT"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultHomePath returns $WEFT_HOME, falling back to ~/.weft.
func DefaultHomePath() string {
	if h := os.Getenv(HomeEnvVar); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return HomeDirName
	}
	return filepath.Join(home, HomeDirName)
}

// BlueprintPath returns the blueprint location for an IP rooted at root.
func BlueprintPath(root string) string {
	return filepath.Join(root, TargetDirName, BlueprintFileName)
}

// LockPath returns the lock location for an IP rooted at root.
func LockPath(root string) string {
	return filepath.Join(root, LockFileName)
}

// ManifestPath returns the manifest location for an IP rooted at root.
func ManifestPath(root string) string {
	return filepath.Join(root, ManifestFileName)
}
