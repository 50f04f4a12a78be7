// Package paths locates the silk configuration and data directories.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user directories silk creates.
const AppName = "silk"

// DefaultDataDirName is the working-directory data store used when nothing
// else selects one.
const DefaultDataDirName = ".silk"

// Environment variables that override directory defaults.
const (
	EnvConfigDir = "SILK_CONFIG_DIR"
	EnvDataDir   = "SILK_DATA_DIR"
)

// lookup holds the environment probes; tests replace them.
var lookup = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
	getwd         func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
	getwd:         os.Getwd,
}

// Dirs is a resolved pair of directories.
type Dirs struct {
	Config string
	Data   string
}

// DefaultConfigDir returns the per-user configuration directory:
// $XDG_CONFIG_HOME/silk or ~/.config/silk on Linux, os.UserConfigDir()/silk
// elsewhere.
func DefaultConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_CONFIG_HOME", ".config")
	}
	dir, err := lookup.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName), nil
}

// DefaultDataDir returns the per-user data directory:
// $XDG_DATA_HOME/silk or ~/.local/share/silk on Linux, os.UserConfigDir()/silk
// elsewhere.
func DefaultDataDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
	}
	dir, err := lookup.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName), nil
}

func xdgDir(env, homeRel string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, AppName), nil
	}
	home, err := lookup.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, homeRel, AppName), nil
}

// ResolveConfigDir picks the configuration directory: flag, then
// SILK_CONFIG_DIR, then DefaultConfigDir. Overrides are made absolute.
func ResolveConfigDir(flag string) (string, error) {
	if dir := firstSet(flag, os.Getenv(EnvConfigDir)); dir != "" {
		return filepath.Abs(dir)
	}
	return DefaultConfigDir()
}

// ResolveDataDir picks the data directory: flag, then the data_dir value
// from config.yaml, then SILK_DATA_DIR, then .silk under the working
// directory.
func ResolveDataDir(flag, configured string) (string, error) {
	if dir := firstSet(flag, configured, os.Getenv(EnvDataDir)); dir != "" {
		return filepath.Abs(dir)
	}
	cwd, err := lookup.getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// Resolve resolves both directories. configured is consulted only for the
// data directory.
func Resolve(configFlag, dataFlag, configured string) (Dirs, error) {
	cfg, err := ResolveConfigDir(configFlag)
	if err != nil {
		return Dirs{}, err
	}
	data, err := ResolveDataDir(dataFlag, configured)
	if err != nil {
		return Dirs{}, err
	}
	return Dirs{Config: cfg, Data: data}, nil
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
