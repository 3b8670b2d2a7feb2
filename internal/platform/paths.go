// Package platform resolves per-OS config and data locations for the board.
package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultAppName names the config and data directories.
const DefaultAppName = "pipeline"

// devSuffix separates dev-mode state from a regular install.
const devSuffix = "-dev"

// Paths holds the resolved on-disk locations of one app instance.
type Paths struct {
	ConfigPath string
	DataDir    string
	DBPath     string
	LogDir     string
}

// Options selects which app instance to resolve.
type Options struct {
	AppName string
	DevMode bool
}

// baseEnv names the environment variables that override the config and data bases on one OS.
type baseEnv struct {
	config string
	data   string
}

// overridesByOS lists the honoured base overrides. macOS and unknown systems use the Go defaults.
var overridesByOS = map[string]baseEnv{
	"linux":   {config: "XDG_CONFIG_HOME", data: "XDG_DATA_HOME"},
	"windows": {config: "APPDATA", data: "LOCALAPPDATA"},
}

var (
	errEmptyBase    = errors.New("empty base dirs")
	errEmptyAppName = errors.New("empty app name")
)

// DefaultPaths resolves the regular install of the default app.
func DefaultPaths() (Paths, error) {
	return DefaultPathsWithOptions(Options{AppName: DefaultAppName})
}

// DefaultPathsWithOptions resolves paths against the current user and OS.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	appName := strings.TrimSpace(opts.AppName)
	if appName == "" {
		appName = DefaultAppName
	}
	if opts.DevMode {
		appName += devSuffix
	}

	configBase, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user config dir: %w", err)
	}
	dataBase, err := userDataDir(runtime.GOOS, configBase)
	if err != nil {
		return Paths{}, err
	}

	env := make(map[string]string, 2)
	if names, ok := overridesByOS[runtime.GOOS]; ok {
		env[names.config] = os.Getenv(names.config)
		env[names.data] = os.Getenv(names.data)
	}
	return PathsFor(runtime.GOOS, env, configBase, dataBase, appName)
}

// userDataDir picks the data base that Go has no helper for.
func userDataDir(goos, configBase string) (string, error) {
	if goos != "linux" {
		return configBase, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("user home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share"), nil
}

// PathsFor resolves paths for goos from explicit inputs so tests stay hermetic.
func PathsFor(goos string, env map[string]string, userConfigDir, userDataDir, appName string) (Paths, error) {
	if userConfigDir == "" || userDataDir == "" {
		return Paths{}, errEmptyBase
	}
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Paths{}, errEmptyAppName
	}

	configBase, dataBase := userConfigDir, userDataDir
	if names, ok := overridesByOS[goos]; ok {
		if v := strings.TrimSpace(env[names.config]); v != "" {
			configBase = v
		}
		if v := strings.TrimSpace(env[names.data]); v != "" {
			dataBase = v
		}
	}

	dataDir := filepath.Join(dataBase, appName)
	return Paths{
		ConfigPath: filepath.Join(configBase, appName, "config.toml"),
		DataDir:    dataDir,
		DBPath:     filepath.Join(dataDir, appName+".db"),
		LogDir:     filepath.Join(dataDir, "log"),
	}, nil
}
