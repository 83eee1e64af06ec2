package env

import (
	"os"
	"path/filepath"
)

// ToolchainPathEnv names the variable listing toolchain declaration
// directories, separated like PATH.
const ToolchainPathEnv = "KISS_TOOLCHAIN_PATH"

// ConfigDir returns the per-user kiss configuration directory.
func ConfigDir() (string, error) {
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userConfigDir, "kiss"), nil
}

// ToolchainDirs returns the directories searched for toolchain
// declaration files: the entries of KISS_TOOLCHAIN_PATH when it is set,
// otherwise the toolchains directory under ConfigDir.
func ToolchainDirs() ([]string, error) {
	if v := os.Getenv(ToolchainPathEnv); v != "" {
		var dirs []string
		for _, dir := range filepath.SplitList(v) {
			if dir != "" {
				dirs = append(dirs, dir)
			}
		}
		return dirs, nil
	}
	configDir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	return []string{filepath.Join(configDir, "toolchains")}, nil
}
