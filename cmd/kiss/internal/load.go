package internal

import (
	"fmt"
	"runtime"

	"github.com/goplus/kiss/internal/env"
	"github.com/goplus/kiss/internal/toolchain"
	"github.com/goplus/kiss/internal/toolchain/loader"
	"github.com/qiniu/x/log"
)

// loadRegistry loads the toolchain declarations of the --toolchains
// directories or, when none is given, of the configured search path.
func loadRegistry() (*toolchain.Registry, error) {
	dirs := toolchainDirs
	if len(dirs) == 0 {
		var err error
		if dirs, err = env.ToolchainDirs(); err != nil {
			return nil, fmt.Errorf("failed to get toolchain search path: %w", err)
		}
	}
	log.Debug("toolchain search path:", dirs)

	reg := toolchain.NewRegistry()
	loaded, err := loader.LoadDirs(reg, dirs...)
	for _, path := range loaded {
		log.Debug("loaded", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load toolchains: %w", err)
	}
	if len(loaded) == 0 {
		log.Warn("no toolchain files found in", dirs)
	}
	return reg, nil
}

// compilerArg returns the compiler named by args, or the default
// compiler of the host.
func compilerArg(reg *toolchain.Registry, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	name, ok := toolchain.DefaultCompiler(reg, runtime.GOOS)
	if !ok {
		return "", fmt.Errorf("no compiler given and no default compiler declared for %s", runtime.GOOS)
	}
	log.Debug("using default compiler", name)
	return name, nil
}

