package internal

import (
	"os"

	"github.com/goplus/kiss/internal/env"
	"github.com/qiniu/x/log"
	"github.com/spf13/cobra"
)

var (
	toolchainDirs []string
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "kiss",
	Short: "kiss is a meta-build tool for C/C++ projects",
	Long: `kiss reads declarative toolchain descriptions and resolves them into
compiler and linker flags per build profile and artifact kind.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetOutputLevel(log.Ldebug)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringArrayVar(&toolchainDirs, "toolchains", nil,
		"Directory of toolchain declaration files (repeatable, overrides "+env.ToolchainPathEnv+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug output")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		explain(os.Stderr, err)
		log.Fatal(err)
	}
}
