package internal

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/goplus/kiss/internal/toolchain"
	"github.com/qiniu/x/log"
	"github.com/spf13/cobra"
)

var checkJobs int

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Resolve every declared compiler",
	Long: `Check resolves every concrete compiler and reports each one that
fails: extends cycles, unknown references, duplicate names and feature
rule violations.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().IntVarP(&checkJobs, "jobs", "j", runtime.NumCPU(), "Number of compilers resolved in parallel")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	cache := toolchain.NewCache(reg)
	resolved, err := cache.ResolveAll(checkJobs)
	log.Debug("resolved", len(resolved), "compilers")

	out := cmd.OutOrStdout()
	failed := 0
	for _, name := range reg.Compilers() {
		if rc, ok := resolved[name]; ok {
			printOK(out, name, strings.Join(rc.ProfileNames(), " "))
			continue
		}
		failed++
		// Failures are not cached: resolving again gives the error of
		// this compiler alone.
		_, rerr := cache.Resolve(name)
		printFailure(out, name, rerr)
	}
	if err != nil {
		return fmt.Errorf("%d of %d compilers failed to resolve", failed, len(reg.Compilers()))
	}
	return nil
}
