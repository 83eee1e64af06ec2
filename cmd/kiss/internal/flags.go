package internal

import (
	"fmt"
	"io"
	"strings"

	"github.com/goplus/kiss/internal/toolchain"
	"github.com/goplus/kiss/pkgs/buildsys"
	"github.com/goplus/kiss/pkgs/buildsys/autotools"
	"github.com/goplus/kiss/pkgs/buildsys/cmake"
	"github.com/spf13/cobra"
)

var (
	flagsProfile   string
	flagsKind      string
	flagsTarget    string
	flagsCMake     bool
	flagsAutotools bool
	flagsGenerator string
)

var flagsCmd = &cobra.Command{
	Use:   "flags [compiler]",
	Short: "Print the resolved flags of a profile",
	Long: `Flags resolves a compiler and prints the compiler flags, linker flags
and enabled features of one profile and artifact kind.

With --cmake the flags are printed as CMake configure arguments instead,
with --autotools as the environment and arguments of ./configure.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFlags,
}

func init() {
	flagsCmd.Flags().StringVarP(&flagsProfile, "profile", "p", "debug", "Build profile")
	flagsCmd.Flags().StringVarP(&flagsKind, "kind", "k", "bin", "Artifact kind: bin, lib or dyn")
	flagsCmd.Flags().StringVarP(&flagsTarget, "target", "t", "", "Target, as arch-vendor-os-abi")
	flagsCmd.Flags().BoolVar(&flagsCMake, "cmake", false, "Print CMake configure arguments")
	flagsCmd.Flags().BoolVar(&flagsAutotools, "autotools", false, "Print ./configure environment and arguments")
	flagsCmd.Flags().StringVarP(&flagsGenerator, "generator", "G", "", "CMake generator used with --cmake")
	rootCmd.AddCommand(flagsCmd)
}

func runFlags(cmd *cobra.Command, args []string) error {
	if flagsCMake && flagsAutotools {
		return fmt.Errorf("--cmake and --autotools are mutually exclusive")
	}
	kind, err := toolchain.ParseArtifactKind(flagsKind)
	if err != nil {
		return err
	}
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	name, err := compilerArg(reg, args)
	if err != nil {
		return err
	}
	tc, err := toolchain.NewToolchain(toolchain.NewCache(reg), name, flagsTarget)
	if err != nil {
		return err
	}
	flags, ok := tc.Compiler.FlagsFor(flagsProfile, kind)
	if !ok {
		return fmt.Errorf("compiler '%s' has no profile '%s' (have: %s)",
			name, flagsProfile, strings.Join(tc.Compiler.ProfileNames(), ", "))
	}

	out := cmd.OutOrStdout()
	switch {
	case flagsCMake:
		c := cmake.New(".").Generator(flagsGenerator)
		if err := buildsys.Apply(c, tc, flagsProfile, kind); err != nil {
			return err
		}
		printLines(out, c.ConfigureArgs())
		return nil
	case flagsAutotools:
		a := autotools.New(".")
		if err := buildsys.Apply(a, tc, flagsProfile, kind); err != nil {
			return err
		}
		printLines(out, a.Environ())
		printLines(out, a.ConfigureArgs())
		return nil
	}
	fmt.Fprintln(out, "compiler:", strings.Join(flags.CompilerFlags.Flags(), " "))
	fmt.Fprintln(out, "linker:  ", strings.Join(flags.LinkerFlags.Flags(), " "))
	fmt.Fprintln(out, "features:", strings.Join(flags.Features.Names(), " "))
	return nil
}

func printLines(w io.Writer, lines []string) {
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}
