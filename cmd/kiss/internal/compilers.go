package internal

import (
	"fmt"
	"runtime"
	"strings"
	"text/tabwriter"

	"github.com/goplus/kiss/internal/toolchain"
	"github.com/spf13/cobra"
)

var compilersCmd = &cobra.Command{
	Use:   "compilers",
	Short: "List the declared compilers",
	Long: `Compilers lists every concrete compiler with its extends chain.
The default compiler of the host is marked with '*'.`,
	Args: cobra.NoArgs,
	RunE: runCompilers,
}

var profilesCmd = &cobra.Command{
	Use:   "profiles [compiler]",
	Short: "List the profiles of a compiler",
	Long:  `Profiles resolves a compiler and lists its concrete profiles.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProfiles,
}

func init() {
	rootCmd.AddCommand(compilersCmd)
	rootCmd.AddCommand(profilesCmd)
}

func runCompilers(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	def, _ := toolchain.DefaultCompiler(reg, runtime.GOOS)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, name := range reg.Compilers() {
		mark := " "
		if name == def {
			mark = "*"
		}
		c, _ := reg.Compiler(name)
		chain := []string{name}
		seen := map[string]bool{name: true}
		for c.Extends != "" {
			base, ok := reg.Compiler(c.Extends)
			if !ok || seen[base.Name] {
				// Broken chains are reported by resolution.
				chain = append(chain, c.Extends+"?")
				break
			}
			seen[base.Name] = true
			chain = append(chain, base.Name)
			c = base
		}
		fmt.Fprintf(w, "%s %s\t%s\n", mark, name, strings.Join(chain, " < "))
	}
	return w.Flush()
}

func runProfiles(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	name, err := compilerArg(reg, args)
	if err != nil {
		return err
	}
	rc, err := toolchain.NewCache(reg).Resolve(name)
	if err != nil {
		return err
	}
	for _, p := range rc.ProfileNames() {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}
