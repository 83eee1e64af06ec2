package internal

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List the declared targets",
	Args:  cobra.NoArgs,
	RunE:  runTargets,
}

func init() {
	rootCmd.AddCommand(targetsCmd)
}

func runTargets(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, name := range reg.Targets() {
		t, _ := reg.Target(name)
		width := "-"
		if t.PointerWidth != 0 {
			width = fmt.Sprint(t.PointerWidth, "-bit")
		}
		endian := t.Endianness
		if endian == "" {
			endian = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", name, t.Arch, t.OS, t.ABI, width, endian)
	}
	return w.Flush()
}
