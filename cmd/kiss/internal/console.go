package internal

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/goplus/kiss/internal/toolchain"
)

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	nameStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// explain prints what err alone does not show, such as the loop of a
// cyclic extends chain.
func explain(w io.Writer, err error) {
	var cyc *toolchain.CyclicExtendsError
	if errors.As(err, &cyc) {
		fmt.Fprintln(w, errorStyle.Render("cyclic "+cyc.Kind+" extends:"))
		fmt.Fprintln(w, indent(dimStyle.Render(cyc.Diagram()), "  "))
	}
	var rv *toolchain.RuleViolation
	if errors.As(err, &rv) && len(rv.Enabled) > 0 {
		fmt.Fprintln(w, dimStyle.Render("enabled features: "+strings.Join(rv.Enabled, ", ")))
	}
}

// printFailure reports a compiler that failed to resolve.
func printFailure(w io.Writer, name string, err error) {
	fmt.Fprintf(w, "%s %s: %v\n", errorStyle.Render("FAIL"), name, err)
	explain(w, err)
}

func printOK(w io.Writer, name, detail string) {
	fmt.Fprintf(w, "%s %s %s\n", okStyle.Render("ok"), nameStyle.Render(name), dimStyle.Render(detail))
}

func indent(s, prefix string) string {
	return prefix + strings.ReplaceAll(s, "\n", "\n"+prefix)
}
