package main

import (
	"fmt"
	"go/types"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/witx-bindgen/bindgen"
	"github.com/wippyai/witx-bindgen/witx"
)

var mapCmd = &cobra.Command{
	Use:   "map type...",
	Short: "Print the Go type a primitive interface type maps to",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMap,
}

func runMap(cmd *cobra.Command, args []string) error {
	lower := witx.NewLowerer(witx.NewInterface("types"))
	m := bindgen.NewMapper(lower.Interface())

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, name := range args {
		wt, err := wit.ParseType(name)
		if err != nil {
			return fmt.Errorf("parse %q: %w", name, err)
		}
		t, err := lower.Lower(wt)
		if err != nil {
			return err
		}
		expr, err := m.TryMap(t)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\n", name, types.ExprString(expr))
	}
	return tw.Flush()
}
