package main

import (
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"github.com/tetratelabs/wazero"

	"github.com/wippyai/witx-bindgen/bindgen"
	"github.com/wippyai/witx-bindgen/errors"
	"github.com/wippyai/witx-bindgen/extract"
	"github.com/wippyai/witx-bindgen/witx"
)

var extractCmd = &cobra.Command{
	Use:   "extract [flags] module.wasm",
	Short: "Extract and merge the interfaces embedded in a module",
	Long: `Extract decodes every custom section whose name starts with the section
prefix, merges the results and prints the interfaces. With -o the merged
interfaces are written as a msgpack fragment that embed accepts.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringP("output", "o", "", "write the merged interfaces as a msgpack fragment")
	extractCmd.Flags().Bool("dump", false, "dump the interface IR")
	extractCmd.Flags().Bool("validate", false, "check that the returned module still compiles")
}

func runExtract(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	dump, _ := cmd.Flags().GetBool("dump")
	validate, _ := cmd.Flags().GetBool("validate")

	mi, err := loadModule(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printInterfaces(out, mi.Interfaces)

	if dump {
		cs := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}
		cs.Fdump(out, mi.Interfaces)
	}

	if validate {
		rt := wazero.NewRuntime(cmd.Context())
		defer rt.Close(cmd.Context())
		if _, err := rt.CompileModule(cmd.Context(), mi.Wasm); err != nil {
			return errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "compiling extracted module")
		}
		fmt.Fprintln(out, "module compiles")
	}

	if output != "" {
		data, err := extract.EncodeFragment(mi.Interfaces.Fragment())
		if err != nil {
			return err
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s (%d bytes)\n", output, len(data))
	}
	return nil
}

func printInterfaces(w io.Writer, c *witx.ComponentInterfaces) {
	if c.Len() == 0 {
		fmt.Fprintln(w, "no interfaces")
		return
	}
	for _, e := range c.All() {
		fmt.Fprintf(w, "%s %s\n", e.Role, e.Name)
		m := bindgen.NewMapper(e.Interface)
		for i := range e.Interface.Functions {
			f := &e.Interface.Functions[i]
			fmt.Fprintf(w, "  %s\n    %s\n", witSignature(e.Interface, f), goSignature(m, f))
		}
	}
}
