package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/witx-bindgen/bindgen"
	"github.com/wippyai/witx-bindgen/errors"
	"github.com/wippyai/witx-bindgen/extract"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [flags] module.wasm",
	Short: "Show the core imports and exports of a module next to its interfaces",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().BoolP("interactive", "i", false, "browse interfaces in a terminal UI")
}

func runInspect(cmd *cobra.Command, args []string) error {
	if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
		return runInteractive(args[0])
	}

	mi, err := loadModule(args[0])
	if err != nil {
		return err
	}
	core, err := coreFunctions(cmd, mi)
	if err != nil {
		return err
	}

	p := painter(useColor(cmd, os.Stdout))
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n\n", p.paint(titleStyle, "Module"), args[0])
	printCore(out, p, core)
	fmt.Fprintln(out)
	printStyledInterfaces(out, p, mi)
	return nil
}

type coreFunc struct {
	module   string
	name     string
	params   []string
	result   []string
	imported bool
}

func coreFunctions(cmd *cobra.Command, mi *extract.ModuleInterfaces) ([]coreFunc, error) {
	ctx := cmd.Context()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	compiled, err := rt.CompileModule(ctx, mi.Wasm)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "compiling module")
	}
	defer compiled.Close(ctx)

	var out []coreFunc
	for _, def := range compiled.ImportedFunctions() {
		mod, name, _ := def.Import()
		out = append(out, coreFunc{module: mod, name: name, params: valueTypes(def.ParamTypes()), result: valueTypes(def.ResultTypes()), imported: true})
	}
	exports := compiled.ExportedFunctions()
	names := make([]string, 0, len(exports))
	for name := range exports {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		def := exports[name]
		out = append(out, coreFunc{name: name, params: valueTypes(def.ParamTypes()), result: valueTypes(def.ResultTypes())})
	}
	return out, nil
}

func valueTypes(ts []api.ValueType) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = api.ValueTypeName(t)
	}
	return out
}

func printCore(w io.Writer, p painter, funcs []coreFunc) {
	fmt.Fprintln(w, p.paint(roleStyle, "core functions"))
	if len(funcs) == 0 {
		fmt.Fprintln(w, "  none")
	}
	for _, f := range funcs {
		kind, name := "export", f.name
		if f.imported {
			kind, name = "import", f.module+"."+f.name
		}
		fmt.Fprintf(w, "  %s %s(%s) -> (%s)\n", kind, p.paint(funcStyle, name),
			p.paint(typeStyle, strings.Join(f.params, ", ")),
			p.paint(typeStyle, strings.Join(f.result, ", ")))
	}
}

func printStyledInterfaces(w io.Writer, p painter, mi *extract.ModuleInterfaces) {
	fmt.Fprintln(w, p.paint(roleStyle, "interfaces"))
	if mi.Interfaces.Len() == 0 {
		fmt.Fprintln(w, "  none")
		return
	}
	for _, e := range mi.Interfaces.All() {
		fmt.Fprintf(w, "  %s %s\n", e.Role, p.paint(titleStyle, e.Name))
		m := bindgen.NewMapper(e.Interface)
		for i := range e.Interface.Functions {
			f := &e.Interface.Functions[i]
			fmt.Fprintf(w, "    %s\n      %s\n",
				p.paint(funcStyle, witSignature(e.Interface, f)),
				p.paint(typeStyle, goSignature(m, f)))
		}
	}
}
