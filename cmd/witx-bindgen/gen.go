package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wippyai/witx-bindgen/harness"
)

var genCmd = &cobra.Command{
	Use:   "gen [flags] [module.wasm]",
	Short: "Generate Go bindings and placeholder implementations",
	Long: `Gen writes one bindings.go per interface of a module and an extra.go with
placeholder implementations of the default and exported interfaces. The
placeholders never return; they only make generated code type-check.

Without a module argument every fixture selected by the configuration is
processed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGen,
}

func init() {
	genCmd.Flags().String("out", "", "output directory, overrides the configuration")
	genCmd.Flags().String("package", "", "package of the placeholder file, overrides the configuration")
	genCmd.Flags().String("import-prefix", "", "import path of the output directory, overrides the configuration")
	genCmd.Flags().Bool("no-format", false, "skip formatting of generated files")
}

func runGen(cmd *cobra.Command, args []string) error {
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		cfg.Generate.OutDir = out
	}
	if pkg, _ := cmd.Flags().GetString("package"); pkg != "" {
		cfg.Generate.Package = pkg
	}
	if prefix, _ := cmd.Flags().GetString("import-prefix"); prefix != "" {
		cfg.Generate.ImportPrefix = prefix
	}
	if noFormat, _ := cmd.Flags().GetBool("no-format"); noFormat {
		cfg.Generate.Format = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var (
		paths []string
		err   error
	)
	if len(args) == 1 {
		cfg.Fixtures.Dir = filepath.Dir(args[0])
		paths, err = harness.Generate(cmd.Context(), cfg, filepath.Base(args[0]))
	} else {
		paths, err = harness.Run(cmd.Context(), cfg)
	}
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}
