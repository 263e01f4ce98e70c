package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wippyai/witx-bindgen/errors"
	"github.com/wippyai/witx-bindgen/extract"
	"github.com/wippyai/witx-bindgen/witx"
)

var embedCmd = &cobra.Command{
	Use:   "embed [flags] module.wasm",
	Short: "Append a msgpack fragment to a module as a custom section",
	Args:  cobra.ExactArgs(1),
	RunE:  runEmbed,
}

func init() {
	embedCmd.Flags().String("fragment", "", "msgpack fragment written by extract -o")
	embedCmd.Flags().String("name", "", "custom section name (default <prefix>:embedded)")
	embedCmd.Flags().StringP("output", "o", "", "output module")
	_ = embedCmd.MarkFlagRequired("fragment")
	_ = embedCmd.MarkFlagRequired("output")
}

func runEmbed(cmd *cobra.Command, args []string) error {
	fragPath, _ := cmd.Flags().GetString("fragment")
	name, _ := cmd.Flags().GetString("name")
	output, _ := cmd.Flags().GetString("output")
	if name == "" {
		name = cfg.SectionPrefix + ":embedded"
	}

	module, err := os.ReadFile(args[0])
	if err != nil {
		return errors.Load("reading "+args[0], err)
	}
	data, err := os.ReadFile(fragPath)
	if err != nil {
		return errors.Load("reading "+fragPath, err)
	}
	frag, err := witx.DecodeFragment(data)
	if err != nil {
		return err
	}

	out, err := extract.Embed(module, name, frag)
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, out, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s with section %s\n", output, name)
	return nil
}
