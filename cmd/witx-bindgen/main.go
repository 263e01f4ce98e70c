package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/wippyai/witx-bindgen/bindgen"
	"github.com/wippyai/witx-bindgen/config"
	"github.com/wippyai/witx-bindgen/extract"
	"github.com/wippyai/witx-bindgen/harness"
)

var rootCmd = &cobra.Command{
	Use:               "witx-bindgen",
	Short:             "Extract component interfaces from wasm modules and generate Go bindings",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// cfg is the configuration loaded by setup.
var cfg = config.Default()

func main() {
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(genCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(embedCmd)
	rootCmd.AddCommand(mapCmd)

	rootCmd.PersistentFlags().String("config", "", "configuration file (TOML)")
	rootCmd.PersistentFlags().String("log-level", "", "log level, overrides the configuration")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("section-prefix", "", "custom section name prefix, overrides the configuration")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if prefix, _ := cmd.Flags().GetString("section-prefix"); prefix != "" {
		cfg.SectionPrefix = prefix
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := newLogger(cfg.LogLevel())
	if err != nil {
		return err
	}
	extract.SetLogger(log)
	bindgen.SetLogger(log)
	harness.SetLogger(log)
	harness.InstallDiagnostics()
	return nil
}

func newLogger(level zapcore.Level) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}

// useColor decides whether output written to f is styled.
func useColor(cmd *cobra.Command, f *os.File) bool {
	switch flag, _ := cmd.Flags().GetString("color"); flag {
	case "on":
		return true
	case "off":
		return false
	default:
		return term.IsTerminal(int(f.Fd()))
	}
}
