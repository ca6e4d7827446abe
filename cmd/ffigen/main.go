// Package main implements the ffigen CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ffigen/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "ffigen",
	Short: "C header to FFI binding generator",
	Long: `ffigen preprocesses C headers, resolves their declarations into an FFI
type registry and renders QuickJS or JSON bindings for a shared library.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

// main registers subcommands and persistent flags and runs the root command.
// Any error exits with status 1.
func main() {
	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Info(false))

	rootCmd.AddCommand(genCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	rootCmd.PersistentFlags().String("log-level", "off", "log level (off|error|warn|info|debug)")
	rootCmd.PersistentFlags().String("config", "", "path to ffigen.toml (default: search upward from the working directory)")
	rootCmd.PersistentFlags().String("min-severity", "info", "hide diagnostics below this severity (info|warning|error)")
	rootCmd.PersistentFlags().String("diag-format", "pretty", "diagnostics format (pretty|json|sarif|short)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // file descriptors fit in int
}
