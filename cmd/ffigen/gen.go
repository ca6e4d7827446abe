package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ffigen/internal/driver"
	"ffigen/internal/toolchain"
)

var errGenerationFailed = errors.New("generation failed")

var genCmd = &cobra.Command{
	Use:   "gen [flags] [header.h|dir]...",
	Short: "Generate bindings for C headers",
	Long: `Preprocess the input headers, resolve their declarations and write
bindings. Flags override the [generate] table of ffigen.toml.`,
	RunE: runGen,
}

func init() {
	generateFlags(genCmd)
	genCmd.Flags().StringP("output", "o", "", "output file, directory (several per-file inputs) or - for stdout")
	genCmd.Flags().String("format", "quickjs", "output format (quickjs|json)")
	genCmd.Flags().String("ui", "auto", "user interface (auto|on|off)")
	genCmd.Flags().Bool("keep-preprocessed", false, "write the preprocessed header next to each output")
	genCmd.Flags().Bool("no-cache", false, "do not use the on-disk size cache")
}

func runGen(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	out, err := readDiagOutput(cmd)
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}

	req := driver.Request{
		Config:         cfg,
		MaxDiagnostics: out.max,
		Timings:        timings,
		Stdout:         cmd.OutOrStdout(),
	}
	if !noCache && cfg.Sizes {
		cache, cacheErr := toolchain.OpenCache("ffigen")
		if cacheErr != nil {
			driver.Logger().Warn("size cache disabled", zap.Error(cacheErr))
		} else {
			req.Cache = cache
		}
	}

	var res *driver.Result
	files, _ := driver.ExpandInputs(cfg.Inputs)
	if shouldUseTUI(mode, cfg.Output) && !out.quiet && len(files) > 0 {
		res, err = runGenerateWithUI(cmd.Context(), "ffigen gen", files, req)
	} else {
		res, err = driver.Generate(cmd.Context(), req)
	}
	if printErr := printDiagnostics(os.Stderr, res, out); printErr != nil {
		return printErr
	}
	if err != nil {
		return err
	}
	if !out.quiet && cfg.Output != "-" {
		for _, p := range res.Written {
			fmt.Fprintf(os.Stderr, "wrote %s\n", p)
		}
	}
	if res.Failed() {
		return errGenerationFailed
	}
	return nil
}
