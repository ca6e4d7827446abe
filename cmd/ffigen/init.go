package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"ffigen/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create an ffigen.toml manifest",
	Long: `Write a commented ffigen.toml template into [path] (default: the current
directory). The directory is created when missing. An existing manifest is
left alone unless --force is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringP("lib", "l", project.DefaultLibrary, "shared library the bindings load")
	initCmd.Flags().StringSliceP("input", "i", nil, "input header or directory (repeatable)")
	initCmd.Flags().Bool("force", false, "overwrite an existing ffigen.toml")
}

func runInit(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return err
	}
	if st, statErr := os.Stat(abs); statErr == nil && !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	lib, err := cmd.Flags().GetString("lib")
	if err != nil {
		return err
	}
	inputs, err := cmd.Flags().GetStringSlice("input")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	path, err := project.WriteTemplate(abs, lib, inputs, force)
	if err != nil {
		if errors.Is(err, project.ErrManifestExists) {
			return fmt.Errorf("project already initialized: %w (use --force to overwrite)", err)
		}
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	rel := path
	if wd, wdErr := os.Getwd(); wdErr == nil {
		if r, relErr := filepath.Rel(wd, path); relErr == nil {
			rel = r
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Initialized ffigen project: %s\n", filepath.ToSlash(rel))
	return nil
}
