package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ffigen/internal/driver"
	"ffigen/internal/toolchain"
)

// parseLogLevel maps --log-level; ok=false for "off".
func parseLogLevel(value string) (zapcore.Level, bool, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "off", "none":
		return zapcore.InfoLevel, false, nil
	case "error":
		return zapcore.ErrorLevel, true, nil
	case "warn", "warning":
		return zapcore.WarnLevel, true, nil
	case "info":
		return zapcore.InfoLevel, true, nil
	case "debug":
		return zapcore.DebugLevel, true, nil
	default:
		return 0, false, fmt.Errorf("invalid --log-level value %q (expected off|error|warn|info|debug)", value)
	}
}

func newLogger(level zapcore.Level, color bool) *zap.Logger {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	if color {
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(os.Stderr), level)
	return zap.New(core).Named("ffigen")
}

// setupLogging installs the --log-level logger into the packages that log.
func setupLogging(cmd *cobra.Command, _ []string) error {
	value, err := cmd.Root().PersistentFlags().GetString("log-level")
	if err != nil {
		return fmt.Errorf("failed to get log-level flag: %w", err)
	}
	level, on, err := parseLogLevel(value)
	if err != nil {
		return err
	}
	if !on {
		return nil
	}
	logger := newLogger(level, isTerminal(os.Stderr))
	driver.SetLogger(logger.Named("driver"))
	toolchain.SetLogger(logger.Named("toolchain"))
	return nil
}
