// Package toolchain runs the external C compiler: preprocessing headers,
// probing aggregate sizes, and reading the exported symbols of the target
// library.
package toolchain

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Compiler is a C compiler executable plus the flags passed on every call.
type Compiler struct {
	Path  string
	Flags []string
}

// DefaultCompiler is used when neither the manifest nor the command line
// names one.
const DefaultCompiler = "gcc"

func (c Compiler) path() string {
	if c.Path == "" {
		return DefaultCompiler
	}
	return c.Path
}

// run executes the compiler with args and returns stdout. A failed run
// returns the trimmed stderr as part of the error.
func (c Compiler) run(ctx context.Context, args ...string) ([]byte, error) {
	return runTool(ctx, c.path(), args...)
}

func runTool(ctx context.Context, tool string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, tool, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	Logger().Debug("tool finished",
		zap.String("tool", tool),
		zap.Strings("args", args),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err),
	)
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, err
		}
		if i := strings.IndexByte(msg, '\n'); i > 0 {
			msg = msg[:i]
		}
		return nil, fmt.Errorf("%w: %s", err, msg)
	}
	return stdout.Bytes(), nil
}
