package toolchain

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"ffigen/internal/ffierr"
)

// Preprocessed is the output of `compiler -E` with linemarkers removed.
type Preprocessed struct {
	Text    []byte
	Origins *Origins
}

// Preprocess runs `compiler -E flags path`. Failures are classified as
// external tool errors.
func (c Compiler) Preprocess(ctx context.Context, path string) (*Preprocessed, error) {
	args := make([]string, 0, len(c.Flags)+2)
	args = append(args, "-E")
	args = append(args, c.Flags...)
	args = append(args, path)

	start := time.Now()
	out, err := c.run(ctx, args...)
	if err != nil {
		return nil, ffierr.ExternalTool(ffierr.PhasePreprocess, c.path(), err)
	}
	text, origins := StripLinemarkers(out)
	Logger().Debug("preprocessed",
		zap.String("file", path),
		zap.Int("bytes", len(text)),
		zap.Int("marks", origins.Lines.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &Preprocessed{Text: text, Origins: origins}, nil
}

// ReadRaw loads a header without preprocessing it.
func ReadRaw(path string) (*Preprocessed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ffierr.New(ffierr.PhaseLoad, ffierr.KindIO).Name(path).Cause(err).Build()
	}
	return &Preprocessed{Text: data}, nil
}
