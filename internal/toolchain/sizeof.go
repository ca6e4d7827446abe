package toolchain

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ffigen/internal/ffierr"
)

// UnknownSize marks an aggregate whose size could not be queried.
const UnknownSize int64 = -1

// SizeQuery asks the compiler for sizeof of every spelling, as seen after
// including Header.
type SizeQuery struct {
	Compiler  Compiler
	Header    string
	Spellings []string
	// Jobs bounds the per-type fallback. Zero means one job per CPU.
	Jobs  int
	Cache *Cache
}

// ProbeSource builds a C program printing one size per line, in order.
func ProbeSource(header string, spellings []string) string {
	var b strings.Builder
	b.WriteString("#include <stdio.h>\n")
	fmt.Fprintf(&b, "#include %s\n", strconv.Quote(header))
	b.WriteString("int main(void) {\n")
	for _, s := range spellings {
		fmt.Fprintf(&b, "\tprintf(\"%%lu\\n\", (unsigned long)sizeof(%s));\n", s)
	}
	b.WriteString("\treturn 0;\n}\n")
	return b.String()
}

// ParseSizes reads want sizes from probe output.
func ParseSizes(out []byte, want int) ([]int64, error) {
	sizes := make([]int64, 0, want)
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		n, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("probe output %q: %w", line, err)
		}
		sizes = append(sizes, n)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(sizes) != want {
		return nil, fmt.Errorf("probe printed %d sizes, want %d", len(sizes), want)
	}
	return sizes, nil
}

// Run answers the query. Spellings the compiler rejects get UnknownSize; the
// returned error is only set when nothing could be probed at all.
func (q SizeQuery) Run(ctx context.Context) (map[string]int64, error) {
	result := make(map[string]int64, len(q.Spellings))
	if len(q.Spellings) == 0 {
		return result, nil
	}
	header, err := filepath.Abs(q.Header)
	if err != nil {
		return nil, err
	}
	headerText, err := os.ReadFile(header) //nolint:gosec // header comes from the project inputs
	if err != nil {
		return nil, ffierr.New(ffierr.PhaseSizeQuery, ffierr.KindIO).Name(header).Cause(err).Build()
	}

	key := SizeKey(q.Compiler, headerText, q.Spellings)
	if cached, ok, cerr := q.Cache.GetSizes(key); cerr != nil {
		Logger().Warn("size cache read failed", zap.Error(cerr))
	} else if ok {
		Logger().Debug("size cache hit", zap.String("file", header))
		return cached.Sizes, nil
	}

	dir, err := os.MkdirTemp("", "ffigen-sizeof-*")
	if err != nil {
		return nil, err
	}
	defer func() { _ = os.RemoveAll(dir) }()

	sizes, batchErr := q.probe(ctx, dir, "batch", header, q.Spellings)
	if batchErr == nil {
		for i, s := range q.Spellings {
			result[s] = sizes[i]
		}
	} else {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(batchErr, exec.ErrNotFound) {
			return nil, batchErr
		}
		Logger().Debug("batch size probe failed, probing per type",
			zap.String("file", header), zap.Error(batchErr))
		if err := q.perType(ctx, dir, header, result); err != nil {
			return nil, err
		}
	}

	if perr := q.Cache.PutSizes(key, &SizePayload{Header: header, Sizes: result}); perr != nil {
		Logger().Warn("size cache write failed", zap.Error(perr))
	}
	return result, nil
}

func (q SizeQuery) perType(ctx context.Context, dir, header string, result map[string]int64) error {
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	if q.Jobs > 0 {
		g.SetLimit(q.Jobs)
	}
	for i, spelling := range q.Spellings {
		spelling := spelling
		name := fmt.Sprintf("probe%d", i)
		g.Go(func() error {
			size := UnknownSize
			if sizes, err := q.probe(gctx, dir, name, header, []string{spelling}); err == nil {
				size = sizes[0]
			} else {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				Logger().Debug("size probe failed", zap.String("type", spelling), zap.Error(err))
			}
			mu.Lock()
			result[spelling] = size
			mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

func (q SizeQuery) probe(ctx context.Context, dir, name, header string, spellings []string) ([]int64, error) {
	src := filepath.Join(dir, name+".c")
	bin := filepath.Join(dir, name)
	if err := os.WriteFile(src, []byte(ProbeSource(header, spellings)), 0o600); err != nil {
		return nil, err
	}
	args := make([]string, 0, len(q.Compiler.Flags)+3)
	args = append(args, q.Compiler.Flags...)
	args = append(args, "-o", bin, src)
	if _, err := q.Compiler.run(ctx, args...); err != nil {
		return nil, ffierr.ExternalTool(ffierr.PhaseSizeQuery, q.Compiler.path(), err)
	}
	out, err := runTool(ctx, bin)
	if err != nil {
		return nil, ffierr.ExternalTool(ffierr.PhaseSizeQuery, bin, err)
	}
	return ParseSizes(out, len(spellings))
}
