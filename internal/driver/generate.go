package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ffigen/internal/bindings"
	"ffigen/internal/cdecl"
	"ffigen/internal/cfront"
	"ffigen/internal/diag"
	"ffigen/internal/ffierr"
	"ffigen/internal/observ"
	"ffigen/internal/project"
	"ffigen/internal/registry"
	"ffigen/internal/render"
	"ffigen/internal/resolve"
	"ffigen/internal/simplify"
	"ffigen/internal/source"
	"ffigen/internal/toolchain"
)

// Request describes one generation run.
type Request struct {
	Config   project.Config
	Progress ProgressSink
	// Cache keeps size query results between runs; nil disables caching.
	Cache          *toolchain.Cache
	MaxDiagnostics int
	// Timings adds an OBS6001 diagnostic with per-phase durations.
	Timings bool
	// NoWrite skips rendering; dump and query only need the registries.
	NoWrite bool
	// Stdout receives output when Config.Output is "-".
	Stdout io.Writer
}

// FileResult is the outcome of one input header.
type FileResult struct {
	Path     string
	Output   string
	Module   *bindings.Module
	Registry *registry.Registry
	Resolved int
	Failed   int
	Stats    simplify.Stats
	Err      error
}

// Result is the outcome of a run.
type Result struct {
	FileSet *source.FileSet
	Bag     *diag.Bag
	Files   []FileResult
	// Merged is set in merged mode.
	Merged  *bindings.Module
	Written []string
	Timer   *observ.Timer
}

// Failed reports whether any file failed or any error was diagnosed.
func (r *Result) Failed() bool {
	if r == nil {
		return true
	}
	for _, f := range r.Files {
		if f.Err != nil {
			return true
		}
	}
	return r.Bag.HasErrors()
}

type run struct {
	req     Request
	cfg     project.Config
	cc      toolchain.Compiler
	format  render.Format
	fs      *source.FileSet
	timer   *observ.Timer
	symbols toolchain.SymbolSet
	prelude *registry.Snapshot

	mu  sync.Mutex
	bag *diag.Bag
}

// Generate runs the whole pipeline over the configured inputs. In per-file
// mode each header gets a fresh registry and is processed in parallel; in
// merged mode headers are resolved in order into stacked layers of one
// registry. A file-level failure stops the run unless KeepGoing is set.
func Generate(ctx context.Context, req Request) (*Result, error) {
	cfg := req.Config
	maxDiag := req.MaxDiagnostics
	if maxDiag <= 0 {
		maxDiag = 1000
	}
	format, err := render.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	inputs, err := ExpandInputs(cfg.Inputs)
	if err != nil {
		return nil, ffierr.New(ffierr.PhaseLoad, ffierr.KindIO).Cause(err).Build()
	}

	d := &run{
		req:    req,
		cfg:    cfg,
		cc:     toolchain.Compiler{Path: cfg.Compiler, Flags: cfg.CFlags},
		format: format,
		fs:     source.NewFileSet(),
		timer:  observ.NewTimer(),
		bag:    diag.NewBag(maxDiag),
	}
	res := &Result{FileSet: d.fs, Bag: d.bag, Timer: d.timer}
	Logger().Info("generate",
		zap.Strings("inputs", inputs),
		zap.String("mode", string(cfg.Mode)),
		zap.String("format", string(format)),
		zap.String("compiler", d.cc.Path),
	)

	if !req.NoWrite {
		d.loadSymbols()
	}
	if cfg.Prelude != "" {
		if err := d.loadPrelude(ctx); err != nil {
			return res, err
		}
	}

	for _, in := range inputs {
		emit(req.Progress, Event{File: in, Status: StatusQueued})
	}
	if cfg.Mode == project.ModeMerged {
		err = d.merged(ctx, inputs, res)
	} else {
		err = d.perFile(ctx, inputs, res)
	}

	if req.Timings {
		appendTimingDiagnostic(d.bag, newTimingPayload(string(cfg.Mode), res, req.Cache != nil))
	}
	d.bag.Sort()
	emit(req.Progress, Event{Status: StatusDone})
	return res, err
}

func (d *run) loadSymbols() {
	set, err := toolchain.Symbols(d.cfg.Library)
	switch {
	case err == nil:
		d.symbols = set
	case errors.Is(err, toolchain.ErrNotELF):
		Logger().Debug("library is not ELF, skipping symbol check", zap.String("library", d.cfg.Library))
	default:
		Logger().Warn("cannot read library symbols", zap.String("library", d.cfg.Library), zap.Error(err))
	}
}

func (d *run) loadPrelude(ctx context.Context) error {
	idx := d.timer.Begin("prelude")
	defer d.timer.End(idx, d.cfg.Prelude)

	reg := registry.New()
	reg.Push()
	fr := FileResult{Path: d.cfg.Prelude, Registry: reg}
	if err := d.unit(ctx, &fr, false); err != nil {
		return fmt.Errorf("prelude %s: %w", d.cfg.Prelude, err)
	}
	snap := reg.Pop()
	d.prelude = &snap
	Logger().Debug("prelude loaded", zap.String("file", d.cfg.Prelude), zap.Int("entries", snap.Len()))
	return nil
}

func (d *run) newRegistry() *registry.Registry {
	reg := registry.New()
	if d.prelude != nil {
		reg.Restore(*d.prelude)
	}
	reg.Push()
	return reg
}

func (d *run) perFile(ctx context.Context, inputs []string, res *Result) error {
	jobs := d.cfg.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	res.Files = make([]FileResult, len(inputs))
	var written []string
	var wmu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(inputs)))
	for i, path := range inputs {
		i, path := i, path
		g.Go(func() error {
			fr := &res.Files[i]
			fr.Path = path
			fr.Registry = d.newRegistry()
			fr.Output = outputPath(d.cfg.Output, path, d.format.Ext(), len(inputs) > 1)

			err := d.unit(gctx, fr, true)
			if err == nil && !d.req.NoWrite {
				err = d.stage(path, StageRender, func() error {
					out, werr := d.write(fr.Output, fr.Module)
					if out != "" {
						wmu.Lock()
						written = append(written, out)
						wmu.Unlock()
					}
					return werr
				})
			}
			if err != nil && gctx.Err() != nil {
				fr.Err = err
				return gctx.Err()
			}
			return d.finish(fr, err)
		})
	}
	err := g.Wait()
	res.Written = written
	return err
}

func (d *run) merged(ctx context.Context, inputs []string, res *Result) error {
	reg := d.newRegistry()
	res.Merged = &bindings.Module{Library: d.cfg.Library}
	output := d.cfg.Output
	if output == "" {
		output = "bindings" + d.format.Ext()
	}
	for i, path := range inputs {
		if i > 0 {
			reg.Push()
		}
		res.Files = append(res.Files, FileResult{Path: path, Registry: reg, Output: output})
		fr := &res.Files[len(res.Files)-1]
		err := d.unit(ctx, fr, true)
		if err == nil {
			res.Merged.Merge(fr.Module)
		}
		if err := d.finish(fr, err); err != nil {
			return err
		}
	}
	if d.req.NoWrite {
		return nil
	}
	return d.stage(output, StageRender, func() error {
		out, err := d.write(output, res.Merged)
		if out != "" {
			res.Written = append(res.Written, out)
		}
		return err
	})
}

// finish records a file-level failure. The error is returned only when the
// run should stop.
func (d *run) finish(fr *FileResult, err error) error {
	if err == nil {
		emit(d.req.Progress, Event{File: fr.Path, Status: StatusDone})
		return nil
	}
	fr.Err = err
	emit(d.req.Progress, Event{File: fr.Path, Status: StatusError, Err: err})
	if errors.Is(err, context.Canceled) {
		return err
	}
	id := d.fs.AddVirtual(fr.Path, nil)
	d.mu.Lock()
	ffierr.Report(diag.BagReporter{Bag: d.bag}, diag.SevError, source.Span{File: id}, err)
	d.mu.Unlock()
	Logger().Error("file failed", zap.String("file", fr.Path), zap.Error(err))
	if d.cfg.KeepGoing {
		return nil
	}
	return err
}

// stage runs fn as one timed pipeline step of path.
func (d *run) stage(path string, st Stage, fn func() error) error {
	emit(d.req.Progress, Event{File: path, Stage: st, Status: StatusWorking})
	start := time.Now()
	idx := d.timer.Begin(filepath.Base(path) + "/" + string(st))
	err := fn()
	d.timer.End(idx, "")
	Logger().Debug("stage finished",
		zap.String("file", path),
		zap.String("stage", string(st)),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err),
	)
	return err
}

// unit runs one header through preprocess, parse, resolve and simplify, and
// for real inputs also collects the bindings and queries aggregate sizes.
// Diagnostics go to the run's bag; only file-level failures are returned.
func (d *run) unit(ctx context.Context, fr *FileResult, collect bool) error {
	bag := diag.NewBag(int(d.bag.Cap()))
	var rep diag.Reporter = diag.BagReporter{Bag: bag}
	defer func() {
		d.mu.Lock()
		d.bag.Merge(bag)
		d.mu.Unlock()
	}()

	var pp *toolchain.Preprocessed
	err := d.stage(fr.Path, StagePreprocess, func() (err error) {
		if d.cfg.NoCPP {
			pp, err = toolchain.ReadRaw(fr.Path)
		} else {
			pp, err = d.cc.Preprocess(ctx, fr.Path)
		}
		return err
	})
	if err != nil {
		return err
	}
	if collect && d.cfg.KeepPreprocessed && !d.req.NoWrite {
		if err := d.keepPreprocessed(fr, pp.Text); err != nil {
			return err
		}
	}

	content, _ := source.Normalize(pp.Text)
	var file *source.File
	if pp.Origins != nil {
		file = d.fs.Get(d.fs.AddPreprocessed(fr.Path, content, pp.Origins.Lines))
	} else {
		file = d.fs.Get(d.fs.Add(fr.Path, content, 0))
	}
	if pp.Origins != nil && !d.cfg.SystemDecls {
		rep = systemReporter{next: rep, fs: d.fs, origins: pp.Origins}
	}

	var nodes []cdecl.Node
	err = d.stage(fr.Path, StageParse, func() (err error) {
		nodes, err = cfront.Parse(ctx, file, rep)
		return err
	})
	if err != nil {
		return err
	}

	_ = d.stage(fr.Path, StageResolve, func() error {
		r := resolve.ResolveFile(fr.Registry, nodes, resolve.Options{Reporter: rep})
		fr.Resolved, fr.Failed = r.Resolved, r.Failed
		return nil
	})
	_ = d.stage(fr.Path, StageSimplify, func() error {
		fr.Stats = simplify.Simplify(fr.Registry, rep)
		return nil
	})
	if !collect {
		return nil
	}

	fr.Module = bindings.Collect(fr.Registry.Entries(), bindings.Options{
		Library:       d.cfg.Library,
		Inputs:        []string{fr.Path},
		Positions:     d.fs,
		System:        pp.Origins,
		IncludeSystem: d.cfg.SystemDecls,
		Symbols:       d.symbols,
	})
	d.reportMissing(fr, pp.Origins, rep)

	if d.cfg.Sizes {
		if err := d.stage(fr.Path, StageSizes, func() error { return d.sizes(ctx, fr, rep) }); err != nil {
			return err
		}
	}
	Logger().Info("file processed",
		zap.String("file", fr.Path),
		zap.Int("resolved", fr.Resolved),
		zap.Int("failed", fr.Failed),
		zap.Int("functions", len(fr.Module.Functions)),
		zap.Int("warnings", fr.Stats.Warnings),
	)
	return nil
}

func (d *run) reportMissing(fr *FileResult, origins *toolchain.Origins, rep diag.Reporter) {
	if d.symbols == nil {
		return
	}
	for _, e := range fr.Registry.EntriesOf(registry.CatFunc) {
		if d.symbols.Has(e.Name) {
			continue
		}
		if !d.cfg.SystemDecls && origins.IsSystem(d.fs.Position(e.Span).Path) {
			continue
		}
		ffierr.Report(rep, diag.SevWarning, e.Span, ffierr.SymbolMissing(e.Name, d.cfg.Library))
	}
}

func (d *run) sizes(ctx context.Context, fr *FileResult, rep diag.Reporter) error {
	spellings := fr.Module.SizeSpellings()
	if len(spellings) == 0 {
		return nil
	}
	q := toolchain.SizeQuery{
		Compiler:  d.cc,
		Header:    fr.Path,
		Spellings: spellings,
		Jobs:      d.cfg.Jobs,
		Cache:     d.req.Cache,
	}
	sizes, err := q.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		id, _ := d.fs.GetLatest(fr.Path)
		ffierr.Report(rep, diag.SevWarning, source.Span{File: id}, err)
		return nil
	}
	fr.Module.ApplySizes(sizes)
	return nil
}

func (d *run) keepPreprocessed(fr *FileResult, text []byte) error {
	out := fr.Output
	if out == "" || out == "-" {
		out = filepath.Base(fr.Path)
	}
	p := preprocessedPath(out, fr.Path)
	if err := writeFile(p, text); err != nil {
		return ffierr.New(ffierr.PhaseRender, ffierr.KindIO).Name(p).Cause(err).Build()
	}
	return nil
}

// write renders m to path, or to Stdout when path is "-". It returns the
// path actually written.
func (d *run) write(path string, m *bindings.Module) (string, error) {
	var buf bytes.Buffer
	idx := d.timer.Begin(filepath.Base(path) + "/encode")
	err := render.For(d.format).Render(&buf, m)
	d.timer.End(idx, "")
	if err != nil {
		return "", ffierr.New(ffierr.PhaseRender, ffierr.KindIO).Name(path).Cause(err).Build()
	}
	if path == "-" {
		w := d.req.Stdout
		if w == nil {
			w = os.Stdout
		}
		d.mu.Lock()
		defer d.mu.Unlock()
		if _, err := w.Write(buf.Bytes()); err != nil {
			return "", err
		}
		return "", nil
	}
	if err := writeFile(path, buf.Bytes()); err != nil {
		return "", ffierr.New(ffierr.PhaseRender, ffierr.KindIO).Name(path).Cause(err).Build()
	}
	Logger().Debug("output written", zap.String("file", path), zap.Int("bytes", buf.Len()))
	return path, nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644) //nolint:gosec // generated bindings are meant to be world-readable
}
