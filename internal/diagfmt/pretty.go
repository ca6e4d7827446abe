package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"ffigen/internal/diag"
	"ffigen/internal/source"
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем (опционально) строку контекста с ^ под колонкой, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	items := bag.Items()
	if opts.Max > 0 && len(items) > opts.Max {
		items = items[:opts.Max]
	}

	sevColor := map[diag.Severity]*color.Color{
		diag.SevError:   color.New(color.FgRed, color.Bold),
		diag.SevWarning: color.New(color.FgYellow, color.Bold),
		diag.SevInfo:    color.New(color.FgCyan),
	}
	locColor := color.New(color.Bold)
	noteColor := color.New(color.FgBlue)
	for _, c := range sevColor {
		setColor(c, opts.Color)
	}
	setColor(locColor, opts.Color)
	setColor(noteColor, opts.Color)

	for _, d := range items {
		pos := fs.Position(d.Primary)
		loc := fmt.Sprintf("%s:%d:%d", formatPath(pos.Path, opts.PathMode, opts.BaseDir), pos.Line, pos.Col)
		sev := sevColor[d.Severity]
		if sev == nil {
			sev = color.New()
			setColor(sev, opts.Color)
		}
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			locColor.Sprint(loc), sev.Sprint(d.Severity.String()), d.Code.ID(), d.Message)

		if opts.Context {
			writeContext(w, fs, d.Primary, sev)
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			np := fs.Position(n.Span)
			if np.Path == "" {
				fmt.Fprintf(w, "  %s %s\n", noteColor.Sprint("note:"), n.Msg)
				continue
			}
			fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", noteColor.Sprint("note:"),
				formatPath(np.Path, opts.PathMode, opts.BaseDir), np.Line, np.Col, n.Msg)
		}
	}
	if omitted := bag.Len() - len(items); omitted > 0 {
		fmt.Fprintf(w, "... %d more diagnostics omitted\n", omitted)
	}
}

func setColor(c *color.Color, on bool) {
	if on {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
}

// writeContext prints the line the span starts on with a caret run under it.
// Tabs are kept so the caret lines up in a terminal.
func writeContext(w io.Writer, fs *source.FileSet, sp source.Span, c *color.Color) {
	f := fs.Get(sp.File)
	if f == nil {
		return
	}
	start, end := fs.Resolve(sp)
	line := f.GetLine(start.Line)
	if strings.TrimSpace(line) == "" {
		return
	}
	col := int(start.Col) - 1
	if col > len(line) {
		col = len(line)
	}
	width := 1
	if end.Line == start.Line && end.Col > start.Col {
		last := int(end.Col) - 1
		if last > len(line) {
			last = len(line)
		}
		width = max(1, runewidth.StringWidth(line[col:last]))
	}

	var pad strings.Builder
	for _, r := range line[:col] {
		if r == '\t' {
			pad.WriteByte('\t')
			continue
		}
		pad.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	fmt.Fprintf(w, "    %s\n    %s%s\n", line, pad.String(), c.Sprint(strings.Repeat("^", width)))
}
