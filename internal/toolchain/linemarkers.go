package toolchain

import (
	"bytes"
	"path/filepath"
	"strconv"
	"strings"

	"ffigen/internal/source"
)

// Origins describes where the lines of preprocessed text came from.
type Origins struct {
	Lines *source.LineMap
	// System holds the headers the compiler flagged as system headers.
	System map[string]bool
}

// IsSystem reports whether path is a system header.
func (o *Origins) IsSystem(path string) bool {
	if o == nil {
		return false
	}
	return o.System[cleanPath(path)]
}

func cleanPath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

// StripLinemarkers blanks every `# <line> "<file>" <flags>` and
// `#line <line> "<file>"` directive in text and records them in a line map.
// Blanking keeps byte offsets and line numbers of the remaining text intact.
func StripLinemarkers(text []byte) ([]byte, *Origins) {
	out := bytes.Clone(text)
	origins := &Origins{Lines: &source.LineMap{}, System: map[string]bool{}}

	var line uint32 = 1
	start := 0
	for start <= len(out) {
		end := bytes.IndexByte(out[start:], '\n')
		if end < 0 {
			end = len(out)
		} else {
			end += start
		}
		if path, origin, flags, ok := parseMarker(out[start:end]); ok {
			origins.Lines.Mark(line+1, path, origin)
			for _, f := range flags {
				if f == "3" {
					origins.System[cleanPath(path)] = true
				}
			}
			for i := start; i < end; i++ {
				out[i] = ' '
			}
		}
		if end == len(out) {
			break
		}
		start = end + 1
		line++
	}
	return out, origins
}

func parseMarker(raw []byte) (path string, line uint32, flags []string, ok bool) {
	s := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(s, "#") {
		return "", 0, nil, false
	}
	s = strings.TrimSpace(s[1:])
	s = strings.TrimPrefix(s, "line ")
	s = strings.TrimSpace(s)

	sp := strings.IndexByte(s, ' ')
	if sp <= 0 {
		return "", 0, nil, false
	}
	n, err := strconv.ParseUint(s[:sp], 10, 32)
	if err != nil {
		return "", 0, nil, false
	}
	rest := strings.TrimSpace(s[sp:])
	if len(rest) < 2 || rest[0] != '"' {
		return "", 0, nil, false
	}
	closing := strings.IndexByte(rest[1:], '"')
	if closing < 0 {
		return "", 0, nil, false
	}
	path = rest[1 : closing+1]
	if unq, err := strconv.Unquote(rest[:closing+2]); err == nil {
		path = unq
	}
	//nolint:gosec // ParseUint was bounded to 32 bits
	return path, uint32(n), strings.Fields(rest[closing+2:]), true
}
