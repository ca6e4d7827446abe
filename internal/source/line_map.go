package source

import "sort"

// LineMap maps lines of preprocessed text back to the header lines they were
// expanded from. It is built from `# <line> "<file>"` markers.
type LineMap struct {
	marks []lineMark
}

type lineMark struct {
	line       uint32 // first preprocessed line (1-based) covered by the mark
	originPath string
	originLine uint32
}

// Mark records that preprocessed line `line` corresponds to originLine of path.
// Marks must be added in increasing line order.
func (m *LineMap) Mark(line uint32, path string, originLine uint32) {
	if n := len(m.marks); n > 0 && m.marks[n-1].line == line {
		m.marks[n-1] = lineMark{line: line, originPath: normalizePath(path), originLine: originLine}
		return
	}
	m.marks = append(m.marks, lineMark{line: line, originPath: normalizePath(path), originLine: originLine})
}

// Origin reports the header path and line for a preprocessed line.
func (m *LineMap) Origin(line uint32) (string, uint32, bool) {
	if m == nil || len(m.marks) == 0 {
		return "", 0, false
	}
	i := sort.Search(len(m.marks), func(i int) bool { return m.marks[i].line > line })
	if i == 0 {
		return "", 0, false
	}
	mk := m.marks[i-1]
	return mk.originPath, mk.originLine + (line - mk.line), true
}

// Len reports the number of recorded marks.
func (m *LineMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.marks)
}
