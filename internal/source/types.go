package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a source file.
	FileFlags uint8
)

const (
	// FileVirtual indicates the file was added from memory (test, stdin, preprocessor output).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
	// FilePreprocessed marks compiler -E output; positions map back through LineMap.
	FilePreprocessed
)

// File captures metadata and content for a single source file.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Hash    [32]byte
	Flags   FileFlags
	// LineMap is set for preprocessed files and maps lines back to the headers
	// they were expanded from.
	LineMap *LineMap
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}

// Position is a resolved location, already mapped through a LineMap when one exists.
type Position struct {
	Path string `json:"path"`
	Line uint32 `json:"line"`
	Col  uint32 `json:"col"`
}
