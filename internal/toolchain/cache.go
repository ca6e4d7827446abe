package toolchain

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

// Bump when SizePayload changes shape.
const sizeCacheSchemaVersion uint16 = 1

// Digest identifies one size query: compiler, flags, header text and the
// queried spellings.
type Digest [32]byte

// Cache keeps size query results on disk, one msgpack file per Digest.
// Thread-safe for concurrent access.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// SizePayload is the cached result of one size query.
type SizePayload struct {
	Schema uint16
	Header string
	Sizes  map[string]int64
}

// OpenCache returns the cache under $XDG_CACHE_HOME/app, falling back to
// ~/.cache/app.
func OpenCache(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// Dir reports where the cache lives.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// SizeKey hashes everything that can change the answer of a size query.
func SizeKey(cc Compiler, header []byte, spellings []string) Digest {
	h := sha256.New()
	write := func(s string) {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	write(cc.path())
	for _, f := range cc.Flags {
		write(f)
	}
	headerSum := sha256.Sum256(header)
	h.Write(headerSum[:])

	sorted := append([]string(nil), spellings...)
	sort.Strings(sorted)
	for _, s := range sorted {
		write(s)
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

func (c *Cache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "sizes", hex.EncodeToString(key[:])+".mp")
}

// PutSizes writes a payload atomically.
func (c *Cache) PutSizes(key Digest, payload *SizePayload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err = os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = f.Close()
			if rmErr := os.Remove(tmp); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				Logger().Warn("failed to remove temp file", zap.String("path", tmp), zap.Error(rmErr))
			}
		}
	}()

	payload.Schema = sizeCacheSchemaVersion
	if err = msgpack.NewEncoder(f).Encode(payload); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// атомарная замена
	return os.Rename(tmp, p)
}

// GetSizes reads a payload. A missing entry or a payload written by an older
// schema is a miss.
func (c *Cache) GetSizes(key Digest) (*SizePayload, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer func() { _ = f.Close() }()

	var out SizePayload
	if err := msgpack.NewDecoder(f).Decode(&out); err != nil {
		return nil, false, err
	}
	if out.Schema != sizeCacheSchemaVersion {
		return nil, false, nil
	}
	return &out, true, nil
}

// DropAll removes every cached entry.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "sizes"))
}
