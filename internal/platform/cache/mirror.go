package cache

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/panjf2000/ants/v2"
	"github.com/valyala/bytebufferpool"

	"github.com/nikdesigns/esports-track/internal/platform/logging"
)

// Mirror is an optional persistent backend behind a Store. Implementations
// are best-effort: a mirror failure must never fail a cache operation.
type Mirror interface {
	Read(key string) ([]byte, bool)
	Write(key string, raw []byte)
	Remove(key string)
}

// FileMirror persists one JSON record per cache key in a directory,
// surviving process restarts. Writes happen asynchronously on a small
// worker pool so request latency never waits on disk.
type FileMirror struct {
	dir    string
	pool   *ants.Pool
	logger *logging.Logger
}

const mirrorWriterPoolSize = 4

func NewFileMirror(dir string, logger *logging.Logger) (*FileMirror, error) {
	if logger == nil {
		logger = logging.Default()
	}
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "esports-track-cache")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	pool, err := ants.NewPool(mirrorWriterPoolSize, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}

	return &FileMirror{dir: dir, pool: pool, logger: logger}, nil
}

func (m *FileMirror) Read(key string) ([]byte, bool) {
	raw, err := os.ReadFile(m.pathFor(key))
	if err != nil {
		return nil, false
	}
	return raw, true
}

func (m *FileMirror) Write(key string, raw []byte) {
	path := m.pathFor(key)

	buf := bytebufferpool.Get()
	_, _ = buf.Write(raw)

	err := m.pool.Submit(func() {
		defer bytebufferpool.Put(buf)
		if writeErr := os.WriteFile(path, buf.B, 0o644); writeErr != nil {
			m.logger.Warn("cache mirror write failed", "path", path, "error", writeErr)
		}
	})
	if err != nil {
		// Pool saturated or released: skip the write, memory cache still holds it.
		bytebufferpool.Put(buf)
	}
}

func (m *FileMirror) Remove(key string) {
	_ = os.Remove(m.pathFor(key))
}

func (m *FileMirror) Close() {
	if m.pool != nil {
		m.pool.Release()
	}
}

func (m *FileMirror) pathFor(key string) string {
	return filepath.Join(m.dir, sanitizeKey(key)+".json")
}

func sanitizeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
