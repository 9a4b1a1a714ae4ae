package minify

import (
	"context"
	"strings"

	"github.com/tplslim/tplslim/internal/cache"
	apperrors "github.com/tplslim/tplslim/internal/errors"
	"github.com/tplslim/tplslim/internal/logging"
)

// Storage is the filesystem collaborator the minifier works through: source
// reads, cache path derivation, and whole-file cache writes.
type Storage interface {
	ReadSource(path string) (string, error)
	RealPath(path string) (string, error)
	PathFor(realPath string) string
	Exists(path string) bool
	EnsureDir(path string) error
	Write(path, content string) error
}

// Minifier orchestrates one minification run: try the code-aware comment
// transform, fall back to raw-block stashing when it fails, run the six
// whitespace stages, restore raw blocks, trim, and persist.
//
// A Minifier is safe for concurrent use across different source paths.
// Concurrent calls for the same path are not coordinated; re-running is
// idempotent, so a lost race only wastes work.
type Minifier struct {
	store       Storage
	transformer CodeTransformer
	pipeline    *Pipeline
	memo        *cache.ContentCache
	logger      logging.Logger
}

// New creates a minifier. The transformer, pipeline, memo, and logger may
// be nil; defaults are applied (no memoization when memo is nil).
func New(store Storage, transformer CodeTransformer, pipeline *Pipeline, memo *cache.ContentCache, logger logging.Logger) *Minifier {
	if transformer == nil {
		transformer = NewCodeTransformer(0)
	}
	if pipeline == nil {
		pipeline = NewPipeline(nil, nil)
	}
	if logger == nil {
		logger = logging.NewLogger(nil)
	}

	return &Minifier{
		store:       store,
		transformer: transformer,
		pipeline:    pipeline,
		memo:        memo,
		logger:      logger.WithComponent("minifier"),
	}
}

// PathToMinified derives the cache path for a source path without checking
// or creating anything.
func (m *Minifier) PathToMinified(path string) (string, error) {
	if m.store == nil {
		return "", errNoStore()
	}
	real, err := m.store.RealPath(path)
	if err != nil {
		return "", err
	}
	return m.store.PathFor(real), nil
}

// GetMinified returns the cache path for a source template, minifying it
// first if no cached copy exists yet.
func (m *Minifier) GetMinified(ctx context.Context, path string) (string, error) {
	if m.store == nil {
		return "", errNoStore()
	}
	real, err := m.store.RealPath(path)
	if err != nil {
		return "", err
	}
	cachePath := m.store.PathFor(real)

	// A live memo entry means this process already wrote the cache file;
	// answer without touching the disk. The TTL bounds how long a stale
	// entry can outlive an externally removed file, and Invalidate drops
	// entries eagerly when a source is deleted.
	if m.memo != nil {
		if _, ok := m.memo.Get(real); ok {
			return cachePath, nil
		}
	}

	if !m.store.Exists(cachePath) {
		if err := m.minify(ctx, real, cachePath); err != nil {
			return "", err
		}
	}

	return cachePath, nil
}

// Minify unconditionally (re)minifies a source template, overwriting any
// existing cache entry.
func (m *Minifier) Minify(ctx context.Context, path string) error {
	if m.store == nil {
		return errNoStore()
	}
	real, err := m.store.RealPath(path)
	if err != nil {
		return err
	}
	return m.minify(ctx, real, m.store.PathFor(real))
}

// Invalidate drops the memoized entry for a source path so the next
// GetMinified call consults the disk again, e.g. after the source file
// was deleted.
func (m *Minifier) Invalidate(path string) {
	if m.memo == nil || m.store == nil {
		return
	}
	real, err := m.store.RealPath(path)
	if err != nil {
		return
	}
	m.memo.Invalidate(real)
}

// MemoStats reports the memo hit rate and eviction count accumulated over
// this process's lifetime. Both are zero when memoization is disabled.
func (m *Minifier) MemoStats() (hitRate float64, evictions int64) {
	if m.memo == nil {
		return 0, 0
	}
	return m.memo.HitRate(), m.memo.Evictions()
}

func errNoStore() error {
	return apperrors.NewInternalError("MINIFY_NO_STORE", "minifier has no storage configured", nil)
}

func (m *Minifier) minify(ctx context.Context, realPath, cachePath string) error {
	content, err := m.store.ReadSource(realPath)
	if err != nil {
		return err
	}
	sourceBytes := len(content)

	content = m.Run(ctx, realPath, content)

	if err := m.store.EnsureDir(cachePath); err != nil {
		return err
	}
	if err := m.store.Write(cachePath, content); err != nil {
		return err
	}

	if m.memo != nil {
		m.memo.Set(realPath, []byte(content))
	}

	m.logger.Info(ctx, "minified template",
		"source", realPath,
		"cache", cachePath,
		"bytes_in", sourceBytes,
		"bytes_out", len(content),
	)

	return nil
}

// Run executes the full in-memory transformation for one template and
// returns the final minified text. Exposed so callers can minify content
// they already hold without touching the store.
func (m *Minifier) Run(ctx context.Context, name, content string) string {
	var delayed []string

	result, err := m.transformer.Transform(content)
	if err == nil {
		content = result.Text
		delayed = result.Delayed
	} else {
		// Transform failure is an ordinary fallback trigger: stash raw
		// blocks ourselves and let the generic stages handle comments.
		// Anything other than a transform error is unexpected and logged
		// louder before taking the same fallback.
		if apperrors.IsTransformError(err) {
			m.logger.Debug(ctx, "code transform failed, using fallback",
				"source", name,
				"reason", err.Error(),
			)
		} else {
			m.logger.Warn(ctx, err, "unexpected transform failure, using fallback",
				"source", name,
			)
		}
		content, delayed = ExtractRawBlocks(content)
	}

	content = m.pipeline.Run(content)
	content = RestoreRawBlocks(content, delayed)

	return strings.TrimRight(content, " \t\n\r\f\v")
}
