// Package archive scans a case archive directory: it extracts every
// document in parallel, assembles the tag/location/date indexes and feeds
// the search index.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/casedex/internal/cache"
	"github.com/ppiankov/casedex/internal/catalog"
	"github.com/ppiankov/casedex/internal/extract"
	"github.com/ppiankov/casedex/internal/model"
	"github.com/ppiankov/casedex/internal/store"
	"github.com/ppiankov/casedex/internal/worker"
	"go.uber.org/zap"
)

// Scanner walks archive directories and extracts their documents
type Scanner struct {
	cfg         model.ScanConfig
	catalog     *catalog.Catalog
	extractor   *extract.Extractor
	limiter     *worker.Limiter
	cache       cache.Cache
	cacheTTL    time.Duration
	store       *store.Store
	logger      *zap.Logger
	fingerprint string
}

// Option configures a Scanner
type Option func(*Scanner)

// WithCache reuses extraction results for unchanged files
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Scanner) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithStore persists every scanned document
func WithStore(st *store.Store) Option {
	return func(s *Scanner) { s.store = st }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Scanner) { s.logger = l }
}

// NewScanner creates a scanner over the given catalog (nil means built-in)
func NewScanner(cfg model.ScanConfig, c *catalog.Catalog, opts ...Option) *Scanner {
	if c == nil {
		c = catalog.Default()
	}

	s := &Scanner{
		cfg:         cfg,
		catalog:     c,
		extractor:   extract.NewExtractor(c),
		limiter:     worker.NewLimiter(cfg.ReadsPerSecond, cfg.ReadBurst),
		logger:      zap.NewNop(),
		fingerprint: c.Fingerprint(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the catalog the scanner extracts with
func (s *Scanner) Catalog() *catalog.Catalog {
	return s.catalog
}

// Scan extracts every matching file under root. Files that fail are listed
// in the analysis errors; only an unreadable root or a cancelled context
// fails the scan.
func (s *Scanner) Scan(ctx context.Context, root string) (*model.Analysis, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	overrides := Overrides{}
	if s.cfg.OverridesFile != "" {
		overrides, err = LoadOverrides(filepath.Join(root, s.cfg.OverridesFile))
		if err != nil {
			return nil, err
		}
	}

	files, err := s.collect(root)
	if err != nil {
		return nil, err
	}
	s.logger.Info("scanning archive", zap.String("root", root), zap.Int("files", len(files)))

	fe := &fileExtractor{scanner: s, root: root, overrides: overrides}
	results := worker.NewBatchProcessor(fe, s.cfg.Workers).ProcessFiles(ctx, files)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	analysis := NewAnalysis(root)
	for _, r := range results {
		rel := relativePath(root, r.Path)
		if r.Error != nil {
			s.logger.Warn("skipping document", zap.String("path", rel), zap.Error(r.Error))
			analysis.Errors = append(analysis.Errors, model.InputError{Input: rel, Error: r.Error.Error()})
			continue
		}
		if !AddDocument(analysis, r.Document) {
			continue
		}
		s.persist(r.Document)
	}
	sortIndexes(analysis)

	s.logger.Info("scan complete",
		zap.String("scan_id", analysis.ScanID),
		zap.Int("documents", analysis.Statistics.TotalDocuments),
		zap.Int("errors", len(analysis.Errors)))

	return analysis, nil
}

// ExtractList extracts the files named in a list file without walking a
// directory. Relative paths resolve against the working directory and no
// overrides apply. Results are not cached into an analysis.
func (s *Scanner) ExtractList(ctx context.Context, listPath string) ([]*worker.ExtractResult, error) {
	root, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("working directory: %w", err)
	}

	fe := &fileExtractor{scanner: s, root: root, overrides: Overrides{}}
	return worker.NewBatchProcessor(fe, s.cfg.Workers).ProcessListFile(ctx, listPath)
}

func (s *Scanner) persist(doc *model.Document) {
	if s.store == nil {
		return
	}
	if _, err := s.store.Put(doc); err != nil {
		s.logger.Warn("store document", zap.String("doc_id", doc.DocID), zap.Error(err))
	}
}

// collect returns absolute paths of matching files in sorted order. Hidden
// directories (.git, .casedex) and the overrides file are skipped.
func (s *Scanner) collect(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			s.logger.Debug("walk error", zap.String("path", p), zap.Error(err))
			return nil
		}
		if d.IsDir() {
			if p != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if s.Matches(p) && relativePath(root, p) != filepath.ToSlash(s.cfg.OverridesFile) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}

// Matches reports whether a file has one of the configured extensions
func (s *Scanner) Matches(p string) bool {
	if strings.HasPrefix(filepath.Base(p), ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(p))
	for _, want := range s.cfg.Extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}

// fileExtractor binds a scan's root and overrides to the worker interface
type fileExtractor struct {
	scanner   *Scanner
	root      string
	overrides Overrides
}

// ExtractFile reads and extracts one file, consulting the cache first
func (f *fileExtractor) ExtractFile(ctx context.Context, p string) (*model.Document, error) {
	s := f.scanner
	if err := s.limiter.Wait(ctx, p); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	rel := relativePath(f.root, p)
	name := filepath.Base(p)
	manual := f.overrides.For(rel)

	key := cache.ExtractionKey(name, data, s.fingerprint, manual)
	result, hit := f.cached(key)
	if !hit {
		text := ""
		if s.cfg.MaxBodyBytes <= 0 || int64(len(data)) <= s.cfg.MaxBodyBytes {
			text = extract.BodyText(name, data)
		}

		result, err = s.extractor.ExtractDocument(extract.Input{
			Filename:     name,
			Text:         text,
			Content:      data,
			OverrideTags: manual,
		})
		if err != nil {
			return nil, err
		}
		f.store(key, result)
	}

	s.logger.Debug("extracted document",
		zap.String("path", rel),
		zap.String("doc_id", result.DocID),
		zap.Strings("tags", result.Tags),
		zap.Bool("cached", hit))

	folder := path.Base(path.Dir(rel))
	if folder == "." {
		folder = ""
	}

	return &model.Document{
		ExtractionResult: *result,
		RelativePath:     rel,
		Folder:           folder,
	}, nil
}

func (f *fileExtractor) cached(key string) (*model.ExtractionResult, bool) {
	if f.scanner.cache == nil {
		return nil, false
	}
	data, ok := f.scanner.cache.Get(key)
	if !ok {
		return nil, false
	}
	var result model.ExtractionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false
	}
	return &result, true
}

func (f *fileExtractor) store(key string, result *model.ExtractionResult) {
	if f.scanner.cache == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := f.scanner.cache.Set(key, data, f.scanner.cacheTTL); err != nil {
		f.scanner.logger.Debug("cache write failed", zap.Error(err))
	}
}

// relativePath returns p relative to root with forward slashes
func relativePath(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}
