package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/casedex/internal/model"
)

// FileExtractor turns one archive file into a document
type FileExtractor interface {
	ExtractFile(ctx context.Context, path string) (*model.Document, error)
}

// ExtractJob extracts a single file
type ExtractJob struct {
	Path      string
	Extractor FileExtractor
}

// Execute runs the extraction
func (j *ExtractJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &ExtractResult{Path: j.Path, Error: err}
	}
	doc, err := j.Extractor.ExtractFile(ctx, j.Path)
	return &ExtractResult{Path: j.Path, Document: doc, Error: err}
}

// ExtractResult pairs a file with its document or the reason it failed
type ExtractResult struct {
	Path     string
	Document *model.Document
	Error    error
}

// GetError returns the extraction error, if any
func (r *ExtractResult) GetError() error {
	return r.Error
}

// BatchProcessor extracts many files concurrently
type BatchProcessor struct {
	extractor   FileExtractor
	concurrency int
}

// NewBatchProcessor creates a batch processor
func NewBatchProcessor(extractor FileExtractor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		extractor:   extractor,
		concurrency: concurrency,
	}
}

// ProcessFiles extracts every path. One result is returned per path, sorted
// by path; a failed file never discards the others.
func (b *BatchProcessor) ProcessFiles(ctx context.Context, paths []string) []*ExtractResult {
	if len(paths) == 0 {
		return []*ExtractResult{}
	}

	pool := NewPoolWithContext(ctx, b.concurrency)
	pool.Start()

	for _, path := range paths {
		pool.Submit(&ExtractJob{
			Path:      path,
			Extractor: b.extractor,
		})
	}

	results := pool.Wait()

	byPath := make(map[string]*ExtractResult, len(results))
	for _, result := range results {
		r := result.(*ExtractResult)
		byPath[r.Path] = r
	}

	// Jobs dropped by a cancelled context still get a result
	out := make([]*ExtractResult, 0, len(paths))
	for _, path := range paths {
		r, ok := byPath[path]
		if !ok {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			r = &ExtractResult{Path: path, Error: err}
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// ProcessListFile extracts every file named in a list file
func (b *BatchProcessor) ProcessListFile(ctx context.Context, listPath string) ([]*ExtractResult, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read paths: %w", err)
	}

	return b.ProcessFiles(ctx, paths), nil
}

// ReadPathsFromFile reads file paths, one per line. Blank lines and lines
// starting with # are skipped and duplicates dropped.
func ReadPathsFromFile(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
