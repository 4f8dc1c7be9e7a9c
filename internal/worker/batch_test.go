package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/casedex/internal/model"
)

type stubExtractor struct {
	fail map[string]bool
}

func (s *stubExtractor) ExtractFile(ctx context.Context, path string) (*model.Document, error) {
	if s.fail[path] {
		return nil, errors.New("unreadable")
	}
	return &model.Document{
		ExtractionResult: model.ExtractionResult{DocID: "id-" + filepath.Base(path), Filename: filepath.Base(path)},
		RelativePath:     path,
	}, nil
}

func TestBatchProcessor_ProcessFiles(t *testing.T) {
	extractor := &stubExtractor{fail: map[string]bool{"b.pdf": true}}
	processor := NewBatchProcessor(extractor, 3)

	results := processor.ProcessFiles(context.Background(), []string{"c.pdf", "a.pdf", "b.pdf"})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	wantOrder := []string{"a.pdf", "b.pdf", "c.pdf"}
	for i, r := range results {
		if r.Path != wantOrder[i] {
			t.Errorf("result %d: expected %s, got %s", i, wantOrder[i], r.Path)
		}
	}

	if results[1].Error == nil || results[1].Document != nil {
		t.Errorf("expected b.pdf to fail without a document, got %+v", results[1])
	}
	if results[0].Error != nil || results[0].Document == nil {
		t.Errorf("expected a.pdf to succeed, got %+v", results[0])
	}
	if results[2].Document.DocID != "id-c.pdf" {
		t.Errorf("unexpected doc id %q", results[2].Document.DocID)
	}
}

func TestBatchProcessor_Empty(t *testing.T) {
	processor := NewBatchProcessor(&stubExtractor{}, 2)

	if results := processor.ProcessFiles(context.Background(), nil); len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestBatchProcessor_CancelledContext(t *testing.T) {
	processor := NewBatchProcessor(&stubExtractor{}, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := processor.ProcessFiles(ctx, []string{"a.pdf", "b.pdf"})
	if len(results) != 2 {
		t.Fatalf("expected a result per path, got %d", len(results))
	}
	for _, r := range results {
		if !errors.Is(r.Error, context.Canceled) {
			t.Errorf("%s: expected context.Canceled, got %v", r.Path, r.Error)
		}
	}
}

func TestReadPathsFromFile(t *testing.T) {
	list := filepath.Join(t.TempDir(), "paths.txt")
	content := "housing/a.pdf\n# medical records next\nmedical/b.pdf\n   \nhousing/a.pdf\n  legal/c.md  "
	if err := os.WriteFile(list, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	paths, err := ReadPathsFromFile(list)
	if err != nil {
		t.Fatalf("ReadPathsFromFile failed: %v", err)
	}

	want := []string{"housing/a.pdf", "medical/b.pdf", "legal/c.md"}
	if len(paths) != len(want) {
		t.Fatalf("expected %v, got %v", want, paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("index %d: expected %s, got %s", i, want[i], paths[i])
		}
	}

	if _, err := ReadPathsFromFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for a missing list file")
	}
}

func TestBatchProcessor_ProcessListFile(t *testing.T) {
	list := filepath.Join(t.TempDir(), "paths.txt")
	if err := os.WriteFile(list, []byte("a.pdf\nb.pdf\n"), 0644); err != nil {
		t.Fatal(err)
	}

	results, err := NewBatchProcessor(&stubExtractor{}, 2).ProcessListFile(context.Background(), list)
	if err != nil {
		t.Fatalf("ProcessListFile failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
}

func TestExtractResult_GetError(t *testing.T) {
	if (&ExtractResult{Path: "a.pdf"}).GetError() != nil {
		t.Error("expected nil error")
	}
	want := errors.New("unreadable")
	if got := (&ExtractResult{Path: "a.pdf", Error: want}).GetError(); got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
}
