package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/casedex/internal/extract"
	"github.com/ppiankov/casedex/internal/model"
)

// NewAnalysis creates an empty analysis for a scan of root
func NewAnalysis(root string) *model.Analysis {
	return &model.Analysis{
		ScanID:        uuid.NewString(),
		ScanDate:      time.Now().UTC(),
		BaseDirectory: root,
		Documents:     make(map[string]*model.Document),
		TagIndex:      make(map[string][]string),
		LocationIndex: make(map[string][]string),
		DateIndex:     make(map[string][]string),
	}
}

// AddDocument records doc in the analysis indexes and statistics. A second
// document with an id already present is rejected and recorded as an error,
// since identical content was scanned twice.
func AddDocument(a *model.Analysis, doc *model.Document) bool {
	if prev, ok := a.Documents[doc.DocID]; ok {
		a.Errors = append(a.Errors, model.InputError{
			Input: doc.RelativePath,
			Error: "duplicate content of " + prev.RelativePath,
		})
		return false
	}

	a.Documents[doc.DocID] = doc

	for _, tag := range doc.Tags {
		a.TagIndex[tag] = append(a.TagIndex[tag], doc.DocID)
	}
	if doc.Location != "" {
		a.LocationIndex[doc.Location] = append(a.LocationIndex[doc.Location], doc.DocID)
	}
	if key := extract.MonthKey(doc.Date); key != "" {
		a.DateIndex[key] = append(a.DateIndex[key], doc.DocID)
	}

	a.Statistics.TotalDocuments++
	if len(doc.Tags) > 0 {
		a.Statistics.TaggedDocuments++
	}
	if doc.Date != "" {
		a.Statistics.DatedDocuments++
	}
	if doc.HasTag(model.TagCriticalEvidence) {
		a.Statistics.CriticalDocuments++
	}
	return true
}

// sortIndexes puts every index posting list in id order
func sortIndexes(a *model.Analysis) {
	for _, index := range []map[string][]string{a.TagIndex, a.LocationIndex, a.DateIndex} {
		for _, ids := range index {
			sort.Strings(ids)
		}
	}
}

// WriteAnalysis writes the analysis as indented JSON
func WriteAnalysis(a *model.Analysis, path string) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write analysis: %w", err)
	}
	return nil
}

// ReadAnalysis loads an analysis written by WriteAnalysis
func ReadAnalysis(path string) (*model.Analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read analysis: %w", err)
	}

	var a model.Analysis
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse analysis %s: %w", path, err)
	}
	return &a, nil
}
