package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/ppiankov/casedex/internal/catalog"
	"github.com/ppiankov/casedex/internal/model"
)

// docIDLength is the number of hex characters kept from the content hash
const docIDLength = 12

// Input is a document to scan. Only Filename is required.
type Input struct {
	Filename     string   // Original filename, extension included
	Text         string   // Optional body text
	Content      []byte   // Optional raw file bytes; hashed for the doc id when present
	OverrideTags []string // Manual tag additions, unioned with detected tags
}

// Extractor assigns catalog tags, a date, a location and a category to
// documents. It holds no mutable state and is safe for concurrent use.
type Extractor struct {
	catalog *catalog.Catalog
}

// NewExtractor creates an extractor over the given catalog
func NewExtractor(c *catalog.Catalog) *Extractor {
	if c == nil {
		c = catalog.Default()
	}
	return &Extractor{catalog: c}
}

// Extract scans a filename and optional body text
func (e *Extractor) Extract(text, filename string) (*model.ExtractionResult, error) {
	return e.ExtractDocument(Input{Filename: filename, Text: text})
}

// ExtractDocument scans a document. Missing dates, locations and tags are
// not errors; only an empty filename is rejected.
func (e *Extractor) ExtractDocument(in Input) (*model.ExtractionResult, error) {
	if strings.TrimSpace(in.Filename) == "" {
		return nil, goerr.Wrap(model.ErrInvalidInput, "empty filename")
	}

	normName := NormalizeFilename(in.Filename)
	normText := NormalizeText(in.Text)

	tags := make(map[string]struct{})
	for _, def := range e.catalog.Definitions() {
		if e.catalog.Matches(def.Name, normName) || (normText != "" && e.catalog.Matches(def.Name, normText)) {
			tags[def.Name] = struct{}{}
		}
	}

	// Evidence markers only count in the filename
	if containsAnyWord(normName, e.catalog.CriticalMarkers) {
		tags[model.TagCriticalEvidence] = struct{}{}
	}

	for _, tag := range in.OverrideTags {
		tag = NormalizeTag(tag)
		if tag != "" {
			tags[tag] = struct{}{}
		}
	}

	result := &model.ExtractionResult{
		DocID:          DocumentID(in),
		Filename:       in.Filename,
		NormalizedName: normName,
		Tags:           sortedKeys(tags),
		Location:       e.location(normName, normText),
	}

	rawName := stripExt(filepath.Base(in.Filename))
	if date, ok := ExtractDate(rawName); ok {
		result.Date = date
	} else if date, ok := ExtractDate(in.Text); ok {
		result.Date = date
	}

	result.Category = e.category(result.Tags)

	return result, nil
}

// location returns the first gazetteer entry found in the filename, then the body
func (e *Extractor) location(normName, normText string) string {
	for _, text := range []string{normName, normText} {
		if text == "" {
			continue
		}
		for _, loc := range e.catalog.Locations {
			if containsAnyWord(text, loc.Keywords) {
				return loc.Name
			}
		}
	}
	return ""
}

// category picks the highest-priority category among the tags
func (e *Extractor) category(tags []string) model.Category {
	present := make(map[model.Category]bool)
	for _, tag := range tags {
		present[e.catalog.CategoryOf(tag)] = true
	}
	for _, cat := range model.Categories() {
		if present[cat] {
			return cat
		}
	}
	return model.CategoryUncategorized
}

// DocumentID hashes the most stable content available: raw bytes, then
// body text, then the filename
func DocumentID(in Input) string {
	var sum [32]byte
	switch {
	case len(in.Content) > 0:
		sum = sha256.Sum256(in.Content)
	case in.Text != "":
		sum = sha256.Sum256([]byte(in.Text))
	default:
		sum = sha256.Sum256([]byte(in.Filename))
	}
	return hex.EncodeToString(sum[:])[:docIDLength]
}

var (
	separatorRe = regexp.MustCompile(`[_\-.]+`)
	spaceRe     = regexp.MustCompile(`\s+`)
	nonWordRe   = regexp.MustCompile(`[^\p{L}\p{N}]+`)
)

// NormalizeFilename strips the extension, lower-cases and collapses
// separators to single spaces
func NormalizeFilename(filename string) string {
	return NormalizeText(stripExt(filepath.Base(filename)))
}

// stripExt removes a file extension but leaves numeric suffixes such as
// the year in "letter_15.05.2016"
func stripExt(name string) string {
	ext := filepath.Ext(name)
	if ext == "" || len(ext) > 6 || strings.ContainsAny(ext, "0123456789") {
		return name
	}
	return strings.TrimSuffix(name, ext)
}

// NormalizeText lower-cases and collapses `_`, `-`, `.` and whitespace runs
func NormalizeText(text string) string {
	text = strings.ToLower(text)
	text = separatorRe.ReplaceAllString(text, " ")
	text = spaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// NormalizeTag turns a manual tag into catalog form: lower case, words joined by `_`
func NormalizeTag(tag string) string {
	return strings.Join(strings.Fields(strings.ToLower(tag)), "_")
}

// containsAnyWord reports whether any keyword occurs as whole words in text
func containsAnyWord(text string, keywords []string) bool {
	padded := " " + wordsOnly(text) + " "
	for _, kw := range keywords {
		kw = wordsOnly(kw)
		if kw != "" && strings.Contains(padded, " "+kw+" ") {
			return true
		}
	}
	return false
}

// wordsOnly lower-cases text and reduces it to space-separated words
func wordsOnly(text string) string {
	return strings.TrimSpace(nonWordRe.ReplaceAllString(strings.ToLower(text), " "))
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
