package model

// Category groups tags by case area. Order in the catalog decides which
// category a document falls into when several tags match.
type Category string

const (
	CategoryHousing       Category = "housing"
	CategoryMentalHealth  Category = "mental_health"
	CategoryLegal         Category = "legal"
	CategorySystemFailure Category = "system_failure"
	CategoryEvidence      Category = "evidence"      // critical evidence markers
	CategoryUncategorized Category = "uncategorized" // no tag matched
)

// Categories returns the known categories in priority order
func Categories() []Category {
	return []Category{
		CategoryHousing,
		CategoryMentalHealth,
		CategoryLegal,
		CategorySystemFailure,
		CategoryEvidence,
	}
}

// Valid reports whether c is one of the catalog categories
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// TagCriticalEvidence is assigned when a filename carries an evidence marker
const TagCriticalEvidence = "critical_evidence"

// ExtractionResult is the outcome of scanning one document
type ExtractionResult struct {
	DocID          string   `json:"doc_id"`                   // Stable short hash
	Filename       string   `json:"original_filename"`        // As supplied by the caller
	NormalizedName string   `json:"normalized_name"`          // Extension stripped, separators collapsed
	Tags           []string `json:"tags"`                     // Sorted, unique
	Date           string   `json:"extracted_date,omitempty"` // DD-MM-YYYY
	Location       string   `json:"location,omitempty"`       // Gazetteer name
	Category       Category `json:"category"`
}

// HasTag reports whether the result carries the given tag
func (r *ExtractionResult) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Document is a scanned archive file with its extraction result
type Document struct {
	ExtractionResult
	RelativePath string `json:"relative_path"`      // Path under the scanned root
	Folder       string `json:"folder,omitempty"`   // Parent directory name
	Revision     int    `json:"revision,omitempty"` // Bumped each time the record is superseded
}

// TagAssignment relates a document to a tag
type TagAssignment struct {
	DocID string `json:"doc_id"`
	Tag   string `json:"tag"`
}

// Assignments flattens a result into its tag assignments
func (r *ExtractionResult) Assignments() []TagAssignment {
	out := make([]TagAssignment, 0, len(r.Tags))
	for _, tag := range r.Tags {
		out = append(out, TagAssignment{DocID: r.DocID, Tag: tag})
	}
	return out
}
