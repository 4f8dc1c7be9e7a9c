package model

import "time"

// Analysis is the persisted result of scanning an archive directory
type Analysis struct {
	ScanID        string               `json:"scan_id"`
	ScanDate      time.Time            `json:"scan_date"`
	BaseDirectory string               `json:"base_directory"`
	Documents     map[string]*Document `json:"documents"` // By doc id

	TagIndex      map[string][]string `json:"tag_index"`      // Tag → doc ids
	LocationIndex map[string][]string `json:"location_index"` // Location → doc ids
	DateIndex     map[string][]string `json:"date_index"`     // YYYY-MM → doc ids

	Statistics Statistics   `json:"statistics"`
	Errors     []InputError `json:"errors,omitempty"` // Files skipped during the scan
}

// Statistics summarises a scan
type Statistics struct {
	TotalDocuments    int `json:"total_documents"`
	TaggedDocuments   int `json:"tagged_documents"`
	DatedDocuments    int `json:"dated_documents"`
	CriticalDocuments int `json:"critical_documents"`
}

// ProofChain is a named tag path shown alongside search results. It is not
// enforced structurally.
type ProofChain struct {
	Name             string   `json:"name" yaml:"name"`
	StartTag         string   `json:"start_tag" yaml:"start_tag"`
	EndTag           string   `json:"end_tag" yaml:"end_tag"`
	IntermediateTags []string `json:"intermediate_tags,omitempty" yaml:"intermediate_tags,omitempty"`
}
