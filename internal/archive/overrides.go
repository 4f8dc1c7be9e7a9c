package archive

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"

	"gopkg.in/yaml.v3"
)

// Overrides maps a file (relative path or bare filename) to manual tags
// that are added to whatever the extractor detects.
//
//	Nnamdi_Okpala_Not_Homeless.pdf: [critical_evidence]
//	medical/discharge_summary.pdf: [ellingham, mental_health]
type Overrides map[string][]string

// LoadOverrides reads an overrides file. A missing file yields no overrides.
func LoadOverrides(filename string) (Overrides, error) {
	data, err := os.ReadFile(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return Overrides{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read overrides: %w", err)
	}

	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("parse overrides %s: %w", filename, err)
	}
	if o == nil {
		o = Overrides{}
	}
	return o, nil
}

// For returns the manual tags for a slash-separated relative path. Entries
// keyed by the full path come before entries keyed by the bare filename.
func (o Overrides) For(relPath string) []string {
	var tags []string
	tags = append(tags, o[relPath]...)
	if base := path.Base(relPath); base != relPath {
		tags = append(tags, o[base]...)
	}
	return tags
}
