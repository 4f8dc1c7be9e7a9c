package trie

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/ppiankov/casedex/internal/model"
)

// ArtifactVersion is written into every search index file
const ArtifactVersion = "1.0"

// KeyEntry is one indexed key in the persisted search index
type KeyEntry struct {
	DocumentCount int      `json:"document_count"`
	Documents     []string `json:"documents"`
}

// CriticalDocument is an index entry for a document tagged as critical
// evidence. Filename and tags are filled by callers holding the documents.
type CriticalDocument struct {
	DocID    string   `json:"doc_id"`
	Filename string   `json:"filename,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// Artifact is the serializable form of a sealed trie
type Artifact struct {
	Version           string              `json:"version"`
	Created           time.Time           `json:"created"`
	TotalDocuments    int                 `json:"total_documents"`
	Keys              map[string]KeyEntry `json:"keys"`
	Aliases           map[string][]string `json:"aliases"`
	ProofChains       []model.ProofChain  `json:"proof_chains"`
	CriticalDocuments []CriticalDocument  `json:"critical_documents"`
}

// BuildArtifact snapshots a trie. Proof chains are carried for display only.
func BuildArtifact(t *Trie, chains []model.ProofChain) *Artifact {
	a := &Artifact{
		Version:           ArtifactVersion,
		Created:           time.Now().UTC(),
		TotalDocuments:    len(t.universe),
		Keys:              make(map[string]KeyEntry),
		Aliases:           t.Aliases(),
		ProofChains:       append([]model.ProofChain{}, chains...),
		CriticalDocuments: []CriticalDocument{},
	}

	for _, id := range t.Lookup(model.TagCriticalEvidence) {
		a.CriticalDocuments = append(a.CriticalDocuments, CriticalDocument{DocID: id})
	}

	for _, key := range t.Keys() {
		docs := t.Lookup(key)
		a.Keys[key] = KeyEntry{DocumentCount: len(docs), Documents: docs}
	}

	return a
}

// FromArtifact rebuilds a sealed trie from a persisted index
func FromArtifact(a *Artifact) (*Trie, error) {
	t := New()

	canonicals := make([]string, 0, len(a.Aliases))
	for canonical := range a.Aliases {
		canonicals = append(canonicals, canonical)
	}
	sort.Strings(canonicals)

	for _, canonical := range canonicals {
		for _, alias := range a.Aliases[canonical] {
			if err := t.RegisterAlias(canonical, alias); err != nil {
				return nil, fmt.Errorf("restore alias %q: %w", alias, err)
			}
		}
	}

	for key, entry := range a.Keys {
		for _, id := range entry.Documents {
			if err := t.Insert(key, id); err != nil {
				return nil, fmt.Errorf("restore key %q: %w", key, err)
			}
		}
	}

	t.Seal()
	return t, nil
}

// WriteArtifact writes the index as indented JSON
func WriteArtifact(a *Artifact, path string) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal search index: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write search index: %w", err)
	}
	return nil
}

// ReadArtifact loads a search index written by WriteArtifact
func ReadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read search index: %w", err)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse search index %s: %w", path, err)
	}
	return &a, nil
}
