package archive

import (
	"fmt"
	"sort"

	"github.com/ppiankov/casedex/internal/catalog"
	"github.com/ppiankov/casedex/internal/model"
	"github.com/ppiankov/casedex/internal/trie"
)

// BuildIndex feeds an analysis into a new trie and seals it. Catalog aliases
// are registered before any document so alias lookups see every insert.
// Proof chains are kept only when both their start and end tags occur.
// Critical documents carry their filename and tags.
func BuildIndex(a *model.Analysis, c *catalog.Catalog) (*trie.Trie, *trie.Artifact, error) {
	if c == nil {
		c = catalog.Default()
	}

	t := trie.New()

	aliases := c.Aliases()
	canonicals := make([]string, 0, len(aliases))
	for canonical := range aliases {
		canonicals = append(canonicals, canonical)
	}
	sort.Strings(canonicals)
	for _, canonical := range canonicals {
		for _, alias := range aliases[canonical] {
			if err := t.RegisterAlias(canonical, alias); err != nil {
				return nil, nil, fmt.Errorf("register alias %q: %w", alias, err)
			}
		}
	}

	ids := make([]string, 0, len(a.Documents))
	for id := range a.Documents {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		for _, assignment := range a.Documents[id].Assignments() {
			if err := t.Insert(assignment.Tag, assignment.DocID); err != nil {
				return nil, nil, fmt.Errorf("index %s: %w", id, err)
			}
		}
	}
	t.Seal()

	var chains []model.ProofChain
	for _, chain := range c.ProofChains {
		if len(a.TagIndex[chain.StartTag]) > 0 && len(a.TagIndex[chain.EndTag]) > 0 {
			chains = append(chains, chain)
		}
	}

	artifact := trie.BuildArtifact(t, chains)
	// Untagged documents are scanned but never reach the trie
	artifact.TotalDocuments = a.Statistics.TotalDocuments

	for i := range artifact.CriticalDocuments {
		entry := &artifact.CriticalDocuments[i]
		if doc, ok := a.Documents[entry.DocID]; ok {
			entry.Filename = doc.Filename
			entry.Tags = append([]string(nil), doc.Tags...)
		}
	}

	return t, artifact, nil
}
