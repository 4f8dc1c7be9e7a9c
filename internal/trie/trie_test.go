package trie

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/ppiankov/casedex/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildScenario(t *testing.T) *Trie {
	t.Helper()
	tr := New()
	require.NoError(t, tr.Insert("housing_denial", "doc1"))
	require.NoError(t, tr.Insert("section_202", "doc1"))
	require.NoError(t, tr.Insert("housing_denial", "doc2"))
	return tr
}

func TestQuery_AndScenario(t *testing.T) {
	tr := buildScenario(t)

	got, err := tr.Query("housing_denial AND section_202")
	require.NoError(t, err)
	assert.Equal(t, []string{"doc1"}, got)
}

func TestLookup(t *testing.T) {
	tr := buildScenario(t)

	assert.Equal(t, []string{"doc1", "doc2"}, tr.Lookup("housing_denial"))
	assert.Equal(t, []string{"doc1", "doc2"}, tr.Lookup("  HOUSING_DENIAL "))
	assert.Empty(t, tr.Lookup("housing"))
	assert.Empty(t, tr.Lookup("compensation"))
}

func TestInsert_Idempotent(t *testing.T) {
	tr := buildScenario(t)
	before := tr.Keys()

	require.NoError(t, tr.Insert("housing_denial", "doc1"))
	assert.Equal(t, before, tr.Keys())
	assert.Equal(t, []string{"doc1", "doc2"}, tr.Lookup("housing_denial"))
	assert.Equal(t, []string{"doc1", "doc2"}, tr.Universe())
}

func TestInsert_Rejects(t *testing.T) {
	tr := New()

	err := tr.Insert("", "doc1")
	assert.True(t, errors.Is(err, model.ErrInvalidInput))
	err = tr.Insert("tag", " ")
	assert.True(t, errors.Is(err, model.ErrInvalidInput))

	tr.Seal()
	err = tr.Insert("tag", "doc1")
	assert.True(t, errors.Is(err, model.ErrIndexSealed))
	assert.True(t, tr.Sealed())
}

func TestLookup_AllInsertedPairsFound(t *testing.T) {
	tr := New()
	pairs := map[string][]string{}
	for i := 0; i < 50; i++ {
		key := fmt.Sprintf("tag_%d", i%7)
		doc := fmt.Sprintf("doc%d", i)
		require.NoError(t, tr.Insert(key, doc))
		pairs[key] = append(pairs[key], doc)
	}

	for key, docs := range pairs {
		got := tr.Lookup(key)
		for _, d := range docs {
			assert.Contains(t, got, d)
		}
	}
	assert.Empty(t, tr.Lookup("tag_"))
	assert.Empty(t, tr.Lookup("tag_70"))
}

func TestPrefixSearch(t *testing.T) {
	tr := New()
	require.NoError(t, tr.Insert("housing_denial", "a"))
	require.NoError(t, tr.Insert("homelessness", "b"))
	require.NoError(t, tr.Insert("housing", "c"))
	require.NoError(t, tr.Insert("negligence", "d"))

	assert.Equal(t, []string{"a", "c"}, tr.PrefixSearch("hous"))
	assert.Equal(t, []string{"a", "b", "c"}, tr.PrefixSearch("ho"))
	assert.Equal(t, []string{"a", "b", "c", "d"}, tr.PrefixSearch(""))
	assert.Empty(t, tr.PrefixSearch("x"))
}

func TestAlias_Equivalence(t *testing.T) {
	tr := New()

	// Registering before and after inserts must give the same sets
	require.NoError(t, tr.RegisterAlias("section_202", "s202"))
	require.NoError(t, tr.Insert("section_202", "doc1"))
	require.NoError(t, tr.Insert("housing act 1996", "doc9"))
	require.NoError(t, tr.RegisterAlias("section_202", "Housing  Act 1996"))
	require.NoError(t, tr.Insert("s202", "doc2"))

	want := []string{"doc1", "doc2", "doc9"}
	assert.Equal(t, want, tr.Lookup("section_202"))
	assert.Equal(t, want, tr.Lookup("s202"))
	assert.Equal(t, want, tr.Lookup("housing act 1996"))

	assert.Equal(t, "section_202", tr.Canonical("S202"))
	assert.Equal(t, "other", tr.Canonical("other"))
	assert.ElementsMatch(t, []string{"s202", "housing act 1996"}, tr.Aliases()["section_202"])
}

func TestAlias_Conflicts(t *testing.T) {
	tr := New()
	require.NoError(t, tr.RegisterAlias("sar_denial", "sar"))
	require.NoError(t, tr.RegisterAlias("sar_denial", "sar"))

	err := tr.RegisterAlias("compensation", "sar")
	assert.True(t, errors.Is(err, model.ErrInvalidInput))

	err = tr.RegisterAlias("other", "sar_denial")
	assert.True(t, errors.Is(err, model.ErrInvalidInput))

	// alias of an alias resolves to the canonical tag
	require.NoError(t, tr.RegisterAlias("sar", "subject access request"))
	require.NoError(t, tr.Insert("sar_denial", "doc1"))
	assert.Equal(t, []string{"doc1"}, tr.Lookup("subject access request"))
}

func TestArtifact_RoundTrip(t *testing.T) {
	tr := buildScenario(t)
	require.NoError(t, tr.RegisterAlias("housing_denial", "housing denial"))
	require.NoError(t, tr.Insert(model.TagCriticalEvidence, "doc2"))
	tr.Seal()

	chains := []model.ProofChain{{Name: "chain", StartTag: "housing_denial", EndTag: "compensation"}}
	a := BuildArtifact(tr, chains)
	assert.Equal(t, 2, a.TotalDocuments)
	assert.Equal(t, 2, a.Keys["housing_denial"].DocumentCount)
	assert.Equal(t, 2, a.Keys["housing denial"].DocumentCount)
	assert.Equal(t, []CriticalDocument{{DocID: "doc2"}}, a.CriticalDocuments)

	path := filepath.Join(t.TempDir(), "search_index.json")
	require.NoError(t, WriteArtifact(a, path))
	loaded, err := ReadArtifact(path)
	require.NoError(t, err)
	assert.Equal(t, chains, loaded.ProofChains)

	restored, err := FromArtifact(loaded)
	require.NoError(t, err)
	assert.True(t, restored.Sealed())
	for _, key := range tr.Keys() {
		assert.Equal(t, tr.Lookup(key), restored.Lookup(key), key)
	}
	assert.Equal(t, tr.Aliases(), restored.Aliases())
}
