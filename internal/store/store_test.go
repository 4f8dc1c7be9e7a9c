package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/ppiankov/casedex/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testDoc(id string, tags ...string) *model.Document {
	return &model.Document{
		ExtractionResult: model.ExtractionResult{
			DocID:    id,
			Filename: id + ".pdf",
			Tags:     tags,
			Category: model.CategoryHousing,
		},
		RelativePath: "housing/" + id + ".pdf",
		Folder:       "housing",
	}
}

func TestPut_RevisionsIncrease(t *testing.T) {
	s := newTestStore(t)

	rev, err := s.Put(testDoc("abc", "housing_denial"))
	require.NoError(t, err)
	assert.Equal(t, 1, rev)

	// Unchanged content keeps the current revision
	rev, err = s.Put(testDoc("abc", "housing_denial"))
	require.NoError(t, err)
	assert.Equal(t, 1, rev)

	doc := testDoc("abc", "housing_denial", "section_202")
	rev, err = s.Put(doc)
	require.NoError(t, err)
	assert.Equal(t, 2, rev)
	assert.Equal(t, 2, doc.Revision)

	got, ok, err := s.Get("abc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, got.Revision)
	assert.Equal(t, []string{"housing_denial", "section_202"}, got.Tags)

	history, err := s.History("abc")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 1, history[0].Document.Revision)
	assert.Equal(t, []string{"housing_denial"}, history[0].Document.Tags)
	assert.Equal(t, 2, history[1].Document.Revision)
}

func TestGet_Missing(t *testing.T) {
	s := newTestStore(t)

	doc, ok, err := s.Get("nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, doc)
}

func TestList(t *testing.T) {
	s := newTestStore(t)

	for _, id := range []string{"c3", "a1", "b2"} {
		_, err := s.Put(testDoc(id, "evidence"))
		require.NoError(t, err)
	}
	_, err := s.Put(testDoc("a1", "evidence", "legal"))
	require.NoError(t, err)

	docs, err := s.List()
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "a1", docs[0].DocID)
	assert.Equal(t, 2, docs[0].Revision)
	assert.Equal(t, "b2", docs[1].DocID)
	assert.Equal(t, "c3", docs[2].DocID)
}

func TestPut_RejectsEmptyID(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Put(testDoc(""))
	assert.True(t, errors.Is(err, model.ErrInvalidInput))
	_, err = s.Put(nil)
	assert.True(t, errors.Is(err, model.ErrInvalidInput))
}

func TestOpen_Persistent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")

	s, err := Open(model.StoreConfig{Enabled: true, Path: dir}, nil)
	require.NoError(t, err)
	_, err = s.Put(testDoc("persisted", "legal"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(model.StoreConfig{Enabled: true, Path: dir}, nil)
	require.NoError(t, err)
	defer s.Close()

	doc, ok, err := s.Get("persisted")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, doc.Revision)

	_, err = Open(model.StoreConfig{}, nil)
	assert.True(t, errors.Is(err, model.ErrInvalidInput))
}
