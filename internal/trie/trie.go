// Package trie implements the keyword index: a prefix tree from tag names
// and their aliases to the set of documents carrying the tag.
//
// The index has two phases. During the build phase a single goroutine
// calls Insert and RegisterAlias; Seal ends it. Lookups are allowed in
// either phase but writes are not safe for concurrent use.
package trie

import (
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/ppiankov/casedex/internal/model"
)

type docSet map[string]struct{}

// node is one character of a key path. docs is non-nil only at terminals;
// an alias terminal shares the map of its canonical tag.
type node struct {
	children map[rune]*node
	docs     docSet
}

func newNode() *node {
	return &node{children: make(map[rune]*node)}
}

// Trie maps keys to document ids
type Trie struct {
	root     *node
	universe docSet
	aliases  map[string][]string // canonical → aliases
	aliasOf  map[string]string   // alias → canonical
	sealed   bool
}

// New creates an empty trie in the build phase
func New() *Trie {
	return &Trie{
		root:     newNode(),
		universe: make(docSet),
		aliases:  make(map[string][]string),
		aliasOf:  make(map[string]string),
	}
}

// NormalizeKey lower-cases a key and collapses whitespace runs
func NormalizeKey(key string) string {
	return strings.Join(strings.Fields(strings.ToLower(key)), " ")
}

// Insert adds docID under key. Re-inserting a pair is a no-op.
func (t *Trie) Insert(key, docID string) error {
	if t.sealed {
		return goerr.Wrap(model.ErrIndexSealed, "insert after seal", goerr.V("key", key))
	}

	key = NormalizeKey(key)
	docID = strings.TrimSpace(docID)
	if key == "" || docID == "" {
		return goerr.Wrap(model.ErrInvalidInput, "empty key or document id",
			goerr.V("key", key), goerr.V("doc_id", docID))
	}

	n := t.ensure(key)
	if n.docs == nil {
		n.docs = make(docSet)
	}
	n.docs[docID] = struct{}{}
	t.universe[docID] = struct{}{}
	return nil
}

// RegisterAlias binds alias to canonical so both keys share one document
// set. Documents already indexed under alias are merged into canonical.
// An alias of an alias resolves to the first canonical tag.
func (t *Trie) RegisterAlias(canonical, alias string) error {
	if t.sealed {
		return goerr.Wrap(model.ErrIndexSealed, "alias after seal", goerr.V("alias", alias))
	}

	canonical = NormalizeKey(canonical)
	alias = NormalizeKey(alias)
	if canonical == "" || alias == "" {
		return goerr.Wrap(model.ErrInvalidInput, "empty alias or canonical key")
	}
	if root, ok := t.aliasOf[canonical]; ok {
		canonical = root
	}
	if canonical == alias {
		return nil
	}
	if bound, ok := t.aliasOf[alias]; ok {
		if bound == canonical {
			return nil
		}
		return goerr.Wrap(model.ErrInvalidInput, "alias already bound",
			goerr.V("alias", alias), goerr.V("canonical", bound))
	}
	if len(t.aliases[alias]) > 0 {
		return goerr.Wrap(model.ErrInvalidInput, "alias is itself a canonical key",
			goerr.V("alias", alias))
	}

	cn := t.ensure(canonical)
	if cn.docs == nil {
		cn.docs = make(docSet)
	}
	an := t.ensure(alias)
	for id := range an.docs {
		cn.docs[id] = struct{}{}
	}
	an.docs = cn.docs

	t.aliasOf[alias] = canonical
	t.aliases[canonical] = append(t.aliases[canonical], alias)
	return nil
}

// Seal ends the build phase
func (t *Trie) Seal() {
	t.sealed = true
}

// Sealed reports whether the build phase has ended
func (t *Trie) Sealed() bool {
	return t.sealed
}

// Lookup returns the documents indexed exactly under key
func (t *Trie) Lookup(key string) []string {
	return sorted(t.lookupSet(NormalizeKey(key)))
}

func (t *Trie) lookupSet(key string) docSet {
	n := t.find(key)
	if n == nil || n.docs == nil {
		return docSet{}
	}
	return n.docs
}

// PrefixSearch returns the union of documents under every key starting with prefix
func (t *Trie) PrefixSearch(prefix string) []string {
	return sorted(t.prefixSet(NormalizeKey(prefix)))
}

func (t *Trie) prefixSet(prefix string) docSet {
	out := make(docSet)
	start := t.find(prefix)
	if start == nil {
		return out
	}

	stack := []*node{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for id := range n.docs {
			out[id] = struct{}{}
		}
		for _, child := range n.children {
			stack = append(stack, child)
		}
	}
	return out
}

// Universe returns every indexed document id
func (t *Trie) Universe() []string {
	return sorted(t.universe)
}

// Keys returns every indexed key, aliases included, in lexical order
func (t *Trie) Keys() []string {
	type frame struct {
		n    *node
		path []rune
	}

	var keys []string
	stack := []frame{{n: t.root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.n.docs != nil {
			keys = append(keys, string(f.path))
		}
		for r, child := range f.n.children {
			path := make([]rune, len(f.path)+1)
			copy(path, f.path)
			path[len(f.path)] = r
			stack = append(stack, frame{n: child, path: path})
		}
	}

	sort.Strings(keys)
	return keys
}

// Aliases returns the alias table: canonical → aliases
func (t *Trie) Aliases() map[string][]string {
	out := make(map[string][]string, len(t.aliases))
	for k, v := range t.aliases {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Canonical resolves an alias to its canonical key; other keys map to themselves
func (t *Trie) Canonical(key string) string {
	key = NormalizeKey(key)
	if c, ok := t.aliasOf[key]; ok {
		return c
	}
	return key
}

func (t *Trie) ensure(key string) *node {
	n := t.root
	for _, r := range key {
		child, ok := n.children[r]
		if !ok {
			child = newNode()
			n.children[r] = child
		}
		n = child
	}
	return n
}

func (t *Trie) find(key string) *node {
	n := t.root
	for _, r := range key {
		child, ok := n.children[r]
		if !ok {
			return nil
		}
		n = child
	}
	return n
}

func sorted(set docSet) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
