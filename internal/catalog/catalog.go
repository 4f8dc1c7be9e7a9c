// Package catalog holds the fixed table of tags, their match patterns and
// search aliases, plus the location gazetteer used during extraction.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/ppiankov/casedex/internal/model"
	"gopkg.in/yaml.v3"
)

// TagDefinition describes one tag. Patterns are case-insensitive regular
// expressions matched against normalized text; a plain word is a valid
// pattern.
type TagDefinition struct {
	Name     string         `yaml:"name"`
	Category model.Category `yaml:"category"`
	Patterns []string       `yaml:"patterns"`
	Aliases  []string       `yaml:"aliases,omitempty"`
}

// Location is a gazetteer entry. Keywords match whole words.
type Location struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Catalog is the immutable tag table loaded once at start-up
type Catalog struct {
	Tags            []TagDefinition    `yaml:"tags"`
	Locations       []Location         `yaml:"locations"`
	CriticalMarkers []string           `yaml:"critical_markers"`
	ProofChains     []model.ProofChain `yaml:"proof_chains,omitempty"`

	compiled map[string][]*regexp.Regexp
	byName   map[string]*TagDefinition
}

// Load reads a YAML catalog file and compiles it
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	if err := c.compile(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadOrDefault loads path, or returns the built-in catalog when path is empty
func LoadOrDefault(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// compile validates the table and builds the regexp and name lookups
func (c *Catalog) compile() error {
	c.compiled = make(map[string][]*regexp.Regexp, len(c.Tags))
	c.byName = make(map[string]*TagDefinition, len(c.Tags))

	for i := range c.Tags {
		def := &c.Tags[i]
		def.Name = strings.TrimSpace(def.Name)
		if def.Name == "" {
			return goerr.Wrap(model.ErrInvalidCatalog, "empty tag name", goerr.V("index", i))
		}
		if _, dup := c.byName[def.Name]; dup {
			return goerr.Wrap(model.ErrInvalidCatalog, "duplicate tag", goerr.V("tag", def.Name))
		}
		if !def.Category.Valid() {
			return goerr.Wrap(model.ErrInvalidCatalog, "unknown category",
				goerr.V("tag", def.Name), goerr.V("category", def.Category))
		}

		res := make([]*regexp.Regexp, 0, len(def.Patterns))
		for _, p := range def.Patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return goerr.Wrap(model.ErrInvalidCatalog, "pattern does not compile",
					goerr.V("tag", def.Name), goerr.V("pattern", p), goerr.V("reason", err.Error()))
			}
			res = append(res, re)
		}
		c.compiled[def.Name] = res
		c.byName[def.Name] = def
	}

	for _, chain := range c.ProofChains {
		if chain.StartTag == "" || chain.EndTag == "" {
			return goerr.Wrap(model.ErrInvalidCatalog, "proof chain needs start and end tags",
				goerr.V("chain", chain.Name))
		}
	}

	return nil
}

// Definitions returns the tag definitions in priority order
func (c *Catalog) Definitions() []TagDefinition {
	return c.Tags
}

// Lookup returns the definition for a tag name
func (c *Catalog) Lookup(name string) (TagDefinition, bool) {
	def, ok := c.byName[name]
	if !ok {
		return TagDefinition{}, false
	}
	return *def, true
}

// Matches reports whether any pattern of the named tag matches text
func (c *Catalog) Matches(name, text string) bool {
	for _, re := range c.compiled[name] {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// CategoryOf returns the category of a tag, or uncategorized for unknown tags
func (c *Catalog) CategoryOf(tag string) model.Category {
	if def, ok := c.byName[tag]; ok {
		return def.Category
	}
	return model.CategoryUncategorized
}

// Aliases returns the alias table: canonical tag → alias phrases
func (c *Catalog) Aliases() map[string][]string {
	out := make(map[string][]string)
	for _, def := range c.Tags {
		if len(def.Aliases) > 0 {
			out[def.Name] = append([]string(nil), def.Aliases...)
		}
	}
	return out
}

// Fingerprint identifies the catalog contents. Cached extraction results
// are keyed by it so a catalog edit invalidates them.
func (c *Catalog) Fingerprint() string {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "unknown"
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}
