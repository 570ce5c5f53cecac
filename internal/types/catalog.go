// Package types provides type definitions for the academic records shared by the
// scraper, the aggregation pipeline and the eligibility resolver.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"strings"
)

// InternshipCourseName is the catalog placeholder name for the internship course.
const InternshipCourseName = "INTERNSHIP"

// skippableMarkers are the reserved characters the portal puts in codes of courses
// that are not offered for regular registration.
const skippableMarkers = "#*"

// CatalogEntry is a single curriculum course with its authoritative credit and prerequisites.
type CatalogEntry struct {
	Code          string   `json:"-"`
	Name          string   `json:"course_name"`
	Credit        int      `json:"credit"`
	Prerequisites []string `json:"prerequisites"`

	// Flags computed once when the entry is built
	Skippable  bool `json:"-"`
	Internship bool `json:"-"`
}

// NewCatalogEntry builds a catalog entry and computes its administrative flags.
func NewCatalogEntry(code, name string, credit int, prerequisites []string) CatalogEntry {
	if prerequisites == nil {
		prerequisites = []string{}
	}
	return CatalogEntry{
		Code:          code,
		Name:          name,
		Credit:        credit,
		Prerequisites: prerequisites,
		Skippable:     strings.ContainsAny(code, skippableMarkers),
		Internship:    name == InternshipCourseName,
	}
}

// Catalog is the ordered curriculum. Iteration order is the order in which entries
// were first added, which keeps eligibility resolution reproducible.
type Catalog struct {
	entries []CatalogEntry
	index   map[string]int
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{index: make(map[string]int)}
}

// Add inserts an entry. A code that is already present is replaced in place, so the
// entry keeps the position of its first occurrence.
func (c *Catalog) Add(entry CatalogEntry) {
	if c.index == nil {
		c.index = make(map[string]int)
	}
	if i, ok := c.index[entry.Code]; ok {
		c.entries[i] = entry
		return
	}
	c.index[entry.Code] = len(c.entries)
	c.entries = append(c.entries, entry)
}

// Merge adds every entry of other, in other's order.
func (c *Catalog) Merge(other *Catalog) {
	if other == nil {
		return
	}
	for _, e := range other.entries {
		c.Add(e)
	}
}

// Get returns the entry for a code.
func (c *Catalog) Get(code string) (CatalogEntry, bool) {
	if c == nil {
		return CatalogEntry{}, false
	}
	i, ok := c.index[code]
	if !ok {
		return CatalogEntry{}, false
	}
	return c.entries[i], true
}

// Entries returns the entries in catalog order. The slice must not be modified.
func (c *Catalog) Entries() []CatalogEntry {
	if c == nil {
		return nil
	}
	return c.entries
}

// Len returns the number of distinct course codes.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// MarshalJSON encodes the catalog as a code-keyed object.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	out := make(map[string]CatalogEntry, c.Len())
	for _, e := range c.Entries() {
		out[e.Code] = e
	}
	return json.Marshal(out)
}

// CatalogRecord is the serialized form of an entry used by snapshots, where order matters.
type CatalogRecord struct {
	Code          string   `json:"code"`
	Name          string   `json:"course_name"`
	Credit        int      `json:"credit"`
	Prerequisites []string `json:"prerequisites"`
}

// CatalogFromRecords builds a catalog from ordered records.
func CatalogFromRecords(records []CatalogRecord) *Catalog {
	c := NewCatalog()
	for _, r := range records {
		c.Add(NewCatalogEntry(r.Code, r.Name, r.Credit, r.Prerequisites))
	}
	return c
}
