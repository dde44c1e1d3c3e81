package catalog

import (
	"github.com/jwalitptl/hospital-api/internal/model"
)

// Snapshot is an immutable view of every reference catalog, keyed by code.
// It is safe for concurrent readers.
type Snapshot struct {
	entries map[model.CatalogKind]map[string]model.CatalogEntry
}

// NewSnapshot indexes the given lists. A later duplicate code overwrites an
// earlier one; codes are unique per table so this only matters for fakes.
func NewSnapshot(lists map[model.CatalogKind][]model.CatalogEntry) *Snapshot {
	entries := make(map[model.CatalogKind]map[string]model.CatalogEntry, len(lists))
	for kind, list := range lists {
		byCode := make(map[string]model.CatalogEntry, len(list))
		for _, e := range list {
			byCode[e.Code] = e
		}
		entries[kind] = byCode
	}
	return &Snapshot{entries: entries}
}

// Resolve looks code up in the kind catalog. Matching is exact: no trimming,
// no case folding.
func (s *Snapshot) Resolve(kind model.CatalogKind, code string) (model.CatalogEntry, bool) {
	e, ok := s.entries[kind][code]
	return e, ok
}

// ResolveOptional treats nil and "" as absent and reports ok for them.
func (s *Snapshot) ResolveOptional(kind model.CatalogKind, code *string) (*model.CatalogEntry, bool) {
	if code == nil || *code == "" {
		return nil, true
	}
	e, ok := s.Resolve(kind, *code)
	if !ok {
		return nil, false
	}
	return &e, true
}

// Len returns the number of entries loaded for kind.
func (s *Snapshot) Len(kind model.CatalogKind) int {
	return len(s.entries[kind])
}
