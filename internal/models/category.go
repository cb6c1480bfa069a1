package models

import "sort"

// UnknownCategory is the fallback description for category codes the index
// cannot resolve
const UnknownCategory = "unknown"

// CategoryDescription maps a WWEIA category code to its description
type CategoryDescription struct {
	ID          int    `json:"category_code"`
	Description string `json:"description"`
}

// CategoryIndex resolves WWEIA category codes to descriptions
type CategoryIndex struct {
	byID map[int]string
}

// NewCategoryIndex builds an index from category pairs. The first description
// seen for a code wins; callers validate conflicts before construction.
func NewCategoryIndex(pairs []CategoryDescription) *CategoryIndex {
	idx := &CategoryIndex{byID: make(map[int]string, len(pairs))}
	for _, p := range pairs {
		if _, ok := idx.byID[p.ID]; !ok {
			idx.byID[p.ID] = p.Description
		}
	}
	return idx
}

// Describe returns the description for a code, falling back to UnknownCategory
func (c *CategoryIndex) Describe(id int) string {
	if desc, ok := c.byID[id]; ok {
		return desc
	}
	return UnknownCategory
}

// Lookup returns the description for a code and whether it is mapped
func (c *CategoryIndex) Lookup(id int) (string, bool) {
	desc, ok := c.byID[id]
	return desc, ok
}

// Len returns the number of mapped categories
func (c *CategoryIndex) Len() int {
	return len(c.byID)
}

// Pairs returns all mappings sorted by category code
func (c *CategoryIndex) Pairs() []CategoryDescription {
	pairs := make([]CategoryDescription, 0, len(c.byID))
	for id, desc := range c.byID {
		pairs = append(pairs, CategoryDescription{ID: id, Description: desc})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].ID < pairs[j].ID })
	return pairs
}
