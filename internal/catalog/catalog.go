// Package catalog holds the static item name to id table and resolves user input against it.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrItemNotFound is returned when no catalog entry matches the input.
var ErrItemNotFound = errors.New("item not found")

// Catalog is an immutable snapshot of the item mapping.
type Catalog struct {
	byName  map[string]Item
	byLower map[string]Item
	names   []string
}

// Load fetches the mapping once and builds a catalog from it.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	items, err := src.FetchMapping(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if len(items) == 0 {
		return nil, errors.New("load catalog: mapping is empty")
	}
	return New(items), nil
}

// New builds a catalog. When two entries share a name the lower id wins.
func New(items []Item) *Catalog {
	c := &Catalog{
		byName:  make(map[string]Item, len(items)),
		byLower: make(map[string]Item, len(items)),
	}
	for _, it := range items {
		if it.Name == "" {
			continue
		}
		if prev, ok := c.byName[it.Name]; !ok || it.ID < prev.ID {
			c.byName[it.Name] = it
		}
		lower := strings.ToLower(it.Name)
		if prev, ok := c.byLower[lower]; !ok || it.ID < prev.ID {
			c.byLower[lower] = it
		}
	}

	c.names = make([]string, 0, len(c.byName))
	for name := range c.byName {
		c.names = append(c.names, name)
	}
	sort.Strings(c.names)
	return c
}

// Len returns the number of distinct names.
func (c *Catalog) Len() int {
	return len(c.names)
}

// Lookup resolves a user-typed name. Exact case-sensitive matches win,
// then case-insensitive exact matches, then the alphabetically first
// case-insensitive prefix match.
func (c *Catalog) Lookup(name string) (Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Item{}, ErrItemNotFound
	}
	if it, ok := c.byName[name]; ok {
		return it, nil
	}
	lower := strings.ToLower(name)
	if it, ok := c.byLower[lower]; ok {
		return it, nil
	}
	for _, candidate := range c.names {
		if strings.HasPrefix(strings.ToLower(candidate), lower) {
			return c.byName[candidate], nil
		}
	}
	return Item{}, fmt.Errorf("%w: %q", ErrItemNotFound, name)
}

// Search returns names containing query, case-insensitively, in alphabetical order.
// An empty query returns every name. limit <= 0 means no limit.
func (c *Catalog) Search(query string, limit int) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]string, 0)
	for _, name := range c.names {
		if q != "" && !strings.Contains(strings.ToLower(name), q) {
			continue
		}
		out = append(out, name)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
