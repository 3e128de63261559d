// Package curation ranks and filters menu categories against the product
// catalog and tracks the keyboard focus of the resulting tab list.
package curation

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"pagebuilder/internal/domain"
)

// Mode selects how the category list is filtered and ordered.
type Mode string

const (
	ModeAll        Mode = "all"
	ModeNewest     Mode = "newest"
	ModeBestseller Mode = "bestseller"
	ModeOnSale     Mode = "onsale"
)

// Modes lists every mode in menu order.
func Modes() []Mode {
	return []Mode{ModeAll, ModeNewest, ModeBestseller, ModeOnSale}
}

func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if m == "" {
		return ModeAll, nil
	}
	if !slices.Contains(Modes(), m) {
		return "", fmt.Errorf("unknown curation mode %q", s)
	}
	return m, nil
}

// Entry is a category with the product statistics it was ranked by.
type Entry struct {
	Category     domain.CategoryDetail `json:"category"`
	ProductCount int                   `json:"productCount"`
	Sold         int                   `json:"sold"`
	NewestID     int                   `json:"newestId"`
	OnSale       int                   `json:"onSale"`
}

// Rank joins categories to products by category name and applies mode.
// categories must already be in stored order; ties keep that order.
func Rank(categories []domain.CategoryDetail, products []domain.Product, mode Mode) []Entry {
	stats := make(map[string]*Entry, len(categories))
	entries := make([]Entry, len(categories))
	for i, c := range categories {
		entries[i] = Entry{Category: c}
		if _, ok := stats[c.Name]; !ok {
			stats[c.Name] = &Entry{}
		}
	}
	for _, p := range products {
		s, ok := stats[p.Category]
		if !ok {
			continue
		}
		s.ProductCount++
		s.Sold += p.Sold
		s.NewestID = max(s.NewestID, p.ID)
		if p.OnSale() {
			s.OnSale++
		}
	}
	for i := range entries {
		s := stats[entries[i].Category.Name]
		entries[i].ProductCount = s.ProductCount
		entries[i].Sold = s.Sold
		entries[i].NewestID = s.NewestID
		entries[i].OnSale = s.OnSale
	}

	switch mode {
	case ModeNewest:
		slices.SortStableFunc(entries, func(a, b Entry) int { return cmp.Compare(b.NewestID, a.NewestID) })
	case ModeBestseller:
		slices.SortStableFunc(entries, func(a, b Entry) int { return cmp.Compare(b.Sold, a.Sold) })
	case ModeOnSale:
		entries = slices.DeleteFunc(entries, func(e Entry) bool { return e.OnSale == 0 })
	}
	return entries
}

// SortByPosition returns categories in stored order.
func SortByPosition(categories []domain.CategoryDetail) []domain.CategoryDetail {
	out := slices.Clone(categories)
	slices.SortStableFunc(out, func(a, b domain.CategoryDetail) int { return cmp.Compare(a.Position, b.Position) })
	return out
}
