// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"sort"
	"strings"

	"github.com/pdiddy/carsearch/pkg/types"
)

// SortField selects the listing attribute to order by.
type SortField int

const (
	ByPrice SortField = iota
	ByYear
	ByMileage
)

func (f SortField) String() string {
	switch f {
	case ByYear:
		return "year"
	case ByMileage:
		return "mileage"
	default:
		return "price"
	}
}

// ParseSortField matches price, year or mileage, ignoring case.
func ParseSortField(s string) (SortField, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "price":
		return ByPrice, true
	case "year":
		return ByYear, true
	case "mileage":
		return ByMileage, true
	}
	return ByPrice, false
}

// SortOrder is the sort direction.
type SortOrder int

const (
	Ascending SortOrder = iota
	Descending
)

func (o SortOrder) String() string {
	if o == Descending {
		return "desc"
	}
	return "asc"
}

// ParseSortOrder matches asc/ascending or desc/descending, ignoring case.
func ParseSortOrder(s string) (SortOrder, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Ascending, true
	case "desc", "descending":
		return Descending, true
	}
	return Ascending, false
}

// Sort orders listings by one field. The sort is stable in both
// directions: listings with equal keys keep their input order.
type Sort struct {
	By    SortField
	Order SortOrder
}

// Name returns the metrics label for the stage.
func (Sort) Name() string { return "sort" }

func (s Sort) String() string { return "sort(" + s.By.String() + " " + s.Order.String() + ")" }

// Execute returns a sorted copy of listings.
func (s Sort) Execute(listings []types.Listing) []types.Listing {
	out := clone(listings)
	cmp := s.compare()
	if s.Order == Descending {
		asc := cmp
		cmp = func(a, b types.Listing) int { return asc(b, a) }
	}
	sort.SliceStable(out, func(i, j int) bool {
		return cmp(out[i], out[j]) < 0
	})
	return out
}

func (s Sort) compare() func(a, b types.Listing) int {
	switch s.By {
	case ByYear:
		return func(a, b types.Listing) int { return types.CompareYear(a.Year, b.Year) }
	case ByMileage:
		return func(a, b types.Listing) int { return types.CompareMileage(a.Mileage, b.Mileage) }
	default:
		return func(a, b types.Listing) int { return types.ComparePrice(a.Price, b.Price) }
	}
}
