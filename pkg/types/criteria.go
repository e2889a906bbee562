// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SearchCriteria is the user request for one carsearch run.
//
// The filter bounds are provider-opaque strings: each provider expects its
// own encoding, so they are passed through unchanged and never parsed. An
// empty string means the filter is absent.
type SearchCriteria struct {
	Make  string `json:"make,omitempty" yaml:"make,omitempty"`
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	MinYear string `json:"min_year,omitempty" yaml:"min_year,omitempty"`
	MaxYear string `json:"max_year,omitempty" yaml:"max_year,omitempty"`

	MinMileage string `json:"min_mileage,omitempty" yaml:"min_mileage,omitempty"`
	MaxMileage string `json:"max_mileage,omitempty" yaml:"max_mileage,omitempty"`

	MinPrice string `json:"min_price,omitempty" yaml:"min_price,omitempty"`
	MaxPrice string `json:"max_price,omitempty" yaml:"max_price,omitempty"`

	// Limit caps the number of rendered listings; nil means no limit.
	Limit *int `json:"limit,omitempty" yaml:"limit,omitempty"`

	// SortBy and SortOrder hold the raw user text ("price", "desc").
	// The pipeline builder interprets them and reports fallbacks.
	SortBy    string `json:"sort_by,omitempty" yaml:"sort_by,omitempty"`
	SortOrder string `json:"sort_order,omitempty" yaml:"sort_order,omitempty"`
}

// Clone returns a copy of c that shares no pointers with it.
func (c SearchCriteria) Clone() SearchCriteria {
	out := c
	if c.Limit != nil {
		n := *c.Limit
		out.Limit = &n
	}
	return out
}

// HasYearRange reports whether either year bound is set.
func (c SearchCriteria) HasYearRange() bool { return c.MinYear != "" || c.MaxYear != "" }

// HasMileageRange reports whether either mileage bound is set.
func (c SearchCriteria) HasMileageRange() bool { return c.MinMileage != "" || c.MaxMileage != "" }

// HasPriceRange reports whether either price bound is set.
func (c SearchCriteria) HasPriceRange() bool { return c.MinPrice != "" || c.MaxPrice != "" }
