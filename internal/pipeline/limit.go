// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import "github.com/pdiddy/carsearch/pkg/types"

// Limit keeps the first N listings in their current order.
type Limit struct {
	N int
}

// Name returns the metrics label for the stage.
func (Limit) Name() string { return "limit" }

// Execute returns a copy of at most N leading listings.
func (l Limit) Execute(listings []types.Listing) []types.Listing {
	n := l.N
	if n < 0 {
		n = 0
	}
	if n > len(listings) {
		n = len(listings)
	}
	return clone(listings[:n])
}
