// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package emit

import (
	"encoding/json"
	"io"

	"github.com/pdiddy/carsearch/pkg/types"
)

// JSONEmitter writes listings as a single JSON array.
type JSONEmitter struct {
	Indent string
}

// Emit writes an array, "[]" for no listings.
func (e JSONEmitter) Emit(w io.Writer, listings []types.Listing) error {
	if listings == nil {
		listings = []types.Listing{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if e.Indent != "" {
		enc.SetIndent("", e.Indent)
	}
	return enc.Encode(listings)
}
