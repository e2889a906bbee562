// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package emit

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pdiddy/carsearch/pkg/types"
)

// TextEmitter writes one line per listing:
//
//	€12,500 - (2015, 120,000 km) Skoda Fabia [carzone_ie] @ https://...
type TextEmitter struct{}

// Emit writes listings in order. No output is produced for an empty set.
func (TextEmitter) Emit(w io.Writer, listings []types.Listing) error {
	bw := bufio.NewWriter(w)
	for _, l := range listings {
		if _, err := fmt.Fprintln(bw, Line(l)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Line formats a single listing the way TextEmitter prints it.
func Line(l types.Listing) string {
	return fmt.Sprintf("%s - (%d, %s) %s %s [%s] @ %s",
		l.Price, l.Year, l.Mileage, l.Make, l.Model, l.Source, l.URL)
}
