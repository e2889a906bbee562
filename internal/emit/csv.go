// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package emit

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pdiddy/carsearch/pkg/types"
)

var csvHeader = []string{"source", "make", "model", "year", "mileage", "mileage_unit", "price", "currency", "url"}

// CSVEmitter writes a header row followed by one row per listing. Unknown
// prices and mileages leave the amount empty and carry "unknown" as the
// unit or currency; an unknown year is empty.
type CSVEmitter struct{}

func (CSVEmitter) Emit(w io.Writer, listings []types.Listing) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, l := range listings {
		if err := cw.Write(csvRecord(l)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRecord(l types.Listing) []string {
	return []string{
		l.Source,
		l.Make,
		l.Model,
		optionalInt(l.Year != 0, int(l.Year)),
		optionalInt(l.Mileage.Known(), l.Mileage.Value),
		l.Mileage.Unit.String(),
		optionalInt(l.Price.Known(), l.Price.Amount),
		l.Price.Currency.String(),
		l.URL,
	}
}

func optionalInt(ok bool, n int) string {
	if !ok {
		return ""
	}
	return strconv.Itoa(n)
}
