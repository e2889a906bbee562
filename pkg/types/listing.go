// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data structures for carsearch.
// Listing is the uniform search hit produced by every source; SearchCriteria
// is the user request handed to sources and the post-processing pipeline.
package types

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Listing is one normalized car-for-sale record from any provider.
// Listings are plain values: two listings with identical fields are
// indistinguishable and both are kept.
type Listing struct {
	// Source identifies the provider that produced the listing (e.g. "carzone_ie").
	Source string `json:"source" yaml:"source"`

	Make  string `json:"make" yaml:"make"`
	Model string `json:"model" yaml:"model"`

	Mileage Mileage `json:"mileage" yaml:"mileage"`

	// Year is the registration year, 0 when unknown.
	Year uint `json:"year" yaml:"year"`

	Price Price `json:"price" yaml:"price"`

	// URL links to the listing detail page on the provider's site.
	URL string `json:"url" yaml:"url"`
}

// Currency tags a Price amount. The zero value is CurrencyUnknown.
type Currency int

const (
	CurrencyUnknown Currency = iota
	EUR
	USD
	GBP
)

var currencyCodes = map[Currency]string{
	CurrencyUnknown: "unknown",
	EUR:             "EUR",
	USD:             "USD",
	GBP:             "GBP",
}

var currencySymbols = map[Currency]string{
	EUR: "€",
	USD: "$",
	GBP: "£",
}

// String returns the ISO code, or "unknown".
func (c Currency) String() string {
	if s, ok := currencyCodes[c]; ok {
		return s
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (c Currency) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Currency) UnmarshalText(text []byte) error {
	cur, ok := ParseCurrency(string(text))
	if !ok && !strings.EqualFold(string(text), "unknown") {
		return fmt.Errorf("unknown currency %q", text)
	}
	*c = cur
	return nil
}

// ParseCurrency maps an ISO code (case-insensitive) to a Currency.
// The second return value is false for anything other than EUR, USD or GBP.
func ParseCurrency(code string) (Currency, bool) {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "EUR":
		return EUR, true
	case "USD":
		return USD, true
	case "GBP":
		return GBP, true
	}
	return CurrencyUnknown, false
}

// Price is a currency-tagged amount in whole units, or unknown.
type Price struct {
	Currency Currency `json:"currency" yaml:"currency"`
	Amount   int      `json:"amount,omitempty" yaml:"amount,omitempty"`
}

func EurPrice(amount int) Price { return Price{Currency: EUR, Amount: amount} }
func UsdPrice(amount int) Price { return Price{Currency: USD, Amount: amount} }
func GbpPrice(amount int) Price { return Price{Currency: GBP, Amount: amount} }

// UnknownPrice returns the price of a listing that did not advertise one.
func UnknownPrice() Price { return Price{} }

// Known reports whether the price carries a currency.
func (p Price) Known() bool { return p.Currency != CurrencyUnknown }

// String formats the price with its currency symbol, e.g. "€12,500".
func (p Price) String() string {
	if !p.Known() {
		return "unknown"
	}
	return currencySymbols[p.Currency] + humanize.Comma(int64(p.Amount))
}

// DistanceUnit tags a Mileage value. The zero value is UnitUnknown.
type DistanceUnit int

const (
	UnitUnknown DistanceUnit = iota
	Kilometers
	Miles
)

// String returns "km", "mi" or "unknown".
func (u DistanceUnit) String() string {
	switch u {
	case Kilometers:
		return "km"
	case Miles:
		return "mi"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (u DistanceUnit) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *DistanceUnit) UnmarshalText(text []byte) error {
	unit, ok := ParseDistanceUnit(string(text))
	if !ok && !strings.EqualFold(string(text), "unknown") {
		return fmt.Errorf("unknown distance unit %q", text)
	}
	*u = unit
	return nil
}

// ParseDistanceUnit maps "km" or "mi" (case-insensitive) to a DistanceUnit.
func ParseDistanceUnit(s string) (DistanceUnit, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "km":
		return Kilometers, true
	case "mi":
		return Miles, true
	}
	return UnitUnknown, false
}

// Mileage is an odometer reading in kilometers or miles, or unknown.
type Mileage struct {
	Unit  DistanceUnit `json:"unit" yaml:"unit"`
	Value int          `json:"value,omitempty" yaml:"value,omitempty"`
}

func Km(v int) Mileage { return Mileage{Unit: Kilometers, Value: v} }
func Mi(v int) Mileage { return Mileage{Unit: Miles, Value: v} }

// UnknownMileage returns the mileage of a listing without an odometer reading.
func UnknownMileage() Mileage { return Mileage{} }

// Known reports whether the mileage carries a unit.
func (m Mileage) Known() bool { return m.Unit != UnitUnknown }

// String formats the mileage, e.g. "120,000 km".
func (m Mileage) String() string {
	if !m.Known() {
		return "unknown"
	}
	return humanize.Comma(int64(m.Value)) + " " + m.Unit.String()
}
