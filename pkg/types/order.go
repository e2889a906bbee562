// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "cmp"

// Variant ranks used by the comparators. Unknown is always lowest; known
// variants compare by rank before amount, so a GBP price sorts after every
// EUR price regardless of value.
var (
	currencyRank = map[Currency]int{CurrencyUnknown: 0, EUR: 1, USD: 2, GBP: 3}
	unitRank     = map[DistanceUnit]int{UnitUnknown: 0, Kilometers: 1, Miles: 2}
)

// ComparePrice orders prices by currency rank, then amount.
// It returns -1, 0 or +1.
func ComparePrice(a, b Price) int {
	if c := cmp.Compare(currencyRank[a.Currency], currencyRank[b.Currency]); c != 0 {
		return c
	}
	if !a.Known() {
		return 0
	}
	return cmp.Compare(a.Amount, b.Amount)
}

// CompareMileage orders mileages by unit rank, then value.
func CompareMileage(a, b Mileage) int {
	if c := cmp.Compare(unitRank[a.Unit], unitRank[b.Unit]); c != 0 {
		return c
	}
	if !a.Known() {
		return 0
	}
	return cmp.Compare(a.Value, b.Value)
}

// CompareYear orders registration years numerically; 0 (unknown) is lowest.
func CompareYear(a, b uint) int {
	return cmp.Compare(a, b)
}
