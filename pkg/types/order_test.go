package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComparePrice(t *testing.T) {
	tests := []struct {
		name string
		a, b Price
		want int
	}{
		{"unknown equals unknown", UnknownPrice(), UnknownPrice(), 0},
		{"unknown before EUR", UnknownPrice(), EurPrice(1), -1},
		{"unknown before GBP", UnknownPrice(), GbpPrice(0), -1},
		{"EUR after unknown", EurPrice(0), UnknownPrice(), 1},
		{"EUR by amount", EurPrice(21), EurPrice(100), -1},
		{"EUR equal", EurPrice(100), EurPrice(100), 0},
		{"EUR before USD regardless of amount", EurPrice(90000), UsdPrice(1), -1},
		{"USD before GBP", UsdPrice(5), GbpPrice(1), -1},
		{"GBP after EUR", GbpPrice(1), EurPrice(2), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComparePrice(tt.a, tt.b))
		})
	}
}

func TestCompareMileage(t *testing.T) {
	tests := []struct {
		name string
		a, b Mileage
		want int
	}{
		{"unknown equals unknown", UnknownMileage(), UnknownMileage(), 0},
		{"unknown before km", UnknownMileage(), Km(0), -1},
		{"unknown before mi", UnknownMileage(), Mi(10), -1},
		{"km by value", Km(1000), Km(100), 1},
		{"km before mi", Km(500000), Mi(1), -1},
		{"mi equal", Mi(7), Mi(7), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareMileage(tt.a, tt.b))
		})
	}
}

func TestCompareYear(t *testing.T) {
	assert.Equal(t, -1, CompareYear(0, 1999))
	assert.Equal(t, 1, CompareYear(2022, 2001))
	assert.Equal(t, 0, CompareYear(2001, 2001))
}

func TestPriceAndMileageStrings(t *testing.T) {
	assert.Equal(t, "€12,500", EurPrice(12500).String())
	assert.Equal(t, "£900", GbpPrice(900).String())
	assert.Equal(t, "unknown", UnknownPrice().String())
	assert.Equal(t, "120,000 km", Km(120000).String())
	assert.Equal(t, "80 mi", Mi(80).String())
	assert.Equal(t, "unknown", UnknownMileage().String())
}

func TestListingJSON(t *testing.T) {
	l := Listing{
		Source:  "carzone_ie",
		Make:    "Skoda",
		Model:   "Octavia",
		Mileage: Km(98000),
		Year:    2018,
		Price:   EurPrice(14950),
		URL:     "https://example.test/1",
	}
	data, err := json.Marshal(l)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"source": "carzone_ie",
		"make": "Skoda",
		"model": "Octavia",
		"mileage": {"unit": "km", "value": 98000},
		"year": 2018,
		"price": {"currency": "EUR", "amount": 14950},
		"url": "https://example.test/1"
	}`, string(data))

	var back Listing
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, l, back)
}

func TestUnknownValuesJSON(t *testing.T) {
	data, err := json.Marshal(Listing{Source: "x"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"price":{"currency":"unknown"}`)
	assert.Contains(t, string(data), `"mileage":{"unit":"unknown"}`)
}

func TestCurrencyUnmarshalRejectsGarbage(t *testing.T) {
	var c Currency
	assert.Error(t, c.UnmarshalText([]byte("JPY")))
	require.NoError(t, c.UnmarshalText([]byte("gbp")))
	assert.Equal(t, GBP, c)
}

func TestCriteriaClone(t *testing.T) {
	n := 5
	c := SearchCriteria{Make: "Skoda", Limit: &n}
	cp := c.Clone()
	*cp.Limit = 9
	assert.Equal(t, 5, *c.Limit)
	assert.Equal(t, "Skoda", cp.Make)
	assert.True(t, SearchCriteria{MaxYear: "2020"}.HasYearRange())
	assert.False(t, SearchCriteria{}.HasPriceRange())
}
