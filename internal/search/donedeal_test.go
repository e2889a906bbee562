// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/carsearch/internal/httputil"
	"github.com/pdiddy/carsearch/pkg/types"
)

const sampleDoneDealJSON = `{
  "ads": [
    {
      "currency": "EUR",
      "price": "14,950",
      "friendlyUrl": "https://www.donedeal.ie/cars-for-sale/skoda-octavia/1",
      "displayAttributes": [
        {"name": "make", "value": "Skoda"},
        {"name": "model", "value": "Octavia"},
        {"name": "year", "value": "2018"},
        {"name": "mileage", "value": "98,000 km"}
      ]
    },
    {
      "currency": "GBP",
      "price": "7,000",
      "friendlyUrl": "https://www.donedeal.ie/cars-for-sale/ford-focus/2",
      "displayAttributes": [
        {"name": "make", "value": "Ford"},
        {"name": "year", "value": "around 2012"},
        {"name": "mileage", "value": "60,000 mi"}
      ]
    },
    {
      "currency": "JPY",
      "price": null,
      "friendlyUrl": "https://www.donedeal.ie/cars-for-sale/x/3",
      "displayAttributes": []
    }
  ],
  "paging": {"nextFrom": 0}
}`

func withDoneDealServer(t *testing.T, h http.HandlerFunc) *DoneDealSource {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	old := doneDealSearchBase
	doneDealSearchBase = ts.URL
	t.Cleanup(func() { doneDealSearchBase = old })

	return &DoneDealSource{Client: &httputil.Client{HTTP: ts.Client()}}
}

func decodeDoneDealBody(t *testing.T, r *http.Request) doneDealRequestBody {
	t.Helper()
	data, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	var body doneDealRequestBody
	require.NoError(t, json.Unmarshal(data, &body))
	return body
}

func TestDoneDealParsesAds(t *testing.T) {
	src := withDoneDealServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		fmt.Fprint(w, sampleDoneDealJSON)
	})

	listings, err := src.Search(context.Background(), types.SearchCriteria{Make: "Skoda"})
	require.NoError(t, err)
	require.Len(t, listings, 3)

	assert.Equal(t, types.Listing{
		Source:  "donedeal_ie",
		Make:    "Skoda",
		Model:   "Octavia",
		Mileage: types.Km(98000),
		Year:    2018,
		Price:   types.EurPrice(14950),
		URL:     "https://www.donedeal.ie/cars-for-sale/skoda-octavia/1",
	}, listings[0])

	assert.Equal(t, "Ford", listings[1].Make)
	assert.Equal(t, notAvailable, listings[1].Model)
	assert.Equal(t, types.GbpPrice(7000), listings[1].Price)
	assert.Equal(t, types.Mi(60000), listings[1].Mileage)
	assert.Zero(t, listings[1].Year)

	assert.Equal(t, notAvailable, listings[2].Make)
	assert.Equal(t, types.UnknownPrice(), listings[2].Price)
	assert.Equal(t, types.UnknownMileage(), listings[2].Mileage)
}

func TestDoneDealNilClientUsesDefault(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		fmt.Fprint(w, sampleDoneDealJSON)
	}))
	t.Cleanup(ts.Close)

	old := doneDealSearchBase
	doneDealSearchBase = ts.URL
	t.Cleanup(func() { doneDealSearchBase = old })

	listings, err := (&DoneDealSource{}).Search(context.Background(), types.SearchCriteria{})
	require.NoError(t, err)
	assert.Len(t, listings, 3)
}

func TestDoneDealFollowsNextFrom(t *testing.T) {
	var froms []int
	src := withDoneDealServer(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeDoneDealBody(t, r)
		froms = append(froms, body.Paging.From)
		next := 0
		if body.Paging.From < 80 {
			next = body.Paging.From + doneDealPageSize
		}
		fmt.Fprintf(w, `{"ads": [{"currency": "EUR", "price": "%d", "displayAttributes": []}], "paging": {"nextFrom": %d}}`,
			body.Paging.From, next)
	})

	listings, err := src.Search(context.Background(), types.SearchCriteria{})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 40, 80}, froms)
	require.Len(t, listings, 3)
	assert.Equal(t, types.EurPrice(40), listings[1].Price)
}

func TestDoneDealRequestBody(t *testing.T) {
	var body doneDealRequestBody
	var raw map[string]any
	src := withDoneDealServer(t, func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &body))
		require.NoError(t, json.Unmarshal(data, &raw))
		fmt.Fprint(w, `{"ads": [], "paging": {"nextFrom": 0}}`)
	})

	_, err := src.Search(context.Background(), types.SearchCriteria{
		Make: "Skoda", Model: "Fabia", MinYear: "2012", MaxPrice: "9000",
	})
	require.NoError(t, err)

	assert.Equal(t, []doneDealMakeModel{{Make: "Skoda", Model: "Fabia"}}, body.MakeModelFilters)
	assert.Equal(t, doneDealPageSize, body.Paging.PageSize)
	assert.Equal(t, []string{"cars"}, body.Sections)
	assert.Equal(t, []any{}, raw["filters"])

	require.Len(t, body.Ranges, 2, "mileage range omitted when unbounded")
	assert.Equal(t, "year", body.Ranges[0].Name)
	require.NotNil(t, body.Ranges[0].From)
	assert.Equal(t, "2012", *body.Ranges[0].From)
	assert.Nil(t, body.Ranges[0].To)
	assert.Equal(t, "price", body.Ranges[1].Name)
	assert.Nil(t, body.Ranges[1].From)
	assert.Equal(t, "9000", *body.Ranges[1].To)

	// Unset bounds are sent as explicit nulls.
	ranges := raw["ranges"].([]any)
	year := ranges[0].(map[string]any)
	v, present := year["to"]
	assert.True(t, present)
	assert.Nil(t, v)
}

func TestDoneDealNoRangesWhenUnbounded(t *testing.T) {
	assert.Empty(t, doneDealRanges(types.SearchCriteria{Make: "Audi"}))
	assert.NotNil(t, doneDealRanges(types.SearchCriteria{}))
}

func TestDoneDealTransportFailureOnLaterPage(t *testing.T) {
	src := withDoneDealServer(t, func(w http.ResponseWriter, r *http.Request) {
		if decodeDoneDealBody(t, r).Paging.From > 0 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"ads": [{"currency": "EUR", "price": "1"}], "paging": {"nextFrom": 40}}`)
	})

	listings, err := src.Search(context.Background(), types.SearchCriteria{})
	assert.Nil(t, listings)

	var se *SearchError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, TransportFailure, se.Kind)
	assert.Equal(t, 2, se.Page)

	var te *httputil.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusServiceUnavailable, te.StatusCode)
}

func TestParseDoneDealPrice(t *testing.T) {
	s := func(v string) *string { return &v }
	tests := []struct {
		name     string
		price    *string
		currency string
		want     types.Price
	}{
		{"euro with separator", s("12,500"), "EUR", types.EurPrice(12500)},
		{"sterling", s("800"), "GBP", types.GbpPrice(800)},
		{"dollar", s("3,000"), "USD", types.UsdPrice(3000)},
		{"missing", nil, "EUR", types.UnknownPrice()},
		{"unparseable", s("POA"), "EUR", types.UnknownPrice()},
		{"unknown currency", s("100"), "CHF", types.UnknownPrice()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseDoneDealPrice(tt.price, tt.currency))
		})
	}
}

func TestParseDoneDealMileage(t *testing.T) {
	tests := []struct {
		in   string
		want types.Mileage
	}{
		{"120,000 km", types.Km(120000)},
		{"80,000 mi", types.Mi(80000)},
		{"", types.UnknownMileage()},
		{"lots", types.UnknownMileage()},
		{"10 furlongs", types.UnknownMileage()},
		{"ten km", types.UnknownMileage()},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseDoneDealMileage(tt.in))
		})
	}
}

func TestParseYear(t *testing.T) {
	assert.Equal(t, uint(2019), parseYear("2019"))
	assert.Equal(t, uint(2019), parseYear(" 2019 "))
	assert.Zero(t, parseYear("2019/20"))
	assert.Zero(t, parseYear("-1"))
	assert.Zero(t, parseYear(""))
}
