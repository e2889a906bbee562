// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/carsearch/internal/httputil"
	"github.com/pdiddy/carsearch/pkg/types"
)

// carzoneSearchBase is the carzone.ie stock search endpoint. Declared as a
// var so tests can substitute an httptest server.
var carzoneSearchBase = "https://www.carzone.ie/rest/1.0/Car/stock"

// carzoneListingBase is the root of listing detail URLs.
const carzoneListingBase = "https://www.carzone.ie/used-cars"

const carzonePageSize = 30

// CarzoneSource queries carzone.ie. Pages are numbered from 1 and the
// response reports totalPages. A nil Client uses the default timeout and
// User-Agent.
type CarzoneSource struct {
	Client *httputil.Client
}

// Name returns the source identifier.
func (s *CarzoneSource) Name() string { return "carzone_ie" }

// Search fetches pages 1..totalPages and flattens every result group.
func (s *CarzoneSource) Search(ctx context.Context, criteria types.SearchCriteria) ([]types.Listing, error) {
	client := clientOrDefault(s.Client)
	var ads []carzoneAd
	for page := 1; ; page++ {
		var resp carzoneResponse
		if err := client.GetJSON(ctx, carzoneSearchBase, carzoneParams(criteria, page), &resp); err != nil {
			return nil, newSearchError(s.Name(), page, err)
		}
		for _, group := range resp.Results {
			ads = append(ads, group.Items...)
		}
		if page >= resp.TotalPages {
			break
		}
	}

	listings := make([]types.Listing, 0, len(ads))
	for _, ad := range ads {
		listings = append(listings, ad.listing(s.Name()))
	}
	return listings, nil
}

// carzoneParams builds the query string for one page. Filters are only sent
// when set; their values are passed through untouched.
func carzoneParams(c types.SearchCriteria, page int) url.Values {
	params := url.Values{}
	optional := []struct{ key, value string }{
		{"make", c.Make},
		{"model", c.Model},
		{"minPrice", c.MinPrice},
		{"maxPrice", c.MaxPrice},
		{"minYear", c.MinYear},
		{"maxYear", c.MaxYear},
		{"minMileage", c.MinMileage},
		{"maxMileage", c.MaxMileage},
	}
	for _, o := range optional {
		if o.value != "" {
			params.Set(o.key, o.value)
		}
	}
	params.Set("showPoa", "false")
	params.Set("page", strconv.Itoa(page))
	params.Set("size", strconv.Itoa(carzonePageSize))
	return params
}

func (ad carzoneAd) listing(source string) types.Listing {
	sum := ad.Summary
	makeName := sum.SearchDetailSummary.MMV.CleanMake
	modelName := sum.SearchDetailSummary.MMV.CleanModel

	var year uint
	if y, ok := carzoneNumber(sum.Vehicle.RegistrationYear); ok && y <= math.MaxUint16 {
		year = uint(y)
	}

	return types.Listing{
		Source:  source,
		Make:    makeName,
		Model:   modelName,
		Mileage: carzoneMileage(sum.Vehicle.Mileage),
		Year:    year,
		Price:   carzonePrice(sum.PriceDetail),
		URL: fmt.Sprintf("%s/%s/%s/fpa/%s", carzoneListingBase,
			url.PathEscape(makeName), url.PathEscape(modelName), sum.PublicReference),
	}
}

// carzonePrice prefers the euro price, then sterling. An amount that is not
// a non-negative whole number counts as absent.
func carzonePrice(p carzonePriceDetail) types.Price {
	if n, ok := carzoneNumber(p.EuroPrice); ok {
		return types.EurPrice(n)
	}
	if n, ok := carzoneNumber(p.GBPPrice); ok {
		return types.GbpPrice(n)
	}
	return types.UnknownPrice()
}

func carzoneMileage(raw json.RawMessage) types.Mileage {
	var m carzoneVehicleMileage
	if len(raw) == 0 || json.Unmarshal(raw, &m) != nil {
		return types.UnknownMileage()
	}
	n, ok := carzoneNumber(m.MileageKm)
	if !ok {
		return types.UnknownMileage()
	}
	return types.Km(n)
}

// carzoneNumber reads a non-negative integer that may arrive as a JSON
// number or a quoted string. Absent, null, fractional and negative values
// report false.
func carzoneNumber(raw json.RawMessage) (int, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	text := string(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		text = strings.TrimSpace(s)
	}
	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// carzone.ie API JSON structures.
type carzoneResponse struct {
	TotalPages int                  `json:"totalPages"`
	Results    []carzoneResultGroup `json:"results"`
}

type carzoneResultGroup struct {
	Items []carzoneAd `json:"items"`
}

type carzoneAd struct {
	Summary carzoneSummary `json:"summary"`
}

type carzoneSummary struct {
	PublicReference     string                     `json:"publicReference"`
	PriceDetail         carzonePriceDetail         `json:"priceDetail"`
	Vehicle             carzoneVehicle             `json:"vehicle"`
	SearchDetailSummary carzoneSearchDetailSummary `json:"searchDetailSummary"`
}

// Numeric fields stay raw so one malformed value degrades to unknown
// instead of failing the whole page.
type carzonePriceDetail struct {
	EuroPrice json.RawMessage `json:"euroPrice"`
	GBPPrice  json.RawMessage `json:"gbpPrice"`
}

type carzoneVehicle struct {
	Mileage          json.RawMessage `json:"mileage"`
	RegistrationYear json.RawMessage `json:"registrationYear"`
}

type carzoneVehicleMileage struct {
	MileageKm json.RawMessage `json:"mileageKm"`
}

type carzoneSearchDetailSummary struct {
	MMV carzoneMakeModel `json:"mmv"`
}

type carzoneMakeModel struct {
	CleanMake  string `json:"cleanMake"`
	CleanModel string `json:"cleanModel"`
}
