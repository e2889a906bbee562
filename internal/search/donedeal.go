// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"strconv"
	"strings"

	"github.com/pdiddy/carsearch/internal/httputil"
	"github.com/pdiddy/carsearch/pkg/types"
)

// doneDealSearchBase is the donedeal.ie search endpoint. Declared as a var
// so tests can substitute an httptest server.
var doneDealSearchBase = "https://www.donedeal.ie/ddapi/v1/search"

const doneDealPageSize = 40

// notAvailable fills make/model when an ad lacks the display attribute.
const notAvailable = "N/A"

// DoneDealSource queries donedeal.ie. Pagination is offset based: each
// response carries paging.nextFrom, and 0 means there are no more pages.
// A nil Client uses the default timeout and User-Agent.
type DoneDealSource struct {
	Client *httputil.Client
}

// Name returns the source identifier.
func (s *DoneDealSource) Name() string { return "donedeal_ie" }

// Search posts one request per page until nextFrom is 0.
func (s *DoneDealSource) Search(ctx context.Context, criteria types.SearchCriteria) ([]types.Listing, error) {
	client := clientOrDefault(s.Client)
	var ads []doneDealAd
	from := 0
	for page := 1; ; page++ {
		var resp doneDealResponse
		if err := client.PostJSON(ctx, doneDealSearchBase, doneDealRequest(criteria, from), &resp); err != nil {
			return nil, newSearchError(s.Name(), page, err)
		}
		ads = append(ads, resp.Ads...)
		if resp.Paging.NextFrom <= 0 {
			break
		}
		from = resp.Paging.NextFrom
	}

	listings := make([]types.Listing, 0, len(ads))
	for _, ad := range ads {
		listings = append(listings, ad.listing(s.Name()))
	}
	return listings, nil
}

// doneDealRequest builds the request body for the page starting at from.
func doneDealRequest(c types.SearchCriteria, from int) doneDealRequestBody {
	return doneDealRequestBody{
		MakeModelFilters: []doneDealMakeModel{{Make: c.Make, Model: c.Model}},
		Paging:           doneDealPaging{From: from, PageSize: doneDealPageSize},
		Filters:          []doneDealFilter{},
		Ranges:           doneDealRanges(c),
		Sections:         []string{"cars"},
	}
}

// doneDealRanges returns one range per bounded attribute. A range is only
// present when at least one of its bounds is set.
func doneDealRanges(c types.SearchCriteria) []doneDealRange {
	ranges := []doneDealRange{}
	add := func(name, lo, hi string) {
		if lo == "" && hi == "" {
			return
		}
		ranges = append(ranges, doneDealRange{Name: name, From: optional(lo), To: optional(hi)})
	}
	add("year", c.MinYear, c.MaxYear)
	add("mileage", c.MinMileage, c.MaxMileage)
	add("price", c.MinPrice, c.MaxPrice)
	return ranges
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (ad doneDealAd) listing(source string) types.Listing {
	return types.Listing{
		Source:  source,
		Make:    ad.attr("make", notAvailable),
		Model:   ad.attr("model", notAvailable),
		Mileage: parseDoneDealMileage(ad.attr("mileage", "")),
		Year:    parseYear(ad.attr("year", "")),
		Price:   parseDoneDealPrice(ad.Price, ad.Currency),
		URL:     ad.FriendlyURL,
	}
}

func (ad doneDealAd) attr(name, fallback string) string {
	for _, a := range ad.DisplayAttributes {
		if a.Name == name {
			return a.Value
		}
	}
	return fallback
}

// parseDoneDealPrice parses "12,500" tagged by currency. A missing or
// unparsable amount, or a currency other than EUR/GBP/USD, is unknown.
func parseDoneDealPrice(price *string, currency string) types.Price {
	if price == nil {
		return types.UnknownPrice()
	}
	amount, err := strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(*price), ",", ""))
	if err != nil {
		return types.UnknownPrice()
	}
	cur, ok := types.ParseCurrency(currency)
	if !ok {
		return types.UnknownPrice()
	}
	return types.Price{Currency: cur, Amount: amount}
}

// parseDoneDealMileage parses "120,000 km" or "80,000 mi".
func parseDoneDealMileage(s string) types.Mileage {
	fields := strings.Fields(strings.ReplaceAll(s, ",", ""))
	if len(fields) != 2 {
		return types.UnknownMileage()
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return types.UnknownMileage()
	}
	unit, ok := types.ParseDistanceUnit(fields[1])
	if !ok {
		return types.UnknownMileage()
	}
	return types.Mileage{Unit: unit, Value: n}
}

// parseYear returns 0 for anything that is not a plain year.
func parseYear(s string) uint {
	y, err := strconv.ParseUint(strings.TrimSpace(s), 10, 16)
	if err != nil {
		return 0
	}
	return uint(y)
}

// donedeal.ie API JSON structures.
type doneDealRequestBody struct {
	MakeModelFilters []doneDealMakeModel `json:"makeModelFilters"`
	Paging           doneDealPaging      `json:"paging"`
	Filters          []doneDealFilter    `json:"filters"`
	Ranges           []doneDealRange     `json:"ranges"`
	Sections         []string            `json:"sections"`
}

type doneDealMakeModel struct {
	Make  string `json:"make"`
	Model string `json:"model"`
}

type doneDealPaging struct {
	From     int `json:"from"`
	PageSize int `json:"pageSize"`
}

type doneDealFilter struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

type doneDealRange struct {
	Name string  `json:"name"`
	From *string `json:"from"`
	To   *string `json:"to"`
}

type doneDealResponse struct {
	Ads    []doneDealAd           `json:"ads"`
	Paging doneDealPagingResponse `json:"paging"`
}

type doneDealPagingResponse struct {
	NextFrom int `json:"nextFrom"`
}

type doneDealAd struct {
	Currency          string                     `json:"currency"`
	Price             *string                    `json:"price"`
	DisplayAttributes []doneDealDisplayAttribute `json:"displayAttributes"`
	FriendlyURL       string                     `json:"friendlyUrl"`
}

type doneDealDisplayAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
