package emit

import (
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/carsearch/pkg/types"
)

// YAMLEmitter writes listings as a YAML sequence.
type YAMLEmitter struct{}

// yamlListing flattens the tagged price and mileage into scalar fields so
// the document reads naturally. Unknown values are omitted.
type yamlListing struct {
	Source      string `yaml:"source"`
	Make        string `yaml:"make"`
	Model       string `yaml:"model"`
	Year        uint   `yaml:"year,omitempty"`
	Mileage     *int   `yaml:"mileage,omitempty"`
	MileageUnit string `yaml:"mileage_unit,omitempty"`
	Price       *int   `yaml:"price,omitempty"`
	Currency    string `yaml:"currency,omitempty"`
	URL         string `yaml:"url"`
}

// Emit writes a sequence, "[]" for no listings.
func (YAMLEmitter) Emit(w io.Writer, listings []types.Listing) error {
	items := make([]yamlListing, len(listings))
	for i, l := range listings {
		items[i] = toYAMLListing(l)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(items); err != nil {
		return err
	}
	return enc.Close()
}

func toYAMLListing(l types.Listing) yamlListing {
	item := yamlListing{
		Source: l.Source,
		Make:   l.Make,
		Model:  l.Model,
		Year:   l.Year,
		URL:    l.URL,
	}
	if l.Mileage.Known() {
		v := l.Mileage.Value
		item.Mileage = &v
		item.MileageUnit = l.Mileage.Unit.String()
	}
	if l.Price.Known() {
		v := l.Price.Amount
		item.Price = &v
		item.Currency = l.Price.Currency.String()
	}
	return item
}
