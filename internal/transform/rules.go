package transform

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"medallion-demo/internal/domain"
)

// DefaultFallbackRows is the size of the sample kept when a transform degrades.
const DefaultFallbackRows = 100

// Rules parameterise the zone transforms. The zero value is not useful; start
// from DefaultRules and override fields, or load a YAML file with LoadRules.
type Rules struct {
	Bronze       BronzeRules `yaml:"bronze" json:"bronze"`
	Silver       SilverRules `yaml:"silver" json:"silver"`
	Gold         GoldRules   `yaml:"gold" json:"gold"`
	FallbackRows int         `yaml:"fallback_rows" json:"fallback_rows"`

	// Schedules re-run the pipeline on a cron expression. Empty disables scheduling.
	Schedules []domain.PipelineSchedule `yaml:"schedules" json:"schedules,omitempty"`
}

// BronzeRules configure cleaning and validation.
type BronzeRules struct {
	NullKeys        []string `yaml:"null_keys" json:"null_keys"`
	DedupeKeys      []string `yaml:"dedupe_keys" json:"dedupe_keys"`
	PriceColumns    []string `yaml:"price_columns" json:"price_columns"`
	CurrencySymbols []string `yaml:"currency_symbols" json:"currency_symbols"`
	DiscountColumn  string   `yaml:"discount_column" json:"discount_column"`
}

// SilverRules name the inputs of the derived business columns.
type SilverRules struct {
	ActualPrice  string    `yaml:"actual_price" json:"actual_price"`
	SellingPrice string    `yaml:"selling_price" json:"selling_price"`
	Quantity     string    `yaml:"quantity" json:"quantity"`
	Discount     string    `yaml:"discount" json:"discount"`
	Rating       string    `yaml:"rating" json:"rating"`
	RatingBins   []float64 `yaml:"rating_bins" json:"rating_bins"`
	RatingLabels []string  `yaml:"rating_labels" json:"rating_labels"`
}

// GoldRules configure the KPI aggregation. Dimension and Measure are
// required; the other inputs are aggregated only when present.
type GoldRules struct {
	Dimension string `yaml:"dimension" json:"dimension"`
	Measure   string `yaml:"measure" json:"measure"`
	Key       string `yaml:"key" json:"key"`
	Rating    string `yaml:"rating" json:"rating"`
	Discount  string `yaml:"discount" json:"discount"`
	Flag      string `yaml:"flag" json:"flag"`
}

// DefaultRules returns the rules for the Flipkart product dataset.
func DefaultRules() Rules {
	return Rules{
		Bronze: BronzeRules{
			NullKeys:        []string{"pid", "title"},
			DedupeKeys:      []string{"pid"},
			PriceColumns:    []string{"actual_price", "selling_price"},
			CurrencySymbols: []string{"₹", "$", "€", "£"},
			DiscountColumn:  "discount",
		},
		Silver: SilverRules{
			ActualPrice:  "actual_price_clean",
			SellingPrice: "selling_price_clean",
			Quantity:     "quantity",
			Discount:     "discount_pct",
			Rating:       "average_rating",
			RatingBins:   []float64{0, 2, 3, 4, 5},
			RatingLabels: []string{"Poor", "Fair", "Good", "Excellent"},
		},
		Gold: GoldRules{
			Dimension: "category",
			Measure:   "selling_price_clean",
			Key:       "pid",
			Rating:    "average_rating",
			Discount:  "discount_pct_calc",
			Flag:      "out_of_stock",
		},
		FallbackRows: DefaultFallbackRows,
	}
}

// LoadRules reads a YAML rules file. Fields absent from the file keep their
// default values.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules %s: %w", path, err)
	}
	return ParseRules(data)
}

// ParseRules decodes YAML rules over DefaultRules and validates the result.
func ParseRules(data []byte) (Rules, error) {
	rules := DefaultRules()
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("parse rules: %w", err)
	}
	if err := rules.Validate(); err != nil {
		return Rules{}, err
	}
	return rules, nil
}

// Validate checks the rules for internal consistency.
func (r Rules) Validate() error {
	if r.FallbackRows <= 0 {
		return domain.ErrValidation("fallback_rows must be positive, got %d", r.FallbackRows)
	}
	if r.Gold.Dimension == "" || r.Gold.Measure == "" {
		return domain.ErrValidation("gold dimension and measure are required")
	}
	bins := r.Silver.RatingBins
	if len(bins) > 0 {
		if len(bins) < 2 || !slices.IsSorted(bins) || len(slices.Compact(slices.Clone(bins))) != len(bins) {
			return domain.ErrValidation("rating_bins must be at least two strictly increasing edges")
		}
		if len(r.Silver.RatingLabels) != len(bins)-1 {
			return domain.ErrValidation("rating_labels needs %d labels for %d bins, got %d",
				len(bins)-1, len(bins), len(r.Silver.RatingLabels))
		}
	}
	for i, s := range r.Schedules {
		if s.Cron == "" {
			return domain.ErrValidation("schedule %d (%s) has no cron expression", i, s.Name)
		}
	}
	return nil
}
