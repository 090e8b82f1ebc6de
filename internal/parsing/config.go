package parsing

import (
	"encoding/json"
	"fmt"
	"os"
)

// Keywords lists the substrings that mark a row as belonging to a totals bucket.
// Matching is done on normalized text, so entries may carry accents or upper case.
type Keywords struct {
	Total    []string `json:"total"`
	Subtotal []string `json:"subtotal"`
	Tax      []string `json:"tax"`
	Paid     []string `json:"paid"`
	Change   []string `json:"change"`
	Noise    []string `json:"noise"`
}

// CurrencyMarker maps the spellings found on receipts to a canonical currency code
type CurrencyMarker struct {
	Code    string   `json:"code"`
	Aliases []string `json:"aliases"`
}

// Geometry holds the clustering heuristics. These were tuned on Moroccan
// supermarket receipts and are expected to be adjusted per corpus.
type Geometry struct {
	FallbackHeight         float64 `json:"fallbackHeight"`
	RowThresholdFactor     float64 `json:"rowThresholdFactor"`
	MinRowThreshold        float64 `json:"minRowThreshold"`
	ClusterThresholdFactor float64 `json:"clusterThresholdFactor"`
	MinClusterThreshold    float64 `json:"minClusterThreshold"`
	ClusterWindow          int     `json:"clusterWindow"`
}

// Config controls a Parser
type Config struct {
	DefaultCurrency   string           `json:"defaultCurrency"`
	MinConfidence     float64          `json:"minConfidence"`
	Keywords          Keywords         `json:"keywords"`
	ItemsTotalPattern string           `json:"itemsTotalPattern"`
	Currencies        []CurrencyMarker `json:"currencies"`
	Geometry          Geometry         `json:"geometry"`
}

// DefaultConfig returns a fresh configuration for French/Arabic receipts in Morocco
func DefaultConfig() Config {
	return Config{
		DefaultCurrency: "MAD",
		MinConfidence:   0.5,
		Keywords: Keywords{
			Total:    []string{"total", "somme", "montant"},
			Subtotal: []string{"subtotal", "sous-total", "hors taxe", "ht"},
			Tax:      []string{"tax", "tva", "vat", "tps", "tvq", "total des taxes"},
			Paid:     []string{"especes", "espèces", "cash", "paid", "paiement", "amount tendered"},
			Change:   []string{"rendu", "change", "monnaie", "change due"},
			Noise:    []string{"commande", "items", "produits", "products"},
		},
		ItemsTotalPattern: `(?i)total\s*items?`,
		Currencies: []CurrencyMarker{
			{Code: "MAD", Aliases: []string{"mad", "dh", "dhs", "د.م", "دم", "درهم"}},
		},
		Geometry: Geometry{
			FallbackHeight:         16,
			RowThresholdFactor:     1.1,
			MinRowThreshold:        8,
			ClusterThresholdFactor: 1.4,
			MinClusterThreshold:    10,
			ClusterWindow:          3,
		},
	}
}

// LoadConfig reads a JSON locale file and overlays it on DefaultConfig.
// Fields absent from the file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	var overlay Config
	if err := json.Unmarshal(data, &overlay); err != nil {
		return cfg, fmt.Errorf("unmarshaling config: %w", err)
	}

	if overlay.DefaultCurrency != "" {
		cfg.DefaultCurrency = overlay.DefaultCurrency
	}
	if overlay.MinConfidence != 0 {
		cfg.MinConfidence = overlay.MinConfidence
	}
	if overlay.ItemsTotalPattern != "" {
		cfg.ItemsTotalPattern = overlay.ItemsTotalPattern
	}
	if len(overlay.Currencies) > 0 {
		cfg.Currencies = overlay.Currencies
	}
	mergeList(&cfg.Keywords.Total, overlay.Keywords.Total)
	mergeList(&cfg.Keywords.Subtotal, overlay.Keywords.Subtotal)
	mergeList(&cfg.Keywords.Tax, overlay.Keywords.Tax)
	mergeList(&cfg.Keywords.Paid, overlay.Keywords.Paid)
	mergeList(&cfg.Keywords.Change, overlay.Keywords.Change)
	mergeList(&cfg.Keywords.Noise, overlay.Keywords.Noise)

	g := overlay.Geometry
	if g.FallbackHeight > 0 {
		cfg.Geometry.FallbackHeight = g.FallbackHeight
	}
	if g.RowThresholdFactor > 0 {
		cfg.Geometry.RowThresholdFactor = g.RowThresholdFactor
	}
	if g.MinRowThreshold > 0 {
		cfg.Geometry.MinRowThreshold = g.MinRowThreshold
	}
	if g.ClusterThresholdFactor > 0 {
		cfg.Geometry.ClusterThresholdFactor = g.ClusterThresholdFactor
	}
	if g.MinClusterThreshold > 0 {
		cfg.Geometry.MinClusterThreshold = g.MinClusterThreshold
	}
	if g.ClusterWindow > 0 {
		cfg.Geometry.ClusterWindow = g.ClusterWindow
	}

	return cfg, nil
}

// mergeList replaces dst when the overlay provides a list
func mergeList(dst *[]string, overlay []string) {
	if len(overlay) > 0 {
		*dst = overlay
	}
}

func (c Config) validate() error {
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("min confidence must be within [0, 1], got %v", c.MinConfidence)
	}
	if c.DefaultCurrency == "" {
		return fmt.Errorf("default currency is required")
	}
	if c.Geometry.ClusterWindow < 0 {
		return fmt.Errorf("cluster window must not be negative, got %d", c.Geometry.ClusterWindow)
	}
	return nil
}
