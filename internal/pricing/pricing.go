// Package pricing computes the monetary cost of provider calls from
// token counts and a per-model rate table.
package pricing

import "github.com/tercet-ai/tercet/internal/config"

// Table holds USD rates per million tokens, keyed by provider and model.
type Table struct {
	rates map[string]map[string]config.Price
}

// NewTable builds a pricing table from configuration.
func NewTable(cfg map[string]config.ModelPricing) *Table {
	rates := make(map[string]map[string]config.Price, len(cfg))
	for provider, models := range cfg {
		rates[provider] = make(map[string]config.Price, len(models))
		for model, price := range models {
			rates[provider][model] = price
		}
	}
	return &Table{rates: rates}
}

// Cost returns the cost of a call in USD. An unpriced provider/model
// costs zero: totals stay exact sums, and the doctor command reports
// missing prices rather than the engine guessing a rate.
func (t *Table) Cost(provider, model string, promptTokens, completionTokens int) float64 {
	price, ok := t.lookup(provider, model)
	if !ok {
		return 0
	}
	return float64(promptTokens)/1e6*price.InputPerMTok +
		float64(completionTokens)/1e6*price.OutputPerMTok
}

// Known reports whether a provider/model pair has a configured rate.
func (t *Table) Known(provider, model string) bool {
	_, ok := t.lookup(provider, model)
	return ok
}

func (t *Table) lookup(provider, model string) (config.Price, bool) {
	models, ok := t.rates[provider]
	if !ok {
		return config.Price{}, false
	}
	price, ok := models[model]
	return price, ok
}
