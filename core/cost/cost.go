package cost

import (
	"fmt"

	"github.com/leofalp/polyprompt/providers/ai"
)

// ModelCost is the pricing of one model in USD per million tokens.
type ModelCost struct {
	InputCostPerMillion  float64 `json:"input_cost_per_million" yaml:"input"`
	OutputCostPerMillion float64 `json:"output_cost_per_million" yaml:"output"`

	// CachedInputCostPerMillion applies to prompt-cache hits when a provider
	// reports them separately (optional).
	CachedInputCostPerMillion float64 `json:"cached_input_cost_per_million,omitempty" yaml:"cached_input,omitempty"`
}

// CalculateInputCost returns the cost of tokens input tokens.
func (mc ModelCost) CalculateInputCost(tokens int) float64 {
	return (float64(tokens) / 1_000_000.0) * mc.InputCostPerMillion
}

// CalculateOutputCost returns the cost of tokens output tokens.
func (mc ModelCost) CalculateOutputCost(tokens int) float64 {
	return (float64(tokens) / 1_000_000.0) * mc.OutputCostPerMillion
}

// CalculateTotalCost returns the cost of a usage record.
func (mc ModelCost) CalculateTotalCost(usage ai.Usage) float64 {
	return mc.CalculateInputCost(max(usage.InputTokens, 0)) + mc.CalculateOutputCost(max(usage.OutputTokens, 0))
}

func (mc ModelCost) Validate() error {
	if mc.InputCostPerMillion < 0 || mc.OutputCostPerMillion < 0 || mc.CachedInputCostPerMillion < 0 {
		return fmt.Errorf("negative price: %s", mc)
	}
	return nil
}

func (mc ModelCost) String() string {
	return fmt.Sprintf("Input: $%.6f/M, Output: $%.6f/M",
		mc.InputCostPerMillion, mc.OutputCostPerMillion)
}

// Pricer answers price lookups; nil means the model's price is unknown.
type Pricer interface {
	PriceFor(model string) *ModelCost
}

// Compute returns the cost of usage under price, or nil when price is nil.
func Compute(price *ModelCost, usage ai.Usage) *float64 {
	if price == nil {
		return nil
	}
	total := price.CalculateTotalCost(usage)
	return &total
}
