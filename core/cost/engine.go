package cost

import (
	"io"
	"maps"
	"regexp"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/leofalp/polyprompt/providers/ai"
)

// PriceSource is a pluggable price table consulted between overrides and the
// built-in table.
type PriceSource interface {
	Price(model string) (ModelCost, bool)
}

// Table is a static PriceSource keyed by normalized model id.
type Table map[string]ModelCost

func (t Table) Price(model string) (ModelCost, bool) {
	price, ok := t[model]
	return price, ok
}

// ReadTable decodes a YAML price table of the form
//
//	gpt-4o-mini: {input: 0.15, output: 0.60}
func ReadTable(r io.Reader) (Table, error) {
	raw := map[string]ModelCost{}
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && err != io.EOF {
		return nil, err
	}
	table := make(Table, len(raw))
	for model, price := range raw {
		if err := price.Validate(); err != nil {
			return nil, err
		}
		table[NormalizeModel(model)] = price
	}
	return table, nil
}

var _ Pricer = (*Engine)(nil)

// Engine is the layered price lookup. It is safe for concurrent use.
type Engine struct {
	mu        sync.RWMutex
	overrides map[string]ModelCost
	sources   []PriceSource
	builtin   map[string]ModelCost
}

// Option configures an Engine.
type Option func(*Engine)

// WithOverrides sets explicit prices that win over every other layer.
func WithOverrides(overrides map[string]ModelCost) Option {
	return func(e *Engine) {
		for model, price := range overrides {
			e.overrides[NormalizeModel(model)] = price
		}
	}
}

// WithSource appends a price source; sources are consulted in order.
func WithSource(source PriceSource) Option {
	return func(e *Engine) {
		e.sources = append(e.sources, source)
	}
}

// WithoutBuiltin drops the built-in table, leaving only overrides and sources.
func WithoutBuiltin() Option {
	return func(e *Engine) {
		e.builtin = nil
	}
}

func NewEngine(opts ...Option) *Engine {
	engine := &Engine{
		overrides: make(map[string]ModelCost),
		builtin:   builtinPrices,
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// SetOverride adds or replaces an explicit price.
func (e *Engine) SetOverride(model string, price ModelCost) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.overrides[NormalizeModel(model)] = price
}

// PriceFor returns the price of model from the first layer that knows it, or
// nil when none does.
func (e *Engine) PriceFor(model string) *ModelCost {
	candidates := candidateNames(model)
	if len(candidates) == 0 {
		return nil
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, name := range candidates {
		if price, ok := e.overrides[name]; ok {
			return &price
		}
	}
	for _, source := range e.sources {
		for _, name := range candidates {
			if price, ok := source.Price(name); ok {
				return &price
			}
		}
	}
	for _, name := range candidates {
		if price, ok := e.builtin[name]; ok {
			return &price
		}
	}
	return nil
}

// Compute returns the cost of usage on model, or nil when the price is unknown.
func (e *Engine) Compute(model string, usage ai.Usage) *float64 {
	return Compute(e.PriceFor(model), usage)
}

// PricedModel is one row of the engine's known prices.
type PricedModel struct {
	Model    string    `json:"model"`
	Price    ModelCost `json:"price"`
	Override bool      `json:"override,omitempty"`
}

// Known lists the override and built-in prices sorted by model id.
// Sources are not enumerable and are not included.
func (e *Engine) Known() []PricedModel {
	e.mu.RLock()
	defer e.mu.RUnlock()

	rows := make(map[string]PricedModel, len(e.builtin)+len(e.overrides))
	for model, price := range e.builtin {
		rows[model] = PricedModel{Model: model, Price: price}
	}
	for model, price := range e.overrides {
		rows[model] = PricedModel{Model: model, Price: price, Override: true}
	}
	out := make([]PricedModel, 0, len(rows))
	for _, model := range slices.Sorted(maps.Keys(rows)) {
		out = append(out, rows[model])
	}
	return out
}

var versionSuffix = regexp.MustCompile(`-(\d{4}-\d{2}-\d{2}|\d{8}|\d{3}|latest|exp(-\d{4})?|preview(-\d{2}-\d{2})?)$`)

// NormalizeModel lowercases model and strips provider and resource prefixes
// ("openai/", "models/").
func NormalizeModel(model string) string {
	model = strings.ToLower(strings.TrimSpace(model))
	if index := strings.LastIndex(model, "/"); index >= 0 {
		model = model[index+1:]
	}
	return model
}

// candidateNames returns the normalized id followed by its versionless base,
// e.g. gpt-4o-2024-08-06 then gpt-4o.
func candidateNames(model string) []string {
	name := NormalizeModel(model)
	if name == "" {
		return nil
	}
	names := []string{name}
	for versionSuffix.MatchString(name) {
		name = versionSuffix.ReplaceAllString(name, "")
		names = append(names, name)
	}
	return names
}
