package ai

import (
	"slices"
	"sort"
)

// ParamKey names one optional generation parameter. Provider descriptors
// declare the keys they accept; anything else is dropped during translation.
type ParamKey string

const (
	ParamTemperature      ParamKey = "temperature"
	ParamMaxTokens        ParamKey = "max_tokens"
	ParamTopP             ParamKey = "top_p"
	ParamTopK             ParamKey = "top_k"
	ParamFrequencyPenalty ParamKey = "frequency_penalty"
	ParamPresencePenalty  ParamKey = "presence_penalty"
	ParamStop             ParamKey = "stop"
	ParamSeed             ParamKey = "seed"
	ParamJSONMode         ParamKey = "json_mode"
	ParamSearch           ParamKey = "search"
	ParamCitations        ParamKey = "citations"
	ParamSearchRecency    ParamKey = "search_recency"
)

// AllParams lists every known key in a stable order.
var AllParams = []ParamKey{
	ParamTemperature,
	ParamMaxTokens,
	ParamTopP,
	ParamTopK,
	ParamFrequencyPenalty,
	ParamPresencePenalty,
	ParamStop,
	ParamSeed,
	ParamJSONMode,
	ParamSearch,
	ParamCitations,
	ParamSearchRecency,
}

// Valid reports whether k is a known parameter key.
func (k ParamKey) Valid() bool {
	return slices.Contains(AllParams, k)
}

// Params is a sparse parameter set: a nil field (or empty Stop) means "not
// set here", letting lower-priority layers supply the value.
type Params struct {
	Temperature      *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty" mapstructure:"temperature"`
	MaxTokens        *int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty" mapstructure:"max_tokens"`
	TopP             *float64 `json:"top_p,omitempty" yaml:"top_p,omitempty" mapstructure:"top_p"`
	TopK             *int     `json:"top_k,omitempty" yaml:"top_k,omitempty" mapstructure:"top_k"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty" yaml:"frequency_penalty,omitempty" mapstructure:"frequency_penalty"`
	PresencePenalty  *float64 `json:"presence_penalty,omitempty" yaml:"presence_penalty,omitempty" mapstructure:"presence_penalty"`
	Stop             []string `json:"stop,omitempty" yaml:"stop,omitempty" mapstructure:"stop"`
	Seed             *int     `json:"seed,omitempty" yaml:"seed,omitempty" mapstructure:"seed"`
	JSONMode         *bool    `json:"json_mode,omitempty" yaml:"json_mode,omitempty" mapstructure:"json_mode"`
	Search           *bool    `json:"search,omitempty" yaml:"search,omitempty" mapstructure:"search"`
	Citations        *bool    `json:"citations,omitempty" yaml:"citations,omitempty" mapstructure:"citations"`
	SearchRecency    *string  `json:"search_recency,omitempty" yaml:"search_recency,omitempty" mapstructure:"search_recency"`
}

// IsZero reports whether no parameter is set.
func (p Params) IsZero() bool {
	return len(p.Keys()) == 0
}

// Has reports whether the given key is set.
func (p Params) Has(key ParamKey) bool {
	switch key {
	case ParamTemperature:
		return p.Temperature != nil
	case ParamMaxTokens:
		return p.MaxTokens != nil
	case ParamTopP:
		return p.TopP != nil
	case ParamTopK:
		return p.TopK != nil
	case ParamFrequencyPenalty:
		return p.FrequencyPenalty != nil
	case ParamPresencePenalty:
		return p.PresencePenalty != nil
	case ParamStop:
		return len(p.Stop) > 0
	case ParamSeed:
		return p.Seed != nil
	case ParamJSONMode:
		return p.JSONMode != nil
	case ParamSearch:
		return p.Search != nil
	case ParamCitations:
		return p.Citations != nil
	case ParamSearchRecency:
		return p.SearchRecency != nil
	}
	return false
}

// Keys returns the set keys in AllParams order.
func (p Params) Keys() []ParamKey {
	var keys []ParamKey
	for _, key := range AllParams {
		if p.Has(key) {
			keys = append(keys, key)
		}
	}
	return keys
}

// Merge returns p with every key set in over replacing the corresponding key
// of p. Keys absent from over keep p's value.
func (p Params) Merge(over Params) Params {
	merged := p
	if over.Temperature != nil {
		merged.Temperature = over.Temperature
	}
	if over.MaxTokens != nil {
		merged.MaxTokens = over.MaxTokens
	}
	if over.TopP != nil {
		merged.TopP = over.TopP
	}
	if over.TopK != nil {
		merged.TopK = over.TopK
	}
	if over.FrequencyPenalty != nil {
		merged.FrequencyPenalty = over.FrequencyPenalty
	}
	if over.PresencePenalty != nil {
		merged.PresencePenalty = over.PresencePenalty
	}
	if len(over.Stop) > 0 {
		merged.Stop = slices.Clone(over.Stop)
	}
	if over.Seed != nil {
		merged.Seed = over.Seed
	}
	if over.JSONMode != nil {
		merged.JSONMode = over.JSONMode
	}
	if over.Search != nil {
		merged.Search = over.Search
	}
	if over.Citations != nil {
		merged.Citations = over.Citations
	}
	if over.SearchRecency != nil {
		merged.SearchRecency = over.SearchRecency
	}
	return merged
}

// Only returns a copy of p keeping just the keys contained in allowed.
func (p Params) Only(allowed ParamSet) Params {
	var kept Params
	for _, key := range p.Keys() {
		if !allowed.Contains(key) {
			continue
		}
		switch key {
		case ParamTemperature:
			kept.Temperature = p.Temperature
		case ParamMaxTokens:
			kept.MaxTokens = p.MaxTokens
		case ParamTopP:
			kept.TopP = p.TopP
		case ParamTopK:
			kept.TopK = p.TopK
		case ParamFrequencyPenalty:
			kept.FrequencyPenalty = p.FrequencyPenalty
		case ParamPresencePenalty:
			kept.PresencePenalty = p.PresencePenalty
		case ParamStop:
			kept.Stop = slices.Clone(p.Stop)
		case ParamSeed:
			kept.Seed = p.Seed
		case ParamJSONMode:
			kept.JSONMode = p.JSONMode
		case ParamSearch:
			kept.Search = p.Search
		case ParamCitations:
			kept.Citations = p.Citations
		case ParamSearchRecency:
			kept.SearchRecency = p.SearchRecency
		}
	}
	return kept
}

// ParamSet is an immutable-by-convention set of parameter keys.
type ParamSet map[ParamKey]struct{}

// NewParamSet builds a set from the given keys.
func NewParamSet(keys ...ParamKey) ParamSet {
	set := make(ParamSet, len(keys))
	for _, key := range keys {
		set[key] = struct{}{}
	}
	return set
}

// Contains reports whether key is in the set.
func (s ParamSet) Contains(key ParamKey) bool {
	_, ok := s[key]
	return ok
}

// Sorted returns the keys in lexical order.
func (s ParamSet) Sorted() []ParamKey {
	keys := make([]ParamKey, 0, len(s))
	for key := range s {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
