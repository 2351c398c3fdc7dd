package main

import (
	"github.com/spf13/cobra"

	"github.com/leofalp/polyprompt/providers/ai"
)

// paramFlags maps generation parameters to flags. Only flags the user set
// become parameters, so provider defaults still apply to the rest.
type paramFlags struct {
	temperature float64
	maxTokens   int
	topP        float64
	topK        int
	frequency   float64
	presence    float64
	seed        int
	stop        []string
	jsonMode    bool
	search      bool
	citations   bool
	recency     string
}

func (p *paramFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Float64Var(&p.temperature, "temperature", 0, "sampling temperature")
	flags.IntVar(&p.maxTokens, "max-tokens", 0, "maximum output tokens")
	flags.Float64Var(&p.topP, "top-p", 0, "nucleus sampling")
	flags.IntVar(&p.topK, "top-k", 0, "top-k sampling")
	flags.Float64Var(&p.frequency, "frequency-penalty", 0, "frequency penalty")
	flags.Float64Var(&p.presence, "presence-penalty", 0, "presence penalty")
	flags.IntVar(&p.seed, "seed", 0, "sampling seed")
	flags.StringSliceVar(&p.stop, "stop", nil, "stop sequences")
	flags.BoolVar(&p.jsonMode, "json-mode", false, "ask for a JSON answer and decode it")
	flags.BoolVar(&p.search, "search", false, "enable provider web search")
	flags.BoolVar(&p.citations, "citations", false, "ask for citations")
	flags.StringVar(&p.recency, "search-recency", "", "search recency filter (day, week, month)")
}

func (p *paramFlags) params(cmd *cobra.Command) ai.Params {
	flags := cmd.Flags()
	var params ai.Params
	if flags.Changed("temperature") {
		params.Temperature = &p.temperature
	}
	if flags.Changed("max-tokens") {
		params.MaxTokens = &p.maxTokens
	}
	if flags.Changed("top-p") {
		params.TopP = &p.topP
	}
	if flags.Changed("top-k") {
		params.TopK = &p.topK
	}
	if flags.Changed("frequency-penalty") {
		params.FrequencyPenalty = &p.frequency
	}
	if flags.Changed("presence-penalty") {
		params.PresencePenalty = &p.presence
	}
	if flags.Changed("seed") {
		params.Seed = &p.seed
	}
	if flags.Changed("stop") {
		params.Stop = p.stop
	}
	if flags.Changed("json-mode") {
		params.JSONMode = &p.jsonMode
	}
	if flags.Changed("search") {
		params.Search = &p.search
	}
	if flags.Changed("citations") {
		params.Citations = &p.citations
	}
	if flags.Changed("search-recency") {
		params.SearchRecency = &p.recency
	}
	return params
}
