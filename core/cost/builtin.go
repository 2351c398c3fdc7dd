package cost

// builtinPrices is the last-resort price table, keyed by normalized base
// model id. USD per million tokens, standard (non-batch, short-context) tier.
var builtinPrices = map[string]ModelCost{
	// OpenAI
	"gpt-4o":       {InputCostPerMillion: 2.50, OutputCostPerMillion: 10.00, CachedInputCostPerMillion: 1.25},
	"gpt-4o-mini":  {InputCostPerMillion: 0.15, OutputCostPerMillion: 0.60, CachedInputCostPerMillion: 0.075},
	"gpt-4.1":      {InputCostPerMillion: 2.00, OutputCostPerMillion: 8.00, CachedInputCostPerMillion: 0.50},
	"gpt-4.1-mini": {InputCostPerMillion: 0.40, OutputCostPerMillion: 1.60, CachedInputCostPerMillion: 0.10},
	"gpt-4.1-nano": {InputCostPerMillion: 0.10, OutputCostPerMillion: 0.40, CachedInputCostPerMillion: 0.025},
	"o3-mini":      {InputCostPerMillion: 1.10, OutputCostPerMillion: 4.40, CachedInputCostPerMillion: 0.55},
	"o4-mini":      {InputCostPerMillion: 1.10, OutputCostPerMillion: 4.40, CachedInputCostPerMillion: 0.275},

	// Anthropic
	"claude-3-haiku":    {InputCostPerMillion: 0.25, OutputCostPerMillion: 1.25},
	"claude-3-5-haiku":  {InputCostPerMillion: 0.80, OutputCostPerMillion: 4.00},
	"claude-3-5-sonnet": {InputCostPerMillion: 3.00, OutputCostPerMillion: 15.00},
	"claude-3-7-sonnet": {InputCostPerMillion: 3.00, OutputCostPerMillion: 15.00},
	"claude-sonnet-4":   {InputCostPerMillion: 3.00, OutputCostPerMillion: 15.00},
	"claude-sonnet-4-5": {InputCostPerMillion: 3.00, OutputCostPerMillion: 15.00},
	"claude-opus-4":     {InputCostPerMillion: 15.00, OutputCostPerMillion: 75.00},

	// Gemini: 2.5 Pro and 3 Pro are the <=200k context tier.
	"gemini-3-pro-preview":   {InputCostPerMillion: 2.00, OutputCostPerMillion: 12.00, CachedInputCostPerMillion: 1.00},
	"gemini-3-flash-preview": {InputCostPerMillion: 0.50, OutputCostPerMillion: 3.00, CachedInputCostPerMillion: 0.25},
	"gemini-2.5-pro":         {InputCostPerMillion: 1.25, OutputCostPerMillion: 10.00, CachedInputCostPerMillion: 0.625},
	"gemini-2.5-flash":       {InputCostPerMillion: 0.30, OutputCostPerMillion: 2.50, CachedInputCostPerMillion: 0.15},
	"gemini-2.5-flash-lite":  {InputCostPerMillion: 0.10, OutputCostPerMillion: 0.40, CachedInputCostPerMillion: 0.05},
	"gemini-2.0-flash":       {InputCostPerMillion: 0.10, OutputCostPerMillion: 0.40, CachedInputCostPerMillion: 0.05},
	"gemini-2.0-flash-lite":  {InputCostPerMillion: 0.075, OutputCostPerMillion: 0.30, CachedInputCostPerMillion: 0.0375},
	"gemini-1.5-pro":         {InputCostPerMillion: 1.25, OutputCostPerMillion: 5.00, CachedInputCostPerMillion: 0.3125},
	"gemini-1.5-flash":       {InputCostPerMillion: 0.075, OutputCostPerMillion: 0.30, CachedInputCostPerMillion: 0.01875},
	"gemini-1.5-flash-8b":    {InputCostPerMillion: 0.0375, OutputCostPerMillion: 0.15, CachedInputCostPerMillion: 0.009375},

	// DeepSeek
	"deepseek-chat":     {InputCostPerMillion: 0.27, OutputCostPerMillion: 1.10, CachedInputCostPerMillion: 0.07},
	"deepseek-reasoner": {InputCostPerMillion: 0.55, OutputCostPerMillion: 2.19, CachedInputCostPerMillion: 0.14},

	// Mistral
	"mistral-large":  {InputCostPerMillion: 2.00, OutputCostPerMillion: 6.00},
	"mistral-medium": {InputCostPerMillion: 0.40, OutputCostPerMillion: 2.00},
	"mistral-small":  {InputCostPerMillion: 0.20, OutputCostPerMillion: 0.60},

	// Groq-hosted open models
	"llama-3.1-8b-instant":    {InputCostPerMillion: 0.05, OutputCostPerMillion: 0.08},
	"llama-3.3-70b-versatile": {InputCostPerMillion: 0.59, OutputCostPerMillion: 0.79},

	// xAI
	"grok-2":      {InputCostPerMillion: 2.00, OutputCostPerMillion: 10.00},
	"grok-3":      {InputCostPerMillion: 3.00, OutputCostPerMillion: 15.00},
	"grok-3-mini": {InputCostPerMillion: 0.30, OutputCostPerMillion: 0.50},

	// Perplexity
	"sonar":     {InputCostPerMillion: 1.00, OutputCostPerMillion: 1.00},
	"sonar-pro": {InputCostPerMillion: 3.00, OutputCostPerMillion: 15.00},
}
