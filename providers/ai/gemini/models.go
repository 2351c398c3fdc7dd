package gemini

import "github.com/leofalp/polyprompt/providers/ai"

/*
	GENERATE CONTENT - REQUEST
*/

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
	Tools             []tool            `json:"tools,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"` // "user" or "model"
	Parts []part `json:"parts"`
}

type part struct {
	Text    string `json:"text,omitempty"`
	Thought bool   `json:"thought,omitempty"` // reasoning summary part
}

type generationConfig struct {
	Temperature      *float64 `json:"temperature,omitempty"`
	MaxOutputTokens  *int     `json:"maxOutputTokens,omitempty"`
	TopP             *float64 `json:"topP,omitempty"`
	TopK             *int     `json:"topK,omitempty"`
	StopSequences    []string `json:"stopSequences,omitempty"`
	Seed             *int     `json:"seed,omitempty"`
	PresencePenalty  *float64 `json:"presencePenalty,omitempty"`
	FrequencyPenalty *float64 `json:"frequencyPenalty,omitempty"`
	ResponseMimeType string   `json:"responseMimeType,omitempty"`
}

func (g *generationConfig) empty() bool {
	return g.Temperature == nil && g.MaxOutputTokens == nil && g.TopP == nil && g.TopK == nil &&
		len(g.StopSequences) == 0 && g.Seed == nil && g.PresencePenalty == nil &&
		g.FrequencyPenalty == nil && g.ResponseMimeType == ""
}

type tool struct {
	GoogleSearch *struct{} `json:"googleSearch,omitempty"`
}

/*
	GENERATE CONTENT - RESPONSE (also one stream event)
*/

type generateResponse struct {
	Candidates     []candidate     `json:"candidates,omitempty"`
	PromptFeedback *promptFeedback `json:"promptFeedback,omitempty"`
	UsageMetadata  *usageMetadata  `json:"usageMetadata,omitempty"`
	ModelVersion   string          `json:"modelVersion,omitempty"`
	Error          *apiError       `json:"error,omitempty"`
}

type candidate struct {
	Content           *content           `json:"content,omitempty"`
	FinishReason      string             `json:"finishReason,omitempty"`
	CitationMetadata  *citationMetadata  `json:"citationMetadata,omitempty"`
	GroundingMetadata *groundingMetadata `json:"groundingMetadata,omitempty"`
}

type citationMetadata struct {
	CitationSources []struct {
		URI string `json:"uri,omitempty"`
	} `json:"citationSources,omitempty"`
}

type groundingMetadata struct {
	GroundingChunks []struct {
		Web *struct {
			URI   string `json:"uri,omitempty"`
			Title string `json:"title,omitempty"`
		} `json:"web,omitempty"`
	} `json:"groundingChunks,omitempty"`
}

type promptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

type usageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	ThoughtsTokenCount   int `json:"thoughtsTokenCount,omitempty"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

func (e *apiError) String() string {
	if e.Status == "" {
		return e.Message
	}
	return e.Status + ": " + e.Message
}

// citations gathers grounding and citation URIs in order without duplicates.
func (c candidate) citations() []string {
	var urls []string
	seen := map[string]bool{}
	add := func(uri string) {
		if uri != "" && !seen[uri] {
			seen[uri] = true
			urls = append(urls, uri)
		}
	}
	if c.GroundingMetadata != nil {
		for _, chunk := range c.GroundingMetadata.GroundingChunks {
			if chunk.Web != nil {
				add(chunk.Web.URI)
			}
		}
	}
	if c.CitationMetadata != nil {
		for _, source := range c.CitationMetadata.CitationSources {
			add(source.URI)
		}
	}
	return urls
}

// usage maps Gemini counters; thought tokens are billed as output.
func (u *usageMetadata) usage() ai.Usage {
	return ai.Usage{InputTokens: u.PromptTokenCount, OutputTokens: u.CandidatesTokenCount + u.ThoughtsTokenCount}
}
