// Package tokens estimates token usage for providers that omit it.
package tokens

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/leofalp/polyprompt/providers/ai"
)

// DefaultEncoding is the BPE used for estimates. It matches GPT-4 class
// models and is a reasonable proxy for other providers.
const DefaultEncoding = "cl100k_base"

// Per-message framing overhead (role and separators) and the reply primer.
const (
	messageOverhead = 4
	replyOverhead   = 3
)

// Estimator counts tokens with tiktoken, falling back to a characters/4
// approximation when the encoding cannot be loaded. The encoding is loaded
// on first use.
type Estimator struct {
	encodingName string
	once         sync.Once
	count        func(string) int
}

// New returns an estimator using the named tiktoken encoding
// (DefaultEncoding when empty).
func New(encoding string) *Estimator {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	return &Estimator{encodingName: encoding}
}

// Approximate returns an estimator that never loads an encoding.
func Approximate() *Estimator {
	estimator := &Estimator{count: approxCount}
	estimator.once.Do(func() {})
	return estimator
}

func (e *Estimator) counter() func(string) int {
	e.once.Do(func() {
		encoding, err := tiktoken.GetEncoding(e.encodingName)
		if err != nil {
			e.count = approxCount
			return
		}
		e.count = func(text string) int {
			return len(encoding.Encode(text, nil, nil))
		}
	})
	return e.count
}

// Count returns the token count of text.
func (e *Estimator) Count(text string) int {
	if text == "" {
		return 0
	}
	return e.counter()(text)
}

// CountRequest returns the prompt token count of req, including per-message
// framing.
func (e *Estimator) CountRequest(req ai.Request) int {
	total := replyOverhead
	if system := req.SystemPrompt(); system != "" {
		total += messageOverhead + e.Count(system)
	}
	for _, turn := range req.Turns() {
		total += messageOverhead + e.Count(string(turn.Role)) + e.Count(turn.Content)
	}
	return total
}

// Estimate returns estimated usage for req answered by result. Reasoning
// text counts as output.
func (e *Estimator) Estimate(req ai.Request, result ai.Result) ai.Usage {
	return ai.Usage{
		InputTokens:  e.CountRequest(req),
		OutputTokens: e.Count(result.Text) + e.Count(result.Reasoning),
		Estimated:    true,
	}
}

func approxCount(text string) int {
	runes := utf8.RuneCountInString(text)
	if runes == 0 {
		return 0
	}
	return (runes + 3) / 4
}
