// Package gemini implements the Gemini generateContent wire shape: request
// translation (contents, systemInstruction, generationConfig), whole-body
// normalization and the candidate-sse stream decoder used with
// streamGenerateContent?alt=sse.
package gemini
