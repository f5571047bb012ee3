package types

import "time"

// ReviewRequest is the JSON body accepted by the review endpoint
type ReviewRequest struct {
	Code string `json:"code"`
}

// ConversionResult is the outcome contract of the conversion endpoint.
// Exactly one of the two fields is set.
type ConversionResult struct {
	ConvertedCode string `json:"converted_code,omitempty"`
	Error         string `json:"error,omitempty"`
}

// ErrorResponse is returned by handlers that fail before producing a payload
type ErrorResponse struct {
	Error string `json:"error"`
}

// HistoryEntry is one dispatch as reported by the history endpoint
type HistoryEntry struct {
	ID             string    `json:"id"`
	Flow           string    `json:"flow"`
	SourceLanguage string    `json:"source_language,omitempty"`
	TargetLanguage string    `json:"target_language,omitempty"`
	CodeLength     int       `json:"code_length"`
	Outcome        string    `json:"outcome"`
	Error          string    `json:"error,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// HistoryResponse wraps the history endpoint payload
type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

// CompletionRequest is one prompt for a generative model
type CompletionRequest struct {
	// SystemInstruction sets the model's role, empty for none
	SystemInstruction string
	Prompt            string
	Temperature       *float32
	MaxOutputTokens   int32
}
