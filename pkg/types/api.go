// Package types holds the JSON request and response payloads of the HTTP API.
package types

// TranslateRequest is the body of POST /v1/translate.
type TranslateRequest struct {
	// Source language code.
	// example: nl
	Source string `json:"source" example:"nl"`
	// Target language code.
	// example: en
	Target string `json:"target" example:"en"`
	// Text to translate.
	// example: hallo
	Text string `json:"text" example:"hallo"`
}

// TranslateResponse carries the translated text.
type TranslateResponse struct {
	// example: hello
	Text string `json:"text" example:"hello"`
}

// TextRequest is the body of the single-text endpoints
// (/v1/embeddings, /v1/summarize, /v1/ner).
type TextRequest struct {
	// example: Amy moved to Amsterdam in 2019.
	Text string `json:"text" example:"Amy moved to Amsterdam in 2019."`
}

// EmbeddingResponse carries the sentence embedding in its text form: the
// shortest round-trip decimal of each float32, comma separated in brackets.
type EmbeddingResponse struct {
	// example: [0.12345679,-1.0,2.5e-7]
	Embedding string `json:"embedding" example:"[0.12345679,-1.0,2.5e-7]"`
}

// SummaryResponse carries a summary.
type SummaryResponse struct {
	Summary string `json:"summary"`
}

// AskRequest is the body of POST /v1/ask.
type AskRequest struct {
	// example: Where does Amy live?
	Question string `json:"question" example:"Where does Amy live?"`
	// example: Amy lives in Amsterdam.
	Context string `json:"context" example:"Amy lives in Amsterdam."`
}

// Answer is an extracted answer span. Start and End are character offsets
// into the context.
type Answer struct {
	// example: 0.93
	Score float32 `json:"score" example:"0.93"`
	// example: 13
	Start uint32 `json:"start" example:"13"`
	// example: 22
	End uint32 `json:"end" example:"22"`
	// example: Amsterdam
	Answer string `json:"answer" example:"Amsterdam"`
}

// ZeroShotRequest is the body of POST /v1/zero-shot.
type ZeroShotRequest struct {
	// example: The striker scored twice in the final.
	Text string `json:"text" example:"The striker scored twice in the final."`
	// Candidate labels; at least one is required.
	// example: ["sports","politics","economy"]
	Labels []string `json:"labels" example:"sports,politics,economy"`
}

// Label is the best scoring candidate label.
type Label struct {
	// example: sports
	Label string `json:"label" example:"sports"`
	// example: 0.91
	Score float32 `json:"score" example:"0.91"`
}

// Entity is a named entity. Offset is the character offset of Word in the text.
type Entity struct {
	// example: Amsterdam
	Word string `json:"word" example:"Amsterdam"`
	// example: 0.99
	Score float32 `json:"score" example:"0.99"`
	// example: LOC
	Label string `json:"label" example:"LOC"`
	// example: 13
	Offset uint32 `json:"offset" example:"13"`
}

// EntitiesResponse lists entities in text order.
type EntitiesResponse struct {
	Entities []Entity `json:"entities"`
}

// WarmupRequest is the body of POST /warmup. Source and Target are required
// for translation only.
type WarmupRequest struct {
	// example: translation
	Capability string `json:"capability" example:"translation"`
	// example: nl
	Source string `json:"source,omitempty" example:"nl"`
	// example: en
	Target string `json:"target,omitempty" example:"en"`
}

// WarmupResponse returns the id of the background build.
type WarmupResponse struct {
	// example: 6f1c3a52-8a4e-4a8e-9d7c-2b1f0e5d7c11
	OpID string `json:"op_id" example:"6f1c3a52-8a4e-4a8e-9d7c-2b1f0e5d7c11"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: unsupported language: "xx"
	Error string `json:"error" example:"unsupported language: \"xx\""`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
	// Machine readable error kind.
	// example: unsupported_language
	Kind string `json:"kind" example:"unsupported_language"`
}
