package types

// Model describes one catalog entry for GET /models.
type Model struct {
	// Registry key.
	// example: translation/nl-en
	Key string `json:"key" example:"translation/nl-en"`
	// example: translation
	Capability string `json:"capability" example:"translation"`
	// example: nl
	Source string `json:"source,omitempty" example:"nl"`
	// example: en
	Target string `json:"target,omitempty" example:"en"`
	// example: AllMiniLmL12V2
	Variant string `json:"variant,omitempty" example:"AllMiniLmL12V2"`
	// example: openai
	Backend string `json:"backend" example:"openai"`
	// Backend model identifier or file path.
	// example: gpt-4o-mini
	Model string `json:"model,omitempty" example:"gpt-4o-mini"`
	// Whether the engine is already built.
	// example: true
	Loaded bool `json:"loaded" example:"true"`
}

// Backend lists the capabilities one backend can serve.
type Backend struct {
	// example: anthropic
	Name string `json:"name" example:"anthropic"`
	// example: ["translation","summarization"]
	Capabilities []string `json:"capabilities"`
}

// ModelsResponse wraps the catalog returned by GET /models.
type ModelsResponse struct {
	Models   []Model   `json:"models"`
	Backends []Backend `json:"backends"`
}

// Language is a supported language code.
type Language struct {
	// example: nl
	Code string `json:"code" example:"nl"`
	// example: Dutch
	Name string `json:"name" example:"Dutch"`
}

// LanguagesResponse is returned by GET /languages.
type LanguagesResponse struct {
	Languages []Language `json:"languages"`
}
