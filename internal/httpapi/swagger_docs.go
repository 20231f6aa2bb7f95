//go:build swagger

package httpapi

import "github.com/swaggo/swag"

// docTemplate is the route index served at /swagger/doc.json. Request and
// response schemas are described on the handlers and can be regenerated
// with `swag init -g cmd/nlpd/docs.go`.
const docTemplate = `{
    "swagger": "2.0",
    "schemes": {{ marshal .Schemes }},
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/v1/translate": {"post": {"tags": ["inference"], "summary": "Translate text between two languages", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/v1/embeddings": {"post": {"tags": ["inference"], "summary": "Sentence embedding of a text", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/v1/summarize": {"post": {"tags": ["inference"], "summary": "Summarize a text", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/v1/ask": {"post": {"tags": ["inference"], "summary": "Extract the answer to a question from a context passage", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/v1/zero-shot": {"post": {"tags": ["inference"], "summary": "Pick the best of a set of candidate labels", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/v1/ner": {"post": {"tags": ["inference"], "summary": "Named entities of a text", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/warmup": {"post": {"tags": ["admin"], "summary": "Build an engine in the background", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"202": {"description": "Accepted"}}}},
        "/models": {"get": {"tags": ["admin"], "summary": "List configured models and backends", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/languages": {"get": {"tags": ["admin"], "summary": "List supported language codes", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/status": {"get": {"tags": ["admin"], "summary": "Built engines, queue depths and build counters", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "nlpd API",
	Description:      "HTTP API for lazily loaded NLP inference engines.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
