package main

// General API documentation for swaggo. Regenerate with
// `swag init -g cmd/nlpd/docs.go` and build with -tags=swagger to serve it.
//
// @title           nlpd API
// @version         1.0
// @description     HTTP API for lazily loaded NLP inference engines: translation, sentence embeddings, summarization, question answering, zero-shot classification and NER.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
