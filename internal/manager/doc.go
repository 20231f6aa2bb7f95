// Package manager is the dispatch layer. It owns one resource registry per
// capability and serves the six inference operations on top of them:
//
//   - manager.go: Manager, construction, Close, readiness.
//   - config.go: Config and defaults.
//   - dispatch.go: Translate, SentenceEmbeddings, Summarize, Ask, ZeroShot, NER.
//   - views.go: per-call capability views over a shared engine handle.
//   - factory.go: registry factories that load engines through the backends.
//   - errors.go: ResourceUnavailable, InferenceFailed, InvalidInput and KindOf.
//   - ops.go: Warmup and Preload.
//   - status_report.go: Status, Models and Languages for the HTTP layer.
//   - events.go, eventpub_memory.go: lifecycle events.
//   - metrics.go: per-operation prometheus metrics.
//
// A dispatch call resolves its languages first and fails without touching a
// registry on a bad code. It then looks the key up in the catalog, obtains
// the engine from the registry (building it on first use) and runs the call
// with exclusive access to that engine.
package manager
