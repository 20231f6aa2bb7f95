// Package registry provides a lazily populated, concurrency-safe cache of
// expensive engine instances. It is structured into small files by concern:
//
//   - registry.go: Registry type, GetOrBuild/Lookup and build coordination.
//   - handle.go: Handle, the shared reference to a built instance, and its
//     exclusive-access admission (Do).
//   - options.go: construction options and defaults.
//   - errors.go: BuildError, TooBusyError and predicates.
//   - metrics.go: prometheus collectors shared by all registries.
//
// Locking discipline for a miss is check, flight, re-check, build, insert:
// a read-locked lookup serves hits; misses join a per-key singleflight whose
// leader re-checks the map, runs the factory with no lock held and takes the
// write lock only to insert. Builds of different keys never wait on each
// other, and a failed build leaves no entry behind so the next call retries.
//
// Every built instance is accessed exclusively: Handle.Do admits one caller
// at a time and queues the rest up to a bounded depth and wait. This holds
// for every registry regardless of what the wrapped engine claims about its
// own thread safety.
package registry
