// Package store archives encoded structures for the HTTP service.
//
// A [Store] keeps the exact bytes it was given together with a [Record]
// summarizing them. Ids are random UUIDs assigned on [Store.Put]. Two
// backends exist: [FileStore] for single-node deployments and [MongoStore]
// for shared ones.
//
// Both backends report through [observability.Store] hooks.
package store
