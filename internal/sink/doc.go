// Package sink provides player.Sink implementations: a frame printer, a
// structured-log sink, an in-memory recorder, a tee and a store-backed
// journal.
package sink
