// Package stores holds internal Redis-backed record stores used by the
// session engine. Records are encoded as compact versioned binary blobs and
// consumed through optimistic transactions so attempt counting survives
// concurrent confirmations.
package stores
