// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package bytesource implements the ByteReader capability that
// records.ChunkReader is built on: a buffered, optionally
// random-access byte source with positional reads, a current
// position, a size query, and seek.
package bytesource

// Position is an unsigned byte offset from the start of a source.
type Position = uint64

// Reader is the byte-source contract consumed by records.ChunkReader.
// Implementations need not be safe for concurrent use; a Reader is
// used exclusively by one ChunkReader for its lifetime.
type Reader interface {
	// Pos returns the current read position.
	Pos() Position

	// Read fills buf entirely from the source, advancing Pos by
	// len(buf). It returns false if fewer than len(buf) bytes were
	// available (including the len(buf)==0 case never failing) or an
	// error occurred; callers distinguish the two with Err.
	Read(buf []byte) bool

	// Err returns the error that caused the most recent Read or Seek
	// to fail, or nil if the last failure (if any) was a clean
	// end-of-source condition rather than a hard error.
	Err() error

	// SupportsRandomAccess reports whether Seek and Size are usable.
	SupportsRandomAccess() bool

	// Seek moves the read position to pos. Requires
	// SupportsRandomAccess. Returns false on failure (Err explains
	// why).
	Seek(pos Position) bool

	// Size reports the size of the source, i.e. the position
	// corresponding to its end. Requires SupportsRandomAccess.
	Size() (Position, bool)

	// Close releases resources owned by the reader. Whether a second
	// call succeeds depends on the implementation. Returns false if a
	// deferred error (e.g. a short write during buffered flush)
	// surfaced at close time.
	Close() bool
}
