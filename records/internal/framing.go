// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package internal holds the pure framing arithmetic and the checksum
// function shared by the records package, kept separate so it can be
// tested without dragging in the ChunkReader state machine.
package internal

const (
	// BlockSize is the fixed size of a block. Every position that is a
	// multiple of BlockSize is a block boundary.
	BlockSize = 64 << 10

	// BlockHeaderSize is the size in bytes of a BlockHeader, stamped at
	// every block boundary.
	BlockHeaderSize = 24

	// ChunkHeaderSize is the size in bytes of a ChunkHeader.
	ChunkHeaderSize = 40
)

// BlockOffset returns p's offset within its block.
func BlockOffset(p uint64) uint64 {
	return p % BlockSize
}

// RemainingInBlockHeader returns how many bytes of a BlockHeader remain
// unread at position p, 0 if p is not inside a block header.
func RemainingInBlockHeader(p uint64) uint64 {
	off := BlockOffset(p)
	if off >= BlockHeaderSize {
		return 0
	}
	return BlockHeaderSize - off
}

// RemainingInBlock returns how many bytes remain until the next block
// boundary strictly after p (BlockSize if p is itself a boundary).
func RemainingInBlock(p uint64) uint64 {
	return BlockSize - BlockOffset(p)
}

// BlockBoundaryBefore returns the block boundary at or before p.
func BlockBoundaryBefore(p uint64) uint64 {
	return p - BlockOffset(p)
}

// BlockBoundaryAfterOrAt returns p if p is a block boundary, else the
// next block boundary after p.
func BlockBoundaryAfterOrAt(p uint64) uint64 {
	if BlockOffset(p) == 0 {
		return p
	}
	return BlockBoundaryBefore(p) + BlockSize
}
