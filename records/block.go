// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package records

import (
	"encoding/binary"

	"github.com/grailbio/riegeli/records/internal"
)

// BlockHeader is the fixed-size record stamped at every block
// boundary. Layout (little-endian):
//
//	u64 header_hash
//	u64 previous_chunk
//	u64 next_chunk
//
// header_hash covers the 16 bytes of previous_chunk and next_chunk.
type BlockHeader struct {
	// PreviousChunk is the distance, in bytes, from this block
	// boundary back to the start of the chunk this block is part of.
	// Zero if a chunk starts exactly at this boundary.
	PreviousChunk uint64
	// NextChunk is the distance, in bytes, from this block boundary
	// forward to the start of the next chunk.
	NextChunk uint64
	// HeaderHash is the stored checksum over PreviousChunk and
	// NextChunk.
	HeaderHash uint64
}

// blockHeaderHash recomputes the checksum that should be stored in
// HeaderHash.
func blockHeaderHash(previousChunk, nextChunk uint64) uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], previousChunk)
	binary.LittleEndian.PutUint64(buf[8:16], nextChunk)
	return internal.Checksum(internal.HashKindBlockHeader, buf[:])
}

// VerifyHeaderHash reports whether h.HeaderHash matches the checksum
// recomputed over h.PreviousChunk and h.NextChunk.
func (h BlockHeader) VerifyHeaderHash() bool {
	return h.HeaderHash == blockHeaderHash(h.PreviousChunk, h.NextChunk)
}

// setHash stamps h.HeaderHash from its other fields; used when
// building fixtures for tests.
func (h *BlockHeader) setHash() {
	h.HeaderHash = blockHeaderHash(h.PreviousChunk, h.NextChunk)
}

// marshal serializes h into a fresh BlockHeaderSize-byte slice.
func (h BlockHeader) marshal() []byte {
	buf := make([]byte, BlockHeaderSize)
	binary.LittleEndian.PutUint64(buf[0:8], h.HeaderHash)
	binary.LittleEndian.PutUint64(buf[8:16], h.PreviousChunk)
	binary.LittleEndian.PutUint64(buf[16:24], h.NextChunk)
	return buf
}

// unmarshalBlockHeader parses a BlockHeaderSize-byte slice.
//
// REQUIRES: len(buf) == BlockHeaderSize.
func unmarshalBlockHeader(buf []byte) BlockHeader {
	return BlockHeader{
		HeaderHash:    binary.LittleEndian.Uint64(buf[0:8]),
		PreviousChunk: binary.LittleEndian.Uint64(buf[8:16]),
		NextChunk:     binary.LittleEndian.Uint64(buf[16:24]),
	}
}
