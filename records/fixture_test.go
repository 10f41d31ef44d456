// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package records

import "github.com/grailbio/riegeli/records/internal"

// streamBuilder assembles a valid (or deliberately corrupted, for
// negative tests) byte-source image of a records stream by hand, since
// this module intentionally has no public Writer. It always stamps a
// BlockHeader at position 0 and at every BlockSize boundary crossed,
// exactly as a real writer would, so ChunkReader's interleaving logic
// has something real to strip.
type streamBuilder struct {
	buf []byte
}

func newStreamBuilder() *streamBuilder {
	return &streamBuilder{}
}

// pos returns the current write position: both the physical byte
// offset into buf and the position in ChunkReader's coordinate space,
// which are one and the same (Position is a byte offset from the
// start of the source, block headers included).
func (b *streamBuilder) pos() Position { return Position(len(b.buf)) }

func (b *streamBuilder) stampBlockHeaderAt(boundary Position, previousChunk, nextChunk uint64) {
	h := BlockHeader{PreviousChunk: previousChunk, NextChunk: nextChunk}
	h.setHash()
	if boundary != Position(len(b.buf)) {
		panic("stampBlockHeaderAt: out of order")
	}
	b.buf = append(b.buf, h.marshal()...)
}

// appendBytesWithBlockHeaders appends n payload/header bytes starting
// at the builder's current position, stamping a fresh BlockHeader
// (with the given previousChunk distance) at every block boundary
// crossed, exactly like a real chunk write would.
func (b *streamBuilder) appendBytesWithBlockHeaders(data []byte, chunkStart Position) {
	for len(data) > 0 {
		cur := b.pos()
		if internal.BlockOffset(cur) == 0 {
			b.stampBlockHeaderAt(cur, cur-chunkStart, 0) // nextChunk patched later
		}
		remain := internal.RemainingInBlock(b.pos())
		n := uint64(len(data))
		if n > remain {
			n = remain
		}
		b.buf = append(b.buf, data[:n]...)
		data = data[n:]
	}
}

// patchNextChunk back-fills the next_chunk field of every BlockHeader
// whose previous_chunk pointed at chunkStart, now that the chunk
// starting there is known to end at chunkEnd (a future chunk's start,
// or the size of the stream at EOF).
func (b *streamBuilder) patchNextChunk(chunkStart, chunkEnd Position) {
	for boundary := Position(0); boundary < Position(len(b.buf)); boundary += BlockSize {
		h := unmarshalBlockHeader(b.buf[boundary : boundary+BlockHeaderSize])
		if boundary == chunkStart || boundary-h.PreviousChunk == chunkStart {
			h.NextChunk = chunkEnd - boundary
			h.setHash()
			copy(b.buf[boundary:boundary+BlockHeaderSize], h.marshal())
		}
	}
}

// appendChunk appends one fully-framed chunk (header + payload) at the
// builder's current position, stamping and later patching any block
// headers straddled. corruptHeaderHash/corruptDataHash let negative
// tests flip a stored checksum without disturbing anything else.
func (b *streamBuilder) appendChunk(data []byte, numRecords, decodedSize uint64, corruptHeaderHash, corruptDataHash bool) Position {
	start := b.pos()
	h := ChunkHeader{
		DataSize:        uint64(len(data)),
		DataHash:        DataChecksum(data),
		NumRecords:      numRecords,
		DecodedDataSize: decodedSize,
	}
	if corruptDataHash {
		h.DataHash ^= 1
	}
	h.setHash()
	if corruptHeaderHash {
		h.HeaderHash ^= 1
	}
	b.appendBytesWithBlockHeaders(h.marshal(), start)
	b.appendBytesWithBlockHeaders(data, start)
	b.patchNextChunk(start, b.pos())
	return start
}

// bytes returns the finished stream image.
func (b *streamBuilder) bytes() []byte { return b.buf }
