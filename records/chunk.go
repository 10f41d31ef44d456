// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package records

import (
	"encoding/binary"

	"github.com/grailbio/riegeli/records/internal"
)

// ChunkHeader precedes every chunk's payload. Layout (little-endian):
//
//	u64 header_hash
//	u64 data_size
//	u64 data_hash
//	u64 num_records
//	u64 decoded_data_size
//
// header_hash covers the 32 bytes after it.
type ChunkHeader struct {
	// DataSize is the byte length of the chunk payload, not counting
	// interleaved block headers.
	DataSize uint64
	// DataHash is the checksum over the logical (block-header-stripped)
	// payload bytes.
	DataHash uint64
	// NumRecords is the number of logical records inside the payload.
	NumRecords uint64
	// DecodedDataSize is the sum of decoded record sizes; consumed by
	// layers above ChunkReader.
	DecodedDataSize uint64
	// HeaderHash is the stored checksum over the four fields above.
	HeaderHash uint64
}

// Chunk is a fully-read chunk: its header plus its opaque payload.
type Chunk struct {
	Header ChunkHeader
	Data   []byte
}

func chunkHeaderHash(dataSize, dataHash, numRecords, decodedDataSize uint64) uint64 {
	var buf [32]byte
	binary.LittleEndian.PutUint64(buf[0:8], dataSize)
	binary.LittleEndian.PutUint64(buf[8:16], dataHash)
	binary.LittleEndian.PutUint64(buf[16:24], numRecords)
	binary.LittleEndian.PutUint64(buf[24:32], decodedDataSize)
	return internal.Checksum(internal.HashKindChunkHeader, buf[:])
}

// VerifyHeaderHash reports whether h.HeaderHash matches the checksum
// recomputed over h's other fields.
func (h ChunkHeader) VerifyHeaderHash() bool {
	return h.HeaderHash == chunkHeaderHash(h.DataSize, h.DataHash, h.NumRecords, h.DecodedDataSize)
}

func (h *ChunkHeader) setHash() {
	h.HeaderHash = chunkHeaderHash(h.DataSize, h.DataHash, h.NumRecords, h.DecodedDataSize)
}

// DataChecksum computes the checksum that should be stored in
// DataSize's sibling DataHash for the given logical payload bytes.
func DataChecksum(data []byte) uint64 {
	return internal.Checksum(internal.HashKindChunkData, data)
}

func (h ChunkHeader) marshal() []byte {
	buf := make([]byte, ChunkHeaderSize)
	binary.LittleEndian.PutUint64(buf[0:8], h.HeaderHash)
	binary.LittleEndian.PutUint64(buf[8:16], h.DataSize)
	binary.LittleEndian.PutUint64(buf[16:24], h.DataHash)
	binary.LittleEndian.PutUint64(buf[24:32], h.NumRecords)
	binary.LittleEndian.PutUint64(buf[32:40], h.DecodedDataSize)
	return buf
}

// unmarshalChunkHeader parses a ChunkHeaderSize-byte slice.
//
// REQUIRES: len(buf) == ChunkHeaderSize.
func unmarshalChunkHeader(buf []byte) ChunkHeader {
	return ChunkHeader{
		HeaderHash:      binary.LittleEndian.Uint64(buf[0:8]),
		DataSize:        binary.LittleEndian.Uint64(buf[8:16]),
		DataHash:        binary.LittleEndian.Uint64(buf[16:24]),
		NumRecords:      binary.LittleEndian.Uint64(buf[24:32]),
		DecodedDataSize: binary.LittleEndian.Uint64(buf[32:40]),
	}
}
