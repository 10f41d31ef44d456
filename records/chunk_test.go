// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package records

import (
	"testing"

	"github.com/grailbio/testutil/assert"
)

func TestChunkHeaderMarshalRoundTrip(t *testing.T) {
	h := ChunkHeader{
		DataSize:        123,
		DataHash:        DataChecksum([]byte("payload")),
		NumRecords:      4,
		DecodedDataSize: 456,
	}
	h.setHash()

	got := unmarshalChunkHeader(h.marshal())
	assert.EQ(t, h, got)
	assert.True(t, got.VerifyHeaderHash())
}

func TestChunkHeaderMarshalLength(t *testing.T) {
	var h ChunkHeader
	assert.EQ(t, int(ChunkHeaderSize), len(h.marshal()))
}

func TestChunkHeaderVerifyHeaderHashDetectsCorruption(t *testing.T) {
	h := ChunkHeader{DataSize: 8, DataHash: 1, NumRecords: 1, DecodedDataSize: 8}
	h.setHash()
	assert.True(t, h.VerifyHeaderHash())

	corrupted := h
	corrupted.DataSize++
	assert.False(t, corrupted.VerifyHeaderHash())

	corrupted = h
	corrupted.DataHash++
	assert.False(t, corrupted.VerifyHeaderHash())

	corrupted = h
	corrupted.NumRecords++
	assert.False(t, corrupted.VerifyHeaderHash())

	corrupted = h
	corrupted.DecodedDataSize++
	assert.False(t, corrupted.VerifyHeaderHash())
}

func TestDataChecksumDetectsCorruption(t *testing.T) {
	data := []byte("some chunk payload bytes")
	sum := DataChecksum(data)

	corrupted := append([]byte(nil), data...)
	corrupted[0] ^= 0xFF
	assert.True(t, sum != DataChecksum(corrupted))
}
