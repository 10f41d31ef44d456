// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package internal

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Hash kinds. Each field that carries a checksum is hashed with a
// distinct domain separator so that, e.g., a BlockHeader's fields can
// never collide with a ChunkHeader's under the same bytes.
const (
	HashKindBlockHeader uint64 = 0x424c4f434b000001 // "BLOCK..." + version
	HashKindChunkHeader uint64 = 0x4348554e4b000001 // "CHUNK..." + version
	HashKindChunkData   uint64 = 0x4441544100000001 // "DATA...." + version
)

// Checksum computes the 64-bit checksum used for header_hash and
// data_hash fields. It is not required to be byte-compatible with any
// other Riegeli/records implementation (see the "checksum algorithm"
// Open Question in DESIGN.md); it only needs to be stable across
// writes and reads performed by this module and its tests.
func Checksum(kind uint64, data []byte) uint64 {
	var seed [8]byte
	binary.LittleEndian.PutUint64(seed[:], kind)
	d := xxhash.New()
	_, _ = d.Write(seed[:])
	_, _ = d.Write(data)
	return d.Sum64()
}
