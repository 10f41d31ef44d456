// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package records implements the ChunkReader core of the
// Riegeli/records file format: reading a stream of length-delimited
// chunks framed into fixed-size blocks, verifying structural
// integrity, and recovering from corruption by resynchronising on
// block boundaries.
//
// Writing, decoding chunk payloads into individual records, and
// concrete byte sources all live outside this package; see
// bytesource for the latter.
package records

import "github.com/grailbio/riegeli/records/internal"

// Position is an unsigned byte offset from the beginning of a byte
// source.
type Position = uint64

// BlockSize is the fixed size of a block; every multiple of BlockSize
// is a block boundary.
const BlockSize = internal.BlockSize

// BlockHeaderSize is the size in bytes of a BlockHeader.
const BlockHeaderSize = internal.BlockHeaderSize

// ChunkHeaderSize is the size in bytes of a serialized ChunkHeader.
const ChunkHeaderSize = internal.ChunkHeaderSize
