// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package internal

import "testing"

func TestChecksumStableAndDistinguishesKind(t *testing.T) {
	data := []byte("some chunk payload bytes")
	a := Checksum(HashKindChunkData, data)
	b := Checksum(HashKindChunkData, data)
	if a != b {
		t.Fatalf("Checksum not stable: %d != %d", a, b)
	}
	c := Checksum(HashKindBlockHeader, data)
	if a == c {
		t.Fatalf("Checksum did not distinguish kinds")
	}
}

func TestChecksumDistinguishesData(t *testing.T) {
	a := Checksum(HashKindChunkHeader, []byte("foo"))
	b := Checksum(HashKindChunkHeader, []byte("bar"))
	if a == b {
		t.Fatalf("Checksum collided for distinct inputs (allowed but astronomically unlikely here)")
	}
}
