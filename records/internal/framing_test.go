// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package internal

import "testing"

func TestBlockOffset(t *testing.T) {
	cases := []struct {
		p    uint64
		want uint64
	}{
		{0, 0},
		{1, 1},
		{BlockSize - 1, BlockSize - 1},
		{BlockSize, 0},
		{BlockSize + 24, 24},
	}
	for _, c := range cases {
		if got := BlockOffset(c.p); got != c.want {
			t.Errorf("BlockOffset(%d) = %d, want %d", c.p, got, c.want)
		}
	}
}

func TestRemainingInBlockHeader(t *testing.T) {
	cases := []struct {
		p    uint64
		want uint64
	}{
		{0, BlockHeaderSize},
		{10, BlockHeaderSize - 10},
		{BlockHeaderSize, 0},
		{BlockHeaderSize + 1, 0},
		{BlockSize, BlockHeaderSize},
	}
	for _, c := range cases {
		if got := RemainingInBlockHeader(c.p); got != c.want {
			t.Errorf("RemainingInBlockHeader(%d) = %d, want %d", c.p, got, c.want)
		}
	}
}

func TestRemainingInBlock(t *testing.T) {
	if got := RemainingInBlock(0); got != BlockSize {
		t.Errorf("RemainingInBlock(0) = %d, want %d", got, BlockSize)
	}
	if got := RemainingInBlock(BlockSize - 1); got != 1 {
		t.Errorf("RemainingInBlock(BlockSize-1) = %d, want 1", got)
	}
}

func TestBlockBoundaries(t *testing.T) {
	if got := BlockBoundaryBefore(BlockSize + 100); got != BlockSize {
		t.Errorf("BlockBoundaryBefore = %d, want %d", got, BlockSize)
	}
	if got := BlockBoundaryAfterOrAt(BlockSize); got != BlockSize {
		t.Errorf("BlockBoundaryAfterOrAt(boundary) = %d, want %d", got, BlockSize)
	}
	if got := BlockBoundaryAfterOrAt(BlockSize + 1); got != 2*BlockSize {
		t.Errorf("BlockBoundaryAfterOrAt(boundary+1) = %d, want %d", got, 2*BlockSize)
	}
}
