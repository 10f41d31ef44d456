// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package records

import (
	"github.com/grailbio/riegeli/bytesource"
	"github.com/grailbio/riegeli/records/internal"
)

// MaxChunkDataSize bounds how large a single chunk's DataSize field is
// allowed to claim before ChunkReader refuses to believe it and treats
// the header as corrupt. A genuine file never approaches this; it
// exists so a flipped bit in data_size cannot make ReadChunk attempt a
// multi-exabyte allocation.
const MaxChunkDataSize = 1 << 40

// recoverable classifies why a ChunkReader stopped being healthy, and
// what Recover can do about it. It mirrors the three-way state the
// format's own recovery story requires: nothing to do, a known-good
// chunk boundary to resume from, or a boundary that has to be found by
// scanning forward block by block.
type recoverable int

const (
	recoverableNone recoverable = iota
	recoverableHaveChunk
	recoverableFindChunk
)

// ChunkReader reads a sequence of chunks from a byte source, verifying
// block and chunk framing as it goes. A ChunkReader is not safe for
// concurrent use.
//
// A ChunkReader is always in exactly one of three states: open and
// healthy, open but unhealthy (Healthy reports false; Err or Recover
// explain why), or closed. See Healthy, Closed, Err and Recover.
type ChunkReader struct {
	byteReader bytesource.Reader
	owned      bool

	// pos is the position, in byteReader's coordinate space, of the
	// start of the next chunk to be yielded.
	pos Position

	// truncated records whether the byte source ran out in the middle
	// of a chunk's header, its payload, or an interleaved block header.
	// It does not by itself make the reader unhealthy (see Healthy);
	// it makes a subsequent Close fail.
	truncated       bool
	truncatedEndPos Position

	// chunk accumulates the chunk currently being read. headerFilled
	// and dataFilled track how much of ChunkHeader / Data has been
	// filled so far, so a read that is cut short by a transient false
	// return from byteReader can be resumed later without re-reading
	// bytes already consumed.
	chunk        Chunk
	headerBuf    []byte
	headerFilled int
	headerDone   bool
	dataFilled   int

	recoverable    recoverable
	recoverablePos Position

	err      error
	closed   bool
	closeErr error
}

// NewChunkReader returns a ChunkReader reading from byteReader.
// byteReader is borrowed: Close does not close it.
func NewChunkReader(byteReader bytesource.Reader) *ChunkReader {
	return &ChunkReader{byteReader: byteReader}
}

// NewOwnedChunkReader returns a ChunkReader reading from byteReader.
// byteReader is owned: Close closes it too.
func NewOwnedChunkReader(byteReader bytesource.Reader) *ChunkReader {
	return &ChunkReader{byteReader: byteReader, owned: true}
}

// Pos returns the position of the start of the next chunk to be read.
func (r *ChunkReader) Pos() Position { return r.pos }

// Healthy reports whether the reader is open and free of any
// unresolved structural or I/O failure.
func (r *ChunkReader) Healthy() bool {
	return !r.closed && r.err == nil && r.recoverable == recoverableNone
}

// Closed reports whether Close has been called.
func (r *ChunkReader) Closed() bool { return r.closed }

// Err returns the error that made the reader unhealthy: a structural
// fault that Recover may resolve, a hard I/O error, or API misuse. It
// returns nil if there is no such fault.
func (r *ChunkReader) Err() error { return r.err }

// SupportsRandomAccess reports whether Seek and the SeekToChunk family
// and Size are usable, which is exactly when the underlying byte
// source supports them.
func (r *ChunkReader) SupportsRandomAccess() bool {
	return r.byteReader != nil && r.byteReader.SupportsRandomAccess()
}

// Size reports the size of the underlying byte source. Requires
// SupportsRandomAccess.
func (r *ChunkReader) Size() (Position, bool) {
	if !r.Healthy() {
		return 0, false
	}
	size, ok := r.byteReader.Size()
	if !ok {
		r.recoverable = recoverableNone
		r.err = invalidErrorf("size", "byte source does not support random access")
		return 0, false
	}
	return size, true
}

// resetChunkState clears the in-progress chunk so the next ReadChunk
// or PullChunkHeader call starts a fresh chunk at r.pos.
func (r *ChunkReader) resetChunkState() {
	r.chunk = Chunk{}
	r.headerFilled = 0
	r.headerDone = false
	r.dataFilled = 0
}

// readingFailed interprets a false return from byteReader.Read. A hard
// I/O error fails the reader outright (Healthy becomes false with no
// recovery available); a clean end-of-source sets truncated if the
// source holds any bytes past the start of the in-progress chunk (seen
// from how far byteReader advanced, or from its Size when it reports
// one, since a byte source may leave Pos unchanged on a short read),
// and otherwise is the ordinary, healthy "no more chunks" condition.
// Always returns false.
func (r *ChunkReader) readingFailed() bool {
	if err := r.byteReader.Err(); err != nil {
		r.recoverable = recoverableNone
		r.err = err
		return false
	}
	if r.byteReader.Pos() > r.pos {
		r.truncated = true
	} else if size, ok := r.byteReader.Size(); ok && size > r.pos {
		r.truncated = true
	}
	return false
}

// seekingFailed interprets a false return from byteReader.Seek. Unlike
// readingFailed, running into the end of the source while seeking is
// itself a failure: there is nothing at the requested position to
// resume from.
func (r *ChunkReader) seekingFailed(target Position) bool {
	r.recoverable = recoverableNone
	if err := r.byteReader.Err(); err != nil {
		r.err = err
	} else {
		r.err = invalidErrorf("seek", "position %d is beyond the end of the source", target)
	}
	return false
}

// readBlockHeader reads and verifies the BlockHeader at the current,
// block-aligned byteReader position, cross-checking that it claims to
// belong to the chunk starting at r.pos. It is used while reading
// through a known chunk's header or payload, where any block boundary
// encountered must belong to that chunk.
func (r *ChunkReader) readBlockHeader() bool {
	boundary := r.byteReader.Pos()
	buf := make([]byte, BlockHeaderSize)
	if !r.byteReader.Read(buf) {
		return r.readingFailed()
	}
	h := unmarshalBlockHeader(buf)
	if !h.VerifyHeaderHash() {
		r.recoverable = recoverableFindChunk
		r.recoverablePos = boundary + BlockSize
		r.err = integrityErrorf("read-block-header", boundary, "block header checksum mismatch")
		return false
	}
	impliedStart := boundary - h.PreviousChunk
	if impliedStart != r.pos {
		r.recoverable = recoverableFindChunk
		r.recoverablePos = internal.BlockBoundaryAfterOrAt(r.pos + 1)
		r.err = integrityErrorf("read-block-header", boundary, "block header does not agree with the chunk it interrupts")
		return false
	}
	return true
}

// readBytes reads exactly len(dst) logical bytes of the chunk
// currently being read (header or payload bytes, never block-header
// bytes) from byteReader, transparently consuming and verifying any
// interleaved BlockHeader encountered along the way. It returns the
// number of bytes of dst actually filled, which can be less than
// len(dst) on failure; callers add this to their own fill counters so
// a later call can resume.
func (r *ChunkReader) readBytes(dst []byte) (int, bool) {
	filled := 0
	for filled < len(dst) {
		cur := r.byteReader.Pos()
		if internal.BlockOffset(cur) == 0 {
			if !r.readBlockHeader() {
				return filled, false
			}
			continue
		}
		remain := internal.RemainingInBlock(cur)
		n := len(dst) - filled
		if uint64(n) > remain {
			n = int(remain)
		}
		if !r.byteReader.Read(dst[filled : filled+n]) {
			return filled, r.readingFailed()
		}
		filled += n
	}
	return filled, true
}

// readChunkHeaderInternal reads and verifies the ChunkHeader of the
// chunk starting at r.pos, resuming any partial progress from an
// earlier call. On return with ok==true, r.chunk.Header is valid and
// r.headerDone is set.
func (r *ChunkReader) readChunkHeaderInternal() bool {
	if r.headerDone {
		return true
	}
	if r.headerBuf == nil {
		r.headerBuf = make([]byte, ChunkHeaderSize)
	}
	n, ok := r.readBytes(r.headerBuf[r.headerFilled:])
	r.headerFilled += n
	if !ok {
		return false
	}
	h := unmarshalChunkHeader(r.headerBuf)
	if !h.VerifyHeaderHash() {
		r.recoverable = recoverableFindChunk
		r.recoverablePos = internal.BlockBoundaryAfterOrAt(r.pos + 1)
		r.err = integrityErrorf("read-chunk-header", r.pos, "chunk header checksum mismatch")
		return false
	}
	if h.DataSize > MaxChunkDataSize {
		r.recoverable = recoverableFindChunk
		r.recoverablePos = internal.BlockBoundaryAfterOrAt(r.pos + 1)
		r.err = integrityErrorf("read-chunk-header", r.pos, "implausible data size %d", h.DataSize)
		return false
	}
	r.chunk.Header = h
	r.headerDone = true
	return true
}

// PullChunkHeader reads, but does not consume, the header of the next
// chunk. It is idempotent: repeated calls without an intervening
// ReadChunk return the same header without re-reading anything. The
// returned pointer aliases reader-owned state and is only valid until
// the next call to ReadChunk, Seek, a SeekToChunk method, or Recover.
func (r *ChunkReader) PullChunkHeader() (*ChunkHeader, bool) {
	if !r.Healthy() {
		return nil, false
	}
	if !r.readChunkHeaderInternal() {
		return nil, false
	}
	return &r.chunk.Header, true
}

// CheckFileFormat reads just enough of the byte source to validate the
// very next chunk header, without consuming its payload. Called right
// after construction, it validates the first chunk of the file.
func (r *ChunkReader) CheckFileFormat() bool {
	_, ok := r.PullChunkHeader()
	return ok
}

// ReadChunk reads the next chunk in full. On success, *out (if out is
// non-nil) receives the chunk and the reader advances past it. On
// failure, the reader's position is unchanged and the partially
// consumed chunk's state is retained so a retry (after more bytes
// become available, or after Recover) can resume or restart cleanly.
func (r *ChunkReader) ReadChunk(out *Chunk) bool {
	if !r.Healthy() {
		return false
	}
	if !r.readChunkHeaderInternal() {
		return false
	}
	if r.chunk.Data == nil {
		r.chunk.Data = make([]byte, r.chunk.Header.DataSize)
	}
	if uint64(r.dataFilled) < r.chunk.Header.DataSize {
		n, ok := r.readBytes(r.chunk.Data[r.dataFilled:])
		r.dataFilled += n
		if !ok {
			return false
		}
	}
	if DataChecksum(r.chunk.Data) != r.chunk.Header.DataHash {
		r.recoverable = recoverableFindChunk
		r.recoverablePos = internal.BlockBoundaryAfterOrAt(r.pos + 1)
		r.err = integrityErrorf("read-chunk", r.pos, "chunk data checksum mismatch")
		return false
	}
	if out != nil {
		*out = r.chunk
	}
	r.pos = r.byteReader.Pos()
	r.resetChunkState()
	return true
}

// physicalChunkEnd returns the byte-source position immediately after
// a chunk starting at start with logical size logicalSize (its header
// plus its payload, not counting any interleaved block headers). A
// BlockHeader occupies BlockHeaderSize bytes at every block boundary
// the chunk reaches while logical bytes remain, from start (inclusive,
// since a chunk starting exactly on a boundary is preceded by that
// boundary's own header) onwards; after each such header a block
// carries BlockSize-BlockHeaderSize logical bytes.
func physicalChunkEnd(start Position, logicalSize uint64) Position {
	end := start + logicalSize
	first := internal.BlockBoundaryAfterOrAt(start)
	if first >= end {
		return end
	}
	n := (end-1-first)/(BlockSize-BlockHeaderSize) + 1
	return end + n*BlockHeaderSize
}

// readRawBlockHeader reads and verifies the BlockHeader at the
// current, block-aligned byteReader position without any assumption
// about which chunk it belongs to. Used while scanning for chunk
// boundaries (Seek family, Recover's find-chunk path), where the point
// of reading the header is precisely to discover that.
func (r *ChunkReader) readRawBlockHeader() (BlockHeader, Position, bool) {
	boundary := r.byteReader.Pos()
	buf := make([]byte, BlockHeaderSize)
	if !r.byteReader.Read(buf) {
		r.readingFailed()
		return BlockHeader{}, boundary, false
	}
	h := unmarshalBlockHeader(buf)
	if !h.VerifyHeaderHash() {
		r.recoverable = recoverableFindChunk
		r.recoverablePos = boundary + BlockSize
		r.err = integrityErrorf("read-block-header", boundary, "block header checksum mismatch")
		return BlockHeader{}, boundary, false
	}
	return h, boundary, true
}

// locateChunkBoundaries finds the chunk boundaries surrounding newPos:
// before is the greatest chunk start <= newPos, after is the least
// chunk start >= newPos (the size of the source if no chunk starts at
// or after newPos).
//
// It first reads the BlockHeader of the block containing newPos to
// anchor on some chunk known to start at or before newPos (that
// block's previous_chunk); from there it walks forward chunk by
// chunk using each chunk's own ChunkHeader (data_size) to compute its
// physical extent, which is the only way to hop between two chunks
// that share a block without ever themselves straddling a boundary.
func (r *ChunkReader) locateChunkBoundaries(newPos Position) (before, after Position, ok bool) {
	size, _ := r.byteReader.Size()
	b := internal.BlockBoundaryBefore(newPos)
	if b >= size {
		return size, size, true
	}
	if !r.byteReader.Seek(b) {
		return 0, 0, r.seekingFailed(b)
	}
	h, boundary, rok := r.readRawBlockHeader()
	if !rok {
		return 0, 0, false
	}
	savedPos, savedHeaderDone := r.pos, r.headerDone
	defer func() { r.pos, r.headerDone = savedPos, savedHeaderDone }()

	cur := boundary - h.PreviousChunk
	prev := cur
	for cur < newPos {
		prev = cur
		if !r.byteReader.Seek(cur) {
			return 0, 0, r.seekingFailed(cur)
		}
		r.pos = cur
		r.resetChunkState()
		if !r.readChunkHeaderInternal() {
			return 0, 0, false
		}
		end := physicalChunkEnd(cur, ChunkHeaderSize+r.chunk.Header.DataSize)
		if end <= cur || end >= size {
			cur = size
			break
		}
		cur = end
	}
	return prev, cur, true
}

// commitSeek moves the reader to pos, a position already known to be a
// chunk boundary (or the size of the source, meaning no further
// chunk), discarding any in-progress chunk.
func (r *ChunkReader) commitSeek(pos Position) bool {
	if !r.byteReader.Seek(pos) {
		return r.seekingFailed(pos)
	}
	r.pos = pos
	r.resetChunkState()
	r.recoverable = recoverableNone
	r.err = nil
	r.truncated = false
	return true
}

// Seek moves the reader to newPos, which must itself be the start of a
// chunk (typically a position previously returned by Pos). Requires
// SupportsRandomAccess.
func (r *ChunkReader) Seek(newPos Position) bool {
	if !r.SupportsRandomAccess() {
		r.recoverable = recoverableNone
		r.err = invalidErrorf("seek", "byte source does not support random access")
		return false
	}
	return r.commitSeek(newPos)
}

type whichChunk int

const (
	chunkContaining whichChunk = iota
	chunkBefore
	chunkAfter
)

func (r *ChunkReader) seekToChunk(newPos Position, which whichChunk) bool {
	if !r.SupportsRandomAccess() {
		r.recoverable = recoverableNone
		r.err = invalidErrorf("seek", "byte source does not support random access")
		return false
	}
	if newPos == r.pos && r.Healthy() {
		return true
	}
	// Fast path: newPos already falls inside the chunk we're currently
	// positioned at and have a validated header for, so no scan of the
	// byte source is needed to answer.
	if r.Healthy() && r.headerDone {
		end := physicalChunkEnd(r.pos, ChunkHeaderSize+r.chunk.Header.DataSize)
		if newPos >= r.pos && newPos < end {
			switch which {
			case chunkBefore:
				return true
			case chunkContaining:
				if newPos < r.pos+r.chunk.Header.NumRecords {
					return true
				}
			}
		}
	}
	r.resetChunkState()
	r.recoverable = recoverableNone
	r.err = nil
	r.truncated = false
	before, after, ok := r.locateChunkBoundaries(newPos)
	if !ok {
		return false
	}
	switch which {
	case chunkBefore:
		return r.commitSeek(before)
	case chunkAfter:
		return r.commitSeek(after)
	default: // chunkContaining
		if before == newPos || before == after {
			return r.commitSeek(before)
		}
		if !r.byteReader.Seek(before) {
			return r.seekingFailed(before)
		}
		r.pos = before
		r.resetChunkState()
		if !r.readChunkHeaderInternal() {
			r.recoverable = recoverableNone
			r.err = nil
			return r.commitSeek(after)
		}
		contains := newPos < before+r.chunk.Header.NumRecords
		r.resetChunkState()
		if contains {
			return r.commitSeek(before)
		}
		return r.commitSeek(after)
	}
}

// SeekToChunkContaining moves the reader to the chunk whose span of
// record indices covers newPos: the chunk starting at or before newPos
// whose NumRecords reaches far enough, or else the next chunk after
// it. Requires SupportsRandomAccess.
func (r *ChunkReader) SeekToChunkContaining(newPos Position) bool {
	return r.seekToChunk(newPos, chunkContaining)
}

// SeekToChunkBefore moves the reader to the greatest chunk boundary <=
// newPos. Requires SupportsRandomAccess.
func (r *ChunkReader) SeekToChunkBefore(newPos Position) bool {
	return r.seekToChunk(newPos, chunkBefore)
}

// SeekToChunkAfter moves the reader to the least chunk boundary >=
// newPos, or to the end of the source if there is none. Requires
// SupportsRandomAccess.
func (r *ChunkReader) SeekToChunkAfter(newPos Position) bool {
	return r.seekToChunk(newPos, chunkAfter)
}

// advanceByteReaderTo moves byteReader's position forward to target,
// preferring Seek when available and otherwise discarding bytes by
// reading them.
func (r *ChunkReader) advanceByteReaderTo(target Position) bool {
	cur := r.byteReader.Pos()
	if cur == target {
		return true
	}
	if cur > target {
		return false
	}
	if r.byteReader.SupportsRandomAccess() {
		return r.byteReader.Seek(target)
	}
	buf := make([]byte, 4096)
	for cur < target {
		n := target - cur
		if n > uint64(len(buf)) {
			n = uint64(len(buf))
		}
		if !r.byteReader.Read(buf[:n]) {
			return false
		}
		cur += n
	}
	return true
}

// recoverFindChunk implements the find-chunk half of Recover: starting
// from r.recoverablePos (always block-aligned), it scans forward block
// by block, following each valid block header's NextChunk pointer to a
// candidate chunk start and attempting to read that candidate's
// header. The first candidate whose header verifies is accepted as the
// resumption point.
func (r *ChunkReader) recoverFindChunk(skipped *SkippedRegion) bool {
	prevPos := r.pos
	for {
		b := r.recoverablePos
		size, sizeOK := r.byteReader.Size()
		if sizeOK && b >= size {
			r.pos = size
			r.recoverable = recoverableNone
			r.err = nil
			r.resetChunkState()
			if skipped != nil {
				*skipped = SkippedRegion{Begin: prevPos, End: size}
			}
			return true
		}
		if !r.advanceByteReaderTo(b) {
			r.recoverable = recoverableNone
			r.err = invalidErrorf("recover", "cannot reach block boundary %d", b)
			return false
		}
		h, boundary, ok := r.readRawBlockHeader()
		if !ok {
			if r.byteReader.Err() == nil && r.byteReader.Pos() == boundary+BlockHeaderSize {
				// Read in full but failed its checksum; readRawBlockHeader
				// has already moved recoverablePos to the next block.
				continue
			}
			if r.byteReader.Err() == nil {
				r.pos = boundary
				r.recoverable = recoverableNone
				r.err = nil
				r.resetChunkState()
				if skipped != nil {
					*skipped = SkippedRegion{Begin: prevPos, End: boundary}
				}
				return true
			}
			return false
		}
		if !h.VerifyHeaderHash() {
			r.recoverablePos = boundary + BlockSize
			r.recoverable = recoverableFindChunk
			continue
		}
		candidate := boundary + h.NextChunk
		if candidate < boundary {
			r.recoverablePos = boundary + BlockSize
			r.recoverable = recoverableFindChunk
			continue
		}
		if !r.advanceByteReaderTo(candidate) {
			r.recoverablePos = boundary + BlockSize
			r.recoverable = recoverableFindChunk
			continue
		}
		savedPos := r.pos
		r.pos = candidate
		r.resetChunkState()
		if r.readChunkHeaderInternal() {
			r.recoverable = recoverableNone
			r.err = nil
			if skipped != nil {
				*skipped = SkippedRegion{Begin: prevPos, End: candidate}
			}
			return true
		}
		r.pos = savedPos
		r.resetChunkState()
		r.recoverablePos = boundary + BlockSize
		r.recoverable = recoverableFindChunk
	}
}

// Recover attempts to resume a reader that is unhealthy due to a
// structural fault (a checksum mismatch, disagreeing framing fields,
// or a Close that failed because the source was truncated
// mid-chunk). On success it returns true, the reader is healthy again
// positioned at the next chunk it could locate, and, if skipped is
// non-nil, *skipped reports the byte range it gave up on. Recover
// returns false if the reader is healthy already, closed with no
// truncation to forgive, or unhealthy for a reason Recover cannot
// address (e.g. a hard I/O error).
func (r *ChunkReader) Recover(skipped *SkippedRegion) bool {
	switch r.recoverable {
	case recoverableHaveChunk:
		if !r.advanceByteReaderTo(r.recoverablePos) {
			r.recoverable = recoverableNone
			r.err = invalidErrorf("recover", "cannot reach chunk boundary %d", r.recoverablePos)
			return false
		}
		prevPos := r.pos
		r.pos = r.recoverablePos
		r.recoverable = recoverableNone
		r.err = nil
		r.resetChunkState()
		if skipped != nil {
			*skipped = SkippedRegion{Begin: prevPos, End: r.pos}
		}
		return true
	case recoverableFindChunk:
		return r.recoverFindChunk(skipped)
	default:
		if r.closed && r.truncated {
			if skipped != nil {
				*skipped = SkippedRegion{Begin: r.pos, End: r.truncatedEndPos}
			}
			r.truncated = false
			r.closeErr = nil
			return true
		}
		return false
	}
}

// Close closes the reader. If byteReader is owned, it is closed too.
// Close reports false if closing byteReader failed, or if the reader
// was truncated mid-chunk and never recovered; Recover can still
// salvage the latter case immediately after Close.
func (r *ChunkReader) Close() bool {
	if r.closed {
		return r.closeErr == nil
	}
	if r.truncated {
		r.truncatedEndPos = r.byteReader.Pos()
		if size, ok := r.byteReader.Size(); ok && size > r.truncatedEndPos {
			r.truncatedEndPos = size
		}
	}
	r.closed = true
	ok := true
	if r.owned {
		if !r.byteReader.Close() {
			ok = false
			r.closeErr = r.byteReader.Err()
		}
	}
	if r.truncated {
		ok = false
		if r.closeErr == nil {
			r.closeErr = integrityErrorf("close", r.pos, "source truncated mid-chunk")
		}
	}
	return ok
}
