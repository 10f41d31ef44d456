// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bytesource

import (
	"io"

	"github.com/grailbio/riegeli/errors"
)

// Stream adapts a plain io.Reader (a pipe, a socket, stdin) into a
// Reader with no random-access support. records.ChunkReader can still
// drive it through ReadChunk and PullChunkHeader; seeking and Size are
// unavailable.
type Stream struct {
	r    io.Reader
	pos  uint64
	err  errors.Once
	eof  bool
	name string
}

var _ Reader = (*Stream)(nil)

// NewStream returns a Reader over r. name is stored for diagnostics
// only; no method of Stream includes it in its results or errors.
func NewStream(r io.Reader, name string) *Stream {
	return &Stream{r: r, name: name}
}

// Pos implements Reader.
func (s *Stream) Pos() Position { return s.pos }

// Read implements Reader.
func (s *Stream) Read(buf []byte) bool {
	if len(buf) == 0 {
		return true
	}
	n, err := io.ReadFull(s.r, buf)
	s.pos += uint64(n)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			s.eof = true
		} else {
			s.err.Set(err)
		}
		return false
	}
	return true
}

// Err implements Reader.
func (s *Stream) Err() error { return s.err.Err() }

// SupportsRandomAccess implements Reader.
func (s *Stream) SupportsRandomAccess() bool { return false }

// Seek implements Reader. Stream never supports it.
func (s *Stream) Seek(Position) bool { return false }

// Size implements Reader. Stream never supports it.
func (s *Stream) Size() (Position, bool) { return 0, false }

// Close implements Reader. If the underlying reader is also an
// io.Closer, it is closed; the return value reflects that close.
func (s *Stream) Close() bool {
	if c, ok := s.r.(io.Closer); ok {
		if err := c.Close(); err != nil {
			s.err.Set(err)
			return false
		}
	}
	return true
}
