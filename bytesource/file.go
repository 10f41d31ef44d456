// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bytesource

import (
	"context"
	"io"

	"github.com/grailbio/riegeli/errors"
	"github.com/grailbio/riegeli/file"
	"github.com/grailbio/riegeli/morebufio"
)

// defaultBufferSize matches records.BlockSize so that a sequential
// scan typically issues one underlying read per block.
const defaultBufferSize = 64 << 10

// File is a Reader backed by github.com/grailbio/riegeli/file, the
// teacher's pluggable local/remote file abstraction. It always reports
// random access support; Seek fails if the underlying reader cannot
// seek.
type File struct {
	ctx  context.Context
	f    file.File
	rs   io.ReadSeeker
	pos  uint64
	size int64
	err  errors.Once
}

var _ Reader = (*File)(nil)

// OpenFile opens path (any scheme file.Open understands) for reading
// and returns a buffered, seekable byte source over it. The returned
// File owns f and closes it when Close is called.
func OpenFile(ctx context.Context, path string) (*File, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat(ctx)
	if err != nil {
		_ = f.Close(ctx)
		return nil, err
	}
	rs := morebufio.NewReadSeekerSize(f.Reader(ctx), defaultBufferSize)
	return &File{ctx: ctx, f: f, rs: rs, size: info.Size()}, nil
}

// Pos implements Reader.
func (r *File) Pos() Position { return r.pos }

// Read implements Reader.
func (r *File) Read(buf []byte) bool {
	if len(buf) == 0 {
		return true
	}
	n, err := io.ReadFull(r.rs, buf)
	r.pos += uint64(n)
	if err != nil {
		if err != io.EOF && err != io.ErrUnexpectedEOF {
			r.err.Set(err)
		}
		return false
	}
	return true
}

// Err implements Reader.
func (r *File) Err() error { return r.err.Err() }

// SupportsRandomAccess implements Reader.
func (r *File) SupportsRandomAccess() bool { return true }

// Seek implements Reader.
func (r *File) Seek(pos Position) bool {
	n, err := r.rs.Seek(int64(pos), io.SeekStart)
	if err != nil {
		r.err.Set(err)
		return false
	}
	r.pos = uint64(n)
	return true
}

// Size implements Reader.
func (r *File) Size() (Position, bool) { return uint64(r.size), true }

// Close implements Reader.
func (r *File) Close() bool {
	if err := r.f.Close(r.ctx); err != nil {
		r.err.Set(err)
		return false
	}
	return true
}
