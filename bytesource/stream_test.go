// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bytesource_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/grailbio/riegeli/bytesource"
	"github.com/stretchr/testify/require"
)

func TestStreamRead(t *testing.T) {
	s := bytesource.NewStream(bytes.NewReader([]byte("abcdef")), "test")
	buf := make([]byte, 3)
	require.True(t, s.Read(buf))
	require.Equal(t, "abc", string(buf))
	require.True(t, s.Read(buf))
	require.Equal(t, "def", string(buf))
	require.False(t, s.Read(buf))
	require.NoError(t, s.Err())
}

func TestStreamNoRandomAccess(t *testing.T) {
	s := bytesource.NewStream(bytes.NewReader([]byte("abc")), "test")
	require.False(t, s.SupportsRandomAccess())
	require.False(t, s.Seek(0))
	_, ok := s.Size()
	require.False(t, ok)
}

type erroringReader struct{ err error }

func (r erroringReader) Read([]byte) (int, error) { return 0, r.err }

func TestStreamHardError(t *testing.T) {
	wantErr := errors.New("pipe broke")
	s := bytesource.NewStream(erroringReader{wantErr}, "test")
	buf := make([]byte, 1)
	require.False(t, s.Read(buf))
	require.Equal(t, wantErr, s.Err())
}

type closeTrackingReader struct {
	io.Reader
	closed bool
}

func (c *closeTrackingReader) Close() error {
	c.closed = true
	return nil
}

func TestStreamCloseDelegates(t *testing.T) {
	cr := &closeTrackingReader{Reader: bytes.NewReader(nil)}
	s := bytesource.NewStream(cr, "test")
	require.True(t, s.Close())
	require.True(t, cr.closed)
}
