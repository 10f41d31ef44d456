// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bytesource_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/riegeli/bytesource"
	"github.com/grailbio/riegeli/file"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, data []byte) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "stream.riegeli")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestFileReadSeek(t *testing.T) {
	ctx := context.Background()
	path := writeTempFile(t, []byte("the quick brown fox"))

	r, err := bytesource.OpenFile(ctx, path)
	require.NoError(t, err)
	defer r.Close()

	buf := make([]byte, 3)
	require.True(t, r.Read(buf))
	require.Equal(t, "the", string(buf))

	require.True(t, r.SupportsRandomAccess())
	size, ok := r.Size()
	require.True(t, ok)
	require.Equal(t, bytesource.Position(19), size)

	require.True(t, r.Seek(10))
	require.True(t, r.Read(buf))
	require.Equal(t, "bro", string(buf))
}

func TestFileReadPastEnd(t *testing.T) {
	ctx := context.Background()
	path := writeTempFile(t, []byte("abc"))

	r, err := bytesource.OpenFile(ctx, path)
	require.NoError(t, err)
	defer r.Close()

	buf := make([]byte, 10)
	require.False(t, r.Read(buf))
}

func TestFileOpenMissing(t *testing.T) {
	ctx := context.Background()
	_, err := bytesource.OpenFile(ctx, filepath.Join(t.TempDir(), "missing.riegeli"))
	require.Error(t, err)
}

func TestFileCloseReleasesUnderlyingFile(t *testing.T) {
	ctx := context.Background()
	path := writeTempFile(t, []byte("x"))
	r, err := bytesource.OpenFile(ctx, path)
	require.NoError(t, err)
	require.True(t, r.Close())

	// The underlying file.File must really have been closed; reopening
	// and writing to the same path should still work.
	w, err := file.Create(ctx, path)
	require.NoError(t, err)
	require.NoError(t, w.Close(ctx))
}
