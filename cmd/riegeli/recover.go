// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"

	"github.com/grailbio/riegeli/bytesource"
	"github.com/grailbio/riegeli/errors"
	"github.com/grailbio/riegeli/file"
	"github.com/grailbio/riegeli/log"
	"github.com/grailbio/riegeli/records"
	"github.com/urfave/cli/v2"
)

func recoverCommand() *cli.Command {
	return &cli.Command{
		Name:      "recover",
		Usage:     "salvage the decoded payload of every chunk SRC readable, skipping corrupted ones, and concatenate them into DST",
		ArgsUsage: "SRC DST",
		Action:    recoverAction,
	}
}

// recoverAction does not attempt to re-emit a valid riegeli/records
// stream: this package has no public Writer (see records package
// doc), so there is no way to re-frame the chunks it salvages. What
// it can do, and what it does, is concatenate every payload it can
// still read, in order, dropping only the corrupted stretches.
func recoverAction(c *cli.Context) (err error) {
	if c.Args().Len() != 2 {
		return fail("recover: SRC and DST arguments are required")
	}
	srcPath, dstPath := c.Args().Get(0), c.Args().Get(1)
	ctx := context.Background()

	srcReader, err := bytesource.OpenFile(ctx, srcPath)
	if err != nil {
		return fail("recover %s: %s", srcPath, err)
	}
	r := records.NewOwnedChunkReader(srcReader)
	defer r.Close()

	dst, err := file.Create(ctx, dstPath)
	if err != nil {
		return fail("recover: create %s: %s", dstPath, err)
	}
	defer errors.CleanUpCtx(ctx, dst.Close, &err)
	w := dst.Writer(ctx)

	var chunk records.Chunk
	numChunks, numSkipped := 0, 0
	for {
		for r.ReadChunk(&chunk) {
			if _, werr := w.Write(chunk.Data); werr != nil {
				return fail("recover: write %s: %s", dstPath, werr)
			}
			numChunks++
		}
		if r.Healthy() {
			break
		}
		var skipped records.SkippedRegion
		if !r.Recover(&skipped) {
			log.Error.Printf("recover %s: giving up, unrecoverable: %s", srcPath, r.Err())
			break
		}
		numSkipped++
		log.Error.Printf("recover %s: skipped corrupted region %s", srcPath, skipped)
	}
	log.Info.Printf("recover %s -> %s: %d chunks salvaged, %d region(s) skipped", srcPath, dstPath, numChunks, numSkipped)
	return nil
}
