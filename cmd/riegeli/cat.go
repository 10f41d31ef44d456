// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/grailbio/riegeli/bytesource"
	"github.com/grailbio/riegeli/log"
	"github.com/grailbio/riegeli/records"
	"github.com/urfave/cli/v2"
)

func catCommand() *cli.Command {
	return &cli.Command{
		Name:      "cat",
		Usage:     "dump chunk payloads to stdout",
		ArgsUsage: "PATH",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "recover",
				Usage: "skip past corrupted chunks instead of stopping at the first one",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "suppress the per-chunk summary line",
			},
		},
		Action: catAction,
	}
}

func catAction(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fail("cat: exactly one PATH argument is required")
	}
	path := c.Args().Get(0)
	ctx := context.Background()

	src, err := bytesource.OpenFile(ctx, path)
	if err != nil {
		return fail("cat %s: %s", path, err)
	}
	r := records.NewOwnedChunkReader(src)
	defer r.Close()

	quiet := c.Bool("quiet")
	allowRecover := c.Bool("recover")

	var chunk records.Chunk
	n := 0
	catOne := func() bool {
		start := r.Pos()
		if !r.ReadChunk(&chunk) {
			return false
		}
		if !quiet {
			fmt.Printf("chunk %d: pos=%d records=%d bytes=%d\n", n, start, chunk.Header.NumRecords, len(chunk.Data))
		}
		os.Stdout.Write(chunk.Data)
		n++
		return true
	}

	for catOne() {
	}
	if r.Healthy() {
		return nil
	}
	if !allowRecover {
		return fail("cat %s: %s (pass -recover to skip past it)", path, r.Err())
	}
	for {
		var skipped records.SkippedRegion
		if !r.Recover(&skipped) {
			return fail("cat %s: unrecoverable: %s", path, r.Err())
		}
		log.Error.Printf("cat %s: skipped corrupted region %s", path, skipped)
		for catOne() {
		}
		if r.Healthy() {
			return nil
		}
	}
}
