// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"os"

	"github.com/grailbio/riegeli/bytesource"
	"github.com/grailbio/riegeli/log"
	"github.com/grailbio/riegeli/records"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "walk a file checking chunk and block framing, reporting any corruption found",
		ArgsUsage: "PATH",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "quiet", Usage: "suppress the progress bar"},
		},
		Action: validateAction,
	}
}

// newScanProgressBar mirrors the dynamic progress bar used by the
// pack's other file-walking tools: a determinate bar once the source
// size is known, silent entirely when not attached to a terminal.
func newScanProgressBar(title string, total int64, quiet bool) (*mpb.Progress, *mpb.Bar) {
	var progress *mpb.Progress
	if !quiet && isatty.IsTerminal(os.Stdout.Fd()) {
		progress = mpb.New(mpb.WithWidth(64))
	} else {
		progress = mpb.New(mpb.WithWidth(64), mpb.WithOutput(nil))
	}
	bar := progress.AddBar(total,
		mpb.PrependDecorators(
			decor.Name(title, decor.WCSyncWidth),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.Percentage(decor.WC{W: 5}), "done"),
		),
	)
	return progress, bar
}

func validateAction(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fail("validate: exactly one PATH argument is required")
	}
	path := c.Args().Get(0)
	ctx := context.Background()

	src, err := bytesource.OpenFile(ctx, path)
	if err != nil {
		return fail("validate %s: %s", path, err)
	}
	r := records.NewOwnedChunkReader(src)
	defer r.Close()

	size, _ := r.Size()
	progress, bar := newScanProgressBar(path, int64(size), c.Bool("quiet"))

	var chunk records.Chunk
	numChunks, numRecords := 0, uint64(0)
	faults := 0
	lastPos := records.Position(0)
	for {
		for r.ReadChunk(&chunk) {
			numChunks++
			numRecords += chunk.Header.NumRecords
			bar.IncrInt64(int64(r.Pos() - lastPos))
			lastPos = r.Pos()
		}
		if r.Healthy() {
			break
		}
		faults++
		var skipped records.SkippedRegion
		if !r.Recover(&skipped) {
			bar.SetTotal(int64(size), true)
			progress.Wait()
			return fail("validate %s: unrecoverable corruption: %s", path, r.Err())
		}
		log.Error.Printf("validate %s: corrupted region %s", path, skipped)
		bar.IncrInt64(int64(r.Pos() - lastPos))
		lastPos = r.Pos()
	}
	bar.SetTotal(int64(size), true)
	progress.Wait()

	if faults == 0 {
		log.Info.Printf("validate %s: ok, %d chunks, %d records", path, numChunks, numRecords)
		return nil
	}
	return fail("validate %s: %d corrupted region(s) found (%d chunks, %d records recovered)", path, faults, numChunks, numRecords)
}
