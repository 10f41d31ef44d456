// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Command riegeli inspects and repairs riegeli/records chunk streams:
// cat dumps chunk payloads, validate walks a file checking framing
// and logs any corrupted regions (with a progress bar on a terminal),
// and recover writes the payloads of every readable chunk, in order,
// to a new path while skipping over any corrupted regions it finds.
// The output of recover is the concatenated payloads, not a
// riegeli/records stream.
package main

import (
	"fmt"
	"os"

	"github.com/grailbio/riegeli/errors"
	"github.com/grailbio/riegeli/log"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "riegeli",
		Usage: "inspect and repair riegeli/records chunk streams",
		Commands: []*cli.Command{
			catCommand(),
			validateCommand(),
			recoverCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Error.Printf("riegeli: %s", err)
		if e, ok := err.(*errors.Error); ok && e.Severity == errors.Fatal {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func fail(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
