// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package records

import (
	"fmt"

	"github.com/grailbio/riegeli/errors"
)

func integrityErrorf(op string, pos Position, format string, args ...interface{}) error {
	return errors.E(errors.Integrity, fmt.Sprintf("%s at %d: %s", op, pos, fmt.Sprintf(format, args...)))
}

func invalidErrorf(op string, format string, args ...interface{}) error {
	return errors.E(errors.Invalid, fmt.Sprintf("%s: %s", op, fmt.Sprintf(format, args...)))
}
