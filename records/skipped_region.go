// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package records

import "fmt"

// SkippedRegion is the byte range [Begin, End) that Recover skipped
// over because it could not be interpreted as valid chunk framing.
type SkippedRegion struct {
	Begin Position
	End   Position
}

func (s SkippedRegion) String() string {
	return fmt.Sprintf("[%d, %d)", s.Begin, s.End)
}
