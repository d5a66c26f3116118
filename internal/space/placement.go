// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Arcade Contributors

package space

import (
	"github.com/samber/oops"

	"github.com/arcadelabs/arcade/internal/catalog"
	"github.com/arcadelabs/arcade/pkg/errutil"
)

// OutOfBoundsMessage is the caller-facing message for a placement outside
// the space bounds. Part of the tested external contract.
const OutOfBoundsMessage = "element lies outside the dimensions"

// ValidatePlacement checks that (x, y) lies within [0, W) x [0, H) of the
// space's declared dimensions. Overlapping placements are legal; only bounds
// are enforced.
func ValidatePlacement(dims catalog.Dimensions, x, y int) error {
	if !dims.Contains(x, y) {
		return oops.Code("PLACEMENT_OUT_OF_BOUNDS").
			With("x", x).
			With("y", y).
			With("dimensions", dims.String()).
			Wrap(errutil.Validation(OutOfBoundsMessage))
	}
	return nil
}
