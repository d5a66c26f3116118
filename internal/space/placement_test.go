// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Arcade Contributors

package space_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcadelabs/arcade/internal/catalog"
	"github.com/arcadelabs/arcade/internal/space"
	"github.com/arcadelabs/arcade/pkg/errutil"
)

func TestValidatePlacement(t *testing.T) {
	dims, err := catalog.ParseDimensions("100x200")
	require.NoError(t, err)

	tests := []struct {
		name string
		x, y int
		ok   bool
	}{
		{"origin", 0, 0, true},
		{"far corner", 99, 199, true},
		{"interior", 50, 100, true},
		{"x at width", 100, 0, false},
		{"y at height", 0, 200, false},
		{"negative x", -1, 0, false},
		{"negative y", 0, -1, false},
		{"both out", 1000, 1000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := space.ValidatePlacement(dims, tt.x, tt.y)
			if tt.ok {
				require.NoError(t, err)
				return
			}
			errutil.AssertKind(t, err, errutil.KindValidation)
			assert.Equal(t, space.OutOfBoundsMessage, errutil.UserMessage(err, ""))
		})
	}
}
