//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/dynarec
//

package dynarec

import (
	"github.com/google/uuid"
)

// Generator produces fresh unique identifier for generated attributes.
// Implementations must be safe for concurrent use.
type Generator func() string

// NewID returns random (v4) UUID. It reads local entropy only, there is
// no shared counter between callers.
func NewID() string {
	return uuid.NewString()
}
