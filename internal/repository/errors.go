// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// booking service to distinguish between different failure scenarios
// without inspecting driver-specific errors.
package repository

import "errors"

// ErrOverlap is returned when an insert or update would produce a
// booking whose interval overlaps an existing booking on the same
// facility. The service layer translates this into its conflict error.
var ErrOverlap = errors.New("overlapping booking")

// ErrDuplicate is returned when a unique constraint would be violated,
// such as registering a client or user with an email that already
// exists.
var ErrDuplicate = errors.New("duplicate record")
