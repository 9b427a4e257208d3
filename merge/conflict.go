/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package merge

// ConflictKind classifies a merge conflict.
type ConflictKind string

const (
	// KindTypeMismatch indicates competing $type tags.
	KindTypeMismatch ConflictKind = "type-mismatch"

	// KindValueConflict indicates differing values replaced by the
	// overlay.
	KindValueConflict ConflictKind = "value-conflict"

	// KindGroupTokenConflict indicates a group on one side colliding
	// with a token on the other.
	KindGroupTokenConflict ConflictKind = "group-token-conflict"
)

// Winner identifies which side a conflict resolved to.
type Winner string

const (
	// WinnerOverlay indicates the overlay value was kept.
	WinnerOverlay Winner = "overlay"

	// WinnerBase indicates the base value was kept.
	WinnerBase Winner = "base"
)

// Conflict records one silently-resolved merge conflict, emitted only
// in safe mode.
type Conflict struct {
	// Path is the canonical dot path of the conflicting entry.
	Path string

	// Kind classifies the conflict.
	Kind ConflictKind

	// Base is the losing value.
	Base any

	// Overlay is the competing value.
	Overlay any

	// Winner identifies which side was kept.
	Winner Winner

	// Message describes the resolution.
	Message string
}

// String renders a conflict for reports.
func (c Conflict) String() string {
	return c.Path + ": " + string(c.Kind) + ": " + c.Message
}
