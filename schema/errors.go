/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package schema

import "errors"

// Sentinel errors for token document operations.
var (
	// ErrUnknownVersion indicates an unrecognized schema version.
	ErrUnknownVersion = errors.New("unknown schema version")

	// ErrInvalidDocument indicates a document that could not be parsed at all.
	ErrInvalidDocument = errors.New("invalid token document")

	// ErrInvalidReference indicates a token reference is malformed.
	ErrInvalidReference = errors.New("invalid token reference")

	// ErrCircularReference indicates a circular reference was detected.
	ErrCircularReference = errors.New("circular reference detected")

	// ErrUnresolvedReference indicates a reference could not be resolved.
	ErrUnresolvedReference = errors.New("unresolved token reference")

	// ErrMissingManifest indicates a bundle build was requested without a manifest.
	ErrMissingManifest = errors.New("no manifest found")
)
