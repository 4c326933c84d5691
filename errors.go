// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

package gameres

import "errors"

// Sentinel errors for container operations. Use errors.Is in callers.
var (
	// ErrUnknownFormat means no registered decoder recognized the source.
	// Probe itself reports this as a nil result; only convenience helpers return it.
	ErrUnknownFormat = errors.New("unknown container format")
	// ErrMalformedIndex means the container matched a format but its index is corrupt.
	ErrMalformedIndex = errors.New("malformed container index")
	// ErrUnknownEncryptionScheme means no key material could be resolved for the container.
	ErrUnknownEncryptionScheme = errors.New("unknown encryption scheme")
	// ErrVolume means a declared or discovered volume could not be opened.
	ErrVolume = errors.New("volume is not accessible")
	// ErrUnsupported means a write or encode operation was requested on a read-only format.
	ErrUnsupported = errors.New("operation is not supported")
	// ErrNilReader means the reader or view is nil.
	ErrNilReader = errors.New("reader is nil")
	// ErrEntryNotFound means the entry is not found.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrClosed means the archive or view is already closed.
	ErrClosed = errors.New("archive or view already closed")
	// ErrOutOfRange means a requested byte range lies outside of the view.
	ErrOutOfRange = errors.New("byte range out of view bounds")
	// ErrInvalidExtractPath means archive entry path is invalid for extraction destination.
	ErrInvalidExtractPath = errors.New("invalid extract path")
	// ErrInvalidFilterPattern means one or more extract filter rules are invalid.
	ErrInvalidFilterPattern = errors.New("invalid extract filter rules")
)

// IsHard reports whether err confirms the format but forbids opening it.
// Hard errors cross the registry boundary; everything else is "not mine".
func IsHard(err error) bool {
	return errors.Is(err, ErrMalformedIndex) ||
		errors.Is(err, ErrUnknownEncryptionScheme) ||
		errors.Is(err, ErrVolume)
}
