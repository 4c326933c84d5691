// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

package pbo

import "errors"

// Sentinel errors for PBO archives. Use errors.Is in callers.
var (
	// ErrInvalidHeader means the PBO file is missing or has a bad header.
	ErrInvalidHeader = errors.New("invalid PBO file: missing or bad header")
	// ErrFileNameTooLong means the entry filename exceeds the maximum length.
	ErrFileNameTooLong = errors.New("entry filename exceeds maximum length")
	// ErrSizeOverflow means the size exceeds the uint32 or 4 GiB PBO limit.
	ErrSizeOverflow = errors.New("size exceeds uint32 or 4 GiB PBO limit")
	// ErrInvalidEntryOffset means one or more entry offsets are malformed for selected offset policy.
	ErrInvalidEntryOffset = errors.New("invalid entry offset")
	// ErrNoTrailer means the archive carries no SHA1 trailer.
	ErrNoTrailer = errors.New("archive has no SHA1 trailer")
	// ErrTrailerHashMismatch means the trailer hash mismatch.
	ErrTrailerHashMismatch = errors.New("trailer hash mismatch")
	// ErrUnsupportedSignVersion means the signature hash policy version is unknown.
	ErrUnsupportedSignVersion = errors.New("unsupported signature version")
	// ErrUnsupportedGameType means the game has no v3 signature hash policy.
	ErrUnsupportedGameType = errors.New("unsupported game type for v3 signature")
)
