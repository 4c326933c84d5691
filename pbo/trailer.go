// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

package pbo

import (
	"bytes"
	"crypto/sha1" //nolint:gosec // Trailer format requires SHA1.
	"fmt"
	"io"
)

// Trailer returns the 20-byte trailer hash when present.
func (a *Archive) Trailer() ([shaSize]byte, bool) {
	return a.layout.trailer, a.layout.hasTrailer
}

// VerifyTrailer hashes every byte before the trailer and compares it with the stored digest.
func (a *Archive) VerifyTrailer() error {
	if err := a.CheckOpen(); err != nil {
		return err
	}
	if !a.layout.hasTrailer {
		return ErrNoTrailer
	}

	primary := a.Primary()
	sum, err := hashPrefixSHA1(primary, primary.MaxOffset()-headerSize)
	if err != nil {
		return fmt.Errorf("hash content: %w", err)
	}

	if !bytes.Equal(sum, a.layout.trailer[:]) {
		return fmt.Errorf("%w: %x != %x", ErrTrailerHashMismatch, sum, a.layout.trailer[:])
	}

	return nil
}

// hashPrefixSHA1 calculates SHA1 over first n bytes of ra.
func hashPrefixSHA1(ra io.ReaderAt, n int64) ([]byte, error) {
	h := sha1.New() //nolint:gosec // Trailer format requires SHA1.
	if _, err := io.Copy(h, io.NewSectionReader(ra, 0, n)); err != nil {
		return nil, err
	}

	return h.Sum(nil), nil
}
