// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

package crypt

import (
	"crypto/rc4" //nolint:gosec // Container formats require RC4.
	"fmt"
	"hash/crc32"
)

// skipChunkSize bounds the scratch buffer used to advance the keystream.
const skipChunkSize = 4096

// Keystream is an RC4 keystream generator. It implements cipher.Stream and can
// additionally discard keystream bytes or emit them raw.
type Keystream struct {
	c *rc4.Cipher
}

// NewKeystream returns a keystream keyed by key (1 to 256 bytes).
func NewKeystream(key []byte) (*Keystream, error) {
	c, err := rc4.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("rc4 init: %w", err)
	}

	return &Keystream{c: c}, nil
}

// XORKeyStream implements cipher.Stream.
func (k *Keystream) XORKeyStream(dst, src []byte) {
	k.c.XORKeyStream(dst, src)
}

// Skip advances the keystream position by n bytes.
func (k *Keystream) Skip(n int) {
	var scratch [skipChunkSize]byte
	for n > 0 {
		chunk := min(n, len(scratch))
		clear(scratch[:chunk])
		k.c.XORKeyStream(scratch[:chunk], scratch[:chunk])
		n -= chunk
	}
}

// Block returns the next n keystream bytes.
func (k *Keystream) Block(n int) []byte {
	out := make([]byte, n)
	k.c.XORKeyStream(out, out)
	return out
}

// Checksum returns IEEE CRC-32 of data.
func Checksum(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// SkipRounds returns the keystream offset derived from key: bits 12..19 of its CRC-32.
func SkipRounds(key []byte) int {
	return int(Checksum(key)>>12) & 0xFF
}
