// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

package crypt

import (
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/blowfish"
)

// BlowfishBlockSize is the Blowfish block size in bytes.
const BlowfishBlockSize = blowfish.BlockSize

// leBlowfish runs Blowfish over blocks holding two little-endian 32-bit halves.
// golang.org/x/crypto/blowfish reads halves big-endian, so each half is
// byte-swapped around the cipher call.
type leBlowfish struct {
	c *blowfish.Cipher
}

// NewBlowfish returns a Blowfish block cipher operating on little-endian words.
func NewBlowfish(key []byte) (cipher.Block, error) {
	c, err := blowfish.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("blowfish init: %w", err)
	}

	return &leBlowfish{c: c}, nil
}

// BlockSize implements cipher.Block.
func (b *leBlowfish) BlockSize() int {
	return BlowfishBlockSize
}

// Encrypt implements cipher.Block.
func (b *leBlowfish) Encrypt(dst, src []byte) {
	var buf [BlowfishBlockSize]byte
	swapHalves(buf[:], src)
	b.c.Encrypt(buf[:], buf[:])
	swapHalves(dst, buf[:])
}

// Decrypt implements cipher.Block.
func (b *leBlowfish) Decrypt(dst, src []byte) {
	var buf [BlowfishBlockSize]byte
	swapHalves(buf[:], src)
	b.c.Decrypt(buf[:], buf[:])
	swapHalves(dst, buf[:])
}

// swapHalves reverses byte order inside both 32-bit halves of one block.
func swapHalves(dst, src []byte) {
	_ = src[7]
	_ = dst[7]
	dst[0], dst[1], dst[2], dst[3], dst[4], dst[5], dst[6], dst[7] =
		src[3], src[2], src[1], src[0], src[7], src[6], src[5], src[4]
}

// DecryptECB decrypts every whole block of data in place.
// Trailing bytes shorter than one block are left untouched.
func DecryptECB(block cipher.Block, data []byte) {
	bs := block.BlockSize()
	for i := 0; i+bs <= len(data); i += bs {
		block.Decrypt(data[i:i+bs], data[i:i+bs])
	}
}

// EncryptECB encrypts every whole block of data in place.
func EncryptECB(block cipher.Block, data []byte) {
	bs := block.BlockSize()
	for i := 0; i+bs <= len(data); i += bs {
		block.Encrypt(data[i:i+bs], data[i:i+bs])
	}
}
