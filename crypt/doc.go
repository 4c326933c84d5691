// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

// Package crypt provides the cipher primitives used by container decoders:
// a little-endian Blowfish block adapter, an RC4 keystream that can skip and
// emit raw keystream blocks, the CRC-32 derived skip count and byte
// substitution table helpers.
package crypt
