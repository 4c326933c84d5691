// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

package crypt

// TableSize is the length of a byte substitution table.
const TableSize = 256

// InvertTable turns a lookup-by-output table into a lookup-by-input one:
// out[inverse[i]] = i for every i.
func InvertTable(inverse *[TableSize]byte) *[TableSize]byte {
	var out [TableSize]byte
	for i := range inverse {
		out[inverse[i]] = byte(i)
	}

	return &out
}

// Substitute replaces every byte of data in place with table[b].
func Substitute(table *[TableSize]byte, data []byte) {
	for i, b := range data {
		data[i] = table[b]
	}
}

// MixKey returns a table-sized key where out[i] = base[i] ^ key[i % len(key)].
// An empty key returns a copy of base.
func MixKey(base *[TableSize]byte, key []byte) []byte {
	out := make([]byte, TableSize)
	for i := range out {
		out[i] = base[i]
		if len(key) > 0 {
			out[i] ^= key[i%len(key)]
		}
	}

	return out
}
