// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

/*
Package pbo decodes PBO packed banks (Arma / DayZ) as a gameres archive format.

A PBO starts with a 21-byte "Vers" header record followed by key/value header
strings, an entry table terminated by an empty record, and the entry payloads.
Entries flagged "Cprs" are LZSS compressed. An optional trailer of one zero
byte and a SHA1 digest closes the file.

The decoder registers under the fixed first-four-byte signature of the header
record:

	reg := gameres.NewArchiveRegistry(logger)
	reg.Register(pbo.New(pbo.Options{}))

	arc, err := gameres.OpenArchive(reg, nil, "addons/data.pbo")
	if err != nil {
		return err
	}
	defer arc.Close()

	for _, e := range arc.Entries() {
		fmt.Println(e.Name, e.ExtractedSize())
	}

Entry payload offsets are resolved per [OffsetMode]. Sequential mode, the
default, derives them from entry order the way the game does; the stored modes
trust offsets written by third-party packers.
*/
package pbo
