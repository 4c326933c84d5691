// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

/*
Package paz decodes Musica engine PAZ resource archives.

A PAZ archive keeps a Blowfish-encrypted index, optionally whitened with a
single-byte XOR key stored in the top byte of the index size field. Entry
payloads are encrypted with the scheme data key and, for newer schemes, an
additional per-entry RC4 layer keyed by a password derived from the entry
name. Video archives ("mov.paz") use a 256-byte substitution key instead.
Archives larger than one file continue in volumes named "<name>.pazA",
"<name>.pazB" and so on.

Key material is not part of the format. It comes from a SchemeSource, usually
a Catalog loaded from YAML or JSONC:

	catalog, err := paz.LoadCatalog("schemes.yaml")
	if err != nil {
	    return err
	}
	reg := gameres.NewArchiveRegistry(nil)
	reg.Register(paz.New(paz.Options{Schemes: catalog, Title: "Some Title"}))
	arc, err := gameres.OpenArchive(reg, nil, "data/bgm.paz")
	if err != nil {
	    return err
	}
	defer arc.Close()
*/
package paz
