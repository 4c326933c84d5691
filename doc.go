// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

/*
Package gameres reads game resource containers through one decoder registry.
Every container is addressed as a read-only View over a file; decoders are
registered under the first four bytes they expect and probed in
declaration order, with a wildcard bucket for formats without a fixed
magic number. Opening an entry builds a lazy Pipeline of byte transforms
(whitening, block and stream ciphers, truncation, inflation) over the
archive's possibly multi-volume address space.

Probing returns nil for unrecognized input. Decoder failures are treated
as "not mine" except ErrMalformedIndex, ErrUnknownEncryptionScheme and
ErrVolume (see IsHard), which reach the caller when no other decoder
accepts the input.

# Opening

Use the default registries from the catalog package:

	reg := catalog.Archives(catalog.Options{Logger: logger})
	arc, err := gameres.OpenArchive(reg, nil, "data/bgm.paz")
	if err != nil {
	    return err
	}
	defer arc.Close()

	for _, e := range arc.Entries() {
	    rc, err := arc.OpenEntry(e)
	    if err != nil {
	        return err
	    }
	    // stream plaintext
	    _ = rc.Close()
	}

A nil afero.Fs means the host filesystem; pass afero.NewMemMapFs() or any
other afero filesystem to read from elsewhere. Spanning volumes named
after the primary file with "A", "B", ... suffixes are discovered on the
same filesystem.

# Extracting

Extract selected entries to a directory with parallel workers:

	err := gameres.Extract(ctx, arc, "out/", gameres.ExtractOptions{
	    MaxWorkers: 4,
	    Filter: []pathrules.Rule{
	        {Action: pathrules.ActionInclude, Pattern: "sound/**"},
	        {Action: pathrules.ActionExclude, Pattern: "*.wav"},
	    },
	})

Path sanitization is enabled by default during extraction.
Set RawNames to keep stored names; traversal is still rejected.

# Custom formats

Implement Format[Archive] (or Format[*audio.Sound] for sounds) and
register it; embed BaseArchive for directory and volume bookkeeping:

	type myArchive struct{ *gameres.BaseArchive }

	func (a *myArchive) OpenEntry(e gameres.Entry) (io.ReadCloser, error) {
	    src, err := a.Volumes().Range(e.Offset, int64(e.AlignedSize))
	    if err != nil {
	        return nil, err
	    }
	    return gameres.Pipeline{}.Then(gameres.Limit(int64(e.Size))).Open(src)
	}
*/
package gameres
