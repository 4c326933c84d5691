// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

package pbo

import (
	"crypto/sha1" //nolint:gosec // Signature format requires SHA1.
	"fmt"
	"io"
	"sort"
	"strings"
)

// SignVersion is the signature hash policy version of a .bisign file.
type SignVersion uint32

// Supported signature hash policy versions.
const (
	// SignVersionV2 hashes every payload except a fixed list of binary extensions.
	SignVersionV2 SignVersion = 2
	// SignVersionV3 hashes only script and config payloads, per game.
	SignVersionV3 SignVersion = 3
)

// GameType selects the v3 extension allow-list.
type GameType string

// Supported game types.
const (
	GameTypeArma GameType = "arma"
	GameTypeDayZ GameType = "dayz"
)

// HashSet holds the three digests a PBO signature is computed over.
type HashSet struct {
	// Hash1 is SHA1 of the archive without its trailer.
	Hash1 [shaSize]byte `json:"hash1" yaml:"hash1"`
	// Hash2 combines Hash1, the name hash and the prefix.
	Hash2 [shaSize]byte `json:"hash2" yaml:"hash2"`
	// Hash3 combines the file hash, the name hash and the prefix.
	Hash3 [shaSize]byte `json:"hash3" yaml:"hash3"`
}

// HashSet computes signature digests for the archive. Payloads are hashed
// as stored, without decompression.
func (a *Archive) HashSet(version SignVersion, game GameType) (HashSet, error) {
	var hs HashSet
	if err := a.CheckOpen(); err != nil {
		return hs, err
	}

	filter, err := signFilter(version, game)
	if err != nil {
		return hs, err
	}

	primary := a.Primary()
	size := primary.MaxOffset()
	if a.layout.hasTrailer {
		size -= headerSize
	}

	hash1, err := hashPrefixSHA1(primary, size)
	if err != nil {
		return hs, fmt.Errorf("hash1: %w", err)
	}

	entries := signedEntries(a.layout.entries)
	names := nameHash(entries)

	files := sha1.New() //nolint:gosec // Signature format requires SHA1.
	hashed := false
	for _, e := range entries {
		if !filter(fileExt(e.Path)) {
			continue
		}

		r, err := primary.Section(int64(e.Offset), int64(e.DataSize))
		if err != nil {
			return hs, fmt.Errorf("file hash %s: %w", e.Path, err)
		}
		if _, err := io.Copy(files, r); err != nil {
			return hs, fmt.Errorf("file hash %s: %w", e.Path, err)
		}

		hashed = true
	}
	if !hashed {
		if version == SignVersionV2 {
			_, _ = io.WriteString(files, "nothing")
		} else {
			_, _ = io.WriteString(files, "gnihton")
		}
	}

	prefix := a.Prefix()
	copy(hs.Hash1[:], hash1)
	copy(hs.Hash2[:], combine(prefix, hash1, names))
	copy(hs.Hash3[:], combine(prefix, files.Sum(nil), names))

	return hs, nil
}

// signedEntries drops empty records.
func signedEntries(entries []EntryInfo) []EntryInfo {
	out := make([]EntryInfo, 0, len(entries))
	for _, e := range entries {
		if e.Path != "" && e.DataSize != 0 {
			out = append(out, e)
		}
	}

	return out
}

// nameHash is SHA1 over sorted, de-duplicated lower-case backslash names.
func nameHash(entries []EntryInfo) []byte {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, signName(e.Path))
	}
	sort.Strings(names)

	h := sha1.New() //nolint:gosec // Signature format requires SHA1.
	prev := ""
	for _, n := range names {
		if n != prev {
			_, _ = io.WriteString(h, n)
			prev = n
		}
	}

	return h.Sum(nil)
}

// signName lower-cases ASCII and turns "/" into "\".
func signName(name string) string {
	b := []byte(name)
	for i, c := range b {
		switch {
		case c == '/':
			b[i] = '\\'
		case c >= 'A' && c <= 'Z':
			b[i] = c + 'a' - 'A'
		}
	}

	return string(b)
}

// combine hashes parts followed by the prefix with a trailing backslash.
func combine(prefix string, parts ...[]byte) []byte {
	h := sha1.New() //nolint:gosec // Signature format requires SHA1.
	for _, p := range parts {
		_, _ = h.Write(p)
	}
	if prefix != "" {
		_, _ = io.WriteString(h, prefix)
		if !strings.HasSuffix(prefix, `\`) {
			_, _ = io.WriteString(h, `\`)
		}
	}

	return h.Sum(nil)
}

// fileExt returns the lower-case extension after the last separator.
func fileExt(name string) string {
	sep := strings.LastIndexAny(name, `/\`)
	dot := strings.LastIndexByte(name, '.')
	if dot <= sep || dot+1 >= len(name) {
		return ""
	}

	return strings.ToLower(name[dot+1:])
}

// signFilter returns the extension predicate of a hash policy.
func signFilter(version SignVersion, game GameType) (func(ext string) bool, error) {
	switch version {
	case SignVersionV2:
		return func(ext string) bool { return !v2Excluded[ext] }, nil
	case SignVersionV3:
		switch GameType(strings.ToLower(string(game))) {
		case GameTypeArma:
			return func(ext string) bool { return armaV3Allowed[ext] }, nil
		case GameTypeDayZ:
			return func(ext string) bool { return dayzV3Allowed[ext] }, nil
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedGameType, game)
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSignVersion, version)
	}
}

var (
	v2Excluded = extSet("paa", "jpg", "p3d", "tga", "rvmat", "lip", "ogg", "wss", "png", "rtm", "pac", "fxy", "wrp")

	armaV3Allowed = extSet("sqf", "inc", "bikb", "ext", "fsm", "sqm", "hpp", "cfg", "sqs", "h", "cpp")

	dayzV3Allowed = extSet("bikb", "c", "ext", "hpp", "cfg", "h", "inc")
)

func extSet(exts ...string) map[string]bool {
	out := make(map[string]bool, len(exts))
	for _, e := range exts {
		out[e] = true
	}

	return out
}
