// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

package gameres

import (
	"fmt"
	"hash/fnv"
	"path"
	"strconv"
	"strings"
	"unicode"
)

// maxSanitizedSegmentLen limits one path segment to common filesystem-safe length.
const maxSanitizedSegmentLen = 240

// reservedDeviceNames contains case-insensitive reserved Windows device names.
var reservedDeviceNames = map[string]struct{}{
	"aux": {}, "con": {}, "nul": {}, "prn": {}, "clock$": {},
	"com1": {}, "com2": {}, "com3": {}, "com4": {}, "com5": {},
	"com6": {}, "com7": {}, "com8": {}, "com9": {},
	"lpt1": {}, "lpt2": {}, "lpt3": {}, "lpt4": {}, "lpt5": {},
	"lpt6": {}, "lpt7": {}, "lpt8": {}, "lpt9": {},
}

// SanitizePath rewrites one entry name to deterministic filesystem-safe slash-separated form.
func SanitizePath(name string) (string, error) {
	normalized := NormalizePath(name)
	if normalized == "" {
		return "", nil
	}

	sanitized := sanitizeRelativePath(normalized)
	if _, err := normalizeExtractEntryPath(sanitized); err != nil {
		return "", err
	}

	return sanitized, nil
}

// sanitizeEntryNames rewrites entry names to unique filesystem-safe paths.
func sanitizeEntryNames(entries []Entry) ([]Entry, error) {
	out := make([]Entry, len(entries))
	used := make(map[string]struct{}, len(entries))

	for i := range entries {
		relative := strings.ReplaceAll(entries[i].Name, `\`, `/`)
		if normalized, err := normalizeExtractEntryPath(entries[i].Name); err == nil {
			relative = normalized
		}

		sanitized, err := makeSanitizedPathUnique(sanitizeRelativePath(relative), used)
		if err != nil {
			return nil, fmt.Errorf("sanitize path %s: %w", entries[i].Name, err)
		}

		out[i] = entries[i]
		out[i].Name = sanitized
	}

	return out, nil
}

// sanitizeRelativePath sanitizes each segment of a slash-separated path; ".." segments are neutralized.
func sanitizeRelativePath(relative string) string {
	parts := strings.Split(relative, "/")
	sanitized := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" || part == "." {
			continue
		}

		sanitized = append(sanitized, sanitizePathSegment(part))
	}
	if len(sanitized) == 0 {
		return "_"
	}

	return strings.Join(sanitized, "/")
}

// sanitizePathSegment sanitizes one path segment for broad filesystem compatibility.
func sanitizePathSegment(segment string) string {
	var b strings.Builder
	b.Grow(len(segment))
	for _, r := range segment {
		if unicode.IsControl(r) || r == '\uFFFD' || strings.ContainsRune(`<>:"/\|?*`, r) {
			b.WriteByte('_')
			continue
		}

		b.WriteRune(r)
	}

	sanitized := strings.TrimRight(b.String(), ". ")
	if sanitized == "" {
		return "_"
	}

	base := strings.ToLower(sanitized)
	if dot := strings.IndexByte(base, '.'); dot >= 0 {
		base = base[:dot]
	}
	if _, reserved := reservedDeviceNames[base]; reserved {
		sanitized = "_" + sanitized
	}

	return shortenSegmentDeterministic(sanitized, maxSanitizedSegmentLen)
}

// makeSanitizedPathUnique resolves case-insensitive collisions with a "~N" suffix.
func makeSanitizedPathUnique(value string, used map[string]struct{}) (string, error) {
	key := strings.ToLower(value)
	if _, exists := used[key]; !exists {
		used[key] = struct{}{}
		return value, nil
	}

	dir := path.Dir(value)
	ext := path.Ext(value)
	base := strings.TrimSuffix(path.Base(value), ext)
	for n := 2; n < 1_000_000; n++ {
		candidate := base + "~" + strconv.Itoa(n) + ext
		if dir != "." {
			candidate = dir + "/" + candidate
		}

		candidateKey := strings.ToLower(candidate)
		if _, exists := used[candidateKey]; exists {
			continue
		}

		used[candidateKey] = struct{}{}
		return candidate, nil
	}

	return "", ErrInvalidExtractPath
}

// shortenSegmentDeterministic shortens a long segment keeping a hash of the full value.
func shortenSegmentDeterministic(value string, maxLen int) string {
	if len(value) <= maxLen {
		return value
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(value))
	hashPart := fmt.Sprintf("~%08x", h.Sum32())

	return value[:maxLen-len(hashPart)] + hashPart
}
