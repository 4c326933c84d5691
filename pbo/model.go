// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

package pbo

import (
	"io"
	"log/slog"

	"github.com/woozymasta/gameres"
)

const (
	headerSize = 21      // fixed PBO header size in bytes
	shaSize    = 20      // SHA1 digest size in trailer
	maxNameLen = 512     // max entry filename length
	maxPBOData = 1 << 32 // max addressable payload in classic PBO (4 GiB)
)

// MimeType is the PBO entry packing method.
type MimeType uint32

const (
	// MimeHeader marks the header record ("Vers").
	MimeHeader MimeType = 0x56657273
	// MimeCompress marks an LZSS compressed entry ("Cprs").
	MimeCompress MimeType = 0x43707273
	// MimeEncoded marks an encrypted entry ("Encr"); payload is served raw.
	MimeEncoded MimeType = 0x456e6372
	// MimeNil marks an uncompressed entry.
	MimeNil MimeType = 0x00000000
)

// Signature is the first four bytes of every PBO: an empty name followed by "sreV".
const Signature uint32 = 0x65727300

// EntryInfo is one raw entry table record.
type EntryInfo struct {
	// Path is the stored entry path.
	Path string `json:"path" yaml:"path"`
	// Offset is resolved absolute payload offset.
	Offset uint32 `json:"offset" yaml:"offset"`
	// DataSize is stored payload size.
	DataSize uint32 `json:"data_size" yaml:"data_size"`
	// OriginalSize is decompressed size for packed entries.
	OriginalSize uint32 `json:"original_size,omitempty" yaml:"original_size,omitempty"`
	// TimeStamp is stored modification time (unix seconds).
	TimeStamp uint32 `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	// MimeType is the packing method.
	MimeType MimeType `json:"mime_type,omitempty" yaml:"mime_type,omitempty"`
}

// IsCompressed reports whether entry payload is LZSS compressed.
func (e *EntryInfo) IsCompressed() bool {
	return e.MimeType == MimeCompress || (e.OriginalSize != 0 && e.DataSize < e.OriginalSize)
}

// entry converts the raw record into a container entry.
func (e *EntryInfo) entry() gameres.Entry {
	out := gameres.NewEntry(e.Path)
	out.Offset = int64(e.Offset)
	out.Size = e.DataSize
	out.AlignedSize = e.DataSize
	out.UnpackedSize = e.OriginalSize
	out.IsPacked = e.IsCompressed()
	return out
}

// HeaderPair is a key-value header string pair.
type HeaderPair struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// OffsetMode controls how payload offsets are resolved while reading.
type OffsetMode string

const (
	// OffsetModeSequential ignores stored offsets and derives them from entry order.
	OffsetModeSequential OffsetMode = "sequential"
	// OffsetModeStoredCompat tries stored offsets first and falls back to sequential.
	OffsetModeStoredCompat OffsetMode = "stored_compat"
	// OffsetModeStoredStrict requires stored offsets to be valid when present.
	OffsetModeStoredStrict OffsetMode = "stored_strict"
)

// Options configures the PBO decoder.
type Options struct {
	// Logger receives decoder diagnostics; nil discards them.
	Logger *slog.Logger `json:"-" yaml:"-"`
	// OffsetMode selects payload offset resolution policy.
	OffsetMode OffsetMode `json:"offset_mode,omitempty" yaml:"offset_mode,omitempty"`
	// EnableJunkFilter drops empty and unusable entries from the directory.
	EnableJunkFilter bool `json:"enable_junk_filter,omitempty" yaml:"enable_junk_filter,omitempty"`
}

// applyDefaults fills zero-valued options with defaults.
func (opts *Options) applyDefaults() {
	if opts.OffsetMode == "" {
		opts.OffsetMode = OffsetModeSequential
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
}
