// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

package gameres

import (
	"path"
	"strings"

	"github.com/woozymasta/pathrules"
)

// Entry content types derived from file name extensions.
const (
	TypeImage   = "image"
	TypeAudio   = "audio"
	TypeVideo   = "video"
	TypeScript  = "script"
	TypeArchive = "archive"
)

// typeByExtension maps lower-case extensions to entry content types.
var typeByExtension = map[string]string{
	".png":  TypeImage,
	".bmp":  TypeImage,
	".jpg":  TypeImage,
	".jpeg": TypeImage,
	".tga":  TypeImage,
	".dwq":  TypeImage,
	".ogg":  TypeAudio,
	".wav":  TypeAudio,
	".vaw":  TypeAudio,
	".wgq":  TypeAudio,
	".avi":  TypeVideo,
	".mpg":  TypeVideo,
	".mpeg": TypeVideo,
	".wmv":  TypeVideo,
	".sc":   TypeScript,
	".txt":  TypeScript,
	".paz":  TypeArchive,
	".pbo":  TypeArchive,
}

// Entry is one logical file record inside a container.
type Entry struct {
	// Name is the entry path as stored in the index.
	Name string `json:"name" yaml:"name"`
	// Type is content type derived from the name or the archive category.
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
	// Offset is position in the logical (possibly multi-volume) address space.
	Offset int64 `json:"offset" yaml:"offset"`
	// Size is on-disk payload size in bytes.
	Size uint32 `json:"size" yaml:"size"`
	// AlignedSize is on-disk footprint including padding; never below Size.
	AlignedSize uint32 `json:"aligned_size" yaml:"aligned_size"`
	// UnpackedSize is plaintext size after decompression.
	UnpackedSize uint32 `json:"unpacked_size,omitempty" yaml:"unpacked_size,omitempty"`
	// IsPacked reports whether payload is compressed.
	IsPacked bool `json:"is_packed,omitempty" yaml:"is_packed,omitempty"`
	// Key is an optional entry-specific cipher key.
	Key []byte `json:"-" yaml:"-"`
}

// NewEntry returns an entry named name with its type derived from the extension.
func NewEntry(name string) Entry {
	return Entry{Name: name, Type: EntryType(name)}
}

// EntryType returns content type for name, or empty string when unknown.
func EntryType(name string) string {
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(name, `\`, `/`)))
	return typeByExtension[ext]
}

// CheckPlacement reports whether the entry fits the address space of maxOffset bytes.
func (e *Entry) CheckPlacement(maxOffset int64) bool {
	if e.Size > e.AlignedSize {
		return false
	}
	if e.Offset < 0 || e.Offset > maxOffset {
		return false
	}

	return int64(e.AlignedSize) <= maxOffset-e.Offset
}

// ExtractedSize returns expected plaintext size of the entry.
func (e *Entry) ExtractedSize() int64 {
	if e.IsPacked && e.UnpackedSize != 0 {
		return int64(e.UnpackedSize)
	}

	return int64(e.Size)
}

// ExtractOptions configures Extract behavior.
type ExtractOptions struct {
	// OnEntryDone is called after one entry is fully written to disk.
	OnEntryDone func(entry Entry, written int64, outputPath string) `json:"-" yaml:"-"`
	// FileMode controls output file creation policy.
	FileMode ExtractFileMode `json:"file_mode,omitempty" yaml:"file_mode,omitempty"`
	// Entries limits extraction to selected entries; nil means the whole directory.
	Entries []Entry `json:"-" yaml:"-"`
	// Filter defines ordered path rules selecting entries to extract; empty means all.
	Filter []pathrules.Rule `json:"filter,omitempty" yaml:"filter,omitempty"`
	// FilterMatcherOptions control filter rule matching.
	FilterMatcherOptions pathrules.MatcherOptions `json:"filter_matcher_options,omitzero" yaml:"filter_matcher_options,omitzero"`
	// MaxWorkers is number of extraction workers (zero means GOMAXPROCS).
	MaxWorkers int `json:"max_workers,omitempty" yaml:"max_workers,omitempty"`
	// RawNames disables default path sanitization during extract.
	RawNames bool `json:"raw_names,omitempty" yaml:"raw_names,omitempty"`
}

// ExtractFileMode controls output file open behavior during extraction.
type ExtractFileMode string

// Output file creation policies for extraction.
const (
	// ExtractFileModeAuto first tries create-only, then falls back to truncate for existing files.
	ExtractFileModeAuto ExtractFileMode = "auto"
	// ExtractFileModeTruncate opens existing files with truncate and creates missing files.
	ExtractFileModeTruncate ExtractFileMode = "truncate"
	// ExtractFileModeCreateOnly creates files only when absent and fails on existing files.
	ExtractFileModeCreateOnly ExtractFileMode = "create_only"
)

// applyDefaults fills zero-valued extract options with defaults.
func (opts *ExtractOptions) applyDefaults() {
	if opts.FileMode == "" {
		opts.FileMode = ExtractFileModeAuto
	}

	if opts.FilterMatcherOptions == (pathrules.MatcherOptions{}) {
		opts.FilterMatcherOptions = pathrules.MatcherOptions{
			CaseInsensitive: true,
			DefaultAction:   pathrules.ActionExclude,
		}
	}

	if opts.FilterMatcherOptions.DefaultAction == pathrules.ActionUnknown {
		opts.FilterMatcherOptions.DefaultAction = pathrules.ActionExclude
	}
}
