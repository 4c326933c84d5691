// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

package paz

import (
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/woozymasta/gameres"
	"github.com/woozymasta/gameres/crypt"
)

// Format identity.
const (
	Tag         = "PAZ"
	Description = "Musica engine resource archive"
	Extension   = ".paz"
)

// Index size field offsets.
const (
	indexOffsetV0 = 0x00
	indexOffsetV1 = 0x20
)

// KnownSignatures are first-four-byte values of titles with fixed headers.
// The wildcard bucket catches archives starting directly with the index size.
var KnownSignatures = []uint32{0x858F8493, 0x8F889395, 0x6E656465, gameres.WildcardSignature}

// audioCategories are archive categories whose entries default to audio.
var audioCategories = map[string]struct{}{
	"bgm": {}, "se": {}, "voice": {}, "pmbgm": {}, "pmse": {}, "pmvoice": {},
}

// videoCategories are archive categories using the substitution key cipher.
var videoCategories = map[string]struct{}{
	"mov": {},
}

// Options configures scheme resolution for PAZ archives.
type Options struct {
	// Schemes resolves schemes by signature or title.
	Schemes SchemeSource `json:"-" yaml:"-"`
	// Query is asked when Schemes has no answer.
	Query SchemeQuerier `json:"-" yaml:"-"`
	// TitleOf maps an archive path to a title; it wins over Title when it returns non-empty.
	TitleOf func(name string) string `json:"-" yaml:"-"`
	// Logger receives decoder diagnostics; nil discards them.
	Logger *slog.Logger `json:"-" yaml:"-"`
	// Title is the default title used for scheme lookup.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

// applyDefaults fills zero-valued options with defaults.
func (opts *Options) applyDefaults() {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
}

// Format is the PAZ archive decoder. It implements gameres.ArchiveFormat.
type Format struct {
	opts Options
}

// New returns a PAZ decoder.
func New(opts Options) *Format {
	opts.applyDefaults()
	return &Format{opts: opts}
}

// Tag implements gameres.ArchiveFormat.
func (f *Format) Tag() string { return Tag }

// Description implements gameres.ArchiveFormat.
func (f *Format) Description() string { return Description }

// Signatures implements gameres.ArchiveFormat.
func (f *Format) Signatures() []uint32 {
	out := make([]uint32, len(KnownSignatures))
	copy(out, KnownSignatures)
	return out
}

// TryOpen implements gameres.ArchiveFormat. On success the archive owns v and
// every discovered volume.
func (f *Format) TryOpen(v *gameres.View) (gameres.Archive, error) {
	if v == nil {
		return nil, gameres.ErrNilReader
	}
	if !strings.EqualFold(path.Ext(v.Name()), Extension) {
		return nil, nil
	}

	signature, err := v.Signature()
	if err != nil {
		return nil, err
	}

	category := Category(v.Name())
	scheme, err := f.resolveScheme(v.Name(), signature, category)
	if err != nil {
		return nil, err
	}
	arcKey, _ := scheme.ArcKey(category)

	start := int64(indexOffsetV0)
	if scheme.Version > 0 {
		start = indexOffsetV1
	}

	indexSize, err := v.ReadUint32(start)
	if err != nil {
		return nil, nil
	}

	start += 4
	xorKey := byte(indexSize >> 24)
	if xorKey != 0 {
		indexSize ^= uint32(xorKey) * 0x01010101
	}
	if indexSize&7 != 0 || start+int64(indexSize) >= v.MaxOffset() {
		return nil, nil
	}

	volumeInfos, err := gameres.FindVolumes(v.FS(), v.Name())
	if err != nil {
		return nil, err
	}

	maxOffset := v.MaxOffset()
	for _, info := range volumeInfos {
		maxOffset += info.Size
	}

	index, err := v.Bytes(start, int(indexSize))
	if err != nil {
		return nil, err
	}

	gameres.XorBytes(index, xorKey)
	indexCipher, err := crypt.NewBlowfish(arcKey.IndexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: index key of %q: %w", gameres.ErrUnknownEncryptionScheme, category, err)
	}
	crypt.DecryptECB(indexCipher, index)

	_, isAudio := audioCategories[category]
	_, isVideo := videoCategories[category]
	dir, videoKey, err := parseIndex(index, indexParams{
		scheme:    scheme,
		maxOffset: maxOffset,
		isAudio:   isAudio,
		isVideo:   isVideo,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", v.Name(), err)
	}

	var decryptor entryDecryptor
	if isVideo {
		if scheme.Version < 1 {
			videoKey = crypt.InvertTable(videoKey)
		}

		decryptor = &videoDecryptor{version: scheme.Version, key: videoKey}
	} else {
		dataCipher, err := crypt.NewBlowfish(arcKey.DataKey)
		if err != nil {
			return nil, fmt.Errorf("%w: data key of %q: %w", gameres.ErrUnknownEncryptionScheme, category, err)
		}

		decryptor = &dataDecryptor{version: scheme.Version, block: dataCipher}
	}

	parts, err := gameres.OpenVolumes(v.FS(), volumeInfos)
	if err != nil {
		return nil, err
	}

	f.opts.Logger.Debug("paz archive opened",
		"path", v.Name(),
		"category", category,
		"version", scheme.Version,
		"entries", len(dir),
		"volumes", len(parts),
		"whitened", xorKey != 0,
	)

	return &Archive{
		BaseArchive: gameres.NewBaseArchive(Tag, gameres.NewVolumes(v, parts...), dir),
		decryptor:   decryptor,
		version:     scheme.Version,
		xorKey:      xorKey,
	}, nil
}

// resolveScheme finds the scheme for an archive by signature, title and finally the querier.
func (f *Format) resolveScheme(name string, signature uint32, category string) (*Scheme, error) {
	var scheme *Scheme
	if f.opts.Schemes != nil {
		if s, ok := f.opts.Schemes.SchemeBySignature(signature); ok {
			scheme = s
		} else if s, ok := f.opts.Schemes.SchemeByTitle(f.title(name)); ok {
			scheme = s
		}
	}

	if scheme == nil && f.opts.Query != nil {
		s, err := f.opts.Query.QueryScheme(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", gameres.ErrUnknownEncryptionScheme, err)
		}

		scheme = s
	}

	if _, ok := scheme.ArcKey(category); !ok {
		return nil, fmt.Errorf("%w: %s", gameres.ErrUnknownEncryptionScheme, name)
	}

	return scheme, nil
}

// title returns the title bound to an archive name.
func (f *Format) title(name string) string {
	if f.opts.TitleOf != nil {
		if t := f.opts.TitleOf(name); t != "" {
			return t
		}
	}

	return f.opts.Title
}

// Category returns the lower-case archive category of name ("bgm" for "data/BGM.paz").
func Category(name string) string {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	return strings.ToLower(strings.TrimSuffix(base, path.Ext(base)))
}
