// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

package paz

import (
	"crypto/cipher"
	"fmt"
	"io"

	"github.com/woozymasta/gameres"
	"github.com/woozymasta/gameres/crypt"
)

// videoBlockLimit caps the keystream window of version 1+ video entries.
const videoBlockLimit = 0x10000

// Archive is an opened PAZ container.
type Archive struct {
	*gameres.BaseArchive

	// decryptor builds cipher stages for one entry.
	decryptor entryDecryptor
	// version is the scheme version the archive was opened with.
	version int
	// xorKey is the whitening byte, zero when the archive is not whitened.
	xorKey byte
}

var _ gameres.Archive = (*Archive)(nil)

// Version returns the scheme version.
func (a *Archive) Version() int {
	return a.version
}

// XorKey returns the whitening key, zero when absent.
func (a *Archive) XorKey() byte {
	return a.xorKey
}

// Pipeline returns the transform stages of e, excluding the volume range.
func (a *Archive) Pipeline(e gameres.Entry) (gameres.Pipeline, error) {
	stages, err := a.decryptor.stages(e)
	if err != nil {
		return nil, fmt.Errorf("entry %q: %w", e.Name, err)
	}

	p := gameres.Pipeline{gameres.Xor(a.xorKey)}
	for _, stage := range stages {
		p = p.Then(stage)
	}

	if e.Size < e.AlignedSize {
		p = p.Then(gameres.Limit(int64(e.Size)))
	}
	if e.IsPacked {
		p = p.Then(gameres.Inflate())
	}

	return p, nil
}

// OpenEntry implements gameres.Archive.
func (a *Archive) OpenEntry(e gameres.Entry) (io.ReadCloser, error) {
	if err := a.CheckOpen(); err != nil {
		return nil, err
	}

	p, err := a.Pipeline(e)
	if err != nil {
		return nil, err
	}

	src, err := a.Volumes().Range(e.Offset, int64(e.AlignedSize))
	if err != nil {
		return nil, fmt.Errorf("entry %q: %w", e.Name, err)
	}

	return p.Open(src)
}

// entryDecryptor selects cipher stages for one entry.
type entryDecryptor interface {
	stages(e gameres.Entry) ([]gameres.Stage, error)
}

// dataDecryptor decrypts regular archives: Blowfish with the data key, then
// RC4 with the entry key when one was derived.
type dataDecryptor struct {
	block   cipher.Block
	version int
}

// stages returns Blowfish ECB and, for keyed entries, a fresh RC4 keystream.
func (d *dataDecryptor) stages(e gameres.Entry) ([]gameres.Stage, error) {
	stages := []gameres.Stage{gameres.BlockDecrypt(d.block)}
	if len(e.Key) == 0 {
		return stages, nil
	}

	ks, err := crypt.NewKeystream(e.Key)
	if err != nil {
		return nil, err
	}

	if d.version >= 2 {
		ks.Skip(crypt.SkipRounds(e.Key))
	}

	return append(stages, gameres.KeystreamXor(ks)), nil
}

// videoDecryptor decrypts "mov" archives. Version 0 substitutes bytes through
// the inverted index table; later versions XOR with a keystream window keyed by
// the table mixed with the entry key.
type videoDecryptor struct {
	key     *[crypt.TableSize]byte
	version int
}

// stages returns the substitution or keystream window stage of e.
func (d *videoDecryptor) stages(e gameres.Entry) ([]gameres.Stage, error) {
	if d.key == nil {
		return nil, fmt.Errorf("%w: video key is missing", gameres.ErrMalformedIndex)
	}

	if d.version < 1 {
		return []gameres.Stage{gameres.Substitute(d.key, int64(e.AlignedSize))}, nil
	}
	if e.AlignedSize == 0 {
		return nil, nil
	}

	ks, err := crypt.NewKeystream(crypt.MixKey(d.key, e.Key))
	if err != nil {
		return nil, err
	}

	window := ks.Block(int(min(uint32(videoBlockLimit), e.AlignedSize)))
	return []gameres.Stage{gameres.RepeatXor(window)}, nil
}
