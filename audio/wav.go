// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

package audio

import (
	"encoding/binary"
	"fmt"

	"github.com/woozymasta/gameres"
)

// RIFF layout constants.
const (
	riffSignature  uint32 = 0x46464952 // "RIFF"
	riffHeaderSize        = 12
	chunkHeaderLen        = 8
	waveFormatSize        = 16
)

// WAV decodes RIFF/WAVE sounds.
type WAV struct{}

var _ Format = (*WAV)(nil)

// NewWAV returns a WAV decoder.
func NewWAV() *WAV { return &WAV{} }

// Tag implements Format.
func (*WAV) Tag() string { return "WAV" }

// Description implements Format.
func (*WAV) Description() string { return "Wave audio format" }

// Signatures implements Format.
func (*WAV) Signatures() []uint32 { return []uint32{riffSignature} }

// TryOpen implements Format.
func (w *WAV) TryOpen(v *gameres.View) (*Sound, error) {
	if v == nil {
		return nil, gameres.ErrNilReader
	}
	if !v.AsciiEqual(0, "RIFF") || !v.AsciiEqual(8, "WAVE") {
		return nil, nil
	}

	var (
		format    WaveFormat
		hasFormat bool
	)

	off := int64(riffHeaderSize)
	for off+chunkHeaderLen <= v.MaxOffset() {
		head, err := v.Bytes(off, chunkHeaderLen)
		if err != nil {
			return nil, err
		}

		id := string(head[:4])
		size := int64(binary.LittleEndian.Uint32(head[4:]))
		body := off + chunkHeaderLen

		switch id {
		case "fmt ":
			if size < waveFormatSize {
				return nil, fmt.Errorf("%w: fmt chunk of %d bytes", ErrInvalidWave, size)
			}

			raw, err := v.Bytes(body, waveFormatSize)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidWave, err)
			}

			format = parseWaveFormat(raw)
			hasFormat = true
		case "data":
			if !hasFormat {
				return nil, fmt.Errorf("%w: data chunk before fmt", ErrInvalidWave)
			}

			// Writers that stream audio often leave the data size unset or too large.
			size = min(size, v.MaxOffset()-body)
			payload, err := v.Section(body, size)
			if err != nil {
				return nil, err
			}

			return NewSound(w.Tag(), format, int(format.AverageBytesPerSecond)*8, payload, v), nil
		}

		off = body + size + size&1
	}

	return nil, fmt.Errorf("%w: no data chunk", ErrInvalidWave)
}

// parseWaveFormat decodes a 16-byte WAVEFORMAT structure.
func parseWaveFormat(raw []byte) WaveFormat {
	return WaveFormat{
		FormatTag:             binary.LittleEndian.Uint16(raw[0:2]),
		Channels:              binary.LittleEndian.Uint16(raw[2:4]),
		SamplesPerSecond:      binary.LittleEndian.Uint32(raw[4:8]),
		AverageBytesPerSecond: binary.LittleEndian.Uint32(raw[8:12]),
		BlockAlign:            binary.LittleEndian.Uint16(raw[12:14]),
		BitsPerSample:         binary.LittleEndian.Uint16(raw[14:16]),
	}
}
