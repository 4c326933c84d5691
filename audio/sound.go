// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

package audio

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/woozymasta/gameres"
)

// Wave format tags.
const (
	WaveFormatPCM        uint16 = 0x0001
	WaveFormatIEEEFloat  uint16 = 0x0003
	WaveFormatOggVorbis  uint16 = 0x674f
	WaveFormatExtensible uint16 = 0xfffe
)

// WaveFormat describes sample layout of a sound payload.
type WaveFormat struct {
	// FormatTag is the wave format code, e.g. WaveFormatPCM.
	FormatTag uint16 `json:"format_tag" yaml:"format_tag"`
	// Channels is channel count.
	Channels uint16 `json:"channels" yaml:"channels"`
	// SamplesPerSecond is sample rate in Hz.
	SamplesPerSecond uint32 `json:"samples_per_second" yaml:"samples_per_second"`
	// AverageBytesPerSecond is average payload data rate.
	AverageBytesPerSecond uint32 `json:"average_bytes_per_second" yaml:"average_bytes_per_second"`
	// BlockAlign is bytes per sample frame.
	BlockAlign uint16 `json:"block_align" yaml:"block_align"`
	// BitsPerSample is bits per channel sample.
	BitsPerSample uint16 `json:"bits_per_sample" yaml:"bits_per_sample"`
}

// Sound is a decoded, read-only, seekable sound payload.
// It owns the view it was opened from and every view attached later.
type Sound struct {
	// payload is the byte range served by Read and Seek.
	payload *io.SectionReader
	// closers are released in attach order on Close.
	closers []io.Closer
	// tag is the opening format tag.
	tag string
	// format is payload sample layout.
	format WaveFormat
	// bitrate is source bitrate in bits per second.
	bitrate int
	// mu guards closed state and close operation.
	mu sync.Mutex
	// closed reports whether Close was already called.
	closed bool
}

var (
	_ io.ReadSeekCloser = (*Sound)(nil)
	_ io.ReaderAt       = (*Sound)(nil)
	_ io.Writer         = (*Sound)(nil)
)

// NewSound returns a sound serving payload. Closing the sound closes owner.
func NewSound(tag string, format WaveFormat, bitrate int, payload *io.SectionReader, owner io.Closer) *Sound {
	s := &Sound{payload: payload, tag: tag, format: format, bitrate: bitrate}
	if owner != nil {
		s.closers = append(s.closers, owner)
	}

	return s
}

// Attach hands c over to the sound. Owners are closed in attach order.
func (s *Sound) Attach(c io.Closer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closers = append(s.closers, c)
}

// FormatTag returns the tag of the format that opened the sound.
func (s *Sound) FormatTag() string { return s.tag }

// Format returns the payload sample layout.
func (s *Sound) Format() WaveFormat { return s.format }

// SourceBitrate returns source bitrate in bits per second, zero when unknown.
func (s *Sound) SourceBitrate() int { return s.bitrate }

// PcmSize returns payload length in bytes.
func (s *Sound) PcmSize() int64 { return s.payload.Size() }

// Read implements io.Reader.
func (s *Sound) Read(p []byte) (int, error) {
	if s.isClosed() {
		return 0, gameres.ErrClosed
	}

	return s.payload.Read(p)
}

// ReadAt implements io.ReaderAt.
func (s *Sound) ReadAt(p []byte, off int64) (int, error) {
	if s.isClosed() {
		return 0, gameres.ErrClosed
	}

	return s.payload.ReadAt(p, off)
}

// Seek implements io.Seeker.
func (s *Sound) Seek(offset int64, whence int) (int64, error) {
	if s.isClosed() {
		return 0, gameres.ErrClosed
	}

	pos, err := s.payload.Seek(offset, whence)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidSeek, err)
	}

	return pos, nil
}

// Reset rewinds the payload to its start.
func (s *Sound) Reset() error {
	_, err := s.Seek(0, io.SeekStart)
	return err
}

// Write always fails: sounds are read-only.
func (s *Sound) Write([]byte) (int, error) {
	return 0, fmt.Errorf("%w: %s sound is read-only", gameres.ErrUnsupported, s.tag)
}

// Close releases owned views once. It is safe to call repeatedly.
func (s *Sound) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// isClosed reports whether Close was already called.
func (s *Sound) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}
