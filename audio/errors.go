// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

package audio

import "errors"

// Sentinel errors for audio decoding. Use errors.Is in callers.
var (
	// ErrInvalidWave means a RIFF/WAVE stream lacks required chunks.
	ErrInvalidWave = errors.New("invalid RIFF/WAVE stream")
	// ErrInvalidOgg means an Ogg stream does not start with a Vorbis identification header.
	ErrInvalidOgg = errors.New("invalid Ogg Vorbis stream")
	// ErrInnerFormat means a nested container refers to a format missing from the registry.
	ErrInnerFormat = errors.New("inner audio format is not registered")
	// ErrInvalidSeek means a seek targets a negative position.
	ErrInvalidSeek = errors.New("invalid seek position")
)
